// internal/service/post_service.go
package service

import (
    "context"
    "errors"
    "fmt"
    "log"
    "strings"
    "time"

    appErrors "github.com/unclebandit/postcampaign-backend/internal/errors"
    "github.com/unclebandit/postcampaign-backend/internal/model"
    "github.com/unclebandit/postcampaign-backend/internal/poster"
    "github.com/unclebandit/postcampaign-backend/internal/repository"
    "github.com/unclebandit/postcampaign-backend/internal/validation"
)

const (
    defaultSendTimeout = 30 * time.Second
    defaultPageLimit   = 20
    maxPageLimit       = 100

    msgAlreadySent      = "Post has already been sent"
    msgSendInProgress   = "A send for this post is already in progress"
    msgNeedConfirmation = "Post has warnings that must be acknowledged before sending"
    msgNetworkError     = "Network error"
    msgUnknownAPIError  = "Posting API rejected the post"
    msgStatusChanged    = "Post is %s, expected %s"
)

// SendLocker serializes sends of the same post across operators and workers.
type SendLocker interface {
    Acquire(ctx context.Context, postID int) (release func(), ok bool, err error)
}

type SendOptions struct {
    AcknowledgeWarnings bool `json:"acknowledge_warnings"`
    // RequireStatus, when set, rejects the send unless the post is still in
    // this status at send time. Scheduled sends require APPROVED.
    RequireStatus model.PostStatus `json:"require_status,omitempty"`
}

type SendOutcome string

const (
    OutcomeSent                 SendOutcome = "sent"
    OutcomeFailed               SendOutcome = "failed"
    OutcomeRejected             SendOutcome = "rejected"
    OutcomeConfirmationRequired SendOutcome = "confirmation_required"
)

// SendResult is what SendNow reports for every attempt that reached a decision.
type SendResult struct {
    Success  bool        `json:"success"`
    Outcome  SendOutcome `json:"outcome"`
    TweetID  string      `json:"tweet_id,omitempty"`
    Error    string      `json:"error,omitempty"`
    Errors   []string    `json:"errors,omitempty"`
    Warnings []string    `json:"warnings,omitempty"`
}

type PostService struct {
    PostRepo     repository.PostRepositoryInterface
    CampaignRepo repository.CampaignRepositoryInterface
    Poster       poster.Client
    Locker       SendLocker
    OnChanged    func(campaignID int)
    SendTimeout  time.Duration
    Now          func() time.Time
}

func (s *PostService) now() time.Time {
    if s.Now != nil {
        return s.Now()
    }
    return time.Now()
}

func (s *PostService) changed(campaignID int) {
    if s.OnChanged != nil {
        s.OnChanged(campaignID)
    }
}

// ListPosts returns one page of posts plus pagination info.
func (s *PostService) ListPosts(ctx context.Context, f model.PostFilter) ([]*model.Post, model.Pagination, error) {
    if f.Page < 1 {
        f.Page = 1
    }
    if f.Limit < 1 {
        f.Limit = defaultPageLimit
    }
    if f.Limit > maxPageLimit {
        f.Limit = maxPageLimit
    }
    if f.Status != "" && !f.Status.Valid() {
        return nil, model.Pagination{}, fmt.Errorf("%w: %q", appErrors.ErrInvalidStatus, f.Status)
    }

    posts, total, err := s.PostRepo.List(ctx, f)
    if err != nil {
        return nil, model.Pagination{}, err
    }

    return posts, model.Pagination{
        Page:  f.Page,
        Limit: f.Limit,
        Total: total,
        Pages: (total + f.Limit - 1) / f.Limit,
    }, nil
}

func (s *PostService) GetPost(ctx context.Context, id int) (*model.Post, error) {
    return s.PostRepo.GetByID(ctx, id)
}

// CreatePost adds a manually authored post to a campaign.
func (s *PostService) CreatePost(ctx context.Context, p *model.Post) error {
    if _, err := s.CampaignRepo.GetByID(ctx, p.CampaignID); err != nil {
        return err
    }
    if len(p.MediaURLs) > validation.MaxMediaURLs {
        return appErrors.ErrTooManyMedia
    }
    if p.Status == "" {
        p.Status = model.PostDraft
    }
    if p.Status != model.PostDraft && p.Status != model.PostApproved {
        return fmt.Errorf("%w: new posts start as DRAFT or APPROVED", appErrors.ErrInvalidStatus)
    }
    if p.Slot != "" && p.Slot != model.SlotAM && p.Slot != model.SlotPM {
        return fmt.Errorf("%w: slot %q", appErrors.ErrInvalidInput, p.Slot)
    }
    if p.ScheduledAt.IsZero() {
        return fmt.Errorf("%w: scheduled_at is required", appErrors.ErrInvalidInput)
    }
    if p.DayIndex < 1 {
        return fmt.Errorf("%w: day_index starts at 1", appErrors.ErrInvalidInput)
    }
    if p.ScheduledTimeLabel == "" {
        p.ScheduledTimeLabel = TimeLabel(p.ScheduledAt)
    }
    p.Source = model.SourceManual

    if err := s.PostRepo.Create(ctx, p); err != nil {
        return err
    }
    s.changed(p.CampaignID)
    return nil
}

// UpdatePost applies an editor patch. POSTED posts are rejected here and again
// by the store's conditional update.
func (s *PostService) UpdatePost(ctx context.Context, id int, patch model.PostPatch) (*model.Post, error) {
    current, err := s.PostRepo.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if current.Status.IsTerminal() {
        return nil, appErrors.ErrPostLocked
    }
    if err := validation.ValidatePatch(current, patch); err != nil {
        return nil, err
    }

    updated, err := s.PostRepo.Update(ctx, id, patch)
    if err != nil {
        return nil, err
    }
    s.changed(updated.CampaignID)
    return updated, nil
}

func (s *PostService) DeletePost(ctx context.Context, id int) error {
    current, err := s.PostRepo.GetByID(ctx, id)
    if err != nil {
        return err
    }
    if current.Status.IsTerminal() {
        return appErrors.ErrPostLocked
    }
    if err := s.PostRepo.Delete(ctx, id); err != nil {
        return err
    }
    s.changed(current.CampaignID)
    return nil
}

// Evaluate runs the validation engine against the stored post and its campaign.
func (s *PostService) Evaluate(ctx context.Context, id int) (validation.Report, error) {
    post, err := s.PostRepo.GetByID(ctx, id)
    if err != nil {
        return validation.Report{}, err
    }
    campaign, err := s.CampaignRepo.GetByID(ctx, post.CampaignID)
    if err != nil {
        return validation.Report{}, err
    }
    return validation.Evaluate(post, campaign), nil
}

// SendNow publishes a post immediately. The returned error is only set when
// loading or persisting fails; every other outcome is described by SendResult.
func (s *PostService) SendNow(ctx context.Context, postID int, opts SendOptions) (*SendResult, error) {
    post, err := s.PostRepo.GetByID(ctx, postID)
    if err != nil {
        return nil, err
    }
    campaign, err := s.CampaignRepo.GetByID(ctx, post.CampaignID)
    if err != nil {
        return nil, err
    }
    if res, _ := checkSendable(post, campaign, opts); res != nil {
        return res, nil
    }

    if s.Locker != nil {
        release, ok, err := s.Locker.Acquire(ctx, postID)
        if err != nil {
            return nil, fmt.Errorf("acquire send lock: %w", err)
        }
        if !ok {
            return &SendResult{Outcome: OutcomeRejected, Error: msgSendInProgress}, nil
        }
        defer release()

        // The post may have been sent or edited between our read and the
        // lock. Whatever goes out is the copy read here.
        post, err = s.PostRepo.GetByID(ctx, postID)
        if err != nil {
            return nil, err
        }
    }

    res, report := checkSendable(post, campaign, opts)
    if res != nil {
        return res, nil
    }

    // Once dispatched the attempt runs to completion and is recorded even if
    // the caller goes away.
    detached := context.WithoutCancel(ctx)
    timeout := s.SendTimeout
    if timeout <= 0 {
        timeout = defaultSendTimeout
    }
    sendCtx, cancel := context.WithTimeout(detached, timeout)
    defer cancel()

    resp, sendErr := s.Poster.Post(sendCtx, poster.Request{
        Text:     post.Content,
        ImageURL: validation.ResolveImage(post, campaign),
    })

    result := &SendResult{Warnings: report.Warnings}
    switch {
    case sendErr != nil:
        log.Printf("⚠️ post %d send failed: %v", postID, sendErr)
        result.Outcome, result.Error = OutcomeFailed, msgNetworkError
    case resp == nil || !resp.Success:
        msg := msgUnknownAPIError
        if resp != nil && resp.Error != "" {
            msg = resp.Error
        }
        log.Printf("⚠️ post %d rejected by posting API: %s", postID, msg)
        result.Outcome, result.Error = OutcomeFailed, msg
    default:
        result.Success, result.Outcome, result.TweetID = true, OutcomeSent, resp.ID
    }

    if result.Success {
        err = s.PostRepo.MarkPosted(detached, postID, result.TweetID, s.now())
    } else {
        err = s.PostRepo.MarkFailed(detached, postID, result.Error)
    }
    if err != nil {
        if result.Success {
            log.Printf("❌ post %d went out as %q but could not be recorded: %v", postID, result.TweetID, err)
        }
        return nil, fmt.Errorf("record send result for post %d: %w", postID, err)
    }

    if result.Success {
        log.Printf("✅ post %d sent, tweet %s", postID, result.TweetID)
    }
    s.changed(post.CampaignID)
    return result, nil
}

// checkSendable returns a non-nil result when post must not be sent as is.
func checkSendable(post *model.Post, campaign *model.Campaign, opts SendOptions) (*SendResult, validation.Report) {
    if post.Status.IsTerminal() {
        return &SendResult{Outcome: OutcomeRejected, Error: msgAlreadySent}, validation.Report{}
    }
    if opts.RequireStatus != "" && post.Status != opts.RequireStatus {
        return &SendResult{
            Outcome: OutcomeRejected,
            Error:   fmt.Sprintf(msgStatusChanged, post.Status, opts.RequireStatus),
        }, validation.Report{}
    }

    report := validation.Evaluate(post, campaign)
    if report.HasErrors() {
        return &SendResult{
            Outcome: OutcomeRejected,
            Error:   strings.Join(report.Errors, "; "),
            Errors:  report.Errors,
        }, report
    }
    if report.HasWarnings() && !opts.AcknowledgeWarnings {
        return &SendResult{
            Outcome:  OutcomeConfirmationRequired,
            Error:    msgNeedConfirmation,
            Warnings: report.Warnings,
        }, report
    }
    return nil, report
}

// IsPrecondition reports errors caused by the post's state rather than by
// infrastructure.
func IsPrecondition(err error) bool {
    return errors.Is(err, appErrors.ErrPostLocked) ||
        errors.Is(err, appErrors.ErrVersionConflict) ||
        errors.Is(err, appErrors.ErrNoEdit)
}
