// internal/service/campaign_service.go
package service

import (
    "context"
    "fmt"
    "log"
    "strings"
    "time"

    appErrors "github.com/unclebandit/postcampaign-backend/internal/errors"
    "github.com/unclebandit/postcampaign-backend/internal/model"
    "github.com/unclebandit/postcampaign-backend/internal/repository"
)

// StatsCache is optional; a nil cache always reads from the store.
type StatsCache interface {
    Get(ctx context.Context, campaignID int) (map[model.PostStatus]int, bool)
    Set(ctx context.Context, campaignID int, stats map[model.PostStatus]int)
    Invalidate(ctx context.Context, campaignID int)
}

type CampaignService struct {
    CampaignRepo repository.CampaignRepositoryInterface
    PostRepo     repository.PostRepositoryInterface
    Stats        StatsCache
    Location     *time.Location
    OnChanged    func(campaignID int)
}

type CreateCampaignInput struct {
    Name         string  `json:"name"`
    Description  *string `json:"description"`
    StartDate    string  `json:"start_date"` // YYYY-MM-DD
    DurationDays int     `json:"duration_days"`
    MorningTime  string  `json:"morning_time"`
    EveningTime  string  `json:"evening_time"`
    OgImageURL   *string `json:"og_image_url"`
}

type CampaignDetails struct {
    *model.Campaign
    Stats map[string]int `json:"stats"`
}

type GenerateResult struct {
    CampaignID int `json:"campaign_id"`
    Created    int `json:"created"`
    Skipped    int `json:"skipped"`
}

func (s *CampaignService) location() *time.Location {
    if s.Location != nil {
        return s.Location
    }
    return time.UTC
}

func (s *CampaignService) CreateCampaign(ctx context.Context, in CreateCampaignInput) (*model.Campaign, error) {
    if strings.TrimSpace(in.Name) == "" {
        return nil, fmt.Errorf("%w: campaign name is required", appErrors.ErrInvalidInput)
    }
    if in.DurationDays < 1 {
        return nil, fmt.Errorf("%w: duration_days must be at least 1", appErrors.ErrInvalidInput)
    }
    start, err := time.Parse("2006-01-02", in.StartDate)
    if err != nil {
        return nil, fmt.Errorf("%w: start_date %q, expected YYYY-MM-DD", appErrors.ErrInvalidInput, in.StartDate)
    }
    if _, _, err := ParseClock(in.MorningTime); err != nil {
        return nil, err
    }
    if _, _, err := ParseClock(in.EveningTime); err != nil {
        return nil, err
    }

    c := &model.Campaign{
        Name:         strings.TrimSpace(in.Name),
        Description:  in.Description,
        StartDate:    start,
        DurationDays: in.DurationDays,
        MorningTime:  in.MorningTime,
        EveningTime:  in.EveningTime,
        OgImageURL:   in.OgImageURL,
        Status:       model.CampaignDraft,
        IsActive:     true,
    }
    if err := s.CampaignRepo.Create(ctx, c); err != nil {
        return nil, err
    }
    return c, nil
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(ctx context.Context, page, pageSize int, status string) ([]model.Campaign, map[string]int, error) {
    if page < 1 {
        page = 1
    }
    if pageSize < 1 {
        pageSize = 20
    }
    if pageSize > 100 {
        pageSize = 100
    }
    if status != "" && !model.CampaignStatus(status).Valid() {
        return nil, nil, fmt.Errorf("%w: %q", appErrors.ErrInvalidStatus, status)
    }
    offset := (page - 1) * pageSize

    ptrs, total, err := s.CampaignRepo.ListCampaigns(ctx, offset, pageSize, status)
    if err != nil {
        return nil, nil, err
    }

    campaigns := make([]model.Campaign, len(ptrs))
    for i, c := range ptrs {
        campaigns[i] = *c
    }

    totalPages := (total + pageSize - 1) / pageSize
    pagination := map[string]int{
        "page":        page,
        "page_size":   pageSize,
        "total_count": total,
        "total_pages": totalPages,
    }

    return campaigns, pagination, nil
}

func (s *CampaignService) GetCampaign(ctx context.Context, id int) (*model.Campaign, error) {
    return s.CampaignRepo.GetByID(ctx, id)
}

func (s *CampaignService) GetCampaignDetailsWithStats(ctx context.Context, campaignID int) (*CampaignDetails, error) {
    campaign, err := s.CampaignRepo.GetByID(ctx, campaignID)
    if err != nil {
        return nil, err
    }

    stats, ok := map[model.PostStatus]int(nil), false
    if s.Stats != nil {
        stats, ok = s.Stats.Get(ctx, campaignID)
    }
    if !ok {
        stats, err = s.PostRepo.Stats(ctx, campaignID)
        if err != nil {
            log.Println("Failed to load post stats:", err)
            return nil, err
        }
        if s.Stats != nil {
            s.Stats.Set(ctx, campaignID, stats)
        }
    }

    out := map[string]int{"total": 0}
    for status, count := range stats {
        out[string(status)] = count
        out["total"] += count
    }

    return &CampaignDetails{Campaign: campaign, Stats: out}, nil
}

func (s *CampaignService) UpdateStatus(ctx context.Context, campaignID int, status model.CampaignStatus) error {
    if !status.Valid() {
        return fmt.Errorf("%w: %q", appErrors.ErrInvalidStatus, status)
    }
    return s.CampaignRepo.UpdateStatus(ctx, campaignID, status)
}

// GeneratePosts creates the DRAFT schedule for a campaign. Slots that already
// have a post are left untouched.
func (s *CampaignService) GeneratePosts(ctx context.Context, campaignID int, in GenerateInput) (*GenerateResult, error) {
    campaign, err := s.CampaignRepo.GetByID(ctx, campaignID)
    if err != nil {
        return nil, err
    }

    posts, err := BuildSchedule(campaign, s.location(), in)
    if err != nil {
        return nil, err
    }

    created, err := s.PostRepo.CreateBatch(ctx, posts)
    if err != nil {
        return nil, err
    }

    log.Printf("📅 campaign %d: generated %d posts (%d already existed)", campaignID, created, len(posts)-created)
    if s.OnChanged != nil && created > 0 {
        s.OnChanged(campaignID)
    }

    return &GenerateResult{
        CampaignID: campaignID,
        Created:    created,
        Skipped:    len(posts) - created,
    }, nil
}
