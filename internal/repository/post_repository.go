package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/lib/pq"

    appErrors "github.com/unclebandit/postcampaign-backend/internal/errors"
    "github.com/unclebandit/postcampaign-backend/internal/model"
)

type PostRepositoryInterface interface {
    List(ctx context.Context, f model.PostFilter) ([]*model.Post, int, error)
    GetByID(ctx context.Context, id int) (*model.Post, error)
    Create(ctx context.Context, p *model.Post) error
    CreateBatch(ctx context.Context, posts []*model.Post) (int, error)
    Update(ctx context.Context, id int, patch model.PostPatch) (*model.Post, error)
    MarkPosted(ctx context.Context, id int, tweetID string, postedAt time.Time) error
    MarkFailed(ctx context.Context, id int, message string) error
    Delete(ctx context.Context, id int) error
    ListDue(ctx context.Context, before time.Time, limit int) ([]*model.Post, error)
    Stats(ctx context.Context, campaignID int) (map[model.PostStatus]int, error)
}

type PostRepository struct {
    DB *sql.DB
}

const postColumns = `id, campaign_id, day_index, slot, scheduled_time_label, target_audience, content,
        media_urls, media_alt, use_og_fallback, scheduled_at, status, posted_at, tweet_id, error,
        source, cycle, version, created_at, updated_at`

// ====================== Reads ======================

func (r *PostRepository) GetByID(ctx context.Context, id int) (*model.Post, error) {
    query := `SELECT ` + postColumns + ` FROM posts WHERE id=$1`
    p, err := scanPost(r.DB.QueryRowContext(ctx, query, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, appErrors.NewPostNotFound(id)
        }
        return nil, err
    }
    return p, nil
}

func (r *PostRepository) List(ctx context.Context, f model.PostFilter) ([]*model.Post, int, error) {
    where, args := buildPostFilter(f)
    argPos := len(args) + 1

    query := `SELECT ` + postColumns + ` FROM posts` + where +
        fmt.Sprintf(" ORDER BY scheduled_at ASC, id ASC LIMIT $%d OFFSET $%d", argPos, argPos+1)

    offset := (f.Page - 1) * f.Limit
    posts, err := r.queryPosts(ctx, query, append(args, f.Limit, offset)...)
    if err != nil {
        return nil, 0, err
    }

    var total int
    if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&total); err != nil {
        return nil, 0, err
    }
    return posts, total, nil
}

// ListDue returns approved posts whose scheduled time has passed, oldest first.
func (r *PostRepository) ListDue(ctx context.Context, before time.Time, limit int) ([]*model.Post, error) {
    query := `SELECT ` + postColumns + ` FROM posts
        WHERE status=$1 AND scheduled_at <= $2
        ORDER BY scheduled_at ASC, id ASC
        LIMIT $3`
    return r.queryPosts(ctx, query, model.PostApproved, before, limit)
}

func (r *PostRepository) Stats(ctx context.Context, campaignID int) (map[model.PostStatus]int, error) {
    rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM posts WHERE campaign_id=$1 GROUP BY status`, campaignID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    stats := map[model.PostStatus]int{
        model.PostDraft:    0,
        model.PostApproved: 0,
        model.PostPosted:   0,
        model.PostFailed:   0,
    }
    for rows.Next() {
        var status model.PostStatus
        var count int
        if err := rows.Scan(&status, &count); err != nil {
            return nil, err
        }
        stats[status] = count
    }
    return stats, rows.Err()
}

// ====================== Writes ======================

func (r *PostRepository) Create(ctx context.Context, p *model.Post) error {
    prepareInsert(p)
    query := `
        INSERT INTO posts (campaign_id, day_index, slot, scheduled_time_label, target_audience, content,
                           media_urls, media_alt, use_og_fallback, scheduled_at, status, source, cycle,
                           version, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING id
    `
    return r.DB.QueryRowContext(ctx, query, insertArgs(p)...).Scan(&p.ID)
}

// CreateBatch inserts generated posts in one transaction. Generated rows that
// already exist for the same campaign/day/slot are skipped, so regenerating is
// safe. Manual posts never block a generated slot.
func (r *PostRepository) CreateBatch(ctx context.Context, posts []*model.Post) (int, error) {
    tx, err := r.DB.BeginTx(ctx, nil)
    if err != nil {
        return 0, err
    }
    defer tx.Rollback()

    stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO posts (campaign_id, day_index, slot, scheduled_time_label, target_audience, content,
                           media_urls, media_alt, use_og_fallback, scheduled_at, status, source, cycle,
                           version, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        ON CONFLICT (campaign_id, day_index, slot) WHERE source = 'generated' DO NOTHING
        RETURNING id
    `)
    if err != nil {
        return 0, err
    }
    defer stmt.Close()

    inserted := 0
    for _, p := range posts {
        prepareInsert(p)
        err := stmt.QueryRowContext(ctx, insertArgs(p)...).Scan(&p.ID)
        if errors.Is(err, sql.ErrNoRows) {
            continue
        }
        if err != nil {
            return 0, fmt.Errorf("insert day %d %s: %w", p.DayIndex, p.Slot, err)
        }
        inserted++
    }

    if err := tx.Commit(); err != nil {
        return 0, err
    }
    return inserted, nil
}

// Update applies an editor patch. POSTED rows never match, and when the patch
// carries ExpectedVersion the row must still be at that version.
func (r *PostRepository) Update(ctx context.Context, id int, patch model.PostPatch) (*model.Post, error) {
    sets := []string{}
    args := []interface{}{}
    add := func(col string, v interface{}) {
        args = append(args, v)
        sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
    }

    if patch.Content != nil {
        add("content", *patch.Content)
    }
    if patch.Status != nil {
        add("status", *patch.Status)
    }
    if patch.MediaURLs != nil {
        add("media_urls", pq.StringArray(*patch.MediaURLs))
    }
    if patch.MediaAlt != nil {
        add("media_alt", *patch.MediaAlt)
    }
    if patch.UseOgFallback != nil {
        add("use_og_fallback", *patch.UseOgFallback)
    }
    if patch.TargetAudience != nil {
        add("target_audience", *patch.TargetAudience)
    }
    if len(sets) == 0 {
        return nil, appErrors.ErrEmptyPatch
    }
    sets = append(sets, "version=version+1", "updated_at=NOW()")

    args = append(args, id, model.PostPosted)
    query := fmt.Sprintf(`UPDATE posts SET %s WHERE id=$%d AND status<>$%d`,
        strings.Join(sets, ", "), len(args)-1, len(args))
    if patch.ExpectedVersion != nil {
        args = append(args, *patch.ExpectedVersion)
        query += fmt.Sprintf(" AND version=$%d", len(args))
    }
    query += ` RETURNING ` + postColumns

    p, err := scanPost(r.DB.QueryRowContext(ctx, query, args...))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, r.classifyMiss(ctx, id)
    }
    if err != nil {
        return nil, err
    }
    return p, nil
}

func (r *PostRepository) MarkPosted(ctx context.Context, id int, tweetID string, postedAt time.Time) error {
    var tweet interface{}
    if tweetID != "" {
        tweet = tweetID
    }
    query := `
        UPDATE posts
        SET status=$1, posted_at=$2, tweet_id=$3, error=NULL, version=version+1, updated_at=NOW()
        WHERE id=$4 AND status<>$1
    `
    return r.execTransition(ctx, id, query, model.PostPosted, postedAt, tweet, id)
}

func (r *PostRepository) MarkFailed(ctx context.Context, id int, message string) error {
    query := `
        UPDATE posts
        SET status=$1, error=$2, version=version+1, updated_at=NOW()
        WHERE id=$3 AND status<>$4
    `
    return r.execTransition(ctx, id, query, model.PostFailed, message, id, model.PostPosted)
}

func (r *PostRepository) Delete(ctx context.Context, id int) error {
    res, err := r.DB.ExecContext(ctx, `DELETE FROM posts WHERE id=$1 AND status<>$2`, id, model.PostPosted)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return r.classifyMiss(ctx, id)
    }
    return nil
}

func (r *PostRepository) execTransition(ctx context.Context, id int, query string, args ...interface{}) error {
    res, err := r.DB.ExecContext(ctx, query, args...)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return r.classifyMiss(ctx, id)
    }
    return nil
}

// classifyMiss explains why a conditional write touched no rows.
func (r *PostRepository) classifyMiss(ctx context.Context, id int) error {
    var status model.PostStatus
    err := r.DB.QueryRowContext(ctx, `SELECT status FROM posts WHERE id=$1`, id).Scan(&status)
    if errors.Is(err, sql.ErrNoRows) {
        return appErrors.NewPostNotFound(id)
    }
    if err != nil {
        return err
    }
    if status.IsTerminal() {
        return appErrors.ErrPostLocked
    }
    return appErrors.ErrVersionConflict
}

// ====================== Helpers ======================

// buildPostFilter renders the WHERE clause shared by the page and count queries.
func buildPostFilter(f model.PostFilter) (string, []interface{}) {
    where := ` WHERE 1=1`
    args := []interface{}{}

    if f.CampaignID > 0 {
        args = append(args, f.CampaignID)
        where += fmt.Sprintf(" AND campaign_id=$%d", len(args))
    }
    if f.Status != "" {
        args = append(args, f.Status)
        where += fmt.Sprintf(" AND status=$%d", len(args))
    }
    if s := strings.TrimSpace(f.Search); s != "" {
        args = append(args, "%"+escapeLike(s)+"%")
        where += fmt.Sprintf(" AND (content ILIKE $%d OR target_audience ILIKE $%d)", len(args), len(args))
    }
    return where, args
}

func escapeLike(s string) string {
    return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func prepareInsert(p *model.Post) {
    now := time.Now()
    p.CreatedAt = now
    p.UpdatedAt = now
    p.Version = 1
    if p.Status == "" {
        p.Status = model.PostDraft
    }
    if p.Source == "" {
        p.Source = model.SourceManual
    }
    if p.Cycle == 0 {
        p.Cycle = 1
    }
    if p.MediaURLs == nil {
        p.MediaURLs = pq.StringArray{}
    }
}

func insertArgs(p *model.Post) []interface{} {
    return []interface{}{
        p.CampaignID, p.DayIndex, p.Slot, p.ScheduledTimeLabel, p.TargetAudience, p.Content,
        p.MediaURLs, p.MediaAlt, p.UseOgFallback, p.ScheduledAt, p.Status, p.Source, p.Cycle,
        p.Version, p.CreatedAt, p.UpdatedAt,
    }
}

func (r *PostRepository) queryPosts(ctx context.Context, query string, args ...interface{}) ([]*model.Post, error) {
    rows, err := r.DB.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    posts := []*model.Post{}
    for rows.Next() {
        p, err := scanPost(rows)
        if err != nil {
            return nil, err
        }
        posts = append(posts, p)
    }
    return posts, rows.Err()
}

func scanPost(row rowScanner) (*model.Post, error) {
    var p model.Post
    err := row.Scan(
        &p.ID, &p.CampaignID, &p.DayIndex, &p.Slot, &p.ScheduledTimeLabel, &p.TargetAudience, &p.Content,
        &p.MediaURLs, &p.MediaAlt, &p.UseOgFallback, &p.ScheduledAt, &p.Status, &p.PostedAt, &p.TweetID, &p.Error,
        &p.Source, &p.Cycle, &p.Version, &p.CreatedAt, &p.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    return &p, nil
}

var _ PostRepositoryInterface = (*PostRepository)(nil)
