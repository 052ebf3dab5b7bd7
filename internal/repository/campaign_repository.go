package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "time"

    appErrors "github.com/unclebandit/postcampaign-backend/internal/errors"
    "github.com/unclebandit/postcampaign-backend/internal/model"
)

type CampaignRepositoryInterface interface {
    Create(ctx context.Context, c *model.Campaign) error
    GetByID(ctx context.Context, id int) (*model.Campaign, error)
    ListCampaigns(ctx context.Context, offset, limit int, status string) ([]*model.Campaign, int, error)
    UpdateStatus(ctx context.Context, campaignID int, status model.CampaignStatus) error
}

type CampaignRepository struct {
    DB *sql.DB
}

const campaignColumns = `id, name, description, start_date, duration_days, morning_time, evening_time,
        og_image_url, status, is_active, created_at, updated_at`

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
    c.CreatedAt = time.Now()
    if c.Status == "" {
        c.Status = model.CampaignDraft
    }
    query := `
        INSERT INTO campaigns (name, description, start_date, duration_days, morning_time, evening_time,
                               og_image_url, status, is_active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id
    `
    return r.DB.QueryRowContext(ctx, query,
        c.Name, c.Description, c.StartDate, c.DurationDays, c.MorningTime, c.EveningTime,
        c.OgImageURL, c.Status, c.IsActive, c.CreatedAt,
    ).Scan(&c.ID)
}

func (r *CampaignRepository) UpdateStatus(ctx context.Context, campaignID int, status model.CampaignStatus) error {
    query := `UPDATE campaigns SET status=$1, updated_at=$2 WHERE id=$3`
    res, err := r.DB.ExecContext(ctx, query, status, time.Now(), campaignID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return appErrors.NewCampaignNotFound(campaignID)
    }
    return nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id int) (*model.Campaign, error) {
    query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
    c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, appErrors.NewCampaignNotFound(id)
        }
        return nil, err
    }
    return c, nil
}

func (r *CampaignRepository) ListCampaigns(ctx context.Context, offset, limit int, status string) ([]*model.Campaign, int, error) {
    campaigns := []*model.Campaign{}
    where := ` WHERE 1=1`
    args := []interface{}{}
    argPos := 1

    if status != "" {
        where += fmt.Sprintf(" AND status=$%d", argPos)
        args = append(args, status)
        argPos++
    }

    query := `SELECT ` + campaignColumns + ` FROM campaigns` + where +
        fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)

    rows, err := r.DB.QueryContext(ctx, query, append(args, limit, offset)...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    for rows.Next() {
        c, err := scanCampaign(rows)
        if err != nil {
            return nil, 0, err
        }
        campaigns = append(campaigns, c)
    }
    if err := rows.Err(); err != nil {
        return nil, 0, err
    }

    var total int
    if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM campaigns`+where, args...).Scan(&total); err != nil {
        return nil, 0, err
    }

    return campaigns, total, nil
}

type rowScanner interface {
    Scan(dest ...interface{}) error
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
    var c model.Campaign
    err := row.Scan(
        &c.ID, &c.Name, &c.Description, &c.StartDate, &c.DurationDays, &c.MorningTime, &c.EveningTime,
        &c.OgImageURL, &c.Status, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    return &c, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
