// internal/model/campaign.go
package model

import "time"

type CampaignStatus string

const (
    CampaignDraft     CampaignStatus = "DRAFT"
    CampaignActive    CampaignStatus = "ACTIVE"
    CampaignPaused    CampaignStatus = "PAUSED"
    CampaignCompleted CampaignStatus = "COMPLETED"
)

func (s CampaignStatus) Valid() bool {
    switch s {
    case CampaignDraft, CampaignActive, CampaignPaused, CampaignCompleted:
        return true
    }
    return false
}

type Campaign struct {
    ID           int            `db:"id" json:"id"`
    Name         string         `db:"name" json:"name"`
    Description  *string        `db:"description" json:"description,omitempty"`
    StartDate    time.Time      `db:"start_date" json:"start_date"`
    DurationDays int            `db:"duration_days" json:"duration_days"`
    MorningTime  string         `db:"morning_time" json:"morning_time"` // HH:MM
    EveningTime  string         `db:"evening_time" json:"evening_time"` // HH:MM
    OgImageURL   *string        `db:"og_image_url" json:"og_image_url,omitempty"`
    Status       CampaignStatus `db:"status" json:"status"`
    IsActive     bool           `db:"is_active" json:"is_active"`
    CreatedAt    time.Time      `db:"created_at" json:"created_at"`
    UpdatedAt    *time.Time     `db:"updated_at" json:"updated_at,omitempty"`
}

// HasOgImage reports whether the campaign carries a usable fallback image.
func (c *Campaign) HasOgImage() bool {
    return c != nil && c.OgImageURL != nil && *c.OgImageURL != ""
}
