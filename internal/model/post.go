// internal/model/post.go
package model

import (
    "time"

    "github.com/lib/pq"
)

// PostStatus is the only place post states are defined. Store, editor and
// send path all switch on these values.
type PostStatus string

const (
    PostDraft    PostStatus = "DRAFT"
    PostApproved PostStatus = "APPROVED"
    PostPosted   PostStatus = "POSTED"
    PostFailed   PostStatus = "FAILED"
)

func (s PostStatus) Valid() bool {
    switch s {
    case PostDraft, PostApproved, PostPosted, PostFailed:
        return true
    }
    return false
}

// IsTerminal is true once a post has gone out. Terminal posts are immutable.
func (s PostStatus) IsTerminal() bool {
    return s == PostPosted
}

func (s PostStatus) IsEditable() bool {
    switch s {
    case PostDraft, PostApproved, PostFailed:
        return true
    }
    return false
}

type PostSlot string

const (
    SlotAM PostSlot = "AM"
    SlotPM PostSlot = "PM"
)

type PostSource string

const (
    SourceGenerated PostSource = "generated"
    SourceManual    PostSource = "manual"
)

type Post struct {
    ID                 int            `db:"id" json:"id"`
    CampaignID         int            `db:"campaign_id" json:"campaign_id"`
    DayIndex           int            `db:"day_index" json:"day_index"`
    Slot               PostSlot       `db:"slot" json:"slot"`
    ScheduledTimeLabel string         `db:"scheduled_time_label" json:"scheduled_time_label"`
    TargetAudience     string         `db:"target_audience" json:"target_audience"`
    Content            string         `db:"content" json:"content"`
    MediaURLs          pq.StringArray `db:"media_urls" json:"media_urls"`
    MediaAlt           *string        `db:"media_alt" json:"media_alt,omitempty"`
    UseOgFallback      bool           `db:"use_og_fallback" json:"use_og_fallback"`
    ScheduledAt        time.Time      `db:"scheduled_at" json:"scheduled_at"`
    Status             PostStatus     `db:"status" json:"status"`
    PostedAt           *time.Time     `db:"posted_at" json:"posted_at,omitempty"`
    TweetID            *string        `db:"tweet_id" json:"tweet_id,omitempty"`
    Error              *string        `db:"error" json:"error,omitempty"`
    Source             PostSource     `db:"source" json:"source"`
    Cycle              int            `db:"cycle" json:"cycle"`
    Version            int            `db:"version" json:"version"`
    CreatedAt          time.Time      `db:"created_at" json:"created_at"`
    UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// PostPatch is a partial update coming from the editor. Nil fields are left alone.
type PostPatch struct {
    Content         *string     `json:"content,omitempty"`
    Status          *PostStatus `json:"status,omitempty"`
    MediaURLs       *[]string   `json:"media_urls,omitempty"`
    MediaAlt        *string     `json:"media_alt,omitempty"`
    UseOgFallback   *bool       `json:"use_og_fallback,omitempty"`
    TargetAudience  *string     `json:"target_audience,omitempty"`
    ExpectedVersion *int        `json:"expected_version,omitempty"`
}

func (p PostPatch) IsEmpty() bool {
    return p.Content == nil && p.Status == nil && p.MediaURLs == nil &&
        p.MediaAlt == nil && p.UseOgFallback == nil && p.TargetAudience == nil
}

// PostFilter drives the paginated post listing.
type PostFilter struct {
    CampaignID int
    Status     PostStatus
    Search     string
    Page       int
    Limit      int
}

type Pagination struct {
    Page  int `json:"page"`
    Limit int `json:"limit"`
    Total int `json:"total"`
    Pages int `json:"pages"`
}
