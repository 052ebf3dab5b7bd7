// internal/service/schedule.go
package service

import (
    "fmt"
    "log"
    "strings"
    "time"

    appErrors "github.com/unclebandit/postcampaign-backend/internal/errors"
    "github.com/unclebandit/postcampaign-backend/internal/model"
)

// LoadScheduleLocation resolves the campaign time zone. Hosts without tzdata
// fall back to a fixed UTC+3, which is what Asia/Riyadh is year round.
func LoadScheduleLocation(name string) *time.Location {
    loc, err := time.LoadLocation(name)
    if err != nil {
        log.Printf("⚠️ time zone %s unavailable (%v), using fixed UTC+3", name, err)
        return time.FixedZone("AST", 3*60*60)
    }
    return loc
}

// ParseClock parses an "HH:MM" slot time.
func ParseClock(hhmm string) (hour, minute int, err error) {
    t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
    if err != nil {
        return 0, 0, fmt.Errorf("%w: time %q, expected HH:MM", appErrors.ErrInvalidInput, hhmm)
    }
    return t.Hour(), t.Minute(), nil
}

// TimeLabel is the human readable local time shown next to a post.
func TimeLabel(t time.Time) string {
    return t.Format("03:04 PM")
}

type GenerateInput struct {
    Contents       []string `json:"contents"`
    TargetAudience string   `json:"target_audience"`
    UseOgFallback  bool     `json:"use_og_fallback"`
}

// BuildSchedule lays out one post per day and slot for the whole campaign,
// rotating through the supplied contents. Each pass through the list is a cycle.
func BuildSchedule(c *model.Campaign, loc *time.Location, in GenerateInput) ([]*model.Post, error) {
    if c.DurationDays < 1 {
        return nil, fmt.Errorf("%w: campaign %d has no duration", appErrors.ErrInvalidInput, c.ID)
    }

    contents := make([]string, 0, len(in.Contents))
    for _, s := range in.Contents {
        if strings.TrimSpace(s) != "" {
            contents = append(contents, s)
        }
    }
    if len(contents) == 0 {
        return nil, fmt.Errorf("%w: at least one non-empty content is required", appErrors.ErrInvalidInput)
    }

    amHour, amMin, err := ParseClock(c.MorningTime)
    if err != nil {
        return nil, err
    }
    pmHour, pmMin, err := ParseClock(c.EveningTime)
    if err != nil {
        return nil, err
    }

    slots := []struct {
        slot         model.PostSlot
        hour, minute int
    }{
        {model.SlotAM, amHour, amMin},
        {model.SlotPM, pmHour, pmMin},
    }

    y, m, d := c.StartDate.Date()
    posts := make([]*model.Post, 0, c.DurationDays*len(slots))
    k := 0
    for day := 1; day <= c.DurationDays; day++ {
        for _, sl := range slots {
            at := time.Date(y, m, d+day-1, sl.hour, sl.minute, 0, 0, loc)
            posts = append(posts, &model.Post{
                CampaignID:         c.ID,
                DayIndex:           day,
                Slot:               sl.slot,
                ScheduledTimeLabel: TimeLabel(at),
                TargetAudience:     in.TargetAudience,
                Content:            contents[k%len(contents)],
                MediaURLs:          []string{},
                UseOgFallback:      in.UseOgFallback,
                ScheduledAt:        at,
                Status:             model.PostDraft,
                Source:             model.SourceGenerated,
                Cycle:              k/len(contents) + 1,
            })
            k++
        }
    }
    return posts, nil
}
