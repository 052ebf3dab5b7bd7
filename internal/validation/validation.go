package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	appErrors "github.com/unclebandit/postcampaign-backend/internal/errors"
	"github.com/unclebandit/postcampaign-backend/internal/model"
)

const (
	MaxContentLength = 280
	MaxMediaURLs     = 4
)

// Report is the outcome of Evaluate. Errors block sending, warnings need an
// explicit acknowledgement from the caller.
type Report struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (r Report) HasErrors() bool   { return len(r.Errors) > 0 }
func (r Report) HasWarnings() bool { return len(r.Warnings) > 0 }

// ContentLength counts characters, not bytes, so Arabic text is measured the
// same way the platform measures it.
func ContentLength(content string) int {
	return utf8.RuneCountInString(content)
}

// Evaluate inspects a post and its campaign. campaign may be nil.
func Evaluate(post *model.Post, campaign *model.Campaign) Report {
	report := Report{Errors: []string{}, Warnings: []string{}}

	if strings.TrimSpace(post.Content) == "" {
		report.Errors = append(report.Errors, "Post content is empty")
	} else if n := ContentLength(post.Content); n > MaxContentLength {
		report.Errors = append(report.Errors,
			fmt.Sprintf("Post content is too long (%d/%d characters)", n, MaxContentLength))
	}

	if len(post.MediaURLs) == 0 {
		if !post.UseOgFallback {
			report.Warnings = append(report.Warnings, "No images attached and OG fallback is disabled")
		} else if !campaign.HasOgImage() {
			report.Warnings = append(report.Warnings, "No images attached and no campaign OG image available for fallback")
		}
	}

	for i, u := range post.MediaURLs {
		trimmed := strings.TrimSpace(u)
		if trimmed == "" {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Media URL %d is empty", i+1))
			continue
		}
		if !isHTTPURL(trimmed) {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Media URL %d is not a valid URL", i+1))
		}
	}

	if strings.TrimSpace(post.TargetAudience) == "" {
		report.Warnings = append(report.Warnings, "Target audience is not specified")
	}

	return report
}

// ResolveImage picks the single image sent with a post: its first media URL,
// else the campaign OG image when the post opts in, else none.
func ResolveImage(post *model.Post, campaign *model.Campaign) string {
	if len(post.MediaURLs) > 0 {
		return post.MediaURLs[0]
	}
	if post.UseOgFallback && campaign.HasOgImage() {
		return *campaign.OgImageURL
	}
	return ""
}

// ValidatePatch checks editor input before it reaches the store.
func ValidatePatch(current *model.Post, patch model.PostPatch) error {
	if patch.IsEmpty() {
		return appErrors.ErrEmptyPatch
	}
	if patch.MediaURLs != nil && len(*patch.MediaURLs) > MaxMediaURLs {
		return appErrors.ErrTooManyMedia
	}
	if patch.Status != nil {
		next := *patch.Status
		if !next.Valid() {
			return fmt.Errorf("%w: %q", appErrors.ErrInvalidStatus, next)
		}
		// POSTED and FAILED are set by the send path only.
		if next != current.Status && next != model.PostDraft && next != model.PostApproved {
			return fmt.Errorf("%w: cannot move post to %s", appErrors.ErrInvalidStatus, next)
		}
	}
	return nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
