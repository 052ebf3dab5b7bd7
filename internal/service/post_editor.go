// internal/service/post_editor.go
package service

import (
    "context"
    "fmt"

    appErrors "github.com/unclebandit/postcampaign-backend/internal/errors"
    "github.com/unclebandit/postcampaign-backend/internal/model"
)

// EditBuffer holds the editable fields of a post while an edit is open.
type EditBuffer struct {
    PostID        int              `json:"post_id"`
    Content       string           `json:"content"`
    Status        model.PostStatus `json:"status"`
    MediaURLs     []string         `json:"media_urls"`
    MediaAlt      *string          `json:"media_alt,omitempty"`
    UseOgFallback bool             `json:"use_og_fallback"`
    Version       int              `json:"version"`
}

// PostEditor tracks one in-progress edit. It is not safe for concurrent use;
// each dashboard session or request gets its own editor.
type PostEditor struct {
    Service *PostService
    buffer  *EditBuffer
}

func NewPostEditor(svc *PostService) *PostEditor {
    return &PostEditor{Service: svc}
}

// StartEdit opens a buffer for the post. POSTED posts cannot be edited.
func (e *PostEditor) StartEdit(post *model.Post) error {
    if post.Status.IsTerminal() {
        return appErrors.ErrPostLocked
    }
    media := make([]string, len(post.MediaURLs))
    copy(media, post.MediaURLs)

    e.buffer = &EditBuffer{
        PostID:        post.ID,
        Content:       post.Content,
        Status:        post.Status,
        MediaURLs:     media,
        MediaAlt:      post.MediaAlt,
        UseOgFallback: post.UseOgFallback,
        Version:       post.Version,
    }
    return nil
}

// Buffer returns the open buffer, or nil when no edit is in progress.
func (e *PostEditor) Buffer() *EditBuffer {
    return e.buffer
}

func (e *PostEditor) Editing() bool {
    return e.buffer != nil
}

func (e *PostEditor) CancelEdit() {
    e.buffer = nil
}

// SaveEdit persists patch for the post being edited. On success the buffer is
// closed; on failure it stays open so the caller can retry or cancel.
// Without an explicit ExpectedVersion the version seen at StartEdit is used.
func (e *PostEditor) SaveEdit(ctx context.Context, id int, patch model.PostPatch) (*model.Post, error) {
    if e.buffer == nil || e.buffer.PostID != id {
        return nil, fmt.Errorf("%w: post %d", appErrors.ErrNoEdit, id)
    }
    if patch.ExpectedVersion == nil {
        v := e.buffer.Version
        patch.ExpectedVersion = &v
    }

    updated, err := e.Service.UpdatePost(ctx, id, patch)
    if err != nil {
        return nil, err
    }
    e.buffer = nil
    return updated, nil
}
