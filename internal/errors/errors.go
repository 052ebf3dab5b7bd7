// internal/errors/errors.go
package appErrors

import (
    "errors"
    "fmt"
)

var (
    // ErrPostLocked is returned for any edit, delete or send of a POSTED post.
    ErrPostLocked      = errors.New("post has already been sent and can no longer be changed")
    ErrVersionConflict = errors.New("post was modified by someone else, reload and try again")
    ErrInvalidStatus   = errors.New("invalid status")
    ErrTooManyMedia    = errors.New("a post can have at most 4 media URLs")
    ErrEmptyPatch      = errors.New("nothing to update")
    ErrInvalidInput    = errors.New("invalid input")
    ErrNoEdit          = errors.New("no edit in progress for this post")
)

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
    CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
    return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
    return &ErrCampaignNotFound{CampaignID: id}
}

type ErrPostNotFound struct {
    PostID int
}

func (e *ErrPostNotFound) Error() string {
    return fmt.Sprintf("post with ID %d not found", e.PostID)
}

func NewPostNotFound(id int) error {
    return &ErrPostNotFound{PostID: id}
}

// IsNotFound matches both campaign and post lookups.
func IsNotFound(err error) bool {
    var c *ErrCampaignNotFound
    var p *ErrPostNotFound
    return errors.As(err, &c) || errors.As(err, &p)
}
