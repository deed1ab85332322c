package news

import "errors"

// Max length constants for editable fields.
const (
	MaxTitleLength = 200
)

// Domain errors
var (
	ErrEmptyTitle   = errors.New("news title cannot be empty")
	ErrEmptyBody    = errors.New("news body cannot be empty")
	ErrTitleTooLong = errors.New("news title cannot exceed 200 characters")
)

// Post is the console's projection of a news post. Bodies are markdown,
// rendered server-side before display.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Published int    `json:"published"`
	CreatedAt string `json:"created_at"`
}

// IsPublished reports whether the post is visible to members.
func (p Post) IsPublished() bool {
	return p.Published != 0
}

// Validate checks editable fields before submitting to the API.
// PRE: Post fields may be empty
// POST: Returns nil if valid, a domain error otherwise
func (p Post) Validate() error {
	if p.Title == "" {
		return ErrEmptyTitle
	}
	if len(p.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if p.Body == "" {
		return ErrEmptyBody
	}
	return nil
}
