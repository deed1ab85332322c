package event

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrEmptyTitle      = errors.New("event title cannot be empty")
	ErrMissingStart    = errors.New("event start date is required")
	ErrEndsBeforeStart = errors.New("event cannot end before it starts")
)

// Event is the console's projection of an organization event.
type Event struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Location  string `json:"location,omitempty"`
	StartsAt  string `json:"starts_at"`
	EndsAt    string `json:"ends_at,omitempty"`
	Body      string `json:"body,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Validate checks editable fields before submitting to the API.
// PRE: Event fields may be empty
// POST: Returns nil if valid, a domain error otherwise
func (e Event) Validate() error {
	if e.Title == "" {
		return ErrEmptyTitle
	}
	if e.StartsAt == "" {
		return ErrMissingStart
	}
	start, err1 := time.Parse(time.RFC3339, e.StartsAt)
	end, err2 := time.Parse(time.RFC3339, e.EndsAt)
	if err1 == nil && err2 == nil && end.Before(start) {
		return ErrEndsBeforeStart
	}
	return nil
}
