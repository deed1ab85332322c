package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	eventDomain "soaiadmin/internal/domain/event"
)

// PagedEvents is the upstream paged envelope for events.
type PagedEvents struct {
	Items    []eventDomain.Event `json:"items"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"pageSize"`
}

// FetchEvents lists one page of events.
// PRE: page >= 1, pageSize >= 1
// POST: Returns the page; optional search omitted when empty
func (c *Client) FetchEvents(ctx context.Context, page, pageSize int, search string) (PagedEvents, error) {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("pageSize", strconv.Itoa(pageSize))
	if search != "" {
		v.Set("search", search)
	}
	var result PagedEvents
	err := c.do(ctx, http.MethodGet, "/api/events", v, nil, &result)
	return result, err
}

// CreateEvent creates an event upstream.
// PRE: evt has been validated
// POST: Event is created; the upstream assigns id and created_at
func (c *Client) CreateEvent(ctx context.Context, evt eventDomain.Event) error {
	var result okResponse
	return c.do(ctx, http.MethodPost, "/api/events", nil, evt, &result)
}

// UpdateEvent patches an existing event.
// PRE: evt.ID is non-empty; evt has been validated
// POST: Upstream record is patched
func (c *Client) UpdateEvent(ctx context.Context, evt eventDomain.Event) error {
	var result okResponse
	return c.do(ctx, http.MethodPatch, "/api/events", nil, evt, &result)
}

// DeleteEvent removes an event upstream.
// PRE: id is non-empty
// POST: Record removed
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	v := url.Values{}
	v.Set("id", id)
	var result okResponse
	return c.do(ctx, http.MethodDelete, "/api/events", v, nil, &result)
}
