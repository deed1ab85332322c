package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	newsDomain "soaiadmin/internal/domain/news"
)

// PagedNews is the upstream paged envelope for news posts.
type PagedNews struct {
	Items    []newsDomain.Post `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// FetchNews lists one page of news posts.
// PRE: page >= 1, pageSize >= 1
// POST: Returns the page; optional search omitted when empty
func (c *Client) FetchNews(ctx context.Context, page, pageSize int, search string) (PagedNews, error) {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("pageSize", strconv.Itoa(pageSize))
	if search != "" {
		v.Set("search", search)
	}
	var result PagedNews
	err := c.do(ctx, http.MethodGet, "/api/news", v, nil, &result)
	return result, err
}

// CreateNews creates a news post upstream.
// PRE: post has been validated
// POST: Post is created; the upstream assigns id and created_at
func (c *Client) CreateNews(ctx context.Context, post newsDomain.Post) error {
	var result okResponse
	return c.do(ctx, http.MethodPost, "/api/news", nil, post, &result)
}

// UpdateNews patches an existing news post.
// PRE: post.ID is non-empty; post has been validated
// POST: Upstream record is patched
func (c *Client) UpdateNews(ctx context.Context, post newsDomain.Post) error {
	var result okResponse
	return c.do(ctx, http.MethodPatch, "/api/news", nil, post, &result)
}

// DeleteNews removes a news post upstream.
// PRE: id is non-empty
// POST: Record removed
func (c *Client) DeleteNews(ctx context.Context, id string) error {
	v := url.Values{}
	v.Set("id", id)
	var result okResponse
	return c.do(ctx, http.MethodDelete, "/api/news", v, nil, &result)
}
