package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"soaiadmin/internal/adapters/http/perf"
	domain "soaiadmin/internal/domain/member"
)

// DefaultTimeout bounds a single upstream request.
const DefaultTimeout = 15 * time.Second

// HTTPError carries the status of a non-2xx upstream response. Callers must
// not assume a parsed body on failure.
type HTTPError struct {
	Status     int
	StatusText string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.Status, e.StatusText)
}

// TokenSource provides the current bearer credential for outgoing requests.
// An empty token means the Authorization header is omitted.
type TokenSource interface {
	Get() string
}

// Client is a typed HTTP wrapper over the membership API. Every request sends
// Content-Type: application/json and, when a credential is present, an
// Authorization: Bearer header.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenSource
	collector *perf.Collector
}

// NewClient creates a Client for the given base URL. An empty baseURL means
// same-origin relative paths (console behind a shared reverse proxy).
// PRE: tokens is non-nil
// POST: Returns a ready-to-use client
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		tokens:  tokens,
	}
}

// WithCollector attaches a perf collector recording upstream call timings.
func (c *Client) WithCollector(collector *perf.Collector) *Client {
	c.collector = collector
	return c
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// okResponse is the upstream envelope for mutations.
type okResponse struct {
	OK bool `json:"ok"`
}

// do issues one JSON request and decodes a 2xx response body into out.
// Non-2xx responses return *HTTPError without reading the body shape.
// PRE: method and path are valid; body is JSON-encodable or nil
// POST: out is populated on success; *HTTPError returned for non-2xx
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload *bytes.Buffer
	if body != nil {
		payload = &bytes.Buffer{}
		if err := json.NewEncoder(payload).Encode(body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	var req *http.Request
	var err error
	if payload != nil {
		req, err = http.NewRequestWithContext(ctx, method, u, payload)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, u, nil)
	}
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if token := c.tokens.Get(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if c.collector != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		c.collector.Record(perf.Entry{
			Kind:       perf.KindUpstream,
			Path:       method + " " + path,
			StatusCode: status,
			DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
			Timestamp:  start,
		})
	}
	if err != nil {
		return fmt.Errorf("membership api unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("upstream_error", "method", method, "path", path, "status", resp.StatusCode)
		return &HTTPError{Status: resp.StatusCode, StatusText: http.StatusText(resp.StatusCode)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// Query carries roster list parameters for FetchMembers. Optional filters are
// omitted from the query string entirely when unset — an empty string would
// over-constrain upstream filtering.
type Query struct {
	Page     int
	PageSize int
	Search   string
	Status   string
	Plan     string
}

// Values serializes the query for the upstream list endpoint.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Plan != "" {
		v.Set("plan", q.Plan)
	}
	return v
}

// PagedMembers is the upstream paged envelope for the roster.
type PagedMembers struct {
	Items    []domain.Member `json:"items"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

// MemberChanges is a partial patch for one member. Nil fields are not sent;
// the upstream is trusted to validate or ignore disallowed fields.
type MemberChanges struct {
	Role    *string `json:"role,omitempty"`
	Plan    *string `json:"plan,omitempty"`
	IsAdmin *int    `json:"is_admin,omitempty"`
}

// FetchMembers lists one page of the roster under the given filters.
// PRE: query.Page >= 1, query.PageSize >= 1
// POST: Returns the page; items length never exceeds PageSize upstream-side
func (c *Client) FetchMembers(ctx context.Context, query Query) (PagedMembers, error) {
	var result PagedMembers
	err := c.do(ctx, http.MethodGet, "/api/members", query.Values(), nil, &result)
	return result, err
}

// UpdateMember applies a partial patch to one member.
// PRE: id is non-empty; changes has at least one non-nil field
// POST: Upstream record is patched; local state is untouched by this call
func (c *Client) UpdateMember(ctx context.Context, id string, changes MemberChanges) error {
	body := struct {
		ID string `json:"id"`
		MemberChanges
	}{ID: id, MemberChanges: changes}
	var result okResponse
	return c.do(ctx, http.MethodPatch, "/api/members", nil, body, &result)
}

// DeleteMember removes one member upstream.
// PRE: id is non-empty
// POST: Record removed; caller must reload since total and page membership change
func (c *Client) DeleteMember(ctx context.Context, id string) error {
	v := url.Values{}
	v.Set("id", id)
	var result okResponse
	return c.do(ctx, http.MethodDelete, "/api/members", v, nil, &result)
}

// LoginResult is the verified-code exchange response.
type LoginResult struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// RequestLoginCode asks the upstream to email a verification code.
// PRE: email is non-empty
// POST: A code is issued upstream; nothing is stored locally
func (c *Client) RequestLoginCode(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	var result okResponse
	return c.do(ctx, http.MethodPost, "/api/admin/login/request", nil, body, &result)
}

// VerifyLoginCode exchanges an emailed code for a bearer token.
// PRE: email and code are non-empty
// POST: Returns the token; persisting it is the caller's responsibility
func (c *Client) VerifyLoginCode(ctx context.Context, email, code string) (LoginResult, error) {
	body := map[string]string{"email": email, "code": code}
	var result LoginResult
	err := c.do(ctx, http.MethodPost, "/api/admin/login/verify", nil, body, &result)
	return result, err
}
