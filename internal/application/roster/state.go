package roster

import (
	"context"
	"sync"

	"soaiadmin/internal/adapters/api"
	domain "soaiadmin/internal/domain/member"
)

// DefaultPageSize is the default number of roster rows per page.
const DefaultPageSize = 10

// PageSizeOptions are the allowed rows-per-page values.
var PageSizeOptions = []int{10, 20, 50, 100}

// Fetcher abstracts the membership API for roster reads.
type Fetcher interface {
	FetchMembers(ctx context.Context, query api.Query) (api.PagedMembers, error)
}

// Params are the operator-settable view parameters.
type Params struct {
	Page     int
	PageSize int
	Search   string
	Status   string
	Plan     string
}

// Snapshot is a consistent copy of the state for rendering.
type Snapshot struct {
	Items     []domain.Member
	Total     int
	Page      int
	PageSize  int
	Search    string
	Status    string
	Plan      string
	Loading   bool
	Error     string
	Expanded  string // id of the single expanded row, empty for none
	PageCount int
	CanPrev   bool
	CanNext   bool
}

// State is the single source of truth for what the operator is currently
// looking at: filter and pagination parameters plus the last fetched page.
// It owns the fetch lifecycle. Fetches are fenced with a monotonically
// increasing sequence number: a response older than the latest issued request
// is discarded, so stale results never overwrite newer ones.
type State struct {
	mu      sync.Mutex
	fetcher Fetcher

	items    []domain.Member
	total    int
	page     int
	pageSize int
	search   string
	status   string
	plan     string

	inflight int    // outstanding fetches; loading while > 0
	lastErr  string // last failure message, cleared at fetch start
	loaded   bool   // at least one fetch has been issued

	expanded string // tagged optional row id: empty means no row expanded

	seq uint64 // sequence of the latest issued fetch
}

// NewState creates a roster state with default parameters (page 1).
// PRE: fetcher is non-nil
// POST: Returns an empty state; no fetch is issued until Apply or Reload
func NewState(fetcher Fetcher, pageSize int) *State {
	if !validPageSize(pageSize) {
		pageSize = DefaultPageSize
	}
	return &State{
		fetcher:  fetcher,
		page:     1,
		pageSize: pageSize,
	}
}

func validPageSize(n int) bool {
	for _, v := range PageSizeOptions {
		if v == n {
			return true
		}
	}
	return false
}

// Apply sets the view parameters and triggers exactly one fetch when anything
// changed (or nothing has been loaded yet). Changing search, status, plan or
// page size resets the page to 1 so an out-of-range page is never requested;
// the requested page is honoured only when the filters are unchanged.
// PRE: p.Page >= 1 (lower values are clamped)
// POST: State reflects p; a fetch for the new parameters has resolved or
// been superseded by a newer one
func (s *State) Apply(ctx context.Context, p Params) {
	s.mu.Lock()
	if !validPageSize(p.PageSize) {
		p.PageSize = s.pageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}

	filtersChanged := p.Search != s.search || p.Status != s.status ||
		p.Plan != s.plan || p.PageSize != s.pageSize
	pageChanged := p.Page != s.page

	if filtersChanged {
		p.Page = 1
		pageChanged = p.Page != s.page
	}

	if !filtersChanged && !pageChanged && s.loaded {
		s.mu.Unlock()
		return
	}

	s.search = p.Search
	s.status = p.Status
	s.plan = p.Plan
	s.pageSize = p.PageSize
	s.page = p.Page
	s.fetchLocked(ctx)
}

// Reload re-fetches with unchanged parameters. Used after destructive
// mutations, which change total and potentially the page's membership.
func (s *State) Reload(ctx context.Context) {
	s.mu.Lock()
	s.fetchLocked(ctx)
}

// fetchLocked issues one fetch for the current parameters. The mutex must be
// held on entry; it is released while the request is in flight and the result
// is applied only if no newer fetch was issued meanwhile.
func (s *State) fetchLocked(ctx context.Context) {
	s.seq++
	mySeq := s.seq
	s.inflight++
	s.lastErr = ""
	s.loaded = true
	query := api.Query{
		Page:     s.page,
		PageSize: s.pageSize,
		Search:   s.search,
		Status:   s.status,
		Plan:     s.plan,
	}
	s.mu.Unlock()

	result, err := s.fetcher.FetchMembers(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if mySeq != s.seq {
		// A newer request was issued while this one was in flight.
		return
	}
	if err != nil {
		s.lastErr = err.Error()
		return
	}
	s.items = result.Items
	s.total = result.Total
}

// UpdateItemLocal patches one held row in place without a round trip. Only
// non-nil change fields are applied; all other rows and fields are untouched,
// as are total and pagination. Callers apply this only after the upstream
// mutation succeeded — a failed mutation leaves state at its pre-attempt value.
// PRE: the mutation for these changes returned success
// POST: The matching row carries the changed fields; no other row changed
func (s *State) UpdateItemLocal(id string, changes api.MemberChanges) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if changes.Plan != nil {
			s.items[i].Plan = *changes.Plan
		}
		if changes.Role != nil {
			s.items[i].Role = *changes.Role
		}
		if changes.IsAdmin != nil {
			s.items[i].IsAdmin = *changes.IsAdmin
		}
		return
	}
}

// ToggleExpanded expands the details row for id, collapsing any other row:
// at most one row is expanded at a time. Toggling the expanded row collapses it.
func (s *State) ToggleExpanded(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expanded == id {
		s.expanded = ""
		return
	}
	s.expanded = id
}

// Snapshot returns a consistent copy for rendering. The items slice is copied
// so renderers never observe a concurrent patch mid-iteration.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.Member, len(s.items))
	copy(items, s.items)

	pageCount := (s.total + s.pageSize - 1) / s.pageSize
	if pageCount < 1 {
		pageCount = 1
	}

	return Snapshot{
		Items:     items,
		Total:     s.total,
		Page:      s.page,
		PageSize:  s.pageSize,
		Search:    s.search,
		Status:    s.status,
		Plan:      s.plan,
		Loading:   s.inflight > 0,
		Error:     s.lastErr,
		Expanded:  s.expanded,
		PageCount: pageCount,
		CanPrev:   s.page > 1,
		CanNext:   s.page < pageCount,
	}
}
