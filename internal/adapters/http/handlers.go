package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"soaiadmin/internal/adapters/api"
	"soaiadmin/internal/adapters/http/middleware"
	"soaiadmin/internal/adapters/storage/prefs"
	"soaiadmin/internal/application/listutil"
	"soaiadmin/internal/application/roster"
	"soaiadmin/internal/domain/export"
	memberDomain "soaiadmin/internal/domain/member"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// upstreamError maps a membership API failure to a console response.
// A 401 means the stored API credential is no longer accepted: the credential
// and the console session are discarded and the operator is sent back to login.
func upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) && httpErr.Status == http.StatusUnauthorized {
		slog.Warn("upstream_unauthorized", "path", r.URL.Path)
		deps.Session.Clear()
		if token, ok := middleware.SessionToken(r); ok {
			sessions.Delete(token)
		}
		middleware.ClearSessionCookie(w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	internalError(w, err)
}

const templatesDir = "internal/adapters/http/templates"

// TemplatesDir allows tests and the binary to point at the template files
// when the working directory is not the repository root.
var TemplatesDir = templatesDir

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	email := ""
	if ok {
		email = sess.Email
	}

	funcMap := template.FuncMap{
		"currentEmail": func() string { return email },
		"isLoggedIn":   func() bool { return email != "" },
		"csrfToken":    func() string { return csrf.Token(r) },
		"list":         func(items ...string) []string { return items },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"rosterQuery": func(page int, search, status, plan string, perPage int) template.URL {
			return template.URL(rosterQueryString(page, search, status, plan, perPage))
		},
	}

	layoutPath := filepath.Join(TemplatesDir, "layout.html")
	pagePath := filepath.Join(TemplatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// rosterQueryString builds the canonical /members query string. Optional
// filters are omitted when empty so URLs stay shareable and stable.
func rosterQueryString(page int, search, status, plan string, perPage int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("per_page", strconv.Itoa(perPage))
	if search != "" {
		v.Set("q", search)
	}
	if status != "" {
		v.Set("status", status)
	}
	if plan != "" {
		v.Set("plan", plan)
	}
	return v.Encode()
}

// returnPath validates the Return form field so redirects stay on-console.
func returnPath(r *http.Request) string {
	p := r.FormValue("Return")
	if strings.HasPrefix(p, "/members") || strings.HasPrefix(p, "/news") || strings.HasPrefix(p, "/events") {
		return p
	}
	return "/members"
}

// findMember locates one held roster row by id. The roster only ever patches
// rows it already holds, so a miss means the row left the current page.
func findMember(id string) (memberDomain.Member, bool) {
	snap := deps.Roster.Snapshot()
	for _, m := range snap.Items {
		if m.ID == id {
			return m, true
		}
	}
	return memberDomain.Member{}, false
}

// handleHome handles GET / and redirects to the roster.
func handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/members", http.StatusSeeOther)
}

// handleMembers handles GET /members: the roster list with pagination,
// search and filtering. Parameters live in the URL; the shared roster state
// follows whatever the operator last requested.
func handleMembers(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	q := r.URL.Query()

	// Absent per_page keeps whatever page size the roster already uses.
	defaultPerPage := deps.Roster.Snapshot().PageSize
	pp := listutil.ParsePageParams(q, roster.PageSizeOptions, defaultPerPage)
	fp := listutil.ParseFilterParams(q, []string{"status", "plan"})

	deps.Roster.Apply(ctx, roster.Params{
		Page:     pp.Page,
		PageSize: pp.PerPage,
		Search:   fp.Search,
		Status:   fp.Filters["status"],
		Plan:     fp.Filters["plan"],
	})

	// An explicit per_page choice is remembered across restarts.
	if q.Get("per_page") != "" && deps.Prefs != nil {
		if err := deps.Prefs.Set(ctx, prefs.KeyRosterPageSize, strconv.Itoa(pp.PerPage)); err != nil {
			slog.Warn("page_size_pref_not_saved", "error", err.Error())
		}
	}

	snap := deps.Roster.Snapshot()

	if isHTMLRequest(r) {
		renderTemplate(w, r, "member_list.html", map[string]any{
			"Snap":            snap,
			"Statuses":        memberDomain.Statuses,
			"Plans":           memberDomain.Plans,
			"PageSizeOptions": roster.PageSizeOptions,
			"SentinelAll":     listutil.SentinelAll,
			"Return":          "/members?" + rosterQueryString(snap.Page, snap.Search, snap.Status, snap.Plan, snap.PageSize),
			"HasFilters":      snap.Search != "" || snap.Status != "" || snap.Plan != "",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// handleMemberPlan handles POST /members/plan: change one member's plan.
// The held row is patched locally only after the upstream accepted the change.
func handleMemberPlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := r.FormValue("MemberID")
	plan := r.FormValue("Plan")
	if id == "" || !memberDomain.ValidPlan(plan) {
		http.Error(w, "Invalid plan selection", http.StatusBadRequest)
		return
	}

	changes := api.MemberChanges{Plan: &plan}
	if err := deps.API.UpdateMember(r.Context(), id, changes); err != nil {
		upstreamError(w, r, err)
		return
	}
	deps.Roster.UpdateItemLocal(id, changes)
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

// handleMemberRole handles GET (form) and POST (update) for /members/role.
func handleMemberRole(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		id := r.URL.Query().Get("id")
		m, ok := findMember(id)
		if !ok {
			http.Error(w, "member not found on current page", http.StatusNotFound)
			return
		}
		renderTemplate(w, r, "member_role.html", map[string]any{
			"Member": m,
			"Return": r.URL.Query().Get("return"),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		id := r.FormValue("MemberID")
		role := strings.TrimSpace(r.FormValue("Role"))
		if id == "" || role == "" {
			http.Error(w, "Role must not be empty", http.StatusBadRequest)
			return
		}
		if m, ok := findMember(id); ok && role == m.Role {
			// Nothing to change; skip the upstream round trip.
			http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
			return
		}

		changes := api.MemberChanges{Role: &role}
		if err := deps.API.UpdateMember(r.Context(), id, changes); err != nil {
			upstreamError(w, r, err)
			return
		}
		deps.Roster.UpdateItemLocal(id, changes)
		http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleMemberAdmin handles POST /members/admin: toggle the admin flag.
// The current role is sent alongside the flag so the upstream record keeps it.
func handleMemberAdmin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := r.FormValue("MemberID")
	m, ok := findMember(id)
	if !ok {
		http.Error(w, "member not found on current page", http.StatusNotFound)
		return
	}

	flag := 1
	if m.Admin() {
		flag = 0
	}
	role := m.Role
	changes := api.MemberChanges{IsAdmin: &flag, Role: &role}
	if err := deps.API.UpdateMember(r.Context(), id, changes); err != nil {
		upstreamError(w, r, err)
		return
	}
	deps.Roster.UpdateItemLocal(id, changes)
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

// handleMemberDetails handles POST /members/details: expand or collapse one
// member's detail row. At most one row is expanded at a time.
func handleMemberDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := r.FormValue("MemberID")
	if id == "" {
		http.Error(w, "MemberID is required", http.StatusBadRequest)
		return
	}
	deps.Roster.ToggleExpanded(id)
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

// handleMemberRemove handles GET (confirmation page) and POST (delete) for
// /members/remove. Deletion always refetches the current page afterwards:
// total and page membership both change server-side.
func handleMemberRemove(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		id := r.URL.Query().Get("id")
		m, ok := findMember(id)
		if !ok {
			http.Error(w, "member not found on current page", http.StatusNotFound)
			return
		}
		renderTemplate(w, r, "member_remove.html", map[string]any{
			"Member": m,
			"Return": r.URL.Query().Get("return"),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		id := r.FormValue("MemberID")
		if id == "" {
			http.Error(w, "MemberID is required", http.StatusBadRequest)
			return
		}

		if err := deps.API.DeleteMember(r.Context(), id); err != nil {
			upstreamError(w, r, err)
			return
		}
		if deps.Roster.Snapshot().Expanded == id {
			deps.Roster.ToggleExpanded(id)
		}
		deps.Roster.Reload(r.Context())
		http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleMembersRefresh handles POST /members/refresh: refetch the current page
// with unchanged parameters.
func handleMembersRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	deps.Roster.Reload(r.Context())
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

// handleMembersExport handles GET /members/export.csv: download the currently
// held page as CSV. Exactly the rows on screen are exported, under the current
// filters, not the full upstream roster.
func handleMembersExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snap := deps.Roster.Snapshot()
	csvBody := export.MembersCSV(snap.Items)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Write([]byte(csvBody))
}

// handleAdminPerf handles GET /admin/perf: aggregated timing data for the
// console and its upstream calls, as JSON.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	window := 15 * time.Minute
	if v := r.URL.Query().Get("window_min"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			window = time.Duration(n) * time.Minute
		}
	}
	snap := perfCollector.Snapshot(timeNow().Add(-window), 10)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}
