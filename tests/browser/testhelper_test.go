package browser_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	"soaiadmin/internal/adapters/api"
	web "soaiadmin/internal/adapters/http"
	"soaiadmin/internal/adapters/http/middleware"
	"soaiadmin/internal/adapters/http/perf"
	"soaiadmin/internal/adapters/storage"
	credentialStore "soaiadmin/internal/adapters/storage/credential"
	prefsStore "soaiadmin/internal/adapters/storage/prefs"
	"soaiadmin/internal/application/roster"
	"soaiadmin/internal/application/session"
	memberDomain "soaiadmin/internal/domain/member"
)

// upstreamAPI is an in-process membership API for browser tests. It honours
// pagination and filtering the way the real upstream does, so list behaviour
// can be exercised end to end.
type upstreamAPI struct {
	mu      sync.Mutex
	members []memberDomain.Member
	deleted []string
	patches []map[string]any
}

func (u *upstreamAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == "GET" && r.URL.Path == "/api/members":
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		pageSize, _ := strconv.Atoi(q.Get("pageSize"))
		if page < 1 {
			page = 1
		}
		if pageSize < 1 {
			pageSize = 10
		}

		var matched []memberDomain.Member
		for _, m := range u.members {
			if s := q.Get("status"); s != "" && m.Status != s {
				continue
			}
			if p := q.Get("plan"); p != "" && m.Plan != p {
				continue
			}
			if search := strings.ToLower(q.Get("search")); search != "" {
				hay := strings.ToLower(m.FullName() + " " + m.Email + " " + m.MemberID)
				if !strings.Contains(hay, search) {
					continue
				}
			}
			matched = append(matched, m)
		}

		start := (page - 1) * pageSize
		if start > len(matched) {
			start = len(matched)
		}
		end := start + pageSize
		if end > len(matched) {
			end = len(matched)
		}
		json.NewEncoder(w).Encode(api.PagedMembers{
			Items: matched[start:end], Total: len(matched), Page: page, PageSize: pageSize,
		})

	case r.Method == "PATCH" && r.URL.Path == "/api/members":
		var body struct {
			ID      string  `json:"id"`
			Role    *string `json:"role"`
			Plan    *string `json:"plan"`
			IsAdmin *int    `json:"is_admin"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		rec := map[string]any{"id": body.ID}
		if body.Role != nil {
			rec["role"] = *body.Role
		}
		if body.Plan != nil {
			rec["plan"] = *body.Plan
		}
		if body.IsAdmin != nil {
			rec["is_admin"] = *body.IsAdmin
		}
		u.patches = append(u.patches, rec)
		for i := range u.members {
			if u.members[i].ID != body.ID {
				continue
			}
			if body.Role != nil {
				u.members[i].Role = *body.Role
			}
			if body.Plan != nil {
				u.members[i].Plan = *body.Plan
			}
			if body.IsAdmin != nil {
				u.members[i].IsAdmin = *body.IsAdmin
			}
		}
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})

	case r.Method == "DELETE" && r.URL.Path == "/api/members":
		id := r.URL.Query().Get("id")
		u.deleted = append(u.deleted, id)
		kept := u.members[:0]
		for _, m := range u.members {
			if m.ID != id {
				kept = append(kept, m)
			}
		}
		u.members = kept
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})

	case r.Method == "POST" && r.URL.Path == "/api/admin/login/request":
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})

	case r.Method == "POST" && r.URL.Path == "/api/admin/login/verify":
		json.NewEncoder(w).Encode(api.LoginResult{Token: "browser-test-token"})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// seedMembers loads n synthetic members into the fake upstream.
func (u *upstreamAPI) seedMembers(n int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	statuses := memberDomain.Statuses
	plans := memberDomain.Plans
	for i := 1; i <= n; i++ {
		u.members = append(u.members, memberDomain.Member{
			ID:        fmt.Sprintf("u-%03d", i),
			MemberID:  fmt.Sprintf("SOAI-%03d", i),
			Email:     fmt.Sprintf("member%03d@example.org", i),
			FirstName: "Member",
			LastName:  fmt.Sprintf("%03d", i),
			Status:    statuses[i%len(statuses)],
			Plan:      plans[i%len(plans)],
			Role:      "member",
			CreatedAt: "2025-01-01 10:00:00",
		})
	}
}

// testApp holds the running console, its fake upstream and Playwright handles.
type testApp struct {
	BaseURL  string
	Upstream *upstreamAPI
	Server   *http.Server
	PW       *playwright.Playwright
	Browser  playwright.Browser
}

// newTestApp wires a full console against a fake upstream and starts it.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	upstream := &upstreamAPI{}
	upstreamSrv := httptest.NewServer(upstream)
	t.Cleanup(upstreamSrv.Close)

	// Temp state DB for the credential and preference stores.
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "console_state.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to init test DB: %v", err)
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)
	sess := session.NewStore(credentialStore.NewSQLiteStore(timedDB))
	client := api.NewClient(upstreamSrv.URL, sess)
	deps := &web.Deps{
		API:     client,
		Session: sess,
		Roster:  roster.NewState(client, roster.DefaultPageSize),
		Prefs:   prefsStore.NewSQLiteStore(timedDB),
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	// Change to project root so relative template/static paths work
	projectRoot := findProjectRoot(t)
	origDir, _ := os.Getwd()
	if err := os.Chdir(projectRoot); err != nil {
		t.Fatalf("failed to chdir to project root: %v", err)
	}
	t.Cleanup(func() { os.Chdir(origDir) })

	// Add test port to CSRF trusted origins before creating mux
	middleware.ExtraTrustedOrigins = append(middleware.ExtraTrustedOrigins,
		fmt.Sprintf("127.0.0.1:%d", port),
		fmt.Sprintf("localhost:%d", port),
	)

	// Raise the rate limit: browser tests navigate quickly.
	web.RateLimitPerSecond = 100

	mux := web.NewMux("static", deps, collector)
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/login")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	// Start Playwright
	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL:  baseURL,
		Upstream: upstream,
		Server:   srv,
		PW:       pw,
		Browser:  browser,
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Shutdown(context.Background())
		db.Close()
	})

	return app
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login walks the two-stage code login. The fake upstream accepts any code.
func (a *testApp) login(t *testing.T, page playwright.Page) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=Email]").Fill("chair@example.org"); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("button[type=submit]").First().Click(); err != nil {
		t.Fatalf("failed to request code: %v", err)
	}
	if err := page.Locator("input[name=Code]").Fill("123456"); err != nil {
		t.Fatalf("failed to fill code: %v", err)
	}
	if err := page.Locator("button[type=submit]").First().Click(); err != nil {
		t.Fatalf("failed to verify code: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+"/members*", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to the roster: %v", err)
	}
}

// findProjectRoot walks up from the working directory to find the project root (contains go.mod).
func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find project root (go.mod) from working directory")
		}
		dir = parent
	}
}
