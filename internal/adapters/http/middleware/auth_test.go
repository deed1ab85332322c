package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSessionStore_CreateGetDelete(t *testing.T) {
	ss := NewSessionStore()

	token, err := ss.Create("chair@example.org")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(token))
	}

	sess, ok := ss.Get(token)
	if !ok {
		t.Fatal("session not found after Create")
	}
	if sess.Email != "chair@example.org" {
		t.Errorf("email = %q", sess.Email)
	}

	ss.Delete(token)
	if _, ok := ss.Get(token); ok {
		t.Error("session still present after Delete")
	}
}

func TestSessionStore_Expiry(t *testing.T) {
	ss := NewSessionStore()
	token, _ := ss.Create("chair@example.org")

	ss.mu.Lock()
	s := ss.sessions[token]
	s.CreatedAt = time.Now().Add(-25 * time.Hour)
	ss.sessions[token] = s
	ss.mu.Unlock()

	if _, ok := ss.Get(token); ok {
		t.Error("expired session must not be returned")
	}
}

func TestAuthInjectsSession(t *testing.T) {
	ss := NewSessionStore()
	token, _ := ss.Create("chair@example.org")

	var got Session
	var found bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = GetSessionFromContext(r.Context())
	})

	req := httptest.NewRequest("GET", "/members", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	Auth(ss)(inner).ServeHTTP(httptest.NewRecorder(), req)

	if !found {
		t.Fatal("session not injected into context")
	}
	if got.Email != "chair@example.org" {
		t.Errorf("email = %q", got.Email)
	}
}

func TestAuthPassesThroughWithoutCookie(t *testing.T) {
	ss := NewSessionStore()

	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := GetSessionFromContext(r.Context()); ok {
			t.Error("unexpected session in context")
		}
	})

	req := httptest.NewRequest("GET", "/login", nil)
	Auth(ss)(inner).ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Error("handler not reached without a cookie")
	}
}

func TestRequireAuthRedirects(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("guarded handler must not run unauthenticated")
	})

	req := httptest.NewRequest("GET", "/members", nil)
	rec := httptest.NewRecorder()
	RequireAuth(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect = %q, want /login", loc)
	}
}

func TestRequireAuthAllowsSession(t *testing.T) {
	ss := NewSessionStore()
	token, _ := ss.Create("chair@example.org")

	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest("GET", "/members", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	Auth(ss)(RequireAuth(inner)).ServeHTTP(rec, req)

	if !called {
		t.Errorf("guarded handler not reached, status %d", rec.Code)
	}
}

func TestClearSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearSessionCookie(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != sessionCookieName || c.MaxAge != -1 {
		t.Errorf("cookie %q maxage %d, want %q / -1", c.Name, c.MaxAge, sessionCookieName)
	}
}
