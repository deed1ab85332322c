package web

import (
	"net/http"
	"strings"

	"soaiadmin/internal/adapters/http/middleware"
)

// handleLogin handles the two-stage email code login for /login.
// GET renders the email form. POST with only Email asks the membership API to
// send a one-time code and renders the code form. POST with Email and Code
// verifies the code, stores the returned API token and opens a console session.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		// Already logged in: straight to the roster.
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/members", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{
			"Email": "",
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.FormValue("Email"))
		code := strings.TrimSpace(r.FormValue("Code"))

		if email == "" {
			renderTemplate(w, r, "login.html", map[string]any{
				"Email": "",
				"Error": "Email is required",
			})
			return
		}

		if code == "" {
			// Stage one: request a login code for this address.
			if err := deps.API.RequestLoginCode(r.Context(), email); err != nil {
				renderTemplate(w, r, "login.html", map[string]any{
					"Email": email,
					"Error": "Could not request a login code. Check the address and try again.",
				})
				return
			}
			renderTemplate(w, r, "login.html", map[string]any{
				"Email":    email,
				"CodeSent": true,
			})
			return
		}

		// Stage two: verify the code, keep the API token.
		result, err := deps.API.VerifyLoginCode(r.Context(), email, code)
		if err != nil {
			renderTemplate(w, r, "login.html", map[string]any{
				"Email":    email,
				"CodeSent": true,
				"Error":    "That code was not accepted. Request a new one and retry.",
			})
			return
		}

		deps.Session.Set(result.Token)

		token, err := sessions.Create(email)
		if err != nil {
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}
		middleware.SetSessionCookie(w, token)
		http.Redirect(w, r, "/members", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleLogout handles POST /logout. Both the console session and the stored
// API token are discarded, matching the operator's expectation that logout
// fully signs them out of the membership API.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if token, ok := middleware.SessionToken(r); ok {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	deps.Session.Clear()
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
