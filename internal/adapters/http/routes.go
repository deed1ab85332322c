package web

import (
	"net/http"

	"soaiadmin/internal/adapters/http/middleware"
)

// registerRoutes attaches all console handlers to the mux.
// Routes under /members, /news, /events and /admin require a console session;
// /login and /logout do not.
func registerRoutes(mux *http.ServeMux) {
	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(h)
	}

	mux.HandleFunc("/", handleHome)
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/logout", handleLogout)

	mux.Handle("/members", authed(handleMembers))
	mux.Handle("/members/plan", authed(handleMemberPlan))
	mux.Handle("/members/role", authed(handleMemberRole))
	mux.Handle("/members/admin", authed(handleMemberAdmin))
	mux.Handle("/members/details", authed(handleMemberDetails))
	mux.Handle("/members/remove", authed(handleMemberRemove))
	mux.Handle("/members/refresh", authed(handleMembersRefresh))
	mux.Handle("/members/export.csv", authed(handleMembersExport))

	mux.Handle("/news", authed(handleNews))
	mux.Handle("/news/new", authed(handleNewsNew))
	mux.Handle("/news/edit", authed(handleNewsEdit))
	mux.Handle("/news/delete", authed(handleNewsDelete))

	mux.Handle("/events", authed(handleEvents))
	mux.Handle("/events/new", authed(handleEventNew))
	mux.Handle("/events/edit", authed(handleEventEdit))
	mux.Handle("/events/delete", authed(handleEventDelete))

	mux.Handle("/admin/perf", authed(handleAdminPerf))
}
