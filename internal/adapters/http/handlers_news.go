package web

import (
	"net/http"
	"strconv"
	"strings"

	"soaiadmin/internal/application/listutil"
	"soaiadmin/internal/application/roster"
	newsDomain "soaiadmin/internal/domain/news"
)

// handleNews handles GET /news: paginated news posts with markdown bodies
// rendered server-side.
func handleNews(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	pp := listutil.ParsePageParams(q, roster.PageSizeOptions, roster.DefaultPageSize)
	fp := listutil.ParseFilterParams(q, nil)

	result, err := deps.API.FetchNews(r.Context(), pp.Page, pp.PerPage, fp.Search)
	if err != nil {
		upstreamError(w, r, err)
		return
	}

	renderTemplate(w, r, "news_list.html", map[string]any{
		"Posts":    result.Items,
		"PageInfo": listutil.NewPageInfo(result.Page, pp.PerPage, result.Total),
		"Search":   fp.Search,
	})
}

// parseNewsForm builds a Post from an edit or create form.
func parseNewsForm(r *http.Request) newsDomain.Post {
	published := 0
	if r.FormValue("Published") == "1" {
		published = 1
	}
	return newsDomain.Post{
		ID:        r.FormValue("ID"),
		Title:     strings.TrimSpace(r.FormValue("Title")),
		Body:      r.FormValue("Body"),
		Published: published,
	}
}

// handleNewsNew handles GET (form) and POST (create) for /news/new.
func handleNewsNew(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		renderTemplate(w, r, "news_form.html", map[string]any{
			"Post": newsDomain.Post{},
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		post := parseNewsForm(r)
		if err := post.Validate(); err != nil {
			renderTemplate(w, r, "news_form.html", map[string]any{
				"Post":  post,
				"Error": err.Error(),
			})
			return
		}
		if err := deps.API.CreateNews(r.Context(), post); err != nil {
			upstreamError(w, r, err)
			return
		}
		http.Redirect(w, r, "/news", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleNewsEdit handles GET (form) and POST (update) for /news/edit.
// The form is prefilled from the current upstream page rather than a separate
// read endpoint, so the id must be on the page the operator navigated from.
func handleNewsEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		id := r.URL.Query().Get("id")
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}
		result, err := deps.API.FetchNews(r.Context(), page, roster.DefaultPageSize, "")
		if err != nil {
			upstreamError(w, r, err)
			return
		}
		for _, p := range result.Items {
			if p.ID == id {
				renderTemplate(w, r, "news_form.html", map[string]any{
					"Post": p,
					"Edit": true,
				})
				return
			}
		}
		http.Error(w, "news post not found", http.StatusNotFound)
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		post := parseNewsForm(r)
		if post.ID == "" {
			http.Error(w, "ID is required", http.StatusBadRequest)
			return
		}
		if err := post.Validate(); err != nil {
			renderTemplate(w, r, "news_form.html", map[string]any{
				"Post":  post,
				"Edit":  true,
				"Error": err.Error(),
			})
			return
		}
		if err := deps.API.UpdateNews(r.Context(), post); err != nil {
			upstreamError(w, r, err)
			return
		}
		http.Redirect(w, r, "/news", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleNewsDelete handles POST /news/delete.
func handleNewsDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := r.FormValue("ID")
	if id == "" {
		http.Error(w, "ID is required", http.StatusBadRequest)
		return
	}
	if err := deps.API.DeleteNews(r.Context(), id); err != nil {
		upstreamError(w, r, err)
		return
	}
	http.Redirect(w, r, "/news", http.StatusSeeOther)
}
