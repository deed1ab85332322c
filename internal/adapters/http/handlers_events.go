package web

import (
	"net/http"
	"strconv"
	"strings"

	"soaiadmin/internal/application/listutil"
	"soaiadmin/internal/application/roster"
	eventDomain "soaiadmin/internal/domain/event"
)

// handleEvents handles GET /events: paginated organization events.
func handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	pp := listutil.ParsePageParams(q, roster.PageSizeOptions, roster.DefaultPageSize)
	fp := listutil.ParseFilterParams(q, nil)

	result, err := deps.API.FetchEvents(r.Context(), pp.Page, pp.PerPage, fp.Search)
	if err != nil {
		upstreamError(w, r, err)
		return
	}

	renderTemplate(w, r, "event_list.html", map[string]any{
		"Events":   result.Items,
		"PageInfo": listutil.NewPageInfo(result.Page, pp.PerPage, result.Total),
		"Search":   fp.Search,
	})
}

// parseEventForm builds an Event from an edit or create form.
func parseEventForm(r *http.Request) eventDomain.Event {
	return eventDomain.Event{
		ID:       r.FormValue("ID"),
		Title:    strings.TrimSpace(r.FormValue("Title")),
		Location: strings.TrimSpace(r.FormValue("Location")),
		StartsAt: r.FormValue("StartsAt"),
		EndsAt:   r.FormValue("EndsAt"),
		Body:     r.FormValue("Body"),
	}
}

// handleEventNew handles GET (form) and POST (create) for /events/new.
func handleEventNew(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		renderTemplate(w, r, "event_form.html", map[string]any{
			"Event": eventDomain.Event{},
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		evt := parseEventForm(r)
		if err := evt.Validate(); err != nil {
			renderTemplate(w, r, "event_form.html", map[string]any{
				"Event": evt,
				"Error": err.Error(),
			})
			return
		}
		if err := deps.API.CreateEvent(r.Context(), evt); err != nil {
			upstreamError(w, r, err)
			return
		}
		http.Redirect(w, r, "/events", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleEventEdit handles GET (form) and POST (update) for /events/edit.
func handleEventEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		id := r.URL.Query().Get("id")
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}
		result, err := deps.API.FetchEvents(r.Context(), page, roster.DefaultPageSize, "")
		if err != nil {
			upstreamError(w, r, err)
			return
		}
		for _, e := range result.Items {
			if e.ID == id {
				renderTemplate(w, r, "event_form.html", map[string]any{
					"Event": e,
					"Edit":  true,
				})
				return
			}
		}
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		evt := parseEventForm(r)
		if evt.ID == "" {
			http.Error(w, "ID is required", http.StatusBadRequest)
			return
		}
		if err := evt.Validate(); err != nil {
			renderTemplate(w, r, "event_form.html", map[string]any{
				"Event": evt,
				"Edit":  true,
				"Error": err.Error(),
			})
			return
		}
		if err := deps.API.UpdateEvent(r.Context(), evt); err != nil {
			upstreamError(w, r, err)
			return
		}
		http.Redirect(w, r, "/events", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleEventDelete handles POST /events/delete.
func handleEventDelete(w http.ResponseWriter, r *http.Request) {
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
	if err := deps.API.DeleteEvent(r.Context(), id); err != nil {
		upstreamError(w, r, err)
		return
	}
	http.Redirect(w, r, "/events", http.StatusSeeOther)
}
