package main

import (
	"bytes"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"go-resource-admin/internal/admin"
	"go-resource-admin/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/justinas/nosurf"
)

// sortColumn is a sortable column heading of the index table.
type sortColumn struct {
	Label  string
	Field  string
	Href   string // Link that sorts by this column
	Active bool
	Order  string // Current order when Active
}

type option struct {
	Value string
	Label string
}

type optionGroup struct {
	Label   string
	Options []option
}

// IndexPageData holds all data needed for the index template.
type IndexPageData struct {
	Title       string
	CSRFToken   string
	CurrentYear int
	View        *admin.IndexView
	Columns     []sortColumn
	Actions     []optionGroup
}

var columns = []struct{ field, label string }{
	{"name", "Name"},
	{"source", "Source"},
	{"release-date", "Release Date"},
	{"author", "Author"},
}

// indexHandler serves the resource index of a type.
func (app *adminApplication) indexHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := app.resourceType(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	_, unsort := q["unsort"]
	res, err := app.controller.Index(admin.SortRequest{
		Type:       t,
		Unsort:     unsort,
		Field:      q.Get("sort"),
		Order:      q.Get("order"),
		CurrentURL: t.PageContext(),
	})
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	if res.IsRedirect() {
		http.Redirect(w, r, res.Location, http.StatusSeeOther)
		return
	}

	res.View.Alerts = append(res.View.Alerts, app.flashes.Pop(w, r)...)
	app.render(w, r, res.View)
}

// bulkHandler applies a "With Selected" action submitted from the index.
func (app *adminApplication) bulkHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := app.resourceType(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		app.logger.Warn("Failed to parse form", "error", err)
		http.Error(w, "Bad Request: Could not parse form.", http.StatusBadRequest)
		return
	}

	apply, items := parseBulkForm(r.PostForm)
	res, err := app.controller.Bulk(admin.BulkRequest{
		Type:         t,
		CurrentURL:   t.PageContext(),
		Apply:        apply,
		Items:        items,
		WithSelected: r.PostForm.Get("with-selected"),
		Form:         r.PostForm,
	})
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	if res.IsRedirect() {
		app.flashes.Add(w, r, res.Alerts...)
		http.Redirect(w, r, res.Location, http.StatusSeeOther)
		return
	}

	// Nothing was done, or something failed: show the index with the alerts.
	idx, err := app.controller.Index(admin.SortRequest{Type: t, CurrentURL: t.PageContext()}, res.Alerts...)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.render(w, r, idx.View)
}

// parseBulkForm reads the apply button ("action[apply]") and the checked
// handles ("items[<handle>]") from the index form. Handles come back sorted.
func parseBulkForm(form map[string][]string) (apply bool, items []string) {
	for key := range form {
		switch {
		case strings.HasPrefix(key, "action[") && strings.HasSuffix(key, "]"):
			apply = apply || key == "action[apply]"
		case strings.HasPrefix(key, "items[") && strings.HasSuffix(key, "]"):
			if handle := key[len("items[") : len(key)-1]; handle != "" {
				items = append(items, handle)
			}
		}
	}
	for _, handle := range form["items"] {
		if handle != "" && !slices.Contains(items, handle) {
			items = append(items, handle)
		}
	}
	slices.Sort(items)
	return apply, items
}

// resourceType parses the {type} URL parameter, answering 404 for unknown types.
func (app *adminApplication) resourceType(w http.ResponseWriter, r *http.Request) (model.ResourceType, bool) {
	t, err := model.ParseResourceType(chi.URLParam(r, "type"))
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return t, true
}

func (app *adminApplication) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, admin.ErrInvalidRequest) {
		app.logger.Warn("Rejected request", "path", r.URL.Path, "error", err)
		http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
		return
	}
	app.logger.Error("Request failed", "path", r.URL.Path, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// render executes the index template into a buffer first, so a template
// error still produces a clean 500.
func (app *adminApplication) render(w http.ResponseWriter, r *http.Request, view *admin.IndexView) {
	data := IndexPageData{
		Title:       view.Type.Label(),
		CSRFToken:   nosurf.Token(r),
		CurrentYear: time.Now().Year(),
		View:        view,
		Columns:     sortColumns(view.Sort),
		Actions:     actionGroups(view.Pages),
	}

	var buf bytes.Buffer
	if err := app.engine.Render(&buf, admin.IndexTemplate, data); err != nil {
		app.logger.Error("Failed to render index", "type", view.Type, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func sortColumns(active model.SortPreference) []sortColumn {
	out := make([]sortColumn, 0, len(columns))
	for _, c := range columns {
		col := sortColumn{Label: c.label, Field: c.field, Order: "asc"}
		next := "asc"
		if c.field == active.Field {
			col.Active = true
			col.Order = active.Order
			if active.Order == "asc" {
				next = "desc"
			}
		}
		col.Href = "?sort=" + c.field + "&order=" + next
		out = append(out, col)
	}
	return out
}

// actionGroups builds the "With Selected" menu.
func actionGroups(pages []model.PageTitle) []optionGroup {
	groups := []optionGroup{{Options: []option{{Value: admin.Action{Kind: admin.ActionDelete}.String(), Label: "Delete"}}}}
	if len(pages) == 0 {
		return groups
	}

	attach := optionGroup{Label: "Attach to Page", Options: []option{{Value: "attach-all-pages", Label: "All"}}}
	detach := optionGroup{Label: "Detach from Page", Options: []option{{Value: "detach-all-pages", Label: "All"}}}
	for _, p := range pages {
		attach.Options = append(attach.Options, option{Value: admin.AttachTo(p.ID).String(), Label: p.Title})
		detach.Options = append(detach.Options, option{Value: admin.DetachFrom(p.ID).String(), Label: p.Title})
	}
	return append(groups, attach, detach)
}
