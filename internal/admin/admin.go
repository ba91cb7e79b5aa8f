// Package admin implements the request handling behind the data source and
// event index pages: sorting the listing, applying "With Selected" bulk
// actions and locating the templates the pages render with.
//
// Handlers never write HTTP responses themselves. They return a Result that
// either asks the caller to redirect (the request is over) or carries the
// data to render.
package admin

import (
	"errors"
	"io"
	"log/slog"

	"go-resource-admin/internal/delegates"
	"go-resource-admin/internal/model"
	"go-resource-admin/internal/resourcemanager"

	"github.com/spf13/afero"
)

// ErrInvalidRequest marks errors caused by bad request parameters.
var ErrInvalidRequest = errors.New("invalid request")

// ResourceManager lists, sorts and attaches resources.
type ResourceManager interface {
	Fetch(t model.ResourceType, filters map[string]string, excludes []string, orderBy string) ([]*model.Resource, error)
	GetSortingField(t model.ResourceType) string
	SetSortingField(t model.ResourceType, field string, persist bool) error
	GetSortingOrder(t model.ResourceType) string
	SetSortingOrder(t model.ResourceType, order string, persist bool) error
	GetAttachedPages(t model.ResourceType, handle string) ([]*model.Page, error)
	Attach(t model.ResourceType, handle string, pageID int64) error
	Detach(t model.ResourceType, handle string, pageID int64) error
	ForType(t model.ResourceType) (resourcemanager.Driver, error)
}

// PageManager reads the page hierarchy.
type PageManager interface {
	Fetch(includeTree bool, columns []string) ([]*model.Page, error)
	ResolvePageTitle(id int64) (string, error)
}

// Notifier announces delegates to extensions.
type Notifier interface {
	Notify(delegate, page string, ctx *delegates.Context) int
}

// ResultKind tells the caller what to do with a Result.
type ResultKind int

const (
	// ResultRender means the page should be rendered in this request.
	ResultRender ResultKind = iota
	// ResultRedirect means the request is finished; send the client to Location.
	ResultRedirect
)

// Result is the outcome of a handler.
type Result struct {
	Kind     ResultKind
	Location string        // Redirect target
	Alerts   []model.Alert // Errors to render, or notices to flash across a redirect

	Sort      model.SortPreference // Preference the resources were fetched with
	Resources []*model.Resource
	View      *IndexView // Set by Index
}

// IsRedirect reports whether the caller must stop and redirect.
func (r Result) IsRedirect() bool {
	return r.Kind == ResultRedirect
}

func redirectTo(location string, alerts ...model.Alert) Result {
	return Result{Kind: ResultRedirect, Location: location, Alerts: alerts}
}

func render(alerts ...model.Alert) Result {
	return Result{Kind: ResultRender, Alerts: alerts}
}

// Controller handles the resource index pages of both resource types.
type Controller struct {
	resources ResourceManager
	pages     PageManager
	notifier  Notifier
	fs        afero.Fs
	docRoot   string
	logger    *slog.Logger
}

// NewController creates a Controller. fs is the filesystem driver files are
// deleted from; docRoot is stripped from paths shown in alerts.
func NewController(resources ResourceManager, pages PageManager, notifier Notifier, fs afero.Fs, docRoot string, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if notifier == nil {
		notifier = delegates.NewRegistry()
	}
	return &Controller{
		resources: resources,
		pages:     pages,
		notifier:  notifier,
		fs:        fs,
		docRoot:   docRoot,
		logger:    logger,
	}
}
