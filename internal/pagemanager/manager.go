package pagemanager

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go-resource-admin/internal/model"
	"go-resource-admin/internal/storage"
)

// TitleSeparator joins ancestor titles in a resolved page title.
const TitleSeparator = ": "

// Columns a Fetch can project.
var Columns = []string{"id", "parent", "title", "handle", "sortorder"}

// ErrUnknownColumn is returned when Fetch is asked for a column that doesn't exist.
var ErrUnknownColumn = errors.New("unknown page column")

// ErrPageCycle is returned when a page is its own ancestor.
var ErrPageCycle = errors.New("page hierarchy contains a cycle")

// Manager reads the page hierarchy.
type Manager struct {
	store  storage.PageStore
	logger *slog.Logger
}

// NewManager creates a new page Manager.
func NewManager(store storage.PageStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{store: store, logger: logger}
}

// Create stores a new page.
func (m *Manager) Create(page *model.Page) error {
	if err := m.store.InsertPage(page); err != nil {
		return err
	}
	m.logger.Info("Created page", "id", page.ID, "title", page.Title, "parent", page.Parent)
	return nil
}

// Fetch returns every page in sort order. When includeTree is set only root
// pages are returned, each with its Children populated. columns limits the
// fields that are filled in; empty means all.
func (m *Manager) Fetch(includeTree bool, columns []string) ([]*model.Page, error) {
	for _, c := range columns {
		if !isColumn(c) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
	}

	pages, err := m.store.Pages()
	if err != nil {
		return nil, err
	}

	if includeTree {
		pages = buildTree(pages)
	}
	if len(columns) > 0 {
		for _, p := range pages {
			project(p, columns)
		}
	}
	return pages, nil
}

// ResolvePageTitle returns the page's title prefixed by its ancestors' titles,
// root first: "Blog: Archive: 2024".
func (m *Manager) ResolvePageTitle(id int64) (string, error) {
	var titles []string
	seen := map[int64]bool{}
	for next := id; next != 0; {
		if seen[next] {
			return "", fmt.Errorf("%w at page %d", ErrPageCycle, next)
		}
		seen[next] = true

		page, err := m.store.Page(next)
		if err != nil {
			return "", err
		}
		titles = append(titles, page.Title)
		next = page.Parent
	}

	// Collected leaf first.
	for i, j := 0, len(titles)-1; i < j; i, j = i+1, j-1 {
		titles[i], titles[j] = titles[j], titles[i]
	}
	return strings.Join(titles, TitleSeparator), nil
}

func isColumn(c string) bool {
	for _, known := range Columns {
		if c == known {
			return true
		}
	}
	return false
}

// buildTree links pages to their parents and returns the roots. Pages whose
// parent is missing are treated as roots.
func buildTree(pages []*model.Page) []*model.Page {
	byID := make(map[int64]*model.Page, len(pages))
	for _, p := range pages {
		byID[p.ID] = p
	}
	roots := make([]*model.Page, 0)
	for _, p := range pages {
		parent, ok := byID[p.Parent]
		if p.Parent == 0 || !ok || parent == p {
			roots = append(roots, p)
			continue
		}
		parent.Children = append(parent.Children, p)
	}
	return roots
}

// project clears the fields not named in columns, recursing into children.
func project(p *model.Page, columns []string) {
	keep := map[string]bool{}
	for _, c := range columns {
		keep[c] = true
	}
	if !keep["id"] {
		p.ID = 0
	}
	if !keep["parent"] {
		p.Parent = 0
	}
	if !keep["title"] {
		p.Title = ""
	}
	if !keep["handle"] {
		p.Handle = ""
	}
	if !keep["sortorder"] {
		p.SortOrder = 0
	}
	for _, child := range p.Children {
		project(child, columns)
	}
}
