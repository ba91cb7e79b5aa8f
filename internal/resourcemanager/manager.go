package resourcemanager

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"go-resource-admin/internal/model"
	"go-resource-admin/internal/storage"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	// ErrInvalidSort is returned for an unknown sort field or order.
	ErrInvalidSort = errors.New("invalid sort")
	// ErrInvalidFilter is returned for a filter on an unknown field.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidType is returned for a resource type outside the known set.
	ErrInvalidType = errors.New("invalid resource type")
)

// SortableFields are the index columns a listing can be ordered by.
var SortableFields = []string{"name", "source", "release-date", "author"}

const settingsGroup = "sorting"

// SettingsStore is the key-value configuration the sort preferences live in.
type SettingsStore interface {
	Get(group, key string) string
	Set(group, key, value string)
	Write() error
}

// Driver gives access to the drivers of a single resource type.
type Driver interface {
	Type() model.ResourceType
	// DriverPath returns the file backing a handle.
	DriverPath(handle string) string
	Handles() ([]string, error)
	Load(handle string) (*model.Resource, error)
}

// Manager provides methods for listing resources, keeping their sort
// preferences and maintaining page attachments.
type Manager struct {
	drivers  storage.ResourceStore
	pages    storage.PageStore
	settings SettingsStore
	logger   *slog.Logger
}

// NewManager creates a new Manager instance.
func NewManager(drivers storage.ResourceStore, pages storage.PageStore, settings SettingsStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		drivers:  drivers,
		pages:    pages,
		settings: settings,
		logger:   logger,
	}
}

// ForType returns the driver manager of a resource type.
func (m *Manager) ForType(t model.ResourceType) (Driver, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidType, int(t))
	}
	return &typeManager{t: t, store: m.drivers}, nil
}

// --- Sort preferences ---

func sortFieldKey(t model.ResourceType) string { return t.String() + "_index_sortby" }
func sortOrderKey(t model.ResourceType) string { return t.String() + "_index_order" }

// IsSortableField reports whether field is one of SortableFields.
func IsSortableField(field string) bool {
	return slices.Contains(SortableFields, field)
}

// IsSortOrder reports whether order is "asc" or "desc".
func IsSortOrder(order string) bool {
	return order == "asc" || order == "desc"
}

// GetSortingField returns the stored sort field of a type, or "name".
func (m *Manager) GetSortingField(t model.ResourceType) string {
	field := m.settings.Get(settingsGroup, sortFieldKey(t))
	if field == "" {
		return model.DefaultSortField
	}
	if !IsSortableField(field) {
		m.logger.Warn("Ignoring unknown stored sort field", "type", t, "field", field)
		return model.DefaultSortField
	}
	return field
}

// SetSortingField stores the sort field of a type, writing the settings
// file only when persist is true.
func (m *Manager) SetSortingField(t model.ResourceType, field string, persist bool) error {
	if !IsSortableField(field) {
		return fmt.Errorf("%w: unknown field %q", ErrInvalidSort, field)
	}
	m.settings.Set(settingsGroup, sortFieldKey(t), field)
	if !persist {
		return nil
	}
	return m.settings.Write()
}

// GetSortingOrder returns the stored sort order of a type, or "asc".
func (m *Manager) GetSortingOrder(t model.ResourceType) string {
	order := m.settings.Get(settingsGroup, sortOrderKey(t))
	if !IsSortOrder(order) {
		return model.DefaultSortOrder
	}
	return order
}

// SetSortingOrder stores the sort order of a type, writing the settings
// file only when persist is true.
func (m *Manager) SetSortingOrder(t model.ResourceType, order string, persist bool) error {
	if !IsSortOrder(order) {
		return fmt.Errorf("%w: unknown order %q", ErrInvalidSort, order)
	}
	m.settings.Set(settingsGroup, sortOrderKey(t), order)
	if !persist {
		return nil
	}
	return m.settings.Write()
}

// SortPreference returns the stored (field, order) pair of a type.
func (m *Manager) SortPreference(t model.ResourceType) model.SortPreference {
	return model.SortPreference{Field: m.GetSortingField(t), Order: m.GetSortingOrder(t)}
}

// ParseOrderClause parses "<field> [asc|desc]". An empty clause yields the
// zero preference, meaning handle order.
func ParseOrderClause(clause string) (model.SortPreference, error) {
	parts := strings.Fields(clause)
	switch len(parts) {
	case 0:
		return model.SortPreference{}, nil
	case 1:
		parts = append(parts, model.DefaultSortOrder)
	case 2:
	default:
		return model.SortPreference{}, fmt.Errorf("%w: malformed order clause %q", ErrInvalidSort, clause)
	}
	field, order := parts[0], strings.ToLower(parts[1])
	if !IsSortableField(field) {
		return model.SortPreference{}, fmt.Errorf("%w: unknown field %q", ErrInvalidSort, field)
	}
	if !IsSortOrder(order) {
		return model.SortPreference{}, fmt.Errorf("%w: unknown order %q", ErrInvalidSort, parts[1])
	}
	return model.SortPreference{Field: field, Order: order}, nil
}

// --- Listing ---

// filterValue extracts the value a filter on field compares against.
func filterValue(r *model.Resource, field string) (string, bool) {
	switch field {
	case "name":
		return r.Name, true
	case "source":
		return r.Source, true
	case "author":
		return r.Author.Name, true
	case "version":
		return r.Version, true
	}
	return "", false
}

// Fetch lists the resources of a type. filters keep resources whose field
// equals the given value (name, source, author or version); excludes drops
// handles; orderBy is "<field> <order>" over SortableFields.
func (m *Manager) Fetch(t model.ResourceType, filters map[string]string, excludes []string, orderBy string) ([]*model.Resource, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidType, int(t))
	}
	pref, err := ParseOrderClause(orderBy)
	if err != nil {
		return nil, err
	}
	for field := range filters {
		if _, ok := filterValue(&model.Resource{}, field); !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, field)
		}
	}

	all, err := m.drivers.ReadAll(t)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s drivers: %w", t, err)
	}

	resources := make([]*model.Resource, 0, len(all))
	for _, r := range all {
		if slices.Contains(excludes, r.Handle) || !matches(r, filters) {
			continue
		}
		resources = append(resources, r)
	}

	sortResources(resources, pref)
	m.logger.Debug("Fetched resources", "type", t, "count", len(resources), "order", pref.OrderClause())
	return resources, nil
}

func matches(r *model.Resource, filters map[string]string) bool {
	for field, want := range filters {
		if got, _ := filterValue(r, field); got != want {
			return false
		}
	}
	return true
}

// sortResources orders resources by pref. Text columns use a
// case-insensitive English collation; ties fall back to handle order.
func sortResources(resources []*model.Resource, pref model.SortPreference) {
	col := collate.New(language.English, collate.IgnoreCase)
	slices.SortStableFunc(resources, func(a, b *model.Resource) int {
		c := 0
		switch pref.Field {
		case "name":
			c = col.CompareString(a.Name, b.Name)
		case "source":
			c = col.CompareString(a.Source, b.Source)
		case "author":
			c = col.CompareString(a.Author.Name, b.Author.Name)
		case "release-date":
			c = a.ReleaseDate.Compare(b.ReleaseDate)
		}
		if pref.Order == "desc" {
			c = -c
		}
		if c != 0 {
			return c
		}
		return strings.Compare(a.Handle, b.Handle)
	})
}

// --- Attachments ---

// GetAttachedPages returns the pages a handle is attached to.
func (m *Manager) GetAttachedPages(t model.ResourceType, handle string) ([]*model.Page, error) {
	pages, err := m.pages.AttachedPages(t, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to load pages of %s %s: %w", t, handle, err)
	}
	return pages, nil
}

// Attach associates a handle with a page. Attaching twice has no effect.
func (m *Manager) Attach(t model.ResourceType, handle string, pageID int64) error {
	if err := m.pages.Attach(t, handle, pageID); err != nil {
		m.logger.Error("Failed to attach resource", "type", t, "handle", handle, "page", pageID, "error", err)
		return err
	}
	m.logger.Info("Attached resource to page", "type", t, "handle", handle, "page", pageID)
	return nil
}

// Detach removes the association between a handle and a page.
func (m *Manager) Detach(t model.ResourceType, handle string, pageID int64) error {
	if err := m.pages.Detach(t, handle, pageID); err != nil {
		m.logger.Error("Failed to detach resource", "type", t, "handle", handle, "page", pageID, "error", err)
		return err
	}
	m.logger.Info("Detached resource from page", "type", t, "handle", handle, "page", pageID)
	return nil
}

// typeManager is the Driver of one resource type.
type typeManager struct {
	t     model.ResourceType
	store storage.ResourceStore
}

func (d *typeManager) Type() model.ResourceType { return d.t }

func (d *typeManager) DriverPath(handle string) string {
	return d.store.DriverPath(d.t, handle)
}

func (d *typeManager) Handles() ([]string, error) {
	return d.store.Handles(d.t)
}

func (d *typeManager) Load(handle string) (*model.Resource, error) {
	return d.store.LoadResource(d.t, handle)
}
