package model

import (
	"fmt"
	"strings"
	"time"
)

// ResourceType identifies which collection of drivers a request applies to.
type ResourceType int

const (
	ResourceTypeEvent ResourceType = iota + 1
	ResourceTypeDatasource
)

// ResourceTypes lists every known type, events first.
var ResourceTypes = []ResourceType{ResourceTypeEvent, ResourceTypeDatasource}

// ParseResourceType accepts the singular, plural and URL forms of a type name.
func ParseResourceType(s string) (ResourceType, error) {
	switch strings.ToLower(strings.Trim(s, "/ ")) {
	case "event", "events":
		return ResourceTypeEvent, nil
	case "datasource", "datasources", "data-sources", "data-source":
		return ResourceTypeDatasource, nil
	}
	return 0, fmt.Errorf("unknown resource type %q", s)
}

// String returns the singular name used in settings keys and logs.
func (t ResourceType) String() string {
	switch t {
	case ResourceTypeEvent:
		return "event"
	case ResourceTypeDatasource:
		return "datasource"
	}
	return fmt.Sprintf("ResourceType(%d)", int(t))
}

// Valid reports whether t is one of the known types.
func (t ResourceType) Valid() bool {
	return t == ResourceTypeEvent || t == ResourceTypeDatasource
}

// Dir is the workspace subdirectory holding the type's driver files.
func (t ResourceType) Dir() string {
	if t == ResourceTypeDatasource {
		return "data-sources"
	}
	return "events"
}

// DriverPrefix is the file name prefix of a driver ("data.<handle>.yaml").
func (t ResourceType) DriverPrefix() string {
	if t == ResourceTypeDatasource {
		return "data"
	}
	return "event"
}

// PageContext is the admin page path the type's index lives under.
func (t ResourceType) PageContext() string {
	if t == ResourceTypeDatasource {
		return "/blueprints/datasources/"
	}
	return "/blueprints/events/"
}

// Label is the human readable plural used as the index heading.
func (t ResourceType) Label() string {
	if t == ResourceTypeDatasource {
		return "Data Sources"
	}
	return "Events"
}

// Author describes who wrote a resource driver.
type Author struct {
	Name    string `yaml:"name"`
	Website string `yaml:"website,omitempty"`
	Email   string `yaml:"email,omitempty"`
}

// Resource is a single data source or event driver and the metadata its
// descriptor file declares about itself.
type Resource struct {
	Handle string       `yaml:"-"` // Unique identifier, derived from the file name
	Type   ResourceType `yaml:"-"`
	Path   string       `yaml:"-"` // Backing driver file

	Name        string    `yaml:"name"`
	Source      string    `yaml:"source,omitempty"` // Section or provider the resource reads from
	Author      Author    `yaml:"author"`
	ReleaseDate time.Time `yaml:"release-date"`
	Version     string    `yaml:"version,omitempty"`
	Description string    `yaml:"description,omitempty"`
}

// Sorting defaults applied on first use and on unsort.
const (
	DefaultSortField = "name"
	DefaultSortOrder = "asc"
)

// SortPreference is the persisted (field, order) pair for one resource type.
type SortPreference struct {
	Field string
	Order string
}

// DefaultSortPreference returns the ("name", "asc") preference.
func DefaultSortPreference() SortPreference {
	return SortPreference{Field: DefaultSortField, Order: DefaultSortOrder}
}

// OrderClause renders the preference as "<field> <order>".
func (p SortPreference) OrderClause() string {
	return p.Field + " " + p.Order
}
