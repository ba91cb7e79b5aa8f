package storage

import (
	"errors"

	"go-resource-admin/internal/model"
)

var (
	// ErrDriverNotFound is returned when no descriptor exists for a handle.
	ErrDriverNotFound = errors.New("resource driver not found")
	// ErrPageNotFound is returned when a page id does not exist.
	ErrPageNotFound = errors.New("page not found")
)

// ResourceStore defines the operations needed for persisting resource drivers.
// This allows swapping implementations (e.g., YAML files vs. a database) later.
type ResourceStore interface {
	// DriverPath returns the file backing the driver, whether or not it exists.
	DriverPath(t model.ResourceType, handle string) string

	// SaveResource persists the resource's descriptor.
	SaveResource(resource *model.Resource) error

	// LoadResource retrieves a resource's descriptor by its handle.
	LoadResource(t model.ResourceType, handle string) (*model.Resource, error)

	// Handles returns every known handle of a type.
	Handles(t model.ResourceType) ([]string, error)

	// ReadAll retrieves the descriptors of every resource of a type.
	ReadAll(t model.ResourceType) ([]*model.Resource, error)
}

// PageStore persists content pages and their resource attachments.
type PageStore interface {
	InsertPage(page *model.Page) error
	Pages() ([]*model.Page, error)
	Page(id int64) (*model.Page, error)

	// AttachedPages returns the pages a handle is attached to.
	AttachedPages(t model.ResourceType, handle string) ([]*model.Page, error)
	// Attach is idempotent; attaching to an unknown page is ErrPageNotFound.
	Attach(t model.ResourceType, handle string, pageID int64) error
	// Detach removes the pair if present.
	Detach(t model.ResourceType, handle string, pageID int64) error
}
