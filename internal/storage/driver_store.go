package storage

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go-resource-admin/internal/model"
	"go-resource-admin/pkg/fsutils"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const driverExt = ".yaml"

// DriverStore implements the ResourceStore interface using one YAML
// descriptor file per driver, laid out the way the workspace expects:
//
//	<workspace>/data-sources/data.<handle>.yaml
//	<workspace>/events/event.<handle>.yaml
type DriverStore struct {
	fs        afero.Fs
	workspace string
	logger    *slog.Logger
}

// NewDriverStore creates a new DriverStore instance.
// It ensures the per-type driver directories exist.
func NewDriverStore(fs afero.Fs, workspace string, logger *slog.Logger) (*DriverStore, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	for _, t := range model.ResourceTypes {
		dir := filepath.Join(workspace, t.Dir())
		if err := fsutils.CreateDir(fs, dir); err != nil {
			return nil, fmt.Errorf("failed to create driver directory '%s': %w", dir, err)
		}
	}
	return &DriverStore{fs: fs, workspace: workspace, logger: logger}, nil
}

// Workspace returns the workspace root the store reads from.
func (s *DriverStore) Workspace() string {
	return s.workspace
}

// DriverPath returns the descriptor path for a handle.
func (s *DriverStore) DriverPath(t model.ResourceType, handle string) string {
	return filepath.Join(s.workspace, t.Dir(), t.DriverPrefix()+"."+handle+driverExt)
}

// SaveResource persists the resource's descriptor, overwriting any existing one.
func (s *DriverStore) SaveResource(resource *model.Resource) error {
	if resource.Handle == "" {
		return fmt.Errorf("resource handle cannot be empty")
	}
	if !resource.Type.Valid() {
		return fmt.Errorf("resource %s has no valid type", resource.Handle)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(resource); err != nil {
		return fmt.Errorf("failed to marshal resource %s: %w", resource.Handle, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to marshal resource %s: %w", resource.Handle, err)
	}

	path := s.DriverPath(resource.Type, resource.Handle)
	if err := fsutils.WriteToFile(s.fs, path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write driver file %s: %w", path, err)
	}
	resource.Path = path
	s.logger.Debug("Saved resource descriptor", "type", resource.Type, "handle", resource.Handle, "path", path)
	return nil
}

// LoadResource retrieves a resource's descriptor from its driver file.
func (s *DriverStore) LoadResource(t model.ResourceType, handle string) (*model.Resource, error) {
	if handle == "" {
		return nil, fmt.Errorf("resource handle cannot be empty")
	}
	path := s.DriverPath(t, handle)

	data, err := fsutils.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s %s", ErrDriverNotFound, t, handle)
		}
		return nil, fmt.Errorf("failed to read driver file %s: %w", path, err)
	}

	var resource model.Resource
	if err := yaml.Unmarshal(data, &resource); err != nil {
		return nil, fmt.Errorf("failed to unmarshal driver file %s: %w", path, err)
	}
	resource.Handle = handle
	resource.Type = t
	resource.Path = path
	if resource.Name == "" {
		resource.Name = handle
	}
	return &resource, nil
}

// Handles scans the type's directory for driver files and extracts handles.
func (s *DriverStore) Handles(t model.ResourceType) ([]string, error) {
	dir := filepath.Join(s.workspace, t.Dir())
	files, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		// A workspace without the directory simply has no drivers of that type.
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read driver directory %s: %w", dir, err)
	}

	prefix := t.DriverPrefix() + "."
	handles := make([]string, 0, len(files))
	for _, file := range files {
		name := file.Name()
		if file.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, driverExt) {
			continue
		}
		handle := strings.TrimSuffix(strings.TrimPrefix(name, prefix), driverExt)
		if handle == "" {
			continue
		}
		handles = append(handles, handle)
	}
	return handles, nil
}

// ReadAll retrieves every descriptor of a type by loading each one individually.
func (s *DriverStore) ReadAll(t model.ResourceType) ([]*model.Resource, error) {
	handles, err := s.Handles(t)
	if err != nil {
		return nil, err
	}

	resources := make([]*model.Resource, 0, len(handles))
	for _, handle := range handles {
		resource, err := s.LoadResource(t, handle)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s %s during ReadAll: %w", t, handle, err)
		}
		resources = append(resources, resource)
	}
	s.logger.Debug("Loaded resource descriptors", "type", t, "count", len(resources))
	return resources, nil
}
