package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go-resource-admin/internal/model"
	"go-resource-admin/pkg/fsutils"

	"github.com/spf13/afero"
)

// ErrExists is returned instead of overwriting an existing file.
var ErrExists = errors.New("already exists")

// DefaultVersion is the version given to new drivers.
const DefaultVersion = "1.0"

// Store is where generated drivers are written.
type Store interface {
	DriverPath(t model.ResourceType, handle string) string
	SaveResource(resource *model.Resource) error
}

// Options holds the optional metadata of a new driver.
type Options struct {
	Source      string
	Author      model.Author
	Version     string
	Description string
	Now         func() time.Time // Release date source; defaults to time.Now
}

// GenerateResource creates the driver descriptor of a new resource. The
// handle is derived from name; an existing driver with that handle is never
// overwritten.
func GenerateResource(fs afero.Fs, store Store, t model.ResourceType, name string, opts Options) (*model.Resource, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("resource name cannot be empty")
	}
	if !t.Valid() {
		return nil, fmt.Errorf("unknown resource type %d", int(t))
	}
	handle := fsutils.SanitizeHandle(name)
	if handle == "" {
		return nil, fmt.Errorf("name %q does not produce a usable handle", name)
	}

	path := store.DriverPath(t, handle)
	if fsutils.FileExists(fs, path) {
		return nil, fmt.Errorf("%s %q: %w (%s)", t, handle, ErrExists, path)
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	version := opts.Version
	if version == "" {
		version = DefaultVersion
	}

	resource := &model.Resource{
		Handle:      handle,
		Type:        t,
		Name:        name,
		Source:      opts.Source,
		Author:      opts.Author,
		ReleaseDate: now().UTC().Truncate(time.Second),
		Version:     version,
		Description: opts.Description,
	}
	if err := store.SaveResource(resource); err != nil {
		return nil, fmt.Errorf("failed to write driver %s: %w", path, err)
	}
	resource.Path = path
	slog.Debug("Generated driver", "type", t, "handle", handle, "path", path)
	return resource, nil
}

// CopyTemplate copies the system template called name into the workspace
// template directory, where it overrides the system copy. It returns the
// path of the new file.
func CopyTemplate(fs afero.Fs, systemDir, workspace, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid template name %q", name)
	}
	file := name + ".tpl"
	src := filepath.Join(systemDir, file)
	dst := filepath.Join(workspace, "template", file)

	if fsutils.FileExists(fs, dst) {
		return "", fmt.Errorf("template %s: %w", dst, ErrExists)
	}
	content, err := fsutils.ReadFile(fs, src)
	if err != nil {
		return "", fmt.Errorf("failed to read system template %s: %w", src, err)
	}
	if err := fsutils.CreateDir(fs, filepath.Dir(dst)); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(dst), err)
	}
	if err := fsutils.WriteToFile(fs, dst, content); err != nil {
		return "", fmt.Errorf("failed to create template file %s: %w", dst, err)
	}
	return dst, nil
}
