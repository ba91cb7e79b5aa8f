package admin

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go-resource-admin/pkg/fsutils"

	"github.com/spf13/afero"
)

// ErrTemplateNotFound is returned when neither the workspace nor the system
// template directory holds the requested template.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateExt is the extension of page templates.
const TemplateExt = ".tpl"

// TemplateResolver locates page templates, letting a site override a system
// template by placing a file of the same name in <workspace>/template.
type TemplateResolver struct {
	fs           afero.Fs
	workspaceDir string
	systemDir    string
}

// NewTemplateResolver creates a resolver for the given workspace and system
// template directory.
func NewTemplateResolver(fs afero.Fs, workspace, systemDir string) *TemplateResolver {
	return &TemplateResolver{
		fs:           fs,
		workspaceDir: filepath.Join(workspace, "template"),
		systemDir:    systemDir,
	}
}

// Resolve returns the path of the template called name. Nothing is cached; an
// override added while running is picked up by the next call.
func (r *TemplateResolver) Resolve(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	file := name + TemplateExt
	for _, dir := range []string{r.workspaceDir, r.systemDir} {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, file)
		if fsutils.FileExists(r.fs, path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, file)
}
