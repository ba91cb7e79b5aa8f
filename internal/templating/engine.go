package templating

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/spf13/afero"
)

// Resolver maps a template name to the file holding it.
type Resolver interface {
	Resolve(name string) (string, error)
}

// Engine handles template parsing and execution.
type Engine struct {
	fs       afero.Fs
	resolver Resolver
	funcs    template.FuncMap
}

// NewEngine creates a new template engine reading templates from fs.
func NewEngine(fs afero.Fs, resolver Resolver) *Engine {
	funcs := sprig.FuncMap()
	funcs["trusted"] = func(s string) template.HTML { return template.HTML(s) }
	return &Engine{fs: fs, resolver: resolver, funcs: funcs}
}

// Render resolves, parses and executes the template called name. Templates
// are parsed on every call, so an override dropped into the workspace is
// used by the next request. Nothing is written to w if execution fails.
//
// A template that defines "page" is executed through it; otherwise the file
// body is the entry point.
func (e *Engine) Render(w io.Writer, name string, data any) error {
	// 1. Locate the file
	path, err := e.resolver.Resolve(name)
	if err != nil {
		return err
	}

	// 2. Parse it
	src, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", path, err)
	}
	tmpl, err := template.New(name).Funcs(e.funcs).Parse(string(src))
	if err != nil {
		return fmt.Errorf("failed to parse template %s: %w", path, err)
	}

	// 3. Execute into a buffer
	entry := name
	if tmpl.Lookup("page") != nil {
		entry = "page"
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, entry, data); err != nil {
		if strings.Contains(err.Error(), "incomplete or empty template") {
			return fmt.Errorf("template %s is empty", path)
		}
		return fmt.Errorf("failed to execute template %s: %w", path, err)
	}

	_, err = buf.WriteTo(w)
	return err
}
