package admin

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-resource-admin/internal/config"
	"go-resource-admin/internal/delegates"
	"go-resource-admin/internal/model"
	"go-resource-admin/internal/pagemanager"
	"go-resource-admin/internal/resourcemanager"
	"go-resource-admin/internal/storage"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const (
	docRoot   = "/site"
	workspace = "/site/workspace"
)

type fixture struct {
	ctrl      *Controller
	resources *resourcemanager.Manager
	pages     *pagemanager.Manager
	drivers   *storage.DriverStore
	settings  *config.Settings
	registry  *delegates.Registry
	fs        afero.Fs
}

func newFixture(t *testing.T) *fixture {
	return newFixtureFs(t, afero.NewMemMapFs())
}

func newFixtureFs(t *testing.T, fs afero.Fs) *fixture {
	t.Helper()
	drivers, err := storage.NewDriverStore(fs, workspace, nil)
	require.NoError(t, err)
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "pages.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	settings, err := config.OpenSettings(fs, "/site/manifest/config.yaml", nil)
	require.NoError(t, err)

	resources := resourcemanager.NewManager(drivers, db, settings, nil)
	pages := pagemanager.NewManager(db, nil)
	registry := delegates.NewRegistry()

	return &fixture{
		ctrl:      NewController(resources, pages, registry, fs, docRoot, nil),
		resources: resources,
		pages:     pages,
		drivers:   drivers,
		settings:  settings,
		registry:  registry,
		fs:        fs,
	}
}

func (f *fixture) addResource(t *testing.T, rt model.ResourceType, handle, name, author string) *model.Resource {
	t.Helper()
	r := &model.Resource{
		Handle:      handle,
		Type:        rt,
		Name:        name,
		Author:      model.Author{Name: author},
		ReleaseDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.drivers.SaveResource(r))
	return r
}

func (f *fixture) addPage(t *testing.T, title string, parent int64) *model.Page {
	t.Helper()
	p := &model.Page{Title: title, Handle: title, Parent: parent}
	require.NoError(t, f.pages.Create(p))
	return p
}

func (f *fixture) attachedIDs(t *testing.T, rt model.ResourceType, handle string) []int64 {
	t.Helper()
	pages, err := f.resources.GetAttachedPages(rt, handle)
	require.NoError(t, err)
	ids := make([]int64, 0, len(pages))
	for _, p := range pages {
		ids = append(ids, p.ID)
	}
	return ids
}

// failingFs refuses to remove one path.
type failingFs struct {
	afero.Fs
	path string
}

func (f failingFs) Remove(name string) error {
	if name == f.path {
		return &os.PathError{Op: "remove", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.Remove(name)
}

func handlesOf(resources []*model.Resource) []string {
	out := make([]string, len(resources))
	for i, r := range resources {
		out[i] = r.Handle
	}
	return out
}
