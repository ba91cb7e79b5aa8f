package resourcemanager

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go-resource-admin/internal/config"
	"go-resource-admin/internal/model"
	"go-resource-admin/internal/storage"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	manager  *Manager
	drivers  *storage.DriverStore
	pages    *storage.SQLiteStore
	settings *config.Settings
	fs       afero.Fs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	drivers, err := storage.NewDriverStore(fs, "/site/workspace", nil)
	require.NoError(t, err)
	pages, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "pages.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { pages.Close() })
	settings, err := config.OpenSettings(fs, "/site/manifest/config.yaml", nil)
	require.NoError(t, err)

	return &fixture{
		manager:  NewManager(drivers, pages, settings, nil),
		drivers:  drivers,
		pages:    pages,
		settings: settings,
		fs:       fs,
	}
}

func (f *fixture) addResource(t *testing.T, rt model.ResourceType, handle, name, source, author string, released time.Time) {
	t.Helper()
	require.NoError(t, f.drivers.SaveResource(&model.Resource{
		Handle:      handle,
		Type:        rt,
		Name:        name,
		Source:      source,
		Author:      model.Author{Name: author},
		ReleaseDate: released,
	}))
}

func handles(resources []*model.Resource) []string {
	out := make([]string, len(resources))
	for i, r := range resources {
		out[i] = r.Handle
	}
	return out
}

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func TestSortingPreferenceDefaults(t *testing.T) {
	f := newFixture(t)

	for _, rt := range model.ResourceTypes {
		assert.Equal(t, "name", f.manager.GetSortingField(rt))
		assert.Equal(t, "asc", f.manager.GetSortingOrder(rt))
		assert.Equal(t, model.DefaultSortPreference(), f.manager.SortPreference(rt))
	}
}

func TestSetSortingFieldAndOrder(t *testing.T) {
	f := newFixture(t)
	ds := model.ResourceTypeDatasource

	// Field alone is not flushed to disk.
	require.NoError(t, f.manager.SetSortingField(ds, "author", false))
	assert.Equal(t, "author", f.manager.GetSortingField(ds))
	exists, err := afero.Exists(f.fs, "/site/manifest/config.yaml")
	require.NoError(t, err)
	assert.False(t, exists)

	// The order write persists both.
	require.NoError(t, f.manager.SetSortingOrder(ds, "desc", true))
	reopened, err := config.OpenSettings(f.fs, "/site/manifest/config.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, "author", reopened.Get("sorting", "datasource_index_sortby"))
	assert.Equal(t, "desc", reopened.Get("sorting", "datasource_index_order"))

	// The other type is untouched.
	assert.Equal(t, model.DefaultSortPreference(), f.manager.SortPreference(model.ResourceTypeEvent))
}

func TestSetSortingRejectsUnknownValues(t *testing.T) {
	f := newFixture(t)

	err := f.manager.SetSortingField(model.ResourceTypeEvent, "size", true)
	assert.True(t, errors.Is(err, ErrInvalidSort))
	err = f.manager.SetSortingOrder(model.ResourceTypeEvent, "sideways", true)
	assert.True(t, errors.Is(err, ErrInvalidSort))
}

func TestGetSortingIgnoresCorruptStoredValues(t *testing.T) {
	f := newFixture(t)
	f.settings.Set("sorting", "event_index_sortby", "bogus")
	f.settings.Set("sorting", "event_index_order", "up")

	assert.Equal(t, model.DefaultSortPreference(), f.manager.SortPreference(model.ResourceTypeEvent))
}

func TestParseOrderClause(t *testing.T) {
	tests := []struct {
		clause  string
		want    model.SortPreference
		wantErr bool
	}{
		{"name asc", model.SortPreference{Field: "name", Order: "asc"}, false},
		{"release-date DESC", model.SortPreference{Field: "release-date", Order: "desc"}, false},
		{"author", model.SortPreference{Field: "author", Order: "asc"}, false},
		{"", model.SortPreference{}, false},
		{"name asc extra", model.SortPreference{}, true},
		{"size asc", model.SortPreference{}, true},
		{"name random", model.SortPreference{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.clause, func(t *testing.T) {
			got, err := ParseOrderClause(tt.clause)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidSort), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchOrdering(t *testing.T) {
	f := newFixture(t)
	ds := model.ResourceTypeDatasource
	f.addResource(t, ds, "zeta", "zeta", "news", "bob", day(3))
	f.addResource(t, ds, "alpha", "Alpha", "blog", "Carol", day(1))
	f.addResource(t, ds, "beta", "beta", "news", "alice", day(2))

	tests := []struct {
		order string
		want  []string
	}{
		{"name asc", []string{"alpha", "beta", "zeta"}},
		{"name desc", []string{"zeta", "beta", "alpha"}},
		{"release-date desc", []string{"zeta", "beta", "alpha"}},
		{"author asc", []string{"beta", "zeta", "alpha"}},
		// Equal sources tie-break on handle.
		{"source asc", []string{"alpha", "beta", "zeta"}},
		{"source desc", []string{"beta", "zeta", "alpha"}},
		{"", []string{"alpha", "beta", "zeta"}},
	}
	for _, tt := range tests {
		t.Run(tt.order, func(t *testing.T) {
			got, err := f.manager.Fetch(ds, nil, nil, tt.order)
			require.NoError(t, err)
			assert.Equal(t, tt.want, handles(got))
		})
	}
}

func TestFetchFiltersAndExcludes(t *testing.T) {
	f := newFixture(t)
	ev := model.ResourceTypeEvent
	f.addResource(t, ev, "login", "Login", "members", "Ann", day(1))
	f.addResource(t, ev, "logout", "Logout", "members", "Ann", day(2))
	f.addResource(t, ev, "comment", "Save Comment", "comments", "Ben", day(3))

	got, err := f.manager.Fetch(ev, map[string]string{"source": "members"}, nil, "name asc")
	require.NoError(t, err)
	assert.Equal(t, []string{"login", "logout"}, handles(got))

	got, err = f.manager.Fetch(ev, map[string]string{"author": "Ann"}, []string{"login"}, "name asc")
	require.NoError(t, err)
	assert.Equal(t, []string{"logout"}, handles(got))

	_, err = f.manager.Fetch(ev, map[string]string{"colour": "red"}, nil, "")
	assert.True(t, errors.Is(err, ErrInvalidFilter))

	_, err = f.manager.Fetch(ev, nil, nil, "colour asc")
	assert.True(t, errors.Is(err, ErrInvalidSort))

	_, err = f.manager.Fetch(model.ResourceType(0), nil, nil, "")
	assert.True(t, errors.Is(err, ErrInvalidType))
}

func TestAttachDetach(t *testing.T) {
	f := newFixture(t)
	home := &model.Page{Title: "Home", Handle: "home"}
	require.NoError(t, f.pages.InsertPage(home))

	require.NoError(t, f.manager.Attach(model.ResourceTypeEvent, "login", home.ID))
	pages, err := f.manager.GetAttachedPages(model.ResourceTypeEvent, "login")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, home.ID, pages[0].ID)

	require.NoError(t, f.manager.Detach(model.ResourceTypeEvent, "login", home.ID))
	pages, err = f.manager.GetAttachedPages(model.ResourceTypeEvent, "login")
	require.NoError(t, err)
	assert.Empty(t, pages)

	err = f.manager.Attach(model.ResourceTypeEvent, "login", 404)
	assert.True(t, errors.Is(err, storage.ErrPageNotFound))
}

func TestForType(t *testing.T) {
	f := newFixture(t)
	f.addResource(t, model.ResourceTypeDatasource, "articles", "Articles", "", "", day(1))

	driver, err := f.manager.ForType(model.ResourceTypeDatasource)
	require.NoError(t, err)
	assert.Equal(t, model.ResourceTypeDatasource, driver.Type())
	assert.Equal(t, filepath.Join("/site/workspace", "data-sources", "data.articles.yaml"), driver.DriverPath("articles"))

	hs, err := driver.Handles()
	require.NoError(t, err)
	assert.Equal(t, []string{"articles"}, hs)

	r, err := driver.Load("articles")
	require.NoError(t, err)
	assert.Equal(t, "Articles", r.Name)

	_, err = f.manager.ForType(model.ResourceType(9))
	assert.True(t, errors.Is(err, ErrInvalidType))
}
