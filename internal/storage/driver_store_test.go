package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go-resource-admin/internal/model"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a sample resource for testing
func createSampleResource(t model.ResourceType, handle, name string) *model.Resource {
	return &model.Resource{
		Handle:      handle,
		Type:        t,
		Name:        name,
		Source:      "articles",
		Author:      model.Author{Name: "Jane Doe", Email: "jane@example.com"},
		ReleaseDate: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Version:     "1.0",
	}
}

func newTestDriverStore(t *testing.T) (*DriverStore, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := NewDriverStore(fs, "/site/workspace", nil)
	require.NoError(t, err)
	return store, fs
}

func TestNewDriverStore(t *testing.T) {
	store, fs := newTestDriverStore(t)

	for _, dir := range []string{"/site/workspace/data-sources", "/site/workspace/events"} {
		ok, err := afero.DirExists(fs, dir)
		require.NoError(t, err)
		assert.True(t, ok, "expected %s to be created", dir)
	}
	assert.Equal(t, "/site/workspace", store.Workspace())
}

func TestDriverPath(t *testing.T) {
	store, _ := newTestDriverStore(t)

	assert.Equal(t, filepath.Join("/site/workspace", "data-sources", "data.latest_articles.yaml"),
		store.DriverPath(model.ResourceTypeDatasource, "latest_articles"))
	assert.Equal(t, filepath.Join("/site/workspace", "events", "event.save_comment.yaml"),
		store.DriverPath(model.ResourceTypeEvent, "save_comment"))
}

func TestSaveLoadResource(t *testing.T) {
	store, fs := newTestDriverStore(t)

	original := createSampleResource(model.ResourceTypeDatasource, "latest_articles", "Latest Articles")
	require.NoError(t, store.SaveResource(original))

	path := store.DriverPath(model.ResourceTypeDatasource, "latest_articles")
	ok, err := afero.Exists(fs, path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, path, original.Path)

	loaded, err := store.LoadResource(model.ResourceTypeDatasource, "latest_articles")
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestLoadResource_NotFound(t *testing.T) {
	store, _ := newTestDriverStore(t)

	_, err := store.LoadResource(model.ResourceTypeEvent, "does_not_exist")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDriverNotFound), "got %v", err)
}

func TestLoadResource_DefaultsNameToHandle(t *testing.T) {
	store, fs := newTestDriverStore(t)
	path := store.DriverPath(model.ResourceTypeEvent, "bare")
	require.NoError(t, afero.WriteFile(fs, path, []byte("author:\n  name: Someone\n"), 0644))

	loaded, err := store.LoadResource(model.ResourceTypeEvent, "bare")
	require.NoError(t, err)
	assert.Equal(t, "bare", loaded.Name)
	assert.Equal(t, "Someone", loaded.Author.Name)
}

func TestLoadResource_InvalidYAML(t *testing.T) {
	store, fs := newTestDriverStore(t)
	path := store.DriverPath(model.ResourceTypeEvent, "broken")
	require.NoError(t, afero.WriteFile(fs, path, []byte("name: [unterminated"), 0644))

	_, err := store.LoadResource(model.ResourceTypeEvent, "broken")
	assert.Error(t, err)
}

func TestSaveResource_Validation(t *testing.T) {
	store, _ := newTestDriverStore(t)

	assert.Error(t, store.SaveResource(&model.Resource{Type: model.ResourceTypeEvent}))
	assert.Error(t, store.SaveResource(&model.Resource{Handle: "x"}))
}

func TestHandlesAndReadAll(t *testing.T) {
	store, fs := newTestDriverStore(t)

	for _, r := range []*model.Resource{
		createSampleResource(model.ResourceTypeDatasource, "a", "Alpha"),
		createSampleResource(model.ResourceTypeDatasource, "b", "Beta"),
		createSampleResource(model.ResourceTypeEvent, "c", "Gamma"),
	} {
		require.NoError(t, store.SaveResource(r))
	}
	// Files that are not drivers of the type are ignored.
	dsDir := "/site/workspace/data-sources"
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dsDir, "README.md"), nil, 0644))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dsDir, "event.x.yaml"), nil, 0644))
	require.NoError(t, fs.MkdirAll(filepath.Join(dsDir, "data.dir.yaml"), 0755))

	handles, err := store.Handles(model.ResourceTypeDatasource)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, handles)

	all, err := store.ReadAll(model.ResourceTypeEvent)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Gamma", all[0].Name)
	assert.Equal(t, model.ResourceTypeEvent, all[0].Type)
}

func TestHandles_MissingDirectory(t *testing.T) {
	store, fs := newTestDriverStore(t)
	require.NoError(t, fs.RemoveAll("/site/workspace/events"))

	handles, err := store.Handles(model.ResourceTypeEvent)
	require.NoError(t, err)
	assert.Empty(t, handles)
}
