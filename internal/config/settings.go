package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Settings is the site's key-value configuration file (grouped keys such as
// "sorting.datasource_index_sortby"). Reads come from memory; Write flushes
// the whole file. Writers in other processes are not coordinated with: the
// last write wins.
type Settings struct {
	mu     sync.Mutex
	v      *viper.Viper
	fs     afero.Fs
	path   string
	logger *slog.Logger
}

// OpenSettings loads the settings file at path if it exists. A missing file
// is created on the first Write.
func OpenSettings(fs afero.Fs, path string, logger *slog.Logger) (*Settings, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)

	s := &Settings{v: v, fs: fs, path: path, logger: logger}

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat settings file %s: %w", path, err)
	}
	if exists {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
	}
	return s, nil
}

// Path returns the settings file location.
func (s *Settings) Path() string {
	return s.path
}

// Get returns the value stored under group.key, or "" when unset.
func (s *Settings) Get(group, key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetString(group + "." + key)
}

// Set stores a value in memory. Call Write to persist it.
func (s *Settings) Set(group, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(group+"."+key, value)
}

// Write persists every setting to the settings file.
func (s *Settings) Write() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", s.path, err)
	}
	s.logger.Debug("Wrote settings file", "path", s.path)
	return nil
}

// Reload re-reads the settings file, discarding unsaved in-memory changes.
func (s *Settings) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fresh := viper.New()
	fresh.SetFs(s.fs)
	fresh.SetConfigFile(s.path)
	if err := fresh.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to reload settings file %s: %w", s.path, err)
	}
	s.v = fresh
	return nil
}

// Watch reloads the settings whenever the file is changed on disk (for
// example by an administrator editing it by hand) until ctx is cancelled.
// It only works for settings opened on the OS filesystem.
func (s *Settings) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create settings watcher: %w", err)
	}
	// Watch the directory: editors often replace the file rather than write it.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(s.path)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				if err := s.Reload(); err != nil {
					s.logger.Warn("Failed to reload settings after change", "path", s.path, "error", err)
					continue
				}
				s.logger.Info("Reloaded settings after change on disk", "path", s.path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("Settings watcher error", "error", err)
			}
		}
	}()
	return nil
}
