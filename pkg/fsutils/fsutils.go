package fsutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"  // Needed for sanitization
	"strings" // Needed for sanitization

	"github.com/spf13/afero"
)

// ErrIsDirectory is returned by DeleteFile when the path names a directory.
var ErrIsDirectory = errors.New("path is a directory")

// CreateDir creates a directory (and any parents) if it doesn't exist.
func CreateDir(fs afero.Fs, path string) error {
	return fs.MkdirAll(path, 0755) // Use standard permission bits
}

// CreateFile creates an empty file. Fails if it already exists.
func CreateFile(fs afero.Fs, path string) error {
	f, err := fs.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0666)
	if err != nil {
		return err
	}
	return f.Close()
}

// WriteToFile writes content to a file, overwriting if it exists.
func WriteToFile(fs afero.Fs, path string, content []byte) error {
	return afero.WriteFile(fs, path, content, 0644) // Standard file permissions
}

// ReadFile reads the content of a file.
func ReadFile(fs afero.Fs, path string) ([]byte, error) {
	return afero.ReadFile(fs, path)
}

// FileExists checks if a path exists and is a regular file (not a directory).
func FileExists(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil {
		// Missing, or stat failed for another reason (e.g. permissions).
		return false
	}
	return !info.IsDir()
}

// DeleteFile removes a single regular file. A file that is already gone is
// not an error; a directory is refused.
func DeleteFile(fs afero.Fs, path string) error {
	info, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %q: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}
	if err := fs.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %q: %w", path, err)
	}
	return nil
}

// RelativeDir returns the directory containing path, relative to root when
// path lives below it. Used for messages shown to administrators, who know
// the site layout but not the server's absolute paths.
func RelativeDir(root, path string) string {
	dir := filepath.Dir(path)
	if root == "" {
		return dir
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return dir
	}
	if rel == "." {
		return "/"
	}
	return "/" + filepath.ToSlash(rel)
}

// nonAlphanumericRegex matches any character that is NOT a lowercase letter, number, or underscore.
// Periods are allowed for file extensions.
var nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9_.]+`)
var collapseUnderscoreRegex = regexp.MustCompile(`_+`) // Regex to find consecutive underscores

// SanitizeFilename converts a string into a safe format suitable for filenames or handles.
// It converts to lowercase, replaces spaces and disallowed characters with underscores,
// collapses consecutive underscores, and trims leading/trailing spaces.
func SanitizeFilename(name string) string {
	// 1. Convert to lowercase
	lower := strings.ToLower(name)

	// 2. Trim leading/trailing spaces first
	trimmed := strings.TrimSpace(lower)

	// 3. Replace spaces with underscores
	noSpaces := strings.ReplaceAll(trimmed, " ", "_")

	// 4. Replace all non-alphanumeric characters (except _, .) with underscores
	sanitized := nonAlphanumericRegex.ReplaceAllString(noSpaces, "_")

	// 5. Collapse multiple consecutive underscores into one
	collapsed := collapseUnderscoreRegex.ReplaceAllString(sanitized, "_")

	if collapsed == "" && name != "" {
		return "_"
	}

	return collapsed
}

// SanitizeHandle is SanitizeFilename without periods, so a handle can be
// embedded in a "<prefix>.<handle>.yaml" driver file name unambiguously.
func SanitizeHandle(name string) string {
	handle := strings.ReplaceAll(SanitizeFilename(name), ".", "_")
	handle = collapseUnderscoreRegex.ReplaceAllString(handle, "_")
	return strings.Trim(handle, "_")
}
