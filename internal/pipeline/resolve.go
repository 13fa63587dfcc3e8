package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnresolvableImage indicates a relative image path in a document that
// has no source location (a document fetched from a remote URL).
var ErrUnresolvableImage = errors.New("relative image path in document without source path")

// ResolveImageSource resolves an image src against the directory of the
// document at filePath.
//
// Returned unchanged:
//   - URLs (http, https, file, data, protocol-relative)
//   - absolute paths
//   - empty sources
//
// A relative src with an empty filePath is an error: there is no base to
// resolve it against.
func ResolveImageSource(src, filePath string) (string, error) {
	if !isRelativePath(src) {
		return src, nil
	}
	if filePath == "" {
		return "", fmt.Errorf("%w: %q", ErrUnresolvableImage, src)
	}
	return filepath.Join(filepath.Dir(filePath), filepath.FromSlash(src)), nil
}

// isRelativePath returns true if the path should be resolved.
func isRelativePath(path string) bool {
	if path == "" {
		return false
	}

	// Skip URLs (http, https, file, data, protocol-relative)
	if strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "file://") ||
		strings.HasPrefix(path, "data:") ||
		strings.HasPrefix(path, "//") {
		return false
	}

	// Skip anchors
	if strings.HasPrefix(path, "#") {
		return false
	}

	// Skip absolute paths
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return false
	}

	return true
}
