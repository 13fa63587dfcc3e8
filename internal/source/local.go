package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/alnah/docsite"
)

// ErrDocsDir indicates a local documentation directory could not be read.
var ErrDocsDir = errors.New("reading docs directory")

const markdownExt = ".md"

// LoadDir reads every "*.md" file directly inside dir, sorted by name.
// Subdirectories are not visited. FilePath is absolute so that relative
// links and images resolve from the document's location.
func LoadDir(dir string) ([]docsite.Document, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocsDir, err)
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocsDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != markdownExt {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	docs := make([]docsite.Document, 0, len(names))
	for _, name := range names {
		path := filepath.Join(absDir, name)
		content, err := os.ReadFile(path) // #nosec G304 -- path is inside the configured docs directory
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDocsDir, err)
		}
		docs = append(docs, docsite.Document{
			Markdown:     string(content),
			DocumentName: name,
			FilePath:     path,
		})
	}
	return docs, nil
}
