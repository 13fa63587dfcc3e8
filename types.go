package docsite

import (
	"strings"

	"github.com/alnah/docsite/internal/compiler"
	"github.com/alnah/docsite/internal/pipeline"
)

// Document is one Markdown source document, local or remote.
type Document struct {
	Markdown     string
	DocumentName string // file name including extension, e.g. "webpack.md"
	FilePath     string // source location; empty for externally sourced documents
	RepoFilePath string // path inside Repo, used for edit links
	Repo         string // "owner/name" of the repository holding the document
	URL          string // download URL of a remote document
}

// Name returns the document name without its ".md" extension.
func (d Document) Name() string {
	return strings.TrimSuffix(d.DocumentName, ".md")
}

// External reports whether the document has no known source location.
func (d Document) External() bool {
	return d.FilePath == ""
}

// Heading is one table of contents entry.
type Heading = pipeline.Heading

// Rendered is the result of rendering a Document.
// It is owned by the caller and never cached by the Renderer.
type Rendered struct {
	HTML         string             // compiled page fragment
	Source       string             // generated markup inside sentinel delimiters
	Headings     []Heading          // table of contents entries in document order
	TOC          string             // table of contents as nested lists
	Title        string             // first heading text, empty without headings
	Dependencies []string           // images and generated components used by the page
	Template     *compiler.Template // compiled template handle
}
