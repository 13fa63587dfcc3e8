package site

import (
	"errors"
	"fmt"
	"html/template"
	"io"
)

// ErrLayout indicates the page layout failed to parse or execute.
var ErrLayout = errors.New("page layout")

// GlobalData is page-wide data shared with embedded components.
type GlobalData struct {
	Dependencies []string // public URLs of the page's images and components
}

// PageData is the data passed to the page layout template.
type PageData struct {
	Global       GlobalData
	SiteTitle    string
	DocsRoute    string
	StyleURL     string
	Name         string        // document name, e.g. "installation"
	Title        string        // first heading text
	Content      template.HTML // rendered document fragment
	TOC          template.HTML // table of contents lists
	Contributors []string
	EditURL      string
	Parents      []string // overview documents above this one, outermost first
	Date         string
	BuildID      string
}

// Layout wraps rendered documents in a page.
type Layout struct {
	tmpl *template.Template
}

// NewLayout parses an html/template page layout.
func NewLayout(page string) (*Layout, error) {
	tmpl, err := template.New("page").Parse(page)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLayout, err)
	}
	return &Layout{tmpl: tmpl}, nil
}

// Execute writes the page for data to w.
func (l *Layout) Execute(w io.Writer, data *PageData) error {
	if err := l.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrLayout, data.Name, err)
	}
	return nil
}
