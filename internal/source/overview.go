package source

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/template"
	"unicode"

	"github.com/alnah/docsite"
	"github.com/alnah/docsite/internal/config"
)

// ErrOverviewTemplate indicates the overview template failed to parse or execute.
var ErrOverviewTemplate = errors.New("overview template")

const overviewSuffix = "-overview"

// OverviewTree maps a document name to the overview documents above it,
// outermost first. It drives the side navigation hierarchy.
type OverviewTree map[string][]string

// Parents returns the overview names above the document, outermost first.
func (t OverviewTree) Parents(name string) []string {
	return slices.Clone(t[name])
}

// OverviewLink is one entry listed by an overview document.
type OverviewLink struct {
	Title string
	Name  string
}

// OverviewData is the data passed to the overview template.
type OverviewData struct {
	Title     string
	DocsRoute string
	Docs      []OverviewLink
}

// FormatSlug lowercases s and joins its alphanumeric runs with "-".
// "Getting Started" becomes "getting-started"; slugs are unchanged.
func FormatSlug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// OverviewName returns the document name of a section overview.
// Top-level sections are "<section>-overview"; nested sections at any depth
// are "<top section>-<section>-overview".
func OverviewName(top, section string) string {
	if section == "" {
		return FormatSlug(top) + overviewSuffix
	}
	return FormatSlug(top) + "-" + FormatSlug(section) + overviewSuffix
}

// OverviewDocuments generates one Markdown document per structure section
// by executing tmplText (text/template over OverviewData), and the tree of
// overview parents for every listed document. Generated documents have no
// FilePath.
func OverviewDocuments(structure []config.Section, docsRoute, tmplText string) ([]docsite.Document, OverviewTree, error) {
	tmpl, err := template.New("overview").Parse(tmplText)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrOverviewTemplate, err)
	}

	w := &overviewWalker{
		tmpl:      tmpl,
		docsRoute: docsRoute,
		tree:      make(OverviewTree),
	}
	for i := range structure {
		top := &structure[i]
		if err := w.walk(top, top, OverviewName(top.Title, ""), nil); err != nil {
			return nil, nil, err
		}
	}
	return w.docs, w.tree, nil
}

type overviewWalker struct {
	tmpl      *template.Template
	docsRoute string
	docs      []docsite.Document
	tree      OverviewTree
}

func (w *overviewWalker) walk(top, s *config.Section, name string, parents []string) error {
	chain := append(slices.Clone(parents), name)
	if len(parents) > 0 {
		w.tree[name] = parents
	}

	data := OverviewData{Title: s.Title, DocsRoute: w.docsRoute}
	for _, e := range s.Docs {
		if e.Section != nil {
			child := OverviewName(top.Title, e.Section.Title)
			data.Docs = append(data.Docs, OverviewLink{Title: e.Section.Title, Name: child})
			if err := w.walk(top, e.Section, child, chain); err != nil {
				return err
			}
			continue
		}
		slug := FormatSlug(e.Name)
		data.Docs = append(data.Docs, OverviewLink{Title: e.Name, Name: slug})
		w.tree[slug] = chain
	}

	var b strings.Builder
	if err := w.tmpl.Execute(&b, data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOverviewTemplate, name, err)
	}
	w.docs = append(w.docs, docsite.Document{
		Markdown:     b.String(),
		DocumentName: name + markdownExt,
	})
	return nil
}
