package assets

// TemplateSet holds the templates used to lay out a documentation site.
type TemplateSet struct {
	Name     string // Identifier (name or directory path)
	Page     string // Page layout (html/template) wrapping a rendered document
	Overview string // Overview document body (text/template producing Markdown)
}

// File names inside a template set directory.
const (
	pageFile     = "page.html"
	overviewFile = "overview.md"
)

// DefaultTemplateSetName is the name of the built-in template set.
const DefaultTemplateSetName = "default"

// DefaultStyleName is the name of the built-in CSS style.
const DefaultStyleName = "default"
