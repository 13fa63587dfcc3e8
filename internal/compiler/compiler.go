// Package compiler turns generated page markup into renderable templates.
//
// The markup produced by the Markdown pipeline contains custom elements
// that only have meaning to the site:
//
//	<code-block lang="js" lines="3-5">...</code-block>   highlighted with chroma
//	<asset-img src="/abs/path.png" alt="..."/>           mapped through the asset pipeline
//	<external-component-TAG-HASH/>                        replaced by the generated artifact
//
// Compiled templates are cached by virtual path. ClearCaches drops the
// cache so artifacts generated after a compile become visible.
package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"strings"
	"sync"

	nethtml "golang.org/x/net/html"

	"github.com/alnah/docsite/internal/logfields"
	"github.com/alnah/docsite/internal/pipeline"
)

// Sentinel errors for template compilation.
var (
	ErrCompile          = errors.New("template compilation failed")
	ErrUnknownComponent = errors.New("unknown generated component")
	ErrEmptyPath        = errors.New("virtual path cannot be empty")
)

// Element names understood by the compiler.
const (
	codeBlockTag        = "code-block"
	assetImageTag       = "asset-img"
	componentPrefix     = "external-component-"
	componentWrapperTag = "external-component"
)

// ComponentResolver looks up generated component artifacts by name.
type ComponentResolver interface {
	// Resolve returns the artifact content. ok is false when name is not a
	// generated artifact name.
	Resolve(name string) (content string, ok bool, err error)

	// PathFor returns the artifact location, or "".
	PathFor(name string) string
}

// AssetURLFunc maps a resolved image source to its public URL.
type AssetURLFunc func(src string) (string, error)

// Option configures a Compiler.
type Option func(*Compiler)

// WithComponentResolver sets the resolver for generated component references.
func WithComponentResolver(r ComponentResolver) Option {
	return func(c *Compiler) { c.resolver = r }
}

// WithAssetURL sets the image source mapping. The default keeps sources unchanged.
func WithAssetURL(fn AssetURLFunc) Option {
	return func(c *Compiler) { c.assetURL = fn }
}

// WithHighlightStyle sets the chroma style for code blocks.
func WithHighlightStyle(name string) Option {
	return func(c *Compiler) { c.highlighter = NewHighlighter(name) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// Compiler compiles page markup into Templates. Safe for concurrent use.
type Compiler struct {
	resolver    ComponentResolver
	assetURL    AssetURLFunc
	highlighter *Highlighter
	logger      *slog.Logger

	mu    sync.Mutex
	cache map[string]*Template // virtual path -> last compiled template
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		assetURL: func(src string) (string, error) { return src, nil },
		logger:   logfields.Discard(),
		cache:    make(map[string]*Template),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.highlighter == nil {
		c.highlighter = NewHighlighter(DefaultHighlightStyle)
	}
	return c
}

// Highlighter returns the code highlighter, for style sheet generation.
func (c *Compiler) Highlighter() *Highlighter {
	return c.highlighter
}

// ClearCaches drops every compiled template.
func (c *Compiler) ClearCaches() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*Template)
}

// Cached returns the number of cached templates.
func (c *Compiler) Cached() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// Compile compiles src, identified by virtualPath, into a Template.
// src must contain a sentinel delimited region; markup outside the region
// is copied unchanged. A cached template is reused when virtualPath was
// last compiled from the same source.
func (c *Compiler) Compile(virtualPath, src string) (*Template, error) {
	if virtualPath == "" {
		return nil, ErrEmptyPath
	}

	c.mu.Lock()
	cached, ok := c.cache[virtualPath]
	c.mu.Unlock()
	if ok && cached.source == src {
		return cached, nil
	}

	before, inner, after, err := pipeline.UnwrapSentinel(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCompile, virtualPath, err)
	}

	x := &expansion{compiler: c, seen: make(map[string]bool)}
	body, err := x.expand(inner)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompile, virtualPath, err)
	}

	tmpl := &Template{
		path:         virtualPath,
		source:       src,
		html:         before + body + after,
		dependencies: x.deps,
	}

	c.mu.Lock()
	c.cache[virtualPath] = tmpl
	c.mu.Unlock()

	c.logger.Debug("compiled template", logfields.Path(virtualPath), logfields.Count(len(x.deps)))
	return tmpl, nil
}

// expansion holds the state of one compilation.
type expansion struct {
	compiler *Compiler
	deps     []string
	seen     map[string]bool
	inline   int // depth of open elements that only allow phrasing content
}

// phrasingParents are elements whose content model excludes <div>.
var phrasingParents = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"a": true, "em": true, "strong": true, "span": true, "del": true, "code": true,
}

func (x *expansion) addDependency(dep string) {
	if dep == "" || x.seen[dep] {
		return
	}
	x.seen[dep] = true
	x.deps = append(x.deps, dep)
}

// expand rewrites the custom elements of markup. Every other token is
// copied byte for byte.
func (x *expansion) expand(markup string) (string, error) {
	var out bytes.Buffer
	z := nethtml.NewTokenizer(strings.NewReader(markup))

	for {
		tt := z.Next()
		switch tt {
		case nethtml.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return "", err
			}
			return out.String(), nil

		case nethtml.StartTagToken, nethtml.SelfClosingTagToken:
			raw := string(z.Raw())
			tok := z.Token()

			switch {
			case tok.Data == codeBlockTag:
				code := readText(z, codeBlockTag)
				if err := x.codeBlock(&out, tok, code); err != nil {
					return "", err
				}
			case tok.Data == assetImageTag:
				if err := x.assetImage(&out, tok); err != nil {
					return "", err
				}
				if tt == nethtml.StartTagToken {
					skipEndTag(z, assetImageTag)
				}
			case strings.HasPrefix(tok.Data, componentPrefix):
				if err := x.component(&out, tok.Data); err != nil {
					return "", err
				}
			default:
				out.WriteString(raw)
				if tt == nethtml.StartTagToken && phrasingParents[tok.Data] {
					x.inline++
				}
			}

		case nethtml.EndTagToken:
			name, _ := z.TagName()
			// Generated component references are void; drop stray end tags
			if strings.HasPrefix(string(name), componentPrefix) {
				continue
			}
			if phrasingParents[string(name)] && x.inline > 0 {
				x.inline--
			}
			out.Write(z.Raw())

		default:
			out.Write(z.Raw())
		}
	}
}

func (x *expansion) codeBlock(w *bytes.Buffer, tok nethtml.Token, code string) error {
	lang := attr(tok, "lang")
	lines := attr(tok, "lines")

	fmt.Fprintf(w, `<div class="code-block" data-lang="%s">`, html.EscapeString(lang))
	if err := x.compiler.highlighter.Highlight(w, code, lang, lines); err != nil {
		return err
	}
	w.WriteString(`</div>`)
	return nil
}

func (x *expansion) assetImage(w *bytes.Buffer, tok nethtml.Token) error {
	src := attr(tok, "src")
	url, err := x.compiler.assetURL(src)
	if err != nil {
		return fmt.Errorf("image %q: %w", src, err)
	}
	x.addDependency(src)

	fmt.Fprintf(w, `<img src="%s" alt="%s">`, html.EscapeString(url), html.EscapeString(attr(tok, "alt")))
	return nil
}

func (x *expansion) component(w *bytes.Buffer, name string) error {
	resolver := x.compiler.resolver
	if resolver == nil {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}

	content, ok, err := resolver.Resolve(name)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnknownComponent, name, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}
	x.addDependency(resolver.PathFor(name))

	w.WriteString(renderComponent(name, content, x.inline > 0))
	return nil
}

// renderComponent turns a generated artifact into page markup. The
// invocation inside the artifact wrapper is kept as is for the browser.
// References inside phrasing content get a <span> wrapper.
func renderComponent(name, content string, inline bool) string {
	inner := strings.TrimPrefix(content, "<"+componentWrapperTag+">")
	inner = strings.TrimSuffix(inner, "</"+componentWrapperTag+">")
	tag := "div"
	if inline {
		tag = "span"
	}
	return `<` + tag + ` class="` + componentWrapperTag + `" data-component="` + html.EscapeString(name) + `">` +
		inner + `</` + tag + `>`
}

// readText collects unescaped text until the end tag of name.
func readText(z *nethtml.Tokenizer, name string) string {
	var buf strings.Builder
	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			return buf.String()
		case nethtml.TextToken:
			buf.Write(z.Text())
		case nethtml.EndTagToken:
			if n, _ := z.TagName(); string(n) == name {
				return buf.String()
			}
			buf.Write(z.Raw())
		default:
			buf.Write(z.Raw())
		}
	}
}

// skipEndTag consumes tokens up to and including the end tag of name.
func skipEndTag(z *nethtml.Tokenizer, name string) {
	_ = readText(z, name)
}

func attr(tok nethtml.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Template is a compiled page fragment.
type Template struct {
	path         string
	source       string
	html         string
	dependencies []string
}

// Path returns the virtual path the template was compiled for.
func (t *Template) Path() string { return t.path }

// Source returns the markup the template was compiled from.
func (t *Template) Source() string { return t.source }

// HTML returns the rendered markup.
func (t *Template) HTML() string { return t.html }

// Dependencies returns the images and generated components the template
// uses, in document order.
func (t *Template) Dependencies() []string {
	out := make([]string, len(t.dependencies))
	copy(out, t.dependencies)
	return out
}

// Render writes the rendered markup to w.
func (t *Template) Render(w io.Writer) error {
	_, err := io.WriteString(w, t.html)
	return err
}
