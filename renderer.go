package docsite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alnah/docsite/internal/compiler"
	"github.com/alnah/docsite/internal/components"
	"github.com/alnah/docsite/internal/logfields"
	"github.com/alnah/docsite/internal/pipeline"
)

// Renderer turns Markdown documents into compiled page fragments.
// It owns the generated component map and the compiled template cache,
// both shared by concurrent Render calls.
type Renderer struct {
	cfg      rendererConfig
	store    components.Store
	assetURL compiler.AssetURLFunc
	logger   *slog.Logger

	normalizer   *pipeline.Normalizer
	converter    pipeline.HTMLConverter
	compiler     *compiler.Compiler
	materializer *components.Materializer
}

// NewRenderer creates a Renderer with the given options.
// Patterns are compiled once here; a bad pattern fails with ErrInvalidPattern.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		cfg: rendererConfig{
			docsRoute:      pipeline.DefaultDocsRoute,
			highlightStyle: compiler.DefaultHighlightStyle,
		},
		logger: logfields.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}

	docLink, err := compilePattern("document link", r.cfg.docLinkPattern)
	if err != nil {
		return nil, err
	}
	invocation, err := compilePattern("invocation", r.cfg.invocationPattern)
	if err != nil {
		return nil, err
	}
	if invocation != nil && invocation.NumSubexp() < 1 {
		return nil, fmt.Errorf("%w: invocation pattern needs a capture group", ErrInvalidPattern)
	}

	if r.cfg.baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBaseDir, err)
		}
		r.cfg.baseDir = wd
	}

	if r.store == nil {
		if r.cfg.componentsDir != "" {
			fs, err := components.NewFSStore(r.cfg.componentsDir)
			if err != nil {
				return nil, err
			}
			r.store = fs
		} else {
			r.store = components.NewMemoryStore()
		}
	}

	// The compiler resolves generated components through the materializer,
	// which in turn invalidates the compiler's cache on every new artifact.
	r.compiler = compiler.New(
		compiler.WithHighlightStyle(r.cfg.highlightStyle),
		compiler.WithLogger(r.logger),
	)
	r.materializer = components.NewMaterializer(r.store, r.compiler, r.logger)
	compiler.WithComponentResolver(r.materializer)(r.compiler)
	if r.assetURL != nil {
		compiler.WithAssetURL(r.assetURL)(r.compiler)
	}

	r.normalizer = pipeline.NewNormalizer(pipeline.NormalizerConfig{
		Domain:            r.cfg.domain,
		DocsRoute:         r.cfg.docsRoute,
		DocLinkPattern:    docLink,
		InvocationPattern: invocation,
		Materializer:      materializeFunc(r.materialize),
	})
	r.converter = pipeline.NewGoldmarkConverter()

	return r, nil
}

// compilePattern compiles an optional regular expression; empty yields nil.
func compilePattern(name, pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPattern, name, err)
	}
	return re, nil
}

// materializeFunc adapts a function to pipeline.Materializer.
type materializeFunc func(string) (string, error)

func (f materializeFunc) Materialize(invocation string) (string, error) { return f(invocation) }

func (r *Renderer) materialize(invocation string) (string, error) {
	ref, err := r.materializer.Materialize(invocation)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMaterialize, err)
	}
	return ref, nil
}

// Render renders one document into a page fragment.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (r *Renderer) Render(ctx context.Context, doc Document) (result *Rendered, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("internal error: %v", rec)
		}
	}()

	if strings.TrimSpace(doc.Name()) == "" {
		return nil, ErrEmptyDocumentName
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	markdown, err := r.normalizer.Normalize(doc.Markdown, doc.FilePath)
	if err != nil {
		return nil, err
	}

	converted, err := r.converter.ToHTML(ctx, markdown, doc.FilePath)
	if err != nil {
		return nil, err
	}

	source := pipeline.WrapSentinel(converted.HTML)
	tmpl, err := r.compiler.Compile(r.VirtualPath(doc), source)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("rendered document",
		logfields.Doc(doc.Name()),
		logfields.Count(len(tmpl.Dependencies())),
		logfields.Duration(time.Since(start)))

	return &Rendered{
		HTML:         tmpl.HTML(),
		Source:       source,
		Headings:     converted.TOC.Headings(),
		TOC:          converted.TOC.HTML(),
		Title:        converted.Title,
		Dependencies: tmpl.Dependencies(),
		Template:     tmpl,
	}, nil
}

// VirtualPath returns the template path a document compiles under.
func (r *Renderer) VirtualPath(doc Document) string {
	return filepath.Join(r.cfg.baseDir, doc.DocumentName)
}

// WriteHighlightCSS writes the stylesheet for highlighted code blocks.
func (r *Renderer) WriteHighlightCSS(w io.Writer) error {
	return r.compiler.Highlighter().WriteCSS(w)
}

// Components returns the number of generated components known to the Renderer.
func (r *Renderer) Components() int {
	return r.materializer.Len()
}

// ClearCaches drops every compiled template.
func (r *Renderer) ClearCaches() {
	r.compiler.ClearCaches()
}
