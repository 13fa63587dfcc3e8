package docsite

import (
	"log/slog"

	"github.com/alnah/docsite/internal/compiler"
	"github.com/alnah/docsite/internal/components"
)

// Option configures a Renderer.
type Option func(*Renderer)

// rendererConfig holds the policy knobs of a Renderer.
type rendererConfig struct {
	domain            string
	docsRoute         string
	docLinkPattern    string
	invocationPattern string
	baseDir           string
	componentsDir     string
	highlightStyle    string
}

// WithSiteDomain sets the canonical site host (e.g. "trooba.github.io").
// Absolute links to it are rewritten to root-relative paths.
func WithSiteDomain(domain string) Option {
	return func(r *Renderer) {
		r.cfg.domain = domain
	}
}

// WithDocsRoute sets the route serving documentation pages (default "/docs/").
// An empty route keeps the default.
func WithDocsRoute(route string) Option {
	return func(r *Renderer) {
		if route != "" {
			r.cfg.docsRoute = route
		}
	}
}

// WithDocLinkPattern overrides the regular expression matching relative
// document links. NewRenderer fails with ErrInvalidPattern if it does not compile.
func WithDocLinkPattern(pattern string) Option {
	return func(r *Renderer) {
		r.cfg.docLinkPattern = pattern
	}
}

// WithInvocationPattern overrides the regular expression matching component
// invocation regions. Its first group must capture the invocation.
// NewRenderer fails with ErrInvalidPattern if it does not compile.
func WithInvocationPattern(pattern string) Option {
	return func(r *Renderer) {
		r.cfg.invocationPattern = pattern
	}
}

// WithBaseDir sets the directory virtual template paths are derived from.
// Defaults to the working directory.
func WithBaseDir(dir string) Option {
	return func(r *Renderer) {
		r.cfg.baseDir = dir
	}
}

// WithComponentsDir stores generated components as files in dir.
func WithComponentsDir(dir string) Option {
	return func(r *Renderer) {
		r.cfg.componentsDir = dir
	}
}

// WithComponentStore sets the generated component store.
// Takes precedence over WithComponentsDir.
func WithComponentStore(store components.Store) Option {
	return func(r *Renderer) {
		r.store = store
	}
}

// WithAssetURL maps image sources to public URLs during compilation.
func WithAssetURL(fn func(src string) (string, error)) Option {
	return func(r *Renderer) {
		r.assetURL = compiler.AssetURLFunc(fn)
	}
}

// WithHighlightStyle sets the chroma style name for code blocks.
// An empty name keeps the default.
func WithHighlightStyle(name string) Option {
	return func(r *Renderer) {
		if name != "" {
			r.cfg.highlightStyle = name
		}
	}
}

// WithLogger sets the logger. Defaults to discarding all records.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}
