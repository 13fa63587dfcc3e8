package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/docsite"
	"github.com/alnah/docsite/internal/assets"
	"github.com/alnah/docsite/internal/config"
	"github.com/alnah/docsite/internal/dateutil"
	"github.com/alnah/docsite/internal/fileutil"
	"github.com/alnah/docsite/internal/logfields"
	"github.com/alnah/docsite/internal/source"
)

// Sentinel errors for site operations.
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrNotLoaded        = errors.New("site documents not loaded")
	ErrStyle            = errors.New("loading site style")
)

// StyleFile is the name of the generated style sheet under StaticRoute.
const StyleFile = "site.css"

// Site renders the documents of one configuration into pages.
type Site struct {
	cfg      *config.Config
	renderer *docsite.Renderer
	fetcher  *source.Fetcher
	layout   *Layout
	overview string
	assets   *AssetTable
	style    string
	date     string
	logger   *slog.Logger
	registry atomic.Pointer[source.Registry]
}

// Option configures a Site.
type Option func(*siteOptions)

type siteOptions struct {
	logger  *slog.Logger
	fetcher *source.Fetcher
	now     func() time.Time
}

// WithLogger sets the logger shared by the site, renderer and fetcher.
func WithLogger(l *slog.Logger) Option {
	return func(o *siteOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithFetcher replaces the remote document fetcher.
func WithFetcher(f *source.Fetcher) Option {
	return func(o *siteOptions) {
		o.fetcher = f
	}
}

// WithClock sets the time used to resolve "auto" footer dates.
func WithClock(now func() time.Time) Option {
	return func(o *siteOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates a Site from a validated configuration. Documents are not
// loaded until Load is called.
func New(cfg *config.Config, opts ...Option) (*Site, error) {
	o := siteOptions{logger: logfields.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	resolver, err := assets.NewAssetResolver(cfg.Paths.Assets)
	if err != nil {
		return nil, err
	}
	ts, err := resolver.LoadTemplateSet(cfg.Templates)
	if err != nil {
		return nil, err
	}
	layout, err := NewLayout(ts.Page)
	if err != nil {
		return nil, err
	}
	style, err := loadStyle(resolver, cfg.Style)
	if err != nil {
		return nil, err
	}
	date, err := dateutil.ResolveDate(cfg.Site.Date, o.now())
	if err != nil {
		return nil, err
	}

	table := NewAssetTable(o.logger)
	renderer, err := docsite.NewRenderer(
		docsite.WithSiteDomain(cfg.Site.Domain),
		docsite.WithDocsRoute(cfg.Site.DocsRoute),
		docsite.WithDocLinkPattern(cfg.Patterns.DocLink),
		docsite.WithInvocationPattern(cfg.Patterns.Invocation),
		docsite.WithBaseDir(cfg.Site.BaseDir),
		docsite.WithComponentsDir(cfg.Paths.Generated),
		docsite.WithAssetURL(table.URL),
		docsite.WithHighlightStyle(cfg.HighlightStyle),
		docsite.WithLogger(o.logger),
	)
	if err != nil {
		return nil, err
	}

	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = source.NewFetcher(
			source.WithTimeout(cfg.Remote.TimeoutDuration()),
			source.WithFetchLogger(o.logger),
		)
	}

	return &Site{
		cfg:      cfg,
		renderer: renderer,
		fetcher:  fetcher,
		layout:   layout,
		overview: ts.Overview,
		assets:   table,
		style:    style,
		date:     date,
		logger:   o.logger,
	}, nil
}

// loadStyle reads a style file when nameOrPath is a path, otherwise a named
// style from the asset resolver.
func loadStyle(resolver *assets.AssetResolver, nameOrPath string) (string, error) {
	if !fileutil.IsFilePath(nameOrPath) {
		return resolver.LoadStyle(nameOrPath)
	}
	data, err := os.ReadFile(nameOrPath) // #nosec G304 -- user-provided style path
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStyle, err)
	}
	return string(data), nil
}

// Load fetches and reads every document source and replaces the registry.
// Compiled template caches are cleared so reloaded documents re-render.
func (s *Site) Load(ctx context.Context) error {
	reg, err := source.Load(ctx, s.cfg, source.LoadOptions{
		Fetcher:          s.fetcher,
		OverviewTemplate: s.overview,
		Logger:           s.logger,
	})
	if err != nil {
		return err
	}
	s.registry.Store(reg)
	s.renderer.ClearCaches()
	return nil
}

// Registry returns the current document registry, or nil before Load.
func (s *Site) Registry() *source.Registry {
	return s.registry.Load()
}

// Renderer returns the site's document renderer.
func (s *Site) Renderer() *docsite.Renderer {
	return s.renderer
}

// Assets returns the fingerprinted asset table.
func (s *Site) Assets() *AssetTable {
	return s.assets
}

// Page is one rendered page and the document it came from.
type Page struct {
	Name     string
	HTML     []byte
	Rendered *docsite.Rendered
}

// RenderPage renders the named document inside the page layout.
func (s *Site) RenderPage(ctx context.Context, name, buildID string) (*Page, error) {
	reg := s.registry.Load()
	if reg == nil {
		return nil, ErrNotLoaded
	}
	doc, ok := reg.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, name)
	}
	return s.renderDocument(ctx, reg, doc, buildID)
}

// RenderDocument renders doc inside the page layout. doc need not be one
// of the loaded documents; without a loaded registry, page data carries
// only configured contributors and the default edit link.
func (s *Site) RenderDocument(ctx context.Context, doc docsite.Document, buildID string) (*Page, error) {
	reg := s.registry.Load()
	if reg == nil {
		reg = source.NewRegistry(s.cfg.Remote.DefaultRepo, nil, s.cfg.Contributors)
	}
	return s.renderDocument(ctx, reg, doc, buildID)
}

func (s *Site) renderDocument(ctx context.Context, reg *source.Registry, doc docsite.Document, buildID string) (*Page, error) {
	rendered, err := s.renderer.Render(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.DocumentName, err)
	}

	name := doc.Name()
	data := &PageData{
		Global:       GlobalData{Dependencies: s.assets.PublicURLs(rendered.Dependencies)},
		SiteTitle:    s.cfg.Site.Title,
		DocsRoute:    s.cfg.Site.DocsRoute,
		StyleURL:     StaticRoute + StyleFile,
		Name:         name,
		Title:        rendered.Title,
		Content:      template.HTML(rendered.HTML), // #nosec G203 -- compiled from sanitized pipeline output
		TOC:          template.HTML(rendered.TOC),  // #nosec G203 -- generated list markup
		Contributors: reg.Contributors(name),
		EditURL:      reg.EditURL(name),
		Parents:      reg.Parents(name),
		Date:         s.date,
		BuildID:      buildID,
	}

	var buf bytes.Buffer
	if err := s.layout.Execute(&buf, data); err != nil {
		return nil, err
	}
	return &Page{Name: name, HTML: buf.Bytes(), Rendered: rendered}, nil
}

// StyleSheet returns the site style followed by the code highlighting rules.
func (s *Site) StyleSheet() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(s.style)
	buf.WriteString("\n")
	if err := s.renderer.WriteHighlightCSS(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStyle, err)
	}
	return buf.Bytes(), nil
}

// NewBuildID returns a unique identifier for one build or server run.
func NewBuildID() string {
	return uuid.NewString()
}
