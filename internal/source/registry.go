package source

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/alnah/docsite"
	"github.com/alnah/docsite/internal/config"
	"github.com/alnah/docsite/internal/logfields"
)

const editURLFormat = "https://github.com/%s/blob/master/%s"

// Registry is the merged set of site documents keyed by name.
// It is immutable once loaded and safe for concurrent reads.
type Registry struct {
	docs         map[string]docsite.Document
	tree         OverviewTree
	contributors map[string][]string
	defaultRepo  string
}

// NewRegistry merges document sources in order; a later document replaces
// an earlier one with the same name.
func NewRegistry(defaultRepo string, tree OverviewTree, contributors map[string][]string, sources ...[]docsite.Document) *Registry {
	r := &Registry{
		docs:         make(map[string]docsite.Document),
		tree:         tree,
		contributors: contributors,
		defaultRepo:  defaultRepo,
	}
	if r.defaultRepo == "" {
		r.defaultRepo = config.DefaultRepo
	}
	for _, docs := range sources {
		for _, d := range docs {
			r.docs[d.Name()] = d
		}
	}
	return r
}

// LoadOptions holds what Load needs beyond the configuration.
type LoadOptions struct {
	Fetcher          *Fetcher // nil skips remote documents
	OverviewTemplate string   // text/template source for overview documents
	Logger           *slog.Logger
}

// Load fetches remote documents, reads local directories and generates
// overviews, then merges them in that order.
func Load(ctx context.Context, cfg *config.Config, opts LoadOptions) (*Registry, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logfields.Discard()
	}

	var remote []docsite.Document
	if opts.Fetcher != nil && len(cfg.Remote.Documents) > 0 {
		var err error
		remote, err = opts.Fetcher.FetchAll(ctx, cfg.Remote.Documents)
		if err != nil {
			return nil, err
		}
	}

	sources := [][]docsite.Document{remote}
	for _, dir := range cfg.Paths.Docs {
		docs, err := LoadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", dir, err)
		}
		logger.Debug("loaded docs directory", logfields.Path(dir), logfields.Count(len(docs)))
		sources = append(sources, docs)
	}

	overviews, tree, err := OverviewDocuments(cfg.Structure, cfg.Site.DocsRoute, opts.OverviewTemplate)
	if err != nil {
		return nil, err
	}
	sources = append(sources, overviews)

	r := NewRegistry(cfg.Remote.DefaultRepo, tree, cfg.Contributors, sources...)
	logger.Info("documents loaded",
		logfields.Count(r.Len()),
		slog.Int("remote", len(remote)),
		slog.Int("overviews", len(overviews)))
	return r, nil
}

// Get returns the document with the given name (no extension).
func (r *Registry) Get(name string) (docsite.Document, bool) {
	d, ok := r.docs[name]
	return d, ok
}

// Names returns every document name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.docs))
	for name := range r.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of documents.
func (r *Registry) Len() int {
	return len(r.docs)
}

// Parents returns the overview documents above name, outermost first.
func (r *Registry) Parents(name string) []string {
	return r.tree.Parents(name)
}

// Contributors returns the contributor handles configured for name.
func (r *Registry) Contributors(name string) []string {
	return slices.Clone(r.contributors[name])
}

// RepoAndPath returns the repository and in-repo path of a document.
// Documents without their own repo live in the default repo under
// "docs/<name>.md".
func (r *Registry) RepoAndPath(name string) (repo, path string) {
	if d, ok := r.docs[name]; ok && d.Repo != "" {
		return d.Repo, strings.TrimPrefix(d.RepoFilePath, "/")
	}
	return r.defaultRepo, "docs/" + name + markdownExt
}

// EditURL returns the GitHub page of a document's source file.
func (r *Registry) EditURL(name string) string {
	repo, path := r.RepoAndPath(name)
	return fmt.Sprintf(editURLFormat, repo, path)
}
