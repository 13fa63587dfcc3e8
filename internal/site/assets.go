package site

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/alnah/docsite/internal/fileutil"
	"github.com/alnah/docsite/internal/logfields"
)

// ErrAsset indicates a page dependency could not be fingerprinted or copied.
var ErrAsset = errors.New("asset")

// StaticRoute is the URL prefix of fingerprinted assets.
const StaticRoute = "/static/"

// fingerprintBytes is the number of digest bytes kept in asset names.
const fingerprintBytes = 8

// AssetTable maps local image files to public fingerprinted URLs.
// It is safe for concurrent use.
type AssetTable struct {
	mu      sync.RWMutex
	byName  map[string]string   // public name -> source path
	bySrc   map[string]string   // source path -> public name
	missing map[string]struct{} // local sources already reported missing
	logger  *slog.Logger
}

// NewAssetTable creates an empty table. A nil logger discards.
func NewAssetTable(logger *slog.Logger) *AssetTable {
	if logger == nil {
		logger = logfields.Discard()
	}
	return &AssetTable{
		byName:  make(map[string]string),
		bySrc:   make(map[string]string),
		missing: make(map[string]struct{}),
		logger:  logger,
	}
}

// URL returns the public URL of src. Only existing local files are
// fingerprinted and registered; URLs, data URIs and missing files are
// returned unchanged. A missing local file is logged once.
func (a *AssetTable) URL(src string) (string, error) {
	if !filepath.IsAbs(src) {
		return src, nil
	}
	if !fileutil.FileExists(src) {
		a.reportMissing(src)
		return src, nil
	}

	a.mu.RLock()
	name, ok := a.bySrc[src]
	a.mu.RUnlock()
	if ok {
		return StaticRoute + name, nil
	}

	content, err := os.ReadFile(src) // #nosec G304 -- src is a document dependency
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAsset, err)
	}
	name = Fingerprint(content) + "-" + filepath.Base(src)

	a.mu.Lock()
	a.bySrc[src] = name
	a.byName[name] = src
	a.mu.Unlock()

	return StaticRoute + name, nil
}

func (a *AssetTable) reportMissing(src string) {
	a.mu.Lock()
	_, seen := a.missing[src]
	a.missing[src] = struct{}{}
	a.mu.Unlock()
	if !seen {
		a.logger.Warn("image not found, src left unchanged", logfields.Path(src))
	}
}

// PublicURLs maps page dependencies to URLs suitable for preloading.
// Remote URLs are kept; local files are kept only when they are images, so
// generated component artifacts never reach the published site.
func (a *AssetTable) PublicURLs(deps []string) []string {
	urls := make([]string, 0, len(deps))
	for _, d := range deps {
		if !fileutil.IsURL(d) && (!isImage(d) || !fileutil.FileExists(d)) {
			continue
		}
		u, err := a.URL(d)
		if err != nil {
			continue
		}
		urls = append(urls, u)
	}
	return urls
}

// Lookup returns the source file of a public asset name.
func (a *AssetTable) Lookup(name string) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	src, ok := a.byName[name]
	return src, ok
}

// Names returns every registered public name, sorted.
func (a *AssetTable) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.byName))
	for n := range a.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CopyTo copies every registered asset into outDir/static/.
func (a *AssetTable) CopyTo(outDir string) (int, error) {
	names := a.Names()
	for _, name := range names {
		src, _ := a.Lookup(name)
		dst := filepath.Join(outDir, filepath.FromSlash(path.Join(StaticRoute, name)))
		if err := fileutil.CopyFile(src, dst); err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrAsset, name, err)
		}
	}
	return len(names), nil
}

func isImage(p string) bool {
	return strings.HasPrefix(mime.TypeByExtension(strings.ToLower(filepath.Ext(p))), "image/")
}

// Fingerprint returns the hex prefix of the BLAKE3 digest of content.
func Fingerprint(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:fingerprintBytes])
}
