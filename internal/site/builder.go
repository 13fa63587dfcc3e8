package site

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alnah/docsite"
	"github.com/alnah/docsite/internal/fileutil"
	"github.com/alnah/docsite/internal/logfields"
)

// ErrBuildFailed indicates one or more pages failed to build.
var ErrBuildFailed = errors.New("build failed")

const pageFile = "index.html"

// PageResult holds the outcome of building one page.
type PageResult struct {
	Name       string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// BuildReport summarizes a static build.
type BuildReport struct {
	BuildID  string
	OutDir   string
	Pages    []PageResult
	Assets   int
	Duration time.Duration
}

// Failed returns the number of pages that failed.
func (r *BuildReport) Failed() int {
	n := 0
	for _, p := range r.Pages {
		if p.Err != nil {
			n++
		}
	}
	return n
}

// Build renders every document into outDir with up to workers concurrent
// renders (0 = auto). Pages that fail are reported; the others are still
// written. Assets and the style sheet are written after all pages so that
// every dependency is registered. The build ID goes to the logs and the
// report only, so an unchanged site builds to identical files.
func (s *Site) Build(ctx context.Context, outDir string, workers int) (*BuildReport, error) {
	reg := s.registry.Load()
	if reg == nil {
		return nil, ErrNotLoaded
	}

	start := time.Now()
	report := &BuildReport{BuildID: NewBuildID(), OutDir: outDir}
	logger := s.logger.With(logfields.BuildID(report.BuildID))

	names := reg.Names()
	report.Pages = s.buildPages(ctx, names, outDir, docsite.ResolveWorkers(workers))

	css, err := s.StyleSheet()
	if err != nil {
		return report, err
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(outDir, staticDir(), StyleFile), css); err != nil {
		return report, fmt.Errorf("writing style sheet: %w", err)
	}

	n, err := s.assets.CopyTo(outDir)
	if err != nil {
		return report, err
	}
	report.Assets = n
	report.Duration = time.Since(start)

	var errs []error
	for _, p := range report.Pages {
		if p.Err != nil {
			logger.Error("page failed", logfields.Doc(p.Name), logfields.Error(p.Err))
			errs = append(errs, p.Err)
		}
	}

	logger.Info("build finished",
		logfields.Count(len(names)),
		logfields.Path(outDir),
		logfields.Duration(report.Duration))

	if len(errs) > 0 {
		return report, fmt.Errorf("%w: %d of %d pages: %w", ErrBuildFailed, len(errs), len(names), errors.Join(errs...))
	}
	return report, nil
}

// buildPages renders names concurrently with a fixed set of workers.
func (s *Site) buildPages(ctx context.Context, names []string, outDir string, workers int) []PageResult {
	if len(names) == 0 {
		return nil
	}
	if workers > len(names) {
		workers = len(names)
	}

	results := make([]PageResult, len(names))
	var wg sync.WaitGroup
	jobs := make(chan int, len(names))

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = PageResult{Name: names[idx], Err: ctx.Err()}
					continue
				}
				results[idx] = s.buildPage(ctx, names[idx], outDir)
			}
		}()
	}

	for i := range names {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

func (s *Site) buildPage(ctx context.Context, name, outDir string) PageResult {
	start := time.Now()
	result := PageResult{
		Name:       name,
		OutputPath: PagePath(outDir, s.cfg.Site.DocsRoute, name),
	}

	page, err := s.RenderPage(ctx, name, "")
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	if err := fileutil.WriteFileAtomic(result.OutputPath, page.HTML); err != nil {
		result.Err = fmt.Errorf("writing page: %w", err)
	}
	result.Duration = time.Since(start)
	return result
}

// PagePath returns the output file of a document: <out>/<route>/<name>/index.html.
func PagePath(outDir, docsRoute, name string) string {
	route := filepath.FromSlash(strings.Trim(docsRoute, "/"))
	return filepath.Join(outDir, route, name, pageFile)
}

func staticDir() string {
	return strings.Trim(StaticRoute, "/")
}
