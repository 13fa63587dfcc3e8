package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/docsite"
	"github.com/alnah/docsite/internal/config"
	"github.com/alnah/docsite/internal/logfields"
)

// ErrFetch indicates a remote document could not be downloaded.
var ErrFetch = errors.New("fetching remote document")

// MaxDocumentBytes bounds the size of a fetched document.
const MaxDocumentBytes = 5 * 1024 * 1024

// maxConcurrentFetches bounds parallel downloads in FetchAll.
const maxConcurrentFetches = 4

// Fetcher downloads remote Markdown documents. There is no retry: a failed
// download fails the whole fetch.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithTimeout bounds each download. Zero means no timeout beyond the
// caller's context.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithFetchLogger sets the logger for download events.
func WithFetchLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher creates a Fetcher with safe redirect defaults.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client: &http.Client{CheckRedirect: checkRedirect},
		logger: logfields.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) == 0 {
		return nil
	}
	if req.URL.Host != via[0].URL.Host {
		return errors.New("redirect to different host blocked")
	}
	if len(via) >= 5 {
		return errors.New("too many redirects")
	}
	return nil
}

// Fetch downloads one remote document. The body is taken as UTF-8 text.
func (f *Fetcher) Fetch(ctx context.Context, rd config.RemoteDocument) (docsite.Document, error) {
	if err := validateURL(rd.URL); err != nil {
		return docsite.Document{}, fmt.Errorf("%w: %s: %v", ErrFetch, rd.DocumentName, err)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := time.Now()
	body, err := f.get(ctx, rd.URL)
	if err != nil {
		return docsite.Document{}, fmt.Errorf("%w: %s: %v", ErrFetch, rd.DocumentName, err)
	}

	f.logger.Debug("fetched remote document",
		logfields.Doc(rd.DocumentName),
		logfields.URL(rd.URL),
		logfields.Duration(time.Since(start)))

	return docsite.Document{
		Markdown:     string(body),
		DocumentName: rd.DocumentName,
		RepoFilePath: rd.RepoFilePath,
		Repo:         rd.Repo,
		URL:          rd.URL,
	}, nil
}

// FetchAll downloads every document concurrently. The first failure cancels
// the remaining downloads and is returned. Results keep the input order.
func (f *Fetcher) FetchAll(ctx context.Context, remotes []config.RemoteDocument) ([]docsite.Document, error) {
	docs := make([]docsite.Document, len(remotes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for i, rd := range remotes {
		g.Go(func() error {
			doc, err := f.Fetch(gctx, rd)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(data) > MaxDocumentBytes {
		return nil, errors.New("response too large")
	}
	return data, nil
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %q", parsed.Scheme)
	}
	return nil
}
