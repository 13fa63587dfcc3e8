package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/alnah/docsite/internal/logfields"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Handler serves rendered pages, the style sheet and fingerprinted assets.
// Pages are rendered on every request from the current registry, so a
// reload through Load is visible immediately.
func (s *Site) Handler(buildID string) http.Handler {
	route := s.cfg.Site.DocsRoute
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+route+"{name}/{$}", func(w http.ResponseWriter, r *http.Request) {
		s.servePage(w, r, r.PathValue("name"), buildID)
	})
	mux.HandleFunc("GET "+route+"{name}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, route+r.PathValue("name")+"/", http.StatusMovedPermanently)
	})
	mux.HandleFunc("GET "+StaticRoute+StyleFile, s.serveStyle)
	mux.HandleFunc("GET "+StaticRoute+"{file}", s.serveAsset)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		reg := s.registry.Load()
		if reg == nil || reg.Len() == 0 {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, route+reg.Names()[0]+"/", http.StatusFound)
	})

	return mux
}

func (s *Site) servePage(w http.ResponseWriter, r *http.Request, name, buildID string) {
	start := time.Now()
	page, err := s.RenderPage(r.Context(), name, buildID)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("rendering page", logfields.Doc(name), logfields.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(page.HTML); err != nil {
		s.logger.Debug("writing response", logfields.Doc(name), logfields.Error(err))
		return
	}
	s.logger.Debug("served page", logfields.Doc(name), logfields.Duration(time.Since(start)))
}

func (s *Site) serveStyle(w http.ResponseWriter, _ *http.Request) {
	css, err := s.StyleSheet()
	if err != nil {
		s.logger.Error("building style sheet", logfields.Error(err))
		http.Error(w, "failed to build style sheet", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write(css)
}

func (s *Site) serveAsset(w http.ResponseWriter, r *http.Request) {
	src, ok := s.assets.Lookup(r.PathValue("file"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeFile(w, r, src)
}

// ListenAndServe serves h on addr until ctx is done, then shuts down
// gracefully. ready, when not nil, receives the bound address.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *slog.Logger, ready func(addr string)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	bound := ln.Addr().String()
	logger.Info("serving docs", slog.String("addr", bound))
	if ready != nil {
		ready(bound)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
