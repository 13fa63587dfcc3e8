package main

import (
	"context"
	"fmt"

	"github.com/alnah/docsite/internal/config"
	"github.com/alnah/docsite/internal/site"
	"github.com/alnah/docsite/internal/source"
)

// runServe serves pages on demand until ctx is canceled.
// One Site lives for the whole process; watched changes reload it.
func runServe(ctx context.Context, args []string, env *Environment) (err error) {
	var cfg *config.Config
	defer func() { err = withHint(err, cfg) }()

	flags, positional, err := parseServeFlags(args)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, positional[0])
	}

	cfg, logger, err := loadConfig(&flags.common, env, func(c *config.Config) {
		if flags.addr != "" {
			c.Serve.Addr = flags.addr
		}
		if flags.noWatch {
			c.Serve.Watch = false
		}
	})
	if err != nil {
		return err
	}

	s, err := newSite(cfg, logger, env)
	if err != nil {
		return err
	}
	if err := s.Load(ctx); err != nil {
		return err
	}

	if cfg.Serve.Watch && len(cfg.Paths.Docs) > 0 {
		w, err := source.NewWatcher(cfg.Paths.Docs, s.Load, source.WithWatchLogger(logger))
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			_ = w.Stop()
			return err
		}
		defer func() { _ = w.Stop() }()
	}

	buildID := site.NewBuildID()
	return site.ListenAndServe(ctx, cfg.Serve.Addr, s.Handler(buildID), logger, func(addr string) {
		if !flags.common.quiet {
			fmt.Fprintf(env.Stdout, "Serving %s at http://%s%s\n", cfg.Site.Title, addr, cfg.Site.DocsRoute)
		}
	})
}
