package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alnah/docsite/internal/config"
	"github.com/alnah/docsite/internal/site"
)

// runBuild renders the whole site into the output directory.
func runBuild(ctx context.Context, args []string, env *Environment) (err error) {
	var cfg *config.Config
	defer func() { err = withHint(err, cfg) }()

	flags, positional, err := parseBuildFlags(args)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: build takes no arguments, got %q", ErrUsage, positional[0])
	}

	cfg, logger, err := loadConfig(&flags.common, env, func(c *config.Config) {
		if flags.output != "" {
			c.Paths.Output = flags.output
		}
		if flags.workers != 0 {
			c.Workers = flags.workers
		}
	})
	if err != nil {
		return err
	}

	report, err := buildSite(ctx, cfg, logger, env)
	if report != nil {
		printReport(report, flags.common, env.Stdout, env.Stderr)
	}
	return err
}

// newSite creates the site for one command invocation, so generated
// components are scoped to that invocation.
func newSite(cfg *config.Config, logger *slog.Logger, env *Environment) (*site.Site, error) {
	return site.New(cfg, site.WithLogger(logger), site.WithClock(env.Now))
}

// buildSite loads every document and builds into cfg.Paths.Output.
func buildSite(ctx context.Context, cfg *config.Config, logger *slog.Logger, env *Environment) (*site.BuildReport, error) {
	s, err := newSite(cfg, logger, env)
	if err != nil {
		return nil, err
	}
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s.Build(ctx, cfg.Paths.Output, cfg.Workers)
}

// printReport outputs page results: failures always, per-page lines
// when verbose, and a summary unless quiet.
func printReport(r *site.BuildReport, flags commonFlags, stdout, stderr io.Writer) {
	built := 0
	for _, p := range r.Pages {
		if p.Err != nil {
			fmt.Fprintf(stderr, "FAILED %s: %v\n", p.Name, p.Err)
			continue
		}
		built++

		if flags.verbose && !flags.quiet {
			fmt.Fprintf(stdout, "%s -> %s (%v)\n", p.Name, p.OutputPath, p.Duration.Round(time.Millisecond))
		}
	}

	if !flags.quiet {
		fmt.Fprintf(stdout, "Built %d pages, %d assets into %s (%v)\n",
			built, r.Assets, r.OutDir, r.Duration.Round(time.Millisecond))
	}
}
