package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/alnah/docsite/internal/config"
	"github.com/alnah/docsite/internal/hints"
	"github.com/alnah/docsite/internal/site"
)

// shortHashLen is the commit hash prefix shown to users.
const shortHashLen = 7

// runPublish builds the site (unless --no-build) and pushes the build
// directory to the hosting branch.
func runPublish(ctx context.Context, args []string, env *Environment) (err error) {
	var cfg *config.Config
	defer func() { err = withHint(err, cfg) }()

	flags, positional, err := parsePublishFlags(args)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: publish takes no arguments, got %q", ErrUsage, positional[0])
	}

	cfg, logger, err := loadConfig(&flags.common, env, func(c *config.Config) {
		mergePublishFlags(flags, c)
	})
	if err != nil {
		return err
	}

	if !flags.noBuild {
		report, err := buildSite(ctx, cfg, logger, env)
		if report != nil {
			printReport(report, flags.common, env.Stdout, env.Stderr)
		}
		if err != nil {
			return err
		}
	}

	res, err := site.Publish(ctx, site.PublishOptions{
		Dir:         cfg.Paths.Output,
		Remote:      cfg.Publish.Remote,
		Branch:      cfg.Publish.Branch,
		CNAME:       cfg.Publish.CNAME,
		Message:     cfg.Publish.Message,
		AuthorName:  cfg.Publish.AuthorName,
		AuthorEmail: cfg.Publish.AuthorEmail,
		Token:       env.Getenv(hints.TokenEnv),
		Logger:      logger,
		Now:         env.Now,
	})
	if errors.Is(err, site.ErrNothingToPublish) {
		if !flags.common.quiet {
			fmt.Fprintf(env.Stdout, "Nothing to publish: %s is up to date\n", cfg.Publish.Branch)
		}
		return nil
	}
	if err != nil {
		return err
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Published %s to %s/%s\n", shortHash(res.Commit), res.Remote, res.Branch)
	}
	return nil
}

// mergePublishFlags applies publish flags over config (CLI wins).
func mergePublishFlags(flags *publishFlags, cfg *config.Config) {
	if flags.dir != "" {
		cfg.Paths.Output = flags.dir
	}
	if flags.remote != "" {
		cfg.Publish.Remote = flags.remote
	}
	if flags.branch != "" {
		cfg.Publish.Branch = flags.branch
	}
	if flags.cname != "" {
		cfg.Publish.CNAME = flags.cname
	}
	if flags.message != "" {
		cfg.Publish.Message = flags.message
	}
	if flags.workers != 0 {
		cfg.Workers = flags.workers
	}
}

func shortHash(h string) string {
	if len(h) > shortHashLen {
		return h[:shortHashLen]
	}
	return h
}
