package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alnah/docsite"
	"github.com/alnah/docsite/internal/assets"
	"github.com/alnah/docsite/internal/config"
	"github.com/alnah/docsite/internal/hints"
	"github.com/alnah/docsite/internal/site"
	"github.com/alnah/docsite/internal/source"
)

// withHint appends the actionable hint matching err, if any.
// cfg may be nil when the config itself failed to load.
func withHint(err error, cfg *config.Config) error {
	if err == nil {
		return nil
	}
	if h := hintFor(err, cfg); h != "" {
		return fmt.Errorf("%w%s", err, h)
	}
	return err
}

func hintFor(err error, cfg *config.Config) string {
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(defaultConfigName))
	case errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.StyleNames())
	case errors.Is(err, assets.ErrTemplateSetNotFound):
		return hints.ForStyleNotFound(assets.TemplateSetNames())
	case errors.Is(err, source.ErrFetch):
		timeout := ""
		if cfg != nil {
			timeout = cfg.Remote.Timeout
		}
		return hints.ForFetch(timeout)
	case errors.Is(err, site.ErrPublish):
		return hints.ForPublish()
	case errors.Is(err, docsite.ErrUnresolvableImage):
		return hints.ForUnresolvableImage()
	case errors.Is(err, os.ErrPermission):
		return hints.ForOutputDirectory()
	}
	return ""
}
