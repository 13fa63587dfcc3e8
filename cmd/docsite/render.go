package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alnah/docsite"
	"github.com/alnah/docsite/internal/config"
	"github.com/alnah/docsite/internal/site"
)

// Sentinel errors for the render command.
var (
	ErrReadMarkdown     = errors.New("failed to read markdown file")
	ErrInvalidExtension = errors.New("file must have .md extension")
)

// runRender renders one Markdown file to stdout, as a fragment or a
// full page. The file is rendered as a local document, so relative
// links and images resolve against its directory.
func runRender(ctx context.Context, args []string, env *Environment) (err error) {
	var cfg *config.Config
	defer func() { err = withHint(err, cfg) }()

	flags, positional, err := parseRenderFlags(args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: render needs exactly one Markdown file", ErrUsage)
	}

	doc, err := readDocument(positional[0])
	if err != nil {
		return err
	}

	cfg, logger, err := loadConfig(&flags.common, env, nil)
	if err != nil {
		return err
	}

	s, err := newSite(cfg, logger, env)
	if err != nil {
		return err
	}

	if flags.page {
		page, err := s.RenderDocument(ctx, doc, site.NewBuildID())
		if err != nil {
			return err
		}
		return writeOutput(env.Stdout, page.HTML)
	}

	rendered, err := s.Renderer().Render(ctx, doc)
	if err != nil {
		return err
	}
	return writeOutput(env.Stdout, []byte(rendered.HTML))
}

// readDocument loads path as a local document.
func readDocument(path string) (docsite.Document, error) {
	if filepath.Ext(path) != ".md" {
		return docsite.Document{}, fmt.Errorf("%w: %s", ErrInvalidExtension, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return docsite.Document{}, fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}
	content, err := os.ReadFile(abs) // #nosec G304 -- user-provided input
	if err != nil {
		return docsite.Document{}, fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}
	return docsite.Document{
		Markdown:     string(content),
		DocumentName: filepath.Base(abs),
		FilePath:     abs,
	}, nil
}

func writeOutput(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, _ = io.WriteString(w, "\n")
	}
	return nil
}
