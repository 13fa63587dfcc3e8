package site

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alnah/docsite/internal/config"
)

// pngBytes is a minimal file standing in for an image dependency.
var pngBytes = []byte("\x89PNG\r\n\x1a\nlogo")

var testClock = func() time.Time {
	return time.Date(2017, time.March, 9, 0, 0, 0, 0, time.UTC)
}

func defaultTestDocs() map[string]string {
	return map[string]string{
		"intro.md": "# Introduction\n\n![logo](./logo.png)\n\nSee [setup](./setup.md).\n\n## Install\n",
		"setup.md": "# Setup\n\n```js{1}\nvar a = 1;\n```\n",
	}
}

// newTestSite creates a loaded Site over a temporary docs directory.
func newTestSite(t *testing.T, docs map[string]string) (*Site, *config.Config) {
	t.Helper()

	root := t.TempDir()
	docsDir := filepath.Join(root, "docs")
	if err := os.MkdirAll(docsDir, 0o750); err != nil {
		t.Fatal(err)
	}
	for name, content := range docs {
		if err := os.WriteFile(filepath.Join(docsDir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(docsDir, "logo.png"), pngBytes, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Site.Title = "Trooba"
	cfg.Site.BaseDir = root
	cfg.Site.Date = "auto:long"
	cfg.Paths.Docs = []string{docsDir}
	cfg.Paths.Generated = filepath.Join(root, "generated")
	cfg.Paths.Output = filepath.Join(root, "dist")
	cfg.Structure = []config.Section{
		{Title: "Getting Started", Docs: []config.Entry{{Name: "intro"}, {Name: "setup"}}},
	}
	cfg.Contributors = map[string][]string{"intro": {"dimichgh"}}

	s, err := New(cfg, WithClock(testClock))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return s, cfg
}
