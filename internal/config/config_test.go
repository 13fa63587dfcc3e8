package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/docsite/internal/dateutil"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Site.DocsRoute != "/docs/" {
		t.Errorf("Site.DocsRoute = %q, want /docs/", cfg.Site.DocsRoute)
	}
	if len(cfg.Paths.Docs) != 1 || cfg.Paths.Docs[0] != "docs" {
		t.Errorf("Paths.Docs = %v, want [docs]", cfg.Paths.Docs)
	}
	if cfg.Paths.Generated != "components-generated" {
		t.Errorf("Paths.Generated = %q", cfg.Paths.Generated)
	}
	if cfg.Remote.DefaultRepo != "trooba/trooba" {
		t.Errorf("Remote.DefaultRepo = %q", cfg.Remote.DefaultRepo)
	}
	if cfg.Publish.Branch != "gh-pages" {
		t.Errorf("Publish.Branch = %q", cfg.Publish.Branch)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestValidateFieldLength(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		maxLength int
		wantErr   bool
	}{
		{"empty value is valid", "", 10, false},
		{"value at limit is valid", "1234567890", 10, false},
		{"value over limit returns error", "12345678901", 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFieldLength("test.field", tt.value, tt.maxLength)
			if tt.wantErr {
				if !errors.Is(err, ErrFieldTooLong) {
					t.Errorf("error = %v, want ErrFieldTooLong", err)
				}
				if err != nil && !strings.Contains(err.Error(), "test.field") {
					t.Errorf("error should name the field: %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"defaults", func(*Config) {}, nil},
		{"long title", func(c *Config) { c.Site.Title = strings.Repeat("x", MaxTitleLength+1) }, ErrFieldTooLong},
		{"domain with scheme", func(c *Config) { c.Site.Domain = "https://trooba.github.io" }, ErrInvalidField},
		{"route without slashes", func(c *Config) { c.Site.DocsRoute = "docs" }, ErrInvalidField},
		{"auto date", func(c *Config) { c.Site.Date = "auto:long" }, nil},
		{"bad auto date", func(c *Config) { c.Site.Date = "autox" }, dateutil.ErrInvalidDateFormat},
		{"unclosed date bracket", func(c *Config) { c.Site.Date = "auto:[YYYY" }, dateutil.ErrInvalidDateFormat},
		{"empty docs dir", func(c *Config) { c.Paths.Docs = []string{""} }, ErrInvalidField},
		{"bad default repo", func(c *Config) { c.Remote.DefaultRepo = "trooba" }, ErrInvalidField},
		{"bad timeout", func(c *Config) { c.Remote.Timeout = "soon" }, ErrInvalidField},
		{"remote document without url", func(c *Config) {
			c.Remote.Documents = []RemoteDocument{{DocumentName: "a.md"}}
		}, ErrInvalidField},
		{"remote document without .md", func(c *Config) {
			c.Remote.Documents = []RemoteDocument{{URL: "https://x/a", DocumentName: "a"}}
		}, ErrInvalidField},
		{"duplicate remote document", func(c *Config) {
			c.Remote.Documents = []RemoteDocument{
				{URL: "https://x/a", DocumentName: "a.md"},
				{URL: "https://x/b", DocumentName: "a.md"},
			}
		}, ErrInvalidField},
		{"section without title", func(c *Config) {
			c.Structure = []Section{{Docs: []Entry{{Name: "a"}}}}
		}, ErrInvalidField},
		{"empty entry", func(c *Config) {
			c.Structure = []Section{{Title: "A", Docs: []Entry{{}}}}
		}, ErrInvalidField},
		{"invalid doc link pattern", func(c *Config) { c.Patterns.DocLink = "([" }, ErrInvalidField},
		{"invocation pattern without group", func(c *Config) { c.Patterns.Invocation = "<!-- .* -->" }, ErrInvalidField},
		{"branch with space", func(c *Config) { c.Publish.Branch = "gh pages" }, ErrInvalidField},
		{"bad author email", func(c *Config) { c.Publish.AuthorEmail = "nobody" }, ErrInvalidField},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, ErrInvalidField},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, ErrInvalidField},
		{"negative workers", func(c *Config) { c.Workers = -1 }, ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_NestingDepth(t *testing.T) {
	leaf := &Section{Title: "leaf", Docs: []Entry{{Name: "doc"}}}
	for range MaxNestingDepth {
		leaf = &Section{Title: "level", Docs: []Entry{{Section: leaf}}}
	}

	cfg := DefaultConfig()
	cfg.Structure = []Section{*leaf}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidField) {
		t.Errorf("error = %v, want ErrInvalidField", err)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("full file", func(t *testing.T) {
		path := writeConfig(t, `
site:
  title: Trooba
  domain: trooba.github.io
  date: auto
paths:
  docs: [node_modules/trooba/docs, node_modules/trooba-book/book]
  output: public
remote:
  timeout: 5s
  documents:
    - url: https://raw.githubusercontent.com/trooba/trooba-http-transport/master/README.md
      documentName: trooba-http-transport.md
      repo: trooba/trooba-http-transport
      repoFilePath: README.md
structure:
  - title: Getting Started
    docs:
      - installation
      - title: Transports
        docs: [http, grpc]
contributors:
  installation: [dimichgh]
publish:
  cname: trooba.js.org
log:
  level: debug
  format: json
workers: 2
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error: %v", err)
		}

		if cfg.Site.Title != "Trooba" || cfg.Site.Domain != "trooba.github.io" {
			t.Errorf("Site = %+v", cfg.Site)
		}
		if cfg.Site.DocsRoute != DefaultDocsRoute {
			t.Errorf("absent field lost its default: DocsRoute = %q", cfg.Site.DocsRoute)
		}
		if len(cfg.Paths.Docs) != 2 || cfg.Paths.Output != "public" || cfg.Paths.Generated != DefaultGeneratedDir {
			t.Errorf("Paths = %+v", cfg.Paths)
		}
		if got := cfg.Remote.TimeoutDuration().Seconds(); got != 5 {
			t.Errorf("TimeoutDuration() = %vs, want 5s", got)
		}
		if len(cfg.Remote.Documents) != 1 || cfg.Remote.Documents[0].Repo != "trooba/trooba-http-transport" {
			t.Errorf("Remote.Documents = %+v", cfg.Remote.Documents)
		}

		if len(cfg.Structure) != 1 {
			t.Fatalf("Structure = %+v", cfg.Structure)
		}
		docs := cfg.Structure[0].Docs
		if len(docs) != 2 || docs[0].Name != "installation" || !docs[1].IsSection() {
			t.Fatalf("Structure[0].Docs = %+v", docs)
		}
		if nested := docs[1].Section; nested.Title != "Transports" || len(nested.Docs) != 2 || nested.Docs[1].Name != "grpc" {
			t.Errorf("nested section = %+v", nested)
		}

		if got := cfg.Contributors["installation"]; len(got) != 1 || got[0] != "dimichgh" {
			t.Errorf("Contributors = %v", cfg.Contributors)
		}
		if cfg.Publish.CNAME != "trooba.js.org" || cfg.Publish.Branch != DefaultPublishBranch {
			t.Errorf("Publish = %+v", cfg.Publish)
		}
		if cfg.Log.Level != "debug" || cfg.Log.Format != "json" || cfg.Workers != 2 {
			t.Errorf("Log = %+v, Workers = %d", cfg.Log, cfg.Workers)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		if _, err := LoadConfig(""); !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("missing file path", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := LoadConfig("no-such-config-xyz")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
		if err != nil && !strings.Contains(err.Error(), "no-such-config-xyz.yaml") {
			t.Errorf("error should list tried paths: %v", err)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		path := writeConfig(t, "site:\n  titel: typo\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid structure entry", func(t *testing.T) {
		path := writeConfig(t, "structure:\n  - title: A\n    docs:\n      - [1, 2]\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("validation applied", func(t *testing.T) {
		path := writeConfig(t, "log:\n  level: loud\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidField) {
			t.Errorf("error = %v, want ErrInvalidField", err)
		}
	})
}

func TestLoadConfig_ByName(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.WriteFile("mysite.yml", []byte("site:\n  title: Named\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig("mysite")
	if err != nil {
		t.Fatalf("LoadConfig(mysite) error: %v", err)
	}
	if cfg.Site.Title != "Named" {
		t.Errorf("Site.Title = %q, want Named", cfg.Site.Title)
	}
}

func TestSearchPaths(t *testing.T) {
	paths := SearchPaths("site")

	if len(paths) < 2 || paths[0] != "site.yaml" || paths[1] != "site.yml" {
		t.Fatalf("SearchPaths() = %v, want local paths first", paths)
	}
	for _, p := range paths[2:] {
		if filepath.Base(filepath.Dir(p)) != AppName {
			t.Errorf("user path %q not under %s/", p, AppName)
		}
	}
}
