package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testEnv is an Environment with captured output and a fixed clock.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv(vars map[string]string) *testEnv {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	environ := make([]string, 0, len(vars))
	for k, v := range vars {
		environ = append(environ, k+"="+v)
	}
	return &testEnv{
		Environment: &Environment{
			Now:     func() time.Time { return time.Date(2017, 3, 9, 12, 0, 0, 0, time.UTC) },
			Stdout:  stdout,
			Stderr:  stderr,
			Getenv:  func(k string) string { return vars[k] },
			Environ: func() []string { return environ },
		},
		stdout: stdout,
		stderr: stderr,
	}
}

// writeTestSite creates docs and a config using absolute paths, so tests
// need no working directory change. It returns the root and config path.
func writeTestSite(t *testing.T, extra string) (root, configPath string) {
	t.Helper()
	root = t.TempDir()
	docs := filepath.Join(root, "docs")
	if err := os.MkdirAll(docs, 0o750); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"installation.md": "# Installation\n\nSee [usage](./usage.md).\n\n## Requirements\n",
		"usage.md":        "# Usage\n\n```js\nconsole.log('hi');\n```\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(docs, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	slash := func(p string) string { return filepath.ToSlash(filepath.Join(root, p)) }
	cfg := strings.Join([]string{
		"site:",
		"  title: Trooba",
		"  date: auto:iso",
		"paths:",
		"  docs: [" + slash("docs") + "]",
		"  generated: " + slash("generated"),
		"  output: " + slash("dist"),
		"structure:",
		"  - title: Getting Started",
		"    docs: [installation, usage]",
		"contributors:",
		"  installation: [dimichgh]",
		"serve:",
		"  addr: 127.0.0.1:0",
		extra,
	}, "\n")

	configPath = filepath.Join(root, "site.yaml")
	if err := os.WriteFile(configPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return root, configPath
}
