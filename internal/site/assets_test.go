package site

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := Fingerprint([]byte("a"))
	if len(a) != 2*fingerprintBytes {
		t.Errorf("Fingerprint() length = %d, want %d", len(a), 2*fingerprintBytes)
	}
	if a != Fingerprint([]byte("a")) {
		t.Error("Fingerprint() not deterministic")
	}
	if a == Fingerprint([]byte("b")) {
		t.Error("Fingerprint() collides for different content")
	}
}

// ---------------------------------------------------------------------------
// TestAssetTable_URL - Public asset URLs
// ---------------------------------------------------------------------------

func TestAssetTable_URL(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logo := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(logo, pngBytes, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "local file fingerprinted", src: logo, want: StaticRoute + Fingerprint(pngBytes) + "-logo.png"},
		{name: "remote URL unchanged", src: "https://example.com/a.png", want: "https://example.com/a.png"},
		{name: "data URI unchanged", src: "data:image/png;base64,AAAA", want: "data:image/png;base64,AAAA"},
		{name: "missing file unchanged", src: filepath.Join(dir, "missing.png"), want: filepath.Join(dir, "missing.png")},
	}

	table := NewAssetTable(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.URL(tt.src)
			if err != nil {
				t.Fatalf("URL(%q) error: %v", tt.src, err)
			}
			if got != tt.want {
				t.Errorf("URL(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}

	if names := table.Names(); len(names) != 1 {
		t.Errorf("Names() = %v, want one registered asset", names)
	}
	if src, ok := table.Lookup(Fingerprint(pngBytes) + "-logo.png"); !ok || src != logo {
		t.Errorf("Lookup() = %q, %v", src, ok)
	}
}

func TestAssetTable_PublicURLs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	artifact := filepath.Join(dir, "external-component-color-picker-00.html")
	if err := os.WriteFile(artifact, []byte("<external-component/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	logo := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(logo, pngBytes, 0o644); err != nil {
		t.Fatal(err)
	}

	table := NewAssetTable(nil)
	got := table.PublicURLs([]string{
		artifact,
		"memory:external-component-x-01.html",
		"",
		logo,
		"https://cdn.example.com/a.png",
	})

	want := []string{StaticRoute + Fingerprint(pngBytes) + "-logo.png", "https://cdn.example.com/a.png"}
	if !slices.Equal(got, want) {
		t.Fatalf("PublicURLs() = %v, want %v", got, want)
	}
	for _, name := range table.Names() {
		if strings.HasPrefix(name, "external-component") || strings.Contains(name, "-external-component-") {
			t.Errorf("component artifact registered as asset: %q", name)
		}
	}
}

func TestAssetTable_MissingImageLogged(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	table := NewAssetTable(slog.New(slog.NewTextHandler(&logs, nil)))
	missing := filepath.Join(t.TempDir(), "typo.png")

	for range 2 {
		got, err := table.URL(missing)
		if err != nil {
			t.Fatalf("URL() error: %v", err)
		}
		if got != missing {
			t.Errorf("URL() = %q, want src unchanged", got)
		}
	}

	if n := strings.Count(logs.String(), "image not found"); n != 1 {
		t.Errorf("warnings = %d, want 1:\n%s", n, logs.String())
	}
	if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "typo.png") {
		t.Errorf("log = %s", logs.String())
	}
	if _, err := table.URL("https://example.com/a.png"); err != nil || strings.Count(logs.String(), "image not found") != 1 {
		t.Errorf("remote URL should not be reported: %s", logs.String())
	}
}

func TestAssetTable_CopyTo(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logo := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(logo, pngBytes, 0o644); err != nil {
		t.Fatal(err)
	}

	table := NewAssetTable(nil)
	url, err := table.URL(logo)
	if err != nil {
		t.Fatal(err)
	}

	out := t.TempDir()
	n, err := table.CopyTo(out)
	if err != nil {
		t.Fatalf("CopyTo() error: %v", err)
	}
	if n != 1 {
		t.Errorf("CopyTo() = %d, want 1", n)
	}

	got, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(url)))
	if err != nil {
		t.Fatalf("copied asset missing: %v", err)
	}
	if !slices.Equal(got, pngBytes) {
		t.Errorf("copied content = %q", got)
	}
}

func TestAssetTable_CopyTo_SourceRemoved(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logo := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(logo, pngBytes, 0o644); err != nil {
		t.Fatal(err)
	}

	table := NewAssetTable(nil)
	if _, err := table.URL(logo); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(logo); err != nil {
		t.Fatal(err)
	}

	if _, err := table.CopyTo(t.TempDir()); !errors.Is(err, ErrAsset) {
		t.Errorf("CopyTo() error = %v, want ErrAsset", err)
	}
}
