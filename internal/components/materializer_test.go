package components

// Notes:
// - Materialize: idempotence is asserted through a counting store and a
//   counting invalidator, not by inspecting the map.
// - FSStore is exercised against t.TempDir(); write failures use a store
//   rooted below a regular file.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Counting fakes
// ---------------------------------------------------------------------------

type countingStore struct {
	*MemoryStore
	mu   sync.Mutex
	puts int
	err  error
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: NewMemoryStore()}
}

func (s *countingStore) Put(hash, name, content string) error {
	s.mu.Lock()
	s.puts++
	s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	return s.MemoryStore.Put(hash, name, content)
}

func (s *countingStore) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) ClearCaches() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
}

func (c *countingInvalidator) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

const colorPicker = `<color-picker colors=['#333745','#E63462','#FE5F55']/>`

// ---------------------------------------------------------------------------
// TestMaterialize - Reference markup and artifact content
// ---------------------------------------------------------------------------

func TestMaterialize(t *testing.T) {
	t.Parallel()

	store := newCountingStore()
	m := NewMaterializer(store, nil, nil)

	ref, err := m.Materialize(colorPicker)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hash := Hash(colorPicker)
	want := "<external-component-color-picker-" + hash + "/>"
	if ref != want {
		t.Errorf("Materialize() = %q, want %q", ref, want)
	}

	content, err := store.Get(hash)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if content != "<external-component>"+colorPicker+"</external-component>" {
		t.Errorf("artifact content = %q", content)
	}
}

// ---------------------------------------------------------------------------
// TestMaterialize_Idempotent - One write and one cache clear per invocation
// ---------------------------------------------------------------------------

func TestMaterialize_Idempotent(t *testing.T) {
	t.Parallel()

	store := newCountingStore()
	inv := &countingInvalidator{}
	m := NewMaterializer(store, inv, nil)

	first, err := m.Materialize(colorPicker)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := m.Materialize(colorPicker)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Errorf("references differ: %q vs %q", first, second)
	}
	if store.Puts() != 1 {
		t.Errorf("store writes = %d, want 1", store.Puts())
	}
	if inv.Calls() != 1 {
		t.Errorf("cache clears = %d, want 1", inv.Calls())
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestMaterialize_DistinctInvocations(t *testing.T) {
	t.Parallel()

	store := newCountingStore()
	inv := &countingInvalidator{}
	m := NewMaterializer(store, inv, nil)

	a, err := m.Materialize(`<my-button label="a"/>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := m.Materialize(`<my-button label="b"/>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a == b {
		t.Error("different invocations must not share an artifact")
	}
	if store.Len() != 2 || inv.Calls() != 2 {
		t.Errorf("artifacts = %d, clears = %d, want 2 and 2", store.Len(), inv.Calls())
	}
}

func TestMaterialize_ExistingArtifactNotRewritten(t *testing.T) {
	t.Parallel()

	store := newCountingStore()

	// A previous process already generated the artifact
	if _, err := NewMaterializer(store, nil, nil).Materialize(colorPicker); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inv := &countingInvalidator{}
	if _, err := NewMaterializer(store, inv, nil).Materialize(colorPicker); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Puts() != 1 {
		t.Errorf("store writes = %d, want 1", store.Puts())
	}
	if inv.Calls() != 0 {
		t.Errorf("cache clears = %d, want 0", inv.Calls())
	}
}

func TestMaterialize_WriteFailure(t *testing.T) {
	t.Parallel()

	store := newCountingStore()
	store.err = ErrStoreWrite
	inv := &countingInvalidator{}
	m := NewMaterializer(store, inv, nil)

	_, err := m.Materialize(colorPicker)
	if !errors.Is(err, ErrStoreWrite) {
		t.Fatalf("error = %v, want ErrStoreWrite", err)
	}
	if inv.Calls() != 0 {
		t.Errorf("cache clears = %d, want 0", inv.Calls())
	}
	if m.Len() != 0 {
		t.Errorf("failed invocation recorded: Len() = %d", m.Len())
	}

	// Not retried internally, but a later call tries again
	store.err = nil
	if _, err := m.Materialize(colorPicker); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Puts() != 2 {
		t.Errorf("store writes = %d, want 2", store.Puts())
	}
}

func TestMaterialize_Concurrent(t *testing.T) {
	t.Parallel()

	store := newCountingStore()
	m := NewMaterializer(store, &countingInvalidator{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Materialize(colorPicker); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if store.Puts() != 1 {
		t.Errorf("store writes = %d, want 1", store.Puts())
	}
}

// ---------------------------------------------------------------------------
// TestTagName - Invocation element name
// ---------------------------------------------------------------------------

func TestTagName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		invocation string
		want       string
	}{
		{"attributes", `<color-picker colors=['#333']/>`, "color-picker"},
		{"self closing", `<my-widget/>`, "my-widget"},
		{"open tag", `<my-widget>`, "my-widget"},
		{"uppercase", `<My-Widget/>`, "my-widget"},
		{"unsafe characters", `<a.b_c/>`, "abc"},
		{"empty", `</>`, "component"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TagName(tt.invocation); got != tt.want {
				t.Errorf("TagName(%q) = %q, want %q", tt.invocation, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestParseArtifactName - Name parsing
// ---------------------------------------------------------------------------

func TestParseArtifactName(t *testing.T) {
	t.Parallel()

	hash := Hash("x")
	tests := []struct {
		name     string
		input    string
		wantTag  string
		wantHash string
		wantOK   bool
	}{
		{"valid", ArtifactName("color-picker", hash), "color-picker", hash, true},
		{"wrong prefix", "component-x-" + hash, "", "", false},
		{"short hash", "external-component-x-abc", "", "", false},
		{"uppercase hash", "external-component-x-" + strings.ToUpper(hash), "", "", false},
		{"no tag", "external-component-" + hash, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tag, h, ok := ParseArtifactName(tt.input)
			if ok != tt.wantOK || tag != tt.wantTag || h != tt.wantHash {
				t.Errorf("ParseArtifactName(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.input, tag, h, ok, tt.wantTag, tt.wantHash, tt.wantOK)
			}
		})
	}
}

func TestHash(t *testing.T) {
	t.Parallel()

	a := Hash(colorPicker)
	if len(a) != 32 {
		t.Errorf("len(Hash()) = %d, want 32", len(a))
	}
	if a != Hash(colorPicker) {
		t.Error("Hash() is not deterministic")
	}
	if a == Hash(colorPicker+" ") {
		t.Error("Hash() ignores whitespace differences")
	}
}

// ---------------------------------------------------------------------------
// TestResolve - Lookup for the template compiler
// ---------------------------------------------------------------------------

func TestResolve(t *testing.T) {
	t.Parallel()

	m := NewMaterializer(NewMemoryStore(), nil, nil)
	ref, err := m.Materialize(colorPicker)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	name := strings.TrimSuffix(strings.TrimPrefix(ref, "<"), "/>")

	content, ok, err := m.Resolve(name)
	if err != nil || !ok {
		t.Fatalf("Resolve(%q) = (_, %v, %v)", name, ok, err)
	}
	if !strings.Contains(content, colorPicker) {
		t.Errorf("content = %q, want invocation", content)
	}
	if m.PathFor(name) == "" {
		t.Error("PathFor() returned empty path")
	}

	if _, ok, _ := m.Resolve("not-a-component"); ok {
		t.Error("Resolve() accepted a non-artifact name")
	}

	_, ok, err = m.Resolve(ArtifactName("missing", Hash("missing")))
	if !ok || !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("Resolve(missing) = (_, %v, %v), want ErrArtifactNotFound", ok, err)
	}
}

// ---------------------------------------------------------------------------
// TestFSStore - Filesystem backed store
// ---------------------------------------------------------------------------

func TestFSStore(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "components-generated")
	store, err := NewFSStore(dir)
	if err != nil {
		t.Fatalf("NewFSStore() error: %v", err)
	}

	hash := Hash(colorPicker)
	name := ArtifactName("color-picker", hash)

	if store.Has(hash) {
		t.Fatal("Has() = true before Put")
	}
	if err := store.Put(hash, name, "content"); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if !store.Has(hash) {
		t.Fatal("Has() = false after Put")
	}

	wantPath := filepath.Join(dir, name+ArtifactExt)
	if got := store.PathFor(hash); got != wantPath {
		t.Errorf("PathFor() = %q, want %q", got, wantPath)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil || string(data) != "content" {
		t.Errorf("file content = %q, %v", data, err)
	}
	got, err := store.Get(hash)
	if err != nil || got != "content" {
		t.Errorf("Get() = %q, %v", got, err)
	}

	if _, err := store.Get(Hash("other")); !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrArtifactNotFound", err)
	}
	if store.PathFor("not-a-hash") != "" {
		t.Error("PathFor() accepted an invalid hash")
	}
}

func TestFSStore_PatternCharactersInDir(t *testing.T) {
	t.Parallel()

	for _, sub := range []string{"gen[1]", "gen*", "gen?x"} {
		t.Run(sub, func(t *testing.T) {
			t.Parallel()

			store, err := NewFSStore(filepath.Join(t.TempDir(), sub))
			if err != nil {
				t.Fatalf("NewFSStore() error: %v", err)
			}

			m := NewMaterializer(store, nil, nil)
			ref, err := m.Materialize(colorPicker)
			if err != nil {
				t.Fatalf("Materialize() error: %v", err)
			}

			name := strings.TrimSuffix(strings.TrimPrefix(ref, "<"), "/>")
			content, ok, err := m.Resolve(name)
			if !ok || err != nil {
				t.Fatalf("Resolve(%q) = (_, %v, %v)", name, ok, err)
			}
			if content != "<external-component>"+colorPicker+"</external-component>" {
				t.Errorf("content = %q", content)
			}
		})
	}
}

func TestFSStore_FindsExistingArtifacts(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "gen[1]")
	first, err := NewFSStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	hash := Hash(colorPicker)
	name := ArtifactName("color-picker", hash)
	if err := first.Put(hash, name, "content"); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	// A store opened later over the same directory sees the artifact.
	second, err := NewFSStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Has(hash) {
		t.Fatal("Has() = false for an artifact written by another store")
	}
	if got := second.PathFor(hash); got != filepath.Join(dir, name+ArtifactExt) {
		t.Errorf("PathFor() = %q", got)
	}
	if second.Has(Hash("other")) {
		t.Error("Has() = true for an unknown hash")
	}
}

func TestFSStore_Errors(t *testing.T) {
	t.Parallel()

	t.Run("empty dir", func(t *testing.T) {
		t.Parallel()
		if _, err := NewFSStore(""); !errors.Is(err, ErrInvalidStoreDir) {
			t.Errorf("error = %v, want ErrInvalidStoreDir", err)
		}
	})

	t.Run("regular file", func(t *testing.T) {
		t.Parallel()

		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := NewFSStore(file); !errors.Is(err, ErrInvalidStoreDir) {
			t.Errorf("error = %v, want ErrInvalidStoreDir", err)
		}
	})

	t.Run("write below a file", func(t *testing.T) {
		t.Parallel()

		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
		store, err := NewFSStore(filepath.Join(file, "sub"))
		if err != nil {
			t.Fatalf("NewFSStore() error: %v", err)
		}

		m := NewMaterializer(store, nil, nil)
		if _, err := m.Materialize(colorPicker); !errors.Is(err, ErrStoreWrite) {
			t.Errorf("error = %v, want ErrStoreWrite", err)
		}
	})
}
