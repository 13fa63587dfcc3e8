package components

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Sentinel errors for component storage.
var (
	ErrArtifactNotFound = errors.New("component artifact not found")
	ErrStoreWrite       = errors.New("failed to write component artifact")
	ErrInvalidStoreDir  = errors.New("invalid component directory")
)

// Store is a content-addressed store for generated component artifacts.
// Artifacts are keyed by the hash of their defining invocation.
type Store interface {
	// Has reports whether an artifact exists for hash.
	Has(hash string) bool

	// Put writes the artifact named name for hash. Writing the same hash
	// twice writes the same bytes to the same location.
	Put(hash, name, content string) error

	// Get returns the artifact content for hash.
	// Returns ErrArtifactNotFound if no artifact exists.
	Get(hash string) (string, error)

	// PathFor returns the location of the artifact for hash, or "" if
	// the hash is unknown.
	PathFor(hash string) string
}

// MemoryStore keeps artifacts in memory.
type MemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]memoryArtifact
}

type memoryArtifact struct {
	name    string
	content string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{artifacts: make(map[string]memoryArtifact)}
}

// Has implements Store.
func (s *MemoryStore) Has(hash string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.artifacts[hash]
	return ok
}

// Put implements Store.
func (s *MemoryStore) Put(hash, name, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[hash] = memoryArtifact{name: name, content: content}
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(hash string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.artifacts[hash]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrArtifactNotFound, hash)
	}
	return a.content, nil
}

// PathFor implements Store. Memory artifacts are addressed by a virtual
// "memory:" path.
func (s *MemoryStore) PathFor(hash string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.artifacts[hash]
	if !ok {
		return ""
	}
	return "memory:" + a.name + ArtifactExt
}

// Len returns the number of stored artifacts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.artifacts)
}

// ArtifactExt is the file extension of generated component artifacts.
const ArtifactExt = ".html"

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// FSStore keeps artifacts as files in a directory, one file per hash:
//
//	{dir}/
//	└── external-component-{tag}-{hash}.html
//
// Files are never deleted by the store. Artifacts written by an earlier
// process are found by listing the directory once per unknown hash.
type FSStore struct {
	dir   string
	mu    sync.Mutex
	names map[string]string // hash -> artifact file name
}

// NewFSStore creates an FSStore rooted at dir. The directory is created on
// first write.
func NewFSStore(dir string) (*FSStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidStoreDir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStoreDir, err)
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidStoreDir, abs)
	}
	return &FSStore{dir: abs, names: make(map[string]string)}, nil
}

// Dir returns the artifact directory.
func (s *FSStore) Dir() string {
	return s.dir
}

// Has implements Store.
func (s *FSStore) Has(hash string) bool {
	return s.PathFor(hash) != ""
}

// Put implements Store.
func (s *FSStore) Put(hash, name, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, dirPermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	file := name + ArtifactExt
	if err := os.WriteFile(filepath.Join(s.dir, file), []byte(content), filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	s.names[hash] = file
	return nil
}

// Get implements Store.
func (s *FSStore) Get(hash string) (string, error) {
	path := s.PathFor(hash)
	if path == "" {
		return "", fmt.Errorf("%w: %s", ErrArtifactNotFound, hash)
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path built from store directory and hash
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrArtifactNotFound, err)
	}
	return string(data), nil
}

// PathFor implements Store.
func (s *FSStore) PathFor(hash string) string {
	if !isHash(hash) {
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if file, ok := s.names[hash]; ok {
		return filepath.Join(s.dir, file)
	}
	file := s.scan(hash)
	if file == "" {
		return ""
	}
	s.names[hash] = file
	return filepath.Join(s.dir, file)
}

// scan looks for an existing artifact file for hash. The directory name is
// never interpreted as a pattern.
func (s *FSStore) scan(hash string) string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return ""
	}
	suffix := "-" + hash + ArtifactExt
	for _, e := range entries {
		name := e.Name()
		if e.Type().IsRegular() && strings.HasPrefix(name, ArtifactPrefix) && strings.HasSuffix(name, suffix) {
			return name
		}
	}
	return ""
}

// Compile-time interface checks.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FSStore)(nil)
)
