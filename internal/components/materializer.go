// Package components generates wrapper artifacts for components invoked
// inline from Markdown.
//
// An invocation such as
//
//	<color-picker colors=['#333745','#E63462']/>
//
// becomes an artifact named external-component-color-picker-<hash>, where
// <hash> is derived from the exact invocation text. Identical invocations
// always map to the same artifact, so repeated renders never write
// duplicate files.
package components

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/alnah/docsite/internal/logfields"
)

// ArtifactPrefix starts every generated artifact name.
const ArtifactPrefix = "external-component-"

// hashLen is the length of the hex encoded invocation hash.
const hashLen = 32

// defaultTagName names artifacts whose invocation has no usable tag.
const defaultTagName = "component"

// Invalidator drops cached template discovery state so newly generated
// artifacts become visible.
type Invalidator interface {
	ClearCaches()
}

// Materializer turns inline component invocations into references to
// generated artifacts.
type Materializer struct {
	store       Store
	invalidator Invalidator
	logger      *slog.Logger

	mu     sync.Mutex
	hashes map[string]string // invocation text -> hash
}

// NewMaterializer creates a Materializer writing to store.
// invalidator and logger may be nil.
func NewMaterializer(store Store, invalidator Invalidator, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = logfields.Discard()
	}
	return &Materializer{
		store:       store,
		invalidator: invalidator,
		logger:      logger,
		hashes:      make(map[string]string),
	}
}

// Materialize returns the self-closing reference tag for invocation,
// writing its wrapper artifact the first time the invocation is seen.
// Store write failures are returned as is; nothing is retried.
func (m *Materializer) Materialize(invocation string) (string, error) {
	tag := TagName(invocation)

	m.mu.Lock()
	defer m.mu.Unlock()

	if hash, ok := m.hashes[invocation]; ok {
		return reference(ArtifactName(tag, hash)), nil
	}

	hash := Hash(invocation)
	name := ArtifactName(tag, hash)

	if !m.store.Has(hash) {
		if err := m.store.Put(hash, name, wrap(invocation)); err != nil {
			return "", err
		}
		if m.invalidator != nil {
			m.invalidator.ClearCaches()
		}
		m.logger.Debug("generated component", logfields.Component(name), logfields.Path(m.store.PathFor(hash)))
	}

	m.hashes[invocation] = hash
	return reference(name), nil
}

// Resolve returns the artifact content referenced by an artifact name.
// The boolean is false when name is not a generated artifact name.
func (m *Materializer) Resolve(name string) (string, bool, error) {
	_, hash, ok := ParseArtifactName(name)
	if !ok {
		return "", false, nil
	}
	content, err := m.store.Get(hash)
	if err != nil {
		return "", true, err
	}
	return content, true, nil
}

// PathFor returns the artifact location for an artifact name, or "".
func (m *Materializer) PathFor(name string) string {
	_, hash, ok := ParseArtifactName(name)
	if !ok {
		return ""
	}
	return m.store.PathFor(hash)
}

// Len returns the number of distinct invocations seen.
func (m *Materializer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hashes)
}

// Hash returns the content hash of the exact invocation text: the first
// 16 bytes of its BLAKE3 digest, hex encoded.
func Hash(invocation string) string {
	sum := blake3.Sum256([]byte(invocation))
	return hex.EncodeToString(sum[:hashLen/2])
}

// TagName extracts the element name of an invocation: the text after the
// leading '<' up to the first space, or the first '/' when there is no space.
func TagName(invocation string) string {
	s := strings.TrimPrefix(strings.TrimSpace(invocation), "<")

	end := strings.IndexByte(s, ' ')
	if end == -1 {
		end = strings.IndexByte(s, '/')
	}
	if end == -1 {
		end = strings.IndexByte(s, '>')
	}
	if end != -1 {
		s = s[:end]
	}

	// Keep the name usable as a file name and element name
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return -1
	}, s)
	if s == "" {
		return defaultTagName
	}
	return s
}

// ArtifactName returns the deterministic artifact name for tag and hash.
func ArtifactName(tag, hash string) string {
	return fmt.Sprintf("%s%s-%s", ArtifactPrefix, tag, hash)
}

// ParseArtifactName splits an artifact name into tag and hash.
func ParseArtifactName(name string) (tag, hash string, ok bool) {
	rest, found := strings.CutPrefix(name, ArtifactPrefix)
	if !found {
		return "", "", false
	}
	idx := strings.LastIndexByte(rest, '-')
	if idx <= 0 {
		return "", "", false
	}
	tag, hash = rest[:idx], rest[idx+1:]
	if !isHash(hash) {
		return "", "", false
	}
	return tag, hash, true
}

func isHash(s string) bool {
	if len(s) != hashLen {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// wrap builds the artifact content embedding the original invocation.
func wrap(invocation string) string {
	return "<external-component>" + invocation + "</external-component>"
}

func reference(name string) string {
	return "<" + name + "/>"
}
