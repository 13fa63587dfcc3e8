package assets

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxAssetNameLength bounds style and template set names.
const MaxAssetNameLength = 64

// ValidateAssetName checks that a style or template set name can be used
// as a single path element under the assets directory: non-empty, at most
// MaxAssetNameLength bytes, no separators, dots, spaces or control
// characters, and not starting with '-'.
func ValidateAssetName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	case len(name) > MaxAssetNameLength:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidAssetName, MaxAssetNameLength)
	case strings.HasPrefix(name, "-"):
		return fmt.Errorf("%w: %q starts with '-'", ErrInvalidAssetName, name)
	}
	if strings.ContainsFunc(name, invalidNameRune) {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

func invalidNameRune(r rune) bool {
	return r == '/' || r == '\\' || r == '.' || unicode.IsSpace(r) || unicode.IsControl(r)
}
