package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed styles/*
var styles embed.FS

//go:embed templates/*
var templates embed.FS

// EmbeddedLoader loads assets from embedded filesystem.
// Implements AssetLoader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle loads a CSS style from embedded assets by name.
// The name should not include the .css extension.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}

	return string(content), nil
}

// LoadTemplateSet loads a template set from embedded assets by name.
func (e *EmbeddedLoader) LoadTemplateSet(name string) (*TemplateSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	dir := "templates/" + name + "/"
	page, pageErr := templates.ReadFile(dir + pageFile)
	overview, overviewErr := templates.ReadFile(dir + overviewFile)

	return buildTemplateSet(name, page, pageErr, overview, overviewErr, func(err error) bool {
		return errors.Is(err, fs.ErrNotExist)
	})
}

// buildTemplateSet classifies the outcome of reading both files of a set.
func buildTemplateSet(name string, page []byte, pageErr error, overview []byte, overviewErr error,
	notExist func(error) bool,
) (*TemplateSet, error) {
	// If both files are missing, the template set doesn't exist
	if notExist(pageErr) && notExist(overviewErr) {
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	}

	if pageErr != nil && !notExist(pageErr) {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrAssetRead, pageFile, pageErr)
	}
	if overviewErr != nil && !notExist(overviewErr) {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrAssetRead, overviewFile, overviewErr)
	}

	// If only one file is missing, the template set is incomplete
	if pageErr != nil {
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, pageFile)
	}
	if overviewErr != nil {
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, overviewFile)
	}

	return &TemplateSet{
		Name:     name,
		Page:     string(page),
		Overview: string(overview),
	}, nil
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)

// embeddedNames lists entries of dir in fsys. With ext set, only files
// with that extension are listed, trimmed; otherwise only directories.
func embeddedNames(fsys embed.FS, dir, ext string) []string {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		switch {
		case ext == "" && e.IsDir():
			names = append(names, e.Name())
		case ext != "" && !e.IsDir() && strings.HasSuffix(e.Name(), ext):
			names = append(names, strings.TrimSuffix(e.Name(), ext))
		}
	}
	sort.Strings(names)
	return names
}
