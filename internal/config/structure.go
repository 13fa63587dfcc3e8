package config

import (
	"fmt"
	"strings"

	"github.com/alnah/docsite/internal/yamlutil"
)

// Section is one titled group of the site structure. Its entries are
// document names or nested sections:
//
//	structure:
//	  - title: Getting Started
//	    docs:
//	      - installation
//	      - title: Advanced
//	        docs: [plugins, transports]
type Section struct {
	Title string  `yaml:"title"`
	Docs  []Entry `yaml:"docs"`
}

// Entry is a document name or a nested section; exactly one is set.
type Entry struct {
	Name    string
	Section *Section
}

// UnmarshalYAML accepts a scalar document name or a nested section mapping.
func (e *Entry) UnmarshalYAML(data []byte) error {
	var raw any
	if err := yamlutil.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		e.Name = v
		return nil
	case map[string]any:
		var s Section
		if err := yamlutil.UnmarshalStrict(data, &s); err != nil {
			return err
		}
		e.Section = &s
		return nil
	default:
		return fmt.Errorf("structure entry must be a document name or a section, got %T", raw)
	}
}

// MarshalYAML writes a document name as a scalar and a section as a mapping.
func (e Entry) MarshalYAML() (any, error) {
	if e.Section != nil {
		return e.Section, nil
	}
	return e.Name, nil
}

// IsSection reports whether the entry is a nested section.
func (e Entry) IsSection() bool {
	return e.Section != nil
}

func (s *Section) validate(field string, depth int) error {
	if depth > MaxNestingDepth {
		return fmt.Errorf("%w: %s: nesting deeper than %d", ErrInvalidField, field, MaxNestingDepth)
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: %s.title: required", ErrInvalidField, field)
	}
	if err := validateFieldLength(field+".title", s.Title, MaxTitleLength); err != nil {
		return err
	}
	for i, e := range s.Docs {
		entryField := fmt.Sprintf("%s.docs[%d]", field, i)
		if e.Section != nil {
			if err := e.Section.validate(entryField, depth+1); err != nil {
				return err
			}
			continue
		}
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("%w: %s: empty document name", ErrInvalidField, entryField)
		}
		if err := validateFieldLength(entryField, e.Name, MaxNameLength); err != nil {
			return err
		}
	}
	return nil
}
