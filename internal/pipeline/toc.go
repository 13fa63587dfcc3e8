package pipeline

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Slug normalization patterns.
var (
	// Runs of spaces and hyphens collapse to a single hyphen
	slugSeparators = regexp.MustCompile(`[ \-]+`)

	// Anything else that is not an ASCII letter, digit or hyphen is dropped
	slugInvalidChars = regexp.MustCompile(`[^A-Za-z0-9\-]+`)
)

// Slug derives a lowercase, hyphen-delimited, URL-safe identifier from text.
func Slug(text string) string {
	s := slugSeparators.ReplaceAllString(text, "-")
	s = slugInvalidChars.ReplaceAllString(s, "")
	return strings.ToLower(s)
}

// AnchorCache disambiguates heading anchors within a single document.
// The first occurrence of a slug is returned unchanged; the N-th repeat
// gets a "_N" suffix.
type AnchorCache struct {
	seen map[string]int
}

// NewAnchorCache creates an empty AnchorCache.
func NewAnchorCache() *AnchorCache {
	return &AnchorCache{seen: make(map[string]int)}
}

// Anchor returns a unique anchor for text.
func (c *AnchorCache) Anchor(text string) string {
	slug := Slug(text)

	repeat, ok := c.seen[slug]
	if !ok {
		c.seen[slug] = 0
		return slug
	}

	repeat++
	c.seen[slug] = repeat
	return slug + "_" + strconv.Itoa(repeat)
}

// Heading is one table of contents entry.
type Heading struct {
	Text   string
	Anchor string
	Level  int
}

// TOC accumulates headings in document order during one render pass.
type TOC struct {
	headings []Heading
}

// NewTOC creates an empty TOC.
func NewTOC() *TOC {
	return &TOC{}
}

// AddHeading appends a heading.
func (t *TOC) AddHeading(text, anchor string, level int) {
	t.headings = append(t.headings, Heading{Text: text, Anchor: anchor, Level: level})
}

// Headings returns a copy of the accumulated headings.
func (t *TOC) Headings() []Heading {
	out := make([]Heading, len(t.headings))
	copy(out, t.headings)
	return out
}

// HTML renders the headings as nested unordered lists.
//
// Levels are taken literally: each level step deeper opens one nested list,
// so a jump from level 1 to level 3 nests two lists below the level 1 item.
// Returning to a shallower or equal level closes lists until the depth matches.
// The heading text is already HTML (rendered inline content) and is written as is.
func (t *TOC) HTML() string {
	if len(t.headings) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(`<ul class="toc">`)

	baseLevel := t.headings[0].Level
	depth := baseLevel // level of the currently open list
	itemOpen := false

	for _, h := range t.headings {
		level := h.Level
		if level < baseLevel {
			level = baseLevel
		}

		switch {
		case level > depth:
			// Open one nested list per level step, inside the open item
			for ; depth < level; depth++ {
				if !itemOpen {
					buf.WriteString(`<li>`)
				}
				buf.WriteString(`<ul>`)
				itemOpen = false
			}
		default:
			if itemOpen {
				buf.WriteString(`</li>`)
				itemOpen = false
			}
			for ; depth > level; depth-- {
				buf.WriteString(`</ul></li>`)
			}
		}

		buf.WriteString(`<li><a href="#`)
		buf.WriteString(html.EscapeString(h.Anchor))
		buf.WriteString(`">`)
		buf.WriteString(h.Text)
		buf.WriteString(`</a>`)
		itemOpen = true
	}

	if itemOpen {
		buf.WriteString(`</li>`)
	}
	for ; depth > baseLevel; depth-- {
		buf.WriteString(`</ul></li>`)
	}
	buf.WriteString(`</ul>`)
	return buf.String()
}
