package compiler

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultHighlightStyle is the chroma style used when none is configured.
const DefaultHighlightStyle = "github"

// Highlighter renders code blocks as highlighted HTML.
type Highlighter struct {
	style *chroma.Style
}

// NewHighlighter creates a Highlighter for the named chroma style.
// Unknown style names fall back to chroma's default style.
func NewHighlighter(styleName string) *Highlighter {
	if styleName == "" {
		styleName = DefaultHighlightStyle
	}
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	return &Highlighter{style: style}
}

// Highlight writes code in lang to w, emphasizing the lines described by
// lines (e.g. "3-5,7"). Unknown languages are rendered as plain text.
func (h *Highlighter) Highlight(w io.Writer, code, lang, lines string) error {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return fmt.Errorf("tokenizing %s code: %w", lang, err)
	}

	formatter := chromahtml.New(
		chromahtml.WithClasses(true), // CSS classes for smaller HTML and external stylesheet control
		chromahtml.HighlightLines(ParseLineRanges(lines)),
	)
	return formatter.Format(w, h.style, iterator)
}

// WriteCSS writes the style sheet for the class names emitted by Highlight.
func (h *Highlighter) WriteCSS(w io.Writer) error {
	return chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(w, h.style)
}

// ParseLineRanges parses a highlighted lines string such as "3-5,7" into
// inclusive ranges. Malformed parts are skipped.
func ParseLineRanges(spec string) [][2]int {
	if strings.TrimSpace(spec) == "" {
		return nil
	}

	var ranges [][2]int
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		startStr, endStr, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(startStr))
		if err != nil || start < 1 {
			continue
		}
		end := start
		if isRange {
			end, err = strconv.Atoi(strings.TrimSpace(endStr))
			if err != nil || end < start {
				continue
			}
		}
		ranges = append(ranges, [2]int{start, end})
	}
	return ranges
}
