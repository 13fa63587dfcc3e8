package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// overridePriority registers the document renderer ahead of goldmark's
// HTML renderer (1000) and the GFM table renderer (500).
const overridePriority = 100

// Result is the output of one Markdown conversion.
type Result struct {
	HTML   string   // converted fragment, not yet wrapped in sentinels
	TOC    *TOC     // headings in document order
	Title  string   // plain text of the first heading, empty without headings
	Images []string // resolved image sources in document order
}

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content, filePath string) (*Result, error)
}

// GoldmarkConverter converts Markdown to HTML using goldmark with the
// document element renderers (heading, code block, table, image).
type GoldmarkConverter struct{}

// NewGoldmarkConverter creates a GoldmarkConverter.
func NewGoldmarkConverter() *GoldmarkConverter {
	return &GoldmarkConverter{}
}

// newMarkdown builds a goldmark instance bound to one document's render state.
func newMarkdown(r *documentRenderer) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // Tables, strikethrough, autolinks, task lists
		),
		goldmark.WithRendererOptions(
			// Component references and comments are raw HTML spliced in by
			// the normalizer; they must reach the compiler untouched.
			gmhtml.WithUnsafe(),
			gmhtml.WithWriter(entityWriter{gmhtml.DefaultWriter}),
			renderer.WithNodeRenderers(util.Prioritized(r, overridePriority)),
		),
	)
}

// ToHTML converts Markdown content to an HTML fragment.
// filePath locates the source document for image resolution; it is empty
// for externally sourced documents.
// Supports context cancellation via goroutine + select pattern since
// goldmark doesn't natively support context.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content, filePath string) (*Result, error) {
	// Fast path: check context before starting
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type outcome struct {
		result *Result
		err    error
	}

	done := make(chan outcome, 1)

	go func() {
		r := newDocumentRenderer(filePath)

		var buf bytes.Buffer
		if err := newMarkdown(r).Convert([]byte(content), &buf); err != nil {
			if errors.Is(err, ErrUnresolvableImage) {
				done <- outcome{err: err}
				return
			}
			done <- outcome{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- outcome{result: &Result{
			HTML:   buf.String(),
			TOC:    r.toc,
			Title:  r.title,
			Images: r.images,
		}}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case o := <-done:
		return o.result, o.err
	}
}

// documentRenderer holds the side effects of rendering one document.
type documentRenderer struct {
	filePath string
	toc      *TOC
	anchors  *AnchorCache
	title    string
	titleSet bool
	images   []string
}

func newDocumentRenderer(filePath string) *documentRenderer {
	return &documentRenderer{
		filePath: filePath,
		toc:      NewTOC(),
		anchors:  NewAnchorCache(),
	}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *documentRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHeading, r.renderHeading)
	reg.Register(ast.KindFencedCodeBlock, r.renderCodeBlock)
	reg.Register(ast.KindCodeBlock, r.renderCodeBlock)
	reg.Register(ast.KindCodeSpan, r.renderCodeSpan)
	reg.Register(ast.KindImage, r.renderImage)
	reg.Register(east.KindTable, r.renderTable)
	reg.Register(east.KindTableHeader, r.renderTableHeader)
	reg.Register(east.KindTableRow, r.renderTableRow)
}

// argumentList matches "(a, b)" in headings such as "render(input, out)".
var argumentList = regexp.MustCompile(`\([^)]+\)`)

func (r *documentRenderer) renderHeading(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	if !entering {
		_, _ = w.WriteString("</h" + strconv.Itoa(n.Level) + ">\n")
		return ast.WalkContinue, nil
	}

	text := html.UnescapeString(plainText(n, source))
	anchor := r.anchors.Anchor(text)
	linkText := argumentList.ReplaceAllString(text, "()")

	if !r.titleSet {
		r.title = linkText
		r.titleSet = true
	}
	r.toc.AddHeading(tocLinkText(linkText), anchor, n.Level)

	a := html.EscapeString(anchor)
	_, _ = fmt.Fprintf(w, `<h%d id="%s"><a name="%s" class="anchor" href="#%s"><span class="header-link"></span></a>`,
		n.Level, a, a, a)
	return ast.WalkContinue, nil
}

func (r *documentRenderer) renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	var info string
	if fenced, ok := node.(*ast.FencedCodeBlock); ok {
		info = string(fenced.Language(source))
	}
	lang, lines := SplitLanguage(info)

	var code strings.Builder
	segments := node.Lines()
	for i := 0; i < segments.Len(); i++ {
		seg := segments.At(i)
		code.Write(seg.Value(source))
	}

	_, _ = fmt.Fprintf(w, `<code-block lang="%s" lines="%s">`, html.EscapeString(lang), html.EscapeString(lines))
	_, _ = w.WriteString(escapeCode(strings.TrimSuffix(code.String(), "\n")))
	_, _ = w.WriteString("</code-block>\n")
	return ast.WalkSkipChildren, nil
}

func (r *documentRenderer) renderCodeSpan(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString("<code>")
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		t, ok := c.(*ast.Text)
		if !ok {
			continue
		}
		value := t.Segment.Value(source)
		if bytes.HasSuffix(value, []byte("\n")) {
			value = append(value[:len(value)-1:len(value)-1], ' ')
		}
		_, _ = w.WriteString(escapeCode(string(value)))
	}
	_, _ = w.WriteString("</code>")
	return ast.WalkSkipChildren, nil
}

func (r *documentRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)

	src, err := ResolveImageSource(string(n.Destination), r.filePath)
	if err != nil {
		return ast.WalkStop, err
	}
	r.images = append(r.images, src)

	alt := html.UnescapeString(plainText(n, source))
	_, _ = fmt.Fprintf(w, `<asset-img src="%s" alt="%s"/>`, html.EscapeString(src), html.EscapeString(alt))
	return ast.WalkSkipChildren, nil
}

func (r *documentRenderer) renderTable(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<table class="markdown-table">` + "\n")
	} else {
		_, _ = w.WriteString("</table>\n")
	}
	return ast.WalkContinue, nil
}

// renderTableHeader omits <thead> when the header has no cells.
func (r *documentRenderer) renderTableHeader(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if node.ChildCount() == 0 {
		return ast.WalkSkipChildren, nil
	}
	if entering {
		_, _ = w.WriteString("<thead>\n<tr>\n")
	} else {
		_, _ = w.WriteString("</tr>\n</thead>\n")
	}
	return ast.WalkContinue, nil
}

// renderTableRow opens <tbody> on the first body row and closes it after the last.
func (r *documentRenderer) renderTableRow(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		if prev := node.PreviousSibling(); prev == nil || prev.Kind() == east.KindTableHeader {
			_, _ = w.WriteString("<tbody>\n")
		}
		_, _ = w.WriteString("<tr>\n")
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString("</tr>\n")
	if node.NextSibling() == nil {
		_, _ = w.WriteString("</tbody>\n")
	}
	return ast.WalkContinue, nil
}

// SplitLanguage splits a code fence language such as "js{3-5}" into the
// bare language and the highlighted line ranges.
func SplitLanguage(info string) (lang, lines string) {
	idx := strings.IndexByte(info, '{')
	if idx == -1 {
		return info, ""
	}
	return info[:idx], strings.TrimSuffix(info[idx+1:], "}")
}

// dollarEntity is the normalizer's replacement for '$'.
var dollarEntity = []byte("&#36;")

// entityWriter keeps '$' escaped in text output. goldmark resolves
// character references before escaping, which would undo the normalizer.
type entityWriter struct {
	gmhtml.Writer
}

func (e entityWriter) Write(w util.BufWriter, source []byte) {
	if !bytes.Contains(source, dollarEntity) && bytes.IndexByte(source, '$') < 0 {
		e.Writer.Write(w, source)
		return
	}
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	e.Writer.Write(bw, source)
	_ = bw.Flush()
	_, _ = w.Write(bytes.ReplaceAll(buf.Bytes(), []byte("$"), dollarEntity))
}

// tocLinkText escapes heading text for the TOC. An escaped '<' written in
// the heading stays a single entity.
func tocLinkText(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "&amp;lt;", "&lt;")
}

// codeEscaper escapes markup but leaves entities alone: the normalizer has
// already turned every '&' into an entity reference.
var codeEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;", `"`, "&#34;")

func escapeCode(s string) string {
	return codeEscaper.Replace(s)
}

// plainText concatenates the text content below n.
func plainText(n ast.Node, source []byte) string {
	var buf strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}
