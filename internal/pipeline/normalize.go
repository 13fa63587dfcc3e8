package pipeline

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Default policy values, overridable through NormalizerConfig.
const (
	DefaultDocsRoute = "/docs/"

	// DefaultDocLinkPattern matches relative links to sibling Markdown documents.
	DefaultDocLinkPattern = `\./([\w\-/]+)\.md`

	// DefaultInvocationPattern matches a component invocation region:
	//
	//	<!-- <my-component name="John"/>() -->
	//	<img src="./some-img.png"/>
	//	<!-- </> -->
	//
	// The first submatch is the invocation itself.
	DefaultInvocationPattern = `<!-- (.*?)\(\) -->[\s\S]*?</> -->`
)

// Compiled defaults.
var (
	defaultDocLinkRegexp    = regexp.MustCompile(DefaultDocLinkPattern)
	defaultInvocationRegexp = regexp.MustCompile(DefaultInvocationPattern)
)

// Materializer turns a component invocation into reference markup.
type Materializer interface {
	Materialize(invocation string) (string, error)
}

// NormalizerConfig holds the rewrite policy knobs.
type NormalizerConfig struct {
	// Domain is the canonical site host (e.g. "trooba.github.io").
	// Absolute links to it become root-relative. Empty disables the rewrite.
	Domain string

	// DocsRoute is the site route that serves documentation pages.
	DocsRoute string

	// DocLinkPattern matches relative document links. Nil uses the default.
	DocLinkPattern *regexp.Regexp

	// InvocationPattern matches component invocation regions; its first
	// submatch must capture the invocation. Nil uses the default.
	InvocationPattern *regexp.Regexp

	// Materializer replaces invocation regions. Nil leaves regions untouched.
	Materializer Materializer
}

// Normalizer rewrites raw Markdown before conversion.
// It holds no per-call state and is safe for concurrent use when its
// Materializer is.
type Normalizer struct {
	domain       *regexp.Regexp // nil when no domain is configured
	docsRoute    string
	docLink      *regexp.Regexp
	invocation   *regexp.Regexp
	materializer Materializer
}

// NewNormalizer creates a Normalizer, filling unset fields with defaults.
func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	n := &Normalizer{
		docsRoute:    cfg.DocsRoute,
		docLink:      cfg.DocLinkPattern,
		invocation:   cfg.InvocationPattern,
		materializer: cfg.Materializer,
	}
	if cfg.Domain != "" {
		n.domain = regexp.MustCompile(`https?://` + regexp.QuoteMeta(cfg.Domain) + `/`)
	}
	if n.docsRoute == "" {
		n.docsRoute = DefaultDocsRoute
	}
	if n.docLink == nil {
		n.docLink = defaultDocLinkRegexp
	}
	if n.invocation == nil {
		n.invocation = defaultInvocationRegexp
	}
	return n
}

// Normalize applies the rewrite rules in order: entity escaping, canonical
// domain links, relative document links (only when filePath is known) and
// component invocation regions.
// The only error source is the Materializer.
func (n *Normalizer) Normalize(markdown, filePath string) (string, error) {
	markdown = escapeSpecialChars(markdown)
	markdown = n.rewriteDomainLinks(markdown)
	markdown = n.rewriteDocLinks(markdown, filePath)
	return n.replaceInvocations(markdown)
}

// escapeSpecialChars neutralizes characters with meaning to the template layer.
// Not idempotent: an already escaped "&amp;" becomes "&amp;amp;".
func escapeSpecialChars(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	return strings.ReplaceAll(s, "$", "&#36;")
}

func (n *Normalizer) rewriteDomainLinks(s string) string {
	if n.domain == nil {
		return s
	}
	return n.domain.ReplaceAllString(s, "/")
}

func (n *Normalizer) rewriteDocLinks(s, filePath string) string {
	// Externally sourced documents have no location to resolve against
	if filePath == "" {
		return s
	}

	dir := filepath.Dir(filePath)
	return n.docLink.ReplaceAllStringFunc(s, func(link string) string {
		return resolveDocLink(dir, link, n.docsRoute)
	})
}

// resolveDocLink maps "./guide/setup.md" in /x/docs/ to "/docs/guide/setup/".
// Links that do not land under the docs route are returned unchanged.
func resolveDocLink(dir, link, route string) string {
	resolved := filepath.ToSlash(filepath.Join(dir, link))

	idx := strings.Index(resolved, route)
	ext := filepath.Ext(resolved)
	if idx == -1 || ext == "" {
		return link
	}
	return strings.TrimSuffix(resolved[idx:], ext) + "/"
}

// InvocationSpan is one matched component invocation region.
type InvocationSpan struct {
	Start      int // byte offset of the region start
	End        int // byte offset just past the region end
	Invocation string
}

// ScanInvocations finds all invocation regions in s.
// Regions without a closing marker do not match and are not reported.
func ScanInvocations(pattern *regexp.Regexp, s string) []InvocationSpan {
	matches := pattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return nil
	}

	spans := make([]InvocationSpan, 0, len(matches))
	for _, m := range matches {
		span := InvocationSpan{Start: m[0], End: m[1]}
		if len(m) >= 4 && m[2] >= 0 {
			span.Invocation = s[m[2]:m[3]]
		}
		spans = append(spans, span)
	}
	return spans
}

func (n *Normalizer) replaceInvocations(s string) (string, error) {
	if n.materializer == nil {
		return s, nil
	}

	spans := ScanInvocations(n.invocation, s)
	if len(spans) == 0 {
		return s, nil
	}

	var buf strings.Builder
	buf.Grow(len(s))
	last := 0
	for _, span := range spans {
		ref, err := n.materializer.Materialize(span.Invocation)
		if err != nil {
			return "", err
		}
		buf.WriteString(s[last:span.Start])
		buf.WriteString(ref)
		last = span.End
	}
	buf.WriteString(s[last:])
	return buf.String(), nil
}
