package site

import (
	"bytes"
	"errors"
	"html/template"
	"strings"
	"testing"

	"github.com/alnah/docsite/internal/assets"
)

func TestNewLayout_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := NewLayout("{{.Title"); !errors.Is(err, ErrLayout) {
		t.Errorf("NewLayout() error = %v, want ErrLayout", err)
	}
}

func TestLayout_Execute(t *testing.T) {
	t.Parallel()

	ts, err := assets.NewEmbeddedLoader().LoadTemplateSet(assets.DefaultTemplateSetName)
	if err != nil {
		t.Fatal(err)
	}
	layout, err := NewLayout(ts.Page)
	if err != nil {
		t.Fatalf("NewLayout() error: %v", err)
	}

	data := &PageData{
		Global:       GlobalData{Dependencies: []string{"/static/abc-logo.png"}},
		SiteTitle:    "Trooba",
		DocsRoute:    "/docs/",
		StyleURL:     "/static/site.css",
		Name:         "intro",
		Title:        "Intro <beta>",
		Content:      template.HTML(`<h1 id="intro">Intro</h1>`),
		TOC:          template.HTML(`<ul><li><a href="#intro">Intro</a></li></ul>`),
		Contributors: []string{"dimichgh"},
		EditURL:      "https://github.com/trooba/trooba/blob/master/docs/intro.md",
		Parents:      []string{"getting-started-overview"},
		Date:         "March 9, 2017",
		BuildID:      "build-1",
	}

	var buf bytes.Buffer
	if err := layout.Execute(&buf, data); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	out := buf.String()

	wants := []string{
		"<title>Intro &lt;beta&gt; | Trooba</title>",
		`<link rel="preload" href="/static/abc-logo.png" as="fetch">`,
		`<h1 id="intro">Intro</h1>`,
		`<a href="#intro">Intro</a>`,
		`href="/docs/getting-started-overview/"`,
		`href="https://github.com/trooba/trooba/blob/master/docs/intro.md"`,
		"<li>dimichgh</li>",
		"March 9, 2017",
		`data-build="build-1"`,
	}
	for _, w := range wants {
		if !strings.Contains(out, w) {
			t.Errorf("page missing %q", w)
		}
	}
}

func TestLayout_ExecuteError(t *testing.T) {
	t.Parallel()

	layout, err := NewLayout("{{.Missing}}")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := layout.Execute(&buf, &PageData{Name: "x"}); !errors.Is(err, ErrLayout) {
		t.Errorf("Execute() error = %v, want ErrLayout", err)
	}
}
