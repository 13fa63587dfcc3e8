// Package docsite renders Markdown documentation into page fragments for a
// documentation website.
//
// # Quick Start
//
// Create a renderer and render a document:
//
//	r, err := docsite.NewRenderer(
//	    docsite.WithSiteDomain("trooba.github.io"),
//	    docsite.WithComponentsDir("components-generated"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	page, err := r.Render(ctx, docsite.Document{
//	    Markdown:     "# Hello\n\nWorld",
//	    DocumentName: "hello.md",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(page.Title, page.TOC, page.HTML)
//
// # Render Pipeline
//
// A render runs these stages in order:
//
//  1. Markdown normalization (entity escaping, canonical domain links,
//     relative document links, component invocation regions)
//  2. Markdown to HTML conversion via Goldmark with document renderers for
//     headings, code blocks, tables and images
//  3. Sentinel delimiters around the generated markup
//  4. Template compilation at the virtual path <BaseDir>/<DocumentName>,
//     expanding code blocks, images and generated components
//
// The result carries the compiled HTML, the table of contents, the title
// (first heading) and the dependency list for the page layer.
//
// # Embedded Components
//
// A Markdown region of the form
//
//	<!-- <color-picker colors=['#333745']/>() -->
//	<img src="./fallback.png"/>
//	<!-- </> -->
//
// is replaced by a reference to a generated component artifact. Artifacts
// are content addressed: the same invocation always maps to the same file,
// which is written once per Renderer.
//
// # Concurrency
//
// A Renderer is safe for concurrent use. Each Render call has its own
// anchor cache and table of contents; the generated component map is
// shared by all calls on the same Renderer.
package docsite
