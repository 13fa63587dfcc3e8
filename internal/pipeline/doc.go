// Package pipeline implements the Markdown-to-HTML conversion stages of a
// documentation page:
//   - Markdown normalization (entity escaping, link rewriting, component
//     invocation regions)
//   - Markdown to HTML conversion via goldmark, with document renderers for
//     headings, code blocks, tables and images
//   - Heading anchors and table of contents accumulation
//   - Sentinel delimiters around the generated markup
//
// Template compilation and expansion of the emitted custom elements
// (code-block, asset-img, generated components) is handled by the compiler
// package.
package pipeline
