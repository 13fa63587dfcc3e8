// Package site turns a registry of documents into a documentation website.
//
// A Site renders documents with docsite.Renderer, places each fragment in
// the page layout of a template set and serves the result in one of three
// ways:
//
//   - Build writes a static site: <out>/docs/<name>/index.html per document,
//     a single style sheet and fingerprinted copies of page dependencies
//   - Handler serves the same pages on demand, re-rendering after reloads
//   - Publish commits a build directory to a hosting branch and pushes it
//
// Asset URLs are content addressed: /static/<fingerprint>-<base name>, where
// the fingerprint is a BLAKE3 digest of the file content.
package site
