// Package source collects the documents of a site.
//
// Documents come from three places, merged by name in this order with later
// sources overriding earlier ones:
//
//  1. Remote documents fetched over HTTP (Fetcher)
//  2. Local documentation directories (LoadDir), in configuration order
//  3. Overview documents generated from the site structure (OverviewDocuments)
//
// A Registry holds the merged set together with per-document metadata:
// edit links, contributors and the parent overviews used for navigation.
// Watcher reports changes to local directories so that a long-running
// server can reload its Registry.
package source
