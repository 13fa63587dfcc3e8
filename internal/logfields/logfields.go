// Package logfields centralizes structured log field names.
package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyDoc        = "doc"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyHash       = "hash"
	KeyComponent  = "component"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyBranch     = "branch"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr    { return slog.String(KeyBuildID, id) }
func Doc(name string) slog.Attr      { return slog.String(KeyDoc, name) }
func Path(p string) slog.Attr        { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr         { return slog.String(KeyURL, u) }
func Hash(h string) slog.Attr        { return slog.String(KeyHash, h) }
func Component(n string) slog.Attr   { return slog.String(KeyComponent, n) }
func Count(n int) slog.Attr          { return slog.Int(KeyCount, n) }
func Branch(b string) slog.Attr      { return slog.String(KeyBranch, b) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
