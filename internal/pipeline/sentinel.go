package pipeline

import (
	"errors"
	"strings"
)

// Sentinel delimits generated markup inside a larger template fragment.
const Sentinel = "-----"

// ErrMissingSentinel indicates content without a generated markup region.
var ErrMissingSentinel = errors.New("generated markup delimiters not found")

const (
	sentinelOpen  = Sentinel + "\n"
	sentinelClose = "\n" + Sentinel + "\n"
)

// WrapSentinel surrounds generated HTML with sentinel delimiters.
func WrapSentinel(html string) string {
	return sentinelOpen + html + sentinelClose
}

// UnwrapSentinel returns the text before, inside and after the first
// generated markup region.
func UnwrapSentinel(s string) (before, inner, after string, err error) {
	start := strings.Index(s, sentinelOpen)
	if start == -1 {
		return "", "", "", ErrMissingSentinel
	}
	body := s[start+len(sentinelOpen):]

	end := strings.LastIndex(body, sentinelClose)
	if end == -1 {
		return "", "", "", ErrMissingSentinel
	}
	return s[:start], body[:end], body[end+len(sentinelClose):], nil
}
