// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"
)

// TokenEnv names the environment variable holding the push token for publish.
const TokenEnv = "DOCSITE_GIT_TOKEN"

// InCI reports whether the process runs in a CI environment.
var InCI = func() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != ""
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/site.yaml or run 'docsite init'"

	for _, p := range searchedPaths {
		if strings.Contains(filepathSlash(p), "/docsite/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable, or set paths.output")
}

// ForStyleNotFound returns hints for style or template set not found errors.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForFetch returns hints for remote document fetch errors.
func ForFetch(timeout string) string {
	var hints []string
	if timeout == "" || timeout == "0s" {
		hints = append(hints, "set remote.timeout to bound slow hosts")
	}
	hints = append(hints, "check remote.documents URLs point at raw Markdown")
	return formatHints(hints)
}

// ForPublish returns hints for publish failures.
func ForPublish() string {
	var hints []string
	if os.Getenv(TokenEnv) == "" {
		if InCI() {
			hints = append(hints, "set "+TokenEnv+" in CI to push over HTTPS")
		} else {
			hints = append(hints, "set "+TokenEnv+" or configure git credentials")
		}
	}
	hints = append(hints, "check publish.remote exists in the output repository")
	return formatHints(hints)
}

// ForUnresolvableImage returns hints for relative images in remote documents.
func ForUnresolvableImage() string {
	return format("use an absolute URL for images in remote documents")
}

func filepathSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
