// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"path/filepath"
	"strings"
)

// ForTimeout returns a hint about raising the render timeout.
func ForTimeout() string {
	return format("posts with many media links take longer to probe; use --timeout or --no-probe")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and the user config directory that was searched.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), "go-mdpost/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForStyleNotFound lists the styles that can be used instead.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForMentionBase returns a hint for a rejected mention base URL.
func ForMentionBase() string {
	return format("mention base must be absolute, e.g. https://app.meower.org/users")
}

// ForNoMarkdownFiles returns a hint when discovery found nothing to render.
func ForNoMarkdownFiles() string {
	return format("only files ending in .md or .markdown are rendered; use - to read stdin")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
