package pipeline

import (
	"errors"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// ErrUnknownStyle indicates the highlight style is not registered with chroma.
var ErrUnknownStyle = errors.New("unknown highlight style")

// HighlightCSS returns the stylesheet for the classes emitted by the
// renderer's code highlighting in the given chroma style.
func HighlightCSS(style string) (string, error) {
	if style == "" {
		style = DefaultHighlightStyle
	}
	s, ok := styles.Registry[strings.ToLower(style)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, style)
	}

	var b strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&b, s); err != nil {
		return "", fmt.Errorf("writing %s stylesheet: %w", style, err)
	}
	return b.String(), nil
}

// HighlightStyles lists the registered chroma style names.
func HighlightStyles() []string {
	return styles.Names()
}
