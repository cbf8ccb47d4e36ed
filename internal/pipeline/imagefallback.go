package pipeline

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// FallbackAttr holds the text shown when a standard image is not displayed.
// It is recorded from the markdown source so sanitizing src or alt later
// does not change what the reader sees.
const FallbackAttr = "data-fallback"

// ImageFallbackTransformer stamps every standard image with FallbackAttr.
// Custom-syntax images already carry OriginalAttr and are skipped.
type ImageFallbackTransformer struct{}

// Transform implements parser.ASTTransformer.
func (t *ImageFallbackTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}
		if _, custom := img.AttributeString(OriginalAttr); !custom {
			img.SetAttributeString(FallbackAttr, []byte(fallbackText(string(img.Destination), altText(img, source))))
		}
		return ast.WalkSkipChildren, nil
	})
}

// fallbackText puts src in the brackets and alt in the parentheses.
func fallbackText(src, alt string) string {
	return "![" + src + "](" + alt + ")"
}

// altText is the plain text of an image's label.
func altText(n ast.Node, source []byte) string {
	var b strings.Builder
	var walk func(ast.Node)
	walk = func(parent ast.Node) {
		for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
			switch v := c.(type) {
			case *ast.Text:
				b.Write(v.Segment.Value(source))
			case *ast.String:
				b.Write(v.Value)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}
