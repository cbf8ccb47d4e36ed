package pipeline

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// OriginalAttr holds the verbatim source of a custom-syntax image so the
// text can be shown again if the image is not displayed.
const OriginalAttr = "data-original"

// customImagePattern matches "[alt: url]". The url must not start with a
// space, so ordinary bracketed prose like "[note: see below]" still needs a
// non-space after ": " to qualify.
var customImagePattern = regexp.MustCompile(`\[([^\]]+?): ([^\] ][^\]]*?)\]`)

// CustomImageTransformer rewrites "[alt: url]" text into image nodes.
// Only plain text runs are considered; link labels, code spans and image
// alt text are left alone.
type CustomImageTransformer struct{}

// Transform implements parser.ASTTransformer.
func (t *CustomImageTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	var containers []ast.Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindLink, ast.KindImage, ast.KindCodeSpan, ast.KindAutoLink, ast.KindRawHTML:
			return ast.WalkSkipChildren, nil
		}
		if hasTextChild(n) {
			containers = append(containers, n)
		}
		return ast.WalkContinue, nil
	})

	for _, c := range containers {
		expandCustomImages(c, source)
	}
}

func hasTextChild(n ast.Node) bool {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*ast.Text); ok {
			return true
		}
	}
	return false
}

// expandCustomImages scans runs of adjacent text nodes under parent.
// A run stops at the first node carrying a line break so the break is
// rendered in the same place afterwards.
func expandCustomImages(parent ast.Node, source []byte) {
	child := parent.FirstChild()
	for child != nil {
		if !isPlainText(child) {
			child = child.NextSibling()
			continue
		}

		var run []*ast.Text
		for n := child; n != nil && isPlainText(n); n = n.NextSibling() {
			t := n.(*ast.Text)
			run = append(run, t)
			if t.SoftLineBreak() || t.HardLineBreak() {
				break
			}
		}

		next := run[len(run)-1].NextSibling()
		replaceTextRun(parent, run, source)
		child = next
	}
}

func isPlainText(n ast.Node) bool {
	t, ok := n.(*ast.Text)
	return ok && !t.IsRaw()
}

func replaceTextRun(parent ast.Node, run []*ast.Text, source []byte) {
	var content []byte
	for _, t := range run {
		content = append(content, t.Segment.Value(source)...)
	}

	matches := customImagePattern.FindAllSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return
	}

	var nodes []ast.Node
	pos := 0
	for _, m := range matches {
		if m[0] > pos {
			nodes = append(nodes, ast.NewString(bytes.Clone(content[pos:m[0]])))
		}
		nodes = append(nodes, newCustomImage(content[m[4]:m[5]], content[m[0]:m[1]]))
		pos = m[1]
	}
	if pos < len(content) {
		nodes = append(nodes, ast.NewString(bytes.Clone(content[pos:])))
	}

	last := run[len(run)-1]
	if last.SoftLineBreak() || last.HardLineBreak() {
		br := ast.NewText()
		br.SetSoftLineBreak(last.SoftLineBreak())
		br.SetHardLineBreak(last.HardLineBreak())
		nodes = append(nodes, br)
	}

	anchor := last.NextSibling()
	for _, t := range run {
		parent.RemoveChild(parent, t)
	}
	for _, n := range nodes {
		if anchor != nil {
			parent.InsertBefore(parent, anchor, n)
		} else {
			parent.AppendChild(parent, n)
		}
	}
}

// newCustomImage builds an image with an empty alt and the matched source
// text kept in data-original.
func newCustomImage(src, original []byte) *ast.Image {
	link := ast.NewLink()
	link.Destination = bytes.Clone(src)
	img := ast.NewImage(link)
	img.SetAttributeString(OriginalAttr, bytes.Clone(original))
	return img
}
