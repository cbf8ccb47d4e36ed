package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// DefaultHighlightStyle is the chroma style used when none is configured.
const DefaultHighlightStyle = "github-dark"

// MarkdownRenderer abstracts Markdown to HTML conversion.
// In inline mode no block-level constructs are recognized or emitted.
type MarkdownRenderer interface {
	Render(ctx context.Context, content string, inline bool) (string, error)
}

// GoldmarkRenderer converts Markdown to an HTML fragment using goldmark.
type GoldmarkRenderer struct {
	block  goldmark.Markdown
	inline goldmark.Markdown
}

// NewGoldmarkRenderer creates a GoldmarkRenderer with tables, strikethrough,
// emoji shortcodes, the custom image syntax, and syntax highlighting in the
// given chroma style.
func NewGoldmarkRenderer(style string) *GoldmarkRenderer {
	if style == "" {
		style = DefaultHighlightStyle
	}

	block := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			emoji.Emoji,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // paired with HighlightCSS
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(
				util.Prioritized(&CustomImageTransformer{}, 100),
				util.Prioritized(&ImageFallbackTransformer{}, 200),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			renderer.WithNodeRenderers(util.Prioritized(&literalHTMLRenderer{}, 100)),
		),
	)

	inlineParser := parser.NewParser(
		parser.WithBlockParsers(util.Prioritized(parser.NewParagraphParser(), 1000)),
		parser.WithInlineParsers(parser.DefaultInlineParsers()...),
		parser.WithParagraphTransformers(parser.DefaultParagraphTransformers()...),
	)
	inline := goldmark.New(
		goldmark.WithParser(inlineParser),
		goldmark.WithExtensions(
			extension.Strikethrough,
			emoji.Emoji,
		),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(
				util.Prioritized(&CustomImageTransformer{}, 100),
				util.Prioritized(&ImageFallbackTransformer{}, 200),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			renderer.WithNodeRenderers(
				util.Prioritized(&inlineParagraphRenderer{}, 100),
				util.Prioritized(&literalHTMLRenderer{}, 100),
			),
		),
	)

	return &GoldmarkRenderer{block: block, inline: inline}
}

// Render converts Markdown content to an HTML fragment.
// Supports context cancellation via goroutine + select pattern since
// goldmark doesn't natively support context.
func (r *GoldmarkRenderer) Render(ctx context.Context, content string, inline bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	md := r.block
	if inline {
		md = r.inline
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- result{err: fmt.Errorf("%w: panic: %v", ErrHTMLConversion, rec)}
			}
		}()
		var buf bytes.Buffer
		if err := md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// inlineParagraphRenderer drops <p> wrappers. Blank lines between
// paragraphs come out as two line breaks.
type inlineParagraphRenderer struct{}

func (r *inlineParagraphRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindParagraph, r.renderParagraph)
}

func (r *inlineParagraphRenderer) renderParagraph(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering && n.PreviousSibling() != nil {
		_, _ = w.WriteString("<br>\n<br>\n")
	}
	return ast.WalkContinue, nil
}

// literalHTMLRenderer shows HTML typed into a post as text instead of
// markup. Block HTML becomes a paragraph, one line per hard break.
type literalHTMLRenderer struct{}

func (r *literalHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindRawHTML, r.renderRawHTML)
	reg.Register(ast.KindHTMLBlock, r.renderHTMLBlock)
}

func (r *literalHTMLRenderer) renderRawHTML(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	segments := n.(*ast.RawHTML).Segments
	for i := 0; i < segments.Len(); i++ {
		seg := segments.At(i)
		_, _ = w.Write(util.EscapeHTML(seg.Value(source)))
	}
	return ast.WalkSkipChildren, nil
}

func (r *literalHTMLRenderer) renderHTMLBlock(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	block := n.(*ast.HTMLBlock)

	var lines [][]byte
	for i := 0; i < block.Lines().Len(); i++ {
		seg := block.Lines().At(i)
		lines = append(lines, seg.Value(source))
	}
	if block.HasClosure() {
		lines = append(lines, block.ClosureLine.Value(source))
	}

	_, _ = w.WriteString("<p>")
	for i, line := range lines {
		if i > 0 {
			_, _ = w.WriteString("<br>\n")
		}
		_, _ = w.Write(util.EscapeHTML(bytes.TrimRight(line, "\r\n")))
	}
	_, _ = w.WriteString("</p>\n")
	return ast.WalkContinue, nil
}
