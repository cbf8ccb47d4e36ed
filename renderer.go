package mdpost

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/alnah/go-mdpost/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.PostPreprocessor)(nil)
	_ pipeline.MarkdownRenderer     = (*pipeline.GoldmarkRenderer)(nil)
	_ pipeline.Sanitizer            = (*pipeline.PolicySanitizer)(nil)
	_ pipeline.Linkifier            = (*pipeline.TextLinkifier)(nil)
	_ pipeline.Router               = pipeline.PathRouter{}
	_ pipeline.MediaProber          = (*pipeline.HTTPProber)(nil)
)

// Renderer runs the post rendering pipeline. It is immutable after
// construction and safe for concurrent use.
type Renderer struct {
	cfg          rendererConfig
	preprocessor pipeline.MarkdownPreprocessor
	markdown     pipeline.MarkdownRenderer
	sanitizer    pipeline.Sanitizer
	linkifier    pipeline.Linkifier
	router       pipeline.Router
	prober       pipeline.MediaProber
	logger       zerolog.Logger
}

// NewRenderer creates a Renderer with default configuration.
// Returns an error if an option leaves the configuration invalid.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		cfg:          defaultRendererConfig(),
		preprocessor: &pipeline.PostPreprocessor{},
		sanitizer:    pipeline.NewPolicySanitizer(),
		router:       pipeline.PathRouter{Base: "/"},
		logger:       zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if err := r.cfg.validate(); err != nil {
		return nil, err
	}

	// Build collaborators not injected by options
	if r.markdown == nil {
		r.markdown = pipeline.NewGoldmarkRenderer(r.cfg.highlightStyle)
	}
	if r.linkifier == nil {
		r.linkifier = pipeline.NewTextLinkifier(r.cfg.mentionBase)
	}
	if r.prober == nil {
		r.prober = pipeline.NewHTTPProber(r.cfg.httpClient)
	}

	return r, nil
}

// Render runs the pipeline over markdown and returns the enriched fragment.
//
// Preprocessing, rendering, sanitizing, image filtering, linkifying and
// embed detection finish before Render returns. Media probing, when enabled,
// keeps running afterwards and swaps images for audio/video players in the
// returned Result; it is tied to ctx, so cancelling ctx stops it. Use
// Result.Wait to observe the final document.
//
// Recovers from internal panics to prevent crashes from propagating to callers.
func (r *Renderer) Render(ctx context.Context, markdown string, opts Options) (res *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("internal error: %v", rec)
		}
	}()

	// Preprocess markdown
	mdContent := r.preprocessor.PreprocessMarkdown(ctx, markdown)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Convert to HTML
	htmlContent, err := r.markdown.Render(ctx, mdContent, opts.Inline)
	if err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}

	// Sanitize before building the tree
	htmlContent = r.sanitizer.Sanitize(ctx, htmlContent)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	frag, err := pipeline.ParseFragment(htmlContent)
	if err != nil {
		return nil, err
	}

	stats := pipeline.FilterImages(frag, pipeline.ImagePolicy{
		Enabled:      opts.Images,
		AnyHost:      opts.AnyImageHost,
		AllowedHosts: r.cfg.imageHosts,
	})

	links := r.linkifier.Linkify(frag)
	mentions := pipeline.RewriteMentions(frag, r.router)

	// Embeds are never created in inline mode
	var embeds []Embed
	if !opts.Inline {
		embeds = pipeline.DetectEmbeds(frag, opts.LoadProjectText)
	}

	res = &Result{fragment: frag, embeds: embeds}

	if r.cfg.probing && r.prober != nil {
		res.probes = pipeline.StartProbes(ctx, frag, &res.mu, r.prober, pipeline.ProbeConfig{
			Concurrency: r.cfg.probeConcurrency,
			Timeout:     r.cfg.probeTimeout,
		}, r.logger)
	}

	r.logger.Debug().
		Bool("inline", opts.Inline).
		Int("images_stripped", stats.Stripped).
		Int("images_moved", stats.Moved).
		Int("links", links).
		Int("mentions", mentions).
		Int("embeds", len(embeds)).
		Int("probes", res.probeCount()).
		Msg("post rendered")

	return res, nil
}

// HighlightCSS returns the stylesheet matching the code highlighting
// classes for a chroma style ("" selects the default, github-dark).
func HighlightCSS(style string) (string, error) {
	return pipeline.HighlightCSS(style)
}

// HighlightStyles lists the chroma style names HighlightCSS accepts.
func HighlightStyles() []string {
	return pipeline.HighlightStyles()
}
