package mdpost

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-mdpost/internal/pipeline"
)

// Options controls a single Render call. Start from DefaultOptions: the zero
// value disables images.
type Options struct {
	// Inline renders without block-level wrapping and skips project embeds.
	Inline bool
	// Images false strips every image regardless of host.
	Images bool
	// AnyImageHost bypasses the image host allow-list.
	AnyImageHost bool
	// LoadProjectText prefixes the project id on embed placeholders. It is
	// used as given; DefaultOptions sets DefaultLoadProjectText.
	LoadProjectText string
}

// DefaultLoadProjectText is the placeholder label used when none is given.
const DefaultLoadProjectText = pipeline.DefaultLoadProjectText

// DefaultOptions returns block rendering with allow-listed images shown.
func DefaultOptions() Options {
	return Options{
		Inline:          false,
		Images:          true,
		AnyImageHost:    false,
		LoadProjectText: DefaultLoadProjectText,
	}
}

// Embed describes one click-to-load project placeholder.
type Embed = pipeline.Embed

// Embed frame size.
const (
	EmbedWidth  = pipeline.EmbedWidth
	EmbedHeight = pipeline.EmbedHeight
)

// MediaKind is the outcome of probing an image source.
type MediaKind = pipeline.MediaKind

// Media kinds.
const (
	MediaNone  = pipeline.MediaNone
	MediaAudio = pipeline.MediaAudio
	MediaVideo = pipeline.MediaVideo
)

// Capability interfaces. Each has a default implementation and can be
// replaced with an Option, e.g. for tests without network access.
type (
	// MarkdownRenderer converts Markdown to an HTML fragment.
	MarkdownRenderer = pipeline.MarkdownRenderer
	// Linkifier turns plain-text URLs and mentions into anchors.
	Linkifier = pipeline.Linkifier
	// Router maps a username to an in-app profile href.
	Router = pipeline.Router
	// MediaProber classifies an image source as audio, video, or neither.
	MediaProber = pipeline.MediaProber
)

// PathRouter resolves profile routes under a base path ("/" by default).
type PathRouter = pipeline.PathRouter

// DefaultImageHosts are the URL prefixes images may be loaded from when no
// allow-list is configured.
var DefaultImageHosts = []string{
	"https://meower.org/",
	"https://uploads.meower.org/",
	"https://assets.meower.org/",
	"https://i.imgur.com/",
	"https://media.tenor.com/",
	"https://raw.githubusercontent.com/",
	"https://avatars.githubusercontent.com/",
}

// DefaultMentionBase is the external profile URL the linkifier uses for
// mentions before they are routed in-app.
const DefaultMentionBase = pipeline.DefaultMentionBase

// Probe defaults.
const (
	DefaultProbeTimeout     = pipeline.DefaultProbeTimeout
	DefaultProbeConcurrency = pipeline.DefaultProbeConcurrency
)

// Option configures a Renderer.
type Option func(*Renderer)

// rendererConfig holds internal configuration for Renderer.
type rendererConfig struct {
	imageHosts       []string
	mentionBase      string
	highlightStyle   string
	probing          bool
	probeTimeout     time.Duration
	probeConcurrency int
	httpClient       *http.Client
}

func defaultRendererConfig() rendererConfig {
	return rendererConfig{
		imageHosts:       slices.Clone(DefaultImageHosts),
		mentionBase:      DefaultMentionBase,
		highlightStyle:   pipeline.DefaultHighlightStyle,
		probing:          true,
		probeTimeout:     DefaultProbeTimeout,
		probeConcurrency: DefaultProbeConcurrency,
	}
}

// validate checks values that options cannot reject on their own.
func (c *rendererConfig) validate() error {
	u, err := url.Parse(c.mentionBase)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidMentionBase, c.mentionBase)
	}
	if _, err := pipeline.HighlightCSS(c.highlightStyle); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}
	for _, host := range c.imageHosts {
		if strings.TrimSpace(host) == "" {
			return fmt.Errorf("%w: empty image host", ErrInvalidOption)
		}
	}
	return nil
}

// WithImageHosts replaces the image host allow-list. Entries are URL
// prefixes matched against the image source.
func WithImageHosts(hosts ...string) Option {
	return func(r *Renderer) {
		r.cfg.imageHosts = slices.Clone(hosts)
	}
}

// WithMentionBase sets the absolute URL the linkifier prefixes to mentions.
func WithMentionBase(base string) Option {
	return func(r *Renderer) {
		r.cfg.mentionBase = base
	}
}

// WithHighlightStyle selects the chroma style used for code blocks.
func WithHighlightStyle(style string) Option {
	return func(r *Renderer) {
		r.cfg.highlightStyle = style
	}
}

// WithRouter sets the resolver used for mention hrefs.
func WithRouter(router Router) Option {
	return func(r *Renderer) {
		r.router = router
	}
}

// WithMarkdownRenderer replaces the goldmark-based renderer.
func WithMarkdownRenderer(m MarkdownRenderer) Option {
	return func(r *Renderer) {
		r.markdown = m
	}
}

// WithLinkifier replaces the default URL and mention linkifier.
func WithLinkifier(l Linkifier) Option {
	return func(r *Renderer) {
		r.linkifier = l
	}
}

// WithMediaProber replaces the HTTP prober.
func WithMediaProber(p MediaProber) Option {
	return func(r *Renderer) {
		r.prober = p
	}
}

// WithMediaProbing turns media probing on or off (on by default).
func WithMediaProbing(enabled bool) Option {
	return func(r *Renderer) {
		r.cfg.probing = enabled
	}
}

// WithProbeTimeout bounds each media probe request.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithProbeTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mdpost: WithProbeTimeout duration must be positive")
	}
	return func(r *Renderer) {
		r.cfg.probeTimeout = d
	}
}

// WithProbeConcurrency bounds the number of in-flight probes per render.
// Panics if n < 1.
func WithProbeConcurrency(n int) Option {
	if n < 1 {
		panic("mdpost: WithProbeConcurrency must be at least 1")
	}
	return func(r *Renderer) {
		r.cfg.probeConcurrency = n
	}
}

// WithHTTPClient sets the client used by the default prober.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Renderer) {
		r.cfg.httpClient = c
	}
}

// WithLogger sets the logger for pipeline diagnostics. Nothing is logged
// by default.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Renderer) {
		r.logger = l
	}
}
