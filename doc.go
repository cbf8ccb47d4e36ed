// Package mdpost renders user-authored Markdown posts to sanitized,
// enriched HTML fragments.
//
// # Quick Start
//
// Create a renderer once and reuse it; it is safe for concurrent use:
//
//	r, err := mdpost.NewRenderer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := r.Render(ctx, "hi @alice [cat: https://i.imgur.com/cat.png]", mdpost.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res.Wait() // optional: let media probes finish
//	html, err := res.HTML()
//
// # Rendering Pipeline
//
//  1. "[alt: url]" text becomes an image carrying the original text
//  2. Markdown to HTML via goldmark (tables, strikethrough, emoji
//     shortcodes, chroma highlighting, hard line breaks)
//  3. Sanitizing with a bluemonday user-content policy
//  4. Image filtering: hosts outside the allow-list are shown as text,
//     custom-syntax images move to the end of the post
//  5. Bare URLs, emails and @mentions become links; mentions are routed
//     in-app through a Router
//  6. Links to Scratch or TurboWarp projects get a click-to-load placeholder
//     (Result.ActivateEmbed swaps in the iframe)
//  7. Image sources are probed in the background; audio and video become
//     players
//
// # Configuration
//
// Renderer-wide settings are functional options:
//
//	r, err := mdpost.NewRenderer(
//	    mdpost.WithImageHosts("https://cdn.example.com/"),
//	    mdpost.WithRouter(mdpost.PathRouter{Base: "/app/#/"}),
//	    mdpost.WithProbeTimeout(5*time.Second),
//	    mdpost.WithLogger(logger),
//	)
//
// Per-post settings are passed via Options. Start from DefaultOptions; the
// zero value hides images.
//
// # Media Probing
//
// Probes are bounded (WithProbeConcurrency) and time-limited
// (WithProbeTimeout). They stop when the context passed to Render is
// cancelled or when Result.Cancel is called. Disable them entirely with
// WithMediaProbing(false).
package mdpost
