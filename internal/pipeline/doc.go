// Package pipeline implements the stages that turn a post's Markdown into
// an enriched HTML fragment:
//   - Markdown preprocessing (line ending normalization)
//   - Markdown to HTML via goldmark, including the "[alt: url]" image syntax
//   - HTML sanitizing via bluemonday
//   - Image filtering against a host allow-list
//   - Linkifying bare URLs and @mentions, and routing mentions in-app
//   - Click-to-load placeholders for embeddable project links
//   - Asynchronous media probing that turns audio/video links into players
//
// Stages share a Fragment, a parsed <body> that each stage mutates in place.
// Orchestration and the public API live in the root mdpost package.
package pipeline
