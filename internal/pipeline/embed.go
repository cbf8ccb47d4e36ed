package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"golang.org/x/net/html"
)

// ErrEmbedNotFound indicates no placeholder exists for a project id.
var ErrEmbedNotFound = errors.New("embed placeholder not found")

// Embed frame size and placeholder styling.
const (
	EmbedWidth       = 485
	EmbedHeight      = 402
	EmbedButtonClass = "bg-slate-700 px-2 py-1 rounded-xl"

	// DefaultLoadProjectText prefixes the project id on placeholders.
	DefaultLoadProjectText = "Load project"
)

// Placeholder data attributes. ActivateEmbed reads them back.
const (
	embedIDAttr     = "data-embed-id"
	embedSrcAttr    = "data-embed-src"
	embedWidthAttr  = "data-embed-width"
	embedHeightAttr = "data-embed-height"
)

// projectPattern captures the host marker and numeric project id of an
// embeddable project URL.
var projectPattern = regexp.MustCompile(`(?:https?://)?(scratch\.mit\.edu/projects|turbowarp\.org)/(\d+)/?`)

// Embed describes one click-to-load placeholder.
type Embed struct {
	ProjectID string
	Host      string // "scratch.mit.edu/projects" or "turbowarp.org"
	URL       string // frame source
	Width     int
	Height    int
}

// DetectEmbeds appends a placeholder button to the body for every distinct
// project linked by a bare URL (anchor text equal to its href). Only the
// first anchor for a given id produces a placeholder.
func DetectEmbeds(f *Fragment, loadProjectText string) []Embed {
	var embeds []Embed
	seen := make(map[string]struct{})

	for _, a := range f.Elements("a") {
		href := Attr(a, "href")
		if href != TextContent(a) {
			continue
		}
		m := projectPattern.FindStringSubmatch(href)
		if m == nil {
			continue
		}
		host, id := m[1], m[2]
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		e := Embed{
			ProjectID: id,
			Host:      host,
			URL:       fmt.Sprintf("https://%s/%s/embed", host, id),
			Width:     EmbedWidth,
			Height:    EmbedHeight,
		}
		f.Append(newPlaceholder(e, loadProjectText))
		embeds = append(embeds, e)
	}
	return embeds
}

func newPlaceholder(e Embed, loadProjectText string) *html.Node {
	button := newElement("button",
		html.Attribute{Key: "type", Val: "button"},
		html.Attribute{Key: "class", Val: EmbedButtonClass},
		html.Attribute{Key: embedIDAttr, Val: e.ProjectID},
		html.Attribute{Key: embedSrcAttr, Val: e.URL},
		html.Attribute{Key: embedWidthAttr, Val: strconv.Itoa(e.Width)},
		html.Attribute{Key: embedHeightAttr, Val: strconv.Itoa(e.Height)},
	)
	button.AppendChild(newText(loadProjectText + " (" + e.ProjectID + ")"))
	return button
}

// ActivateEmbed swaps the placeholder for projectID with its iframe, in
// place. This is what a click on the placeholder does.
func ActivateEmbed(f *Fragment, projectID string) error {
	for _, b := range f.Elements("button") {
		if Attr(b, embedIDAttr) != projectID {
			continue
		}
		iframe := newElement("iframe",
			html.Attribute{Key: "src", Val: Attr(b, embedSrcAttr)},
			html.Attribute{Key: "width", Val: Attr(b, embedWidthAttr)},
			html.Attribute{Key: "height", Val: Attr(b, embedHeightAttr)},
		)
		replaceNode(b, iframe)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrEmbedNotFound, projectID)
}
