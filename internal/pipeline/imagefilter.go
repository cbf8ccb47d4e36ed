package pipeline

import (
	"strings"

	"golang.org/x/net/html"
)

// InlineImageClass marks images that stay where the author put them.
const InlineImageClass = "inline-block"

// ImagePolicy decides which images survive filtering.
type ImagePolicy struct {
	Enabled      bool     // false strips every image
	AnyHost      bool     // true bypasses AllowedHosts
	AllowedHosts []string // source URL prefixes, e.g. "https://i.imgur.com/"
}

// allows reports whether src may be displayed under the policy.
func (p ImagePolicy) allows(src string) bool {
	if !p.Enabled {
		return false
	}
	if p.AnyHost {
		return true
	}
	for _, host := range p.AllowedHosts {
		if strings.HasPrefix(src, host) {
			return true
		}
	}
	return false
}

// ImageFilterStats counts what FilterImages did, for logging.
type ImageFilterStats struct {
	Stripped int
	Moved    int
	Inline   int
}

// FilterImages applies policy to every image in f:
//   - disallowed images become a <span> holding the original markdown, or
//     "![src](alt)" for standard images
//   - custom-syntax images are moved to the end of the body
//   - everything else gets the inline-block class
func FilterImages(f *Fragment, policy ImagePolicy) ImageFilterStats {
	var stats ImageFilterStats
	for _, img := range f.Elements("img") {
		src := Attr(img, "src")
		original := Attr(img, OriginalAttr)

		if !policy.allows(src) {
			span := newElement("span")
			span.AppendChild(newText(strippedImageText(img, original)))
			replaceNode(img, span)
			stats.Stripped++
			continue
		}

		removeAttr(img, FallbackAttr)

		if original != "" {
			clone := cloneElement(img)
			f.Append(clone)
			removeNode(img)
			stats.Moved++
			continue
		}

		addClass(img, InlineImageClass)
		stats.Inline++
	}
	return stats
}

// strippedImageText is what a reader sees in place of a removed image:
// the custom syntax as typed, the fallback recorded at parse time, or one
// rebuilt from the element for images that bypassed the markdown stage.
func strippedImageText(img *html.Node, original string) string {
	if original != "" {
		return original
	}
	if fallback, ok := lookupAttr(img, FallbackAttr); ok {
		return fallback
	}
	return fallbackText(Attr(img, "src"), Attr(img, "alt"))
}
