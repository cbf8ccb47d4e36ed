package pipeline

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"mvdan.cc/xurls/v2"
)

// DefaultMentionBase is where the linkifier points @mentions before the
// router rewrites them to in-app routes.
const DefaultMentionBase = "https://app.meower.org/users"

// mentionPattern captures "@name" when it starts the text or follows a
// character that cannot be part of a word, an email, or a path.
var mentionPattern = regexp.MustCompile(`(?:^|[^\w@/])(@[A-Za-z0-9_](?:[A-Za-z0-9_.\-]*[A-Za-z0-9_])?)`)

// Linkifier turns plain-text URLs and mentions into anchors.
type Linkifier interface {
	Linkify(f *Fragment) int
}

// TextLinkifier finds URLs with xurls and mentions with a pattern, and wraps
// them in <a> elements. Text already inside an anchor is skipped.
type TextLinkifier struct {
	MentionBase string
	urls        *regexp.Regexp
}

// NewTextLinkifier creates a TextLinkifier. An empty mentionBase selects
// DefaultMentionBase.
func NewTextLinkifier(mentionBase string) *TextLinkifier {
	if mentionBase == "" {
		mentionBase = DefaultMentionBase
	}
	return &TextLinkifier{
		MentionBase: strings.TrimSuffix(mentionBase, "/"),
		urls:        xurls.Relaxed(),
	}
}

// linkSpan is a detected link inside one text node.
type linkSpan struct {
	start, end int
	href       string
}

// Linkify rewrites every eligible text node in f and returns the number of
// anchors created.
func (l *TextLinkifier) Linkify(f *Fragment) int {
	var texts []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			texts = append(texts, n)
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a", "script", "style", "button", "iframe":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(f.Body())

	created := 0
	for _, t := range texts {
		created += l.linkifyText(t)
	}
	return created
}

func (l *TextLinkifier) linkifyText(n *html.Node) int {
	spans := l.findLinks(n.Data)
	if len(spans) == 0 {
		return 0
	}

	content := n.Data
	pos := 0
	for _, s := range spans {
		if s.start > pos {
			n.Parent.InsertBefore(newText(content[pos:s.start]), n)
		}
		a := newElement("a", html.Attribute{Key: "href", Val: s.href})
		a.AppendChild(newText(content[s.start:s.end]))
		n.Parent.InsertBefore(a, n)
		pos = s.end
	}
	if pos < len(content) {
		n.Parent.InsertBefore(newText(content[pos:]), n)
	}
	n.Parent.RemoveChild(n)
	return len(spans)
}

// findLinks returns non-overlapping link spans ordered by position.
// Overlaps resolve to the earliest start, then the longest match.
func (l *TextLinkifier) findLinks(content string) []linkSpan {
	var candidates []linkSpan

	for _, m := range mentionPattern.FindAllStringSubmatchIndex(content, -1) {
		start, end := m[2], m[3]
		name := content[start+1 : end]
		candidates = append(candidates, linkSpan{
			start: start,
			end:   end,
			href:  l.MentionBase + "/" + name,
		})
	}

	for _, m := range l.urls.FindAllStringIndex(content, -1) {
		candidates = append(candidates, linkSpan{
			start: m[0],
			end:   m[1],
			href:  hrefFor(content[m[0]:m[1]]),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].start != candidates[j].start {
			return candidates[i].start < candidates[j].start
		}
		return candidates[i].end > candidates[j].end
	})

	var spans []linkSpan
	last := -1
	for _, c := range candidates {
		if c.start < last {
			continue
		}
		spans = append(spans, c)
		last = c.end
	}
	return spans
}

// hrefFor adds a scheme to scheme-less matches.
func hrefFor(match string) string {
	switch {
	case strings.Contains(match, "://"), strings.HasPrefix(match, "mailto:"):
		return match
	case strings.Contains(match, "@") && !strings.Contains(match, "/"):
		return "mailto:" + match
	default:
		return "http://" + match
	}
}

// Router maps logical in-app destinations to navigable hrefs.
type Router interface {
	UserHref(username string) string
}

// PathRouter resolves routes under a base path, e.g. "/" or "/app/#/".
type PathRouter struct {
	Base string
}

// UserHref returns the profile route for username.
func (r PathRouter) UserHref(username string) string {
	base := r.Base
	if base == "" {
		base = "/"
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + "users/" + url.PathEscape(username)
}

// RewriteMentions points every anchor whose text starts with "@" at the
// router's profile route for the name after the "@". Returns the number of
// anchors rewritten.
func RewriteMentions(f *Fragment, router Router) int {
	rewritten := 0
	for _, a := range f.Elements("a") {
		text := TextContent(a)
		if !strings.HasPrefix(text, "@") {
			continue
		}
		SetAttr(a, "href", router.UserHref(text[1:]))
		rewritten++
	}
	return rewritten
}
