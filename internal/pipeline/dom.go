package pipeline

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrHTMLParse indicates the rendered markup could not be parsed into a tree.
var ErrHTMLParse = errors.New("HTML parsing failed")

// Fragment is a parsed HTML body. Stages mutate it in place; the body element
// exclusively owns its children.
type Fragment struct {
	body *html.Node
}

// ParseFragment parses HTML content in a <body> context so that no
// <html>/<head> wrappers are synthesized around it.
func ParseFragment(content string) (*Fragment, error) {
	body := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTMLParse, err)
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}
	return &Fragment{body: body}, nil
}

// Body returns the root <body> element.
func (f *Fragment) Body() *html.Node {
	return f.body
}

// Append adds n as the last child of the body.
func (f *Fragment) Append(n *html.Node) {
	f.body.AppendChild(n)
}

// HTML renders the body's children (the equivalent of innerHTML).
func (f *Fragment) HTML() (string, error) {
	var buf strings.Builder
	for c := f.body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// Elements returns every element with the given tag name in document order.
// The slice is a snapshot: later mutations do not affect it.
func (f *Fragment) Elements(tag string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := f.body.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return found
}

// Contains reports whether n is still attached somewhere under the body.
func (f *Fragment) Contains(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == f.body {
			return true
		}
	}
	return false
}

// Attr returns the value of key on n, or "" when absent.
func Attr(n *html.Node, key string) string {
	val, _ := lookupAttr(n, key)
	return val
}

// lookupAttr is Attr that also reports whether key is present.
func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func removeAttr(n *html.Node, key string) {
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == key
	})
}

// SetAttr sets key on n, replacing an existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// addClass appends class to the element's class list if not present.
func addClass(n *html.Node, class string) {
	existing := strings.Fields(Attr(n, "class"))
	if slices.Contains(existing, class) {
		return
	}
	SetAttr(n, "class", strings.Join(append(existing, class), " "))
}

// TextContent concatenates all descendant text nodes.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// newElement creates a detached element with the given attributes.
func newElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag)),
		Data:     tag,
		Attr:     attrs,
	}
}

// newText creates a detached text node.
func newText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// cloneElement returns a shallow copy of n (attributes, no children),
// matching Node.cloneNode() without the deep flag.
func cloneElement(n *html.Node) *html.Node {
	return &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      slices.Clone(n.Attr),
	}
}

// replaceNode puts repl where old was. Detached nodes are left alone.
func replaceNode(old, repl *html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	parent.InsertBefore(repl, old)
	parent.RemoveChild(old)
}

// removeNode detaches n from its parent, if any.
func removeNode(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}
