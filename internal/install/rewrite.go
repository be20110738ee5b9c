// Package install lets web pages offer Enso commands: anchors marked
// rel="ensocommand" get an Install button that posts to a local receiver,
// which asks for confirmation and hands the URL to an installer.
package install

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ReceiverURL is where Install forms post to.
const ReceiverURL = "http://localhost:31750/"

// CommandRel marks anchors that point at an installable command script.
const CommandRel = "ensocommand"

// Rewrite copies the HTML document from r to w, inserting an inline Install
// form right after every anchor whose rel is exactly "ensocommand". It
// returns the number of forms inserted.
func Rewrite(w io.Writer, r io.Reader, pageURL string) (int, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return 0, err
	}
	n := RewriteNode(doc, pageURL)
	if err := html.Render(w, doc); err != nil {
		return n, err
	}
	return n, nil
}

// RewriteNode inserts the Install forms into an already parsed tree.
func RewriteNode(doc *html.Node, pageURL string) int {
	var anchors []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A && attr(n, "rel") == CommandRel {
			anchors = append(anchors, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	base, _ := url.Parse(pageURL)
	for _, a := range anchors {
		if a.Parent == nil {
			continue
		}
		form := installForm(resolve(base, attr(a, "href")), pageURL)
		// A nil reference node appends.
		a.Parent.InsertBefore(form, a.NextSibling)
	}
	return len(anchors)
}

func installForm(href, pageURL string) *html.Node {
	form := element(atom.Form,
		html.Attribute{Key: "action", Val: ReceiverURL},
		html.Attribute{Key: "method", Val: "POST"},
		html.Attribute{Key: "style", Val: "display: inline"},
	)
	form.AppendChild(element(atom.Input,
		html.Attribute{Key: "type", Val: "hidden"},
		html.Attribute{Key: "name", Val: "url"},
		html.Attribute{Key: "value", Val: href},
	))
	form.AppendChild(element(atom.Input,
		html.Attribute{Key: "type", Val: "submit"},
		html.Attribute{Key: "value", Val: "Install"},
	))
	form.AppendChild(element(atom.Input,
		html.Attribute{Key: "type", Val: "hidden"},
		html.Attribute{Key: "name", Val: "ref"},
		html.Attribute{Key: "value", Val: pageURL},
	))
	return form
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

// resolve makes href absolute against the page, the way a browser reports
// an anchor's href property.
func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if base == nil || href == "" {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(u).String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
