package about

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TerminalStyle picks a glamour style for out without querying the terminal
// when the profile has no colors.
func TerminalStyle(out *termenv.Output) string {
	if out == nil || out.Profile == termenv.Ascii {
		return "notty"
	}
	if out.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// RenderTerminal renders the page as styled terminal text.
func RenderTerminal(p Page, width int, style string) string {
	if width < 20 {
		width = 20
	}
	if style == "" {
		style = "notty"
	}
	md := Markdown(p)
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}

// Markdown converts the page to markdown: the version caption followed by
// the changelog.
func Markdown(p Page) string {
	var b strings.Builder
	if line := p.VersionLine(); line != "" {
		b.WriteString("**" + line + "**\n\n")
	}
	b.WriteString(HTMLToMarkdown(string(p.Changes)))
	return strings.TrimSpace(b.String()) + "\n"
}

// HTMLToMarkdown keeps the structure of a changelog fragment (headings,
// paragraphs, lists, emphasis, code) and drops everything else.
func HTMLToMarkdown(fragment string) string {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return ""
	}
	var w mdWriter
	for _, n := range nodes {
		w.block(n)
	}
	return strings.TrimSpace(collapseBlankLines(w.b.String())) + "\n"
}

type mdWriter struct {
	b     strings.Builder
	depth int
}

func (w *mdWriter) block(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if t := squash(n.Data); strings.TrimSpace(t) != "" {
			w.b.WriteString(t)
		}
		return
	case html.ElementNode:
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.block(c)
		}
		return
	}

	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		w.b.WriteString("\n\n" + strings.Repeat("#", level) + " " + strings.TrimSpace(w.inline(n)) + "\n\n")
	case atom.P, atom.Div:
		w.b.WriteString("\n\n")
		w.children(n)
		w.b.WriteString("\n\n")
	case atom.Ul, atom.Ol:
		w.depth++
		w.b.WriteString("\n")
		i := 0
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || c.DataAtom != atom.Li {
				continue
			}
			i++
			bullet := "- "
			if n.DataAtom == atom.Ol {
				bullet = strconv.Itoa(i) + ". "
			}
			w.b.WriteString(strings.Repeat("  ", w.depth-1) + bullet + strings.TrimSpace(w.inline(c)) + "\n")
			for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
				if gc.Type == html.ElementNode && (gc.DataAtom == atom.Ul || gc.DataAtom == atom.Ol) {
					w.block(gc)
				}
			}
		}
		w.depth--
		w.b.WriteString("\n")
	case atom.Pre:
		w.b.WriteString("\n\n```\n" + strings.Trim(textOf(n), "\n") + "\n```\n\n")
	case atom.Br:
		w.b.WriteString("\n")
	case atom.Script, atom.Style:
	default:
		w.b.WriteString(w.inlineNode(n))
	}
}

func (w *mdWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && isBlock(c.DataAtom) {
			w.block(c)
			continue
		}
		w.b.WriteString(w.inlineNode(c))
	}
}

// inline renders n's phrasing content. Nested lists are left to block.
func (w *mdWriter) inline(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(w.inlineNode(c))
	}
	return b.String()
}

// inlineNode renders one phrasing node, text included.
func (w *mdWriter) inlineNode(c *html.Node) string {
	switch c.Type {
	case html.TextNode:
		return squash(c.Data)
	case html.ElementNode:
	default:
		return ""
	}
	switch c.DataAtom {
	case atom.Ul, atom.Ol, atom.Script, atom.Style:
		return ""
	case atom.B, atom.Strong:
		return "**" + strings.TrimSpace(w.inline(c)) + "**"
	case atom.I, atom.Em:
		return "*" + strings.TrimSpace(w.inline(c)) + "*"
	case atom.Code:
		return "`" + textOf(c) + "`"
	case atom.Br:
		return "\n"
	case atom.A:
		text := strings.TrimSpace(w.inline(c))
		if href := attr(c, "href"); href != "" && text != "" {
			return "[" + text + "](" + href + ")"
		}
		return text
	default:
		return w.inline(c)
	}
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.P, atom.Div, atom.Ul, atom.Ol, atom.Pre:
		return true
	}
	return false
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
	}
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// squash collapses runs of whitespace to one space.
func squash(s string) string {
	if s == "" {
		return ""
	}
	lead := isSpace(s[0])
	trail := isSpace(s[len(s)-1])
	out := strings.Join(strings.Fields(s), " ")
	if out == "" {
		return " "
	}
	if lead {
		out = " " + out
	}
	if trail {
		out += " "
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r'
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, l := range lines {
		l = strings.TrimRight(l, " ")
		if strings.TrimSpace(l) == "" {
			blank++
			if blank > 1 {
				continue
			}
			out = append(out, "")
			continue
		}
		blank = 0
		out = append(out, trimIndent(l))
	}
	return strings.Join(out, "\n")
}

// trimIndent drops leading spaces except on nested list items.
func trimIndent(l string) string {
	t := strings.TrimLeft(l, " ")
	if t == l || strings.HasPrefix(t, "- ") || listNumber(t) {
		return l
	}
	return t
}

func listNumber(s string) bool {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i > 0 && strings.HasPrefix(s[i:], ". ")
}
