package driver

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// DefaultSnapshotLength bounds the markup kept in a DOM snapshot.
const DefaultSnapshotLength = 64 * 1024

// DOMSnapshot is a reduced copy of a page's DOM kept for failure diagnostics.
// Scripts, styles and comments are dropped; the attributes tests target
// elements by (id, class, data-*, name, type) are kept.
type DOMSnapshot struct {
	URL       string
	Title     string
	Markup    string
	Truncated bool
}

// String renders the snapshot as the text attachment body.
func (d *DOMSnapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", d.URL)
	fmt.Fprintf(&b, "Title: %s\n", d.Title)
	if d.Truncated {
		b.WriteString("(truncated)\n")
	}
	b.WriteString("\n")
	b.WriteString(d.Markup)
	return b.String()
}

// Snapshot captures and reduces the current page's DOM.
func (s *Session) Snapshot(maxLength int) (*DOMSnapshot, error) {
	raw, err := s.HTML()
	if err != nil {
		return nil, err
	}
	snap, err := CleanDOM(raw, maxLength)
	if err != nil {
		return nil, err
	}
	snap.URL = s.URL()
	return snap, nil
}

// CleanDOM parses raw HTML and reduces it to its structural markup. A
// non-positive maxLength uses DefaultSnapshotLength.
func CleanDOM(raw string, maxLength int) (*DOMSnapshot, error) {
	if maxLength <= 0 {
		maxLength = DefaultSnapshotLength
	}
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	c := &domCleaner{max: maxLength}
	truncated := c.walk(doc, 0)
	return &DOMSnapshot{
		Title:     findTitle(doc),
		Markup:    c.out.String(),
		Truncated: truncated,
	}, nil
}

type domCleaner struct {
	out  strings.Builder
	size int
	max  int
}

// walk writes n and its subtree. It reports true once the budget ran out.
func (c *domCleaner) walk(n *html.Node, depth int) bool {
	if c.size >= c.max {
		return true
	}
	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		return false
	case html.TextNode:
		return c.text(n.Data)
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if droppedTags[tag] {
			return false
		}
		return c.element(n, tag, depth)
	default:
		return c.children(n, depth)
	}
}

func (c *domCleaner) text(data string) bool {
	text := strings.TrimSpace(data)
	if text == "" {
		return false
	}
	if c.size+len(text) > c.max {
		c.out.WriteString(text[:c.max-c.size])
		c.out.WriteString("...")
		c.size = c.max
		return true
	}
	c.out.WriteString(text)
	c.size += len(text)
	return false
}

func (c *domCleaner) element(n *html.Node, tag string, depth int) bool {
	block := blockTags[tag]
	if block && depth > 0 {
		c.newline(depth)
	}

	c.out.WriteString("<" + tag)
	for _, attr := range n.Attr {
		if keepAttribute(tag, attr.Key) {
			fmt.Fprintf(&c.out, ` %s="%s"`, attr.Key, html.EscapeString(attr.Val))
		}
	}
	c.out.WriteString(">")
	c.size += len(tag) + 2

	truncated := c.children(n, depth+1)

	if !voidTags[tag] {
		if block {
			c.newline(depth)
		}
		c.out.WriteString("</" + tag + ">")
		c.size += len(tag) + 3
	}
	return truncated
}

func (c *domCleaner) children(n *html.Node, depth int) bool {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if c.walk(child, depth) {
			return true
		}
	}
	return false
}

func (c *domCleaner) newline(depth int) {
	c.out.WriteString("\n")
	c.out.WriteString(strings.Repeat("  ", depth))
}

var droppedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"svg":      true,
	"link":     true,
	"meta":     true,
}

var blockTags = map[string]bool{
	"div": true, "p": true, "form": true, "section": true, "header": true,
	"footer": true, "nav": true, "main": true, "ul": true, "ol": true,
	"li": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"table": true, "tr": true, "td": true, "th": true,
}

var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "source": true, "wbr": true,
}

var keptAttributes = map[string]bool{
	"id":          true,
	"class":       true,
	"name":        true,
	"type":        true,
	"role":        true,
	"placeholder": true,
	"href":        true,
	"aria-label":  true,
}

// keepAttribute reports whether an attribute helps locate the element.
// Input values are never kept so credentials do not end up in reports.
func keepAttribute(tag, key string) bool {
	key = strings.ToLower(key)
	if key == "value" {
		return false
	}
	if strings.HasPrefix(key, "data-") {
		return true
	}
	if tag == "img" && key == "alt" {
		return true
	}
	return keptAttributes[key]
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			return strings.TrimSpace(n.FirstChild.Data)
		}
		return ""
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if title := findTitle(child); title != "" {
			return title
		}
	}
	return ""
}
