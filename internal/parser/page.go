package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Page is a parsed document that both CSS and XPath candidates run against.
type Page struct {
	doc  *goquery.Document
	root *html.Node
}

// NewPage wraps a goquery document.
func NewPage(doc *goquery.Document) *Page {
	p := &Page{doc: doc}
	if len(doc.Nodes) > 0 {
		p.root = doc.Nodes[0]
	}
	return p
}

// ParseHTML parses raw markup into a Page.
func ParseHTML(markup string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	return NewPage(doc), nil
}

// Document returns the underlying goquery document.
func (p *Page) Document() *goquery.Document { return p.doc }

// Elements returns the nodes matched by a selector in document order.
func (p *Page) Elements(sel Selector) []*html.Node {
	if p.root == nil {
		return nil
	}
	switch sel.Kind {
	case XPath:
		if sel.xpath == nil {
			return nil
		}
		return htmlquery.QuerySelectorAll(p.root, sel.xpath)
	default:
		if sel.css == nil {
			return p.doc.Find(sel.Expr).Nodes
		}
		return p.doc.FindMatcher(sel.css).Nodes
	}
}

// Remove detaches every node matched by the selectors.
func (p *Page) Remove(sels []Selector) {
	for _, sel := range sels {
		for _, n := range p.Elements(sel) {
			if n.Parent != nil {
				n.Parent.RemoveChild(n)
			}
		}
	}
}

// Text returns the visible text of a node with whitespace collapsed.
func Text(n *html.Node) string {
	return strings.Join(strings.Fields(htmlquery.InnerText(n)), " ")
}

// Attr returns an attribute value of a node, trimmed.
func Attr(n *html.Node, name string) string {
	return strings.TrimSpace(htmlquery.SelectAttr(n, name))
}

// Href returns the href of n, or of its first descendant anchor when n is
// a container such as a card or list item.
func Href(n *html.Node) string {
	if v := Attr(n, "href"); v != "" {
		return v
	}
	if a := htmlquery.FindOne(n, ".//a[@href]"); a != nil {
		return Attr(a, "href")
	}
	return ""
}
