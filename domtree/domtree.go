// Package domtree parses extracted markup into a queryable tree
// implementing the checks node contract.
//
// The adapter wraps golang.org/x/net/html. Wrapper nodes are cached per
// document so the same element always yields the same checks.Node value,
// which lets checks compare nodes by identity when walking parent chains.
package domtree

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/viewcheck/viewcheck/checks"
)

// Document is a parsed markup tree scoped to one template file.
type Document struct {
	root  *html.Node
	file  string
	cache map[*html.Node]*Node
}

// Parse parses markup into a Document. file is the template path the
// markup was extracted from; it is stamped onto nodes so findings can be
// attributed when documents are combined into a page.
func Parse(markup, file string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	return &Document{
		root:  root,
		file:  file,
		cache: make(map[*html.Node]*Node),
	}, nil
}

// File returns the template path this document was parsed from.
func (d *Document) File() string { return d.file }

// Query returns all element nodes matching the selector in document
// order. A selector matching nothing returns an empty slice, never an
// error; an unparsable selector matches nothing.
func (d *Document) Query(selector string) []checks.Node {
	sels := parseSelectorList(selector)
	if len(sels) == 0 {
		return nil
	}
	var out []checks.Node
	d.walk(d.root, func(n *html.Node) {
		for _, s := range sels {
			if s.match(n) {
				out = append(out, d.wrap(n))
				return
			}
		}
	})
	return out
}

// walk visits element nodes depth-first in document order.
func (d *Document) walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.walk(c, fn)
	}
}

// wrap returns the cached wrapper for an element node.
func (d *Document) wrap(n *html.Node) *Node {
	if w, ok := d.cache[n]; ok {
		return w
	}
	w := &Node{doc: d, n: n}
	d.cache[n] = w
	return w
}

// Node is an element handle into a parsed Document. Its lifetime is bound
// to the document it came from.
type Node struct {
	doc *Document
	n   *html.Node
}

// TagName returns the lowercase tag name.
func (w *Node) TagName() string { return strings.ToLower(w.n.Data) }

// Attr returns the attribute value and whether the attribute is present.
// An absent attribute is distinguishable from an empty-string attribute.
func (w *Node) Attr(name string) (string, bool) {
	for _, a := range w.n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// Text returns the whitespace-normalized text content of the subtree.
func (w *Node) Text() string {
	var b strings.Builder
	collectText(w.n, &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

// Parent returns the nearest element ancestor, or nil at the root.
func (w *Node) Parent() checks.Node {
	for p := w.n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return w.doc.wrap(p)
		}
	}
	return nil
}

// SourceFile returns the template path the node was parsed from.
func (w *Node) SourceFile() string { return w.doc.file }

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

// Composite combines several documents into one logical page document.
// Query concatenates per-document results in the order the documents were
// given, so composition-graph discovery order carries through to finding
// order.
func Composite(docs []*Document) checks.Document {
	return &composite{docs: docs}
}

type composite struct {
	docs []*Document
}

func (c *composite) Query(selector string) []checks.Node {
	var out []checks.Node
	for _, d := range c.docs {
		out = append(out, d.Query(selector)...)
	}
	return out
}
