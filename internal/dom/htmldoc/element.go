package htmldoc

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/fareplot/internal/dom"
)

// Element wraps a single node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

var _ dom.Element = (*Element)(nil)

// sel returns a goquery selection rooted at the element.
func (e *Element) sel() *goquery.Selection {
	return goquery.NewDocumentFromNode(e.node).Selection
}

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	return e.sel().Attr(name)
}

// SetAttr sets an attribute.
func (e *Element) SetAttr(name, value string) {
	e.sel().SetAttr(name, value)
}

// RemoveAttr removes an attribute.
func (e *Element) RemoveAttr(name string) {
	e.sel().RemoveAttr(name)
}

// Text returns the combined text of the element and its descendants.
func (e *Element) Text() string {
	return e.sel().Text()
}

// SetText replaces the children of the element with a text node.
func (e *Element) SetText(text string) {
	removeChildren(e.node)
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Style returns an inline style property.
func (e *Element) Style(property string) string {
	raw, _ := e.Attr("style")
	property = strings.ToLower(property)
	for _, decl := range parseStyle(raw) {
		if decl.name == property {
			return decl.value
		}
	}
	return ""
}

// SetStyle sets an inline style property. An empty value removes it.
func (e *Element) SetStyle(property, value string) {
	raw, _ := e.Attr("style")
	property = strings.ToLower(property)

	decls := parseStyle(raw)
	found := false
	out := decls[:0]
	for _, decl := range decls {
		if decl.name == property {
			found = true
			if value == "" {
				continue
			}
			decl.value = value
		}
		out = append(out, decl)
	}
	if !found && value != "" {
		out = append(out, styleDecl{name: property, value: value})
	}

	if len(out) == 0 {
		e.RemoveAttr("style")
		return
	}
	e.SetAttr("style", formatStyle(out))
}

// Value returns the selected option of a select, or the value attribute of
// any other control. A select with no explicitly selected option reports
// its first option, like a browser does.
func (e *Element) Value() string {
	if e.node.DataAtom != atom.Select {
		v, _ := e.Attr("value")
		return v
	}

	options := e.options()
	for _, opt := range options {
		if hasAttr(opt, "selected") {
			return optionValue(opt)
		}
	}
	if len(options) > 0 {
		return optionValue(options[0])
	}
	return ""
}

// SetValue selects the option with the given value, or sets the value
// attribute for non-select controls.
func (e *Element) SetValue(value string) {
	if e.node.DataAtom != atom.Select {
		e.SetAttr("value", value)
		return
	}
	for _, opt := range e.options() {
		if optionValue(opt) == value {
			setAttr(opt, "selected", "")
		} else {
			removeAttr(opt, "selected")
		}
	}
}

// SetOptions replaces the options of a select element.
func (e *Element) SetOptions(options []dom.Option, selected string) {
	removeChildren(e.node)
	for _, o := range options {
		opt := &html.Node{
			Type:     html.ElementNode,
			Data:     "option",
			DataAtom: atom.Option,
			Attr:     []html.Attribute{{Key: "value", Val: o.Value}},
		}
		if o.Value == selected {
			opt.Attr = append(opt.Attr, html.Attribute{Key: "selected", Val: ""})
		}
		opt.AppendChild(&html.Node{Type: html.TextNode, Data: o.Label})
		e.node.AppendChild(opt)
	}
}

// Query returns the first descendant matching selector, or nil.
func (e *Element) Query(selector string) dom.Element {
	sel := e.sel().Find(selector)
	if sel.Length() == 0 {
		return nil
	}
	return e.doc.wrap(sel.Get(0))
}

// QueryAll returns all descendants matching selector.
func (e *Element) QueryAll(selector string) []dom.Element {
	return e.doc.wrapAll(e.sel().Find(selector))
}

// options returns the option nodes of a select, including those in optgroups.
func (e *Element) options() []*html.Node {
	return e.sel().Find("option").Nodes
}

func optionValue(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "value" {
			return a.Val
		}
	}
	return strings.TrimSpace(goquery.NewDocumentFromNode(n).Text())
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

type styleDecl struct {
	name  string
	value string
}

func parseStyle(raw string) []styleDecl {
	var decls []styleDecl
	for _, part := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		decls = append(decls, styleDecl{name: name, value: strings.TrimSpace(value)})
	}
	return decls
}

func formatStyle(decls []styleDecl) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.name + ": " + d.value
	}
	return strings.Join(parts, "; ")
}
