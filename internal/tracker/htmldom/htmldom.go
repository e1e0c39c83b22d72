// Package htmldom implements tracker.DOM over an x/net/html tree. Layout is
// supplied by the caller as a map from data-ve-id to rect, since there is no
// rendering engine behind the document.
package htmldom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/conneroisu/vedit/internal/inlinestyle"
	"github.com/conneroisu/vedit/internal/protocol"
	"github.com/conneroisu/vedit/internal/tailwind"
	"github.com/conneroisu/vedit/internal/tracker"
	"github.com/conneroisu/vedit/internal/types"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const idAttr = "data-ve-id"

// Document is a parsed HTML document with a fixed layout.
type Document struct {
	doc    *html.Node
	layout map[string]types.Rect
	// focusInText simulates keyboard focus in an input or textarea
	focusInText bool
}

var _ tracker.DOM = (*Document)(nil)

// Parse reads an HTML document. layout may be nil.
func Parse(r io.Reader, layout map[string]types.Rect) (*Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	if layout == nil {
		layout = make(map[string]types.Rect)
	}
	return &Document{doc: doc, layout: layout}, nil
}

// SetLayout places the element with the given data-ve-id.
func (d *Document) SetLayout(id string, r types.Rect) {
	d.layout[id] = r
}

// SetFocusInTextInput toggles simulated text-input focus.
func (d *Document) SetFocusInTextInput(focused bool) {
	d.focusInText = focused
}

// Render serializes the current tree.
func (d *Document) Render() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.doc); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return buf.String(), nil
}

func node(el tracker.Element) *html.Node {
	n, _ := el.(*html.Node)
	return n
}

// wrap keeps a nil *html.Node from becoming a non-nil interface.
func wrap(n *html.Node) tracker.Element {
	if n == nil {
		return nil
	}
	return n
}

// ElementAt returns the deepest laid-out element containing the point. Later
// siblings paint over earlier ones, so children are tested in reverse.
func (d *Document) ElementAt(x, y float64) tracker.Element {
	return wrap(d.hit(d.doc, x, y))
}

func (d *Document) hit(n *html.Node, x, y float64) *html.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if found := d.hit(c, x, y); found != nil {
			return found
		}
	}
	if n.Type != html.ElementNode {
		return nil
	}
	r, ok := d.layout[getAttr(n, idAttr)]
	if ok && r.Contains(x, y) {
		return n
	}
	return nil
}

func (d *Document) Rect(el tracker.Element) types.Rect {
	n := node(el)
	if n == nil {
		return types.Rect{}
	}
	return d.layout[getAttr(n, idAttr)]
}

func (d *Document) Tag(el tracker.Element) string {
	if n := node(el); n != nil {
		return n.Data
	}
	return ""
}

func (d *Document) Parent(el tracker.Element) tracker.Element {
	n := node(el)
	if n == nil || n.Parent == nil || n.Parent.Type != html.ElementNode {
		return nil
	}
	return n.Parent
}

func (d *Document) Children(el tracker.Element) []tracker.Element {
	n := node(el)
	if n == nil {
		return nil
	}
	var out []tracker.Element
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func (d *Document) Attr(el tracker.Element, name string) string {
	if n := node(el); n != nil {
		return getAttr(n, name)
	}
	return ""
}

func (d *Document) SetAttr(el tracker.Element, name, value string) {
	if n := node(el); n != nil {
		setAttr(n, name, value)
	}
}

func (d *Document) Find(name, value string) tracker.Element {
	if value == "" {
		return nil
	}
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && getAttr(n, name) == value {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.doc)
	return wrap(found)
}

func (d *Document) Remove(el tracker.Element) {
	n := node(el)
	if n == nil || n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Insert parses markup in a body context and places its first element.
func (d *Document) Insert(target tracker.Element, position, markup string) (tracker.Element, error) {
	t := node(target)
	if t == nil {
		return nil, fmt.Errorf("no insertion target")
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}
	var el *html.Node
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			el = n
			break
		}
	}
	if el == nil {
		return nil, fmt.Errorf("fragment has no element")
	}

	switch position {
	case protocol.PositionInside:
		t.AppendChild(el)
	case protocol.PositionBefore, protocol.PositionAfter:
		if t.Parent == nil {
			return nil, fmt.Errorf("target has no parent")
		}
		next := t
		if position == protocol.PositionAfter {
			next = t.NextSibling
		}
		t.Parent.InsertBefore(el, next)
	default:
		return nil, fmt.Errorf("unknown position %q", position)
	}
	return el, nil
}

// SetStyle rewrites the style attribute. Pixel widths and heights also
// update the element's layout, standing in for a reflow.
func (d *Document) SetStyle(el tracker.Element, property, value string) {
	n := node(el)
	if n == nil {
		return
	}
	setStyle(n, property, value)

	id := getAttr(n, idAttr)
	r, ok := d.layout[id]
	if !ok || !strings.HasSuffix(value, "px") {
		return
	}
	var size float64
	if _, err := fmt.Sscanf(strings.TrimSuffix(value, "px"), "%g", &size); err != nil {
		return
	}
	switch property {
	case "width":
		d.layout[id] = types.NewRect(r.Left, r.Top, size, r.Height)
	case "height":
		d.layout[id] = types.NewRect(r.Left, r.Top, r.Width, size)
	}
}

func (d *Document) InlineStyles(el tracker.Element) map[string]string {
	n := node(el)
	if n == nil {
		return map[string]string{}
	}
	return styles(n).Map()
}

// Computed reports inline styles in place of a cascade.
func (d *Document) Computed(el tracker.Element) types.ComputedStyles {
	var computed types.ComputedStyles
	n := node(el)
	if n == nil {
		return computed
	}
	props := styles(n)
	for _, key := range types.ComputedStyleProperties {
		if v, ok := props.Get(key); ok {
			computed.Set(key, v)
		}
	}
	return computed
}

func (d *Document) Hidden(el tracker.Element) bool {
	n := node(el)
	if n == nil {
		return true
	}
	if hasAttr(n, "hidden") {
		return true
	}
	props := styles(n)
	if v, _ := props.Get("display"); v == "none" {
		return true
	}
	v, _ := props.Get("visibility")
	return v == "hidden"
}

func (d *Document) Text(el tracker.Element) string {
	if t := firstText(node(el)); t != nil {
		return strings.TrimSpace(t.Data)
	}
	return ""
}

// SetText replaces the first non-blank direct text node, or prepends one.
func (d *Document) SetText(el tracker.Element, text string) {
	n := node(el)
	if n == nil {
		return
	}
	if t := firstText(n); t != nil {
		t.Data = text
		return
	}
	n.InsertBefore(&html.Node{Type: html.TextNode, Data: text}, n.FirstChild)
}

func (d *Document) RootProperties() []string {
	root := d.root()
	if root == nil {
		return nil
	}
	keys := styles(root).Keys()
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, tailwind.ToCSSProperty(key))
	}
	return out
}

func (d *Document) SetRootProperty(name, value string) {
	if root := d.root(); root != nil {
		setStyle(root, name, value)
	}
}

func (d *Document) RemoveRootProperty(name string) {
	d.SetRootProperty(name, "")
}

func (d *Document) FocusInTextInput() bool {
	return d.focusInText
}

func (d *Document) root() *html.Node {
	for c := d.doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Html {
			return c
		}
	}
	return nil
}

func firstText(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
			return c
		}
	}
	return nil
}

func styles(n *html.Node) *inlinestyle.Properties {
	return inlinestyle.ParseOrdered(getAttr(n, "style"), inlinestyle.SyntaxCSS)
}

// setStyle takes a kebab-case property; an empty value removes it.
func setStyle(n *html.Node, property, value string) {
	key := property
	if !strings.HasPrefix(key, "--") {
		key = tailwind.ToCamelCase(key)
	}
	props := styles(n)
	if value == "" {
		props.Delete(key)
	} else {
		props.Set(key, value)
	}
	if props.Len() == 0 {
		removeAttr(n, "style")
		return
	}
	setAttr(n, "style", inlinestyle.SerializeCSS(props))
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
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
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func removeAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}
