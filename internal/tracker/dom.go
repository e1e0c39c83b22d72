package tracker

import "github.com/conneroisu/vedit/internal/types"

// Element is an opaque handle to a node owned by a DOM. Handles are compared
// with ==, so implementations must return the same value for the same node.
type Element any

// DOM is the document the controller tracks.
type DOM interface {
	// ElementAt hit-tests a viewport point and returns the innermost element,
	// or nil.
	ElementAt(x, y float64) Element
	Rect(el Element) types.Rect
	Tag(el Element) string
	// Parent returns nil for the document root.
	Parent(el Element) Element
	Children(el Element) []Element

	Attr(el Element, name string) string
	SetAttr(el Element, name, value string)
	// Find returns the first element whose attribute name equals value.
	Find(name, value string) Element

	Remove(el Element)
	// Insert parses sanitized HTML and places its first element relative to
	// target. position is one of protocol.PositionBefore/After/Inside.
	Insert(target Element, position, html string) (Element, error)

	// SetStyle sets a kebab-case inline style property; an empty value
	// removes it.
	SetStyle(el Element, property, value string)
	InlineStyles(el Element) map[string]string
	Computed(el Element) types.ComputedStyles
	Hidden(el Element) bool

	// Text returns the first non-blank direct text node, trimmed.
	Text(el Element) string
	SetText(el Element, text string)

	RootProperties() []string
	SetRootProperty(name, value string)
	RemoveRootProperty(name string)

	// FocusInTextInput reports whether keyboard focus is in an editable field.
	FocusInTextInput() bool
}
