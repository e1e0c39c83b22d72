// Package types provides common type definitions used throughout vedit.
// This package contains shared types to avoid circular dependencies between packages.
package types

import (
	"strings"
	"time"
)

// TextContentProperty is the sentinel StyleChange property that targets an
// element's text instead of a CSS property.
const TextContentProperty = "textContent"

// Rect is a viewport-relative bounding box as reported by getBoundingClientRect.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// NewRect builds a Rect from an origin and size, filling the derived edges.
func NewRect(x, y, width, height float64) Rect {
	return Rect{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
		Top:    y,
		Right:  x + width,
		Bottom: y + height,
		Left:   x,
	}
}

// Contains reports whether the point lies inside the rect (edges inclusive).
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x <= r.Right && y >= r.Top && y <= r.Bottom
}

// ComputedStyles is the fixed set of computed CSS properties captured for an
// element. Field names follow the browser's camelCase CSSStyleDeclaration keys.
type ComputedStyles struct {
	Display         string `json:"display"`
	Position        string `json:"position"`
	Width           string `json:"width"`
	Height          string `json:"height"`
	MinWidth        string `json:"minWidth"`
	MinHeight       string `json:"minHeight"`
	MaxWidth        string `json:"maxWidth"`
	MaxHeight       string `json:"maxHeight"`
	MarginTop       string `json:"marginTop"`
	MarginRight     string `json:"marginRight"`
	MarginBottom    string `json:"marginBottom"`
	MarginLeft      string `json:"marginLeft"`
	PaddingTop      string `json:"paddingTop"`
	PaddingRight    string `json:"paddingRight"`
	PaddingBottom   string `json:"paddingBottom"`
	PaddingLeft     string `json:"paddingLeft"`
	Color           string `json:"color"`
	BackgroundColor string `json:"backgroundColor"`
	FontSize        string `json:"fontSize"`
	FontWeight      string `json:"fontWeight"`
	FontFamily      string `json:"fontFamily"`
	LineHeight      string `json:"lineHeight"`
	TextAlign       string `json:"textAlign"`
	BorderRadius    string `json:"borderRadius"`
	BorderWidth     string `json:"borderWidth"`
	BorderColor     string `json:"borderColor"`
	BorderStyle     string `json:"borderStyle"`
	Opacity         string `json:"opacity"`
	FlexDirection   string `json:"flexDirection"`
	JustifyContent  string `json:"justifyContent"`
	AlignItems      string `json:"alignItems"`
	Gap             string `json:"gap"`
}

// ComputedStyleProperties lists the camelCase keys captured in ComputedStyles,
// in declaration order.
var ComputedStyleProperties = []string{
	"display", "position", "width", "height", "minWidth", "minHeight", "maxWidth", "maxHeight",
	"marginTop", "marginRight", "marginBottom", "marginLeft",
	"paddingTop", "paddingRight", "paddingBottom", "paddingLeft",
	"color", "backgroundColor", "fontSize", "fontWeight", "fontFamily", "lineHeight", "textAlign",
	"borderRadius", "borderWidth", "borderColor", "borderStyle", "opacity",
	"flexDirection", "justifyContent", "alignItems", "gap",
}

// Set assigns a computed property by its camelCase key. Unknown keys are ignored.
func (c *ComputedStyles) Set(property, value string) {
	if p := c.field(property); p != nil {
		*p = value
	}
}

// Get returns a computed property by its camelCase key.
func (c *ComputedStyles) Get(property string) string {
	if p := c.field(property); p != nil {
		return *p
	}
	return ""
}

func (c *ComputedStyles) field(property string) *string {
	switch property {
	case "display":
		return &c.Display
	case "position":
		return &c.Position
	case "width":
		return &c.Width
	case "height":
		return &c.Height
	case "minWidth":
		return &c.MinWidth
	case "minHeight":
		return &c.MinHeight
	case "maxWidth":
		return &c.MaxWidth
	case "maxHeight":
		return &c.MaxHeight
	case "marginTop":
		return &c.MarginTop
	case "marginRight":
		return &c.MarginRight
	case "marginBottom":
		return &c.MarginBottom
	case "marginLeft":
		return &c.MarginLeft
	case "paddingTop":
		return &c.PaddingTop
	case "paddingRight":
		return &c.PaddingRight
	case "paddingBottom":
		return &c.PaddingBottom
	case "paddingLeft":
		return &c.PaddingLeft
	case "color":
		return &c.Color
	case "backgroundColor":
		return &c.BackgroundColor
	case "fontSize":
		return &c.FontSize
	case "fontWeight":
		return &c.FontWeight
	case "fontFamily":
		return &c.FontFamily
	case "lineHeight":
		return &c.LineHeight
	case "textAlign":
		return &c.TextAlign
	case "borderRadius":
		return &c.BorderRadius
	case "borderWidth":
		return &c.BorderWidth
	case "borderColor":
		return &c.BorderColor
	case "borderStyle":
		return &c.BorderStyle
	case "opacity":
		return &c.Opacity
	case "flexDirection":
		return &c.FlexDirection
	case "justifyContent":
		return &c.JustifyContent
	case "alignItems":
		return &c.AlignItems
	case "gap":
		return &c.Gap
	}
	return nil
}

// ElementInfo is a snapshot of one DOM node taken when it is hovered or
// selected inside the preview iframe. It is never persisted.
type ElementInfo struct {
	// ID is the stable data-ve-id assigned on first contact
	ID string `json:"id"`
	// TagName is the lower-case element name
	TagName string `json:"tagName"`
	// TextContent is the value of the first direct text node
	TextContent string `json:"textContent"`
	// ComputedStyles holds the browser computed style snapshot
	ComputedStyles ComputedStyles `json:"computedStyles"`
	// InlineStyles is the raw property map from the style attribute
	InlineStyles map[string]string `json:"inlineStyles"`
	// ClassName is the raw class attribute
	ClassName string `json:"className"`
	Rect      Rect   `json:"rect"`
	// SourceFile and SourceLine are only present when the build step injected
	// data-ve-file and data-ve-line
	SourceFile  string   `json:"sourceFile,omitempty"`
	SourceLine  int      `json:"sourceLine,omitempty"`
	IsContainer bool     `json:"isContainer"`
	ParentID    string   `json:"parentId,omitempty"`
	ChildrenIDs []string `json:"childrenIds,omitempty"`
}

// HasSource reports whether the element can be mapped back to a source file.
// Without it only DOM-level editing is possible.
func (e *ElementInfo) HasSource() bool {
	return e != nil && e.SourceFile != "" && e.SourceLine > 0
}

// StyleChange is one requested mutation of an element.
type StyleChange struct {
	// Property is a ComputedStyles key or TextContentProperty
	Property string `json:"property"`
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
	// UseTailwind routes the change to the className instead of the style attribute
	UseTailwind bool `json:"useTailwind"`
	// TailwindClass is an optional precomputed utility class
	TailwindClass string `json:"tailwindClass,omitempty"`
}

// IsText reports whether the change targets text content.
func (c StyleChange) IsText() bool {
	return c.Property == TextContentProperty
}

// HistoryEntry is one undoable step in the edit history.
type HistoryEntry struct {
	ID          string        `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	ElementID   string        `json:"elementId"`
	Changes     []StyleChange `json:"changes"`
	Description string        `json:"description"`

	// ProjectID, FilePath, Before and After record the file text around the
	// edit so the server can undo and redo it.
	ProjectID string `json:"projectId,omitempty"`
	FilePath  string `json:"filePath,omitempty"`
	Before    string `json:"-"`
	After     string `json:"-"`
}

// ContainerTags are tag names classified as containers for ElementInfo.IsContainer
// and as valid drop targets in placement mode.
var ContainerTags = map[string]bool{
	"div":     true,
	"section": true,
	"main":    true,
	"article": true,
	"aside":   true,
	"header":  true,
	"footer":  true,
	"nav":     true,
	"form":    true,
	"ul":      true,
	"ol":      true,
	"li":      true,
	"body":    true,
}

// IsContainerTag reports whether tag (any case) is a container tag.
func IsContainerTag(tag string) bool {
	return ContainerTags[strings.ToLower(tag)]
}
