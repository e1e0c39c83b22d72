// Package tracker is the preview-side element tracker as a Go state machine.
// It mirrors the injected browser script: hover, selection, resize handles,
// deletion, drag-and-drop placement and live preview over a DOM interface.
//
// A Controller is single-threaded. Callers deliver events one at a time, the
// way the browser event loop does.
package tracker

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/conneroisu/vedit/internal/protocol"
	"github.com/conneroisu/vedit/internal/tailwind"
	"github.com/conneroisu/vedit/internal/types"
	"github.com/microcosm-cc/bluemonday"
)

const (
	// MinSize is the smallest width or height a resize gesture produces.
	MinSize = 20
	// HandleSize is the edge length of a resize handle.
	HandleSize = 8

	idAttr   = "data-ve-id"
	fileAttr = "data-ve-file"
	lineAttr = "data-ve-line"
)

// HandleDirections are the compass points of the eight resize handles.
var HandleDirections = []string{"nw", "n", "ne", "e", "se", "s", "sw", "w"}

// ExcludedTags are never hovered or selected.
var ExcludedTags = map[string]bool{
	"html":     true,
	"head":     true,
	"script":   true,
	"style":    true,
	"meta":     true,
	"link":     true,
	"title":    true,
	"noscript": true,
}

// Overlay kinds.
const (
	OverlayHover     = "hover"
	OverlaySelection = "selection"
	OverlayHandle    = "handle"
	OverlayDrop      = "drop"
)

// Overlay is a box drawn over the page.
type Overlay struct {
	Kind      string     `json:"kind"`
	ElementID string     `json:"elementId,omitempty"`
	Handle    string     `json:"handle,omitempty"`
	Rect      types.Rect `json:"rect"`
}

// Modifiers are the keyboard modifiers held during a click.
type Modifiers struct {
	Ctrl  bool `json:"ctrl,omitempty"`
	Meta  bool `json:"meta,omitempty"`
	Shift bool `json:"shift,omitempty"`
}

// Emitter receives every message the controller sends to the parent.
type Emitter func(protocol.Message)

type resizeGesture struct {
	id             string
	el             Element
	dir            string
	startX, startY float64
	width, height  float64
}

type placement struct {
	elementType string
	content     string
	target      Element
	position    string
}

// Controller owns all tracker state for one document.
type Controller struct {
	dom  DOM
	emit Emitter

	enabled bool
	hovered Element
	// selection order is preserved for ELEMENT_SELECTED
	selectedIDs []string
	selected    map[string]Element
	resize      *resizeGesture
	placing     *placement
	nextID      int

	sanitizer *bluemonday.Policy
}

// New creates a disabled controller over dom. A nil emitter drops messages.
func New(dom DOM, emit Emitter) *Controller {
	if emit == nil {
		emit = func(protocol.Message) {}
	}
	return &Controller{
		dom:       dom,
		emit:      emit,
		selected:  make(map[string]Element),
		nextID:    1,
		sanitizer: newSanitizer(),
	}
}

// Enabled reports whether tracking is on.
func (c *Controller) Enabled() bool { return c.enabled }

// Resizing reports whether a resize gesture is active.
func (c *Controller) Resizing() bool { return c.resize != nil }

// Placing reports whether placement mode is active.
func (c *Controller) Placing() bool { return c.placing != nil }

// Hovered returns the hovered element id, or "".
func (c *Controller) Hovered() string {
	if c.hovered == nil {
		return ""
	}
	return c.dom.Attr(c.hovered, idAttr)
}

// Selected returns the selected element ids in selection order.
func (c *Controller) Selected() []string {
	out := make([]string, len(c.selectedIDs))
	copy(out, c.selectedIDs)
	return out
}

// SetEnabled turns tracking on or off. Disabling clears hover, selection,
// placement and any resize gesture without emitting selection messages.
func (c *Controller) SetEnabled(enabled bool) {
	c.enabled = enabled
	if enabled {
		return
	}
	c.setHover(nil)
	c.clearSelection()
	c.placing = nil
	c.resize = nil
}

// Overlays returns every box currently drawn: the hover box, each selection
// box followed by its handles, then the drop indicator.
func (c *Controller) Overlays() []Overlay {
	var out []Overlay
	if c.hovered != nil {
		out = append(out, Overlay{Kind: OverlayHover, ElementID: c.Hovered(), Rect: c.dom.Rect(c.hovered)})
	}
	for _, id := range c.selectedIDs {
		r := c.dom.Rect(c.selected[id])
		out = append(out, Overlay{Kind: OverlaySelection, ElementID: id, Rect: r})
		for _, dir := range HandleDirections {
			out = append(out, Overlay{Kind: OverlayHandle, ElementID: id, Handle: dir, Rect: handleRect(dir, r)})
		}
	}
	if c.placing != nil && c.placing.target != nil {
		out = append(out, Overlay{
			Kind:      OverlayDrop,
			ElementID: c.dom.Attr(c.placing.target, idAttr),
			Rect:      c.dom.Rect(c.placing.target),
		})
	}
	return out
}

// ensureID returns the element's data-ve-id, minting ve-N when missing.
func (c *Controller) ensureID(el Element) string {
	if id := c.dom.Attr(el, idAttr); id != "" {
		return id
	}
	for {
		id := "ve-" + strconv.Itoa(c.nextID)
		c.nextID++
		if c.dom.Find(idAttr, id) == nil {
			c.dom.SetAttr(el, idAttr, id)
			return id
		}
	}
}

// Info snapshots an element.
func (c *Controller) Info(el Element) types.ElementInfo {
	tag := strings.ToLower(c.dom.Tag(el))
	info := types.ElementInfo{
		ID:             c.ensureID(el),
		TagName:        tag,
		TextContent:    c.dom.Text(el),
		ComputedStyles: c.dom.Computed(el),
		InlineStyles:   c.dom.InlineStyles(el),
		ClassName:      c.dom.Attr(el, "class"),
		Rect:           c.dom.Rect(el),
		SourceFile:     c.dom.Attr(el, fileAttr),
		IsContainer:    types.IsContainerTag(tag),
	}
	if line, err := strconv.Atoi(c.dom.Attr(el, lineAttr)); err == nil {
		info.SourceLine = line
	}
	if parent := c.dom.Parent(el); parent != nil && strings.ToLower(c.dom.Tag(parent)) != "html" {
		info.ParentID = c.ensureID(parent)
	}
	for _, child := range c.dom.Children(el) {
		info.ChildrenIDs = append(info.ChildrenIDs, c.ensureID(child))
	}
	return info
}

func (c *Controller) send(t protocol.MessageType, payload interface{}) {
	c.emit(protocol.MustNew(t, payload))
}

func (c *Controller) trackable(el Element) bool {
	return el != nil && !ExcludedTags[strings.ToLower(c.dom.Tag(el))] && !c.dom.Hidden(el)
}

// HandleMouseMove processes pointer movement.
func (c *Controller) HandleMouseMove(x, y float64) {
	if !c.enabled {
		return
	}
	if c.resize != nil {
		c.resizeMove(x, y)
		return
	}
	if c.placing != nil {
		c.placementMove(x, y)
		return
	}

	el := c.dom.ElementAt(x, y)
	if !c.trackable(el) {
		return
	}
	if _, ok := c.selected[c.dom.Attr(el, idAttr)]; ok {
		c.setHover(nil)
		return
	}
	c.setHover(el)
}

func (c *Controller) setHover(el Element) {
	if el == c.hovered {
		return
	}
	c.hovered = el
	if el == nil {
		c.send(protocol.TypeElementHovered, protocol.HoveredPayload{})
		return
	}
	info := c.Info(el)
	c.send(protocol.TypeElementHovered, protocol.HoveredPayload{Element: &info})
}

// HandleClick processes a click. Clicks on resize handles are ignored.
func (c *Controller) HandleClick(x, y float64, mods Modifiers) {
	if !c.enabled {
		return
	}
	if _, _, ok := c.handleAt(x, y); ok {
		return
	}
	if c.placing != nil {
		c.drop()
		return
	}

	el := c.dom.ElementAt(x, y)
	if !c.trackable(el) {
		return
	}
	id := c.ensureID(el)
	multi := mods.Ctrl || mods.Meta

	if multi {
		if _, ok := c.selected[id]; ok {
			c.unselect(id)
			c.send(protocol.TypeElementDeselected, protocol.ElementIDPayload{ElementID: id})
			c.emitSelection(true)
			return
		}
	} else {
		c.clearSelection()
	}

	if c.hovered == el {
		c.hovered = nil
	}
	c.selectedIDs = append(c.selectedIDs, id)
	c.selected[id] = el
	c.emitSelection(multi)
}

func (c *Controller) emitSelection(multi bool) {
	elements := make([]types.ElementInfo, 0, len(c.selectedIDs))
	for _, id := range c.selectedIDs {
		elements = append(elements, c.Info(c.selected[id]))
	}
	c.send(protocol.TypeElementSelected, protocol.SelectedPayload{Elements: elements, IsMultiSelect: multi})
}

func (c *Controller) unselect(id string) {
	if _, ok := c.selected[id]; !ok {
		return
	}
	delete(c.selected, id)
	for i, sid := range c.selectedIDs {
		if sid == id {
			c.selectedIDs = append(c.selectedIDs[:i], c.selectedIDs[i+1:]...)
			break
		}
	}
}

func (c *Controller) clearSelection() {
	c.selectedIDs = nil
	c.selected = make(map[string]Element)
}

// handleRect centers a handle square on the compass point of r.
func handleRect(dir string, r types.Rect) types.Rect {
	x := r.Left + r.Width/2
	y := r.Top + r.Height/2
	if strings.Contains(dir, "w") {
		x = r.Left
	} else if strings.Contains(dir, "e") {
		x = r.Right
	}
	if strings.Contains(dir, "n") {
		y = r.Top
	} else if strings.Contains(dir, "s") {
		y = r.Bottom
	}
	return types.NewRect(x-HandleSize/2, y-HandleSize/2, HandleSize, HandleSize)
}

// handleAt returns the selected element id and direction of the handle under
// the point.
func (c *Controller) handleAt(x, y float64) (string, string, bool) {
	for i := len(c.selectedIDs) - 1; i >= 0; i-- {
		id := c.selectedIDs[i]
		r := c.dom.Rect(c.selected[id])
		for _, dir := range HandleDirections {
			if handleRect(dir, r).Contains(x, y) {
				return id, dir, true
			}
		}
	}
	return "", "", false
}

// HandleMouseDown starts a resize gesture when the press lands on a handle.
// Only one gesture is active at a time.
func (c *Controller) HandleMouseDown(x, y float64) {
	if !c.enabled || c.resize != nil {
		return
	}
	id, dir, ok := c.handleAt(x, y)
	if !ok {
		return
	}
	el := c.selected[id]
	r := c.dom.Rect(el)
	c.resize = &resizeGesture{
		id:     id,
		el:     el,
		dir:    dir,
		startX: x,
		startY: y,
		width:  r.Width,
		height: r.Height,
	}
}

func (c *Controller) resizeMove(x, y float64) {
	g := c.resize
	dx, dy := x-g.startX, y-g.startY
	width, height := g.width, g.height

	if strings.Contains(g.dir, "e") {
		width = g.width + dx
	} else if strings.Contains(g.dir, "w") {
		width = g.width - dx
	}
	if strings.Contains(g.dir, "s") {
		height = g.height + dy
	} else if strings.Contains(g.dir, "n") {
		height = g.height - dy
	}

	c.dom.SetStyle(g.el, "width", px(math.Max(MinSize, width)))
	c.dom.SetStyle(g.el, "height", px(math.Max(MinSize, height)))
	c.sendResized(g.id, g.el)
}

// HandleMouseUp ends a resize gesture with a final ELEMENT_RESIZED.
func (c *Controller) HandleMouseUp(_, _ float64) {
	if c.resize == nil {
		return
	}
	g := c.resize
	c.resize = nil
	c.sendResized(g.id, g.el)
}

func (c *Controller) sendResized(id string, el Element) {
	c.send(protocol.TypeElementResized, protocol.ResizedPayload{ElementID: id, NewRect: c.dom.Rect(el)})
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// HandleKeyDown processes a key press by its DOM key name.
func (c *Controller) HandleKeyDown(key string) {
	if !c.enabled {
		return
	}
	if key == "Escape" && c.placing != nil {
		c.placing = nil
		c.send(protocol.TypeDragCancelled, nil)
		return
	}
	if (key == "Delete" || key == "Backspace") && !c.dom.FocusInTextInput() {
		if len(c.selectedIDs) == 0 {
			return
		}
		ids := c.Selected()
		for _, id := range ids {
			el := c.selected[id]
			c.unselect(id)
			if c.hovered == el {
				c.hovered = nil
			}
			c.dom.Remove(el)
			c.send(protocol.TypeElementDeleted, protocol.DeletedPayload{ElementID: id, Success: true})
		}
		c.send(protocol.TypeClearSelection, nil)
	}
}

// HandleScroll re-reads rects after a scroll or viewport resize. Overlay
// rects are derived on demand, so only stale placement state is dropped.
func (c *Controller) HandleScroll() {
	if c.placing != nil && c.placing.target != nil && c.dom.Parent(c.placing.target) == nil {
		c.placing.target = nil
	}
}

// containerFor walks up from el to the nearest container element.
func (c *Controller) containerFor(el Element) Element {
	for el != nil {
		if types.IsContainerTag(c.dom.Tag(el)) {
			return el
		}
		el = c.dom.Parent(el)
	}
	return nil
}

// DropPosition picks before, inside or after from the point's vertical
// position within r: the top quarter is before, the bottom quarter after.
func DropPosition(r types.Rect, y float64) string {
	offset := y - r.Top
	switch {
	case offset < r.Height/4:
		return protocol.PositionBefore
	case offset > r.Height*3/4:
		return protocol.PositionAfter
	default:
		return protocol.PositionInside
	}
}

func (c *Controller) placementMove(x, y float64) {
	target := c.containerFor(c.dom.ElementAt(x, y))
	c.placing.target = target
	if target == nil {
		return
	}
	c.placing.position = DropPosition(c.dom.Rect(target), y)
}

func (c *Controller) drop() {
	p := c.placing
	c.placing = nil
	if p.target == nil || strings.TrimSpace(p.content) == "" {
		return
	}

	markup := strings.TrimSpace(c.sanitizer.Sanitize(JSXToHTML(p.content)))
	if markup == "" {
		return
	}
	node, err := c.dom.Insert(p.target, p.position, markup)
	if err != nil || node == nil {
		return
	}

	c.send(protocol.TypeElementInserted, protocol.InsertedPayload{
		ElementID:       c.ensureID(node),
		Content:         p.content,
		TargetElementID: c.ensureID(p.target),
		Position:        p.position,
	})
}

// HandleMessage processes a message from the parent.
func (c *Controller) HandleMessage(msg protocol.Message) error {
	switch msg.Type {
	case protocol.TypeVisualEditorInit, protocol.TypeVisualEditorToggle:
		var p protocol.EnabledPayload
		if err := protocol.DecodePayload(msg, &p); err != nil {
			return err
		}
		c.SetEnabled(p.Enabled)

	case protocol.TypeApplyStyle:
		var p protocol.ApplyStylePayload
		if err := protocol.DecodePayload(msg, &p); err != nil {
			return err
		}
		el := c.dom.Find(idAttr, p.ElementID)
		if el == nil {
			return nil
		}
		for _, change := range p.Changes {
			if change.IsText() {
				c.dom.SetText(el, change.NewValue)
				continue
			}
			c.dom.SetStyle(el, tailwind.ToCSSProperty(change.Property), change.NewValue)
		}

	case protocol.TypeUpdateText:
		var p protocol.UpdateTextPayload
		if err := protocol.DecodePayload(msg, &p); err != nil {
			return err
		}
		if el := c.dom.Find(idAttr, p.ElementID); el != nil {
			c.dom.SetText(el, p.Text)
		}

	case protocol.TypeDeleteElement:
		var p protocol.ElementIDPayload
		if err := protocol.DecodePayload(msg, &p); err != nil {
			return err
		}
		el := c.dom.Find(idAttr, p.ElementID)
		if el != nil {
			c.unselect(p.ElementID)
			if c.hovered == el {
				c.hovered = nil
			}
			c.dom.Remove(el)
		}
		c.send(protocol.TypeElementDeleted, protocol.DeletedPayload{ElementID: p.ElementID, Success: el != nil})

	case protocol.TypeResizeElement:
		var p protocol.ResizeElementPayload
		if err := protocol.DecodePayload(msg, &p); err != nil {
			return err
		}
		el := c.dom.Find(idAttr, p.ElementID)
		if el == nil {
			return nil
		}
		if p.Width != nil {
			c.dom.SetStyle(el, "width", px(math.Max(MinSize, *p.Width)))
		}
		if p.Height != nil {
			c.dom.SetStyle(el, "height", px(math.Max(MinSize, *p.Height)))
		}
		c.sendResized(p.ElementID, el)

	case protocol.TypeClearSelection:
		c.clearSelection()

	case protocol.TypeApplyThemePreview:
		var p protocol.ThemePreviewPayload
		if err := protocol.DecodePayload(msg, &p); err != nil {
			return err
		}
		names := make([]string, 0, len(p.ThemeVars))
		for name := range p.ThemeVars {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			prop := name
			if !strings.HasPrefix(prop, "--") {
				prop = "--" + prop
			}
			c.dom.SetRootProperty(prop, p.ThemeVars[name])
		}
		c.send(protocol.TypeThemePreviewApplied, protocol.ThemeResultPayload{Success: true, VarsCount: len(names)})

	case protocol.TypeClearThemePreview:
		for _, name := range c.dom.RootProperties() {
			if strings.HasPrefix(name, "--") {
				c.dom.RemoveRootProperty(name)
			}
		}
		c.send(protocol.TypeThemePreviewCleared, protocol.ThemeResultPayload{Success: true})

	case protocol.TypeDragElementStart:
		var p protocol.DragStartPayload
		if err := protocol.DecodePayload(msg, &p); err != nil {
			return err
		}
		if c.enabled {
			c.placing = &placement{
				elementType: p.ElementType,
				content:     p.Content,
				position:    protocol.PositionInside,
			}
		}

	case protocol.TypeDragElementEnd:
		c.placing = nil

	default:
		return fmt.Errorf("unexpected message %s", msg.Type)
	}
	return nil
}
