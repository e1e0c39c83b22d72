// Package protocol defines the messages exchanged between the preview
// iframe tracker and the editor: typed payloads wrapped in a
// {type, payload} envelope.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/conneroisu/vedit/internal/types"
)

// MessageType names a message.
type MessageType string

// Parent to iframe.
const (
	TypeVisualEditorInit   MessageType = "VISUAL_EDITOR_INIT"
	TypeVisualEditorToggle MessageType = "VISUAL_EDITOR_TOGGLE"
	TypeApplyStyle         MessageType = "APPLY_STYLE"
	TypeUpdateText         MessageType = "UPDATE_TEXT"
	TypeDeleteElement      MessageType = "DELETE_ELEMENT"
	TypeResizeElement      MessageType = "RESIZE_ELEMENT"
	TypeApplyThemePreview  MessageType = "APPLY_THEME_PREVIEW"
	TypeClearThemePreview  MessageType = "CLEAR_THEME_PREVIEW"
	TypeDragElementStart   MessageType = "DRAG_ELEMENT_START"
	TypeDragElementEnd     MessageType = "DRAG_ELEMENT_END"
)

// Iframe to parent.
const (
	TypeElementHovered      MessageType = "ELEMENT_HOVERED"
	TypeElementSelected     MessageType = "ELEMENT_SELECTED"
	TypeElementDeselected   MessageType = "ELEMENT_DESELECTED"
	TypeElementDeleted      MessageType = "ELEMENT_DELETED"
	TypeElementResized      MessageType = "ELEMENT_RESIZED"
	TypeThemePreviewApplied MessageType = "THEME_PREVIEW_APPLIED"
	TypeThemePreviewCleared MessageType = "THEME_PREVIEW_CLEARED"
	TypeElementInserted     MessageType = "ELEMENT_INSERTED"
	TypeDragCancelled       MessageType = "DRAG_CANCELLED"
)

// Both directions, and server to editor.
const (
	TypeClearSelection MessageType = "CLEAR_SELECTION"
	TypeFileChanged    MessageType = "FILE_CHANGED"
)

// Message is the wire envelope.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EnabledPayload is sent with VISUAL_EDITOR_INIT and VISUAL_EDITOR_TOGGLE.
type EnabledPayload struct {
	Enabled bool `json:"enabled"`
}

// HoveredPayload carries the hovered element, or nil when hover ends.
type HoveredPayload struct {
	Element *types.ElementInfo `json:"element"`
}

// SelectedPayload lists the whole selection after a change.
type SelectedPayload struct {
	Elements      []types.ElementInfo `json:"elements"`
	IsMultiSelect bool                `json:"isMultiSelect"`
}

// ElementIDPayload names one element.
type ElementIDPayload struct {
	ElementID string `json:"elementId"`
}

// ApplyStylePayload previews style changes live.
type ApplyStylePayload struct {
	ElementID string              `json:"elementId"`
	Changes   []types.StyleChange `json:"changes"`
}

// UpdateTextPayload previews a text change live.
type UpdateTextPayload struct {
	ElementID string `json:"elementId"`
	Text      string `json:"text"`
}

// DeletedPayload reports a deletion.
type DeletedPayload struct {
	ElementID string `json:"elementId"`
	Success   bool   `json:"success"`
}

// ResizeElementPayload resizes an element programmatically. Nil dimensions
// are left unchanged.
type ResizeElementPayload struct {
	ElementID string   `json:"elementId"`
	Width     *float64 `json:"width,omitempty"`
	Height    *float64 `json:"height,omitempty"`
}

// ResizedPayload reports an element's new bounds.
type ResizedPayload struct {
	ElementID string     `json:"elementId"`
	NewRect   types.Rect `json:"newRect"`
}

// ThemePreviewPayload sets CSS custom properties on the document root.
type ThemePreviewPayload struct {
	ThemeVars map[string]string `json:"themeVars"`
}

// ThemeResultPayload confirms a theme preview change.
type ThemeResultPayload struct {
	Success   bool `json:"success"`
	VarsCount int  `json:"varsCount,omitempty"`
}

// DragStartPayload enters placement mode.
type DragStartPayload struct {
	ElementType string `json:"elementType"`
	Content     string `json:"content"`
}

// Drop positions relative to the target element.
const (
	PositionBefore = "before"
	PositionAfter  = "after"
	PositionInside = "inside"
)

// InsertedPayload reports a completed drop.
type InsertedPayload struct {
	ElementID       string `json:"elementId"`
	Content         string `json:"content"`
	TargetElementID string `json:"targetElementId,omitempty"`
	Position        string `json:"position"`
}

// FileChangedPayload tells editors a project file changed on disk.
type FileChangedPayload struct {
	Path string `json:"path"`
}

// Empty is the payload of messages that carry none.
type Empty struct{}

// New builds a message, marshalling payload. A nil payload encodes as {}.
func New(t MessageType, payload interface{}) (Message, error) {
	if payload == nil {
		payload = Empty{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal %s payload: %w", t, err)
	}
	return Message{Type: t, Payload: raw}, nil
}

// MustNew is New for payloads that cannot fail to marshal.
func MustNew(t MessageType, payload interface{}) Message {
	msg, err := New(t, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Encode serializes a message.
func Encode(msg Message) ([]byte, error) {
	if msg.Payload == nil {
		msg.Payload = json.RawMessage(`{}`)
	}
	return json.Marshal(msg)
}

// Decode parses an envelope without interpreting the payload.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("failed to decode message: %w", err)
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("message has no type")
	}
	return msg, nil
}

// DecodePayload unmarshals msg's payload into out.
func DecodePayload(msg Message, out interface{}) error {
	if len(msg.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Payload, out); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", msg.Type, err)
	}
	return nil
}

// Known reports whether t is part of the protocol.
func Known(t MessageType) bool {
	switch t {
	case TypeVisualEditorInit, TypeVisualEditorToggle, TypeApplyStyle, TypeUpdateText,
		TypeDeleteElement, TypeResizeElement, TypeApplyThemePreview, TypeClearThemePreview,
		TypeDragElementStart, TypeDragElementEnd,
		TypeElementHovered, TypeElementSelected, TypeElementDeselected, TypeElementDeleted,
		TypeElementResized, TypeThemePreviewApplied, TypeThemePreviewCleared,
		TypeElementInserted, TypeDragCancelled,
		TypeClearSelection, TypeFileChanged:
		return true
	}
	return false
}
