package patch

import "strings"

// Strategy applies one operation to the current buffer. anchor is the byte
// offset of the element's opening tag in the original code.
type Strategy interface {
	Name() string
	Apply(code string, op Operation, anchor int) (string, bool)
}

// GlobalExactMatch replaces the search text when it occurs exactly once in
// the whole buffer. Repeated markup falls through to the scoped strategy so
// an identical element elsewhere is never edited.
type GlobalExactMatch struct{}

// Name returns the strategy name
func (GlobalExactMatch) Name() string { return "global-exact" }

// Apply replaces a unique occurrence of op.Search
func (GlobalExactMatch) Apply(code string, op Operation, _ int) (string, bool) {
	if op.Search == "" || strings.Count(code, op.Search) != 1 {
		return code, false
	}
	return strings.Replace(code, op.Search, op.Replace, 1), true
}

// ScopedToElementTail replaces the first occurrence at or after the
// element's opening tag. Edits only ever touch text from the anchor onward,
// so the anchor stays valid across sequential operations.
type ScopedToElementTail struct{}

// Name returns the strategy name
func (ScopedToElementTail) Name() string { return "scoped-tail" }

// Apply replaces the first occurrence of op.Search after anchor
func (ScopedToElementTail) Apply(code string, op Operation, anchor int) (string, bool) {
	if op.Search == "" || anchor < 0 || anchor > len(code) {
		return code, false
	}
	idx := strings.Index(code[anchor:], op.Search)
	if idx < 0 {
		return code, false
	}
	idx += anchor
	return code[:idx] + op.Replace + code[idx+len(op.Search):], true
}

// DefaultStrategies is the order operations are tried in.
func DefaultStrategies() []Strategy {
	return []Strategy{GlobalExactMatch{}, ScopedToElementTail{}}
}
