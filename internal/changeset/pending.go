// Package changeset holds edits that have been requested but not yet
// persisted, and the undo/redo history of persisted edits.
package changeset

import (
	"sort"
	"sync"

	"github.com/conneroisu/vedit/internal/types"
)

// Pending maps element IDs to their outstanding style changes. Each element
// holds at most one change per property; setting a property again replaces
// the earlier change in place.
type Pending struct {
	mu      sync.RWMutex
	changes map[string][]types.StyleChange
}

// NewPending returns an empty pending set.
func NewPending() *Pending {
	return &Pending{changes: make(map[string][]types.StyleChange)}
}

// Set records change for elementID, overwriting any change to the same property.
func (p *Pending) Set(elementID string, change types.StyleChange) {
	p.mu.Lock()
	defer p.mu.Unlock()

	list := p.changes[elementID]
	for i := range list {
		if list[i].Property == change.Property {
			list[i] = change
			return
		}
	}
	p.changes[elementID] = append(list, change)
}

// SetAll records several changes for one element in order.
func (p *Pending) SetAll(elementID string, changes []types.StyleChange) {
	for _, change := range changes {
		p.Set(elementID, change)
	}
}

// Get returns a copy of the changes for elementID.
func (p *Pending) Get(elementID string) []types.StyleChange {
	p.mu.RLock()
	defer p.mu.RUnlock()

	list := p.changes[elementID]
	if len(list) == 0 {
		return nil
	}
	out := make([]types.StyleChange, len(list))
	copy(out, list)
	return out
}

// ElementIDs returns the elements with pending changes, sorted.
func (p *Pending) ElementIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.changes))
	for id := range p.changes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clear drops the changes for one element, after a successful apply or when
// the element is deleted.
func (p *Pending) Clear(elementID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.changes, elementID)
}

// ClearAll drops every pending change.
func (p *Pending) ClearAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = make(map[string][]types.StyleChange)
}

// Len returns the number of elements with pending changes.
func (p *Pending) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.changes)
}
