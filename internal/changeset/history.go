package changeset

import (
	"sync"
	"time"

	"github.com/conneroisu/vedit/internal/types"
	"github.com/google/uuid"
)

// DefaultHistoryLimit caps the number of retained entries.
const DefaultHistoryLimit = 50

// History is a linear undo/redo log. index points at the most recently
// applied entry and is -1 when nothing is applied.
type History struct {
	mu      sync.RWMutex
	entries []types.HistoryEntry
	index   int
	limit   int
	now     func() time.Time
}

// NewHistory returns an empty history holding at most limit entries. A
// non-positive limit uses DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{index: -1, limit: limit, now: time.Now}
}

// Push appends entry after the current position. Entries that were undone
// are discarded, and the oldest entry is dropped once the limit is exceeded.
// A missing ID or timestamp is filled in.
func (h *History) Push(entry types.HistoryEntry) types.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = h.now()
	}

	h.entries = append(h.entries[:h.index+1], entry)
	if len(h.entries) > h.limit {
		h.entries = append([]types.HistoryEntry(nil), h.entries[len(h.entries)-h.limit:]...)
	}
	h.index = len(h.entries) - 1
	return entry
}

// Undo steps back and returns the entry to revert.
func (h *History) Undo() (types.HistoryEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index < 0 {
		return types.HistoryEntry{}, false
	}
	entry := h.entries[h.index]
	h.index--
	return entry, true
}

// Redo steps forward and returns the entry to reapply.
func (h *History) Redo() (types.HistoryEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index >= len(h.entries)-1 {
		return types.HistoryEntry{}, false
	}
	h.index++
	return h.entries[h.index], true
}

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.index >= 0
}

// CanRedo reports whether Redo would succeed.
func (h *History) CanRedo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.index < len(h.entries)-1
}

// Index returns the position of the most recently applied entry.
func (h *History) Index() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.index
}

// Entries returns a copy of the log, oldest first.
func (h *History) Entries() []types.HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]types.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}
