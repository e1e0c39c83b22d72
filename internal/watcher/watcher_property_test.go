//go:build property
// +build property

package watcher

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestDebouncerProperties checks batch shape for arbitrary event sequences.
func TestDebouncerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9876)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	flushed := func(indices []int) []ChangeEvent {
		d := newDebouncer(time.Hour)
		for i, idx := range indices {
			d.addEvent(ChangeEvent{Type: EventType(i % 4), Path: fmt.Sprintf("src/f%d.tsx", idx)})
		}
		if d.timer != nil {
			d.timer.Stop()
		}
		d.flush()
		select {
		case events := <-d.output:
			return events
		default:
			return nil
		}
	}

	properties.Property("one event per distinct path", prop.ForAll(
		func(indices []int) bool {
			distinct := make(map[int]bool)
			for _, idx := range indices {
				distinct[idx] = true
			}
			return len(flushed(indices)) == len(distinct)
		},
		gen.SliceOf(gen.IntRange(0, 15)),
	))

	properties.Property("batches are sorted by path", prop.ForAll(
		func(indices []int) bool {
			events := flushed(indices)
			return sort.SliceIsSorted(events, func(i, j int) bool { return events[i].Path < events[j].Path })
		},
		gen.SliceOf(gen.IntRange(0, 15)),
	))

	properties.Property("last event for a path wins", prop.ForAll(
		func(indices []int) bool {
			last := make(map[string]EventType)
			for i, idx := range indices {
				last[fmt.Sprintf("src/f%d.tsx", idx)] = EventType(i % 4)
			}
			for _, event := range flushed(indices) {
				if last[event.Path] != event.Type {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 15)),
	))

	properties.TestingRun(t)
}
