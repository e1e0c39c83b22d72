// Package patch turns requested style and text changes for one JSX element
// into search/replace operations and applies them to the file text.
//
// The generator never touches bytes outside the located element: every
// operation's search text is anchored at the element's opening tag.
package patch

import (
	"context"
	"fmt"
	"strings"

	"github.com/conneroisu/vedit/internal/jsx"
	"github.com/conneroisu/vedit/internal/logging"
	"github.com/conneroisu/vedit/internal/types"
)

// Operation is one search/replace edit. Change names what it edits.
type Operation struct {
	Search  string `json:"search"`
	Replace string `json:"replace"`
	Change  string `json:"change"`
}

// FailedEdit is an operation, or a change that could not become one,
// together with the reason it was not applied.
type FailedEdit struct {
	Change string `json:"change"`
	Search string `json:"search,omitempty"`
	Reason string `json:"reason"`
}

// Result is the outcome of one edit request.
type Result struct {
	Success     bool          `json:"success"`
	UpdatedCode string        `json:"updatedCode"`
	Error       string        `json:"error,omitempty"`
	Applied     int           `json:"applied"`
	Failed      []FailedEdit  `json:"failed,omitempty"`
	Location    *jsx.Location `json:"location,omitempty"`
}

// Generator builds and applies element patches.
type Generator struct {
	logger     logging.Logger
	strategies []Strategy
}

// Option configures a Generator.
type Option func(*Generator)

// WithStrategies overrides the application strategies.
func WithStrategies(strategies ...Strategy) Option {
	return func(g *Generator) {
		g.strategies = strategies
	}
}

// NewGenerator returns a generator logging to logger (nil discards).
func NewGenerator(logger logging.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = logging.Nop()
	}
	g := &Generator{
		logger:     logger.WithComponent("patch"),
		strategies: DefaultStrategies(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateSearchReplaceEdit locates the element whose opening tag is at the
// 1-based sourceLine and applies changes to it. The input code is never
// modified; on failure UpdatedCode is the input unchanged.
func (g *Generator) GenerateSearchReplaceEdit(
	code, elementID string,
	changes []types.StyleChange,
	sourceFile string,
	sourceLine int,
) Result {
	ctx := context.Background()
	log := g.logger.With("element_id", elementID, "file", sourceFile, "line", sourceLine)

	lines := strings.Split(code, "\n")
	loc := jsx.FindElement(lines, sourceLine-1)
	if !loc.Found() {
		log.Warn(ctx, nil, "Element not located")
		return Result{
			UpdatedCode: code,
			Error:       fmt.Sprintf("Could not locate element at line %d", sourceLine),
		}
	}

	plan := newPlanner(lines, loc).build(changes)
	if len(plan.ops) == 0 && len(plan.failed) == 0 {
		return Result{
			UpdatedCode: code,
			Error:       "No applicable changes",
			Location:    &loc,
		}
	}

	anchor := jsx.Offset(lines, loc.StartLine, loc.StartColumn)
	result := g.Apply(code, plan.ops, anchor)
	result.Failed = append(plan.failed, result.Failed...)
	result.Location = &loc
	if len(result.Failed) > 0 {
		result.Error = fmt.Sprintf("%d of %d edits failed", len(result.Failed), len(result.Failed)+result.Applied)
		log.Warn(ctx, nil, "Some edits failed", "applied", result.Applied, "failed", len(result.Failed))
	}

	log.Debug(ctx, "Patch generated",
		"tag", loc.TagName,
		"operations", len(plan.ops),
		"applied", result.Applied,
	)
	return result
}

// Apply runs operations in order against an accumulating buffer. A failed
// operation is recorded and the rest still run.
func (g *Generator) Apply(code string, ops []Operation, anchor int) Result {
	current := code
	result := Result{}

	for _, op := range ops {
		applied := false
		for _, strategy := range g.strategies {
			next, ok := strategy.Apply(current, op, anchor)
			if !ok {
				continue
			}
			current = next
			applied = true
			g.logger.Debug(context.Background(), "Operation applied", "change", op.Change, "strategy", strategy.Name())
			break
		}
		if applied {
			result.Applied++
			continue
		}
		result.Failed = append(result.Failed, FailedEdit{
			Change: op.Change,
			Search: op.Search,
			Reason: "search text not found",
		})
	}

	result.Success = result.Applied > 0
	if result.Success {
		result.UpdatedCode = current
	} else {
		result.UpdatedCode = code
	}
	return result
}
