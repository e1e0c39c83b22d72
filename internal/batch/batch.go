// Package batch applies edits to several elements of one file in a single
// request to a batch code-edit endpoint. It does not locate elements; the
// endpoint's response is trusted as the new file text.
package batch

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	veditErrors "github.com/conneroisu/vedit/internal/errors"
	"github.com/conneroisu/vedit/internal/llm"
	"github.com/conneroisu/vedit/internal/logging"
	"github.com/conneroisu/vedit/internal/types"
)

// textSearchRadius is how many lines either side of the source line are
// searched for the element's original text.
const textSearchRadius = 2

var inlineTextPattern = regexp.MustCompile(`>([^<>{}]+)<`)

// ElementEdit is the set of changes for one element.
type ElementEdit struct {
	ElementID  string              `json:"elementId"`
	SourceLine int                 `json:"sourceLine"`
	Changes    []types.StyleChange `json:"changes"`
}

// Result is the outcome of a batch edit.
type Result struct {
	Success     bool   `json:"success"`
	UpdatedCode string `json:"updatedCode"`
	Error       string `json:"error,omitempty"`
	Elements    int    `json:"elements"`
}

// Orchestrator sends batch edits to a BatchEditor.
type Orchestrator struct {
	client llm.BatchEditor
	logger logging.Logger
}

// NewOrchestrator creates an orchestrator. A nil logger discards output.
func NewOrchestrator(client llm.BatchEditor, logger logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Orchestrator{
		client: client,
		logger: logger.WithComponent("batch"),
	}
}

// Apply sends code and one intent per edit to the endpoint. On any failure
// UpdatedCode is code unchanged.
func (o *Orchestrator) Apply(ctx context.Context, code string, edits []ElementEdit) (Result, error) {
	result := Result{UpdatedCode: code, Elements: len(edits)}
	if len(edits) == 0 {
		result.Error = "No applicable changes"
		return result, nil
	}

	lines := strings.Split(code, "\n")
	intents := make([]llm.ElementIntent, 0, len(edits))
	for _, edit := range edits {
		intents = append(intents, llm.ElementIntent{
			ElementID:    edit.ElementID,
			SourceLine:   edit.SourceLine,
			OriginalText: OriginalText(lines, edit.SourceLine),
			Instructions: Describe(edit.Changes),
		})
	}

	response, err := o.client.BatchEdit(ctx, llm.BatchRequest{Code: code, Edits: intents})
	if err != nil {
		result.Error = err.Error()
		o.logger.Error(ctx, err, "Batch edit request failed", "elements", len(edits))
		if !veditErrors.IsNetworkError(err) && !veditErrors.IsType(err, veditErrors.ErrorTypeConfig) {
			err = veditErrors.NewAIError(veditErrors.ErrCodeAIRequest, "batch edit request failed", err)
		}
		return result, err
	}

	updated := llm.StripFences(response)
	if strings.TrimSpace(updated) == "" {
		result.Error = "empty response from batch endpoint"
		o.logger.Warn(ctx, nil, "Batch edit rejected", "reason", result.Error)
		return result, nil
	}

	result.UpdatedCode = updated
	result.Success = true
	o.logger.Info(ctx, "Batch edit applied", "elements", len(edits))
	return result, nil
}

// OriginalText returns the first single-line text content found within two
// lines of the 1-based sourceLine, nearest line first.
func OriginalText(lines []string, sourceLine int) string {
	target := sourceLine - 1
	for offset := 0; offset <= textSearchRadius; offset++ {
		for _, i := range []int{target + offset, target - offset} {
			if i < 0 || i >= len(lines) {
				continue
			}
			for _, m := range inlineTextPattern.FindAllStringSubmatch(lines[i], -1) {
				if text := strings.TrimSpace(m[1]); text != "" {
					return text
				}
			}
			if offset == 0 {
				break
			}
		}
	}
	return ""
}

// Describe renders one element's changes as a single instruction line.
func Describe(changes []types.StyleChange) string {
	parts := make([]string, 0, len(changes))
	for _, change := range changes {
		switch {
		case change.IsText():
			parts = append(parts, fmt.Sprintf("change the text to %q", change.NewValue))
		case change.NewValue == "":
			parts = append(parts, "remove "+change.Property)
		case change.TailwindClass != "":
			parts = append(parts, fmt.Sprintf("set %s to %s (Tailwind class %s)", change.Property, change.NewValue, change.TailwindClass))
		case change.UseTailwind:
			parts = append(parts, fmt.Sprintf("set %s to %s using Tailwind", change.Property, change.NewValue))
		default:
			parts = append(parts, fmt.Sprintf("set %s to %s inline", change.Property, change.NewValue))
		}
	}
	return strings.Join(parts, "; ")
}
