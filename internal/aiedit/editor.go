// Package aiedit is the AI-assisted fallback path for visual edits. It sends
// a bounded window of the file around the target line to a code-edit
// endpoint, validates the rewritten window and splices it back.
//
// Any failure leaves the file text untouched. There is no retry; callers
// decide whether to fall back to the deterministic patch generator.
package aiedit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	veditErrors "github.com/conneroisu/vedit/internal/errors"
	"github.com/conneroisu/vedit/internal/llm"
	"github.com/conneroisu/vedit/internal/logging"
	"github.com/conneroisu/vedit/internal/types"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultWindowRadius is the number of lines taken either side of the target.
	DefaultWindowRadius = 15
	// MaxBoundaryExpansion caps how far a window edge moves to reach a safe boundary.
	MaxBoundaryExpansion = 10
)

// Result is the outcome of an AI edit.
type Result struct {
	Success     bool   `json:"success"`
	UpdatedCode string `json:"updatedCode"`
	Error       string `json:"error,omitempty"`
	// StartLine and EndLine are the 0-based window bounds sent to the endpoint
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

// Editor runs AI fallback edits against a CodeEditor.
type Editor struct {
	client       llm.CodeEditor
	logger       logging.Logger
	radius       int
	maxLineRatio float64
}

// Option configures an Editor.
type Option func(*Editor)

// WithWindowRadius sets the window radius in lines.
func WithWindowRadius(radius int) Option {
	return func(e *Editor) {
		if radius > 0 {
			e.radius = radius
		}
	}
}

// WithMaxLineRatio sets the accepted relative line-count change.
func WithMaxLineRatio(ratio float64) Option {
	return func(e *Editor) {
		if ratio > 0 {
			e.maxLineRatio = ratio
		}
	}
}

// NewEditor creates an editor. A nil logger discards output.
func NewEditor(client llm.CodeEditor, logger logging.Logger, opts ...Option) *Editor {
	if logger == nil {
		logger = logging.Nop()
	}
	e := &Editor{
		client:       client,
		logger:       logger.WithComponent("aiedit"),
		radius:       DefaultWindowRadius,
		maxLineRatio: DefaultMaxLineRatio,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Edit asks the endpoint to apply changes to the element at the 1-based line.
// Validation failures are reported in the Result with a nil error; endpoint
// errors are returned as well.
func (e *Editor) Edit(
	ctx context.Context,
	code string,
	line int,
	changes []types.StyleChange,
	element *types.ElementInfo,
) (Result, error) {
	lines := strings.Split(code, "\n")
	if line < 1 || line > len(lines) {
		return Result{
			UpdatedCode: code,
			Error:       fmt.Sprintf("line %d is outside the file", line),
		}, nil
	}
	if len(changes) == 0 {
		return Result{UpdatedCode: code, Error: "No applicable changes"}, nil
	}

	w := extractWindow(lines, line-1, e.radius, MaxBoundaryExpansion)
	original := strings.Join(w.Lines(lines), "\n")
	result := Result{UpdatedCode: code, StartLine: w.Start, EndLine: w.End}
	log := logging.StartOperation(e.logger.With("line", line, "window_start", w.Start, "window_end", w.End), "ai_edit")

	response, err := e.client.EditCode(ctx, llm.EditRequest{
		Code:         original,
		Instructions: e.Describe(changes, element, line-w.Start),
		Language:     "tsx",
	})
	if err != nil {
		result.Error = err.Error()
		log.EndWithError(ctx, err)
		if !veditErrors.IsNetworkError(err) && !veditErrors.IsType(err, veditErrors.ErrorTypeConfig) {
			err = veditErrors.NewAIError(veditErrors.ErrCodeAIRequest, "code-edit request failed", err)
		}
		return result, err
	}

	cleaned, err := Validate(original, response, e.maxLineRatio)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			result.Error = vErr.Reason
		} else {
			result.Error = err.Error()
		}
		log.Warn(ctx, err, "AI response rejected", "response", logging.SanitizeForLog(response))
		return result, nil
	}

	result.UpdatedCode = splice(lines, w, cleaned)
	result.Success = true
	log.Info(ctx, "AI edit applied", "changes", len(changes))
	log.End(ctx)
	return result, nil
}

// Describe renders the change list as instructions. targetLine is the
// element's 1-based line within the window.
func (e *Editor) Describe(changes []types.StyleChange, element *types.ElementInfo, targetLine int) string {
	var b strings.Builder
	title := cases.Title(language.English)

	if element != nil && element.TagName != "" {
		fmt.Fprintf(&b, "Target element: <%s> on line %d of the code", element.TagName, targetLine)
		if element.ClassName != "" {
			fmt.Fprintf(&b, " with className %q", element.ClassName)
		}
		b.WriteString(".\n")
	} else {
		fmt.Fprintf(&b, "Target element: the JSX element on line %d of the code.\n", targetLine)
	}

	for _, change := range changes {
		b.WriteString("- ")
		if change.IsText() {
			if change.OldValue != "" {
				fmt.Fprintf(&b, "Change the text from %q to %q", change.OldValue, change.NewValue)
			} else {
				fmt.Fprintf(&b, "Change the text to %q", change.NewValue)
			}
			b.WriteString("\n")
			continue
		}

		name := title.String(splitCamel(change.Property))
		switch {
		case change.NewValue == "":
			fmt.Fprintf(&b, "Remove %s", name)
		case change.OldValue != "":
			fmt.Fprintf(&b, "Set %s to %s (currently %s)", name, change.NewValue, change.OldValue)
		default:
			fmt.Fprintf(&b, "Set %s to %s", name, change.NewValue)
		}
		switch {
		case change.TailwindClass != "":
			fmt.Fprintf(&b, " using the Tailwind class %s", change.TailwindClass)
		case change.UseTailwind:
			b.WriteString(" using a Tailwind class")
		default:
			b.WriteString(" using an inline style")
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// splitCamel turns "marginTop" into "margin top".
func splitCamel(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
