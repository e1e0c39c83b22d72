package aiedit

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/conneroisu/vedit/internal/llm"
)

// DefaultMaxLineRatio is the largest accepted relative change in line count.
const DefaultMaxLineRatio = 0.3

var fillerPattern = regexp.MustCompile(
	`(?i)\b(here is|here's|i've|i have|sure\b|certainly\b|let me|as requested|i hope)`,
)

// ValidationError explains why an endpoint response was rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid AI response: " + e.Reason
}

// Validate strips markdown fences from response and checks that it looks
// like a rewrite of original. It returns the cleaned code.
func Validate(original, response string, maxLineRatio float64) (string, error) {
	cleaned := llm.StripFences(response)
	if strings.TrimSpace(cleaned) == "" {
		return "", &ValidationError{Reason: "empty response"}
	}
	if !strings.ContainsAny(cleaned, "<{=;(") {
		return "", &ValidationError{Reason: "response contains no code"}
	}
	if match := addedFiller(original, cleaned); match != "" {
		return "", &ValidationError{Reason: fmt.Sprintf("response contains conversational text %q", match)}
	}

	if maxLineRatio <= 0 {
		maxLineRatio = DefaultMaxLineRatio
	}
	before := strings.Count(original, "\n") + 1
	after := strings.Count(cleaned, "\n") + 1
	if ratio := math.Abs(float64(after-before)) / float64(before); ratio > maxLineRatio {
		return "", &ValidationError{
			Reason: fmt.Sprintf("line count changed from %d to %d", before, after),
		}
	}

	return cleaned, nil
}

// addedFiller returns the first conversational phrase that occurs more often
// in cleaned than in original. Phrases already in the page copy are allowed.
func addedFiller(original, cleaned string) string {
	before := countFiller(original)
	after := countFiller(cleaned)
	for _, match := range fillerPattern.FindAllString(cleaned, -1) {
		if key := strings.ToLower(match); after[key] > before[key] {
			return match
		}
	}
	return ""
}

func countFiller(text string) map[string]int {
	counts := make(map[string]int)
	for _, match := range fillerPattern.FindAllString(text, -1) {
		counts[strings.ToLower(match)]++
	}
	return counts
}
