package aiedit

import (
	"regexp"
	"strings"
)

var (
	openTagPattern  = regexp.MustCompile(`<[A-Za-z>]`)
	closeTagPattern = regexp.MustCompile(`</`)
)

// statementPrefixes mark lines where a top-level statement can begin.
var statementPrefixes = []string{
	"import ", "export ", "const ", "let ", "var ", "function ",
	"return", "class ", "type ", "interface ", "if ", "} else", "//",
}

// Window is a line range [Start, End] (0-based, inclusive) of the file.
type Window struct {
	Start int
	End   int
}

// Lines returns the window's lines.
func (w Window) Lines(lines []string) []string {
	return lines[w.Start : w.End+1]
}

// Len returns the number of lines in the window.
func (w Window) Len() int {
	return w.End - w.Start + 1
}

// extractWindow picks radius lines either side of target, then widens each
// edge by at most maxExpand lines until it sits on a safe boundary.
func extractWindow(lines []string, target, radius, maxExpand int) Window {
	w := Window{
		Start: max(0, target-radius),
		End:   min(len(lines)-1, target+radius),
	}

	for i := 0; i < maxExpand && w.Start > 0; i++ {
		if isBoundary(lines[w.Start]) || jsxDepth(w.Lines(lines)) == 0 {
			break
		}
		w.Start--
	}
	for i := 0; i < maxExpand && w.End < len(lines)-1; i++ {
		if isBoundary(lines[w.End]) || jsxDepth(w.Lines(lines)) == 0 {
			break
		}
		w.End++
	}
	return w
}

func isBoundary(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	for _, prefix := range statementPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// jsxDepth is the net count of opened tags in lines: opening tags (fragments
// included) minus closing tags minus self-closing ends.
func jsxDepth(lines []string) int {
	depth := 0
	for _, line := range lines {
		depth += len(openTagPattern.FindAllStringIndex(line, -1))
		depth -= len(closeTagPattern.FindAllStringIndex(line, -1))
		depth -= strings.Count(line, "/>")
	}
	return depth
}

// splice replaces the window's lines with replacement.
func splice(lines []string, w Window, replacement string) string {
	out := make([]string, 0, len(lines))
	out = append(out, lines[:w.Start]...)
	out = append(out, strings.Split(replacement, "\n")...)
	out = append(out, lines[w.End+1:]...)
	return strings.Join(out, "\n")
}
