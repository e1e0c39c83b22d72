// Package jsx locates JSX elements in source text without parsing it.
//
// FindElement maps a line number (as recorded by a build-time source-mapping
// step) to the element's opening tag, its line span, and the raw content up
// to its matching closing tag. It scans characters with a small tokenizer
// that knows about string literals and {...} expressions, and counts tags of
// the same name to pair the closing tag.
//
// This is deliberately not a parser. Known limitations:
//
//   - fragments (<>...</>) are never matched
//   - member-expression tag names (<Foo.Bar>) are never matched
//   - an opening tag inside a {...} expression on its own line is rejected
//   - opening tags longer than 20 lines, or bodies longer than 50 lines, are
//     not located
//   - minified or pathologically interleaved markup is unsupported
package jsx

import (
	"regexp"
	"strings"
)

const (
	// maxOpeningTagLines bounds the forward scan for an opening tag's '>'
	maxOpeningTagLines = 20
	// maxBodyLines bounds the scan for the matching closing tag
	maxBodyLines = 50
	// maxBacktrackLines bounds the search for a tag above the target line
	maxBacktrackLines = 5
)

var openingTagPattern = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9]*)`)

// Location is where an element sits in the source. Lines are 0-based indexes
// into the file's lines; columns are byte offsets within a line.
type Location struct {
	// StartLine is the line of the opening '<', or -1 when not found
	StartLine int `json:"startLine"`
	// EndLine is the line holding the opening tag's closing '>'
	EndLine int `json:"endLine"`
	// OpeningTag is the exact source text from '<' through '>'
	OpeningTag string `json:"openingTag"`
	// ClosingTagLine is the line of the matching closing tag, or -1 when the
	// element is self-closing
	ClosingTagLine int `json:"closingTagLine"`
	// ElementContent is the raw text between the opening and closing tags:
	// trimmed when both are on one line, else the full lines in between
	ElementContent string `json:"elementContent"`

	TagName string `json:"tagName"`
	// StartColumn is the offset of '<' on StartLine
	StartColumn int `json:"startColumn"`
	// EndColumn is the offset just past '>' on EndLine
	EndColumn int `json:"endColumn"`
	// ClosingColumn is the offset of "</" on ClosingTagLine
	ClosingColumn int `json:"closingColumn"`
	// InlineContent is set when content and closing tag share EndLine
	InlineContent bool `json:"inlineContent"`
}

// NotFound is the sentinel returned when no element can be located.
var NotFound = Location{StartLine: -1, EndLine: -1, ClosingTagLine: -1}

// Found reports whether the location refers to an element.
func (l Location) Found() bool {
	return l.StartLine >= 0
}

// SelfClosing reports whether the element has no closing tag.
func (l Location) SelfClosing() bool {
	return l.Found() && l.ClosingTagLine == -1
}

// lastLine is the line the element ends on.
func (l Location) lastLine() int {
	if l.ClosingTagLine >= 0 {
		return l.ClosingTagLine
	}
	return l.EndLine
}

// FindElementInText splits text into lines and locates the element at the
// 1-based line number.
func FindElementInText(text string, line int) Location {
	return FindElement(strings.Split(text, "\n"), line-1)
}

// FindElement locates the element whose opening tag starts on lines[target].
// When the target line has no usable opening tag, up to five preceding lines
// are tried, covering targets inside a multi-line attribute list. An element
// found that way must still reach the target line.
func FindElement(lines []string, target int) Location {
	if target < 0 || target >= len(lines) {
		return NotFound
	}

	for offset := 0; offset <= maxBacktrackLines; offset++ {
		line := target - offset
		if line < 0 {
			break
		}
		if loc, ok := findOnLine(lines, line, target); ok {
			return loc
		}
	}

	return NotFound
}

// findOnLine tries each opening tag on the line in order and returns the
// first that validates, resolves and ends on or after line target.
func findOnLine(lines []string, lineIdx, target int) (Location, bool) {
	text := lines[lineIdx]
	for _, m := range openingTagPattern.FindAllStringSubmatchIndex(text, -1) {
		start, nameEnd := m[0], m[3]
		if !validTagBoundary(text, nameEnd) {
			continue
		}
		if !markupAt(text, start) {
			continue
		}

		loc, ok := resolveElement(lines, lineIdx, start, text[m[2]:m[3]])
		if ok && loc.lastLine() >= target {
			return loc, true
		}
	}
	return Location{}, false
}

// validTagBoundary rejects matches whose name continues with '.', '-' or ':'
// (member expressions, custom elements with namespaces).
func validTagBoundary(text string, nameEnd int) bool {
	if nameEnd >= len(text) {
		return true
	}
	switch text[nameEnd] {
	case ' ', '\t', '\r', '>', '/':
		return true
	}
	return false
}

func resolveElement(lines []string, startLine, startCol int, tagName string) (Location, bool) {
	endLine, endCol, selfClosing, ok := scanOpeningTag(lines, startLine, startCol)
	if !ok {
		return Location{}, false
	}

	loc := Location{
		StartLine:      startLine,
		EndLine:        endLine,
		OpeningTag:     sliceSpan(lines, startLine, startCol, endLine, endCol),
		ClosingTagLine: -1,
		TagName:        tagName,
		StartColumn:    startCol,
		EndColumn:      endCol,
		ClosingColumn:  -1,
	}

	if selfClosing {
		return loc, true
	}

	// Content and closing tag on the opening tag's own line.
	depth := 1
	for _, ev := range tagEvents(lines, endLine, endCol, tagName) {
		depth += ev.delta
		if depth == 0 {
			loc.ClosingTagLine = endLine
			loc.ClosingColumn = ev.pos
			loc.ElementContent = strings.TrimSpace(lines[endLine][endCol:ev.pos])
			loc.InlineContent = true
			return loc, true
		}
	}

	last := endLine + maxBodyLines
	if last >= len(lines) {
		last = len(lines) - 1
	}
	for i := endLine + 1; i <= last; i++ {
		for _, ev := range tagEvents(lines, i, 0, tagName) {
			depth += ev.delta
			if depth == 0 {
				loc.ClosingTagLine = i
				loc.ClosingColumn = ev.pos
				loc.ElementContent = strings.Join(lines[endLine+1:i], "\n")
				return loc, true
			}
		}
	}

	return Location{}, false
}

// scanOpeningTag walks forward from the '<' at (line, col) until the tag's
// own '>' brings the angle depth back to zero. Strings and {...} expressions
// are skipped by the tokenizer.
func scanOpeningTag(lines []string, line, col int) (endLine, endCol int, selfClosing, ok bool) {
	var t tokenizer
	depth := 0
	last := line + maxOpeningTagLines
	if last >= len(lines) {
		last = len(lines) - 1
	}

	for i := line; i <= last; i++ {
		text := lines[i]
		j := 0
		if i == line {
			j = col
		}
		for ; j < len(text); j++ {
			c := text[j]
			if t.step(c) != stateNormal {
				continue
			}
			switch c {
			case '<':
				depth++
			case '>':
				depth--
				if depth == 0 {
					return i, j + 1, j > 0 && text[j-1] == '/', true
				}
			}
		}
	}

	return 0, 0, false, false
}

// tagEvent is an opening (+1) or closing (-1) tag of one name at pos.
type tagEvent struct {
	pos   int
	delta int
}

// tagEvents lists the same-name tag boundaries on lines[line] from column
// from, in order. Self-closing instances contribute nothing, including ones
// whose attributes continue on later lines.
func tagEvents(lines []string, line, from int, tagName string) []tagEvent {
	var events []tagEvent
	text := lines[line]
	open := "<" + tagName
	closing := "</" + tagName

	for i := from; i < len(text); {
		switch {
		case strings.HasPrefix(text[i:], closing) && closesAt(text, i+len(closing)):
			events = append(events, tagEvent{pos: i, delta: -1})
			i += len(closing)
		case strings.HasPrefix(text[i:], open) && validTagBoundary(text, i+len(open)):
			if _, _, selfClosing, ok := scanOpeningTag(lines, line, i); !ok || !selfClosing {
				events = append(events, tagEvent{pos: i, delta: 1})
			}
			i += len(open)
		default:
			i++
		}
	}
	return events
}

// closesAt reports whether a closing tag name ending at pos is followed by
// optional whitespace and '>'.
func closesAt(text string, pos int) bool {
	rest := strings.TrimLeft(text[pos:], " \t")
	return strings.HasPrefix(rest, ">")
}

// sliceSpan returns the source text from (startLine, startCol) up to, but not
// including, (endLine, endCol).
func sliceSpan(lines []string, startLine, startCol, endLine, endCol int) string {
	if startLine == endLine {
		return lines[startLine][startCol:endCol]
	}
	parts := make([]string, 0, endLine-startLine+1)
	parts = append(parts, lines[startLine][startCol:])
	parts = append(parts, lines[startLine+1:endLine]...)
	parts = append(parts, lines[endLine][:endCol])
	return strings.Join(parts, "\n")
}

// Offset converts a (line, column) position into a byte offset within the
// text the lines were split from with "\n".
func Offset(lines []string, line, col int) int {
	offset := 0
	for i := 0; i < line && i < len(lines); i++ {
		offset += len(lines[i]) + 1
	}
	return offset + col
}
