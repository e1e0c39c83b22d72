// Package inlinestyle parses and rewrites inline style attributes.
//
// Two input syntaxes are accepted: the JSX object form used inside
// style={{ ... }} and the plain CSS declaration form used by style="...".
// Output is always the JSX object form with single-quoted values, so CSS
// input does not round-trip to CSS.
package inlinestyle

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/conneroisu/vedit/internal/tailwind"
	"github.com/conneroisu/vedit/internal/types"
)

// Syntax selects how a style body is parsed.
type Syntax int

const (
	// SyntaxAuto sniffs the syntax from the text
	SyntaxAuto Syntax = iota
	// SyntaxJSX is `prop: 'value', prop2: 'value2'`
	SyntaxJSX
	// SyntaxCSS is `prop: value; prop-two: value;`
	SyntaxCSS
)

// String returns the syntax name
func (s Syntax) String() string {
	switch s {
	case SyntaxJSX:
		return "jsx"
	case SyntaxCSS:
		return "css"
	default:
		return "auto"
	}
}

var (
	numericValue = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	camelCaseKey = regexp.MustCompile(`(^|[\s,{])[a-z]+[A-Z][A-Za-z]*\s*:`)
	plainKey     = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

// verbatimPrefix marks slots holding JSX entries that are not plain
// declarations, such as spreads. They keep their place in the order and are
// written back unchanged.
const verbatimPrefix = "\x00"

// Properties is an insertion-ordered style property map keyed by camelCase
// property names.
type Properties struct {
	keys   []string
	values map[string]string
	exprs  map[string]bool
	raw    int
}

// NewProperties returns an empty property map.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]string)}
}

// Set adds or overwrites a property. Overwriting keeps the original position.
func (p *Properties) Set(key, value string) {
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
	delete(p.exprs, key)
}

// SetExpression stores a JavaScript expression value, written back unquoted.
func (p *Properties) SetExpression(key, value string) {
	p.Set(key, value)
	if p.exprs == nil {
		p.exprs = make(map[string]bool)
	}
	p.exprs[key] = true
}

// IsExpression reports whether key holds an expression value.
func (p *Properties) IsExpression(key string) bool {
	return p.exprs[key]
}

func (p *Properties) addVerbatim(text string) {
	key := verbatimPrefix + strconv.Itoa(p.raw)
	p.raw++
	p.keys = append(p.keys, key)
	p.values[key] = text
}

// Verbatim returns the entries kept as written, like `...base`, in order.
func (p *Properties) Verbatim() []string {
	var out []string
	for _, key := range p.keys {
		if isVerbatim(key) {
			out = append(out, p.values[key])
		}
	}
	return out
}

func isVerbatim(key string) bool {
	return strings.HasPrefix(key, verbatimPrefix)
}

// Get returns a property value.
func (p *Properties) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Delete removes a property.
func (p *Properties) Delete(key string) {
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	delete(p.exprs, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Keys returns property names in insertion order.
func (p *Properties) Keys() []string {
	out := make([]string, 0, len(p.keys))
	for _, key := range p.keys {
		if !isVerbatim(key) {
			out = append(out, key)
		}
	}
	return out
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	return len(p.keys) - p.raw
}

// Map returns an unordered copy.
func (p *Properties) Map() map[string]string {
	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		if !isVerbatim(k) {
			out[k] = v
		}
	}
	return out
}

// DetectSyntax sniffs whether text is a JSX style object or CSS declarations.
// Quotes, a spread or a camelCase property name mean JSX. Without either, a
// semicolon-free list of comma separated declarations is also JSX.
func DetectSyntax(text string) Syntax {
	if strings.ContainsAny(text, "'\"`") || strings.Contains(text, "...") || camelCaseKey.MatchString(text) {
		return SyntaxJSX
	}
	if strings.Contains(text, ";") {
		return SyntaxCSS
	}
	decls := splitTopLevel(text, ',')
	if len(decls) < 2 {
		return SyntaxCSS
	}
	for _, decl := range decls {
		if _, _, ok := splitDeclaration(decl); !ok {
			return SyntaxCSS
		}
	}
	return SyntaxJSX
}

// Parse reads a style body into a property map, sniffing the syntax.
func Parse(styleText string) map[string]string {
	return ParseOrdered(styleText, SyntaxAuto).Map()
}

// ParseOrdered reads a style body keeping declaration order. SyntaxAuto sniffs
// the syntax; an explicit syntax skips the heuristic.
//
// JSX entries that are not `key: value` pairs with a literal key, such as
// spreads or computed keys, are kept verbatim. Unquoted non-numeric values
// are expressions when the body is known to be JSX.
func ParseOrdered(styleText string, syntax Syntax) *Properties {
	text := strings.TrimSpace(styleText)
	for strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}

	props := NewProperties()
	if text == "" {
		return props
	}

	exprs := syntax == SyntaxJSX || strings.ContainsAny(text, "'\"`")
	if syntax == SyntaxAuto {
		syntax = DetectSyntax(text)
	}

	if syntax == SyntaxJSX {
		for _, decl := range splitTopLevel(text, ',') {
			decl = strings.TrimSpace(decl)
			if decl == "" {
				continue
			}
			key, value, ok := splitDeclaration(decl)
			if !ok || strings.HasPrefix(decl, "...") || !literalKey(key) {
				props.addVerbatim(decl)
				continue
			}
			key = normalizeKey(unquote(key))
			if exprs && isExpression(value) {
				props.SetExpression(key, value)
				continue
			}
			props.Set(key, unquote(value))
		}
		return props
	}

	for _, decl := range splitTopLevel(text, ';') {
		key, value, ok := splitDeclaration(decl)
		if !ok {
			continue
		}
		props.Set(normalizeKey(strings.ToLower(key)), value)
	}
	return props
}

// Merge applies the style changes to an existing style body and returns the
// JSX object body. A change with an empty new value removes the property.
func Merge(existingStyleText string, changes []types.StyleChange) string {
	return MergeWith(existingStyleText, SyntaxAuto, changes)
}

// MergeWith is Merge with the syntax of the existing body given.
func MergeWith(existingStyleText string, syntax Syntax, changes []types.StyleChange) string {
	props := ParseOrdered(existingStyleText, syntax)
	for _, change := range changes {
		if change.IsText() || change.Property == "" {
			continue
		}
		key := normalizeKey(change.Property)
		if strings.TrimSpace(change.NewValue) == "" {
			props.Delete(key)
			continue
		}
		props.Set(key, strings.TrimSpace(change.NewValue))
	}
	return Serialize(props)
}

// Serialize renders properties as a JSX style object body:
// `color: 'red', fontSize: 16`.
func Serialize(props *Properties) string {
	parts := make([]string, 0, props.Len())
	for _, key := range props.keys {
		switch {
		case isVerbatim(key):
			parts = append(parts, props.values[key])
		case props.exprs[key]:
			parts = append(parts, formatKey(key)+": "+props.values[key])
		default:
			parts = append(parts, formatKey(key)+": "+formatValue(props.values[key]))
		}
	}
	return strings.Join(parts, ", ")
}

// SerializeMap renders an unordered map in sorted key order.
func SerializeMap(values map[string]string) string {
	props := NewProperties()
	for _, key := range sortedKeys(values) {
		props.Set(key, values[key])
	}
	return Serialize(props)
}

// SerializeCSS renders properties as CSS declarations for an HTML style
// attribute: `color: red; font-size: 16px`.
func SerializeCSS(props *Properties) string {
	parts := make([]string, 0, props.Len())
	for _, key := range props.Keys() {
		parts = append(parts, tailwind.ToCSSProperty(key)+": "+props.values[key])
	}
	return strings.Join(parts, "; ")
}

// Attribute wraps a serialized body in the JSX attribute form.
func Attribute(body string) string {
	return "style={{ " + body + " }}"
}

// normalizeKey camelCases hyphenated property names. Custom properties keep
// their spelling.
func normalizeKey(key string) string {
	if strings.Contains(key, "-") && !strings.HasPrefix(key, "--") {
		return tailwind.ToCamelCase(key)
	}
	return key
}

func formatKey(key string) string {
	if plainKey.MatchString(key) {
		return key
	}
	return "'" + key + "'"
}

// literalKey reports whether a JSX object key is an identifier or a quoted
// string.
func literalKey(key string) bool {
	if plainKey.MatchString(key) {
		return true
	}
	q := key[0]
	return len(key) >= 2 && (q == '\'' || q == '"') && key[len(key)-1] == q
}

// isExpression reports whether a JSX value is code rather than a literal.
func isExpression(value string) bool {
	if numericValue.MatchString(value) {
		return false
	}
	switch q := value[0]; q {
	case '\'', '"':
		return !quotedLiteral(value, q)
	case '`':
		return !quotedLiteral(value, q) || strings.Contains(value, "${")
	}
	return true
}

// quotedLiteral reports whether value is one string literal delimited by q.
func quotedLiteral(value string, q byte) bool {
	if len(value) < 2 || value[len(value)-1] != q {
		return false
	}
	for i := 1; i < len(value)-1; i++ {
		switch value[i] {
		case '\\':
			i++
		case q:
			return false
		}
	}
	return true
}

func formatValue(value string) string {
	if numericValue.MatchString(value) {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", `\'`) + "'"
}

// splitDeclaration splits `key: value` on the first colon outside quotes and
// parentheses, so `url(http://x)` values survive.
func splitDeclaration(decl string) (string, string, bool) {
	decl = strings.TrimSpace(decl)
	if decl == "" {
		return "", "", false
	}
	parts := splitTopLevelN(decl, ':', 2)
	if len(parts) != 2 {
		return "", "", false
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}

func splitTopLevel(text string, sep byte) []string {
	return splitTopLevelN(text, sep, -1)
}

// splitTopLevelN splits on sep while outside quotes, parentheses, brackets
// and braces. n < 0 means no limit.
func splitTopLevelN(text string, sep byte, n int) []string {
	var (
		parts []string
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 && (n < 0 || len(parts) < n-1) {
				parts = append(parts, text[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, text[start:])
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '\'' || first == '"' || first == '`') {
			inner := s[1 : len(s)-1]
			return strings.ReplaceAll(inner, `\`+string(first), string(first))
		}
	}
	return s
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
