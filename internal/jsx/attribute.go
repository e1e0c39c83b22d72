package jsx

import (
	"regexp"
	"strings"
)

// AttrKind classifies the value syntax of a JSX attribute.
type AttrKind int

const (
	// AttrString is name="value" or name='value'
	AttrString AttrKind = iota
	// AttrExprString is name={"value"} or name={'value'} or name={`value`}
	// without interpolations
	AttrExprString
	// AttrObject is name={{ ... }}
	AttrObject
	// AttrExpression is any other name={...}
	AttrExpression
	// AttrBare is a boolean attribute with no value
	AttrBare
)

// String returns the kind name
func (k AttrKind) String() string {
	switch k {
	case AttrString:
		return "string"
	case AttrExprString:
		return "expr-string"
	case AttrObject:
		return "object"
	case AttrExpression:
		return "expression"
	case AttrBare:
		return "bare"
	default:
		return "unknown"
	}
}

// Attribute is one attribute found in an opening tag. Start and End are byte
// offsets of the whole name=value span within the tag text.
type Attribute struct {
	Name string
	// Raw is the value text exactly as written, including quotes or braces
	Raw string
	// Value is the unwrapped value: the string contents, or the body of a
	// {{ }} object or { } expression
	Value string
	Kind  AttrKind
	Start int
	End   int
}

// Quote returns the delimiter of a string-valued attribute, or 0.
func (a Attribute) Quote() byte {
	switch a.Kind {
	case AttrString:
		return a.Raw[0]
	case AttrExprString:
		return strings.TrimSpace(a.Raw[1 : len(a.Raw)-1])[0]
	}
	return 0
}

var tagNamePattern = regexp.MustCompile(`^<([A-Za-z][A-Za-z0-9]*)`)

// TagName returns the element name of an opening tag.
func TagName(openingTag string) string {
	m := tagNamePattern.FindStringSubmatch(openingTag)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractAttribute finds the named attribute in an opening tag. Only names
// in markup context count, so `className` inside an expression is skipped.
func ExtractAttribute(openingTag, name string) (Attribute, bool) {
	for _, attr := range Attributes(openingTag) {
		if attr.Name == name {
			return attr, true
		}
	}
	return Attribute{}, false
}

// Attributes lists the attributes of an opening tag in source order.
// Spread attributes ({...props}) are skipped.
func Attributes(openingTag string) []Attribute {
	tag := openingTag
	i := len(TagName(tag)) + 1
	if i == 1 {
		return nil
	}

	var attrs []Attribute
	for i < len(tag) {
		c := tag[i]
		switch {
		case isSpace(c) || c == '/' || c == '>':
			i++
			continue
		case c == '{':
			end := matchBrace(tag, i)
			if end < 0 {
				return attrs
			}
			i = end + 1
			continue
		case !isNameStart(c):
			i++
			continue
		}

		start := i
		for i < len(tag) && isNameChar(tag[i]) {
			i++
		}
		attr := Attribute{Name: tag[start:i], Start: start, End: i, Kind: AttrBare}

		j := skipSpace(tag, i)
		if j >= len(tag) || tag[j] != '=' {
			attrs = append(attrs, attr)
			continue
		}
		j = skipSpace(tag, j+1)
		if j >= len(tag) {
			return attrs
		}

		switch tag[j] {
		case '"', '\'':
			end := strings.IndexByte(tag[j+1:], tag[j])
			if end < 0 {
				return attrs
			}
			end += j + 1
			attr.Raw = tag[j : end+1]
			attr.Value = tag[j+1 : end]
			attr.Kind = AttrString
			attr.End = end + 1
		case '{':
			end := matchBrace(tag, j)
			if end < 0 {
				return attrs
			}
			attr.Raw = tag[j : end+1]
			attr.End = end + 1
			classifyExpression(&attr)
		default:
			return attrs
		}

		attrs = append(attrs, attr)
		i = attr.End
	}

	return attrs
}

func classifyExpression(attr *Attribute) {
	inner := strings.TrimSpace(attr.Raw[1 : len(attr.Raw)-1])
	if len(inner) >= 2 && inner[0] == '{' && inner[len(inner)-1] == '}' && matchBrace(inner, 0) == len(inner)-1 {
		attr.Kind = AttrObject
		attr.Value = strings.TrimSpace(inner[1 : len(inner)-1])
		return
	}
	if len(inner) >= 2 {
		q := inner[0]
		body := inner[1 : len(inner)-1]
		// A template literal with interpolations is computed, not static text
		static := q != '`' || !strings.Contains(body, "${")
		if (q == '"' || q == '\'' || q == '`') && inner[len(inner)-1] == q && !strings.ContainsRune(body, rune(q)) && static {
			attr.Kind = AttrExprString
			attr.Value = body
			return
		}
	}
	attr.Kind = AttrExpression
	attr.Value = inner
}

// matchBrace returns the index of the '}' closing the '{' at open, honouring
// nested braces and string literals, or -1.
func matchBrace(text string, open int) int {
	var t tokenizer
	for i := open; i < len(text); i++ {
		t.step(text[i])
		if i > open && t.inMarkup() {
			return i
		}
	}
	return -1
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || c == '-' || c == ':' || (c >= '0' && c <= '9')
}
