package inlinestyle

import (
	"testing"

	"github.com/conneroisu/vedit/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectSyntax(t *testing.T) {
	tests := []struct {
		text string
		want Syntax
	}{
		{"color: 'red'", SyntaxJSX},
		{"fontSize: 16", SyntaxJSX},
		{"width: 10, height: 20", SyntaxJSX},
		{"color: red; font-size: 16px;", SyntaxCSS},
		{"color: red", SyntaxCSS},
		{"font-family: Arial, sans-serif", SyntaxCSS},
		{"...base", SyntaxJSX},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectSyntax(tt.text))
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("jsx object", func(t *testing.T) {
		got := Parse(`color: 'red', fontSize: 16, backgroundImage: "url(a.png)"`)
		assert.Equal(t, map[string]string{
			"color":           "red",
			"fontSize":        "16",
			"backgroundImage": "url(a.png)",
		}, got)
	})

	t.Run("jsx object with braces", func(t *testing.T) {
		got := Parse(`{{ marginTop: '8px' }}`)
		assert.Equal(t, map[string]string{"marginTop": "8px"}, got)
	})

	t.Run("css declarations", func(t *testing.T) {
		got := Parse("color: red; font-size: 16px; background: url(http://x/y.png);")
		assert.Equal(t, map[string]string{
			"color":      "red",
			"fontSize":   "16px",
			"background": "url(http://x/y.png)",
		}, got)
	})

	t.Run("css with comma value", func(t *testing.T) {
		got := Parse("font-family: Arial, sans-serif")
		assert.Equal(t, map[string]string{"fontFamily": "Arial, sans-serif"}, got)
	})

	t.Run("quoted value with comma", func(t *testing.T) {
		got := Parse(`fontFamily: 'Open Sans, serif', color: 'blue'`)
		assert.Equal(t, "Open Sans, serif", got["fontFamily"])
		assert.Equal(t, "blue", got["color"])
	})

	t.Run("custom property", func(t *testing.T) {
		got := Parse(`'--brand': '#fff'`)
		assert.Equal(t, map[string]string{"--brand": "#fff"}, got)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Parse("   "))
	})

	t.Run("explicit syntax skips sniffing", func(t *testing.T) {
		props := ParseOrdered(`font-family: "Open Sans"; color: red`, SyntaxCSS)
		v, ok := props.Get("fontFamily")
		require.True(t, ok)
		assert.Equal(t, `"Open Sans"`, v)
		assert.Equal(t, []string{"fontFamily", "color"}, props.Keys())
	})
}

func TestMerge(t *testing.T) {
	t.Run("overwrite keeps order", func(t *testing.T) {
		got := Merge(`color: 'red', fontSize: 16`, []types.StyleChange{
			{Property: "color", NewValue: "#3b82f6"},
			{Property: "marginTop", NewValue: "8px"},
		})
		assert.Equal(t, `color: '#3b82f6', fontSize: 16, marginTop: '8px'`, got)
	})

	t.Run("css input normalizes to jsx", func(t *testing.T) {
		got := Merge("color: red; font-size: 14px", []types.StyleChange{{Property: "opacity", NewValue: "0.5"}})
		assert.Equal(t, `color: 'red', fontSize: '14px', opacity: 0.5`, got)
	})

	t.Run("empty value removes", func(t *testing.T) {
		got := Merge(`color: 'red', opacity: 1`, []types.StyleChange{{Property: "color", NewValue: ""}})
		assert.Equal(t, `opacity: 1`, got)
	})

	t.Run("text change ignored", func(t *testing.T) {
		got := Merge(`color: 'red'`, []types.StyleChange{{Property: types.TextContentProperty, NewValue: "x"}})
		assert.Equal(t, `color: 'red'`, got)
	})

	t.Run("quote escaped", func(t *testing.T) {
		got := Merge("", []types.StyleChange{{Property: "content", NewValue: "it's"}})
		assert.Equal(t, `content: 'it\'s'`, got)
		assert.Equal(t, "it's", Parse(got)["content"])
	})
}

func TestParseKeepsNonLiteralEntries(t *testing.T) {
	t.Run("spread and computed key", func(t *testing.T) {
		props := ParseOrdered(`...base, color: 'red', [key]: 1, ...(on && extra),`, SyntaxJSX)

		assert.Equal(t, []string{"color"}, props.Keys())
		assert.Equal(t, 1, props.Len())
		assert.Equal(t, []string{"...base", "[key]: 1", "...(on && extra)"}, props.Verbatim())
		assert.Equal(t, map[string]string{"color": "red"}, props.Map())
		assert.Equal(t, `...base, color: 'red', [key]: 1, ...(on && extra)`, Serialize(props))
	})

	t.Run("expression values", func(t *testing.T) {
		props := ParseOrdered("color: theme.primary, width: `${w}px`, height: `10px`, opacity: 0.5", SyntaxJSX)

		assert.True(t, props.IsExpression("color"))
		assert.True(t, props.IsExpression("width"))
		assert.False(t, props.IsExpression("height"))
		assert.False(t, props.IsExpression("opacity"))
		v, _ := props.Get("color")
		assert.Equal(t, "theme.primary", v)
	})

	t.Run("concatenated strings are expressions", func(t *testing.T) {
		props := ParseOrdered(`content: 'a' + b, title: 'x' + 'y'`, SyntaxJSX)
		assert.True(t, props.IsExpression("content"))
		assert.True(t, props.IsExpression("title"))
	})

	t.Run("set clears expression", func(t *testing.T) {
		props := ParseOrdered("color: theme.primary", SyntaxJSX)
		props.Set("color", "red")
		assert.False(t, props.IsExpression("color"))
		assert.Equal(t, "color: 'red'", Serialize(props))
	})

	t.Run("css skips malformed declarations", func(t *testing.T) {
		props := ParseOrdered("color: red; junk; width: 1px", SyntaxCSS)
		assert.Empty(t, props.Verbatim())
		assert.Equal(t, []string{"color", "width"}, props.Keys())
	})
}

func TestMergeWith(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		changes  []types.StyleChange
		expected string
	}{
		{
			name:     "spread survives",
			existing: `...base, color: 'red'`,
			changes:  []types.StyleChange{{Property: "opacity", NewValue: "0.5"}},
			expected: `...base, color: 'red', opacity: 0.5`,
		},
		{
			name:     "expression stays unquoted",
			existing: "color: theme.primary",
			changes:  []types.StyleChange{{Property: "opacity", NewValue: "0.5"}},
			expected: "color: theme.primary, opacity: 0.5",
		},
		{
			name:     "template literal kept as written",
			existing: "width: `${size}px`",
			changes:  []types.StyleChange{{Property: "height", NewValue: "4px"}},
			expected: "width: `${size}px`, height: '4px'",
		},
		{
			name:     "changed expression becomes literal",
			existing: "color: theme.primary",
			changes:  []types.StyleChange{{Property: "color", NewValue: "#fff"}},
			expected: "color: '#fff'",
		},
		{
			name:     "removing the last property keeps the spread",
			existing: "...base, color: 'red'",
			changes:  []types.StyleChange{{Property: "color", NewValue: ""}},
			expected: "...base",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MergeWith(tt.existing, SyntaxJSX, tt.changes))
		})
	}
}

func TestMergeRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		`color: 'red'`,
		"padding: 4px; margin: 0 auto",
		`fontFamily: "Inter, sans-serif", lineHeight: 1.5`,
	}
	changes := []types.StyleChange{
		{Property: "color", NewValue: "rgb(1, 2, 3)"},
		{Property: "width", NewValue: "100"},
		{Property: "fontFamily", NewValue: "Georgia, serif"},
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			parsed := Parse(Merge(in, changes))
			for _, change := range changes {
				assert.Equal(t, change.NewValue, parsed[change.Property])
			}
		})
	}
}

func TestAttribute(t *testing.T) {
	assert.Equal(t, "style={{ color: 'red' }}", Attribute(SerializeMap(map[string]string{"color": "red"})))
	assert.Equal(t, "a: 1, b: 'x'", SerializeMap(map[string]string{"b": "x", "a": "1"}))
}

func TestSerializeCSS(t *testing.T) {
	props := ParseOrdered("font-size: 16px; color: red; --brand: #fff", SyntaxCSS)
	props.Set("marginTop", "4px")
	assert.Equal(t, "font-size: 16px; color: red; --brand: #fff; margin-top: 4px", SerializeCSS(props))
}
