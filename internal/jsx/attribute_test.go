package jsx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagName(t *testing.T) {
	assert.Equal(t, "div", TagName(`<div className="x">`))
	assert.Equal(t, "Button", TagName("<Button\n  onClick={f}>"))
	assert.Equal(t, "", TagName("div"))
}

func TestExtractAttribute(t *testing.T) {
	tests := []struct {
		name      string
		tag       string
		attr      string
		wantKind  AttrKind
		wantValue string
		wantRaw   string
	}{
		{
			name:      "double quoted",
			tag:       `<div className="p-4 mt-2">`,
			attr:      "className",
			wantKind:  AttrString,
			wantValue: "p-4 mt-2",
			wantRaw:   `"p-4 mt-2"`,
		},
		{
			name:      "single quoted",
			tag:       `<div id='main' className='a'>`,
			attr:      "className",
			wantKind:  AttrString,
			wantValue: "a",
			wantRaw:   `'a'`,
		},
		{
			name:      "expression string",
			tag:       `<div className={"flex gap-2"}>`,
			attr:      "className",
			wantKind:  AttrExprString,
			wantValue: "flex gap-2",
			wantRaw:   `{"flex gap-2"}`,
		},
		{
			name:      "template literal",
			tag:       "<div className={`p-2`}>",
			attr:      "className",
			wantKind:  AttrExprString,
			wantValue: "p-2",
			wantRaw:   "{`p-2`}",
		},
		{
			name:      "interpolated template literal",
			tag:       "<div className={`p-4 ${active ? 'a' : 'b'}`}>",
			attr:      "className",
			wantKind:  AttrExpression,
			wantValue: "`p-4 ${active ? 'a' : 'b'}`",
			wantRaw:   "{`p-4 ${active ? 'a' : 'b'}`}",
		},
		{
			name:      "dynamic expression",
			tag:       `<div className={cn("a", active && "b")}>`,
			attr:      "className",
			wantKind:  AttrExpression,
			wantValue: `cn("a", active && "b")`,
			wantRaw:   `{cn("a", active && "b")}`,
		},
		{
			name:      "style object",
			tag:       `<p style={{ color: 'red', margin: 0 }}>`,
			attr:      "style",
			wantKind:  AttrObject,
			wantValue: `color: 'red', margin: 0`,
			wantRaw:   `{{ color: 'red', margin: 0 }}`,
		},
		{
			name:      "css string style",
			tag:       `<p style="color: red">`,
			attr:      "style",
			wantKind:  AttrString,
			wantValue: "color: red",
			wantRaw:   `"color: red"`,
		},
		{
			name:     "boolean",
			tag:      `<input disabled className="x" />`,
			attr:     "disabled",
			wantKind: AttrBare,
		},
		{
			name:      "after spread",
			tag:       `<div {...props} className="z">`,
			attr:      "className",
			wantKind:  AttrString,
			wantValue: "z",
			wantRaw:   `"z"`,
		},
		{
			name:      "multi-line",
			tag:       "<div\n  id=\"a\"\n  className=\"b\"\n>",
			attr:      "className",
			wantKind:  AttrString,
			wantValue: "b",
			wantRaw:   `"b"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr, ok := ExtractAttribute(tt.tag, tt.attr)
			require.True(t, ok)
			assert.Equal(t, tt.attr, attr.Name)
			assert.Equal(t, tt.wantKind, attr.Kind)
			assert.Equal(t, tt.wantValue, attr.Value)
			assert.Equal(t, tt.wantRaw, attr.Raw)
			if attr.Kind != AttrBare {
				assert.Equal(t, tt.attr+"="+tt.wantRaw, tt.tag[attr.Start:attr.End])
			}
		})
	}
}

func TestExtractAttributeMissing(t *testing.T) {
	_, ok := ExtractAttribute(`<div onClick={() => setClass("className")}>`, "className")
	assert.False(t, ok)

	_, ok = ExtractAttribute(`<div data-className="x">`, "className")
	assert.False(t, ok)
}

func TestAttributeQuote(t *testing.T) {
	attr, ok := ExtractAttribute(`<a className='x'>`, "className")
	require.True(t, ok)
	assert.Equal(t, byte('\''), attr.Quote())

	attr, ok = ExtractAttribute(`<a className={"x"}>`, "className")
	require.True(t, ok)
	assert.Equal(t, byte('"'), attr.Quote())

	attr, ok = ExtractAttribute(`<a style={{ a: 1 }}>`, "style")
	require.True(t, ok)
	assert.Equal(t, byte(0), attr.Quote())
}
