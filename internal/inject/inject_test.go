package inject

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScript(t *testing.T) {
	js := string(Script())
	assert.Contains(t, js, "window.__VEDIT_INJECTED__")
	assert.Contains(t, js, "ELEMENT_HOVERED")
	assert.Contains(t, js, "DRAG_CANCELLED")
}

func TestInjectHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		absent   []string
	}{
		{
			name:  "script appended to body",
			input: `<html><head><title>x</title></head><body><main><h1>Hi</h1></main></body></html>`,
			contains: []string{
				`<script src="/__vedit/inject.js"></script></body>`,
				`<main data-ve-id="ve-2">`,
				`<h1 data-ve-id="ve-3">`,
				`<body data-ve-id="ve-1">`,
			},
			absent: []string{`<title data-ve-id`, `<head data-ve-id`, `<html data-ve-id`},
		},
		{
			name:  "existing ids are kept and skipped",
			input: `<body><div data-ve-id="ve-2"><p>a</p></div></body>`,
			contains: []string{
				`<div data-ve-id="ve-2">`,
				`<body data-ve-id="ve-1">`,
				`<p data-ve-id="ve-3">`,
			},
		},
		{
			name:     "source attributes preserved",
			input:    `<body><button data-ve-file="src/App.tsx" data-ve-line="12">Go</button></body>`,
			contains: []string{`data-ve-file="src/App.tsx" data-ve-line="12" data-ve-id="ve-2"`},
		},
		{
			name:     "script not added twice",
			input:    `<body><p>x</p><script src="/__vedit/inject.js"></script></body>`,
			contains: []string{`<p data-ve-id="ve-2">x</p>`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := InjectHTML(strings.NewReader(tt.input))
			require.NoError(t, err)
			s := string(out)
			for _, want := range tt.contains {
				assert.Contains(t, s, want)
			}
			for _, unwanted := range tt.absent {
				assert.NotContains(t, s, unwanted)
			}
			assert.Equal(t, 1, strings.Count(s, ScriptPath))
		})
	}
}
