package batch

import (
	"context"
	"errors"
	"strings"
	"testing"

	veditErrors "github.com/conneroisu/vedit/internal/errors"
	"github.com/conneroisu/vedit/internal/llm"
	"github.com/conneroisu/vedit/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageSource = `export default function Page() {
  return (
    <main>
      <h1 className="text-2xl">Welcome</h1>
      <p>
        {subtitle}
      </p>
      <button>Sign up</button>
    </main>
  );
}`

type fakeBatch struct {
	response string
	err      error
	got      llm.BatchRequest
}

func (f *fakeBatch) BatchEdit(_ context.Context, req llm.BatchRequest) (string, error) {
	f.got = req
	return f.response, f.err
}

func TestApply(t *testing.T) {
	updated := strings.Replace(pageSource, "Sign up", "Join", 1)
	fake := &fakeBatch{response: "```tsx\n" + updated + "\n```\n"}
	orchestrator := NewOrchestrator(fake, nil)

	result, err := orchestrator.Apply(context.Background(), pageSource, []ElementEdit{
		{ElementID: "ve-1", SourceLine: 4, Changes: []types.StyleChange{
			{Property: "color", NewValue: "#333333", UseTailwind: true},
		}},
		{ElementID: "ve-2", SourceLine: 8, Changes: []types.StyleChange{
			{Property: types.TextContentProperty, OldValue: "Sign up", NewValue: "Join"},
		}},
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, updated, result.UpdatedCode)
	assert.Equal(t, 2, result.Elements)

	assert.Equal(t, pageSource, fake.got.Code)
	require.Len(t, fake.got.Edits, 2)
	assert.Equal(t, "Welcome", fake.got.Edits[0].OriginalText)
	assert.Equal(t, "set color to #333333 using Tailwind", fake.got.Edits[0].Instructions)
	assert.Equal(t, "Sign up", fake.got.Edits[1].OriginalText)
	assert.Equal(t, `change the text to "Join"`, fake.got.Edits[1].Instructions)
}

func TestApplyFailures(t *testing.T) {
	edits := []ElementEdit{{ElementID: "ve-1", SourceLine: 4}}

	t.Run("empty response", func(t *testing.T) {
		result, err := NewOrchestrator(&fakeBatch{response: "```\n```"}, nil).Apply(context.Background(), pageSource, edits)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, pageSource, result.UpdatedCode)
		assert.Contains(t, result.Error, "empty response")
	})

	t.Run("network error", func(t *testing.T) {
		netErr := veditErrors.NewNetworkError(veditErrors.ErrCodeAIRequest, "timeout", nil)
		result, err := NewOrchestrator(&fakeBatch{err: netErr}, nil).Apply(context.Background(), pageSource, edits)
		require.Error(t, err)
		assert.True(t, veditErrors.IsNetworkError(err))
		assert.Equal(t, pageSource, result.UpdatedCode)
	})

	t.Run("plain error", func(t *testing.T) {
		_, err := NewOrchestrator(&fakeBatch{err: errors.New("nope")}, nil).Apply(context.Background(), pageSource, edits)
		assert.True(t, veditErrors.IsType(err, veditErrors.ErrorTypeAI))
	})

	t.Run("no edits", func(t *testing.T) {
		fake := &fakeBatch{response: "x"}
		result, err := NewOrchestrator(fake, nil).Apply(context.Background(), pageSource, nil)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Empty(t, fake.got.Code)
	})
}

func TestOriginalText(t *testing.T) {
	lines := strings.Split(pageSource, "\n")
	tests := []struct {
		name     string
		line     int
		expected string
	}{
		{"same line", 4, "Welcome"},
		{"nearest line wins", 6, "Sign up"},
		{"expression text is ignored", 5, "Welcome"},
		{"outside radius", 11, ""},
		{"out of range", 40, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OriginalText(lines, tt.line))
		})
	}
}

func TestDescribe(t *testing.T) {
	text := Describe([]types.StyleChange{
		{Property: "paddingTop", NewValue: "8px"},
		{Property: "marginTop", NewValue: "16px", TailwindClass: "mt-4"},
		{Property: "color", NewValue: ""},
	})
	assert.Equal(t, "set paddingTop to 8px inline; set marginTop to 16px (Tailwind class mt-4); remove color", text)
}
