package tailwind

import (
	"testing"

	"github.com/conneroisu/vedit/internal/types"
	"github.com/stretchr/testify/assert"
)

func tw(property, value string) types.StyleChange {
	return types.StyleChange{Property: property, NewValue: value, UseTailwind: true}
}

func TestUpdateClassName(t *testing.T) {
	tests := []struct {
		name    string
		current string
		changes []types.StyleChange
		want    string
	}{
		{
			name:    "append margin",
			current: "p-4",
			changes: []types.StyleChange{tw("marginTop", "16px")},
			want:    "p-4 mt-4",
		},
		{
			name:    "replace margin",
			current: "mt-2 p-4",
			changes: []types.StyleChange{tw("marginTop", "16px")},
			want:    "p-4 mt-4",
		},
		{
			name:    "color keeps size",
			current: "text-lg text-red-500",
			changes: []types.StyleChange{tw("color", "#3b82f6")},
			want:    "text-lg text-[#3b82f6]",
		},
		{
			name:    "size keeps color",
			current: "text-lg text-red-500",
			changes: []types.StyleChange{tw("fontSize", "24px")},
			want:    "text-red-500 text-2xl",
		},
		{
			name:    "align keeps size and color",
			current: "text-lg text-left text-red-500",
			changes: []types.StyleChange{tw("textAlign", "center")},
			want:    "text-lg text-red-500 text-center",
		},
		{
			name:    "weight keeps family",
			current: "font-mono font-light",
			changes: []types.StyleChange{tw("fontWeight", "700")},
			want:    "font-mono font-bold",
		},
		{
			name:    "family keeps weight",
			current: "font-sans font-light",
			changes: []types.StyleChange{tw("fontFamily", "Georgia")},
			want:    "font-light font-serif",
		},
		{
			name:    "display swap",
			current: "flex items-center",
			changes: []types.StyleChange{tw("display", "grid")},
			want:    "items-center grid",
		},
		{
			name:    "negative margin replaced",
			current: "-mt-2 p-1",
			changes: []types.StyleChange{tw("marginTop", "8px")},
			want:    "p-1 mt-2",
		},
		{
			name:    "rounded bare class replaced",
			current: "rounded shadow",
			changes: []types.StyleChange{tw("borderRadius", "8px")},
			want:    "shadow rounded-lg",
		},
		{
			name:    "unmappable change dropped",
			current: "p-4",
			changes: []types.StyleChange{tw("fontSize", "17px")},
			want:    "p-4",
		},
		{
			name:    "inline change ignored",
			current: "p-4",
			changes: []types.StyleChange{{Property: "marginTop", NewValue: "16px"}},
			want:    "p-4",
		},
		{
			name:    "precomputed class",
			current: "bg-red-500",
			changes: []types.StyleChange{{Property: "backgroundColor", NewValue: "x", UseTailwind: true, TailwindClass: "bg-blue-600"}},
			want:    "bg-blue-600",
		},
		{
			name:    "duplicates collapse",
			current: "p-4  p-4\tflex",
			changes: nil,
			want:    "p-4 flex",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UpdateClassName(tt.current, tt.changes))
		})
	}
}

func TestUpdateClassNameIdempotent(t *testing.T) {
	changes := []types.StyleChange{
		tw("marginTop", "16px"),
		tw("color", "#111827"),
		tw("fontSize", "18px"),
		tw("display", "flex"),
	}
	once := UpdateClassName("text-sm mt-1 block text-gray-500 p-2", changes)
	twice := UpdateClassName(once, changes)
	assert.Equal(t, once, twice)
}
