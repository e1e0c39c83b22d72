package tailwind

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapToUtilityClass(t *testing.T) {
	tests := []struct {
		name     string
		property string
		value    string
		want     string
		wantOK   bool
	}{
		{"margin exact", "marginTop", "16px", "mt-4", true},
		{"margin nearest", "marginTop", "17px", "mt-4", true},
		{"margin exact tie", "marginTop", "15px", "mt-3.5", true},
		{"tie favours smaller step", "paddingLeft", "18px", "pl-4", true},
		{"unitless", "paddingLeft", "8", "pl-2", true},
		{"rem", "marginBottom", "1rem", "mb-4", true},
		{"one pixel", "marginLeft", "1px", "ml-px", true},
		{"zero", "padding", "0px", "p-0", true},
		{"auto", "marginLeft", "auto", "ml-auto", true},
		{"full", "width", "100%", "w-full", true},
		{"half", "height", "50%", "h-1/2", true},
		{"gap", "gap", "24px", "gap-6", true},
		{"max width", "maxWidth", "384px", "max-w-96", true},
		{"negative margin", "marginTop", "-8px", "-mt-2", true},
		{"negative padding unmapped", "paddingTop", "-8px", "", false},
		{"garbage spacing", "marginTop", "calc(1px + 2px)", "", false},
		{"font size exact", "fontSize", "18px", "text-lg", true},
		{"font size not interpolated", "fontSize", "17px", "", false},
		{"font weight", "fontWeight", "700", "font-bold", true},
		{"font weight keyword", "fontWeight", "bold", "font-bold", true},
		{"font weight unknown", "fontWeight", "750", "", false},
		{"font family known", "fontFamily", `"Courier New", monospace`, "font-mono", true},
		{"font family arbitrary", "fontFamily", "Open Sans, sans-serif", "font-[Open_Sans]", true},
		{"border radius", "borderRadius", "8px", "rounded-lg", true},
		{"border radius full", "borderRadius", "9999px", "rounded-full", true},
		{"border radius unmapped", "borderRadius", "7px", "", false},
		{"text align", "textAlign", "center", "text-center", true},
		{"display none", "display", "none", "hidden", true},
		{"color named", "color", "#FFF", "text-white", true},
		{"color hex", "color", "#3b82f6", "text-[#3b82f6]", true},
		{"color rgb", "color", "rgb(59, 130, 246)", "text-[rgb(59,130,246)]", true},
		{"background", "backgroundColor", "transparent", "bg-transparent", true},
		{"background hex", "backgroundColor", "#ff0000", "bg-[#ff0000]", true},
		{"unknown property", "letterSpacing", "1px", "", false},
		{"empty value", "color", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MapToUtilityClass(tt.property, tt.value)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCaseConversion(t *testing.T) {
	assert.Equal(t, "background-color", ToCSSProperty("backgroundColor"))
	assert.Equal(t, "--brand", ToCSSProperty("--brand"))
	assert.Equal(t, "backgroundColor", ToCamelCase("background-color"))
	assert.Equal(t, "color", ToCamelCase("color"))
	assert.Equal(t, "--brand-color", ToCamelCase("--brand-color"))
}

func TestPrefixFor(t *testing.T) {
	assert.Equal(t, "mt", PrefixFor("marginTop"))
	assert.Equal(t, "text", PrefixFor("color"))
	assert.Equal(t, "", PrefixFor("display"))
	assert.True(t, IsTailwindProperty("display"))
	assert.False(t, IsTailwindProperty("letterSpacing"))
}
