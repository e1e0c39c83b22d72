// Package tailwind converts CSS property values into Tailwind utility classes
// and edits className strings so that a new utility replaces the classes it
// supersedes.
//
// Every mapping here is pure. A property/value pair that has no utility
// equivalent reports ok == false and the caller falls back to an inline style.
package tailwind

import (
	"math"
	"strconv"
	"strings"
)

// spacingStep is one entry of the Tailwind spacing scale.
type spacingStep struct {
	px  float64
	key string
}

// spacingScale is ordered by ascending pixel size. Nearest-value lookup walks
// it linearly and keeps the first minimal distance, so exact ties resolve to
// the smaller step.
var spacingScale = []spacingStep{
	{0, "0"}, {1, "px"}, {2, "0.5"}, {4, "1"}, {6, "1.5"}, {8, "2"}, {10, "2.5"},
	{12, "3"}, {14, "3.5"}, {16, "4"}, {20, "5"}, {24, "6"}, {28, "7"}, {32, "8"},
	{36, "9"}, {40, "10"}, {44, "11"}, {48, "12"}, {56, "14"}, {64, "16"}, {80, "20"},
	{96, "24"}, {112, "28"}, {128, "32"}, {144, "36"}, {160, "40"}, {176, "44"},
	{192, "48"}, {208, "52"}, {224, "56"}, {240, "60"}, {256, "64"}, {288, "72"},
	{320, "80"}, {384, "96"},
}

// spacingPrefixes maps spacing-like properties to their utility prefix.
var spacingPrefixes = map[string]string{
	"margin":        "m",
	"marginTop":     "mt",
	"marginRight":   "mr",
	"marginBottom":  "mb",
	"marginLeft":    "ml",
	"padding":       "p",
	"paddingTop":    "pt",
	"paddingRight":  "pr",
	"paddingBottom": "pb",
	"paddingLeft":   "pl",
	"width":         "w",
	"height":        "h",
	"minWidth":      "min-w",
	"minHeight":     "min-h",
	"maxWidth":      "max-w",
	"maxHeight":     "max-h",
	"gap":           "gap",
}

// otherPrefixes are the utility prefixes of the non-spacing properties.
var otherPrefixes = map[string]string{
	"fontSize":        "text",
	"color":           "text",
	"textAlign":       "text",
	"fontWeight":      "font",
	"fontFamily":      "font",
	"backgroundColor": "bg",
	"borderRadius":    "rounded",
	"display":         "",
}

var fontSizes = map[int]string{
	12:  "text-xs",
	14:  "text-sm",
	16:  "text-base",
	18:  "text-lg",
	20:  "text-xl",
	24:  "text-2xl",
	30:  "text-3xl",
	36:  "text-4xl",
	48:  "text-5xl",
	60:  "text-6xl",
	72:  "text-7xl",
	96:  "text-8xl",
	128: "text-9xl",
}

var fontWeights = map[string]string{
	"100":    "font-thin",
	"200":    "font-extralight",
	"300":    "font-light",
	"400":    "font-normal",
	"500":    "font-medium",
	"600":    "font-semibold",
	"700":    "font-bold",
	"800":    "font-extrabold",
	"900":    "font-black",
	"normal": "font-normal",
	"bold":   "font-bold",
}

var fontFamilies = map[string]string{
	"sans-serif":      "font-sans",
	"system-ui":       "font-sans",
	"ui-sans-serif":   "font-sans",
	"arial":           "font-sans",
	"helvetica":       "font-sans",
	"inter":           "font-sans",
	"serif":           "font-serif",
	"ui-serif":        "font-serif",
	"georgia":         "font-serif",
	"times new roman": "font-serif",
	"monospace":       "font-mono",
	"ui-monospace":    "font-mono",
	"courier new":     "font-mono",
	"menlo":           "font-mono",
	"monaco":          "font-mono",
}

var borderRadii = map[string]string{
	"0":      "rounded-none",
	"2":      "rounded-sm",
	"4":      "rounded",
	"6":      "rounded-md",
	"8":      "rounded-lg",
	"12":     "rounded-xl",
	"16":     "rounded-2xl",
	"24":     "rounded-3xl",
	"9999":   "rounded-full",
	"50%":    "rounded-full",
	"100%":   "rounded-full",
	"9999px": "rounded-full",
}

var textAligns = map[string]string{
	"left":    "text-left",
	"center":  "text-center",
	"right":   "text-right",
	"justify": "text-justify",
	"start":   "text-start",
	"end":     "text-end",
}

// displayClasses maps CSS display keywords to their utility class. The class
// set doubles as the removal list for display changes.
var displayClasses = map[string]string{
	"block":        "block",
	"inline-block": "inline-block",
	"inline":       "inline",
	"flex":         "flex",
	"inline-flex":  "inline-flex",
	"grid":         "grid",
	"inline-grid":  "inline-grid",
	"table":        "table",
	"contents":     "contents",
	"flow-root":    "flow-root",
	"none":         "hidden",
}

var namedColors = map[string]string{
	"black":               "black",
	"#000":                "black",
	"#000000":             "black",
	"rgb(0,0,0)":          "black",
	"white":               "white",
	"#fff":                "white",
	"#ffffff":             "white",
	"rgb(255,255,255)":    "white",
	"transparent":         "transparent",
	"rgba(0,0,0,0)":       "transparent",
	"rgba(255,255,255,0)": "transparent",
	"currentcolor":        "current",
}

// MapToUtilityClass returns the Tailwind class equivalent to setting property
// to value. ok is false when no utility expresses the value and the caller
// must use an inline style instead.
func MapToUtilityClass(property, value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	if prefix, isSpacing := spacingPrefixes[property]; isSpacing {
		return mapSpacing(prefix, property, value)
	}

	switch property {
	case "fontSize":
		px, ok := parsePixels(value)
		if !ok || px != math.Trunc(px) {
			return "", false
		}
		class, ok := fontSizes[int(px)]
		return class, ok

	case "fontWeight":
		class, ok := fontWeights[strings.ToLower(value)]
		return class, ok

	case "fontFamily":
		return mapFontFamily(value)

	case "borderRadius":
		key := strings.ToLower(value)
		if class, ok := borderRadii[key]; ok {
			return class, true
		}
		if px, ok := parsePixels(key); ok && px == math.Trunc(px) {
			class, ok := borderRadii[strconv.Itoa(int(px))]
			return class, ok
		}
		return "", false

	case "textAlign":
		class, ok := textAligns[strings.ToLower(value)]
		return class, ok

	case "display":
		class, ok := displayClasses[strings.ToLower(value)]
		return class, ok

	case "color":
		return mapColor("text", value), true

	case "backgroundColor":
		return mapColor("bg", value), true
	}

	return "", false
}

// PrefixFor returns the utility prefix used by property, or "" when the
// property has no prefix (display) or is unknown.
func PrefixFor(property string) string {
	if prefix, ok := spacingPrefixes[property]; ok {
		return prefix
	}
	return otherPrefixes[property]
}

// IsTailwindProperty reports whether property can ever be expressed as a
// utility class.
func IsTailwindProperty(property string) bool {
	if _, ok := spacingPrefixes[property]; ok {
		return true
	}
	_, ok := otherPrefixes[property]
	return ok
}

// IsColorProperty reports whether property is one of the color properties
// that are opportunistically upgraded from inline styles to utilities.
func IsColorProperty(property string) bool {
	return property == "color" || property == "backgroundColor"
}

func mapSpacing(prefix, property, value string) (string, bool) {
	switch value {
	case "auto":
		return prefix + "-auto", true
	case "100%":
		return prefix + "-full", true
	case "50%":
		return prefix + "-1/2", true
	}

	px, ok := parsePixels(value)
	if !ok {
		return "", false
	}

	negative := false
	if px < 0 {
		// Only margins accept negative utilities.
		if !strings.HasPrefix(property, "margin") {
			return "", false
		}
		negative = true
		px = -px
	}

	key := nearestSpacing(px)
	class := prefix + "-" + key
	if negative && key != "0" {
		class = "-" + class
	}
	return class, true
}

func nearestSpacing(px float64) string {
	best := spacingScale[0]
	bestDistance := math.Abs(px - best.px)
	for _, step := range spacingScale[1:] {
		distance := math.Abs(px - step.px)
		if distance < bestDistance {
			best = step
			bestDistance = distance
		}
	}
	return best.key
}

func mapFontFamily(value string) (string, bool) {
	first := strings.TrimSpace(strings.Split(value, ",")[0])
	first = strings.Trim(first, `"'`)
	if first == "" {
		return "", false
	}
	if class, ok := fontFamilies[strings.ToLower(first)]; ok {
		return class, true
	}
	return "font-[" + strings.ReplaceAll(first, " ", "_") + "]", true
}

func mapColor(prefix, value string) string {
	compact := strings.ReplaceAll(value, " ", "")
	if name, ok := namedColors[strings.ToLower(compact)]; ok {
		return prefix + "-" + name
	}
	return prefix + "-[" + compact + "]"
}

// parsePixels reads a CSS length in px (or unitless). rem and em are converted
// with a 16px root size.
func parsePixels(value string) (float64, bool) {
	v := strings.TrimSpace(strings.ToLower(value))
	multiplier := 1.0
	switch {
	case strings.HasSuffix(v, "px"):
		v = strings.TrimSuffix(v, "px")
	case strings.HasSuffix(v, "rem"):
		v = strings.TrimSuffix(v, "rem")
		multiplier = 16
	case strings.HasSuffix(v, "em"):
		v = strings.TrimSuffix(v, "em")
		multiplier = 16
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n * multiplier, true
}

// ToCSSProperty converts a camelCase style key into its kebab-case CSS name.
func ToCSSProperty(camel string) string {
	if strings.HasPrefix(camel, "--") {
		return camel
	}
	var b strings.Builder
	for _, r := range camel {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToCamelCase converts a kebab-case CSS property name into its camelCase key.
// Custom properties are returned unchanged.
func ToCamelCase(kebab string) string {
	if strings.HasPrefix(kebab, "--") {
		return kebab
	}
	parts := strings.Split(kebab, "-")
	var b strings.Builder
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 || b.Len() == 0 {
			b.WriteString(part)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	return b.String()
}
