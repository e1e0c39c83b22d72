//go:build property
// +build property

package tailwind

import (
	"fmt"
	"strings"
	"testing"

	"github.com/conneroisu/vedit/internal/types"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestClassNameProperties checks className editing invariants over generated inputs
func TestClassNameProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	classGen := gen.OneConstOf(
		"p-4", "mt-2", "-mt-1", "text-lg", "text-red-500", "text-[#fff]", "font-bold",
		"font-mono", "flex", "block", "hidden", "rounded", "rounded-lg", "bg-blue-500",
		"w-full", "h-8", "gap-2", "text-center", "shadow", "items-center",
	)
	propertyGen := gen.OneConstOf(
		"marginTop", "paddingLeft", "width", "gap", "color", "backgroundColor",
		"fontSize", "fontWeight", "fontFamily", "textAlign", "display", "borderRadius",
	)
	valueGen := gen.OneConstOf(
		"0px", "4px", "16px", "18px", "auto", "100%", "700", "center", "flex", "none",
		"8px", "#3b82f6", "white", "Georgia", "monospace",
	)

	// Property: applying the same change twice equals applying it once
	properties.Property("update is idempotent", prop.ForAll(
		func(classes []string, property, value string) bool {
			changes := []types.StyleChange{{Property: property, NewValue: value, UseTailwind: true}}
			once := UpdateClassName(strings.Join(classes, " "), changes)
			return UpdateClassName(once, changes) == once
		},
		gen.SliceOf(classGen),
		propertyGen,
		valueGen,
	))

	// Property: a mapped change always ends up in the result
	properties.Property("mapped class is present", prop.ForAll(
		func(classes []string, property, value string) bool {
			class, ok := MapToUtilityClass(property, value)
			if !ok {
				return true
			}
			result := UpdateClassName(strings.Join(classes, " "), []types.StyleChange{{
				Property: property, NewValue: value, UseTailwind: true,
			}})
			for _, c := range strings.Fields(result) {
				if c == class {
					return true
				}
			}
			return false
		},
		gen.SliceOf(classGen),
		propertyGen,
		valueGen,
	))

	// Property: spacing lookups never fail for finite non-negative pixel values
	properties.Property("spacing always maps", prop.ForAll(
		func(px int) bool {
			_, ok := MapToUtilityClass("paddingTop", fmt.Sprintf("%dpx", px))
			return ok
		},
		gen.IntRange(0, 2000),
	))

	properties.TestingRun(t)
}
