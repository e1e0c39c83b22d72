//go:build property
// +build property

package inlinestyle

import (
	"strings"
	"testing"

	"github.com/conneroisu/vedit/internal/types"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestMergeProperties checks that merged styles parse back to the requested values
func TestMergeProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	existingGen := gen.OneConstOf(
		"",
		"color: red; font-size: 16px",
		`color: 'red', fontSize: 16`,
		`padding: '4px 8px', margin: 0`,
		"background: url(a.png)",
	)
	propertyGen := gen.OneConstOf("color", "marginTop", "fontSize", "fontFamily", "opacity", "width")
	valueGen := gen.RegexMatch(`^[a-zA-Z0-9#%.(), ]{1,20}$`)

	// Property: every merged change is readable with its new value
	properties.Property("merge round trip", prop.ForAll(
		func(existing, property, value string) bool {
			value = strings.TrimSpace(value)
			if value == "" {
				return true
			}
			merged := Merge(existing, []types.StyleChange{{Property: property, NewValue: value}})
			return Parse(merged)[property] == value
		},
		existingGen,
		propertyGen,
		valueGen,
	))

	// Property: serialization is stable once normalized
	properties.Property("serialize is a fixed point", prop.ForAll(
		func(existing string) bool {
			once := Merge(existing, nil)
			return Merge(once, nil) == once
		},
		existingGen,
	))

	properties.TestingRun(t)
}
