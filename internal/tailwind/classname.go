package tailwind

import (
	"regexp"
	"strings"

	"github.com/conneroisu/vedit/internal/types"
)

var (
	colorPalette = `(slate|gray|zinc|neutral|stone|red|orange|amber|yellow|lime|green|emerald|` +
		`teal|cyan|sky|blue|indigo|violet|purple|fuchsia|pink|rose)`

	textColorPattern  = regexp.MustCompile(`^text-` + colorPalette + `-\d{2,3}(/\d+)?$`)
	textArbitrary     = regexp.MustCompile(`^text-\[.*\]$`)
	textNamedColor    = regexp.MustCompile(`^text-(black|white|transparent|current|inherit)$`)
	fontSizePattern   = regexp.MustCompile(`^text-(xs|sm|base|lg|xl|[2-9]xl)$`)
	fontWeightPattern = regexp.MustCompile(`^font-(thin|extralight|light|normal|medium|semibold|bold|extrabold|black)$`)
	fontFamilyPattern = regexp.MustCompile(`^font-(sans|serif|mono|\[.*\])$`)
	textAlignPattern  = regexp.MustCompile(`^text-(left|center|right|justify|start|end)$`)
)

// classSet is a whitespace-split class list with set semantics that
// remembers insertion order.
type classSet struct {
	order []string
	index map[string]bool
}

func newClassSet(className string) *classSet {
	s := &classSet{index: make(map[string]bool)}
	for _, class := range strings.Fields(className) {
		s.add(class)
	}
	return s
}

func (s *classSet) add(class string) {
	if class == "" || s.index[class] {
		return
	}
	s.index[class] = true
	s.order = append(s.order, class)
}

func (s *classSet) removeMatching(match func(string) bool) {
	kept := s.order[:0]
	for _, class := range s.order {
		if match(class) {
			delete(s.index, class)
			continue
		}
		kept = append(kept, class)
	}
	s.order = kept
}

func (s *classSet) String() string {
	return strings.Join(s.order, " ")
}

// UpdateClassName removes the utilities superseded by each Tailwind-flagged
// change and appends the new utility. Changes without a resolvable class are
// dropped. Applying the same changes twice yields the same result as once.
func UpdateClassName(currentClassName string, changes []types.StyleChange) string {
	set := newClassSet(currentClassName)

	for _, change := range changes {
		if !change.UseTailwind || change.IsText() {
			continue
		}

		newClass := ResolveClass(change)
		if newClass == "" {
			continue
		}

		set.removeMatching(SupersededBy(change.Property))
		set.add(newClass)
	}

	return set.String()
}

// ResolveClass returns the change's precomputed class or maps its new value.
func ResolveClass(change types.StyleChange) string {
	if change.TailwindClass != "" {
		return change.TailwindClass
	}
	class, ok := MapToUtilityClass(change.Property, change.NewValue)
	if !ok {
		return ""
	}
	return class
}

// SupersededBy returns a predicate matching the classes that a change to
// property replaces. Matching is property aware: a color change never removes
// a size class such as text-lg even though both share the text- prefix.
func SupersededBy(property string) func(string) bool {
	switch property {
	case "color":
		return func(class string) bool {
			return textColorPattern.MatchString(class) ||
				textArbitrary.MatchString(class) ||
				textNamedColor.MatchString(class)
		}
	case "fontSize":
		return fontSizePattern.MatchString
	case "fontWeight":
		return fontWeightPattern.MatchString
	case "fontFamily":
		return fontFamilyPattern.MatchString
	case "textAlign":
		return textAlignPattern.MatchString
	case "display":
		return isDisplayClass
	}

	prefix := PrefixFor(property)
	if prefix == "" {
		return func(string) bool { return false }
	}

	allowNegative := strings.HasPrefix(property, "margin")
	return func(class string) bool {
		if allowNegative {
			class = strings.TrimPrefix(class, "-")
		}
		return class == prefix ||
			strings.HasPrefix(class, prefix+"-") ||
			strings.HasPrefix(class, prefix+"[")
	}
}

func isDisplayClass(class string) bool {
	for _, display := range displayClasses {
		if class == display {
			return true
		}
	}
	return false
}
