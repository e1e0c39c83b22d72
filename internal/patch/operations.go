package patch

import (
	"strings"

	"github.com/conneroisu/vedit/internal/inlinestyle"
	"github.com/conneroisu/vedit/internal/jsx"
	"github.com/conneroisu/vedit/internal/tailwind"
	"github.com/conneroisu/vedit/internal/types"
)

// planner turns changes into operations. Style operations are chained on
// the opening tag: each one searches for the tag text the previous one
// produced, so they stay valid when applied in order.
type planner struct {
	lines  []string
	loc    jsx.Location
	tag    string
	ops    []Operation
	failed []FailedEdit
}

func newPlanner(lines []string, loc jsx.Location) *planner {
	return &planner{lines: lines, loc: loc, tag: loc.OpeningTag}
}

func (p *planner) build(changes []types.StyleChange) *planner {
	var (
		text     *types.StyleChange
		classes  []types.StyleChange
		inline   []types.StyleChange
		previous = make(map[string]int)
	)

	// One change per property; a later change wins.
	deduped := make([]types.StyleChange, 0, len(changes))
	for _, change := range changes {
		if i, ok := previous[change.Property]; ok {
			deduped[i] = change
			continue
		}
		previous[change.Property] = len(deduped)
		deduped = append(deduped, change)
	}

	for _, change := range deduped {
		switch {
		case change.IsText():
			c := change
			text = &c
		case change.Property == "":
			continue
		case change.UseTailwind:
			if class := tailwind.ResolveClass(change); class != "" {
				change.TailwindClass = class
				classes = append(classes, change)
				continue
			}
			change.UseTailwind = false
			inline = append(inline, change)
		case tailwind.IsColorProperty(change.Property) && strings.TrimSpace(change.NewValue) != "":
			class, _ := tailwind.MapToUtilityClass(change.Property, change.NewValue)
			change.UseTailwind = true
			change.TailwindClass = class
			classes = append(classes, change)
		default:
			inline = append(inline, change)
		}
	}

	if text != nil {
		p.planText(*text)
	}
	p.planStyles(classes, inline)
	return p
}

// planText replaces the element's text. The search span runs from the
// opening tag to the closing tag so it is anchored to this element.
func (p *planner) planText(change types.StyleChange) {
	loc := p.loc
	if loc.SelfClosing() {
		return
	}

	if loc.InlineContent {
		line := p.lines[loc.EndLine]
		raw := line[loc.EndColumn:loc.ClosingColumn]
		replaced, ok := replaceText(raw, change.OldValue, change.NewValue)
		if !ok {
			return
		}
		p.push(Operation{
			Search:  loc.OpeningTag + raw,
			Replace: loc.OpeningTag + replaced,
			Change:  types.TextContentProperty,
		})
		return
	}

	block := loc.ElementContent
	if strings.TrimSpace(block) == "" {
		return
	}

	var newBlock string
	switch {
	case change.OldValue != "" && strings.TrimSpace(block) == strings.TrimSpace(change.OldValue):
		newBlock = leadingSpace(block) + change.NewValue
	case change.OldValue != "" && strings.Contains(block, change.OldValue):
		newBlock = strings.Replace(block, change.OldValue, change.NewValue, 1)
	default:
		return
	}

	head := loc.OpeningTag + p.lines[loc.EndLine][loc.EndColumn:] + "\n"
	tail := "\n" + p.lines[loc.ClosingTagLine][:loc.ClosingColumn]
	p.push(Operation{
		Search:  head + block + tail,
		Replace: head + newBlock + tail,
		Change:  types.TextContentProperty,
	})
}

// replaceText rewrites same-line content, keeping the whitespace around it.
// Content holding markup or expressions only has the old text replaced.
func replaceText(raw, oldValue, newValue string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	lead := raw[:strings.Index(raw, trimmed)]
	trail := raw[len(lead)+len(trimmed):]
	if trimmed == "" {
		lead, trail = raw, ""
	}

	if strings.ContainsAny(trimmed, "<{") && oldValue != "" && trimmed != oldValue {
		if !strings.Contains(trimmed, oldValue) {
			return "", false
		}
		return lead + strings.Replace(trimmed, oldValue, newValue, 1) + trail, true
	}
	if trimmed == newValue {
		return "", false
	}
	return lead + newValue + trail, true
}

func (p *planner) planStyles(classes, inline []types.StyleChange) {
	if len(classes) == 0 && len(inline) == 0 {
		return
	}

	styleAttr, hasStyle := jsx.ExtractAttribute(p.tag, "style")
	if hasStyle && styleAttr.Kind == jsx.AttrBare {
		hasStyle = false
	}

	if hasStyle && len(classes) > 0 {
		if styleAttr.Kind == jsx.AttrExpression {
			p.fail(classes, "style is a dynamic expression")
			p.fail(inline, "style is a dynamic expression")
			return
		}
		existing := parseStyleAttr(styleAttr)
		if implicit, ok := groupedClasses(existing, classes); ok && len(inline) == 0 {
			p.convertToClasses(styleAttr, append(implicit, classes...))
			return
		}
		// Something cannot become a class: everything stays inline.
		for i := range classes {
			classes[i].UseTailwind = false
		}
		inline = append(classes, inline...)
		classes = nil
	}

	if len(classes) > 0 {
		p.planClassName(classes, &inline)
	}
	for _, change := range inline {
		p.planInline(change)
	}
}

// groupedClasses maps every existing inline property not overridden by a
// new change to an implicit class change. ok is false when any property or
// change has no utility equivalent, or when the style holds entries that are
// not literal declarations.
func groupedClasses(existing *inlinestyle.Properties, classes []types.StyleChange) ([]types.StyleChange, bool) {
	if len(existing.Verbatim()) > 0 {
		return nil, false
	}
	overridden := make(map[string]bool, len(classes))
	for _, change := range classes {
		if change.TailwindClass == "" {
			return nil, false
		}
		overridden[change.Property] = true
	}

	var implicit []types.StyleChange
	for _, key := range existing.Keys() {
		if overridden[key] {
			continue
		}
		if existing.IsExpression(key) {
			return nil, false
		}
		value, _ := existing.Get(key)
		class, ok := tailwind.MapToUtilityClass(key, value)
		if !ok {
			return nil, false
		}
		implicit = append(implicit, types.StyleChange{
			Property:      key,
			NewValue:      value,
			UseTailwind:   true,
			TailwindClass: class,
		})
	}
	return implicit, true
}

// convertToClasses drops the style attribute and folds every property into
// the class list in one operation.
func (p *planner) convertToClasses(styleAttr jsx.Attribute, changes []types.StyleChange) {
	start := styleAttr.Start
	for start > 0 && isSpace(p.tag[start-1]) {
		start--
	}
	tag := p.tag[:start] + p.tag[styleAttr.End:]

	newTag, ok := setClassName(tag, changes)
	if !ok {
		p.fail(changes, "className is a dynamic expression")
		return
	}
	p.pushTag(newTag, "className")
}

func (p *planner) planClassName(classes []types.StyleChange, inline *[]types.StyleChange) {
	newTag, ok := setClassName(p.tag, classes)
	if !ok {
		// A computed className cannot be edited; keep the changes inline.
		for _, change := range classes {
			change.UseTailwind = false
			*inline = append(*inline, change)
		}
		return
	}
	p.pushTag(newTag, "className")
}

// setClassName rewrites or inserts the className attribute of tag.
func setClassName(tag string, changes []types.StyleChange) (string, bool) {
	attr, ok := jsx.ExtractAttribute(tag, "className")
	if !ok || attr.Kind == jsx.AttrBare {
		value := tailwind.UpdateClassName("", changes)
		if value == "" {
			return tag, true
		}
		return insertAttribute(tag, `className="`+value+`"`), true
	}

	var raw string
	switch attr.Kind {
	case jsx.AttrString:
		q := string(attr.Quote())
		raw = q + tailwind.UpdateClassName(attr.Value, changes) + q
	case jsx.AttrExprString:
		q := string(attr.Quote())
		raw = "{" + q + tailwind.UpdateClassName(attr.Value, changes) + q + "}"
	default:
		return tag, false
	}
	return tag[:attr.Start] + attr.Name + "=" + raw + tag[attr.End:], true
}

// planInline merges one change into the style attribute, creating it when
// absent.
func (p *planner) planInline(change types.StyleChange) {
	attr, ok := jsx.ExtractAttribute(p.tag, "style")
	if !ok || attr.Kind == jsx.AttrBare {
		if strings.TrimSpace(change.NewValue) == "" {
			return
		}
		body := inlinestyle.Merge("", []types.StyleChange{change})
		p.pushTag(insertAttribute(p.tag, inlinestyle.Attribute(body)), "style: "+change.Property)
		return
	}
	if attr.Kind == jsx.AttrExpression {
		p.fail([]types.StyleChange{change}, "style is a dynamic expression")
		return
	}

	body := inlinestyle.MergeWith(attr.Value, styleSyntax(attr), []types.StyleChange{change})
	var newTag string
	if body == "" {
		start := attr.Start
		for start > 0 && isSpace(p.tag[start-1]) {
			start--
		}
		newTag = p.tag[:start] + p.tag[attr.End:]
	} else {
		newTag = p.tag[:attr.Start] + inlinestyle.Attribute(body) + p.tag[attr.End:]
	}
	p.pushTag(newTag, "style: "+change.Property)
}

func parseStyleAttr(attr jsx.Attribute) *inlinestyle.Properties {
	return inlinestyle.ParseOrdered(attr.Value, styleSyntax(attr))
}

// styleSyntax is CSS for style="..." and the JSX object form otherwise.
func styleSyntax(attr jsx.Attribute) inlinestyle.Syntax {
	switch attr.Kind {
	case jsx.AttrString:
		return inlinestyle.SyntaxCSS
	case jsx.AttrObject:
		return inlinestyle.SyntaxJSX
	default:
		return inlinestyle.SyntaxAuto
	}
}

// insertAttribute places attr right after the tag name.
func insertAttribute(tag, attr string) string {
	nameEnd := len(jsx.TagName(tag)) + 1
	return tag[:nameEnd] + " " + attr + tag[nameEnd:]
}

func (p *planner) pushTag(newTag, change string) {
	if newTag == p.tag {
		return
	}
	p.push(Operation{Search: p.tag, Replace: newTag, Change: change})
	p.tag = newTag
}

func (p *planner) push(op Operation) {
	p.ops = append(p.ops, op)
}

func (p *planner) fail(changes []types.StyleChange, reason string) {
	for _, change := range changes {
		p.failed = append(p.failed, FailedEdit{Change: change.Property, Reason: reason})
	}
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t\n"))]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
