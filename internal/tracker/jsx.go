package tracker

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	classNameAttr    = regexp.MustCompile(`\bclassName=`)
	doubleQuotedExpr = regexp.MustCompile(`=\{\s*"([^"]*)"\s*\}`)
	singleQuotedExpr = regexp.MustCompile(`=\{\s*'([^']*)'\s*\}`)
	exprAttr         = regexp.MustCompile(`\s[A-Za-z][A-Za-z0-9-]*=\{[^{}]*\}`)
	exprBlock        = regexp.MustCompile(`\{[^{}]*\}`)
	selfClosingTag   = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9-]*)([^<>]*?)\s*/>`)
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true, "img": true,
	"input": true, "link": true, "meta": true, "source": true, "track": true, "wbr": true,
}

// JSXToHTML converts a JSX snippet to HTML on a best-effort basis: className
// becomes class, string-literal expressions become plain attribute values,
// other expressions are dropped and self-closing tags are expanded.
func JSXToHTML(content string) string {
	out := classNameAttr.ReplaceAllString(content, "class=")
	out = doubleQuotedExpr.ReplaceAllString(out, `="$1"`)
	out = singleQuotedExpr.ReplaceAllString(out, `='$1'`)

	for {
		next := exprAttr.ReplaceAllString(out, "")
		next = exprBlock.ReplaceAllString(next, "")
		if next == out {
			break
		}
		out = next
	}

	return selfClosingTag.ReplaceAllStringFunc(out, func(m string) string {
		parts := selfClosingTag.FindStringSubmatch(m)
		tag, attrs := parts[1], parts[2]
		if voidElements[strings.ToLower(tag)] {
			return "<" + tag + attrs + ">"
		}
		return "<" + tag + attrs + "></" + tag + ">"
	})
}

// newSanitizer allows user-generated markup plus class and data attributes.
func newSanitizer() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Globally()
	policy.AllowDataAttributes()
	policy.AllowElements("section", "main", "article", "aside", "header", "footer", "nav", "button")
	return policy
}
