// Package inject serves the in-iframe tracker script and rewrites preview
// HTML so that it loads the script and every element carries a data-ve-id.
package inject

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ScriptPath is the URL the server serves the tracker script from.
const ScriptPath = "/__vedit/inject.js"

// IDAttr is the element identity attribute shared with the tracker.
const IDAttr = "data-ve-id"

//go:embed inject.js
var script []byte

// Script returns the tracker script.
func Script() []byte {
	return script
}

// excluded tags never receive an id.
var excluded = map[string]bool{
	"html":     true,
	"head":     true,
	"script":   true,
	"style":    true,
	"meta":     true,
	"link":     true,
	"title":    true,
	"noscript": true,
}

// InjectHTML parses an HTML document, assigns data-ve-id to every trackable
// element that lacks one and appends the tracker script tag to <body> (or
// <head>, or the root element when neither exists). A document that already
// loads the script is not given a second tag.
func InjectHTML(r io.Reader) ([]byte, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	used := make(map[string]bool)
	var (
		body, head, root *html.Node
		hasScript        bool
		elements         []*html.Node
	)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Body:
				body = n
			case atom.Head:
				head = n
			case atom.Html:
				root = n
			case atom.Script:
				if attr(n, "src") == ScriptPath {
					hasScript = true
				}
			}
			if id := attr(n, IDAttr); id != "" {
				used[id] = true
			} else if !excluded[n.Data] {
				elements = append(elements, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	next := 1
	for _, n := range elements {
		id := "ve-" + strconv.Itoa(next)
		for used[id] {
			next++
			id = "ve-" + strconv.Itoa(next)
		}
		used[id] = true
		next++
		n.Attr = append(n.Attr, html.Attribute{Key: IDAttr, Val: id})
	}

	if !hasScript {
		target := body
		if target == nil {
			target = head
		}
		if target == nil {
			target = root
		}
		if target == nil {
			target = doc
		}
		target.AppendChild(&html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Script,
			Data:     "script",
			Attr:     []html.Attribute{{Key: "src", Val: ScriptPath}},
		})
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}
	return buf.Bytes(), nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
