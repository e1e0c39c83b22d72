package htmldom

import (
	"strings"
	"testing"

	"github.com/conneroisu/vedit/internal/protocol"
	"github.com/conneroisu/vedit/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body data-ve-id="body"><main data-ve-id="main"><h1 data-ve-id="title" style="color: red">Hello</h1><p data-ve-id="para">World <em>now</em></p></main></body></html>`

func parsePage(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(page), map[string]types.Rect{
		"body":  types.NewRect(0, 0, 800, 600),
		"main":  types.NewRect(0, 0, 800, 400),
		"title": types.NewRect(10, 10, 200, 40),
		"para":  types.NewRect(10, 100, 200, 40),
	})
	require.NoError(t, err)
	return doc
}

func TestElementAt(t *testing.T) {
	doc := parsePage(t)

	tests := []struct {
		name string
		x, y float64
		want string
	}{
		{"innermost", 20, 20, "title"},
		{"container", 500, 300, "main"},
		{"outer", 500, 500, "body"},
		{"outside", 900, 900, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := doc.ElementAt(tt.x, tt.y)
			if tt.want == "" {
				assert.Nil(t, el)
				return
			}
			require.NotNil(t, el)
			assert.Equal(t, tt.want, doc.Attr(el, idAttr))
		})
	}
}

func TestTree(t *testing.T) {
	doc := parsePage(t)
	para := doc.Find(idAttr, "para")
	require.NotNil(t, para)

	assert.Equal(t, "p", doc.Tag(para))
	assert.Equal(t, "World", doc.Text(para))
	assert.Equal(t, "main", doc.Attr(doc.Parent(para), idAttr))
	require.Len(t, doc.Children(para), 1)
	assert.Equal(t, "em", doc.Tag(doc.Children(para)[0]))
	assert.Nil(t, doc.Find(idAttr, "missing"))

	root := doc.Parent(doc.Parent(doc.Find(idAttr, "body")))
	assert.Nil(t, root, "the document node is not an element parent")
}

func TestStyles(t *testing.T) {
	doc := parsePage(t)
	title := doc.Find(idAttr, "title")

	doc.SetStyle(title, "margin-top", "16px")
	assert.Equal(t, "color: red; margin-top: 16px", doc.Attr(title, "style"))
	assert.Equal(t, map[string]string{"color": "red", "marginTop": "16px"}, doc.InlineStyles(title))
	assert.Equal(t, "16px", doc.Computed(title).MarginTop)

	doc.SetStyle(title, "color", "")
	assert.Equal(t, "margin-top: 16px", doc.Attr(title, "style"))

	doc.SetStyle(title, "width", "240px")
	assert.Equal(t, types.NewRect(10, 10, 240, 40), doc.Rect(title))

	doc.SetStyle(title, "display", "none")
	assert.True(t, doc.Hidden(title))
	assert.False(t, doc.Hidden(doc.Find(idAttr, "para")))
}

func TestSetText(t *testing.T) {
	doc := parsePage(t)
	para := doc.Find(idAttr, "para")
	doc.SetText(para, "Earth")
	assert.Equal(t, "Earth", doc.Text(para))

	em := doc.Children(para)[0]
	doc.Remove(em)
	assert.Empty(t, doc.Children(para))

	out, err := doc.Render()
	require.NoError(t, err)
	assert.Contains(t, out, `<p data-ve-id="para">Earth</p>`)
}

func TestInsert(t *testing.T) {
	tests := []struct {
		position string
		want     string
	}{
		{protocol.PositionBefore, `<b>x</b><p data-ve-id="para">`},
		{protocol.PositionAfter, `<em>now</em></p><b>x</b>`},
		{protocol.PositionInside, `<em>now</em><b>x</b></p>`},
	}
	for _, tt := range tests {
		t.Run(tt.position, func(t *testing.T) {
			doc := parsePage(t)
			el, err := doc.Insert(doc.Find(idAttr, "para"), tt.position, "<b>x</b>")
			require.NoError(t, err)
			assert.Equal(t, "b", doc.Tag(el))

			out, err := doc.Render()
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}

	doc := parsePage(t)
	_, err := doc.Insert(doc.Find(idAttr, "para"), protocol.PositionInside, "just text")
	assert.Error(t, err)
	_, err = doc.Insert(nil, protocol.PositionInside, "<b>x</b>")
	assert.Error(t, err)
}

func TestRootProperties(t *testing.T) {
	doc := parsePage(t)
	doc.SetRootProperty("--brand", "#fff")
	doc.SetRootProperty("--accent", "red")
	assert.Equal(t, []string{"--brand", "--accent"}, doc.RootProperties())

	doc.RemoveRootProperty("--brand")
	assert.Equal(t, []string{"--accent"}, doc.RootProperties())

	out, err := doc.Render()
	require.NoError(t, err)
	assert.Contains(t, out, `<html style="--accent: red">`)
}
