package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage_Decode(t *testing.T) {
	body := `{"items":[{"lab_date":"2024-03-08T23:59:00Z","empi":"E1","value":4.2}],
	          "links":[{"rel":"self","href":"https://src/labs?page=1"},{"rel":"next","href":"https://src/labs?page=2"}]}`

	var page Page
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "E1", page.Items[0]["empi"])

	next, ok := page.Next()
	assert.True(t, ok)
	assert.Equal(t, "https://src/labs?page=2", next)
}

func TestRecord_Document(t *testing.T) {
	plain := Record{"empi": "E1"}
	assert.Equal(t, Record{"empi": "E1"}, plain.Document())

	withID := Record{"_id": "upstream-7", "empi": "E2"}
	doc := withID.Document()
	assert.Equal(t, Record{SourceIDField: "upstream-7", "empi": "E2"}, doc)
	assert.Equal(t, "upstream-7", withID["_id"], "the fetched record is left alone")
}

func TestPage_Next(t *testing.T) {
	var nilPage *Page
	_, ok := nilPage.Next()
	assert.False(t, ok)

	last := &Page{Links: []Link{{Rel: "self", Href: "a"}, {Rel: "prev", Href: "b"}}}
	_, ok = last.Next()
	assert.False(t, ok)

	emptyHref := &Page{Links: []Link{{Rel: "next", Href: ""}}}
	_, ok = emptyHref.Next()
	assert.False(t, ok)

	caseSensitive := &Page{Links: []Link{{Rel: "NEXT", Href: "x"}}}
	_, ok = caseSensitive.Next()
	assert.False(t, ok)

	first := &Page{Links: []Link{{Rel: "next", Href: "p2"}, {Rel: "next", Href: "p3"}}}
	next, ok := first.Next()
	assert.True(t, ok)
	assert.Equal(t, "p2", next)
}
