package reddit

import (
	"testing"

	"redditstats/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListing(t *testing.T) {
	body := `{
		"kind": "Listing",
		"data": {
			"after": "t3_b",
			"before": null,
			"children": [
				{"kind": "t3", "data": {"id": "a", "name": "t3_a", "author": "x", "created": 1700000100.0, "score": 5}},
				{"kind": "t4", "data": {"id": "m", "name": "t4_m"}},
				{"kind": "t3", "data": {"id": "b", "name": "t3_b", "author": "y", "created": 1700000000, "score": 12}}
			]
		}
	}`

	entities, err := ParseListing([]byte(body))
	require.NoError(t, err)

	require.Len(t, entities, 2)
	assert.Equal(t, models.Entity{
		ID: "a", Name: "t3_a", Author: "x", Created: 1700000100, Score: 5, Kind: models.KindLink,
	}, entities[0])
	assert.Equal(t, "t3_b", entities[1].Name)
}

func TestParseListingEmpty(t *testing.T) {
	entities, err := ParseListing([]byte(`{"kind":"Listing","data":{"children":[]}}`))
	require.NoError(t, err)
	assert.NotNil(t, entities)
	assert.Empty(t, entities)
}

func TestParseListingRejectsOtherShapes(t *testing.T) {
	_, err := ParseListing([]byte(`{"kind":"t3","data":{}}`))
	assert.Error(t, err)

	_, err = ParseListing([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseCommentsFlattensReplies(t *testing.T) {
	body := `[
		{"kind": "Listing", "data": {"children": [
			{"kind": "t3", "data": {"id": "p", "name": "t3_p", "author": "op", "created": 1, "score": 1}}
		]}},
		{"kind": "Listing", "data": {"children": [
			{"kind": "t1", "data": {"id": "c1", "name": "t1_c1", "author": "x", "created": 3, "score": 1,
				"replies": {"kind": "Listing", "data": {"children": [
					{"kind": "t1", "data": {"id": "c2", "name": "t1_c2", "author": "y", "created": 4, "score": 1,
						"replies": {"kind": "Listing", "data": {"children": [
							{"kind": "t1", "data": {"id": "c3", "name": "t1_c3", "author": "x", "created": 5, "score": 1, "replies": ""}}
						]}}}},
					{"kind": "more", "data": {"count": 4, "children": ["c9"]}}
				]}}}},
			{"kind": "t1", "data": {"id": "c4", "name": "t1_c4", "author": "z", "created": 2, "score": 0, "replies": ""}}
		]}}
	]`

	comments, err := ParseComments([]byte(body))
	require.NoError(t, err)

	var names, authors []string
	for _, c := range comments {
		names = append(names, c.Name)
		authors = append(authors, c.Author)
		assert.Equal(t, models.KindComment, c.Kind)
	}
	assert.Equal(t, []string{"t1_c1", "t1_c2", "t1_c3", "t1_c4"}, names)
	assert.Equal(t, []string{"x", "y", "x", "z"}, authors)
}

func TestParseCommentsWithoutForest(t *testing.T) {
	comments, err := ParseComments([]byte(`[{"kind":"Listing","data":{"children":[]}}]`))
	require.NoError(t, err)
	assert.Empty(t, comments)

	_, err = ParseComments([]byte(`{"kind":"Listing"}`))
	assert.Error(t, err)
}

func TestHasReplies(t *testing.T) {
	assert.False(t, hasReplies(nil))
	assert.False(t, hasReplies([]byte(`""`)))
	assert.False(t, hasReplies([]byte(`null`)))
	assert.True(t, hasReplies([]byte(` {"kind":"Listing"}`)))
}
