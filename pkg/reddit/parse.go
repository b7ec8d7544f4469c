package reddit

import (
	"bytes"
	"encoding/json"
	"fmt"

	"redditstats/pkg/models"
)

// thing is the {kind, data} envelope wrapping every API object
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listingData struct {
	Children []thing `json:"children"`
}

// entityData holds the fields of a t1/t2/t3/t5 object we keep. Replies is
// only present on comments and is either "" or a Listing.
type entityData struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Author  string          `json:"author"`
	Created float64         `json:"created"`
	Score   int             `json:"score"`
	Replies json.RawMessage `json:"replies"`
}

// ParseListing decodes a Listing body into entities, in API order. Children
// of unknown kinds (more, t4, ...) are dropped.
func ParseListing(data []byte) ([]models.Entity, error) {
	var envelope thing
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}
	if envelope.Kind != "Listing" {
		return nil, fmt.Errorf("expected Listing, got %q", envelope.Kind)
	}

	var listing listingData
	if err := json.Unmarshal(envelope.Data, &listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing data: %w", err)
	}

	entities := make([]models.Entity, 0, len(listing.Children))
	for _, child := range listing.Children {
		found, err := collectThing(child, false)
		if err != nil {
			return nil, err
		}
		entities = append(entities, found...)
	}

	return entities, nil
}

// ParseComments decodes the comments endpoint response, an array of two
// listings: the post itself and its comment forest. The forest is flattened
// depth-first so every reply follows its parent.
func ParseComments(data []byte) ([]models.Entity, error) {
	var listings []thing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode comment listings: %w", err)
	}
	if len(listings) < 2 {
		return []models.Entity{}, nil
	}

	var forest listingData
	if err := json.Unmarshal(listings[1].Data, &forest); err != nil {
		return nil, fmt.Errorf("failed to decode comment listing: %w", err)
	}

	comments := make([]models.Entity, 0, len(forest.Children))
	for _, child := range forest.Children {
		found, err := collectThing(child, true)
		if err != nil {
			return nil, err
		}
		comments = append(comments, found...)
	}
	return comments, nil
}

// collectThing converts t into an entity and, when flatten is set, appends
// the entities of its replies.
func collectThing(t thing, flatten bool) ([]models.Entity, error) {
	kind := models.Kind(t.Kind)
	if !kind.Valid() {
		return nil, nil
	}

	var d entityData
	if err := json.Unmarshal(t.Data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", t.Kind, err)
	}

	out := []models.Entity{{
		ID:      d.ID,
		Created: d.Created,
		Name:    d.Name,
		Author:  d.Author,
		Score:   d.Score,
		Kind:    kind,
	}}

	if !flatten || !hasReplies(d.Replies) {
		return out, nil
	}

	var replies thing
	if err := json.Unmarshal(d.Replies, &replies); err != nil {
		return nil, fmt.Errorf("failed to decode replies of %s: %w", d.Name, err)
	}
	var listing listingData
	if err := json.Unmarshal(replies.Data, &listing); err != nil {
		return nil, fmt.Errorf("failed to decode replies of %s: %w", d.Name, err)
	}
	for _, child := range listing.Children {
		found, err := collectThing(child, true)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}

// hasReplies reports whether raw holds a Listing rather than "" or null
func hasReplies(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
