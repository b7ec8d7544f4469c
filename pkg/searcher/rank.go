package searcher

import (
	"fmt"
	"sort"

	"redditstats/pkg/models"
)

// AuthorRanking is the top_users result
type AuthorRanking struct {
	ByPosts    []string `json:"top_users_by_posts" yaml:"top_users_by_posts"`
	ByComments []string `json:"top_users_by_comments" yaml:"top_users_by_comments"`
}

// NewAuthorRanking returns a ranking with both lists empty rather than nil
func NewAuthorRanking() *AuthorRanking {
	return &AuthorRanking{ByPosts: []string{}, ByComments: []string{}}
}

// AuthorCount is the number of entities attributed to one author
type AuthorCount struct {
	Author string
	Count  int
}

func (a AuthorCount) String() string {
	return fmt.Sprintf("%s: %d", a.Author, a.Count)
}

// RankByScore returns a copy of entities ordered by score, highest first.
// Equal scores keep their input order.
func RankByScore(entities []models.Entity) []models.Entity {
	ranked := make([]models.Entity, len(entities))
	copy(ranked, entities)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// CountAuthors tallies entities per author. The result is ordered by count,
// highest first; equal counts keep the order in which authors first appeared.
func CountAuthors(entities []models.Entity) []AuthorCount {
	index := make(map[string]int)
	counts := make([]AuthorCount, 0)
	for _, e := range entities {
		if i, ok := index[e.Author]; ok {
			counts[i].Count++
			continue
		}
		index[e.Author] = len(counts)
		counts = append(counts, AuthorCount{Author: e.Author, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// RankAuthors formats CountAuthors as "author: count" lines
func RankAuthors(entities []models.Entity) []string {
	counts := CountAuthors(entities)
	lines := make([]string, 0, len(counts))
	for _, c := range counts {
		lines = append(lines, c.String())
	}
	return lines
}

// Rankings returns both ranking lists
func (r *AuthorRanking) Rankings() (byPosts, byComments []string) {
	return r.ByPosts, r.ByComments
}
