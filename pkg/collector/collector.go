package collector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"redditstats/pkg/logger"
	"redditstats/pkg/models"
)

// Source yields one page of entities. before is the fullname the page must
// precede, or "" for the first page. Implementations do not need to return
// entities in any particular order.
type Source interface {
	Page(ctx context.Context, before string) ([]models.Entity, error)
}

// Collector walks a reverse-chronological source backwards in time
type Collector struct {
	logger logger.Logger
}

// New creates a Collector
func New(log logger.Logger) *Collector {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Collector{logger: log}
}

// CollectSince fetches pages from source until the oldest entity seen is no
// newer than threshold, then returns everything newer than threshold, newest
// first. An entity is kept once even if several pages repeat it. Pagination
// also stops on a page that adds no unseen entity. Any error discards what
// was fetched.
func (c *Collector) CollectSince(ctx context.Context, source Source, threshold time.Time) ([]models.Entity, error) {
	log := c.logger.WithField("source", sourceName(source))

	first, err := c.fetch(ctx, source, "")
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		log.Debug("first page is empty")
		return []models.Entity{}, nil
	}

	seen := make(map[string]struct{}, len(first))
	entities, _ := appendUnseen(make([]models.Entity, 0, len(first)), first, seen)
	pages := 1

	for {
		oldest := entities[len(entities)-1]
		if !CreatedAt(oldest).After(threshold) {
			break
		}

		page, err := c.fetch(ctx, source, oldest.Name)
		if err != nil {
			return nil, err
		}
		pages++
		if len(page) == 0 {
			log.DebugWithFields("reached empty page", map[string]interface{}{
				"pages": pages,
			})
			break
		}

		var added int
		entities, added = appendUnseen(entities, page, seen)
		if added == 0 {
			log.WarnWithFields("page added no new entities, stopping", map[string]interface{}{
				"cursor": oldest.Name,
				"pages":  pages,
			})
			break
		}
	}

	kept := Trim(entities, threshold)
	log.DebugWithFields("collection finished", map[string]interface{}{
		"pages":   pages,
		"fetched": len(entities),
		"kept":    len(kept),
	})
	return kept, nil
}

// CollectAll fetches a single page without any time window
func (c *Collector) CollectAll(ctx context.Context, source Source) ([]models.Entity, error) {
	entities, err := source.Page(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", sourceName(source), err)
	}
	if entities == nil {
		entities = []models.Entity{}
	}
	return entities, nil
}

// appendUnseen appends the entities of page whose fullname is not in seen,
// records them, and reports how many were added
func appendUnseen(entities, page []models.Entity, seen map[string]struct{}) ([]models.Entity, int) {
	added := 0
	for _, e := range page {
		if _, ok := seen[e.Name]; ok {
			continue
		}
		seen[e.Name] = struct{}{}
		entities = append(entities, e)
		added++
	}
	return entities, added
}

// fetch gets one page and orders it newest first
func (c *Collector) fetch(ctx context.Context, source Source, before string) ([]models.Entity, error) {
	page, err := source.Page(ctx, before)
	if err != nil {
		c.logger.ErrorWithFields("page fetch failed", map[string]interface{}{
			"source": sourceName(source),
			"before": before,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("failed to fetch %s page: %w", sourceName(source), err)
	}

	c.logger.DebugWithFields("fetched page", map[string]interface{}{
		"source": sourceName(source),
		"before": before,
		"count":  len(page),
	})

	SortNewestFirst(page)
	return page, nil
}

// SortNewestFirst orders entities by creation time, newest first. Entities
// created at the same instant keep their relative order.
func SortNewestFirst(entities []models.Entity) {
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].Created > entities[j].Created
	})
}

// Trim returns the prefix of entities that ends just before the first entity
// created before threshold. If none is older, the whole slice is returned.
func Trim(entities []models.Entity, threshold time.Time) []models.Entity {
	for i, e := range entities {
		if CreatedAt(e).Before(threshold) {
			return entities[:i]
		}
	}
	return entities
}

// CreatedAt converts the entity's Unix timestamp to a time.Time
func CreatedAt(e models.Entity) time.Time {
	sec, frac := math.Modf(e.Created)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

func sourceName(source Source) string {
	if s, ok := source.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", source)
}
