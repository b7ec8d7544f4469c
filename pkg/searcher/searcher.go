package searcher

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"redditstats/pkg/collector"
	"redditstats/pkg/logger"
	"redditstats/pkg/models"
)

// Result is the outcome of one search run
type Result struct {
	RunID     string          `json:"run_id" yaml:"run_id"`
	Mode      Mode            `json:"mode" yaml:"mode"`
	Subreddit string          `json:"subreddit" yaml:"subreddit"`
	Days      int             `json:"days" yaml:"days"`
	Threshold time.Time       `json:"threshold" yaml:"threshold"`
	Links     []models.Entity `json:"links,omitempty" yaml:"links,omitempty"`
	Users     *AuthorRanking  `json:"users,omitempty" yaml:"users,omitempty"`
}

// Payload returns what gets written to the output sink: the ranked links
// for top_links, the author ranking for top_users
func (r *Result) Payload() interface{} {
	if r.Mode == ModeTopUsers {
		if r.Users == nil {
			return NewAuthorRanking()
		}
		return r.Users
	}
	if r.Links == nil {
		return []models.Entity{}
	}
	return r.Links
}

// Searcher runs searches against a set of listing sources
type Searcher struct {
	sources   Sources
	collector *collector.Collector
	now       func() time.Time
	logger    logger.Logger
}

// Option configures a Searcher
type Option func(*Searcher)

// WithClock overrides the time the search window is measured from
func WithClock(now func() time.Time) Option {
	return func(s *Searcher) { s.now = now }
}

// New creates a Searcher reading from sources
func New(sources Sources, log logger.Logger, opts ...Option) *Searcher {
	if log == nil {
		log = logger.GetLogger()
	}

	s := &Searcher{
		sources:   sources,
		collector: collector.New(log),
		now:       time.Now,
		logger:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes mode against subreddit over the last days days
func (s *Searcher) Run(ctx context.Context, mode Mode, subreddit string, days int) (*Result, error) {
	if subreddit == "" {
		return nil, fmt.Errorf("subreddit name is required")
	}
	if days < 0 {
		return nil, fmt.Errorf("days must not be negative, got %d", days)
	}

	result := &Result{
		RunID:     uuid.New().String(),
		Mode:      mode,
		Subreddit: subreddit,
		Days:      days,
		Threshold: s.now().Add(-time.Duration(days) * 24 * time.Hour),
	}

	log := s.logger.WithFields(map[string]interface{}{
		"run_id":    result.RunID,
		"mode":      mode.String(),
		"subreddit": subreddit,
	})
	log.InfoWithFields("search started", map[string]interface{}{
		"days":      days,
		"threshold": result.Threshold.Format(time.RFC3339),
	})

	start := time.Now()
	var err error
	switch mode {
	case ModeTopLinks:
		result.Links, err = s.TopLinks(ctx, subreddit, result.Threshold)
	case ModeTopUsers:
		result.Users, err = s.TopUsers(ctx, subreddit, result.Threshold)
	default:
		err = fmt.Errorf("unsupported mode %s", mode)
	}
	if err != nil {
		log.WithError(err).Error("search failed")
		return nil, err
	}

	log.InfoWithFields("search finished", map[string]interface{}{
		"duration": time.Since(start),
	})
	return result, nil
}

// TopLinks returns the all-time top posts created after threshold, ordered
// by score
func (s *Searcher) TopLinks(ctx context.Context, subreddit string, threshold time.Time) ([]models.Entity, error) {
	posts, err := s.collector.CollectSince(ctx, s.sources.TopPosts(subreddit), threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to collect top posts: %w", err)
	}
	return RankByScore(posts), nil
}

// TopUsers ranks the authors of posts created after threshold, and the
// authors of every comment on those posts. Comment trees are fetched one
// post at a time; the first failure aborts the whole ranking.
func (s *Searcher) TopUsers(ctx context.Context, subreddit string, threshold time.Time) (*AuthorRanking, error) {
	posts, err := s.collector.CollectSince(ctx, s.sources.NewPosts(subreddit), threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to collect new posts: %w", err)
	}

	ranking := NewAuthorRanking()
	if len(posts) == 0 {
		return ranking, nil
	}

	var comments []models.Entity
	for i, post := range posts {
		tree, err := s.collector.CollectAll(ctx, s.sources.Comments(subreddit, post.ID))
		if err != nil {
			return nil, fmt.Errorf("failed to collect comments of %s: %w", post.Name, err)
		}
		comments = append(comments, tree...)

		s.logger.DebugWithFields("collected comments", map[string]interface{}{
			"post":     post.Name,
			"comments": len(tree),
			"progress": fmt.Sprintf("%d/%d", i+1, len(posts)),
		})
	}

	ranking.ByPosts = RankAuthors(posts)
	ranking.ByComments = RankAuthors(comments)
	return ranking, nil
}
