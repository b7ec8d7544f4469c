package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"redditstats/pkg/config"
	errs "redditstats/pkg/errors"
	"redditstats/pkg/models"
)

// Endpoint paths
const (
	MePath       = "/api/v1/me"
	topPathFmt   = "/r/%s/top"
	newPathFmt   = "/r/%s/new"
	commentsPath = "/r/%s/comments/%s"
)

// Account is the subset of /api/v1/me we report
type Account struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Created      float64 `json:"created"`
	LinkKarma    int     `json:"link_karma"`
	CommentKarma int     `json:"comment_karma"`
}

// GetMe returns the account the client is authorized as
func (c *Client) GetMe(ctx context.Context) (*Account, error) {
	data, err := c.Get(ctx, MePath, nil)
	if err != nil {
		return nil, err
	}

	var account Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, errs.NewParsingError(MePath, err)
	}
	return &account, nil
}

// GetTop fetches one page of the subreddit's all-time top posts. before, if
// non-empty, is the fullname the page must precede.
func (c *Client) GetTop(ctx context.Context, subreddit, before string, limit int) ([]models.Entity, error) {
	params := url.Values{
		"t":     {"all"},
		"limit": {strconv.Itoa(clampLimit(limit))},
	}
	if before != "" {
		params.Set("before", before)
	}
	return c.getListing(ctx, fmt.Sprintf(topPathFmt, subreddit), params)
}

// GetNew fetches one page of the subreddit's newest posts
func (c *Client) GetNew(ctx context.Context, subreddit, before, after string, limit int) ([]models.Entity, error) {
	params := url.Values{
		"limit": {strconv.Itoa(clampLimit(limit))},
	}
	if before != "" {
		params.Set("before", before)
	}
	if after != "" {
		params.Set("after", after)
	}
	return c.getListing(ctx, fmt.Sprintf(newPathFmt, subreddit), params)
}

// GetComments fetches the full comment tree of a post, newest first, as a
// flat sequence. depth <= 0 leaves the depth to the server.
func (c *Client) GetComments(ctx context.Context, subreddit, article string, depth int) ([]models.Entity, error) {
	endpoint := fmt.Sprintf(commentsPath, subreddit, article)
	params := url.Values{"sort": {"new"}}
	if depth > 0 {
		params.Set("depth", strconv.Itoa(depth))
	}

	data, err := c.Get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	comments, err := ParseComments(data)
	if err != nil {
		return nil, errs.NewParsingError(endpoint, err)
	}
	return comments, nil
}

func (c *Client) getListing(ctx context.Context, endpoint string, params url.Values) ([]models.Entity, error) {
	data, err := c.Get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	entities, err := ParseListing(data)
	if err != nil {
		return nil, errs.NewParsingError(endpoint, err)
	}
	return entities, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > config.MaxPageLimit {
		return config.MaxPageLimit
	}
	return limit
}

// TopPostsSource pages through a subreddit's top posts
type TopPostsSource struct {
	client    *Client
	subreddit string
	limit     int
}

// TopPosts returns a page source over the subreddit's all-time top posts
func (c *Client) TopPosts(subreddit string, limit int) *TopPostsSource {
	return &TopPostsSource{client: c, subreddit: subreddit, limit: limit}
}

// Page fetches the page preceding the given cursor
func (s *TopPostsSource) Page(ctx context.Context, before string) ([]models.Entity, error) {
	return s.client.GetTop(ctx, s.subreddit, before, s.limit)
}

// String names the source in logs
func (s *TopPostsSource) String() string {
	return "top:" + s.subreddit
}

// NewPostsSource pages through a subreddit's newest posts
type NewPostsSource struct {
	client    *Client
	subreddit string
	limit     int
}

// NewPosts returns a page source over the subreddit's newest posts
func (c *Client) NewPosts(subreddit string, limit int) *NewPostsSource {
	return &NewPostsSource{client: c, subreddit: subreddit, limit: limit}
}

// Page fetches the page preceding the given cursor
func (s *NewPostsSource) Page(ctx context.Context, before string) ([]models.Entity, error) {
	return s.client.GetNew(ctx, s.subreddit, before, "", s.limit)
}

func (s *NewPostsSource) String() string {
	return "new:" + s.subreddit
}

// CommentsSource yields the comment tree of one post. The endpoint returns
// the tree whole, so the cursor is ignored.
type CommentsSource struct {
	client    *Client
	subreddit string
	article   string
	depth     int
}

// Comments returns a source over the comments of article
func (c *Client) Comments(subreddit, article string, depth int) *CommentsSource {
	return &CommentsSource{client: c, subreddit: subreddit, article: article, depth: depth}
}

// Page fetches the comment tree
func (s *CommentsSource) Page(ctx context.Context, _ string) ([]models.Entity, error) {
	return s.client.GetComments(ctx, s.subreddit, s.article, s.depth)
}

func (s *CommentsSource) String() string {
	return "comments:" + s.subreddit + "/" + s.article
}
