package searcher

import (
	"redditstats/pkg/collector"
	"redditstats/pkg/reddit"
)

// Sources provides the listings a search reads from
type Sources interface {
	TopPosts(subreddit string) collector.Source
	NewPosts(subreddit string) collector.Source
	Comments(subreddit, article string) collector.Source
}

// RedditSources serves listings from a reddit.Client
type RedditSources struct {
	Client       *reddit.Client
	PageLimit    int
	CommentDepth int
}

// TopPosts implements Sources
func (r RedditSources) TopPosts(subreddit string) collector.Source {
	return r.Client.TopPosts(subreddit, r.PageLimit)
}

// NewPosts implements Sources
func (r RedditSources) NewPosts(subreddit string) collector.Source {
	return r.Client.NewPosts(subreddit, r.PageLimit)
}

// Comments implements Sources
func (r RedditSources) Comments(subreddit, article string) collector.Source {
	return r.Client.Comments(subreddit, article, r.CommentDepth)
}
