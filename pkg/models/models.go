package models

// Kind is the type prefix Reddit assigns to every thing
type Kind string

const (
	KindComment   Kind = "t1"
	KindAccount   Kind = "t2"
	KindLink      Kind = "t3"
	KindSubreddit Kind = "t5"
)

// Valid reports whether k is one of the kinds we keep
func (k Kind) Valid() bool {
	switch k {
	case KindComment, KindAccount, KindLink, KindSubreddit:
		return true
	default:
		return false
	}
}

// Entity is a post, comment, account or subreddit record
type Entity struct {
	ID      string  `json:"id" yaml:"id"`
	Created float64 `json:"created" yaml:"created"`
	Name    string  `json:"name" yaml:"name"`
	Author  string  `json:"author" yaml:"author"`
	Score   int     `json:"score" yaml:"score"`
	Kind    Kind    `json:"kind" yaml:"kind"`
}
