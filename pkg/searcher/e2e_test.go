package searcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"redditstats/pkg/config"
	errs "redditstats/pkg/errors"
	"redditstats/pkg/logger"
	"redditstats/pkg/models"
	"redditstats/pkg/reddit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listing renders entities as a Listing body
func listing(entities ...models.Entity) string {
	children := make([]string, 0, len(entities))
	for _, e := range entities {
		children = append(children, fmt.Sprintf(
			`{"kind":%q,"data":{"id":%q,"name":%q,"author":%q,"created":%d,"score":%d,"replies":""}}`,
			e.Kind, e.ID, e.Name, e.Author, int64(e.Created), e.Score))
	}
	return `{"kind":"Listing","data":{"after":null,"before":null,"children":[` + strings.Join(children, ",") + `]}}`
}

func commentTree(comments ...models.Entity) string {
	return `[` + listing() + `,` + listing(comments...) + `]`
}

// newRedditServer serves the token endpoint and delegates everything else
func newRedditServer(t *testing.T, handler http.HandlerFunc) (*reddit.Client, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"access_token":"e2e-token","token_type":"bearer"}`)
	})
	mux.HandleFunc("/", handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.Reddit.BaseURL = srv.URL
	cfg.Reddit.AuthURL = srv.URL + "/api/v1/access_token"
	cfg.Reddit.AppID = "id"
	cfg.Reddit.Secret = "secret"
	cfg.Reddit.Username = "tester"
	cfg.Reddit.Password = "pw"
	cfg.RateLimit.RequestsPerMinute = 60000

	return reddit.NewClient(cfg, logger.NewTestLogger()), srv
}

func TestEndToEndTopUsersAcrossPages(t *testing.T) {
	withComment := func(e models.Entity) models.Entity {
		e.Kind = models.KindComment
		return e
	}
	page1 := []models.Entity{postAt("p1", "x", 0, 1), postAt("p2", "y", 0, 2), postAt("p3", "x", 0, 3)}
	page2 := []models.Entity{postAt("p4", "z", 0, 4)}

	client, _ := newRedditServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bearer e2e-token", r.Header.Get("Authorization"))
		switch {
		case r.URL.Path == "/r/golang/new":
			switch r.URL.Query().Get("before") {
			case "":
				io.WriteString(w, listing(page1...))
			case "t3_p3":
				io.WriteString(w, listing(page2...))
			default:
				io.WriteString(w, listing())
			}
		case r.URL.Path == "/r/golang/comments/p2":
			io.WriteString(w, commentTree(withComment(postAt("c1", "w", 0, 1))))
		case strings.HasPrefix(r.URL.Path, "/r/golang/comments/"):
			io.WriteString(w, commentTree())
		default:
			http.NotFound(w, r)
		}
	})

	s := New(RedditSources{Client: client, PageLimit: 100}, logger.NewTestLogger(), WithClock(clock))
	res, err := s.Run(context.Background(), ModeTopUsers, "golang", 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"x: 2", "y: 1", "z: 1"}, res.Users.ByPosts)
	assert.Equal(t, []string{"w: 1"}, res.Users.ByComments)
}

func TestEndToEndTopLinksEmptyFirstPage(t *testing.T) {
	var calls int
	client, _ := newRedditServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/r/empty/top", r.URL.Path)
		io.WriteString(w, listing())
	})

	s := New(RedditSources{Client: client}, nil, WithClock(clock))
	res, err := s.Run(context.Background(), ModeTopLinks, "empty", 3)
	require.NoError(t, err)

	assert.Equal(t, []models.Entity{}, res.Payload())
	assert.Equal(t, 1, calls)
}

func TestEndToEndServerIgnoringCursorCountsOnce(t *testing.T) {
	var newCalls int
	client, _ := newRedditServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/r/golang/new":
			newCalls++
			io.WriteString(w, listing(postAt("p1", "x", 0, 1), postAt("p2", "y", 0, 2)))
		case strings.HasPrefix(r.URL.Path, "/r/golang/comments/"):
			io.WriteString(w, commentTree())
		default:
			http.NotFound(w, r)
		}
	})

	s := New(RedditSources{Client: client}, nil, WithClock(clock))
	res, err := s.Run(context.Background(), ModeTopUsers, "golang", 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"x: 1", "y: 1"}, res.Users.ByPosts)
	assert.Equal(t, 2, newCalls)
}

func TestEndToEndCommentFailureAborts(t *testing.T) {
	client, _ := newRedditServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/r/golang/new":
			if r.URL.Query().Get("before") == "" {
				io.WriteString(w, listing(postAt("p1", "x", 0, 1), postAt("p2", "y", 0, 2)))
				return
			}
			io.WriteString(w, listing())
		case "/r/golang/comments/p1":
			io.WriteString(w, commentTree(models.Entity{ID: "c", Name: "t1_c", Author: "q", Kind: models.KindComment}))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"message":"Internal Server Error"}`)
		}
	})

	s := New(RedditSources{Client: client}, nil, WithClock(clock))
	res, err := s.Run(context.Background(), ModeTopUsers, "golang", 3)

	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errs.IsAPIError(err))
}
