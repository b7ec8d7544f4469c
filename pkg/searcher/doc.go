// Package searcher computes ranked summaries of a subreddit over a time
// window.
//
// Two modes are supported:
//
//   - top_links: all-time top posts created within the window, ordered by
//     score. Ties keep fetch order.
//   - top_users: authors of the window's newest posts ranked by post count,
//     and authors of every comment on those posts ranked by comment count,
//     each as "author: count" lines.
//
// Each run gets a run_id that is attached to its log lines.
package searcher
