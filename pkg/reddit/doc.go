// Package reddit is a small client for the Reddit OAuth API.
//
// Every request made through a Client is paced by a ratelimit.Governor,
// carries the configured User-Agent and a bearer token obtained once with the
// password grant, and asks for raw_json=1. Non-2xx responses become API
// errors; the client never retries.
//
// Listing endpoints are also exposed as page sources for the collector:
//
//	client := reddit.NewClient(cfg, log)
//	posts, err := collector.New(log).CollectSince(ctx, client.NewPosts("golang", 100), threshold)
package reddit
