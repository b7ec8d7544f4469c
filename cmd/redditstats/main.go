// Command redditstats ranks a subreddit's posts and authors over a recent
// time window.
package main

func main() {
	Execute()
}
