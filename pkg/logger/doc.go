// Package logger provides the structured logging interface used across
// redditstats.
//
// It wraps zerolog. Console output is human readable and written to stderr;
// when a log file is configured every entry is also appended to it as JSON.
//
//	logger.Initialize(&cfg.Logging)
//	log := logger.GetLogger().WithField("subreddit", "golang")
//	log.InfoWithFields("page fetched", map[string]interface{}{"items": 100})
//
// Tests use NewTestLogger to capture and inspect messages, or NewNopLogger to
// discard them.
package logger
