// Package storage writes search results.
//
// A Sink accepts the payload of a search (ranked posts or an author ranking)
// and emits it in one format:
//
//   - json: a file indented by four spaces (the default, result.json)
//   - yaml: a file
//   - table: a table on the terminal
//
// File sinks write to a temporary file and rename it into place, so an
// interrupted run never leaves a truncated result behind.
//
//	sink, err := storage.NewSink("json", "result.json", os.Stdout)
//	if err != nil {
//	    return err
//	}
//	return sink.Write(result.Payload())
package storage
