package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"redditstats/pkg/models"
	"redditstats/pkg/ui"
)

// Output formats
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// Formats lists the accepted output formats
func Formats() []string {
	return []string{FormatJSON, FormatYAML, FormatTable}
}

// Sink receives the result of a search: either a []models.Entity or an
// author ranking
type Sink interface {
	Write(payload interface{}) error
}

// Ranking is implemented by author ranking payloads
type Ranking interface {
	Rankings() (byPosts, byComments []string)
}

// NewSink returns the sink for format. File formats write to path; the
// table format writes to w.
func NewSink(format, path string, w io.Writer) (Sink, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return NewJSONFileSink(path), nil
	case FormatYAML, "yml":
		return NewYAMLFileSink(path), nil
	case FormatTable:
		return NewTableSink(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected one of %s)", format, strings.Join(Formats(), ", "))
	}
}

// FileSink encodes a payload and writes it to a file atomically
type FileSink struct {
	path   string
	encode func(interface{}) ([]byte, error)
}

// NewJSONFileSink writes payloads as JSON indented by four spaces
func NewJSONFileSink(path string) *FileSink {
	return &FileSink{path: path, encode: encodeJSON}
}

// NewYAMLFileSink writes payloads as YAML
func NewYAMLFileSink(path string) *FileSink {
	return &FileSink{path: path, encode: encodeYAML}
}

// Path returns the destination file
func (s *FileSink) Path() string {
	return s.path
}

// Write encodes payload and replaces the destination file with it
func (s *FileSink) Write(payload interface{}) error {
	data, err := s.encode(payload)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

func encodeJSON(payload interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeYAML(payload interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never see a partial result
func writeFileAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tempFile := path + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = out.Write(data)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write result: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// TableSink renders payloads as terminal tables
type TableSink struct {
	w io.Writer
}

// NewTableSink creates a TableSink writing to w, or ui.Output when w is nil
func NewTableSink(w io.Writer) *TableSink {
	if w == nil {
		w = ui.Output
	}
	return &TableSink{w: w}
}

// Write renders payload
func (s *TableSink) Write(payload interface{}) error {
	var rendered string
	switch p := payload.(type) {
	case []models.Entity:
		rendered = ui.LinksTable(p)
	case Ranking:
		byPosts, byComments := p.Rankings()
		rendered = ui.RankingTable(byPosts, byComments)
	default:
		return fmt.Errorf("cannot render %T as a table", payload)
	}

	_, err := fmt.Fprintln(s.w, rendered)
	return err
}
