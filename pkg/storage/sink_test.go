package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"redditstats/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ranking struct {
	ByPosts    []string `json:"top_users_by_posts" yaml:"top_users_by_posts"`
	ByComments []string `json:"top_users_by_comments" yaml:"top_users_by_comments"`
}

func (r *ranking) Rankings() ([]string, []string) { return r.ByPosts, r.ByComments }

func TestJSONFileSinkLinks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	links := []models.Entity{
		{ID: "a", Created: 1700000000, Name: "t3_a", Author: "x", Score: 3, Kind: models.KindLink},
	}

	require.NoError(t, NewJSONFileSink(path).Write(links))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	expected := `[
    {
        "id": "a",
        "created": 1700000000,
        "name": "t3_a",
        "author": "x",
        "score": 3,
        "kind": "t3"
    }
]
`
	assert.Equal(t, expected, string(data))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file is renamed away")
}

func TestJSONFileSinkEmptyRanking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "result.json")

	require.NoError(t, NewJSONFileSink(path).Write(&ranking{ByPosts: []string{}, ByComments: []string{}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"top_users_by_posts":[],"top_users_by_comments":[]}`, string(data))
}

func TestJSONFileSinkOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer"), 0644))

	require.NoError(t, NewJSONFileSink(path).Write([]models.Entity{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestYAMLFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.yaml")
	in := &ranking{ByPosts: []string{"x: 2", "y: 1"}, ByComments: []string{"z: 4"}}

	require.NoError(t, NewYAMLFileSink(path).Write(in))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out ranking
	require.NoError(t, yaml.Unmarshal(data, &out))
	assert.Equal(t, *in, out)
	assert.Contains(t, string(data), "top_users_by_posts:")
}

func TestFileSinkUnencodable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")

	err := NewJSONFileSink(path).Write(make(chan int))
	assert.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestTableSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTableSink(&buf)

	require.NoError(t, sink.Write(&ranking{ByPosts: []string{"x: 2"}, ByComments: []string{}}))
	assert.Contains(t, buf.String(), "x: 2")

	buf.Reset()
	require.NoError(t, sink.Write([]models.Entity{{Name: "t3_q", Author: "q"}}))
	assert.Contains(t, buf.String(), "t3_q")

	assert.Error(t, sink.Write(42))
}

func TestNewSink(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		format  string
		want    interface{}
		wantErr bool
	}{
		{"json", &FileSink{}, false},
		{"", &FileSink{}, false},
		{"YAML", &FileSink{}, false},
		{"table", &TableSink{}, false},
		{"csv", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			sink, err := NewSink(tt.format, filepath.Join(dir, "out"), &bytes.Buffer{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, sink)
		})
	}
}
