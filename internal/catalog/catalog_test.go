package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	vocab := c.Vocabulary()
	assert.Len(t, vocab, 32)
	assert.Equal(t, "quantum entanglement", vocab[0])

	records, ok := c.Lookup("quantum entanglement")
	require.True(t, ok)
	assert.Len(t, records, 3)

	_, ok = c.Lookup(DefaultKey)
	assert.False(t, ok, "default set must not be reachable by key")

	def := c.DefaultSet()
	require.NotEmpty(t, def)
	assert.Contains(t, def[0].Title, QueryPlaceholder)

	answer, ok := c.Answer("dark matter")
	require.True(t, ok)
	assert.Contains(t, answer.Summary, "**Dark matter**")
	assert.Len(t, answer.Related, 3)
}

func TestLookupReturnsCopy(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	records, _ := c.Lookup("dark matter")
	records[0].Title = "changed"

	again, _ := c.Lookup("dark matter")
	assert.NotEqual(t, "changed", again[0].Title)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name: "keys normalized",
			data: "vocabulary: [' a ', '', b]\nresults:\n  ' Foo Bar ': [{title: x}]\n  default: [{title: d}]\n",
		},
		{
			name:    "missing default",
			data:    "results:\n  foo: [{title: x}]\n",
			wantErr: ErrNoDefault.Error(),
		},
		{
			name:    "duplicate normalized key",
			data:    "results:\n  foo: [{title: x}]\n  FOO: [{title: y}]\n  default: [{title: d}]\n",
			wantErr: "duplicate result key",
		},
		{
			name:    "bad yaml",
			data:    "results: [",
			wantErr: "decode catalog",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.data))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, c.Vocabulary())
			_, ok := c.Lookup("foo bar")
			assert.True(t, ok)
			assert.Equal(t, 1, c.Keys())
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("results:\n  default: [{title: d}]\n"), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, c.DefaultSet(), 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestRecordHrefAndFields(t *testing.T) {
	r := Record{Title: "t", URL: "example.org/x", Type: "Article", RelevanceScore: 0.5, Tags: []string{"a"}}
	assert.Equal(t, "http://example.org/x", r.Href())
	assert.Equal(t, "https://secure.example", Record{URL: "https://secure.example"}.Href())

	f := r.Fields()
	assert.Equal(t, "Article", f["type"])
	assert.Equal(t, 0.5, f["score"])
	assert.Equal(t, []any{"a"}, f["tags"])
}
