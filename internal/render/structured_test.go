package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/kliff/internal/paging"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{" JSON ", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"toml", FormatTOML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewResultsDocSecondPage(t *testing.T) {
	p := resolved(t, "machine learning", 5)
	require.True(t, p.Step(paging.Next))

	doc := NewResultsDoc(p.State())
	assert.Equal(t, "machine learning", doc.MatchedKey)
	assert.Equal(t, 2, doc.Page.Current)
	assert.Equal(t, 2, doc.TotalPages)
	assert.Len(t, doc.Records, 2)
}

func TestEncodeJSON(t *testing.T) {
	doc := NewResultsDoc(resolved(t, "dark matter", 5).State())
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatJSON, doc))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "dark matter", got["query"])
	assert.Equal(t, false, got["fallback"])
	assert.Len(t, got["records"], 2)
	assert.Contains(t, got, "answer")
	page, ok := got["page"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, page["currentPage"])
}

func TestEncodeYAMLUsesLiteralBlocks(t *testing.T) {
	v := map[string]string{"summary": "line one\nline two"}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatYAML, v))
	assert.Contains(t, buf.String(), "summary: |")

	var back map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, v, back)
}

func TestEncodeTOMLSuggestions(t *testing.T) {
	doc := SuggestDoc{Input: "qu", Suggestions: dropdown(t, "qu", 0).Items}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatTOML, doc))

	var back SuggestDoc
	require.NoError(t, toml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "qu", back.Input)
	require.NotEmpty(t, back.Suggestions)
	assert.Equal(t, "quantum entanglement", back.Suggestions[0].Text)
}

func TestEncodeRejectsText(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Encode(&buf, FormatText, SuggestDoc{}))
}
