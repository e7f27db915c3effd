package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/kliff/internal/catalog"
	"github.com/oakwood-commons/kliff/internal/paging"
	"github.com/oakwood-commons/kliff/internal/results"
	"github.com/oakwood-commons/kliff/internal/suggest"
)

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat accepts text, json, yaml or toml.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text|json|yaml|toml)", s)
	}
}

// ResultsDoc is the structured form of one results page.
type ResultsDoc struct {
	Query      string           `json:"query" yaml:"query" toml:"query"`
	MatchedKey string           `json:"matchedKey,omitempty" yaml:"matched_key,omitempty" toml:"matched_key,omitempty"`
	Fallback   bool             `json:"fallback" yaml:"fallback" toml:"fallback"`
	Page       paging.State     `json:"page" yaml:"page" toml:"page"`
	TotalPages int              `json:"totalPages" yaml:"total_pages" toml:"total_pages"`
	Records    []catalog.Record `json:"records" yaml:"records" toml:"records"`
	Answer     *catalog.Answer  `json:"answer,omitempty" yaml:"answer,omitempty" toml:"answer,omitempty"`
}

// NewResultsDoc captures the current page of st.
func NewResultsDoc(st results.State) ResultsDoc {
	records := paging.Slice(st.Set.Records, st.Page)
	if records == nil {
		records = []catalog.Record{}
	}
	return ResultsDoc{
		Query:      st.Set.Query,
		MatchedKey: st.Set.MatchedKey,
		Fallback:   st.Set.Fallback,
		Page:       st.Page,
		TotalPages: st.Page.TotalPages(),
		Records:    records,
		Answer:     st.Set.Answer,
	}
}

// SuggestDoc is the structured form of a suggestion list.
type SuggestDoc struct {
	Input       string               `json:"input" yaml:"input" toml:"input"`
	Suggestions []suggest.Suggestion `json:"suggestions" yaml:"suggestions" toml:"suggestions"`
}

// Encode writes v in format f. Multi-line YAML strings use literal blocks.
func Encode(w io.Writer, f Format, v any) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		return nil
	case FormatYAML:
		var node yaml.Node
		if err := node.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		literalBlocks(&node)
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err := w.Write(buf.Bytes())
		return err
	case FormatTOML:
		b, err := toml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal toml: %w", err)
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("format %q is not a structured format", f)
	}
}

func literalBlocks(n *yaml.Node) {
	if n == nil {
		return
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" && strings.Contains(n.Value, "\n") {
		n.Style = yaml.LiteralStyle
	}
	for _, c := range n.Content {
		literalBlocks(c)
	}
}
