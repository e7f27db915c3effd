// Package catalog holds the mock data kliff serves: the suggestion vocabulary,
// the query-keyed result mapping with its default set, and answer-box summaries.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

const (
	// DefaultKey names the fallback result set.
	DefaultKey = "default"
	// QueryPlaceholder is replaced by the literal query in default-set titles.
	QueryPlaceholder = "{query}"
)

var (
	// ErrNoDefault is returned when a catalog lacks a non-empty default result set.
	ErrNoDefault = errors.New("catalog has no default result set")

	embeddedOnce sync.Once
	embedded     *Catalog
	embeddedErr  error
)

// Record is a single search result. Records are never mutated after loading.
type Record struct {
	Title          string   `yaml:"title" json:"title" toml:"title"`
	URL            string   `yaml:"url" json:"url" toml:"url"`
	Snippet        string   `yaml:"snippet" json:"snippet" toml:"snippet"`
	Type           string   `yaml:"type,omitempty" json:"type,omitempty" toml:"type,omitempty"`
	Date           string   `yaml:"date,omitempty" json:"date,omitempty" toml:"date,omitempty"`
	RelevanceScore float64  `yaml:"relevance_score,omitempty" json:"relevanceScore,omitempty" toml:"relevance_score,omitempty"`
	Tags           []string `yaml:"tags,omitempty" json:"tags,omitempty" toml:"tags,omitempty"`
}

// Href returns the link target, adding an http scheme to bare host paths.
func (r Record) Href() string {
	if strings.HasPrefix(r.URL, "http://") || strings.HasPrefix(r.URL, "https://") {
		return r.URL
	}
	return "http://" + r.URL
}

// Fields exposes the record as a plain map, the shape filter expressions see.
func (r Record) Fields() map[string]any {
	tags := make([]any, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, t)
	}
	return map[string]any{
		"title":   r.Title,
		"url":     r.URL,
		"snippet": r.Snippet,
		"type":    r.Type,
		"date":    r.Date,
		"score":   r.RelevanceScore,
		"tags":    tags,
	}
}

// Answer is the static answer-box content for a query key. Summary is markdown.
type Answer struct {
	Summary string   `yaml:"summary" json:"summary" toml:"summary"`
	Related []string `yaml:"related,omitempty" json:"related,omitempty" toml:"related,omitempty"`
}

// Catalog is the immutable data set behind suggestions and results.
type Catalog struct {
	vocabulary []string
	results    map[string][]Record
	answers    map[string]Answer
}

type catalogFile struct {
	Vocabulary []string            `yaml:"vocabulary"`
	Results    map[string][]Record `yaml:"results"`
	Answers    map[string]Answer   `yaml:"answers"`
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	embeddedOnce.Do(func() {
		embedded, embeddedErr = Parse(embeddedCatalog)
	})
	return embedded, embeddedErr
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes catalog YAML. Result and answer keys are normalized (trimmed,
// lowercased); two keys that normalize to the same value are an error.
func Parse(data []byte) (*Catalog, error) {
	var raw catalogFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		results: make(map[string][]Record, len(raw.Results)),
		answers: make(map[string]Answer, len(raw.Answers)),
	}
	for _, entry := range raw.Vocabulary {
		if entry = strings.TrimSpace(entry); entry != "" {
			c.vocabulary = append(c.vocabulary, entry)
		}
	}
	for key, records := range raw.Results {
		norm := NormalizeKey(key)
		if _, dup := c.results[norm]; dup {
			return nil, fmt.Errorf("duplicate result key %q", norm)
		}
		c.results[norm] = records
	}
	for key, answer := range raw.Answers {
		norm := NormalizeKey(key)
		if _, dup := c.answers[norm]; dup {
			return nil, fmt.Errorf("duplicate answer key %q", norm)
		}
		c.answers[norm] = answer
	}
	if len(c.results[DefaultKey]) == 0 {
		return nil, ErrNoDefault
	}
	return c, nil
}

// NormalizeKey is the normalization applied to queries before lookup.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Vocabulary returns the suggestion vocabulary in catalog order.
func (c *Catalog) Vocabulary() []string {
	return slices.Clone(c.vocabulary)
}

// Lookup returns the records for a normalized key. The default set is not
// reachable through Lookup.
func (c *Catalog) Lookup(key string) ([]Record, bool) {
	if key == DefaultKey {
		return nil, false
	}
	records, ok := c.results[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(records), true
}

// DefaultSet returns the fallback records, placeholders untouched.
func (c *Catalog) DefaultSet() []Record {
	return slices.Clone(c.results[DefaultKey])
}

// Answer returns the answer-box content for a normalized key.
func (c *Catalog) Answer(key string) (Answer, bool) {
	a, ok := c.answers[key]
	return a, ok
}

// Keys returns the number of non-default result keys.
func (c *Catalog) Keys() int {
	return len(c.results) - 1
}
