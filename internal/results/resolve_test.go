package results

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kliff/internal/catalog"
	"github.com/oakwood-commons/kliff/internal/cel"
)

type mapSource struct {
	results map[string][]catalog.Record
	def     []catalog.Record
	answers map[string]catalog.Answer
}

func (m mapSource) Lookup(key string) ([]catalog.Record, bool) {
	r, ok := m.results[key]
	return append([]catalog.Record(nil), r...), ok
}

func (m mapSource) DefaultSet() []catalog.Record {
	return append([]catalog.Record(nil), m.def...)
}

func (m mapSource) Answer(key string) (catalog.Answer, bool) {
	a, ok := m.answers[key]
	return a, ok
}

func testSource() mapSource {
	return mapSource{
		results: map[string][]catalog.Record{
			"go":     {{Title: "Go", URL: "go.dev"}},
			"css":    {{Title: "CSS", URL: "css.io", Type: "Guide"}},
			"golang": {{Title: "Golang", URL: "golang.org"}},
			"rust web": {
				{Title: "Rust on the web", URL: "rust.io", Type: "Article", Tags: []string{"rust"}},
				{Title: "Rust WASM", URL: "wasm.io", Type: "Tutorial", Tags: []string{"wasm", "rust"}},
			},
		},
		def: []catalog.Record{
			{Title: `No match for "{query}"`, URL: "kliff.search/none"},
			{Title: "How search works", URL: "kliff.search/how"},
		},
		answers: map[string]catalog.Answer{
			"rust web": {Summary: "**Rust** on the web."},
		},
	}
}

func TestLookupOrder(t *testing.T) {
	src := testSource()
	tests := []struct {
		name     string
		query    string
		matched  string
		fallback bool
		first    string
	}{
		{name: "exact", query: "rust web", matched: "rust web", first: "Rust on the web"},
		{name: "exact normalized", query: "  Rust WEB ", matched: "rust web", first: "Rust on the web"},
		{name: "short terms skipped", query: "go css", matched: "css", first: "CSS"},
		{name: "left to right", query: "learn golang css", matched: "golang", first: "Golang"},
		{name: "term case folded", query: "CSS tricks", matched: "css", first: "CSS"},
		{name: "fallback", query: "xyzzy", fallback: true, first: `No match for "xyzzy"`},
		{name: "blank", query: "   ", fallback: true, first: `No match for ""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := Lookup(src, tt.query)
			assert.Equal(t, tt.matched, rs.MatchedKey)
			assert.Equal(t, tt.fallback, rs.Fallback)
			require.NotEmpty(t, rs.Records)
			assert.Equal(t, tt.first, rs.Records[0].Title)
		})
	}
}

func TestLookupDeterministic(t *testing.T) {
	src := testSource()
	for _, q := range []string{"rust web", "go css", "nothing here", ""} {
		assert.Equal(t, Lookup(src, q), Lookup(src, q), q)
	}
}

func TestLookupFallbackKeepsQueryLiteral(t *testing.T) {
	rs := Lookup(testSource(), `<b>"x"</b>`)
	require.True(t, rs.Fallback)
	assert.Equal(t, `No match for "<b>"x"</b>"`, rs.Records[0].Title)
	assert.Equal(t, `<b>"x"</b>`, rs.Query)
}

func TestLookupDoesNotMutateSource(t *testing.T) {
	src := testSource()
	Lookup(src, "first")
	rs := Lookup(src, "second")
	assert.Equal(t, `No match for "second"`, rs.Records[0].Title)
	assert.Equal(t, `No match for "{query}"`, src.def[0].Title)
}

func TestLookupAnswer(t *testing.T) {
	rs := Lookup(testSource(), "Rust Web")
	require.NotNil(t, rs.Answer)
	assert.Contains(t, rs.Answer.Summary, "Rust")

	assert.Nil(t, Lookup(testSource(), "css").Answer)
}

func TestLookupEmbeddedCatalog(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	rs := Lookup(c, "quantum entanglement")
	assert.Equal(t, "quantum entanglement", rs.MatchedKey)
	assert.Len(t, rs.Records, 3)
	require.NotNil(t, rs.Answer)

	rs = Lookup(c, "holographic pancakes")
	assert.True(t, rs.Fallback)
	assert.Contains(t, rs.Records[0].Title, `"holographic pancakes"`)
}

func TestStaticResolver(t *testing.T) {
	r := StaticResolver{Source: testSource()}
	rs, err := r.Resolve(context.Background(), "css")
	require.NoError(t, err)
	assert.Equal(t, "css", rs.MatchedKey)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Resolve(ctx, "css")
	require.ErrorIs(t, err, context.Canceled)
}

func TestDelayedResolver(t *testing.T) {
	next := StaticResolver{Source: testSource()}

	t.Run("waits then delegates", func(t *testing.T) {
		r := DelayedResolver{Next: next, Delay: 5 * time.Millisecond}
		start := time.Now()
		rs, err := r.Resolve(context.Background(), "css")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
		assert.Equal(t, "css", rs.MatchedKey)
	})

	t.Run("timeout", func(t *testing.T) {
		r := DelayedResolver{Next: next, Delay: time.Second, Timeout: 5 * time.Millisecond}
		_, err := r.Resolve(context.Background(), "css")
		require.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("cancelled", func(t *testing.T) {
		r := DelayedResolver{Next: next, Delay: time.Second}
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(5 * time.Millisecond)
			cancel()
		}()
		_, err := r.Resolve(ctx, "css")
		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, errors.Is(err, ErrTimeout))
	})
}

func TestFilteredResolver(t *testing.T) {
	eval, err := cel.NewEvaluator()
	require.NoError(t, err)
	pred, err := eval.Compile(`"wasm" in r.tags`)
	require.NoError(t, err)

	r := FilteredResolver{Next: StaticResolver{Source: testSource()}, Filter: pred}
	rs, err := r.Resolve(context.Background(), "rust web")
	require.NoError(t, err)
	require.Len(t, rs.Records, 1)
	assert.Equal(t, "Rust WASM", rs.Records[0].Title)
	assert.NotNil(t, rs.Answer)

	bad, err := eval.Compile(`r.title`)
	require.NoError(t, err)
	_, err = FilteredResolver{Next: StaticResolver{Source: testSource()}, Filter: bad}.Resolve(context.Background(), "css")
	require.Error(t, err)

	rs, err = FilteredResolver{Next: StaticResolver{Source: testSource()}}.Resolve(context.Background(), "css")
	require.NoError(t, err)
	assert.Len(t, rs.Records, 1)
}
