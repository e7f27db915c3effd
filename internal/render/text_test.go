package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kliff/internal/config"
	"github.com/oakwood-commons/kliff/internal/paging"
	"github.com/oakwood-commons/kliff/internal/results"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a [31mred b", Sanitize("a\x1b[31mred\nb"))
	assert.Equal(t, "plain ☕", Sanitize("plain ☕"))
}

func TestTextResultsNoColor(t *testing.T) {
	s := NewStyles(config.ThemeConfig{}, true)
	p := resolved(t, "machine learning", 5)
	out := s.Results(Results(p.State()), 80)

	assert.Contains(t, out, "Displaying 1-5 of 7 results for: machine learning")
	assert.Contains(t, out, "1. Machine Learning Algorithms")
	assert.Contains(t, out, "Page 1 of 2")
	assert.Contains(t, out, "next →")

	require.True(t, p.Step(paging.Next))
	out = s.Results(Results(p.State()), 80)
	assert.Contains(t, out, "6. ")
	assert.Contains(t, out, "← prev")
}

func TestTextResultsSinglePageHidesControls(t *testing.T) {
	s := NewStyles(darkTheme(t), false)
	out := s.Results(Results(resolved(t, "dark matter", 5).State()), 100)
	assert.NotContains(t, out, "Page 1 of 1")
	assert.Contains(t, out, "Related:")
	assert.Contains(t, out, "Type: ")
}

func TestTextResultsLoadingAndEmpty(t *testing.T) {
	s := NewStyles(config.ThemeConfig{}, true)
	out := s.Results(ResultsView{Loading: true, Skeletons: 3}, 20)
	bars := 0
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, "░") {
			bars++
		}
	}
	assert.Equal(t, 6, bars)
	assert.Contains(t, s.Results(ResultsView{}, 40), "Type a query")
}

func TestTextControls(t *testing.T) {
	s := NewStyles(config.ThemeConfig{}, true)
	assert.Empty(t, s.Controls(Controls{Visible: false}))
	out := s.Controls(Controls{Visible: true, Current: 2, Total: 3})
	assert.Contains(t, out, "Page 2 of 3")
}

func TestTextSuggestionList(t *testing.T) {
	s := NewStyles(config.ThemeConfig{}, true)
	out := s.SuggestionList(Suggestions(dropdown(t, "qu", 1)), 40)
	lines := strings.Split(out, "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "> quantum entanglement")
	assert.True(t, strings.HasPrefix(lines[1], "  "))

	narrow := s.SuggestionList(Suggestions(dropdown(t, "qu", 0)), 10)
	for _, l := range strings.Split(narrow, "\n") {
		assert.LessOrEqual(t, len([]rune(l)), 10)
	}

	assert.Empty(t, s.SuggestionList(SuggestionView{}, 40))
}

func TestSegmentsAndMarkdownText(t *testing.T) {
	s := NewStyles(config.ThemeConfig{}, true)
	segs := results.Highlight("dark matter", []string{"dark"})
	assert.Contains(t, s.Segments(segs), "matter")

	text := MarkdownText("**Dark matter** is\nunseen.\n\nSecond *para*.", func(t string) string { return "[" + t + "]" })
	assert.Equal(t, "[Dark matter] is unseen.\n\nSecond [para].", text)
}
