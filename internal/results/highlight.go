package results

import (
	"strings"
	"unicode/utf8"
)

// Segment is a run of text, emphasized when it matched a query term.
type Segment struct {
	Text string `json:"text" yaml:"text"`
	Emph bool   `json:"emph,omitempty" yaml:"emph,omitempty"`
}

// Terms splits q on whitespace and keeps lowercased terms longer than one
// character.
func Terms(q string) []string {
	var out []string
	for _, f := range strings.Fields(strings.ToLower(q)) {
		if utf8.RuneCountInString(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}

// Highlight marks every case-insensitive occurrence of every term in text.
// Overlapping matches from different terms merge into one emphasized run.
func Highlight(text string, terms []string) []Segment {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	mark := make([]bool, len(runes))
	for _, term := range terms {
		n := utf8.RuneCountInString(term)
		if n == 0 {
			continue
		}
		for i := 0; i+n <= len(runes); i++ {
			if strings.EqualFold(string(runes[i:i+n]), term) {
				for j := i; j < i+n; j++ {
					mark[j] = true
				}
			}
		}
	}

	var segs []Segment
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i == len(runes) || mark[i] != mark[start] {
			segs = append(segs, Segment{Text: string(runes[start:i]), Emph: mark[start]})
			start = i
		}
	}
	return segs
}
