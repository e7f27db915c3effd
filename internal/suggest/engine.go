// Package suggest turns partial search input into a capped, highlighted list of
// completions and drives the keyboard navigable dropdown that shows them.
package suggest

import (
	"strings"
	"time"
)

const (
	// DefaultMaxSuggestions caps the dropdown length.
	DefaultMaxSuggestions = 7
	// DefaultDebounce is the quiet period before a refresh runs.
	DefaultDebounce = 250 * time.Millisecond
)

// Source supplies the fixed vocabulary completions are drawn from.
type Source interface {
	Vocabulary() []string
}

// Span is a matched range measured in runes.
type Span struct {
	Start  int `json:"start" yaml:"start" toml:"start"`
	Length int `json:"length" yaml:"length" toml:"length"`
}

// Suggestion is one vocabulary entry matching the current input.
type Suggestion struct {
	Text    string `json:"text" yaml:"text" toml:"text"`
	Match   Span   `json:"match" yaml:"match" toml:"match"`
	Matched bool   `json:"matched" yaml:"matched" toml:"matched"`
}

// Segments splits the suggestion around its matched span. When nothing matched
// the whole text is returned as before.
func (s Suggestion) Segments() (before, match, after string) {
	if !s.Matched {
		return s.Text, "", ""
	}
	r := []rune(s.Text)
	start := min(max(s.Match.Start, 0), len(r))
	end := min(start+s.Match.Length, len(r))
	return string(r[:start]), string(r[start:end]), string(r[end:])
}

// Options configures an Engine. Zero values fall back to the defaults.
type Options struct {
	MaxSuggestions int
	Debounce       time.Duration
	Clock          Clock
}

// Engine computes suggestions and owns the debounce timer for one input field.
type Engine struct {
	vocabulary []string
	max        int
	debouncer  *Debouncer
}

// NewEngine builds an engine over the source vocabulary.
func NewEngine(src Source, opts Options) *Engine {
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = DefaultMaxSuggestions
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	var vocab []string
	if src != nil {
		vocab = src.Vocabulary()
	}
	return &Engine{
		vocabulary: vocab,
		max:        opts.MaxSuggestions,
		debouncer:  NewDebouncer(opts.Debounce, opts.Clock),
	}
}

// MaxSuggestions returns the configured cap.
func (e *Engine) MaxSuggestions() int { return e.max }

// Debounce returns the configured quiet period.
func (e *Engine) Debounce() time.Duration { return e.debouncer.Delay() }

// Compute filters the vocabulary by case-insensitive substring match, keeping
// vocabulary order and truncating to the cap. Blank input yields nil.
func (e *Engine) Compute(text string) []Suggestion {
	needle := strings.TrimSpace(text)
	if needle == "" {
		return nil
	}
	var out []Suggestion
	for _, entry := range e.vocabulary {
		span, ok := Highlight(entry, needle)
		if !ok {
			continue
		}
		out = append(out, Suggestion{Text: entry, Match: span, Matched: true})
		if len(out) == e.max {
			break
		}
	}
	return out
}

// OnInputChange schedules deliver with the suggestions for text once the input
// has been quiet for the debounce period. Each call replaces the pending one.
func (e *Engine) OnInputChange(text string, deliver func(text string, items []Suggestion)) {
	e.debouncer.Trigger(func() {
		deliver(text, e.Compute(text))
	})
}

// Schedule starts a debounce window for hosts that run their own timers and
// returns the ticket that must be presented to Settle.
func (e *Engine) Schedule() uint64 { return e.debouncer.Arm() }

// Settle computes suggestions for text if ticket still names the latest
// window. Superseded tickets report false.
func (e *Engine) Settle(ticket uint64, text string) ([]Suggestion, bool) {
	if !e.debouncer.Fired(ticket) {
		return nil, false
	}
	return e.Compute(text), true
}

// Cancel drops any pending refresh.
func (e *Engine) Cancel() { e.debouncer.Cancel() }

// Highlight locates the first case-insensitive occurrence of fragment in
// entry. It reports false when there is none.
func Highlight(entry, fragment string) (Span, bool) {
	hay := []rune(entry)
	needle := []rune(fragment)
	n := len(needle)
	if n == 0 || n > len(hay) {
		return Span{}, false
	}
	for i := 0; i+n <= len(hay); i++ {
		if strings.EqualFold(string(hay[i:i+n]), fragment) {
			return Span{Start: i, Length: n}, true
		}
	}
	return Span{}, false
}
