package suggest

import (
	"fmt"
	"strings"
	"time"
)

// DefaultBlurGrace lets a click that is already in flight land before a blur
// closes the dropdown.
const DefaultBlurGrace = 150 * time.Millisecond

// Status is the dropdown's navigation state.
type Status int

const (
	Closed Status = iota
	OpenNoSelection
	OpenSelection
)

func (s Status) String() string {
	switch s {
	case OpenNoSelection:
		return "open"
	case OpenSelection:
		return "selected"
	default:
		return "closed"
	}
}

// EnterPolicy decides what Enter submits when the dropdown is open but no
// item is selected.
type EnterPolicy string

const (
	// EnterLiteral submits the input text as typed.
	EnterLiteral EnterPolicy = "literal"
	// EnterTop submits the first suggestion.
	EnterTop EnterPolicy = "top"
)

// ParseEnterPolicy accepts "literal", "top", or empty for the default.
func ParseEnterPolicy(s string) (EnterPolicy, error) {
	switch EnterPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", EnterLiteral:
		return EnterLiteral, nil
	case EnterTop:
		return EnterTop, nil
	default:
		return "", fmt.Errorf("unknown enter policy %q (want %q or %q)", s, EnterLiteral, EnterTop)
	}
}

// Key is a navigation key the dropdown reacts to.
type Key int

const (
	KeyDown Key = iota
	KeyUp
	KeyEnter
	KeyEscape
)

// Event is an input to Reduce.
type Event interface {
	event()
}

// TextChanged reports the new input value.
type TextChanged struct{ Text string }

// SuggestionsReady delivers a computed list for the input value it was
// computed from.
type SuggestionsReady struct {
	Text  string
	Items []Suggestion
}

// KeyPressed reports a navigation key.
type KeyPressed struct{ Key Key }

// ItemClicked reports a pointer selection of the item at Index.
type ItemClicked struct{ Index int }

// FocusLost reports that the input lost focus.
type FocusLost struct{}

// BlurElapsed fires once the blur grace period has passed.
type BlurElapsed struct{}

// ClickedOutside reports a click away from the input and the list.
type ClickedOutside struct{}

func (TextChanged) event()      {}
func (SuggestionsReady) event() {}
func (KeyPressed) event()       {}
func (ItemClicked) event()      {}
func (FocusLost) event()        {}
func (BlurElapsed) event()      {}
func (ClickedOutside) event()   {}

// Refresh tells the host what to do with the debounce timer.
type Refresh int

const (
	RefreshNone Refresh = iota
	RefreshSchedule
	RefreshCancel
)

// Outcome lists the side effects a transition asks the host to perform.
type Outcome struct {
	Refresh        Refresh
	StartBlurGrace bool
	Submit         bool
	Query          string
	Refocus        bool
}

// State is the dropdown owned by one input field.
type State struct {
	Input       string
	Items       []Suggestion
	Selected    int
	Open        bool
	Focused     bool
	BlurPending bool
	Policy      EnterPolicy
}

// NewState returns a focused, closed dropdown.
func NewState(policy EnterPolicy) State {
	if policy == "" {
		policy = EnterLiteral
	}
	return State{Selected: -1, Focused: true, Policy: policy}
}

// Status derives the navigation state.
func (s State) Status() Status {
	switch {
	case !s.Open || len(s.Items) == 0:
		return Closed
	case s.Selected >= 0 && s.Selected < len(s.Items):
		return OpenSelection
	default:
		return OpenNoSelection
	}
}

// Expanded mirrors aria-expanded on the input.
func (s State) Expanded() bool { return s.Status() != Closed }

// IsSelected mirrors aria-selected on item i.
func (s State) IsSelected(i int) bool {
	return s.Status() == OpenSelection && s.Selected == i
}

// ActiveDescendant mirrors aria-activedescendant; empty when nothing is
// selected.
func (s State) ActiveDescendant() string {
	if s.Status() != OpenSelection {
		return ""
	}
	return OptionID(s.Selected)
}

// OptionID is the element id of item i.
func OptionID(i int) string {
	return fmt.Sprintf("suggestion-option-%d", i)
}

// Visible returns the items to draw; nil when closed.
func (s State) Visible() []Suggestion {
	if s.Status() == Closed {
		return nil
	}
	return s.Items
}

// Reduce applies ev to s.
func Reduce(s State, ev Event) (State, Outcome) {
	switch ev := ev.(type) {
	case TextChanged:
		s.Input = ev.Text
		s.Focused = true
		if strings.TrimSpace(ev.Text) == "" {
			return s.close(), Outcome{Refresh: RefreshCancel}
		}
		return s, Outcome{Refresh: RefreshSchedule}

	case SuggestionsReady:
		if ev.Text != s.Input {
			return s, Outcome{}
		}
		// An unfocused input only refreshes a dropdown that is still open
		// inside its blur grace.
		if !s.Focused && !s.BlurPending {
			return s.close(), Outcome{}
		}
		s.Items = ev.Items
		s.Selected = -1
		s.Open = len(ev.Items) > 0 && strings.TrimSpace(s.Input) != ""
		if !s.Open {
			s.Items = nil
		}
		return s, Outcome{}

	case KeyPressed:
		return s.key(ev.Key)

	case ItemClicked:
		if s.Status() == Closed || ev.Index < 0 || ev.Index >= len(s.Items) {
			return s, Outcome{}
		}
		return s.choose(s.Items[ev.Index].Text)

	case FocusLost:
		s.Focused = false
		if s.Status() == Closed {
			return s, Outcome{Refresh: RefreshCancel}
		}
		s.BlurPending = true
		return s, Outcome{StartBlurGrace: true}

	case BlurElapsed:
		if !s.BlurPending {
			return s, Outcome{}
		}
		return s.close(), Outcome{}

	case ClickedOutside:
		return s.close(), Outcome{}
	}
	return s, Outcome{}
}

func (s State) key(k Key) (State, Outcome) {
	n := len(s.Items)
	switch s.Status() {
	case Closed:
		if k == KeyEnter {
			return s.close(), Outcome{Submit: true, Query: s.Input, Refresh: RefreshCancel}
		}
		return s, Outcome{}
	case OpenNoSelection:
		switch k {
		case KeyDown:
			s.Selected = 0
		case KeyUp:
			s.Selected = n - 1
		case KeyEnter:
			q := s.Input
			if s.Policy == EnterTop {
				return s.choose(s.Items[0].Text)
			}
			return s.close(), Outcome{Submit: true, Query: q, Refresh: RefreshCancel}
		case KeyEscape:
			return s.close(), Outcome{}
		}
	case OpenSelection:
		switch k {
		case KeyDown:
			s.Selected = (s.Selected + 1) % n
		case KeyUp:
			s.Selected = (s.Selected - 1 + n) % n
		case KeyEnter:
			return s.choose(s.Items[s.Selected].Text)
		case KeyEscape:
			return s.close(), Outcome{}
		}
	}
	return s, Outcome{}
}

// choose finalizes text as the query and hands focus back to the input.
func (s State) choose(text string) (State, Outcome) {
	s = s.close()
	s.Input = text
	s.Focused = true
	return s, Outcome{Submit: true, Query: text, Refocus: true, Refresh: RefreshCancel}
}

func (s State) close() State {
	s.Items = nil
	s.Selected = -1
	s.Open = false
	s.BlurPending = false
	return s
}
