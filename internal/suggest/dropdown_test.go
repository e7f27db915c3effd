package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// open types text and delivers its suggestions.
func open(t *testing.T, e *Engine, policy EnterPolicy, text string) State {
	t.Helper()
	s, out := Reduce(NewState(policy), TextChanged{Text: text})
	require.Equal(t, RefreshSchedule, out.Refresh)
	s, _ = Reduce(s, SuggestionsReady{Text: text, Items: e.Compute(text)})
	return s
}

func TestParseEnterPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    EnterPolicy
		wantErr bool
	}{
		{in: "", want: EnterLiteral},
		{in: "literal", want: EnterLiteral},
		{in: " TOP ", want: EnterTop},
		{in: "first", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEnterPolicy(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuArrowDownEnter(t *testing.T) {
	e := NewEngine(vocabulary, Options{})
	s := open(t, e, EnterLiteral, "qu")
	require.Equal(t, OpenNoSelection, s.Status())
	assert.True(t, s.Expanded())
	assert.Empty(t, s.ActiveDescendant())
	assert.Equal(t, Span{Start: 0, Length: 2}, s.Items[0].Match)

	s, _ = Reduce(s, KeyPressed{Key: KeyDown})
	assert.Equal(t, OpenSelection, s.Status())
	assert.True(t, s.IsSelected(0))
	assert.False(t, s.IsSelected(1))
	assert.Equal(t, "suggestion-option-0", s.ActiveDescendant())

	s, out := Reduce(s, KeyPressed{Key: KeyEnter})
	assert.True(t, out.Submit)
	assert.True(t, out.Refocus)
	assert.Equal(t, "quantum entanglement", out.Query)
	assert.Equal(t, "quantum entanglement", s.Input)
	assert.Equal(t, Closed, s.Status())
	assert.Nil(t, s.Visible())
}

func TestArrowWrap(t *testing.T) {
	e := NewEngine(vocabulary, Options{})
	s := open(t, e, EnterLiteral, "quantum")
	require.Len(t, s.Items, 2)

	s, _ = Reduce(s, KeyPressed{Key: KeyDown})
	s, _ = Reduce(s, KeyPressed{Key: KeyDown})
	assert.Equal(t, 1, s.Selected)
	s, _ = Reduce(s, KeyPressed{Key: KeyDown})
	assert.Equal(t, 0, s.Selected)
	s, _ = Reduce(s, KeyPressed{Key: KeyUp})
	assert.Equal(t, 1, s.Selected)

	fresh := open(t, e, EnterLiteral, "quantum")
	fresh, _ = Reduce(fresh, KeyPressed{Key: KeyUp})
	assert.Equal(t, 1, fresh.Selected)
}

func TestEnterWithoutSelection(t *testing.T) {
	e := NewEngine(vocabulary, Options{})

	s := open(t, e, EnterLiteral, "qu")
	s, out := Reduce(s, KeyPressed{Key: KeyEnter})
	assert.True(t, out.Submit)
	assert.Equal(t, "qu", out.Query)
	assert.False(t, out.Refocus)
	assert.Equal(t, Closed, s.Status())

	s = open(t, e, EnterTop, "qu")
	s, out = Reduce(s, KeyPressed{Key: KeyEnter})
	assert.True(t, out.Submit)
	assert.Equal(t, "quantum entanglement", out.Query)
	assert.Equal(t, "quantum entanglement", s.Input)
}

func TestEnterWhileClosedSubmitsInput(t *testing.T) {
	s, _ := Reduce(NewState(""), TextChanged{Text: "zzz"})
	s, _ = Reduce(s, SuggestionsReady{Text: "zzz"})
	require.Equal(t, Closed, s.Status())

	_, out := Reduce(s, KeyPressed{Key: KeyEnter})
	assert.True(t, out.Submit)
	assert.Equal(t, "zzz", out.Query)

	_, out = Reduce(s, KeyPressed{Key: KeyDown})
	assert.Equal(t, Outcome{}, out)
}

func TestCloseEvents(t *testing.T) {
	e := NewEngine(vocabulary, Options{})
	tests := []struct {
		name string
		ev   Event
	}{
		{name: "escape", ev: KeyPressed{Key: KeyEscape}},
		{name: "outside click", ev: ClickedOutside{}},
		{name: "input cleared", ev: TextChanged{Text: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := open(t, e, EnterLiteral, "qu")
			s, _ = Reduce(s, KeyPressed{Key: KeyDown})
			s, out := Reduce(s, tt.ev)
			assert.Equal(t, Closed, s.Status())
			assert.False(t, out.Submit)
			assert.Equal(t, -1, s.Selected)
		})
	}
}

func TestBlurGraceLetsClickWin(t *testing.T) {
	e := NewEngine(vocabulary, Options{})
	s := open(t, e, EnterLiteral, "dark")

	s, out := Reduce(s, FocusLost{})
	assert.True(t, out.StartBlurGrace)
	assert.True(t, s.BlurPending)
	assert.Equal(t, OpenNoSelection, s.Status())

	s, out = Reduce(s, ItemClicked{Index: 0})
	assert.True(t, out.Submit)
	assert.True(t, out.Refocus)
	assert.Equal(t, "dark matter", out.Query)
	assert.True(t, s.Focused)

	s, out = Reduce(s, BlurElapsed{})
	assert.Equal(t, Outcome{}, out)
	assert.Equal(t, "dark matter", s.Input)
}

func TestBlurElapsedCloses(t *testing.T) {
	e := NewEngine(vocabulary, Options{})
	s := open(t, e, EnterLiteral, "dark")
	s, _ = Reduce(s, FocusLost{})
	s, _ = Reduce(s, BlurElapsed{})
	assert.Equal(t, Closed, s.Status())
	assert.False(t, s.BlurPending)
	assert.False(t, s.Focused)
}

func TestFocusLostWhileClosed(t *testing.T) {
	s, out := Reduce(NewState(EnterLiteral), FocusLost{})
	assert.False(t, out.StartBlurGrace)
	assert.Equal(t, RefreshCancel, out.Refresh)
	assert.False(t, s.BlurPending)
}

func TestLateSuggestionsAfterBlurStayClosed(t *testing.T) {
	e := NewEngine(vocabulary, Options{})
	s, _ := Reduce(NewState(EnterLiteral), TextChanged{Text: "qu"})
	s, out := Reduce(s, FocusLost{})
	assert.Equal(t, RefreshCancel, out.Refresh)

	s, _ = Reduce(s, SuggestionsReady{Text: "qu", Items: e.Compute("qu")})
	assert.Equal(t, Closed, s.Status())
	assert.False(t, s.Expanded())
	assert.Nil(t, s.Visible())

	s, _ = Reduce(s, BlurElapsed{})
	assert.Equal(t, Closed, s.Status())

	// Refocusing by typing brings the dropdown back.
	s, _ = Reduce(s, TextChanged{Text: "qu"})
	s, _ = Reduce(s, SuggestionsReady{Text: "qu", Items: e.Compute("qu")})
	assert.Equal(t, OpenNoSelection, s.Status())
}

func TestSuggestionsDuringBlurGraceKeepDropdownOpen(t *testing.T) {
	e := NewEngine(vocabulary, Options{})
	s := open(t, e, EnterLiteral, "qu")
	s, out := Reduce(s, FocusLost{})
	require.True(t, out.StartBlurGrace)

	s, _ = Reduce(s, SuggestionsReady{Text: "qu", Items: e.Compute("qu")})
	assert.Equal(t, OpenNoSelection, s.Status())

	s, _ = Reduce(s, BlurElapsed{})
	assert.Equal(t, Closed, s.Status())
}

func TestStaleSuggestionsIgnored(t *testing.T) {
	e := NewEngine(vocabulary, Options{})
	s, _ := Reduce(NewState(EnterLiteral), TextChanged{Text: "q"})
	s, _ = Reduce(s, TextChanged{Text: "dark"})
	s, _ = Reduce(s, SuggestionsReady{Text: "q", Items: e.Compute("q")})
	assert.Equal(t, Closed, s.Status())
}

func TestItemClickedOutOfRange(t *testing.T) {
	e := NewEngine(vocabulary, Options{})
	s := open(t, e, EnterLiteral, "dark")
	for _, i := range []int{-1, 1, 99} {
		next, out := Reduce(s, ItemClicked{Index: i})
		assert.False(t, out.Submit)
		assert.Equal(t, s.Status(), next.Status())
	}
	closed, out := Reduce(NewState(EnterLiteral), ItemClicked{Index: 0})
	assert.False(t, out.Submit)
	assert.Equal(t, Closed, closed.Status())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "open", OpenNoSelection.String())
	assert.Equal(t, "selected", OpenSelection.String())
	assert.Equal(t, "suggestion-option-3", OptionID(3))
}
