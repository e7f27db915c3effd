package ui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/kliff/internal/suggest"
)

// Action is what a key does in the current focus.
type Action string

const (
	ActionNone        Action = ""
	ActionQuit        Action = "quit"
	ActionTheme       Action = "theme"
	ActionPrevPage    Action = "prev_page"
	ActionNextPage    Action = "next_page"
	ActionFocusInput  Action = "focus_input"
	ActionFocusResult Action = "focus_results"
	ActionCursorUp    Action = "cursor_up"
	ActionCursorDown  Action = "cursor_down"
	ActionOpen        Action = "open"
	ActionCopy        Action = "copy"
)

// InputKeyBindings apply while the search box has focus. Keys not listed go
// to the dropdown and then to the text input.
var InputKeyBindings = map[string]Action{
	"ctrl+c": ActionQuit,
	"ctrl+t": ActionTheme,
	"pgup":   ActionPrevPage,
	"pgdown": ActionNextPage,
	"tab":    ActionFocusResult,
}

// ResultKeyBindings apply while the result list has focus.
var ResultKeyBindings = map[string]Action{
	"ctrl+c":    ActionQuit,
	"q":         ActionQuit,
	"ctrl+t":    ActionTheme,
	"t":         ActionTheme,
	"left":      ActionPrevPage,
	"h":         ActionPrevPage,
	"pgup":      ActionPrevPage,
	"right":     ActionNextPage,
	"l":         ActionNextPage,
	"pgdown":    ActionNextPage,
	"up":        ActionCursorUp,
	"k":         ActionCursorUp,
	"down":      ActionCursorDown,
	"j":         ActionCursorDown,
	"o":         ActionOpen,
	"enter":     ActionOpen,
	"y":         ActionCopy,
	"/":         ActionFocusInput,
	"tab":       ActionFocusInput,
	"shift+tab": ActionFocusInput,
	"esc":       ActionFocusInput,
}

// dropdownKey maps a key press to a dropdown navigation key.
func dropdownKey(msg tea.KeyPressMsg) (suggest.Key, bool) {
	switch msg.String() {
	case "down", "ctrl+n":
		return suggest.KeyDown, true
	case "up", "ctrl+p":
		return suggest.KeyUp, true
	case "enter":
		return suggest.KeyEnter, true
	case "esc":
		return suggest.KeyEscape, true
	}
	return 0, false
}

// hint is one footer entry.
type hint struct {
	Key   string
	Label string
}

func inputHints() []hint {
	return []hint{
		{"↑/↓", "suggestions"},
		{"enter", "search"},
		{"pgup/pgdn", "page"},
		{"tab", "results"},
		{"ctrl+t", "theme"},
		{"ctrl+c", "quit"},
	}
}

func resultHints() []hint {
	return []hint{
		{"j/k", "move"},
		{"h/l", "page"},
		{"o", "open"},
		{"y", "copy link"},
		{"/", "search"},
		{"t", "theme"},
		{"q", "quit"},
	}
}
