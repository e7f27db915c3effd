package render

import (
	"fmt"
	"strings"
	"unicode"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/kliff/internal/config"
	"github.com/oakwood-commons/kliff/internal/results"
)

// Styles renders views as terminal text.
type Styles struct {
	Title     lipgloss.Style
	URL       lipgloss.Style
	Snippet   lipgloss.Style
	Highlight lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
	Selected  lipgloss.Style
	Error     lipgloss.Style
	Box       lipgloss.Style
}

// NewStyles builds styles from a palette. With noColor only bold and faint
// are used.
func NewStyles(th config.ThemeConfig, noColor bool) Styles {
	base := lipgloss.NewStyle()
	if noColor {
		return Styles{
			Title:     base.Bold(true),
			URL:       base,
			Snippet:   base,
			Highlight: base.Bold(true),
			Muted:     base.Faint(true),
			Accent:    base.Bold(true),
			Selected:  base.Reverse(true),
			Error:     base.Bold(true),
			Box:       base.Border(lipgloss.NormalBorder()).Padding(0, 1),
		}
	}
	fg := func(c config.ColorValue) lipgloss.Style {
		if c == "" {
			return base
		}
		return base.Foreground(lipgloss.Color(string(c)))
	}
	selected := fg(th.SelectedFG)
	if th.SelectedBG != "" {
		selected = selected.Background(lipgloss.Color(string(th.SelectedBG)))
	}
	box := base.Border(lipgloss.RoundedBorder()).Padding(0, 1)
	if th.Border != "" {
		box = box.BorderForeground(lipgloss.Color(string(th.Border)))
	}
	return Styles{
		Title:     fg(th.Accent).Bold(true),
		URL:       fg(th.Muted),
		Snippet:   fg(th.Text),
		Highlight: fg(th.Highlight).Bold(true),
		Muted:     fg(th.Muted),
		Accent:    fg(th.Accent),
		Selected:  selected,
		Error:     fg(th.Error).Bold(true),
		Box:       box,
	}
}

// Sanitize makes untrusted text safe for a terminal: control characters,
// escape sequences included, become spaces.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func (s Styles) wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}

// SuggestionList draws the dropdown, one row per item. Closed dropdowns draw
// nothing.
func (s Styles) SuggestionList(v SuggestionView, width int) string {
	if !v.Expanded {
		return ""
	}
	rows := make([]string, 0, len(v.Items))
	for _, it := range v.Items {
		if it.Selected {
			rows = append(rows, s.Selected.Render(truncate("> "+Sanitize(it.Text), width)))
			continue
		}
		if width > 0 && runewidth.StringWidth(it.Text)+2 > width {
			rows = append(rows, "  "+truncate(Sanitize(it.Text), width-2))
			continue
		}
		rows = append(rows, "  "+Sanitize(it.Before)+s.Highlight.Render(Sanitize(it.Match))+Sanitize(it.After))
	}
	return strings.Join(rows, "\n")
}

// Segments draws highlighted snippet text.
func (s Styles) Segments(segs []results.Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		text := Sanitize(seg.Text)
		if seg.Emph {
			b.WriteString(s.Highlight.Render(text))
		} else {
			b.WriteString(s.Snippet.Render(text))
		}
	}
	return b.String()
}

// AnswerBox draws the answer summary and related queries in a border.
func (s Styles) AnswerBox(a AnswerView, width int) string {
	inner := width - 4
	body := s.wrap(MarkdownText(Sanitize(a.Summary), func(t string) string { return s.Highlight.Render(t) }), inner)
	if len(a.Related) > 0 {
		related := make([]string, len(a.Related))
		for i, r := range a.Related {
			related[i] = s.Accent.Render(Sanitize(r.Text))
		}
		body += "\n\n" + s.Muted.Render("Related: ") + strings.Join(related, s.Muted.Render(" · "))
	}
	return s.Box.Render(body)
}

// Controls draws the pagination bar; disabled directions are dimmed.
func (s Styles) Controls(c Controls) string {
	if !c.Visible {
		return ""
	}
	prev, next := "← prev", "next →"
	if c.PrevDisabled {
		prev = s.Muted.Faint(true).Render(prev)
	} else {
		prev = s.Accent.Render(prev)
	}
	if c.NextDisabled {
		next = s.Muted.Faint(true).Render(next)
	} else {
		next = s.Accent.Render(next)
	}
	return prev + "  " + s.Muted.Render(c.Label()) + "  " + next
}

// Results draws the results surface.
func (s Styles) Results(v ResultsView, width int) string {
	var b strings.Builder
	if v.Loading {
		n := max(min(width, 48), 8)
		long, short := strings.Repeat("░", n), strings.Repeat("░", n/2)
		for i := 0; i < v.Skeletons; i++ {
			b.WriteString(s.Muted.Render(long) + "\n" + s.Muted.Render(short) + "\n\n")
		}
		return strings.TrimRight(b.String(), "\n")
	}
	if v.Query == "" {
		return s.Muted.Render("Type a query and press enter.")
	}
	if v.Error != "" {
		b.WriteString(s.Error.Render(Sanitize(v.Error)) + "\n\n")
	}
	b.WriteString(s.Muted.Render(truncate(Sanitize(v.Info.String()), width)) + "\n\n")
	if v.Answer != nil {
		b.WriteString(s.AnswerBox(*v.Answer, width) + "\n\n")
	}
	for i, it := range v.Items {
		title := truncate(fmt.Sprintf("%d. %s", it.Index, Sanitize(it.Title)), width)
		if i+1 == v.Cursor {
			b.WriteString(s.Selected.Render(title) + "\n")
		} else {
			b.WriteString(s.Title.Render(title) + "\n")
		}
		b.WriteString("   " + s.URL.Render(truncate(Sanitize(it.URL), width-3)) + "\n")
		b.WriteString(indent(s.wrap(s.Segments(it.Snippet), width-3), "   ") + "\n")
		var meta []string
		if it.Type != "" {
			meta = append(meta, "Type: "+Sanitize(it.Type))
		}
		if it.Date != "" {
			meta = append(meta, "Date: "+Sanitize(it.Date))
		}
		if len(meta) > 0 {
			b.WriteString("   " + s.Muted.Render(strings.Join(meta, "  ")) + "\n")
		}
		b.WriteString("\n")
	}
	if c := s.Controls(v.Controls); c != "" {
		b.WriteString(c + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
