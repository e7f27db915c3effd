package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/kliff/internal/render"
)

// View draws the screen in the alternate buffer with mouse and focus
// reporting on.
func (m *Model) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.ReportFocus = true
	return v
}

// Render returns the screen as text. Rows 0 and 1 are the title and the
// input; the dropdown starts at dropdownTop.
func (m *Model) Render() string {
	width := max(m.width, 20)
	var b strings.Builder

	title := m.styles.Title.Render(render.Sanitize(m.cfg.App.Name))
	if tag := strings.TrimSpace(m.cfg.App.Tagline); tag != "" {
		title += "  " + m.styles.Muted.Render(render.Sanitize(tag))
	}
	b.WriteString(title + "\n")

	line := m.input.View()
	if m.inputErr {
		line = m.styles.Error.Render("!") + " " + line + "  " + m.styles.Error.Render("enter a search term")
	} else {
		line = "  " + line
	}
	b.WriteString(line + "\n")

	if list := m.styles.SuggestionList(render.Suggestions(m.dropdown), width); list != "" {
		b.WriteString(list + "\n")
	}
	b.WriteString("\n")

	rv := render.Results(m.pager.State())
	if m.focus == focusResults && len(rv.Items) > 0 {
		rv.Cursor = m.cursor + 1
	}
	b.WriteString(m.styles.Results(rv, width) + "\n")
	if rv.Controls.Visible {
		b.WriteString(m.styles.Muted.Render(m.dots.View()) + "\n")
	}

	b.WriteString("\n" + m.footer(width))
	return b.String()
}

// footer shows the status line, if any, above the key hints for the current
// focus.
func (m *Model) footer(width int) string {
	keyStyle := lipgloss.NewStyle().Bold(true)
	if !m.noColor {
		keyStyle = m.styles.Accent.Bold(true)
	}
	hints := inputHints()
	if m.focus == focusResults {
		hints = resultHints()
	}
	parts := make([]string, 0, len(hints))
	used := 0
	for _, h := range hints {
		w := runewidth.StringWidth(h.Key) + runewidth.StringWidth(h.Label) + 3
		if used+w > width {
			break
		}
		used += w
		parts = append(parts, keyStyle.Render(h.Key)+" "+m.styles.Muted.Render(h.Label))
	}
	out := strings.Join(parts, "  ")
	if m.status != "" {
		out = m.styles.Muted.Render(runewidth.Truncate(render.Sanitize(m.status), width, "…")) + "\n" + out
	}
	return out
}
