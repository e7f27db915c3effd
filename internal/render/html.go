package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/oakwood-commons/kliff/internal/config"
	"github.com/oakwood-commons/kliff/internal/query"
)

//go:embed templates/*.html
var templateFS embed.FS

// Palette is a theme reduced to CSS color values.
type Palette struct {
	Background template.CSS
	Surface    template.CSS
	Text       template.CSS
	Muted      template.CSS
	Accent     template.CSS
	Highlight  template.CSS
	SelectedFG template.CSS
	SelectedBG template.CSS
	Border     template.CSS
	Error      template.CSS
}

// NewPalette converts th. Colors pass through ColorValue.Hex, which only
// ever yields "#rrggbb" or "".
func NewPalette(th config.ThemeConfig) Palette {
	css := func(c config.ColorValue) template.CSS {
		if h := c.Hex(); h != "" {
			return template.CSS(h) //nolint:gosec // validated hex
		}
		return "initial"
	}
	return Palette{
		Background: css(th.Background),
		Surface:    css(th.Surface),
		Text:       css(th.Text),
		Muted:      css(th.Muted),
		Accent:     css(th.Accent),
		Highlight:  css(th.Highlight),
		SelectedFG: css(th.SelectedFG),
		SelectedBG: css(th.SelectedBG),
		Border:     css(th.Border),
		Error:      css(th.Error),
	}
}

// PageData is the input of the home and results templates.
type PageData struct {
	Title       string
	App         config.AppConfig
	ThemeName   string
	Palette     Palette
	Return      string
	Input       string
	InputError  bool
	Suggestions SuggestionView
	Results     *ResultsView
}

// HTML renders pages with html/template, so every interpolated value is
// escaped for its context.
type HTML struct {
	tmpl *template.Template
}

// NewHTML parses the embedded templates.
func NewHTML() (*HTML, error) {
	funcs := template.FuncMap{
		"listboxID": func() string { return ListboxID },
		"navURL":    query.NavigationURL,
		"markdown":  func(md string) template.HTML { return template.HTML(MarkdownHTML(md)) }, //nolint:gosec // raw HTML is skipped by the renderer
		"loop":      func(n int) []int { return make([]int, max(n, 0)) },
	}
	tmpl, err := template.New("kliff").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &HTML{tmpl: tmpl}, nil
}

// Home renders the search page.
func (h *HTML) Home(w io.Writer, data PageData) error {
	return h.exec(w, "home", data)
}

// Results renders the results page.
func (h *HTML) Results(w io.Writer, data PageData) error {
	return h.exec(w, "results", data)
}

// Suggestions renders only the listbox fragment.
func (h *HTML) Suggestions(w io.Writer, v SuggestionView) error {
	return h.exec(w, "suggestions", v)
}

func (h *HTML) exec(w io.Writer, name string, data any) error {
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}
