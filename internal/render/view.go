// Package render turns suggestion and result state into what a surface
// draws: HTML pages, terminal text, or structured documents.
package render

import (
	"fmt"

	"github.com/oakwood-commons/kliff/internal/catalog"
	"github.com/oakwood-commons/kliff/internal/paging"
	"github.com/oakwood-commons/kliff/internal/query"
	"github.com/oakwood-commons/kliff/internal/results"
	"github.com/oakwood-commons/kliff/internal/suggest"
)

// ListboxID is the element id of the suggestion list.
const ListboxID = "search-suggestions-listbox"

// SuggestionItem is one row of the dropdown, split around its match.
type SuggestionItem struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Before   string `json:"before"`
	Match    string `json:"match"`
	After    string `json:"after"`
	Selected bool   `json:"selected"`
}

// SuggestionView is the dropdown plus the input's assistive attributes.
type SuggestionView struct {
	Input            string           `json:"input"`
	Expanded         bool             `json:"expanded"`
	ActiveDescendant string           `json:"activeDescendant,omitempty"`
	Items            []SuggestionItem `json:"items"`
}

// Suggestions builds the dropdown view for s.
func Suggestions(s suggest.State) SuggestionView {
	v := SuggestionView{
		Input:            s.Input,
		Expanded:         s.Expanded(),
		ActiveDescendant: s.ActiveDescendant(),
	}
	for i, item := range s.Visible() {
		before, match, after := item.Segments()
		v.Items = append(v.Items, SuggestionItem{
			ID:       suggest.OptionID(i),
			Text:     item.Text,
			Before:   before,
			Match:    match,
			After:    after,
			Selected: s.IsSelected(i),
		})
	}
	return v
}

// ResultItem is one rendered record. Snippet carries the term highlights.
type ResultItem struct {
	Index   int               `json:"index"`
	Title   string            `json:"title"`
	URL     string            `json:"url"`
	Href    string            `json:"href"`
	Snippet []results.Segment `json:"snippet"`
	Type    string            `json:"type,omitempty"`
	Date    string            `json:"date,omitempty"`
	Tags    []string          `json:"tags,omitempty"`
}

// Info is the "Displaying a-b of n" statement.
type Info struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Total int    `json:"total"`
	Query string `json:"query"`
}

// String renders the statement as plain text.
func (i Info) String() string {
	if i.Total == 0 {
		return fmt.Sprintf("No results for: %s", i.Query)
	}
	return fmt.Sprintf("Displaying %d-%d of %d results for: %s", i.Start, i.End, i.Total, i.Query)
}

// Controls is the pagination bar. Hidden when there is at most one page.
type Controls struct {
	Visible      bool   `json:"visible"`
	Current      int    `json:"current"`
	Total        int    `json:"total"`
	PrevDisabled bool   `json:"prevDisabled"`
	NextDisabled bool   `json:"nextDisabled"`
	PrevURL      string `json:"prevUrl,omitempty"`
	NextURL      string `json:"nextUrl,omitempty"`
}

// Label is the page indicator text.
func (c Controls) Label() string {
	return fmt.Sprintf("Page %d of %d", c.Current, c.Total)
}

// RelatedLink is a follow-up query from the answer box.
type RelatedLink struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// AnswerView is the answer box. Summary is markdown.
type AnswerView struct {
	Summary string        `json:"summary"`
	Related []RelatedLink `json:"related,omitempty"`
}

// ResultsView is everything the results surface draws.
type ResultsView struct {
	Query     string       `json:"query"`
	Loading   bool         `json:"loading"`
	Skeletons int          `json:"skeletons,omitempty"`
	Fallback  bool         `json:"fallback"`
	Info      Info         `json:"info"`
	Items     []ResultItem `json:"items"`
	Controls  Controls     `json:"controls"`
	Answer    *AnswerView  `json:"answer,omitempty"`
	Error     string       `json:"error,omitempty"`
	// Cursor is the 1-based position of the focused item on the page; 0 when
	// no item has focus.
	Cursor int `json:"-"`
}

// Results builds the view of the current page. While a resolution is pending
// the view shows placeholders and no controls.
func Results(st results.State) ResultsView {
	if st.Loading {
		return ResultsView{Query: st.Pending, Loading: true, Skeletons: st.Page.Size}
	}
	v := ResultsView{Query: st.Set.Query, Fallback: st.Set.Fallback}
	if st.Err != nil {
		v.Error = st.Err.Error()
	}

	start, end := st.Page.Window()
	terms := results.Terms(st.Set.Query)
	for i, r := range paging.Slice(st.Set.Records, st.Page) {
		v.Items = append(v.Items, item(start+i+1, r, terms))
	}
	v.Info = Info{Start: start + 1, End: end, Total: st.Page.Total, Query: st.Set.Query}
	if st.Page.Total == 0 {
		v.Info.Start = 0
	}
	v.Controls = controls(st.Set.Query, st.Page)
	if a := st.Set.Answer; a != nil {
		v.Answer = answer(*a)
	}
	return v
}

func item(index int, r catalog.Record, terms []string) ResultItem {
	return ResultItem{
		Index:   index,
		Title:   r.Title,
		URL:     r.URL,
		Href:    r.Href(),
		Snippet: results.Highlight(r.Snippet, terms),
		Type:    r.Type,
		Date:    r.Date,
		Tags:    r.Tags,
	}
}

func controls(q string, p paging.State) Controls {
	c := Controls{
		Visible:      p.ControlsVisible(),
		Current:      p.Current,
		Total:        p.TotalPages(),
		PrevDisabled: !p.CanPrev(),
		NextDisabled: !p.CanNext(),
	}
	if p.CanPrev() {
		c.PrevURL = query.PageURL(q, p.Current-1)
	}
	if p.CanNext() {
		c.NextURL = query.PageURL(q, p.Current+1)
	}
	return c
}

func answer(a catalog.Answer) *AnswerView {
	v := &AnswerView{Summary: a.Summary}
	for _, r := range a.Related {
		v.Related = append(v.Related, RelatedLink{Text: r, URL: query.NavigationURL(r)})
	}
	return v
}
