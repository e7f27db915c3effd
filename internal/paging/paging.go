// Package paging tracks which fixed-size window of an ordered result list is visible.
package paging

import "fmt"

// Direction is a single-step navigation request.
type Direction int

const (
	Prev Direction = iota
	Next
)

func (d Direction) String() string {
	if d == Prev {
		return "prev"
	}
	return "next"
}

// State is the page window over Total items. Current is 1-based and always
// within [1, max(TotalPages, 1)].
type State struct {
	Current int `json:"currentPage" yaml:"current_page" toml:"current_page"`
	Size    int `json:"pageSize" yaml:"page_size" toml:"page_size"`
	Total   int `json:"totalItems" yaml:"total_items" toml:"total_items"`
}

// New returns the first page of total items split into pages of size.
func New(size, total int) State {
	if total < 0 {
		total = 0
	}
	return State{Current: 1, Size: size, Total: total}
}

// Validate checks the size and bounds rules.
func (s State) Validate() error {
	if s.Size <= 0 {
		return fmt.Errorf("page size must be positive, got %d", s.Size)
	}
	if s.Total < 0 {
		return fmt.Errorf("total items must be non-negative, got %d", s.Total)
	}
	if s.Current < 1 || s.Current > max(s.TotalPages(), 1) {
		return fmt.Errorf("page %d out of range [1, %d]", s.Current, max(s.TotalPages(), 1))
	}
	return nil
}

// TotalPages is ceil(Total/Size); zero when there is nothing to show.
func (s State) TotalPages() int {
	if s.Size <= 0 || s.Total <= 0 {
		return 0
	}
	return (s.Total + s.Size - 1) / s.Size
}

// Window returns the half-open item range [start, end) of the current page,
// clipped to Total.
func (s State) Window() (start, end int) {
	if s.Size <= 0 {
		return 0, 0
	}
	start = (s.Current - 1) * s.Size
	if start > s.Total {
		start = s.Total
	}
	if start < 0 {
		start = 0
	}
	end = start + s.Size
	if end > s.Total {
		end = s.Total
	}
	return start, end
}

// CanPrev reports whether a Prev step would move.
func (s State) CanPrev() bool { return s.Current > 1 }

// CanNext reports whether a Next step would move.
func (s State) CanNext() bool { return s.Current < s.TotalPages() }

// ControlsVisible reports whether pagination controls are shown at all.
func (s State) ControlsVisible() bool { return s.TotalPages() > 1 }

// Step moves one page in d. Out-of-range steps leave the state unchanged and
// report false.
func (s State) Step(d Direction) (State, bool) {
	switch d {
	case Prev:
		if !s.CanPrev() {
			return s, false
		}
		s.Current--
	case Next:
		if !s.CanNext() {
			return s, false
		}
		s.Current++
	default:
		return s, false
	}
	return s, true
}

// Goto jumps to page. Pages outside [1, TotalPages] are refused.
func (s State) Goto(page int) (State, bool) {
	if page < 1 || page > s.TotalPages() {
		return s, false
	}
	s.Current = page
	return s, true
}

// Slice returns the current page of items.
func Slice[T any](items []T, s State) []T {
	s.Total = len(items)
	start, end := s.Window()
	return items[start:end]
}
