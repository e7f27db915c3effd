// Package query finalizes search input and carries it across the navigation
// boundary between the search box and the results surface.
package query

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// ResultsPath is the results surface the navigation URL points at.
const ResultsPath = "results"

// Param is the URL parameter carrying the query.
const Param = "q"

// ErrEmpty rejects finalization of blank input.
var ErrEmpty = errors.New("query is empty")

// Finalize trims text and rejects it when nothing is left.
func Finalize(text string) (string, error) {
	q := strings.TrimSpace(text)
	if q == "" {
		return "", ErrEmpty
	}
	return q, nil
}

// NavigationURL is the relative URL the results surface is opened with.
func NavigationURL(q string) string {
	return ResultsPath + "?" + url.Values{Param: {q}}.Encode()
}

// PageURL is NavigationURL pinned to a page; page 1 is left implicit.
func PageURL(q string, page int) string {
	v := url.Values{Param: {q}}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	return ResultsPath + "?" + v.Encode()
}

// FromURL reads the query out of a results URL. Input without a q
// parameter is taken as the query itself.
func FromURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, "?"); i >= 0 {
		if v, err := url.ParseQuery(raw[i+1:]); err == nil && v.Has(Param) {
			return Finalize(v.Get(Param))
		}
	}
	return Finalize(raw)
}
