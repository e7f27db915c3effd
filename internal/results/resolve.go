// Package results resolves finalized queries against the catalog and pages
// through the resulting records.
package results

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oakwood-commons/kliff/internal/catalog"
	"github.com/oakwood-commons/kliff/internal/cel"
)

// ErrTimeout reports that a resolution took longer than its budget.
var ErrTimeout = errors.New("resolution timed out")

// Source is the static mapping queries are resolved against.
type Source interface {
	Lookup(key string) ([]catalog.Record, bool)
	DefaultSet() []catalog.Record
	Answer(key string) (catalog.Answer, bool)
}

// ResultSet is the ordered records bound to one query.
type ResultSet struct {
	Query      string           `json:"query" yaml:"query" toml:"query"`
	MatchedKey string           `json:"matchedKey,omitempty" yaml:"matched_key,omitempty" toml:"matched_key,omitempty"`
	Fallback   bool             `json:"fallback" yaml:"fallback" toml:"fallback"`
	Records    []catalog.Record `json:"records" yaml:"records" toml:"records"`
	Answer     *catalog.Answer  `json:"answer,omitempty" yaml:"answer,omitempty" toml:"answer,omitempty"`
}

// Len is the number of records.
func (rs ResultSet) Len() int { return len(rs.Records) }

// Resolver turns a query into a result set.
type Resolver interface {
	Resolve(ctx context.Context, q string) (ResultSet, error)
}

// Lookup resolves q against src: the exact normalized query first, then each
// whitespace-separated term longer than two characters from left to right,
// then the default set with the query substituted into its titles. It never
// fails; a blank query gets the default set.
func Lookup(src Source, q string) ResultSet {
	q = strings.TrimSpace(q)
	key := catalog.NormalizeKey(q)
	rs := ResultSet{Query: q}
	if a, ok := src.Answer(key); ok {
		rs.Answer = &a
	}

	if key != "" {
		if records, ok := src.Lookup(key); ok {
			rs.MatchedKey = key
			rs.Records = records
			return rs
		}
		for _, term := range strings.Fields(key) {
			if utf8.RuneCountInString(term) <= 2 {
				continue
			}
			if records, ok := src.Lookup(term); ok {
				rs.MatchedKey = term
				rs.Records = records
				return rs
			}
		}
	}

	rs.Fallback = true
	rs.Records = src.DefaultSet()
	for i := range rs.Records {
		rs.Records[i].Title = strings.ReplaceAll(rs.Records[i].Title, catalog.QueryPlaceholder, q)
	}
	return rs
}

// StaticResolver resolves immediately from its source.
type StaticResolver struct {
	Source Source
}

// Resolve implements Resolver.
func (s StaticResolver) Resolve(ctx context.Context, q string) (ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return ResultSet{}, err
	}
	return Lookup(s.Source, q), nil
}

// DelayedResolver waits Delay before delegating, standing in for a network
// round trip. A positive Timeout bounds the whole call.
type DelayedResolver struct {
	Next    Resolver
	Delay   time.Duration
	Timeout time.Duration
}

// Resolve implements Resolver.
func (d DelayedResolver) Resolve(ctx context.Context, q string) (ResultSet, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	if d.Delay > 0 {
		timer := time.NewTimer(d.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ResultSet{}, contextErr(ctx, d.Timeout)
		case <-timer.C:
		}
	}
	rs, err := d.Next.Resolve(ctx, q)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return ResultSet{}, contextErr(ctx, d.Timeout)
	}
	return rs, err
}

func contextErr(ctx context.Context, budget time.Duration) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, budget)
	}
	return ctx.Err()
}

// FilteredResolver drops records the predicate rejects. The answer box and
// match metadata are kept.
type FilteredResolver struct {
	Next   Resolver
	Filter *cel.Predicate
}

// Resolve implements Resolver.
func (f FilteredResolver) Resolve(ctx context.Context, q string) (ResultSet, error) {
	rs, err := f.Next.Resolve(ctx, q)
	if err != nil || f.Filter == nil {
		return rs, err
	}
	kept := make([]catalog.Record, 0, len(rs.Records))
	for _, r := range rs.Records {
		ok, err := f.Filter.Match(r.Fields())
		if err != nil {
			return ResultSet{}, fmt.Errorf("filter %s: %w", f.Filter, err)
		}
		if ok {
			kept = append(kept, r)
		}
	}
	rs.Records = kept
	return rs, nil
}
