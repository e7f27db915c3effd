package results

import (
	"context"
	"errors"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/kliff/internal/catalog"
	"github.com/oakwood-commons/kliff/internal/paging"
)

// DefaultPageSize is the number of records per page.
const DefaultPageSize = 5

// State is what a results surface renders.
type State struct {
	Set      ResultSet
	Page     paging.State
	Resolved bool
	Loading  bool
	Pending  string
	Err      error
}

// Request identifies one in-flight resolution.
type Request struct {
	Query string
	gen   uint64
	ctx   context.Context
}

// Context is cancelled once a newer request begins.
func (r Request) Context() context.Context { return r.ctx }

// Option configures a Paginator.
type Option func(*Paginator)

// WithLogger sets the logger used for resolution traces.
func WithLogger(lgr logr.Logger) Option {
	return func(p *Paginator) { p.log = lgr }
}

// Paginator owns the current result set and page state. Only Run may be called
// off the owning goroutine.
type Paginator struct {
	resolver Resolver
	size     int
	log      logr.Logger
	gen      uint64
	cancel   context.CancelFunc
	state    State
}

// New returns a paginator with nothing resolved yet.
func New(resolver Resolver, pageSize int, opts ...Option) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	p := &Paginator{resolver: resolver, size: pageSize, log: logr.Discard()}
	for _, opt := range opts {
		opt(p)
	}
	p.state.Page = paging.New(pageSize, 0)
	return p
}

// Begin starts resolving q. Any earlier request is cancelled and its result
// will be refused by Complete.
func (p *Paginator) Begin(parent context.Context, q string) Request {
	if p.cancel != nil {
		p.cancel()
	}
	p.gen++
	ctx, cancel := context.WithCancel(parent)
	p.cancel = cancel
	p.state.Loading = true
	p.state.Pending = q
	p.state.Err = nil
	p.log.V(1).Info("resolve started", "query", q, "generation", p.gen)
	return Request{Query: q, gen: p.gen, ctx: ctx}
}

// Run performs the resolution for req. It is safe to call from a goroutine.
func (p *Paginator) Run(req Request) (ResultSet, error) {
	return p.resolver.Resolve(req.ctx, req.Query)
}

// Complete installs the outcome of req. Outcomes of superseded requests are
// dropped and reported as false. A failed resolution keeps the previous set.
func (p *Paginator) Complete(req Request, set ResultSet, err error) bool {
	if req.gen != p.gen {
		p.log.V(1).Info("stale resolution dropped", "query", req.Query, "generation", req.gen, "current", p.gen)
		return false
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.state.Loading = false
	p.state.Pending = ""
	if err != nil {
		p.state.Err = err
		if !errors.Is(err, context.Canceled) {
			p.log.Error(err, "resolve failed", "query", req.Query)
		}
		return true
	}
	p.state.Set = set
	p.state.Resolved = true
	p.state.Page = paging.New(p.size, set.Len())
	p.log.V(1).Info("resolve finished", "query", req.Query, "records", set.Len(), "matched", set.MatchedKey, "fallback", set.Fallback)
	return true
}

// Search resolves q on the calling goroutine.
func (p *Paginator) Search(ctx context.Context, q string) error {
	req := p.Begin(ctx, q)
	set, err := p.Run(req)
	p.Complete(req, set, err)
	return err
}

// Step moves one page; out-of-range moves do nothing and report false.
func (p *Paginator) Step(d paging.Direction) bool {
	if p.state.Loading {
		return false
	}
	next, moved := p.state.Page.Step(d)
	p.state.Page = next
	return moved
}

// Goto jumps to a 1-based page if it exists.
func (p *Paginator) Goto(page int) bool {
	if p.state.Loading {
		return false
	}
	next, ok := p.state.Page.Goto(page)
	p.state.Page = next
	return ok
}

// State returns a snapshot.
func (p *Paginator) State() State { return p.state }

// PageSize returns the configured page size.
func (p *Paginator) PageSize() int { return p.size }

// Page returns the records of the current page.
func (p *Paginator) Page() []catalog.Record {
	return paging.Slice(p.state.Set.Records, p.state.Page)
}
