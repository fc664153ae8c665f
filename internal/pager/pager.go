// Package pager implements the paginated list consumer pattern shared by
// the claims table and the customer list: fetch the current page, preload
// the next one in the background, and promote preloaded data on forward
// navigation so "Next" renders with no visible latency.
package pager

import (
	"context"
	"sync"
	"time"

	"bastion/internal/models"
)

// DefaultLimit is the page size used when none is configured.
const DefaultLimit = 10

// DefaultPreloadDelay debounces next-page preloading against rapid page
// flipping.
const DefaultPreloadDelay = 100 * time.Millisecond

// Fetcher retrieves one page of items together with the server's
// pagination envelope.
type Fetcher[T any] func(ctx context.Context, page, limit int) ([]T, models.Pagination, error)

type inflight[T any] struct {
	done  chan struct{}
	items []T
	pag   models.Pagination
	err   error
}

// Pager drives one paginated list view. All mutation happens under one
// mutex; speculative fetches never touch the displayed items.
type Pager[T any] struct {
	mu           sync.Mutex
	fetch        Fetcher[T]
	limit        int
	preloadDelay time.Duration
	preload      bool

	page       int
	items      []T
	pagination models.Pagination
	loaded     bool
	lastErr    error

	preloaded    map[int][]T
	inflightByPg map[int]*inflight[T]
	gen          uint64
	cancelPrev   context.CancelFunc
	preloadTimer *time.Timer

	root     context.Context
	shutdown context.CancelFunc
}

// Option configures a Pager.
type Option[T any] func(*Pager[T])

// WithLimit sets the fixed page size.
func WithLimit[T any](limit int) Option[T] {
	return func(p *Pager[T]) {
		if limit > 0 {
			p.limit = limit
		}
	}
}

// WithPreloadDelay sets the debounce before the next page is prefetched.
func WithPreloadDelay[T any](d time.Duration) Option[T] {
	return func(p *Pager[T]) { p.preloadDelay = d }
}

// WithoutPreload disables background prefetching entirely.
func WithoutPreload[T any]() Option[T] {
	return func(p *Pager[T]) { p.preload = false }
}

// New builds a pager positioned on page 1. Call Load to fetch it.
func New[T any](fetch Fetcher[T], opts ...Option[T]) *Pager[T] {
	root, shutdown := context.WithCancel(context.Background())
	p := &Pager[T]{
		fetch:        fetch,
		limit:        DefaultLimit,
		preloadDelay: DefaultPreloadDelay,
		preload:      true,
		page:         1,
		preloaded:    make(map[int][]T),
		inflightByPg: make(map[int]*inflight[T]),
		root:         root,
		shutdown:     shutdown,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Close cancels any pending background work. Results of in-flight fetches
// are discarded on arrival.
func (p *Pager[T]) Close() {
	p.mu.Lock()
	if p.preloadTimer != nil {
		p.preloadTimer.Stop()
	}
	if p.cancelPrev != nil {
		p.cancelPrev()
	}
	p.gen++
	p.mu.Unlock()
	p.shutdown()
}

// Page returns the current 1-indexed page.
func (p *Pager[T]) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// Items returns the currently displayed page data.
func (p *Pager[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.items
}

// Pagination returns the latest envelope received from the server.
func (p *Pager[T]) Pagination() models.Pagination {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pagination
}

// TotalPages returns the page count from the latest envelope.
func (p *Pager[T]) TotalPages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pagination.Pages
}

// Empty reports whether the collection held no items at last fetch.
func (p *Pager[T]) Empty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded && p.pagination.Total == 0
}

// Err returns the error of the most recent failed navigation, nil after a
// success. A failure never clears the previously displayed items.
func (p *Pager[T]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Load fetches the current page. It is the initial authoritative fetch
// and also the recovery path after a failure.
func (p *Pager[T]) Load(ctx context.Context) error {
	p.mu.Lock()
	page := p.page
	p.mu.Unlock()
	return p.goTo(ctx, page)
}

// Next advances one page. If the target page was preloaded its data is
// promoted immediately and the authoritative fetch reconciles in the
// background; otherwise the fetch blocks.
func (p *Pager[T]) Next(ctx context.Context) error {
	p.mu.Lock()
	if !p.loaded {
		// No envelope yet, so the page count is unknown. Perform the
		// initial load instead of advancing blind.
		page := p.page
		p.mu.Unlock()
		return p.goTo(ctx, page)
	}
	if p.page >= maxPage(p.pagination.Pages) {
		p.mu.Unlock()
		return nil
	}
	target := p.page + 1
	cached, ok := p.preloaded[target]
	if ok {
		p.applyPromotion(target, cached)
		gen := p.gen
		fetchCtx := p.nextFetchContext()
		p.mu.Unlock()
		go p.reconcile(fetchCtx, target, gen)
		return nil
	}
	p.mu.Unlock()
	return p.goTo(ctx, target)
}

// Prev steps one page back with a plain blocking fetch. Backward preload
// is intentionally absent: review flows scan forward.
func (p *Pager[T]) Prev(ctx context.Context) error {
	p.mu.Lock()
	if p.page <= 1 {
		p.mu.Unlock()
		return nil
	}
	target := p.page - 1
	p.mu.Unlock()
	return p.goTo(ctx, target)
}

// GoTo navigates to an arbitrary page, clamped to the known range.
func (p *Pager[T]) GoTo(ctx context.Context, page int) error {
	return p.goTo(ctx, page)
}

// nextFetchContext cancels the previous authoritative fetch and derives a
// fresh context for the next one. Callers hold the mutex.
func (p *Pager[T]) nextFetchContext() context.Context {
	if p.cancelPrev != nil {
		p.cancelPrev()
	}
	ctx, cancel := context.WithCancel(p.root)
	p.cancelPrev = cancel
	return ctx
}

func maxPage(pages int) int {
	if pages < 1 {
		return 1
	}
	return pages
}

// goTo performs an authoritative fetch for the target page. Only the most
// recent navigation may apply its result; older responses are discarded.
func (p *Pager[T]) goTo(ctx context.Context, target int) error {
	p.mu.Lock()
	if p.loaded {
		target = models.ClampPage(target, p.pagination.Pages)
	} else if target < 1 {
		target = 1
	}
	gen := p.gen + 1
	p.gen = gen
	fetchCtx, cancel := context.WithCancel(ctx)
	if p.cancelPrev != nil {
		p.cancelPrev()
	}
	p.cancelPrev = cancel
	prevPage := p.page
	p.mu.Unlock()

	items, pag, err := p.fetchPage(fetchCtx, target)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		// A newer navigation superseded this fetch; drop the result.
		return nil
	}
	if err != nil {
		// Keep the last-good items and page so the view can recover.
		p.page = prevPage
		p.lastErr = err
		return err
	}
	p.applyResult(target, items, pag)
	return nil
}

// reconcile refreshes a promoted page in the background. The preloaded
// data stays on screen if the authoritative copy matches or the fetch is
// superseded; a failure is surfaced but does not blank the promotion.
func (p *Pager[T]) reconcile(ctx context.Context, target int, gen uint64) {
	items, pag, err := p.fetchPage(ctx, target)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen || p.page != target {
		return
	}
	if err != nil {
		p.lastErr = err
		return
	}
	p.applyResult(target, items, pag)
}

// fetchPage issues at most one request per page: concurrent callers for
// the same page share a single in-flight fetch. The fetch itself runs
// under the pager's root context so abandoning one waiter cannot poison
// the shared result; a canceled caller just stops waiting.
func (p *Pager[T]) fetchPage(ctx context.Context, page int) ([]T, models.Pagination, error) {
	p.mu.Lock()
	call, ok := p.inflightByPg[page]
	if !ok {
		call = &inflight[T]{done: make(chan struct{})}
		p.inflightByPg[page] = call
		go func() {
			call.items, call.pag, call.err = p.fetch(p.root, page, p.limit)
			close(call.done)
			p.mu.Lock()
			delete(p.inflightByPg, page)
			p.mu.Unlock()
		}()
	}
	p.mu.Unlock()

	select {
	case <-call.done:
		return call.items, call.pag, call.err
	case <-ctx.Done():
		return nil, models.Pagination{}, ctx.Err()
	}
}

// applyPromotion swaps preloaded data in as the displayed page.
// Callers hold the mutex.
func (p *Pager[T]) applyPromotion(target int, cached []T) {
	p.page = target
	p.items = cached
	p.lastErr = nil
	delete(p.preloaded, target)
	p.gen++
}

// applyResult installs an authoritative page and recomputes the window
// from the latest envelope, clamping down if the collection shrank.
// Callers hold the mutex.
func (p *Pager[T]) applyResult(target int, items []T, pag models.Pagination) {
	p.items = items
	p.pagination = pag
	p.loaded = true
	p.lastErr = nil
	p.page = target
	if pag.Pages > 0 && p.page > pag.Pages {
		p.page = pag.Pages
	}
	p.schedulePreload()
}

// schedulePreload arms the debounced prefetch of page+1. Callers hold the
// mutex.
func (p *Pager[T]) schedulePreload() {
	if !p.preload {
		return
	}
	next := p.page + 1
	if next > p.pagination.Pages {
		return
	}
	if _, ok := p.preloaded[next]; ok {
		return
	}
	if p.preloadTimer != nil {
		p.preloadTimer.Stop()
	}
	gen := p.gen
	p.preloadTimer = time.AfterFunc(p.preloadDelay, func() {
		p.preloadPage(next, gen)
	})
}

// preloadPage fetches a page into the preload cache only. It never
// replaces the displayed items.
func (p *Pager[T]) preloadPage(page int, gen uint64) {
	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	items, _, err := p.fetchPage(p.root, page)
	if err != nil {
		// Speculative fetch; the next explicit navigation will retry.
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		return
	}
	p.preloaded[page] = items
}
