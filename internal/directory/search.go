// Package directory serves the officer directory: cached search against
// the upstream list endpoint, plus a debouncer for callers that forward
// keystrokes.
package directory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/worldofdc/portal-gateway/internal/models"
	"github.com/worldofdc/portal-gateway/pkg/metrics"
)

// Lister is the slice of the upstream client the directory needs.
type Lister interface {
	ListOfficers(ctx context.Context, search string) ([]models.Officer, error)
}

// Cached wraps a Lister with a short-lived query cache. The directory
// changes rarely and the same prefixes get typed constantly, so even a
// small TTL absorbs most of the load.
type Cached struct {
	lister Lister
	cache  *cache.Cache
	ttl    time.Duration
}

// NewCached builds a caching directory with the given entry TTL.
func NewCached(lister Lister, ttl time.Duration) *Cached {
	return &Cached{
		lister: lister,
		cache:  cache.New(ttl, 2*ttl),
		ttl:    ttl,
	}
}

// Search runs an officer search, serving repeats from cache. Queries are
// normalized so "Raj" and " raj " share an entry.
func (d *Cached) Search(ctx context.Context, query string) ([]models.Officer, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if v, ok := d.cache.Get(key); ok {
		metrics.DirectoryCacheHits.WithLabelValues("hit").Inc()
		return v.([]models.Officer), nil
	}
	metrics.DirectoryCacheHits.WithLabelValues("miss").Inc()

	officers, err := d.lister.ListOfficers(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}
	d.cache.Set(key, officers, d.ttl)
	return officers, nil
}

// Result is one delivered search outcome, tagged with the query that
// produced it.
type Result struct {
	Query    string
	Officers []models.Officer
	Err      error
}

// Searcher matches Cached.Search.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.Officer, error)
}

// Debouncer coalesces a stream of query updates into searches that fire
// only after the input has been quiet for the configured delay. Results
// that resolve after the query has moved on are dropped, so deliveries
// never go backwards.
type Debouncer struct {
	mu      sync.Mutex
	search  Searcher
	delay   time.Duration
	deliver func(Result)

	timer  *time.Timer
	latest string
}

// NewDebouncer builds a debouncer that delivers outcomes to deliver.
// Deliveries happen on the search goroutine; the callback must be safe
// for that.
func NewDebouncer(search Searcher, delay time.Duration, deliver func(Result)) *Debouncer {
	return &Debouncer{search: search, delay: delay, deliver: deliver}
}

// Update records a new query. Any pending unsent search is cancelled and
// the quiet-period clock restarts.
func (d *Debouncer) Update(ctx context.Context, query string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.latest = query
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.run(ctx, query)
	})
}

// Stop cancels any pending search. In-flight searches finish but their
// results are only delivered if the query is still current.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) run(ctx context.Context, query string) {
	if !d.current(query) {
		return
	}
	officers, err := d.search.Search(ctx, query)

	// The input may have moved on while the search was in flight; a
	// stale result must not overwrite a newer one.
	if !d.current(query) {
		metrics.DirectoryCacheHits.WithLabelValues("stale_drop").Inc()
		return
	}
	d.deliver(Result{Query: query, Officers: officers, Err: err})
}

func (d *Debouncer) current(query string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest == query
}
