package fetchers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ideaforge/internal/logging"
	"ideaforge/internal/types"
)

// Result is the merged output of every fetcher. Data is nil when no fetcher
// produced anything.
type Result struct {
	Data   *types.RealMarketData
	Hits   []types.SearchHit
	Errors map[string]error
}

// Gatherer runs fetchers concurrently. A failing fetcher contributes
// nothing; it never aborts the others.
type Gatherer struct {
	fetchers []Fetcher
	timeout  time.Duration
}

// NewGatherer creates a Gatherer. timeout bounds each fetcher; zero means
// only the caller's context applies.
func NewGatherer(timeout time.Duration, fetchers ...Fetcher) *Gatherer {
	return &Gatherer{fetchers: fetchers, timeout: timeout}
}

// Len returns the number of configured fetchers.
func (g *Gatherer) Len() int {
	if g == nil {
		return 0
	}
	return len(g.fetchers)
}

// Gather runs every fetcher for keyword and merges their contributions in
// fetcher order.
func (g *Gatherer) Gather(ctx context.Context, keyword string) *Result {
	res := &Result{Errors: make(map[string]error)}
	if g.Len() == 0 {
		return res
	}
	start := time.Now()

	var mu sync.Mutex
	addError := func(name string, err error) {
		mu.Lock()
		res.Errors[name] = err
		mu.Unlock()
	}

	contributions := make([]*Contribution, len(g.fetchers))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, f := range g.fetchers {
		eg.Go(func() error {
			c, err := g.run(egCtx, f, keyword)
			if err != nil {
				logging.Get(logging.CategoryFetch).Warn("fetcher %s failed: %v", f.Name(), err)
				addError(f.Name(), err)
				return nil
			}
			contributions[i] = c
			return nil
		})
	}
	_ = eg.Wait()

	data := &types.RealMarketData{}
	for _, c := range contributions {
		if c == nil {
			continue
		}
		if c.Trends != nil {
			data.Trends = c.Trends
		}
		if c.Jobs != nil {
			data.Jobs = c.Jobs
		}
		if c.Workforce != nil {
			data.Workforce = c.Workforce
		}
		res.Hits = append(res.Hits, c.Hits...)
	}
	if !data.Empty() {
		res.Data = data
	}

	logging.Fetch("auxiliary fetch finished in %v: %d fetchers, %d failed, %d hits",
		time.Since(start), len(g.fetchers), len(res.Errors), len(res.Hits))
	return res
}

// run calls one fetcher under the per-fetcher timeout, converting a panic
// into an error.
func (g *Gatherer) run(ctx context.Context, f Fetcher, keyword string) (c *Contribution, err error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return f.Fetch(ctx, keyword)
}
