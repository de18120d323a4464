package search

import (
	"context"
	"fmt"
	"time"

	"ideaforge/internal/logging"
	"ideaforge/internal/types"
)

// Backend runs one raw web query.
type Backend interface {
	Query(ctx context.Context, query string, maxResults int) ([]types.SearchHit, error)
}

// Options configures a Searcher.
type Options struct {
	MaxResults int
	Timeout    time.Duration // per query; zero means none
	CacheTTL   time.Duration // zero disables caching
	CacheSize  int
}

// Searcher implements search(topic, query) over a Backend.
type Searcher struct {
	backend Backend
	opts    Options
	cache   *Cache
}

// New creates a Searcher.
func New(backend Backend, opts Options) *Searcher {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 8
	}
	s := &Searcher{backend: backend, opts: opts}
	if opts.CacheTTL > 0 {
		size := opts.CacheSize
		if size <= 0 {
			size = 500
		}
		s.cache = NewCache(size, opts.CacheTTL)
	}
	return s
}

// Search augments query for topic and dispatches it. Identical searches
// within the cache TTL are answered from memory.
func (s *Searcher) Search(ctx context.Context, topic Topic, query string) ([]types.SearchHit, error) {
	if !topic.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}
	q := topic.Augment(query)

	if s.cache != nil {
		if hits, ok := s.cache.Get(q); ok {
			logging.SearchDebug("cache hit: topic=%s query=%q hits=%d", topic, q, len(hits))
			return hits, nil
		}
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	timer := logging.StartTimer(logging.CategorySearch, "search "+string(topic))
	hits, err := s.backend.Query(ctx, q, s.opts.MaxResults)
	timer.StopWithThreshold(5 * time.Second)
	if err != nil {
		logging.Get(logging.CategorySearch).Warn("search failed: topic=%s query=%q: %v", topic, q, err)
		return nil, fmt.Errorf("search %s: %w", topic, err)
	}
	logging.Search("search completed: topic=%s query=%q hits=%d", topic, q, len(hits))

	if s.cache != nil {
		s.cache.Set(q, hits)
	}
	return hits, nil
}
