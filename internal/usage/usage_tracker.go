// Package usage accounts reasoning engine tokens per run.
package usage

import (
	"context"
	"strings"
	"sync"
)

type contextKey struct{}

// Tracker aggregates token usage. A nil *Tracker ignores every call.
type Tracker struct {
	mu    sync.Mutex
	stats Stats
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{stats: Stats{
		ByModel: make(map[string]Counts),
		ByLabel: make(map[string]Counts),
		ByStep:  make(map[string]Counts),
	}}
}

// Track records one call. label is the caller's step label and may be empty.
func (t *Tracker) Track(model, label string, input, output int) {
	if t == nil {
		return
	}
	if label == "" {
		label = "unlabeled"
	}
	step, _, _ := strings.Cut(label, ":")

	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.Total.Add(input, output)
	addToMap(t.stats.ByModel, model, input, output)
	addToMap(t.stats.ByLabel, label, input, output)
	addToMap(t.stats.ByStep, step, input, output)
}

// Stats returns a copy of the aggregated counts.
func (t *Tracker) Stats() Stats {
	if t == nil {
		return Stats{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{
		Total:   t.stats.Total,
		ByModel: copyCounts(t.stats.ByModel),
		ByLabel: copyCounts(t.stats.ByLabel),
		ByStep:  copyCounts(t.stats.ByStep),
	}
}

func copyCounts(src map[string]Counts) map[string]Counts {
	dst := make(map[string]Counts, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func addToMap(m map[string]Counts, key string, input, output int) {
	entry := m[key]
	entry.Add(input, output)
	m[key] = entry
}

// NewContext returns a context carrying t.
func NewContext(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext returns the tracker attached by NewContext, or nil.
func FromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(contextKey{}).(*Tracker)
	return t
}
