// Package graph holds the fixed dependency graph among report sections.
//
// The graph is static process-wide configuration. Only per-run completion
// state is mutable, and that lives with the caller (pipeline, edit executor).
//
//	vision ─┐
//	market ─┼─> verdict ─> advisors
//	battlefield ─┴───────────┘
package graph

import (
	"fmt"

	"ideaforge/internal/types"
)

// Graph is an immutable set of section dependencies.
type Graph struct {
	deps        map[types.SectionName][]types.SectionName
	invalidates map[types.SectionName][]types.SectionName
	order       []types.SectionName
	rank        map[types.SectionName]int
}

// Default is the report's dependency graph.
var Default = mustNew(
	map[types.SectionName][]types.SectionName{
		types.SectionVision:      nil,
		types.SectionMarket:      nil,
		types.SectionBattlefield: nil,
		types.SectionVerdict:     {types.SectionVision, types.SectionMarket, types.SectionBattlefield},
		types.SectionAdvisors:    {types.SectionVerdict, types.SectionBattlefield},
	},
	// A change to the key is stale in every listed section. Advisor personas
	// quote the product name and the competitor set; the verdict summarizes
	// all three producers. Advisors has no entry: verdict never reads it, and
	// an invalidation may only point forward in topological order.
	map[types.SectionName][]types.SectionName{
		types.SectionVision:      {types.SectionVerdict, types.SectionAdvisors},
		types.SectionMarket:      {types.SectionVerdict},
		types.SectionBattlefield: {types.SectionVerdict, types.SectionAdvisors},
	},
)

// New builds a graph and fails on unknown sections or cycles.
func New(deps, invalidates map[types.SectionName][]types.SectionName) (*Graph, error) {
	for s, ds := range deps {
		if !s.Valid() {
			return nil, fmt.Errorf("%w: %q", types.ErrUnknownSection, s)
		}
		for _, d := range ds {
			if _, ok := deps[d]; !ok {
				return nil, fmt.Errorf("%s depends on undeclared section %q", s, d)
			}
		}
	}

	// Kahn's algorithm, picking ready vertices in declaration order so the
	// result is deterministic.
	indegree := make(map[types.SectionName]int, len(deps))
	for s, ds := range deps {
		indegree[s] = len(ds)
	}
	order := make([]types.SectionName, 0, len(deps))
	used := make(map[types.SectionName]bool, len(deps))
	for len(order) < len(deps) {
		picked := types.SectionName("")
		for _, s := range types.AllSections {
			if _, declared := deps[s]; !declared || used[s] || indegree[s] != 0 {
				continue
			}
			picked = s
			break
		}
		if picked == "" {
			return nil, fmt.Errorf("dependency cycle among sections")
		}
		used[picked] = true
		order = append(order, picked)
		for s, ds := range deps {
			for _, d := range ds {
				if d == picked {
					indegree[s]--
				}
			}
		}
	}

	rank := make(map[types.SectionName]int, len(order))
	for i, s := range order {
		rank[s] = i
	}
	for s, ds := range invalidates {
		for _, d := range ds {
			if rank[d] <= rank[s] {
				return nil, fmt.Errorf("%s cannot invalidate %s which runs before it", s, d)
			}
		}
	}

	return &Graph{deps: deps, invalidates: invalidates, order: order, rank: rank}, nil
}

func mustNew(deps, invalidates map[types.SectionName][]types.SectionName) *Graph {
	g, err := New(deps, invalidates)
	if err != nil {
		panic(err)
	}
	return g
}

// DependsOn returns the direct dependencies of s.
func (g *Graph) DependsOn(s types.SectionName) []types.SectionName {
	return append([]types.SectionName(nil), g.deps[s]...)
}

// Independent returns the sections without dependencies, in topological order.
func (g *Graph) Independent() []types.SectionName {
	var out []types.SectionName
	for _, s := range g.order {
		if len(g.deps[s]) == 0 {
			out = append(out, s)
		}
	}
	return out
}

// Topological returns every section in dependency order.
func (g *Graph) Topological() []types.SectionName {
	return append([]types.SectionName(nil), g.order...)
}

// Order sorts an arbitrary subset into dependency order, dropping duplicates.
// Unknown names are an error.
func (g *Graph) Order(sections []types.SectionName) ([]types.SectionName, error) {
	want := make(map[types.SectionName]bool, len(sections))
	for _, s := range sections {
		if _, ok := g.rank[s]; !ok {
			return nil, fmt.Errorf("%w: %q", types.ErrUnknownSection, s)
		}
		want[s] = true
	}
	out := make([]types.SectionName, 0, len(want))
	for _, s := range g.order {
		if want[s] {
			out = append(out, s)
		}
	}
	return out, nil
}

// Invalidated returns the sections made stale by a change to s.
func (g *Graph) Invalidated(s types.SectionName) []types.SectionName {
	return append([]types.SectionName(nil), g.invalidates[s]...)
}

// Closure adds every section transitively invalidated by the input and
// returns the result in dependency order. The second value lists what had to
// be added.
func (g *Graph) Closure(sections []types.SectionName) ([]types.SectionName, []types.SectionName, error) {
	ordered, err := g.Order(sections)
	if err != nil {
		return nil, nil, err
	}
	in := make(map[types.SectionName]bool, len(ordered))
	for _, s := range ordered {
		in[s] = true
	}
	full := make(map[types.SectionName]bool, len(g.order))
	queue := append([]types.SectionName(nil), ordered...)
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if full[s] {
			continue
		}
		full[s] = true
		queue = append(queue, g.invalidates[s]...)
	}

	var out, added []types.SectionName
	for _, s := range g.order {
		if !full[s] {
			continue
		}
		out = append(out, s)
		if !in[s] {
			added = append(added, s)
		}
	}
	return out, added, nil
}

// Before reports whether a must run strictly before b.
func (g *Graph) Before(a, b types.SectionName) bool {
	return g.rank[a] < g.rank[b]
}
