package edit

import (
	"context"
	"fmt"

	"ideaforge/internal/graph"
	"ideaforge/internal/logging"
	"ideaforge/internal/types"
)

// Regenerator revises one section of a report.
type Regenerator interface {
	Regenerate(ctx context.Context, section types.SectionName, current *types.Report, rec *types.ResearchRecord, instruction string) (types.SectionPayload, error)
}

// Executor regenerates sections one at a time in dependency order, each
// seeing the sections regenerated before it.
type Executor struct {
	regen Regenerator
	graph *graph.Graph
}

// NewExecutor creates an Executor over graph.Default.
func NewExecutor(regen Regenerator) *Executor {
	return &Executor{regen: regen, graph: graph.Default}
}

// Execute regenerates sections of current. current is not modified; the
// result maps each regenerated section to its new payload. On failure it
// returns a *PartialError holding what was already produced.
func (e *Executor) Execute(ctx context.Context, sections []types.SectionName, current *types.Report, rec *types.ResearchRecord, instruction string) (map[types.SectionName]types.SectionPayload, error) {
	ordered, err := e.graph.Order(sections)
	if err != nil {
		return nil, err
	}
	if len(ordered) == 0 {
		return map[types.SectionName]types.SectionPayload{}, nil
	}

	working := current.Clone()
	updates := make(map[types.SectionName]types.SectionPayload, len(ordered))
	for i, section := range ordered {
		if err := ctx.Err(); err != nil {
			return updates, &PartialError{Updates: updates, Failed: section, Remaining: ordered[i:], Err: err}
		}
		logging.EditDebug("regenerating %s (%d/%d)", section, i+1, len(ordered))
		p, err := e.regen.Regenerate(ctx, section, working.Clone(), rec, instruction)
		if err == nil && p != nil && p.Section() != section {
			err = fmt.Errorf("regenerator returned %s payload", p.Section())
		}
		if err == nil && p == nil {
			err = fmt.Errorf("regenerator returned no payload")
		}
		if err != nil {
			logging.Get(logging.CategoryEdit).Warn("regeneration stopped at %s: %v", section, err)
			return updates, &PartialError{Updates: updates, Failed: section, Remaining: ordered[i:], Err: err}
		}
		if err := working.Set(p); err != nil {
			return updates, &PartialError{Updates: updates, Failed: section, Remaining: ordered[i:], Err: err}
		}
		updates[section] = p
	}
	logging.Edit("regenerated %v", ordered)
	return updates, nil
}
