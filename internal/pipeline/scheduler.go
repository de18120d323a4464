package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"ideaforge/internal/graph"
	"ideaforge/internal/logging"
	"ideaforge/internal/types"
)

// SectionGenerator produces one section from the research record and the
// sections it depends on.
type SectionGenerator interface {
	Generate(ctx context.Context, section types.SectionName, rec *types.ResearchRecord, prior *types.Report) (types.SectionPayload, error)
}

// Hooks observe a schedule. Calls are never concurrent. A hook error aborts
// the schedule.
type Hooks struct {
	// OnSection runs once per finished section, in completion order.
	OnSection func(types.SectionPayload) error

	// OnDependent runs before each dependent section starts.
	OnDependent func(types.SectionName) error
}

// Scheduler generates a full report following the dependency graph:
// independent sections concurrently behind one barrier, then each dependent
// section in topological order.
type Scheduler struct {
	gen   SectionGenerator
	graph *graph.Graph
}

// NewScheduler creates a Scheduler over graph.Default.
func NewScheduler(gen SectionGenerator) *Scheduler {
	return &Scheduler{gen: gen, graph: graph.Default}
}

// Run generates every section. The returned report holds whatever finished
// before an error.
func (s *Scheduler) Run(ctx context.Context, rec *types.ResearchRecord, hooks Hooks) (*types.Report, error) {
	report := &types.Report{}
	var mu sync.Mutex

	independent := s.graph.Independent()
	eg, gctx := errgroup.WithContext(ctx)
	for _, section := range independent {
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &SectionError{Section: section, Err: &PanicError{Value: r}}
				}
			}()
			p, err := s.gen.Generate(gctx, section, rec, nil)
			if err != nil {
				return &SectionError{Section: section, Err: err}
			}

			mu.Lock()
			defer mu.Unlock()
			// A sibling already failed; the run is over.
			if gctx.Err() != nil {
				return nil
			}
			if err := report.Set(p); err != nil {
				return &SectionError{Section: section, Err: err}
			}
			logging.PipelineDebug("section %s ready", section)
			if hooks.OnSection != nil {
				if err := hooks.OnSection(p); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	for _, section := range s.graph.Topological() {
		if report.Has(section) {
			continue
		}
		if hooks.OnDependent != nil {
			if err := hooks.OnDependent(section); err != nil {
				return report, err
			}
		}
		for _, dep := range s.graph.DependsOn(section) {
			if !report.Has(dep) {
				return report, &SectionError{Section: section, Err: fmt.Errorf("%s: %w", dep, types.ErrSectionMissing)}
			}
		}
		p, err := s.gen.Generate(ctx, section, rec, report.Clone())
		if err != nil {
			return report, &SectionError{Section: section, Err: err}
		}
		if err := report.Set(p); err != nil {
			return report, &SectionError{Section: section, Err: err}
		}
		logging.PipelineDebug("section %s ready", section)
		if hooks.OnSection != nil {
			if err := hooks.OnSection(p); err != nil {
				return report, err
			}
		}
	}
	return report, nil
}
