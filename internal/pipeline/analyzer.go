// Package pipeline runs one full analysis: research, scheduled section
// generation, persistence, with every milestone sent to a stream.Emitter.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"ideaforge/internal/logging"
	"ideaforge/internal/research"
	"ideaforge/internal/stream"
	"ideaforge/internal/types"
	"ideaforge/internal/usage"
)

// Researcher produces the research record for an idea.
type Researcher interface {
	Run(ctx context.Context, idea string, progress research.ProgressFunc) (*types.ResearchRecord, error)
}

// Store persists finished reports.
type Store interface {
	Save(ctx context.Context, idea string, rec *types.ResearchRecord, report *types.Report) (string, error)
}

// Options tune an Analyzer.
type Options struct {
	// Timeout bounds a whole run; zero means no bound beyond ctx.
	Timeout time.Duration
}

// Analyzer runs the analysis pipeline.
type Analyzer struct {
	research  Researcher
	scheduler *Scheduler
	store     Store
	opts      Options
}

// Result is what a successful run produced.
type Result struct {
	RunID    string
	Record   *types.ResearchRecord
	Report   *types.Report
	ReportID string
	Usage    usage.Stats
}

// NewAnalyzer creates an Analyzer. store may be nil.
func NewAnalyzer(r Researcher, gen SectionGenerator, store Store, opts Options) *Analyzer {
	return &Analyzer{research: r, scheduler: NewScheduler(gen), store: store, opts: opts}
}

// Run analyzes idea. Every run ends with exactly one terminal event on out,
// complete or error, unless out itself failed.
func (a *Analyzer) Run(ctx context.Context, idea string, out stream.Emitter) (res *Result, err error) {
	runID := uuid.NewString()
	log := logging.Get(logging.CategoryPipeline).With("run", runID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic in analysis run: %v\n%s", r, debug.Stack())
			res, err = nil, &PanicError{Value: r}
		}
		if err != nil {
			log.Warn("analysis failed: %v", err)
			if emitErr := out.Emit(stream.Error(UserMessage(err))); emitErr != nil {
				log.Debug("error event not delivered: %v", emitErr)
			}
		}
	}()

	idea = strings.TrimSpace(idea)
	if idea == "" {
		return nil, ErrEmptyIdea
	}
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	tokens := usage.NewTracker()
	ctx = usage.NewContext(ctx, tokens)

	timer := logging.StartTimer(logging.CategoryPipeline, "analysis "+runID)
	defer timer.Stop()
	log.Info("analysis started: %q", idea)

	// emit cancels the run when the consumer is gone.
	emit := func(e stream.Event) error {
		if err := out.Emit(e); err != nil {
			err = fmt.Errorf("emit %s: %w", e.Type, err)
			cancel(err)
			return err
		}
		return nil
	}

	if err := emit(stream.Stage(types.StageResearching, "", "Researching competitors, market and users")); err != nil {
		return nil, err
	}
	rec, err := a.research.Run(ctx, idea, func(p research.Progress) {
		// Progress is best effort; a failed emit already cancelled ctx.
		_ = emit(stream.Progress(p.Message, p.Iteration, p.Sources))
	})
	if err != nil {
		return nil, causeOf(ctx, err)
	}
	if err := emit(stream.ResearchComplete(rec)); err != nil {
		return nil, err
	}

	if err := emit(stream.Stage(types.StageGenerating, "", "Generating vision, market and battlefield")); err != nil {
		return nil, err
	}
	report, err := a.scheduler.Run(ctx, rec, Hooks{
		OnSection: func(p types.SectionPayload) error {
			return emit(stream.SectionComplete(p))
		},
		OnDependent: func(s types.SectionName) error {
			return emit(stream.Stage(types.StageGeneratingDependent, string(s), "Generating "+string(s)))
		},
	})
	if err != nil {
		return nil, causeOf(ctx, err)
	}

	reportID := a.persist(ctx, idea, rec, report)
	if err := emit(stream.Complete(reportID)); err != nil {
		return nil, err
	}
	spent := tokens.Stats()
	log.Info("analysis complete: report=%q sources=%d tokens=%d calls=%d",
		reportID, len(rec.RawSearchResults), spent.Total.Total, spent.Total.Calls)
	return &Result{RunID: runID, Record: rec, Report: report, ReportID: reportID, Usage: spent}, nil
}

// persist saves the report. Failure is logged and yields an empty ID.
func (a *Analyzer) persist(ctx context.Context, idea string, rec *types.ResearchRecord, report *types.Report) string {
	if a.store == nil {
		return ""
	}
	id, err := a.store.Save(context.WithoutCancel(ctx), idea, rec, report)
	if err != nil {
		logging.Get(logging.CategoryStore).Warn("failed to persist report, continuing: %v", err)
		return ""
	}
	return id
}

// causeOf prefers the cancellation cause over the generic context error.
func causeOf(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); cause != nil && errors.Is(err, context.Canceled) {
		return cause
	}
	return err
}
