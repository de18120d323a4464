package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"ideaforge/internal/logging"
	"ideaforge/internal/types"
)

// Emitter accepts events in order.
type Emitter interface {
	Emit(Event) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Event) error

func (f EmitterFunc) Emit(e Event) error { return f(e) }

type flusher interface {
	Flush()
}

// Writer frames events as NDJSON on w and flushes after each record when
// w supports it. It is safe for concurrent use; records never interleave.
//
// A Writer enforces the ordering rules of one run: stages only move
// forward, each section completes once, and exactly one terminal event is
// written. After a write error it drops everything.
type Writer struct {
	mu       sync.Mutex
	w        io.Writer
	enc      *json.Encoder
	stage    types.PipelineStage
	sections map[types.SectionName]bool
	closed   bool
	err      error
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, enc: json.NewEncoder(w), sections: make(map[types.SectionName]bool)}
}

// Emit writes e.
func (w *Writer) Emit(e Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return w.err
	}
	if w.closed {
		return ErrClosed
	}
	commit, err := w.check(e)
	if err != nil {
		return err
	}

	if err := w.enc.Encode(e); err != nil {
		w.err = fmt.Errorf("write %s event: %w", e.Type, err)
		logging.Get(logging.CategoryStream).Warn("consumer gone, dropping further events: %v", err)
		return w.err
	}
	if f, ok := w.w.(flusher); ok {
		f.Flush()
	}
	commit()
	if e.Type.Terminal() {
		w.closed = true
	}
	logging.StreamDebug("emitted %s", e.Type)
	return nil
}

// check validates e against the run so far. The returned commit records e
// and must only be called once e is written.
func (w *Writer) check(e Event) (commit func(), err error) {
	commit = func() {}
	switch e.Type {
	case EventStage:
		var d StageData
		if err := e.Decode(&d); err != nil {
			return nil, err
		}
		if !w.stage.CanAdvanceTo(d.Stage) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrStageRegression, w.stage, d.Stage)
		}
		commit = func() { w.stage = d.Stage }
	case EventSectionComplete:
		var d SectionCompleteData
		if err := e.Decode(&d); err != nil {
			return nil, err
		}
		if w.sections[d.Section] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSection, d.Section)
		}
		commit = func() { w.sections[d.Section] = true }
	case EventProgress, EventResearchComplete, EventComplete, EventError:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnexpectedEvent, e.Type)
	}
	return commit, nil
}

// Fail writes a terminal error event unless the stream already ended.
func (w *Writer) Fail(message string) {
	if err := w.Emit(Error(message)); err != nil {
		logging.StreamDebug("error event not delivered: %v", err)
	}
}

// Closed reports whether a terminal event was written or the consumer is gone.
func (w *Writer) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed || w.err != nil
}

// Completed lists the sections completed so far.
func (w *Writer) Completed() []types.SectionName {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []types.SectionName
	for _, s := range types.AllSections {
		if w.sections[s] {
			out = append(out, s)
		}
	}
	return out
}
