package stream

import (
	"fmt"

	"ideaforge/internal/types"
)

// State is what a consumer knows after folding a run's events.
type State struct {
	Stage        types.PipelineStage   `json:"stage"`
	Step         string                `json:"step,omitempty"`
	Message      string                `json:"message,omitempty"`
	LastProgress string                `json:"lastProgress,omitempty"`
	Research     *ResearchCompleteData `json:"research,omitempty"`
	Report       *types.Report         `json:"report"`
	ReportID     string                `json:"reportId,omitempty"`
	Error        string                `json:"error,omitempty"`
}

// Done reports whether the run ended.
func (s State) Done() bool {
	return s.Stage.Terminal()
}

// ApplyEvent returns the state after e. s is never modified; when e does
// not fit s the error is returned with s unchanged.
func ApplyEvent(s State, e Event) (State, error) {
	if s.Done() {
		return s, fmt.Errorf("%w: %s after %s", ErrClosed, e.Type, s.Stage)
	}
	next := s
	next.Report = s.Report.Clone()

	switch e.Type {
	case EventStage:
		var d StageData
		if err := e.Decode(&d); err != nil {
			return s, err
		}
		if !s.Stage.CanAdvanceTo(d.Stage) || d.Stage.Terminal() {
			return s, fmt.Errorf("%w: %s -> %s", ErrStageRegression, s.Stage, d.Stage)
		}
		next.Stage, next.Step, next.Message = d.Stage, d.Step, d.Message

	case EventProgress:
		var d ProgressData
		if err := e.Decode(&d); err != nil {
			return s, err
		}
		next.LastProgress = d.Message

	case EventResearchComplete:
		var d ResearchCompleteData
		if err := e.Decode(&d); err != nil {
			return s, err
		}
		next.Research = &d

	case EventSectionComplete:
		p, err := e.Section()
		if err != nil {
			return s, err
		}
		if s.Report.Has(p.Section()) {
			return s, fmt.Errorf("%w: %s", ErrDuplicateSection, p.Section())
		}
		if err := next.Report.Set(p); err != nil {
			return s, err
		}

	case EventComplete:
		var d CompleteData
		if err := e.Decode(&d); err != nil {
			return s, err
		}
		next.Stage = types.StageComplete
		next.Step = ""
		next.ReportID = d.ReportID

	case EventError:
		var d ErrorData
		if err := e.Decode(&d); err != nil {
			return s, err
		}
		next.Stage = types.StageError
		next.Error = d.Message

	default:
		return s, fmt.Errorf("%w: %q", ErrUnexpectedEvent, e.Type)
	}
	return next, nil
}

// Fold applies events in order from the zero State.
func Fold(events []Event) (State, error) {
	var s State
	for _, e := range events {
		var err error
		if s, err = ApplyEvent(s, e); err != nil {
			return s, err
		}
	}
	return s, nil
}
