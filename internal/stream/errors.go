package stream

import "errors"

var (
	// ErrClosed is returned by Emit after a terminal event was written.
	ErrClosed = errors.New("stream closed")

	// ErrDuplicateSection is returned when a section completes twice in one run.
	ErrDuplicateSection = errors.New("section already completed")

	// ErrStageRegression is returned when a stage event moves backwards.
	ErrStageRegression = errors.New("stage regression")

	// ErrUnexpectedEvent is returned for unknown or misplaced events.
	ErrUnexpectedEvent = errors.New("unexpected event")
)
