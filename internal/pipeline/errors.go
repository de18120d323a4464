package pipeline

import (
	"context"
	"errors"
	"fmt"

	"ideaforge/internal/llm"
	"ideaforge/internal/types"
)

// ErrEmptyIdea is returned when a run is started without an idea.
var ErrEmptyIdea = errors.New("idea is required")

// SectionError reports which section failed a run.
type SectionError struct {
	Section types.SectionName
	Err     error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("generate %s: %v", e.Section, e.Err)
}

func (e *SectionError) Unwrap() error { return e.Err }

// PanicError is a panic recovered inside a run.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// UserMessage is the short text a terminal error event carries for err.
func UserMessage(err error) string {
	var where string
	var se *SectionError
	if errors.As(err, &se) {
		where = " while generating " + string(se.Section)
	}
	var pe *PanicError
	switch {
	case errors.Is(err, ErrEmptyIdea):
		return "Please describe your idea."
	case errors.Is(err, llm.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "The analysis timed out" + where + ". Please try again."
	case errors.Is(err, types.ErrMalformedOutput):
		return "The reasoning engine returned malformed output" + where + ". Please try again."
	case errors.Is(err, context.Canceled):
		return "The analysis was cancelled."
	case errors.As(err, &pe):
		return "The analysis failed unexpectedly. Please try again."
	}
	return "The analysis failed" + where + ". Please try again."
}
