// Package stream carries pipeline milestones to a consumer as
// newline-delimited JSON records of the form {"event": ..., "data": {...}}.
package stream

import (
	"encoding/json"
	"fmt"

	"ideaforge/internal/types"
)

// EventType names one record kind on the wire.
type EventType string

const (
	EventStage            EventType = "stage"
	EventProgress         EventType = "progress"
	EventResearchComplete EventType = "research_complete"
	EventSectionComplete  EventType = "section_complete"
	EventComplete         EventType = "complete"
	EventError            EventType = "error"
)

// Terminal reports whether no record may follow t.
func (t EventType) Terminal() bool {
	return t == EventComplete || t == EventError
}

// Event is one wire record. Data stays raw until a consumer asks for it.
type Event struct {
	Type EventType       `json:"event"`
	Data json.RawMessage `json:"data"`
}

// StageData is a pipeline stage transition.
type StageData struct {
	Stage   types.PipelineStage `json:"stage"`
	Step    string              `json:"step,omitempty"`
	Message string              `json:"message"`
}

// ProgressData is a sub-step with no state change.
type ProgressData struct {
	Message   string `json:"message"`
	Iteration int    `json:"iteration,omitempty"`
	Sources   int    `json:"sources,omitempty"`
}

// ResearchCompleteData counts what research found.
type ResearchCompleteData struct {
	Sources     int `json:"sources"`
	Competitors int `json:"competitors"`
	CaseStudies int `json:"caseStudies"`
	Complaints  int `json:"complaints"`
}

// SectionCompleteData carries one finished section.
type SectionCompleteData struct {
	Section types.SectionName `json:"section"`
	Payload json.RawMessage   `json:"payload"`
}

// CompleteData ends a successful run. ReportID is empty when persistence failed.
type CompleteData struct {
	ReportID string `json:"reportId,omitempty"`
}

// ErrorData ends a failed run.
type ErrorData struct {
	Message string `json:"message"`
}

func newEvent(t EventType, data any) Event {
	raw, err := json.Marshal(data)
	if err != nil {
		// Only section payloads can get here, and they are plain structs.
		raw, _ = json.Marshal(ErrorData{Message: err.Error()})
		t = EventError
	}
	return Event{Type: t, Data: raw}
}

// Stage builds a stage event.
func Stage(stage types.PipelineStage, step, message string) Event {
	return newEvent(EventStage, StageData{Stage: stage, Step: step, Message: message})
}

// Progress builds a progress event.
func Progress(message string, iteration, sources int) Event {
	return newEvent(EventProgress, ProgressData{Message: message, Iteration: iteration, Sources: sources})
}

// ResearchComplete builds a research_complete event from rec.
func ResearchComplete(rec *types.ResearchRecord) Event {
	return newEvent(EventResearchComplete, ResearchCompleteData{
		Sources:     len(rec.RawSearchResults),
		Competitors: len(rec.Competitors),
		CaseStudies: len(rec.CaseStudies),
		Complaints:  len(rec.Complaints),
	})
}

// SectionComplete builds a section_complete event for p.
func SectionComplete(p types.SectionPayload) Event {
	raw, err := json.Marshal(p)
	if err != nil {
		return Error(fmt.Sprintf("encode %s: %v", p.Section(), err))
	}
	return newEvent(EventSectionComplete, SectionCompleteData{Section: p.Section(), Payload: raw})
}

// Complete builds the successful terminal event.
func Complete(reportID string) Event {
	return newEvent(EventComplete, CompleteData{ReportID: reportID})
}

// Error builds the failed terminal event.
func Error(message string) Event {
	return newEvent(EventError, ErrorData{Message: message})
}

// Decode unmarshals the event data into v.
func (e Event) Decode(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode %s event: %w", e.Type, err)
	}
	return nil
}

// Section decodes a section_complete event into its typed payload.
func (e Event) Section() (types.SectionPayload, error) {
	if e.Type != EventSectionComplete {
		return nil, fmt.Errorf("%w: %s is not %s", ErrUnexpectedEvent, e.Type, EventSectionComplete)
	}
	var d SectionCompleteData
	if err := e.Decode(&d); err != nil {
		return nil, err
	}
	return types.DecodePayload(d.Section, d.Payload)
}
