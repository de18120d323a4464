// Package types provides shared type definitions used across ideaforge packages.
// This package exists to break import cycles between research, sections, pipeline and edit.
// Types in this package should be foundational data structures with no complex dependencies.
package types

import (
	"fmt"
	"strings"
)

// =============================================================================
// SECTIONS
// =============================================================================

// SectionName identifies one of the five report components.
// The set doubles as the vertex set of the generation dependency graph.
type SectionName string

const (
	SectionVision      SectionName = "vision"
	SectionMarket      SectionName = "market"
	SectionBattlefield SectionName = "battlefield"
	SectionVerdict     SectionName = "verdict"
	SectionAdvisors    SectionName = "advisors"
)

// AllSections lists every section in declaration order.
var AllSections = []SectionName{
	SectionVision,
	SectionMarket,
	SectionBattlefield,
	SectionVerdict,
	SectionAdvisors,
}

// Valid reports whether s is a known section.
func (s SectionName) Valid() bool {
	switch s {
	case SectionVision, SectionMarket, SectionBattlefield, SectionVerdict, SectionAdvisors:
		return true
	}
	return false
}

// ParseSectionName normalizes user or engine supplied text into a SectionName.
func ParseSectionName(raw string) (SectionName, error) {
	s := SectionName(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, raw)
	}
	return s, nil
}

// =============================================================================
// PIPELINE STAGES
// =============================================================================

// PipelineStage is the coarse state of one analysis run.
type PipelineStage string

const (
	StageResearching         PipelineStage = "researching"
	StageGenerating          PipelineStage = "generating"
	StageGeneratingDependent PipelineStage = "generating_dependent"
	StageComplete            PipelineStage = "complete"
	StageError               PipelineStage = "error"
)

var stageRank = map[PipelineStage]int{
	StageResearching:         1,
	StageGenerating:          2,
	StageGeneratingDependent: 3,
	StageComplete:            4,
}

// Terminal reports whether no further transition is allowed from s.
func (s PipelineStage) Terminal() bool {
	return s == StageComplete || s == StageError
}

// CanAdvanceTo reports whether moving from s to next keeps stages monotonic.
// Error is reachable from any non-terminal stage; terminal stages accept nothing.
// Repeating the current stage is allowed (generating_dependent covers two steps).
func (s PipelineStage) CanAdvanceTo(next PipelineStage) bool {
	if s.Terminal() {
		return false
	}
	if next == StageError {
		return true
	}
	if s == "" {
		return stageRank[next] > 0
	}
	return stageRank[next] >= stageRank[s]
}
