package edit

import (
	"fmt"
	"sort"
	"strings"

	"ideaforge/internal/types"
)

// FieldTable maps each section to the report fields it owns. It is the
// declared source for prompting the planner and for resolving a focused
// block label to its section.
var FieldTable = map[types.SectionName][]string{
	types.SectionVision:      {"productName", "tagline", "problemStatement", "targetAudience", "valueProposition", "keyFeatures"},
	types.SectionMarket:      {"tam", "sam", "som", "growthRate", "trends", "segments", "demographics"},
	types.SectionBattlefield: {"competitors", "marketGaps", "differentiators", "complaints"},
	types.SectionVerdict:     {"score", "decision", "summary", "strengths", "risks", "nextSteps", "caseStudyLessons"},
	types.SectionAdvisors:    {"advisors"},
}

// SectionForField returns the section owning field. Matching ignores case,
// spaces and underscores, so "Product Name" finds vision.
func SectionForField(field string) (types.SectionName, bool) {
	want := normalizeField(field)
	if want == "" {
		return "", false
	}
	for _, s := range types.AllSections {
		for _, f := range FieldTable[s] {
			if normalizeField(f) == want {
				return s, true
			}
		}
	}
	return "", false
}

func normalizeField(s string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

// fieldTableText renders the table for a prompt.
func fieldTableText() string {
	var sb strings.Builder
	for _, s := range types.AllSections {
		fields := append([]string(nil), FieldTable[s]...)
		sort.Strings(fields)
		fmt.Fprintf(&sb, "- %s: %s\n", s, strings.Join(fields, ", "))
	}
	return sb.String()
}
