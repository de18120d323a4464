// Package diff renders line diffs between two versions of report sections.
package diff

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"ideaforge/internal/types"
)

// contextLines is the number of unchanged lines shown around each change.
const contextLines = 2

// SectionDiff is the change to one section.
type SectionDiff struct {
	Section types.SectionName
	Added   int
	Removed int
	Unified string // empty when the section did not change
}

// Changed reports whether the section differs.
func (d SectionDiff) Changed() bool {
	return d.Unified != ""
}

// Section diffs one section between before and after. A section missing on
// either side diffs against an empty document.
func Section(section types.SectionName, before, after *types.Report) (SectionDiff, error) {
	a, err := render(before.Get(section))
	if err != nil {
		return SectionDiff{}, err
	}
	b, err := render(after.Get(section))
	if err != nil {
		return SectionDiff{}, err
	}

	out := SectionDiff{Section: section}
	if a == b {
		return out, nil
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: string(section) + " (before)",
		ToFile:   string(section) + " (after)",
		Context:  contextLines,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return SectionDiff{}, fmt.Errorf("diff %s: %w", section, err)
	}
	out.Unified = text
	out.Added, out.Removed = count(text)
	return out, nil
}

// Updates diffs every section in updates against current, in dependency
// order, skipping sections that came back unchanged.
func Updates(current *types.Report, updates map[types.SectionName]types.SectionPayload) ([]SectionDiff, error) {
	after := current.Clone()
	if err := after.Merge(updates); err != nil {
		return nil, err
	}
	var out []SectionDiff
	for _, s := range types.AllSections {
		if _, ok := updates[s]; !ok {
			continue
		}
		d, err := Section(s, current, after)
		if err != nil {
			return nil, err
		}
		if d.Changed() {
			out = append(out, d)
		}
	}
	return out, nil
}

func render(p types.SectionPayload) (string, error) {
	if p == nil {
		return "", nil
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render %s: %w", p.Section(), err)
	}
	return string(data) + "\n", nil
}

func count(unified string) (added, removed int) {
	for _, line := range strings.Split(unified, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}
