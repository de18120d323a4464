package edit

import (
	"errors"
	"fmt"
	"strings"

	"ideaforge/internal/types"
)

// ErrEmptyMessage is returned for a blank follow-up message.
var ErrEmptyMessage = errors.New("message is required")

// PartialError reports a regeneration that stopped part-way. Updates holds
// the sections regenerated before the failure; they are valid and may be
// merged. Remaining lists the failed section and everything after it.
type PartialError struct {
	Updates   map[types.SectionName]types.SectionPayload
	Failed    types.SectionName
	Remaining []types.SectionName
	Err       error
}

func (e *PartialError) Error() string {
	names := make([]string, len(e.Remaining))
	for i, s := range e.Remaining {
		names[i] = string(s)
	}
	return fmt.Sprintf("regenerate %s: %v (not regenerated: %s)", e.Failed, e.Err, strings.Join(names, ", "))
}

func (e *PartialError) Unwrap() error { return e.Err }
