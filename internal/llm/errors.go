package llm

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimeout is matched by every *TimeoutError.
	ErrTimeout = errors.New("reasoning engine call timed out")

	// ErrAPIKeyMissing is returned when a client is built without a key.
	ErrAPIKeyMissing = errors.New("API key not configured")

	// ErrNoCompletion is returned when the engine answers with no candidates.
	ErrNoCompletion = errors.New("no completion returned")
)

// TimeoutError reports a call that exceeded its per-call deadline.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: %s after %s", e.Op, ErrTimeout, e.Timeout)
}

// Is matches ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
