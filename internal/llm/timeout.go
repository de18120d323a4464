package llm

import (
	"context"
	"errors"
	"time"

	"ideaforge/internal/logging"
	"ideaforge/internal/types"
)

// TimeoutClient bounds every call with a per-call deadline and reports
// expiry as *TimeoutError. The bound holds even when the wrapped client
// ignores its context: the call is abandoned and left to finish on its own.
type TimeoutClient struct {
	inner   types.LLMClient
	timeout time.Duration
}

var _ types.LLMClient = (*TimeoutClient)(nil)

// NewTimeoutClient wraps inner. A non-positive timeout disables the bound.
func NewTimeoutClient(inner types.LLMClient, timeout time.Duration) *TimeoutClient {
	return &TimeoutClient{inner: inner, timeout: timeout}
}

type result[T any] struct {
	val T
	err error
}

func withTimeout[T any](ctx context.Context, op string, d time.Duration, call func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return call(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan result[T], 1)
	go func() {
		v, err := call(callCtx)
		done <- result[T]{v, err}
	}()

	var zero T
	select {
	case r := <-done:
		if r.err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			logging.Get(logging.CategoryAPI).Warn("%s timed out after %v", op, d)
			return zero, &TimeoutError{Op: op, Timeout: d}
		}
		return r.val, r.err
	case <-callCtx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		logging.Get(logging.CategoryAPI).Warn("%s timed out after %v", op, d)
		return zero, &TimeoutError{Op: op, Timeout: d}
	}
}

func (c *TimeoutClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return withTimeout(ctx, "CompleteWithSystem", c.timeout, func(ctx context.Context) (string, error) {
		return c.inner.CompleteWithSystem(ctx, systemPrompt, userPrompt)
	})
}

func (c *TimeoutClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return withTimeout(ctx, "CompleteJSON", c.timeout, func(ctx context.Context) (string, error) {
		return c.inner.CompleteJSON(ctx, systemPrompt, userPrompt)
	})
}

func (c *TimeoutClient) CompleteWithTools(ctx context.Context, systemPrompt string, history []types.Message, tools []types.ToolDefinition) (*types.LLMToolResponse, error) {
	return withTimeout(ctx, "CompleteWithTools", c.timeout, func(ctx context.Context) (*types.LLMToolResponse, error) {
		return c.inner.CompleteWithTools(ctx, systemPrompt, history, tools)
	})
}
