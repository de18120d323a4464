package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"ideaforge/internal/types"
)

// LimitedClient caps the number of in-flight calls across every caller that
// shares it.
type LimitedClient struct {
	inner types.LLMClient
	slots *semaphore.Weighted
}

var _ types.LLMClient = (*LimitedClient)(nil)

// NewLimitedClient wraps inner with max concurrent slots. max <= 0 means 1.
func NewLimitedClient(inner types.LLMClient, max int) *LimitedClient {
	if max <= 0 {
		max = 1
	}
	return &LimitedClient{inner: inner, slots: semaphore.NewWeighted(int64(max))}
}

func (c *LimitedClient) acquire(ctx context.Context) error {
	if err := c.slots.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("failed to acquire API slot: %w", err)
	}
	return nil
}

func (c *LimitedClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := c.acquire(ctx); err != nil {
		return "", err
	}
	defer c.slots.Release(1)
	return c.inner.CompleteWithSystem(ctx, systemPrompt, userPrompt)
}

func (c *LimitedClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := c.acquire(ctx); err != nil {
		return "", err
	}
	defer c.slots.Release(1)
	return c.inner.CompleteJSON(ctx, systemPrompt, userPrompt)
}

func (c *LimitedClient) CompleteWithTools(ctx context.Context, systemPrompt string, history []types.Message, tools []types.ToolDefinition) (*types.LLMToolResponse, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.slots.Release(1)
	return c.inner.CompleteWithTools(ctx, systemPrompt, history, tools)
}

// StackOptions configures Stack.
type StackOptions struct {
	MaxConcurrent int
	PerCall       time.Duration
	Sink          TraceSink
	Model         string // recorded on traces
}

// Stack builds the client chain used by the CLI and server. Each provider
// call is bounded by PerCall; waiting for a slot is not.
func Stack(base types.LLMClient, opts StackOptions) types.LLMClient {
	var c types.LLMClient = NewTimeoutClient(base, opts.PerCall)
	if opts.MaxConcurrent > 0 {
		c = NewLimitedClient(c, opts.MaxConcurrent)
	}
	return NewTracingClient(c, opts.Sink).WithModel(opts.Model)
}
