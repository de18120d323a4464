package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaforge/internal/types"
)

func TestTimeoutClient_DistinctErrorKind(t *testing.T) {
	slow := &mockLLMClient{jsonFunc: func(ctx context.Context, _, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	c := NewTimeoutClient(slow, 20*time.Millisecond)

	_, err := c.CompleteJSON(context.Background(), "s", "u")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, types.ErrMalformedOutput)

	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "CompleteJSON", te.Op)
	assert.Equal(t, 20*time.Millisecond, te.Timeout)
}

func TestTimeoutClient_InnerIgnoresContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	stuck := &mockLLMClient{completeFunc: func(context.Context, string, string) (string, error) {
		<-release
		return "late", nil
	}}
	c := NewTimeoutClient(stuck, 20*time.Millisecond)

	start := time.Now()
	_, err := c.CompleteWithSystem(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestTimeoutClient_ParentCancelIsNotTimeout(t *testing.T) {
	slow := &mockLLMClient{toolsFunc: func(ctx context.Context, _ string, _ []types.Message, _ []types.ToolDefinition) (*types.LLMToolResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	c := NewTimeoutClient(slow, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := c.CompleteWithTools(ctx, "s", []types.Message{{Role: types.RoleUser, Text: "hi"}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestTimeoutClient_PassThrough(t *testing.T) {
	boom := errors.New("boom")
	c := NewTimeoutClient(&mockLLMClient{jsonFunc: func(context.Context, string, string) (string, error) {
		return "", boom
	}}, time.Second)
	_, err := c.CompleteJSON(context.Background(), "s", "u")
	assert.ErrorIs(t, err, boom)

	c = NewTimeoutClient(&mockLLMClient{}, 0)
	out, err := c.CompleteWithSystem(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}
