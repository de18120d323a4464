package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaforge/internal/types"
)

func TestTracingClient_RecordsTraces(t *testing.T) {
	sink := &memorySink{}
	inner := &mockLLMClient{
		toolsFunc: func(context.Context, string, []types.Message, []types.ToolDefinition) (*types.LLMToolResponse, error) {
			return &types.LLMToolResponse{ToolCalls: []types.ToolCall{{ID: "1", Name: "search_competitors"}}}, nil
		},
		jsonFunc: func(context.Context, string, string) (string, error) {
			return "", errors.New("quota")
		},
	}
	tc := NewTracingClient(inner, sink)
	ctx := WithLabel(context.Background(), "research")

	_, err := tc.CompleteWithTools(ctx, "sys", []types.Message{{Role: types.RoleUser, Text: "idea"}}, nil)
	require.NoError(t, err)
	_, err = tc.CompleteJSON(WithLabel(ctx, "section:vision"), "sys", "user")
	require.Error(t, err)

	traces := sink.all()
	require.Len(t, traces, 2)
	assert.Equal(t, "research", traces[0].Label)
	assert.Equal(t, "idea", traces[0].UserPrompt)
	assert.Equal(t, 1, traces[0].ToolCalls)
	assert.True(t, traces[0].Success)
	assert.NotEmpty(t, traces[0].ID)

	assert.Equal(t, "section:vision", traces[1].Label)
	assert.False(t, traces[1].Success)
	assert.Equal(t, "quota", traces[1].ErrorMessage)
}

func TestTracingClient_NilSink(t *testing.T) {
	tc := NewTracingClient(&mockLLMClient{}, nil)
	out, err := tc.CompleteWithSystem(context.Background(), "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestLimitedClient_CapsConcurrency(t *testing.T) {
	var inFlight, peak int32
	inner := &mockLLMClient{jsonFunc: func(context.Context, string, string) (string, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return "{}", nil
	}}
	c := NewLimitedClient(inner, 2)

	done := make(chan struct{})
	for i := 0; i < 6; i++ {
		go func() {
			_, _ = c.CompleteJSON(context.Background(), "", "")
			done <- struct{}{}
		}()
	}
	for i := 0; i < 6; i++ {
		<-done
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestLimitedClient_AcquireHonorsContext(t *testing.T) {
	block := make(chan struct{})
	inner := &mockLLMClient{completeFunc: func(context.Context, string, string) (string, error) {
		<-block
		return "", nil
	}}
	c := NewLimitedClient(inner, 1)
	go func() { _, _ = c.CompleteWithSystem(context.Background(), "", "") }()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.CompleteWithSystem(ctx, "", "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(block)
}

func TestStack_TimeoutSurvivesWrapping(t *testing.T) {
	sink := &memorySink{}
	slow := &mockLLMClient{jsonFunc: func(ctx context.Context, _, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	c := Stack(slow, StackOptions{MaxConcurrent: 2, PerCall: 10 * time.Millisecond, Sink: sink})
	_, err := c.CompleteJSON(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrTimeout)
	require.Len(t, sink.all(), 1)
	assert.False(t, sink.all()[0].Success)
}
