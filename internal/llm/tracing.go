package llm

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ideaforge/internal/logging"
	"ideaforge/internal/types"
)

// Trace captures one reasoning engine interaction.
type Trace struct {
	ID           string        `json:"id"`
	Label        string        `json:"label"`
	Op           string        `json:"op"`
	Model        string        `json:"model,omitempty"`
	SystemPrompt string        `json:"system_prompt"`
	UserPrompt   string        `json:"user_prompt"`
	Response     string        `json:"response"`
	ToolCalls    int           `json:"tool_calls"`
	Duration     time.Duration `json:"duration"`
	Success      bool          `json:"success"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

// TraceSink stores traces. store.SQLiteStore implements it.
type TraceSink interface {
	RecordTrace(ctx context.Context, trace Trace) error
}

type labelKey struct{}

// WithLabel attributes calls made with ctx to label (e.g. "section:vision").
func WithLabel(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, labelKey{}, label)
}

// LabelFrom returns the label attached by WithLabel.
func LabelFrom(ctx context.Context) string {
	l, _ := ctx.Value(labelKey{}).(string)
	return l
}

// TracingClient logs every call and hands a Trace to an optional sink.
type TracingClient struct {
	inner types.LLMClient
	sink  TraceSink
	model string
}

var _ types.LLMClient = (*TracingClient)(nil)

// NewTracingClient wraps inner. sink may be nil.
func NewTracingClient(inner types.LLMClient, sink TraceSink) *TracingClient {
	return &TracingClient{inner: inner, sink: sink}
}

// WithModel sets the model name recorded on traces.
func (tc *TracingClient) WithModel(model string) *TracingClient {
	tc.model = model
	return tc
}

func (tc *TracingClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	resp, err := tc.inner.CompleteWithSystem(ctx, systemPrompt, userPrompt)
	tc.record(ctx, "CompleteWithSystem", systemPrompt, userPrompt, resp, 0, start, err)
	return resp, err
}

func (tc *TracingClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	resp, err := tc.inner.CompleteJSON(ctx, systemPrompt, userPrompt)
	tc.record(ctx, "CompleteJSON", systemPrompt, userPrompt, resp, 0, start, err)
	return resp, err
}

func (tc *TracingClient) CompleteWithTools(ctx context.Context, systemPrompt string, history []types.Message, tools []types.ToolDefinition) (*types.LLMToolResponse, error) {
	start := time.Now()
	resp, err := tc.inner.CompleteWithTools(ctx, systemPrompt, history, tools)
	var (
		text  string
		calls int
		user  string
	)
	if resp != nil {
		text, calls = resp.Text, len(resp.ToolCalls)
	}
	if n := len(history); n > 0 {
		user = history[n-1].Text
	}
	tc.record(ctx, "CompleteWithTools", systemPrompt, user, text, calls, start, err)
	return resp, err
}

func (tc *TracingClient) record(ctx context.Context, op, system, user, response string, calls int, start time.Time, err error) {
	label := LabelFrom(ctx)
	duration := time.Since(start)
	if err != nil {
		logging.API("LLM call failed: label=%s op=%s duration=%v error=%v", label, op, duration, err)
	} else {
		logging.API("LLM call completed: label=%s op=%s duration=%v response_len=%d tool_calls=%d", label, op, duration, len(response), calls)
	}
	if tc.sink == nil {
		return
	}
	trace := Trace{
		ID:           uuid.NewString(),
		Label:        label,
		Op:           op,
		Model:        tc.model,
		SystemPrompt: system,
		UserPrompt:   user,
		Response:     response,
		ToolCalls:    calls,
		Duration:     duration,
		Success:      err == nil,
		Timestamp:    start,
	}
	if err != nil {
		trace.ErrorMessage = err.Error()
	}
	// The run's context may already be cancelled; the trace still belongs to it.
	if storeErr := tc.sink.RecordTrace(context.WithoutCancel(ctx), trace); storeErr != nil {
		logging.APIDebug("failed to store reasoning trace: %v", storeErr)
	}
}
