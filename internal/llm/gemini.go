// Package llm adapts reasoning engine providers to types.LLMClient and adds
// the per-call timeout and tracing decorators every caller goes through.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"ideaforge/internal/logging"
	"ideaforge/internal/types"
	"ideaforge/internal/usage"
)

const defaultSystemPrompt = "You are a careful startup analyst. Be concrete and cite evidence when you have it."

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
	BaseURL         string // overrides the API endpoint, mainly for tests
	MaxRetries      int
	MinInterval     time.Duration // minimum spacing between requests
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:          apiKey,
		Model:           "gemini-2.5-flash",
		Temperature:     0.4,
		MaxOutputTokens: 8192,
		MaxRetries:      3,
		MinInterval:     100 * time.Millisecond,
	}
}

// GeminiClient implements types.LLMClient on top of the genai SDK.
type GeminiClient struct {
	client *genai.Client
	cfg    GeminiConfig

	mu          sync.Mutex
	lastRequest time.Time
}

var _ types.LLMClient = (*GeminiClient)(nil)

// NewGeminiClient creates a Gemini client.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultGeminiConfig("").Model
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, cfg: cfg}, nil
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string { return c.cfg.Model }

// CompleteWithSystem returns free-form text.
func (c *GeminiClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.generate(ctx, "CompleteWithSystem",
		[]*genai.Content{genai.NewContentFromText(userPrompt, genai.RoleUser)},
		c.baseConfig(systemPrompt))
	if err != nil {
		return "", err
	}
	text := candidateText(resp)
	if text == "" {
		return "", ErrNoCompletion
	}
	return text, nil
}

// CompleteJSON requests application/json output.
func (c *GeminiClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	cfg := c.baseConfig(systemPrompt)
	cfg.ResponseMIMEType = "application/json"
	resp, err := c.generate(ctx, "CompleteJSON",
		[]*genai.Content{genai.NewContentFromText(userPrompt, genai.RoleUser)}, cfg)
	if err != nil {
		return "", err
	}
	text := candidateText(resp)
	if text == "" {
		return "", ErrNoCompletion
	}
	return text, nil
}

// CompleteWithTools runs one turn of a function-calling dialogue.
func (c *GeminiClient) CompleteWithTools(ctx context.Context, systemPrompt string, history []types.Message, tools []types.ToolDefinition) (*types.LLMToolResponse, error) {
	cfg := c.baseConfig(systemPrompt)
	gt, err := toTools(tools)
	if err != nil {
		return nil, err
	}
	cfg.Tools = gt
	contents := toContents(history)
	if len(contents) == 0 {
		return nil, fmt.Errorf("CompleteWithTools: empty history")
	}
	resp, err := c.generate(ctx, "CompleteWithTools", contents, cfg)
	if err != nil {
		return nil, err
	}
	out := fromResponse(resp)
	for _, call := range out.ToolCalls {
		logging.APIDebug("[Gemini] tool call %s %s", call.Name, argsJSON(call.Input))
	}
	return out, nil
}

func (c *GeminiClient) baseConfig(systemPrompt string) *genai.GenerateContentConfig {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = defaultSystemPrompt
	}
	temp := c.cfg.Temperature
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       &temp,
		MaxOutputTokens:   c.cfg.MaxOutputTokens,
	}
}

// generate performs the request with spacing between calls and retries on
// rate limits and server errors.
func (c *GeminiClient) generate(ctx context.Context, op string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	start := time.Now()
	logging.APIDebug("[Gemini] %s: model=%s turns=%d", op, c.cfg.Model, len(contents))

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		if err := c.pace(ctx); err != nil {
			return nil, err
		}

		resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, contents, cfg)
		if err == nil {
			if len(resp.Candidates) == 0 {
				return nil, ErrNoCompletion
			}
			logging.API("[Gemini] %s: completed in %v", op, time.Since(start))
			if u := resp.UsageMetadata; u != nil {
				usage.FromContext(ctx).Track(c.cfg.Model, LabelFrom(ctx), int(u.PromptTokenCount), int(u.CandidatesTokenCount))
			}
			return resp, nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			break
		}
		logging.Get(logging.CategoryAPI).Warn("[Gemini] %s: attempt %d failed, retrying: %v", op, attempt+1, err)
	}
	logging.Get(logging.CategoryAPI).Error("[Gemini] %s: failed after %v: %v", op, time.Since(start), lastErr)
	return nil, fmt.Errorf("gemini %s: %w", op, lastErr)
}

// pace enforces MinInterval between consecutive requests.
func (c *GeminiClient) pace(ctx context.Context) error {
	c.mu.Lock()
	wait := c.cfg.MinInterval - time.Since(c.lastRequest)
	if wait < 0 {
		wait = 0
	}
	c.lastRequest = time.Now().Add(wait)
	c.mu.Unlock()
	if wait == 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

func retryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	return false
}
