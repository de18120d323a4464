package store

import (
	"context"
	"fmt"
	"time"

	"ideaforge/internal/llm"
)

// maxPromptBytes caps stored prompt and response text.
const maxPromptBytes = 32 * 1024

var _ llm.TraceSink = (*SQLiteStore)(nil)

// RecordTrace stores one reasoning engine call.
func (s *SQLiteStore) RecordTrace(ctx context.Context, t llm.Trace) error {
	created := t.Timestamp
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO llm_traces
		 (id, label, op, model, system_prompt, user_prompt, response, tool_calls, duration_ms, success, error_message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Label, t.Op, t.Model,
		truncate(t.SystemPrompt, maxPromptBytes), truncate(t.UserPrompt, maxPromptBytes), truncate(t.Response, maxPromptBytes),
		t.ToolCalls, t.Duration.Milliseconds(), t.Success, t.ErrorMessage, created.UTC())
	if err != nil {
		return fmt.Errorf("insert trace: %w", err)
	}
	return nil
}

// RecentTraces returns the newest traces first, optionally filtered by label.
func (s *SQLiteStore) RecentTraces(ctx context.Context, label string, limit int) ([]llm.Trace, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, label, op, model, COALESCE(system_prompt, ''), COALESCE(user_prompt, ''), COALESCE(response, ''),
	                 tool_calls, duration_ms, success, COALESCE(error_message, ''), created_at
	          FROM llm_traces`
	args := []any{}
	if label != "" {
		query += ` WHERE label = ?`
		args = append(args, label)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query traces: %w", err)
	}
	defer rows.Close()

	var out []llm.Trace
	for rows.Next() {
		var t llm.Trace
		var durMs int64
		if err := rows.Scan(&t.ID, &t.Label, &t.Op, &t.Model, &t.SystemPrompt, &t.UserPrompt, &t.Response,
			&t.ToolCalls, &durMs, &t.Success, &t.ErrorMessage, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan trace: %w", err)
		}
		t.Duration = time.Duration(durMs) * time.Millisecond
		out = append(out, t)
	}
	return out, rows.Err()
}
