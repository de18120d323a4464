package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ideaforge/internal/logging"
	"ideaforge/internal/types"
)

// StoredReport is a persisted analysis.
type StoredReport struct {
	ID        string                `json:"id"`
	Idea      string                `json:"idea"`
	Research  *types.ResearchRecord `json:"research"`
	Report    *types.Report         `json:"report"`
	Revision  int                   `json:"revision"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// ReportSummary is a list entry.
type ReportSummary struct {
	ID          string    `json:"id"`
	Idea        string    `json:"idea"`
	ProductName string    `json:"productName,omitempty"`
	Score       int       `json:"score"`
	Decision    string    `json:"decision,omitempty"`
	Revision    int       `json:"revision"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Save stores a finished analysis and returns its new ID.
func (s *SQLiteStore) Save(ctx context.Context, idea string, rec *types.ResearchRecord, report *types.Report) (string, error) {
	if rec == nil {
		rec = &types.ResearchRecord{Idea: idea}
	}
	if report == nil {
		report = &types.Report{}
	}
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode research: %w", err)
	}
	repJSON, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, idea, research_json, report_json, created_at, updated_at, revision)
		 VALUES (?, ?, ?, ?, ?, ?, 1)`,
		id, idea, string(recJSON), string(repJSON), now, now)
	if err != nil {
		return "", fmt.Errorf("insert report: %w", err)
	}
	logging.Store("saved report %s (%d sections)", id, len(report.Present()))
	return id, nil
}

// Get loads a report by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*StoredReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, idea, research_json, report_json, revision, created_at, updated_at
		 FROM reports WHERE id = ?`, id)

	var sr StoredReport
	var recJSON, repJSON string
	var updated sql.NullTime
	if err := row.Scan(&sr.ID, &sr.Idea, &recJSON, &repJSON, &sr.Revision, &sr.CreatedAt, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("query report %s: %w", id, err)
	}
	sr.UpdatedAt = orCreated(updated, sr.CreatedAt)
	if err := json.Unmarshal([]byte(recJSON), &sr.Research); err != nil {
		return nil, fmt.Errorf("decode research of %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(repJSON), &sr.Report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &sr, nil
}

// List returns the newest reports first. limit <= 0 means 50.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]ReportSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, idea,
		        COALESCE(json_extract(report_json, '$.vision.productName'), ''),
		        COALESCE(json_extract(report_json, '$.verdict.score'), 0),
		        COALESCE(json_extract(report_json, '$.verdict.decision'), ''),
		        revision, created_at, updated_at
		 FROM reports ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	out := []ReportSummary{}
	for rows.Next() {
		var r ReportSummary
		var updated sql.NullTime
		if err := rows.Scan(&r.ID, &r.Idea, &r.ProductName, &r.Score, &r.Decision, &r.Revision, &r.CreatedAt, &updated); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r.UpdatedAt = orCreated(updated, r.CreatedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ApplyUpdates merges regenerated sections into a stored report and returns
// the merged report.
func (s *SQLiteStore) ApplyUpdates(ctx context.Context, id string, updates map[types.SectionName]types.SectionPayload) (*types.Report, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var repJSON string
	if err := tx.QueryRowContext(ctx, `SELECT report_json FROM reports WHERE id = ?`, id).Scan(&repJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("query report %s: %w", id, err)
	}
	report := &types.Report{}
	if err := json.Unmarshal([]byte(repJSON), report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	if err := report.Merge(updates); err != nil {
		return nil, err
	}
	merged, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE reports SET report_json = ?, updated_at = ?, revision = revision + 1 WHERE id = ?`,
		string(merged), time.Now().UTC(), id); err != nil {
		return nil, fmt.Errorf("update report %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	logging.Store("applied %d section updates to report %s", len(updates), id)
	return report, nil
}

// Delete removes a report.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// orCreated covers rows written before updated_at existed.
func orCreated(updated sql.NullTime, created time.Time) time.Time {
	if updated.Valid {
		return updated.Time
	}
	return created
}
