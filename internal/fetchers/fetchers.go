// Package fetchers holds the auxiliary data lookups that run beside the
// research loop: search-interest trends, job postings and workforce
// statistics. Each is a single non-interactive request; the Gatherer runs
// them concurrently and isolates their failures.
package fetchers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ideaforge/internal/types"
)

// ErrNoData is returned when a source answered but had nothing usable.
var ErrNoData = errors.New("no data returned")

// Contribution is what one fetcher adds to the research record.
type Contribution struct {
	Trends    *types.TrendSeries
	Jobs      *types.JobStats
	Workforce *types.WorkforceStats
	Hits      []types.SearchHit
}

// Fetcher is one auxiliary data source.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, keyword string) (*Contribution, error)
}

// getJSON performs a request and decodes a JSON body into dst.
func getJSON(ctx context.Context, client *http.Client, req *http.Request, dst interface{}) error {
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func clientOrDefault(c *http.Client) *http.Client {
	if c == nil {
		return http.DefaultClient
	}
	return c
}
