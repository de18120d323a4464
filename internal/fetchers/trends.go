package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"ideaforge/internal/logging"
	"ideaforge/internal/types"
)

// Trends fetches Google Trends interest over time through SerpAPI.
type Trends struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func (t *Trends) Name() string { return "trends" }

type serpTrendsResponse struct {
	Error            string `json:"error"`
	InterestOverTime struct {
		TimelineData []struct {
			Date   string `json:"date"`
			Values []struct {
				Query          string      `json:"query"`
				Value          string      `json:"value"`
				ExtractedValue json.Number `json:"extracted_value"`
			} `json:"values"`
		} `json:"timeline_data"`
	} `json:"interest_over_time"`
}

// Fetch implements Fetcher.
func (t *Trends) Fetch(ctx context.Context, keyword string) (*Contribution, error) {
	q := url.Values{}
	q.Set("engine", "google_trends")
	q.Set("q", keyword)
	q.Set("data_type", "TIMESERIES")
	q.Set("date", "today 12-m")
	q.Set("api_key", t.APIKey)
	req, err := http.NewRequest(http.MethodGet, t.BaseURL+"/search.json?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var resp serpTrendsResponse
	if err := getJSON(ctx, clientOrDefault(t.Client), req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("serpapi: %s", resp.Error)
	}

	series := &types.TrendSeries{Keyword: keyword}
	for _, row := range resp.InterestOverTime.TimelineData {
		if len(row.Values) == 0 {
			continue
		}
		v := row.Values[0]
		n, err := v.ExtractedValue.Int64()
		if err != nil {
			parsed, perr := strconv.Atoi(v.Value)
			if perr != nil {
				continue
			}
			n = int64(parsed)
		}
		series.Points = append(series.Points, types.TrendPoint{Date: row.Date, Value: int(n)})
	}
	if len(series.Points) == 0 {
		return nil, ErrNoData
	}
	logging.FetchDebug("trends: %d points for %q", len(series.Points), keyword)

	return &Contribution{
		Trends: series,
		Hits: []types.SearchHit{{
			Title:   "Google Trends: " + keyword,
			Snippet: fmt.Sprintf("Search interest over the last 12 months (%d samples).", len(series.Points)),
			Link:    "https://trends.google.com/trends/explore?q=" + url.QueryEscape(keyword),
		}},
	}, nil
}
