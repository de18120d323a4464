package fetchers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"ideaforge/internal/logging"
	"ideaforge/internal/types"
)

// Workforce fetches an official labor statistics series from the BLS
// public API. The series is fixed by configuration; the keyword is unused.
type Workforce struct {
	BaseURL  string
	APIKey   string // optional; raises the daily quota
	SeriesID string
	Title    string
	Client   *http.Client
}

func (w *Workforce) Name() string { return "workforce" }

type blsRequest struct {
	SeriesID        []string `json:"seriesid"`
	RegistrationKey string   `json:"registrationkey,omitempty"`
}

type blsResponse struct {
	Status  string   `json:"status"`
	Message []string `json:"message"`
	Results struct {
		Series []struct {
			SeriesID string `json:"seriesID"`
			Data     []struct {
				Year       string `json:"year"`
				Period     string `json:"period"`
				PeriodName string `json:"periodName"`
				Value      string `json:"value"`
			} `json:"data"`
		} `json:"series"`
	} `json:"Results"`
}

// Fetch implements Fetcher.
func (w *Workforce) Fetch(ctx context.Context, _ string) (*Contribution, error) {
	body, err := json.Marshal(blsRequest{SeriesID: []string{w.SeriesID}, RegistrationKey: w.APIKey})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, w.BaseURL+"/publicAPI/v2/timeseries/data/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp blsResponse
	if err := getJSON(ctx, clientOrDefault(w.Client), req, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "REQUEST_SUCCEEDED" {
		return nil, fmt.Errorf("bls: %s %v", resp.Status, resp.Message)
	}
	if len(resp.Results.Series) == 0 {
		return nil, ErrNoData
	}

	s := resp.Results.Series[0]
	stats := &types.WorkforceStats{SeriesID: s.SeriesID, Title: w.Title}
	if stats.Title == "" {
		stats.Title = s.SeriesID
	}
	for _, d := range s.Data {
		v, err := strconv.ParseFloat(d.Value, 64)
		if err != nil {
			continue
		}
		stats.Points = append(stats.Points, types.WorkforcePoint{
			Period: fmt.Sprintf("%s %s", d.PeriodName, d.Year),
			Value:  v,
		})
	}
	if len(stats.Points) == 0 {
		return nil, ErrNoData
	}
	logging.FetchDebug("workforce: %d points for series %s", len(stats.Points), stats.SeriesID)

	return &Contribution{
		Workforce: stats,
		Hits: []types.SearchHit{{
			Title:   "BLS series " + stats.SeriesID,
			Snippet: fmt.Sprintf("%s, latest %s: %.1f", stats.Title, stats.Points[0].Period, stats.Points[0].Value),
			Link:    "https://data.bls.gov/timeseries/" + stats.SeriesID,
		}},
	}, nil
}
