package fetchers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"ideaforge/internal/logging"
	"ideaforge/internal/types"
)

// Jobs fetches job-posting statistics from the Adzuna search API.
type Jobs struct {
	BaseURL string
	AppID   string
	AppKey  string
	Country string
	Client  *http.Client
}

func (j *Jobs) Name() string { return "jobs" }

type adzunaResponse struct {
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
	Results []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		RedirectURL string `json:"redirect_url"`
		Company     struct {
			DisplayName string `json:"display_name"`
		} `json:"company"`
	} `json:"results"`
}

// Fetch implements Fetcher.
func (j *Jobs) Fetch(ctx context.Context, keyword string) (*Contribution, error) {
	country := j.Country
	if country == "" {
		country = "us"
	}
	q := url.Values{}
	q.Set("app_id", j.AppID)
	q.Set("app_key", j.AppKey)
	q.Set("what", keyword)
	q.Set("results_per_page", "5")
	endpoint := fmt.Sprintf("%s/v1/api/jobs/%s/search/1?%s", j.BaseURL, url.PathEscape(country), q.Encode())
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var resp adzunaResponse
	if err := getJSON(ctx, clientOrDefault(j.Client), req, &resp); err != nil {
		return nil, err
	}

	stats := &types.JobStats{
		Keyword:       keyword,
		TotalPostings: resp.Count,
		MeanSalary:    resp.Mean,
	}
	var hits []types.SearchHit
	for _, r := range resp.Results {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			continue
		}
		stats.SampleTitles = append(stats.SampleTitles, title)
		if r.RedirectURL != "" {
			hits = append(hits, types.SearchHit{
				Title:   title,
				Snippet: strings.TrimSpace(r.Company.DisplayName + " " + truncate(r.Description, 160)),
				Link:    r.RedirectURL,
			})
		}
	}
	logging.FetchDebug("jobs: %d postings (mean salary %.0f) for %q", stats.TotalPostings, stats.MeanSalary, keyword)
	return &Contribution{Jobs: stats, Hits: hits}, nil
}
