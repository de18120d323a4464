package fetchers

import (
	"net/http"
	"time"

	"ideaforge/internal/config"
)

var seriesTitles = map[string]string{
	"CES0000000001": "All employees, total nonfarm (thousands)",
	"LNS14000000":   "Unemployment rate (percent)",
}

// FromConfig builds a Gatherer with every usable fetcher in cfg.
func FromConfig(cfg *config.Config, client *http.Client, timeout time.Duration) *Gatherer {
	var fs []Fetcher
	if cfg.TrendsUsable() {
		fs = append(fs, &Trends{
			BaseURL: cfg.Fetchers.Trends.BaseURL,
			APIKey:  cfg.Fetchers.Trends.APIKey,
			Client:  client,
		})
	}
	if cfg.JobsUsable() {
		fs = append(fs, &Jobs{
			BaseURL: cfg.Fetchers.Jobs.BaseURL,
			AppID:   cfg.Fetchers.Jobs.AppID,
			AppKey:  cfg.Fetchers.Jobs.APIKey,
			Country: cfg.Fetchers.Jobs.Country,
			Client:  client,
		})
	}
	if cfg.WorkforceUsable() {
		fs = append(fs, &Workforce{
			BaseURL:  cfg.Fetchers.Workforce.BaseURL,
			APIKey:   cfg.Fetchers.Workforce.APIKey,
			SeriesID: cfg.Fetchers.Workforce.Series,
			Title:    seriesTitles[cfg.Fetchers.Workforce.Series],
			Client:   client,
		})
	}
	return NewGatherer(timeout, fs...)
}
