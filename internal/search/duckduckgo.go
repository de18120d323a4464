package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"ideaforge/internal/logging"
	"ideaforge/internal/types"
)

const (
	defaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"
	defaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// DuckDuckGo queries the DuckDuckGo HTML endpoint. It needs no API key.
type DuckDuckGo struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

// NewDuckDuckGo creates a backend. Empty arguments fall back to defaults.
func NewDuckDuckGo(baseURL, userAgent string, client *http.Client) *DuckDuckGo {
	if baseURL == "" {
		baseURL = defaultDuckDuckGoURL
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &DuckDuckGo{BaseURL: baseURL, UserAgent: userAgent, Client: client}
}

// Query implements Backend.
func (d *DuckDuckGo) Query(ctx context.Context, query string, maxResults int) ([]types.SearchHit, error) {
	searchURL := fmt.Sprintf("%s?q=%s", d.BaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers to look like a browser
	req.Header.Set("User-Agent", d.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1MB limit
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	hits, err := parseDuckDuckGoResults(string(body), maxResults)
	if err != nil {
		return nil, err
	}
	logging.SearchDebug("duckduckgo: %d hits for %q", len(hits), query)
	return hits, nil
}

// parseDuckDuckGoResults extracts search results from DuckDuckGo HTML.
func parseDuckDuckGoResults(htmlContent string, maxResults int) ([]types.SearchHit, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var results []types.SearchHit

	// Each hit lives in a div carrying both "result" and "results_links".
	var findResults func(*html.Node)
	findResults = func(n *html.Node) {
		if len(results) >= maxResults {
			return
		}

		if n.Type == html.ElementNode && n.Data == "div" {
			class := getAttrValue(n, "class")
			if strings.Contains(class, "result") && strings.Contains(class, "results_links") {
				hit := extractResult(n)
				if hit.Link != "" && hit.Title != "" {
					results = append(results, hit)
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findResults(c)
		}
	}

	findResults(doc)
	return results, nil
}

// extractResult extracts a single hit from a result div.
func extractResult(n *html.Node) types.SearchHit {
	var hit types.SearchHit

	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			class := getAttrValue(n, "class")
			switch {
			case strings.Contains(class, "result__a"):
				hit.Link = getAttrValue(n, "href")
				hit.Title = getTextContent(n)
			case strings.Contains(class, "result__snippet"):
				hit.Snippet = getTextContent(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}

	extract(n)
	hit.Link = unwrapRedirect(hit.Link)
	return hit
}

// unwrapRedirect turns a DuckDuckGo redirect link into its target.
func unwrapRedirect(link string) string {
	const prefix = "//duckduckgo.com/l/?"
	if !strings.HasPrefix(link, prefix) && !strings.HasPrefix(link, "https:"+prefix) {
		return link
	}
	u, err := url.Parse(strings.TrimPrefix(link, "https:"))
	if err != nil {
		return link
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return link
}

// getAttrValue returns the value of an attribute.
func getAttrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// getTextContent returns all text content within a node.
func getTextContent(n *html.Node) string {
	var sb strings.Builder
	var getText func(*html.Node)
	getText = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				sb.WriteString(t)
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			getText(c)
		}
	}
	getText(n)
	return strings.TrimSpace(sb.String())
}
