// Package fetch pulls raw job listings from the upstream feed API, one feed
// per source. Payloads are returned untouched and handed to the source
// normalizers.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	feedPageSize = 50
	feedMaxPages = 3 // max 150 listings per source per run
	httpTimeout  = 15 * time.Second
)

// FeedFetcher fetches raw listings for one source from the feed API.
// If Endpoint or APIKey is empty, Fetch returns (nil, nil) gracefully — the
// scheduler will simply skip the source for that round and log a warning.
type FeedFetcher struct {
	Source   string
	Endpoint string
	APIKey   string
	client   *http.Client
}

// NewFeedFetcher constructs a fetcher with a shared HTTP client.
func NewFeedFetcher(source, endpoint, apiKey string) *FeedFetcher {
	return &FeedFetcher{
		Source:   source,
		Endpoint: endpoint,
		APIKey:   apiKey,
		client:   &http.Client{Timeout: httpTimeout},
	}
}

// feedResponse mirrors the top-level feed JSON response.
type feedResponse struct {
	Results []json.RawMessage `json:"results"`
	Count   int               `json:"count"`
}

// Fetch retrieves all available listings for the source, iterating through
// pages until no more results or feedMaxPages is reached. Returns nil without
// error when the feed is not configured.
func (f *FeedFetcher) Fetch(ctx context.Context) ([]json.RawMessage, error) {
	if f.Endpoint == "" || f.APIKey == "" {
		log.Printf("[fetch] feed for %q not configured, skipping", f.Source)
		return nil, nil
	}

	var results []json.RawMessage

	for page := 1; page <= feedMaxPages; page++ {
		batch, err := f.fetchPage(ctx, page)
		if err != nil {
			return results, fmt.Errorf("page %d: %w", page, err)
		}
		if len(batch) == 0 {
			break // No more results
		}
		results = append(results, batch...)
		if len(batch) < feedPageSize {
			break // Last page
		}
	}

	return results, nil
}

func (f *FeedFetcher) fetchPage(ctx context.Context, page int) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("source", f.Source)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(feedPageSize))
	params.Set("sort_by", "date")

	reqURL := f.Endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.APIKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp feedResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	return apiResp.Results, nil
}
