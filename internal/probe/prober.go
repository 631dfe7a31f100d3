// Package probe implements the external liveness check for job posting URLs.
//
// The prober answers one question per URL: does the posting still resolve on
// its source site? The answer is a trichotomy — true, false, or nil for
// "unknown". Callers must treat nil as no information, never as evidence that
// a posting was removed: conflating a timeout with a 404 is how false
// removals happen.
package probe

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRequestsPerMinute is the shared probe budget across all callers.
	DefaultRequestsPerMinute = 30

	// Batch concurrency bounds.
	DefaultConcurrency = 5
	MaxConcurrency     = 10

	httpTimeout     = 10 * time.Second
	interChunkPause = 500 * time.Millisecond
)

// NewLimiter builds the process-wide probe rate limiter: a token bucket
// refilled at perMinute tokens per minute. Exactly one instance must be
// shared by every prober path — two independent limiters would silently
// double the effective rate.
func NewLimiter(perMinute int) *rate.Limiter {
	if perMinute < 1 {
		perMinute = DefaultRequestsPerMinute
	}
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
}

// Prober checks whether job posting URLs still resolve.
type Prober struct {
	client  *http.Client
	limiter *rate.Limiter
	sources map[string]bool
}

// NewProber constructs a Prober over the shared limiter. sources is the set
// of supported provider ids; probes for anything else are rejected before any
// network call.
func NewProber(limiter *rate.Limiter, sources []string) *Prober {
	return NewProberWithClient(limiter, sources, &http.Client{
		Timeout: httpTimeout,
		// Redirects are interpreted, not followed: a redirect to a generic
		// careers page means the posting is gone.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	})
}

// NewProberWithClient is NewProber with an injected HTTP client, for tests.
func NewProberWithClient(limiter *rate.Limiter, sources []string, client *http.Client) *Prober {
	set := make(map[string]bool, len(sources))
	for _, s := range sources {
		set[s] = true
	}
	if client.CheckRedirect == nil {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return &Prober{client: client, limiter: limiter, sources: set}
}

// Exists probes one posting URL. Returns a pointer so that nil carries the
// "unknown" outcome: invalid input, rate-limit cancellation, auth walls,
// throttling, server errors and timeouts are all nil — explicitly not false.
func (p *Prober) Exists(ctx context.Context, rawURL, source string) *bool {
	if !p.sources[source] {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil
	}

	resp, err := p.request(ctx, http.MethodHead, rawURL)
	if err != nil {
		return nil
	}
	// Some sites reject HEAD outright; retry with a full GET, drawing a
	// second token from the shared budget.
	if resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil
		}
		resp, err = p.request(ctx, http.MethodGet, rawURL)
		if err != nil {
			return nil
		}
	}

	return interpret(resp, u)
}

func (p *Prober) request(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "jobiq-liveness/1.0")
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", method, err)
	}
	resp.Body.Close()
	return resp, nil
}

// interpret maps an HTTP response to the liveness trichotomy.
func interpret(resp *http.Response, original *url.URL) *bool {
	switch {
	case resp.StatusCode == http.StatusOK:
		return ptr(true)
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ptr(false)
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		return interpretRedirect(resp, original)
	default:
		// 401/403/429/5xx and anything unclassified: unknown.
		return nil
	}
}

// interpretRedirect distinguishes "redirected to a generic page" (posting
// removed) from "redirected to a distinct specific page" (posting moved).
func interpretRedirect(resp *http.Response, original *url.URL) *bool {
	loc, err := resp.Location()
	if err != nil {
		return nil
	}
	path := strings.TrimSuffix(strings.ToLower(loc.Path), "/")

	if path == "" {
		return ptr(false) // site root
	}
	for _, marker := range []string{"not-found", "notfound", "404", "expired", "job-closed"} {
		if strings.Contains(path, marker) {
			return ptr(false)
		}
	}
	for _, index := range []string{"/careers", "/jobs", "/careers/search", "/jobs/search"} {
		if path == index {
			return ptr(false) // listing index, not a posting
		}
	}
	if strings.EqualFold(loc.Path, original.Path) && loc.Host == original.Host {
		return ptr(true) // scheme/host-only rewrite
	}
	return ptr(true)
}

// ─── Batch variant ───────────────────────────────────────────────────────────

// Request identifies one posting to probe.
type Request struct {
	JobID  string
	URL    string
	Source string
}

// ExistsBatch probes many postings under bounded concurrency (default 5,
// capped at 10, strictly sequential at 1), pausing between chunks. All
// requests draw from the single shared limiter. The result map carries one
// entry per request; nil values mean unknown.
func (p *Prober) ExistsBatch(ctx context.Context, reqs []Request, concurrency int) map[string]*bool {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if concurrency > MaxConcurrency {
		concurrency = MaxConcurrency
	}

	results := make(map[string]*bool, len(reqs))
	var mu sync.Mutex

	for start := 0; start < len(reqs); start += concurrency {
		end := start + concurrency
		if end > len(reqs) {
			end = len(reqs)
		}
		chunk := reqs[start:end]

		if concurrency == 1 {
			for _, r := range chunk {
				results[r.JobID] = p.Exists(ctx, r.URL, r.Source)
			}
		} else {
			var wg sync.WaitGroup
			for _, r := range chunk {
				wg.Add(1)
				go func(r Request) {
					defer wg.Done()
					outcome := p.Exists(ctx, r.URL, r.Source)
					mu.Lock()
					results[r.JobID] = outcome
					mu.Unlock()
				}(r)
			}
			wg.Wait()
		}

		if end < len(reqs) {
			select {
			case <-ctx.Done():
				log.Printf("[probe] batch cancelled after %d/%d probes", end, len(reqs))
				return results
			case <-time.After(interChunkPause):
			}
		}
	}
	return results
}

func ptr(b bool) *bool { return &b }
