// Package verify checks that bibliography links still resolve.
//
// Checks run sequentially and are throttled to stay polite to remote
// hosts; a broken link is a data finding, not a program fault, so runs
// complete even when every link fails.
package verify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/brainemulation/reftab/internal/bib"
)

const (
	// DefaultRateLimit is the request throttle in requests per second.
	DefaultRateLimit = 2.0

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 10 * time.Second

	userAgent = "reftab-link-check/1.0"
)

// Entry statuses.
const (
	StatusOK      = "ok"
	StatusBroken  = "broken"
	StatusSkipped = "skipped"
)

// Result is the outcome for one bibliography entry.
type Result struct {
	RefID  string `json:"ref_id"`
	URL    string `json:"url,omitempty"`
	Status string `json:"status"`
	Code   int    `json:"http_status,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Summary tallies one verification run.
type Summary struct {
	Total   int `json:"total"`
	OK      int `json:"ok"`
	Broken  int `json:"broken"`
	Skipped int `json:"skipped"`
}

// Checker performs rate-limited link checks.
type Checker struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Checker.
type Option func(*Checker)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Checker) {
		c.httpClient = hc
	}
}

// WithRateLimit overrides the requests-per-second throttle.
func WithRateLimit(rps float64) Option {
	return func(c *Checker) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		c.httpClient.Timeout = d
	}
}

// NewChecker creates a link checker with the default throttle and
// timeout.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EntryURL returns the checkable link for an entry: its URL when set,
// otherwise the DOI resolver link, otherwise "".
func EntryURL(e bib.Entry) string {
	if e.URL != "" {
		return e.URL
	}
	if e.DOI != "" {
		return "https://doi.org/" + e.DOI
	}
	return ""
}

// Check verifies the entries in order. Entries without a URL or DOI are
// recorded as skipped. limit caps the number of entries processed when
// positive. The error return reports run-level faults only, never
// broken links.
func (c *Checker) Check(ctx context.Context, entries []bib.Entry, limit int) ([]Result, Summary, error) {
	results := []Result{}
	var summary Summary

	for _, e := range entries {
		if limit > 0 && len(results) >= limit {
			break
		}

		url := EntryURL(e)
		if url == "" {
			results = append(results, Result{RefID: e.ID, Status: StatusSkipped})
			summary.Skipped++
			summary.Total++
			continue
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return results, summary, fmt.Errorf("rate limiter: %w", err)
		}

		code, err := c.attempt(ctx, url)
		if ctx.Err() != nil {
			return results, summary, ctx.Err()
		}

		r := Result{RefID: e.ID, URL: url, Code: code}
		switch {
		case err != nil:
			r.Status = StatusBroken
			r.Detail = err.Error()
			summary.Broken++
		case code >= 400:
			r.Status = StatusBroken
			summary.Broken++
		default:
			r.Status = StatusOK
			summary.OK++
		}
		results = append(results, r)
		summary.Total++
	}
	return results, summary, nil
}

// attempt issues a HEAD request, falling back to GET when the server
// rejects or fails HEAD. The fallback reuses the entry's limiter slot.
func (c *Checker) attempt(ctx context.Context, url string) (int, error) {
	code, err := c.do(ctx, http.MethodHead, url)
	if err != nil || code == http.StatusMethodNotAllowed {
		return c.do(ctx, http.MethodGet, url)
	}
	return code, nil
}

func (c *Checker) do(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
