package seeder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/okian/tally/pkg/logger"
)

// HTTPClient talks to the dashboard API with an unlocked session.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	token   string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends a request and decodes a JSON response into out when non-nil.
// Non-2xx statuses are returned as errors carrying the body.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("X-Session-Token", c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%s %s: HTTP %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, c *HTTPClient) (string, error) {
	var status struct {
		State string `json:"state"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/healthz", nil, &status); err != nil {
		return "", err
	}
	return status.State, nil
}

// unlock trades the access code for a session token.
func unlock(ctx context.Context, c *HTTPClient, code string) error {
	var resp struct {
		Token string `json:"token"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/api/session", map[string]string{"code": code}, &resp); err != nil {
		return fmt.Errorf("unlock: %w", err)
	}
	c.token = resp.Token
	return nil
}

// fetchRoster returns the configured consultants.
func fetchRoster(ctx context.Context, c *HTTPClient) ([]string, error) {
	var resp struct {
		Consultants []string `json:"consultants"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/api/roster", nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Consultants) == 0 {
		return nil, fmt.Errorf("empty roster")
	}
	return resp.Consultants, nil
}

// getLeaderboard fetches the all-time standings.
func getLeaderboard(ctx context.Context, c *HTTPClient) ([]Standing, error) {
	var resp struct {
		Standings []Standing `json:"standings"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/api/leaderboard?range=all", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Standings, nil
}

// submitEntries posts entries concurrently and returns the accepted ones.
func submitEntries(ctx context.Context, c *HTTPClient, cfg *Config, entries []Payload, stats *Stats) []Payload {
	log := logger.Get()
	log.Info(ctx, "submitting entries", logger.Int("entries", len(entries)), logger.Int("workers", cfg.Workers))

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	var submitted, accepted, failed, celebrations, lastReport atomic.Int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	ok := make([]Payload, 0, len(entries))

	ch := make(chan Payload, workers*WorkerChannelMultiplier)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range ch {
				var receipt struct {
					Celebrate bool `json:"celebrate"`
				}
				_, err := c.do(ctx, http.MethodPost, "/api/entries", p, &receipt)
				submitted.Add(1)
				if err != nil {
					failed.Add(1)
					if cfg.Verbose {
						log.Warn(ctx, "entry rejected", logger.String("consultant", p.Consultant), logger.Error(err))
					}
				} else {
					accepted.Add(1)
					if receipt.Celebrate {
						celebrations.Add(1)
					}
					mu.Lock()
					ok = append(ok, p)
					mu.Unlock()
				}

				now := time.Now().UnixNano()
				last := lastReport.Load()
				if now-last >= int64(progressInterval) && lastReport.CompareAndSwap(last, now) {
					log.Info(ctx, "progress",
						logger.Int("submitted", int(submitted.Load())),
						logger.Int("total", len(entries)),
						logger.Int("failed", int(failed.Load())),
					)
				}
			}
		}()
	}

	go func() {
		defer close(ch)
		for _, p := range entries {
			select {
			case <-ctx.Done():
				return
			case ch <- p:
			}
		}
	}()
	wg.Wait()

	stats.EntriesSubmitted = int(submitted.Load())
	stats.EntriesAccepted = int(accepted.Load())
	stats.EntriesFailed = int(failed.Load())
	stats.Celebrations = int(celebrations.Load())
	log.Info(ctx, "entry submission completed",
		logger.Int("accepted", stats.EntriesAccepted),
		logger.Int("failed", stats.EntriesFailed),
		logger.Int("celebrations", stats.Celebrations),
	)
	return ok
}

// checkDashboard loads the all-time dashboard page and returns the names
// shown on its leaderboard, in order.
func checkDashboard(ctx context.Context, c *HTTPClient) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?range=all", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dashboard: HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	var names []string
	doc.Find("#standings li.standing").Each(func(_ int, s *goquery.Selection) {
		names = append(names, s.AttrOr("data-name", ""))
	})
	return names, nil
}
