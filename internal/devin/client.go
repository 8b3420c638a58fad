// Package devin provides a client for the credit usage backend.
package devin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/theirongolddev/acumon/internal/model"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodySize    = 4 << 20 // 4 MB

	// DefaultLatestPath serves the most recent snapshot.
	DefaultLatestPath = "/api/latest-credit-data"
	// DefaultHistoryPath serves every recorded entry.
	DefaultHistoryPath = "/api/usage-history"
)

var (
	// ErrNetwork indicates a transport failure, a timeout, or a non-2xx status.
	ErrNetwork = errors.New("devin: network error")
	// ErrParse indicates the response body was not the expected JSON.
	ErrParse = errors.New("devin: invalid response")
)

// Client fetches credit usage from the backend API.
type Client struct {
	baseURL     string
	latestPath  string
	historyPath string
	timeout     time.Duration
	http        *http.Client
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	LatestPath  string
	HistoryPath string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts Options) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		latestPath:  opts.LatestPath,
		historyPath: opts.HistoryPath,
		timeout:     opts.Timeout,
		http:        opts.HTTPClient,
	}
	if c.latestPath == "" {
		c.latestPath = DefaultLatestPath
	}
	if c.historyPath == "" {
		c.historyPath = DefaultHistoryPath
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Latest returns the most recent snapshot. A backend with nothing recorded
// answers {}, which decodes to a snapshot whose Empty() is true.
func (c *Client) Latest(ctx context.Context) (*model.Snapshot, error) {
	body, err := c.get(ctx, c.latestPath)
	if err != nil {
		return nil, err
	}

	var snap model.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("%w: parsing latest snapshot: %w", ErrParse, err)
	}
	return &snap, nil
}

// History returns every recorded entry in backend order. JSON null yields an
// empty slice.
func (c *Client) History(ctx context.Context) ([]model.HistoryRecord, error) {
	body, err := c.get(ctx, c.historyPath)
	if err != nil {
		return nil, err
	}

	var records []model.HistoryRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: parsing history: %w", ErrParse, err)
	}
	return records, nil
}

// get performs a GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/theirongolddev/acumon/1.0")

	//nolint:gosec // URL comes from user configuration
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrNetwork, path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrNetwork, err)
	}
	return body, nil
}
