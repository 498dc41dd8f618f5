package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dgallion1/blockmd/internal/block"
)

const (
	DefaultBaseURL = "https://api.notion.com"
	DefaultVersion = "2022-06-28"
	// DefaultRate is the API's documented average request limit.
	DefaultRate = 3.0

	pageSize = 100
)

var ErrNotFound = block.ErrNotFound

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("notion: status %d: %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("notion: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Options configure a Client. Zero values select the defaults.
type Options struct {
	BaseURL string
	Version string
	Timeout time.Duration
	// RatePerSecond limits outgoing requests. Negative disables limiting.
	RatePerSecond float64
	Logger        *slog.Logger
}

// Client reads blocks from the Notion API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	version    string
	httpClient *http.Client
	limiter    *rate.Limiter
	stats      *Stats
	log        *slog.Logger
}

func NewClient(token string, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RatePerSecond == 0 {
		opts.RatePerSecond = DefaultRate
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   token,
		version: opts.Version,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
		stats:   NewStats(time.Hour),
		log:     opts.Logger.With("component", "notion"),
	}
}

// Stats returns the client's request latency tracker.
func (c *Client) Stats() *Stats {
	return c.stats
}

// Retrieve returns the full payload of one block.
func (c *Client) Retrieve(ctx context.Context, id string) (map[string]any, error) {
	var attrs map[string]any
	if err := c.get(ctx, "/v1/blocks/"+url.PathEscape(id), nil, &attrs); err != nil {
		return nil, fmt.Errorf("retrieve block %s: %w", id, err)
	}
	return attrs, nil
}

type childrenPage struct {
	Results    []map[string]any `json:"results"`
	HasMore    bool             `json:"has_more"`
	NextCursor *string          `json:"next_cursor"`
}

// ListChildren returns every child of id in document order, following
// next_cursor until has_more is false.
func (c *Client) ListChildren(ctx context.Context, id string) ([]map[string]any, error) {
	var out []map[string]any
	cursor := ""
	for pages := 1; ; pages++ {
		q := url.Values{}
		q.Set("page_size", fmt.Sprint(pageSize))
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}
		var page childrenPage
		if err := c.get(ctx, "/v1/blocks/"+url.PathEscape(id)+"/children", q, &page); err != nil {
			return nil, fmt.Errorf("list children of %s: %w", id, err)
		}
		out = append(out, page.Results...)
		if !page.HasMore || page.NextCursor == nil || *page.NextCursor == "" {
			c.log.Debug("listed children", "block_id", id, "count", len(out), "pages", pages)
			return out, nil
		}
		cursor = *page.NextCursor
	}
}

func (c *Client) get(ctx context.Context, path string, q url.Values, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Notion-Version", c.version)
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	c.stats.Record(time.Since(start).Milliseconds())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(respBody, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
