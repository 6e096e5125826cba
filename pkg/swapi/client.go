package swapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://swapi.dev/api"
	starshipsPath  = "starships/"
)

// Fetch outcomes reported to an Observer.
const (
	OutcomeOK          = "ok"
	OutcomeRemoteError = "remote_error"
	OutcomeCancelled   = "cancelled"
)

// Observer receives fetch telemetry; metrics.CatalogMetrics satisfies it.
type Observer interface {
	ObservePage()
	ObserveFetch(outcome string, duration time.Duration)
}

// Client walks the SWAPI starship collection.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	maxPages   int
	observer   Observer
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the SWAPI base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithRateLimiter throttles page requests; every page waits on the limiter.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithMaxPages stops pagination after n pages. Zero keeps the walk unbounded.
func WithMaxPages(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxPages = n
		}
	}
}

// WithObserver installs a telemetry hook.
func WithObserver(obs Observer) Option {
	return func(c *Client) {
		c.observer = obs
	}
}

// NewClient builds a SWAPI client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// FetchStarships returns every starship matching search (all of them when search is
// empty), following `next` links until the API reports no further page.
func (c *Client) FetchStarships(ctx context.Context, search string) ([]Starship, error) {
	start := time.Now()
	ships, err := c.fetchAll(ctx, search)
	if c.observer != nil {
		c.observer.ObserveFetch(outcomeFor(err), time.Since(start))
	}
	return ships, err
}

func (c *Client) fetchAll(ctx context.Context, search string) ([]Starship, error) {
	all := []Starship{}
	next := c.initialURL(search)
	pages := 0

	for next != "" {
		if c.maxPages > 0 && pages >= c.maxPages {
			break
		}
		page, err := c.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		pages++
		if c.observer != nil {
			c.observer.ObservePage()
		}

		all = append(all, page.Results...)

		next = ""
		if page.Next != nil {
			next = strings.TrimSpace(*page.Next)
		}
	}

	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) (*Page, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.classify(ctx, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, networkError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classify(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, statusText(resp))
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		if ctx.Err() != nil {
			return nil, cancelled(ctx.Err())
		}
		return nil, &RemoteError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Failed to decode starships page: %v", err),
			Err:        err,
		}
	}
	return &page, nil
}

func (c *Client) classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return cancelled(ctx.Err())
	}
	if errors.Is(err, context.Canceled) {
		return cancelled(err)
	}
	return networkError(err)
}

func (c *Client) initialURL(search string) string {
	base := fmt.Sprintf("%s/%s", strings.TrimRight(c.baseURL, "/"), starshipsPath)
	if search == "" {
		return base
	}
	return base + "?" + url.Values{"search": []string{search}}.Encode()
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case IsCancelled(err):
		return OutcomeCancelled
	default:
		return OutcomeRemoteError
	}
}
