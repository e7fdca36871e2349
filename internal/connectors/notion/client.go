package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/jomei/notionapi"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/lexisync/internal/core/ports/driven"
)

// Client wraps the Notion API client with rate limiting and error mapping.
type Client struct {
	config        *Config
	tokenProvider driven.TokenProvider
	rateLimiter   *RateLimiter

	mu  sync.Mutex
	api *notionapi.Client
}

// NewClient creates a new Notion API client wrapper.
func NewClient(tokenProvider driven.TokenProvider, cfg *Config) *Client {
	return &Client{
		config:        cfg,
		tokenProvider: tokenProvider,
		rateLimiter:   NewRateLimiter(cfg.RequestsPerSecond),
	}
}

// ensureClient creates the API client on first use. The credential is set by
// the oauth2 transport on every request, not by the library.
func (c *Client) ensureClient() *notionapi.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.api != nil {
		return c.api
	}

	base := c.config.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc := &http.Client{
		Transport: &oauth2.Transport{
			// The source outlives any single run.
			Source: newTokenSource(context.Background(), c.tokenProvider),
			Base: &transport{
				base:       base,
				limiter:    c.rateLimiter,
				maxRetries: MaxRetries,
			},
		},
		Timeout: DefaultTimeout,
	}

	// Retries happen in the transport; the library gives up on the first 429 it sees.
	c.api = notionapi.NewClient("",
		notionapi.WithHTTPClient(hc),
		notionapi.WithRetry(1),
	)
	return c.api
}

// QueryPage fetches one page of database rows starting at cursor.
func (c *Client) QueryPage(ctx context.Context, cursor string) (*notionapi.DatabaseQueryResponse, error) {
	resp, err := c.ensureClient().Database.Query(ctx, notionapi.DatabaseID(c.config.DatabaseID), &notionapi.DatabaseQueryRequest{
		StartCursor: notionapi.Cursor(cursor),
		PageSize:    c.config.PageSize,
	})
	if err != nil {
		return nil, c.wrapError("query database", err)
	}
	return resp, nil
}

// Database fetches the database schema.
func (c *Client) Database(ctx context.Context) (*notionapi.Database, error) {
	db, err := c.ensureClient().Database.Get(ctx, notionapi.DatabaseID(c.config.DatabaseID))
	if err != nil {
		return nil, c.wrapError("get database", err)
	}
	return db, nil
}

// wrapError converts library errors to APIError or RateLimitError.
func (c *Client) wrapError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if c.rateLimiter.Throttled() {
		return &RateLimitError{RetryAt: c.rateLimiter.RetryAt()}
	}

	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return &APIError{
			StatusCode: apiErr.Status,
			Code:       string(apiErr.Code),
			Message:    apiErr.Message,
			Op:         op,
		}
	}
	return fmt.Errorf("notion: %s: %w", op, err)
}
