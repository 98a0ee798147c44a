package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/transitledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// maxResponseSize limits upstream response bodies to prevent memory
// exhaustion on a misbehaving endpoint.
const maxResponseSize = 32 * 1024 * 1024 // 32MB

// Client is a shared HTTP client for the upstream services. Transient
// failures (network errors and 5xx responses) retry with exponential
// backoff; 4xx responses fail immediately.
type Client struct {
	httpClient *http.Client
	apiKey     string
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// NewClient creates a new upstream HTTP client
func NewClient(cfg config.ExternalConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
		logger:     logger,
	}
}

// GetJSON fetches url and decodes the response into out, retrying
// transient failures.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff * time.Duration(1<<(attempt-1))
			c.logger.Warn("upstream request retrying",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		retryable, err := c.getOnce(ctx, url, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return fmt.Errorf("upstream request failed after %d retries: %w", c.maxRetries, lastErr)
}

// getOnce performs a single request. The bool reports whether the failure
// is worth retrying.
func (c *Client) getOnce(ctx context.Context, url string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return true, err
	}

	if resp.StatusCode >= 500 {
		return true, fmt.Errorf("upstream returned %d for %s", resp.StatusCode, url)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("upstream returned %d for %s", resp.StatusCode, url)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return false, nil
}

// listPayload tolerates the list shapes the upstream services use
// inconsistently: a bare JSON array, a {"data": [...]} wrapper, and the HR
// system's {"employees": [...]} wrapper. Any other shape is an error rather
// than an empty list, so a schema change upstream cannot read as "no rows".
type listPayload[T any] struct {
	items []T
}

// UnmarshalJSON implements json.Unmarshaler
func (p *listPayload[T]) UnmarshalJSON(data []byte) error {
	var direct []T
	if err := json.Unmarshal(data, &direct); err == nil {
		p.items = direct
		return nil
	}
	var wrapped struct {
		Data      []T `json:"data"`
		Employees []T `json:"employees"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	// A present-but-empty array decodes to a non-nil slice, so nil here
	// means the key was absent entirely.
	switch {
	case wrapped.Data != nil:
		p.items = wrapped.Data
	case wrapped.Employees != nil:
		p.items = wrapped.Employees
	default:
		return fmt.Errorf("list payload has neither an array nor a data/employees key")
	}
	return nil
}
