// Package fetch provides the HTTP page-fetching collaborator used by the
// crawler: bounded timeouts, a polite User-Agent, and retry with exponential
// backoff on transient failures.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// UserAgent identifies the crawler to remote servers.
	UserAgent = "den-events/1.0 (github.com/charliewiggs/den)"

	// DefaultTimeout bounds a single request attempt.
	DefaultTimeout = 12 * time.Second

	// maxBodyBytes caps how much of a page is read. Event listing pages are
	// small; anything past this is not worth parsing.
	maxBodyBytes = 10 << 20

	defaultMaxRetries = 2
)

// Client fetches the text of web pages.
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxRetries uint64
}

// New creates a fetch client. A non-positive timeout falls back to
// DefaultTimeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  UserAgent,
		maxRetries: defaultMaxRetries,
	}
}

// Fetch retrieves the body of pageURL as text. Network errors and 5xx
// responses are retried with exponential backoff; 4xx responses are not.
// The context cancels both in-flight requests and the backoff waits.
func (c *Client) Fetch(ctx context.Context, pageURL string) (string, error) {
	var body string

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("fetching page: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
		body = string(data)
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(attempt, policy); err != nil {
		return "", err
	}
	return body, nil
}

func newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	return b
}
