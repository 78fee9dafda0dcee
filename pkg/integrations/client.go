package integrations

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	sterrors "github.com/starelements/starelements/pkg/errors"
	"github.com/starelements/starelements/pkg/httputil"
	"github.com/starelements/starelements/pkg/observability"
)

// Client provides shared HTTP functionality for registry requests.
// It handles timeouts, optional retries and error classification.
type Client struct {
	http     *http.Client
	timeout  time.Duration
	attempts int
}

// NewClient creates a Client with the given per-request timeout and attempt
// count. A non-positive timeout selects [DefaultTimeout]; attempts below one
// are treated as one.
func NewClient(timeout time.Duration, attempts int) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:     NewHTTPClient(),
		timeout:  timeout,
		attempts: max(attempts, 1),
	}
}

// GetBytes performs an HTTP GET request and returns the full response body.
// The body is read completely before the request's deadline is released.
func (c *Client) GetBytes(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte
	err := httputil.Retry(ctx, c.attempts, time.Second, func() error {
		data, err := c.doRequest(ctx, rawURL)
		if err != nil {
			return err
		}
		body = data
		return nil
	})
	if err != nil {
		var re *httputil.RetryableError
		if errors.As(err, &re) {
			return nil, re.Err
		}
		return nil, err
	}
	return body, nil
}

func (c *Client) doRequest(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, sterrors.Wrap(sterrors.ErrCodeInvalidInput, err, "build request for %s", rawURL)
	}
	req.Header.Set("User-Agent", userAgent)

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, classifyTransportError(ctx, rawURL, err)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(rawURL, resp.StatusCode); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, classifyTransportError(ctx, rawURL, err)
	}
	return data, nil
}

func classifyTransportError(ctx context.Context, rawURL string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || isTimeout(err) {
		return httputil.Retryable(sterrors.Wrap(sterrors.ErrCodeTimeout, err, "request to %s timed out", rawURL))
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return httputil.Retryable(sterrors.Wrap(sterrors.ErrCodeNetwork, err, "request to %s failed", rawURL))
}

func isTimeout(err error) bool {
	var ue *url.Error
	return errors.As(err, &ue) && ue.Timeout()
}

func checkStatus(rawURL string, code int) error {
	if code >= 200 && code < 300 {
		return nil
	}
	err := sterrors.Wrap(sterrors.ErrCodeHTTPStatus, &sterrors.StatusError{URL: rawURL, StatusCode: code}, "GET %s", rawURL)
	if code >= 500 {
		return httputil.Retryable(err)
	}
	return err
}
