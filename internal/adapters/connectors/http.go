package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// client is the HTTP core shared by the three connectors: one base URL,
// per-connector auth decoration, and retry with exponential backoff on
// transient failures.
type client struct {
	baseURL     string
	session     *http.Client
	maxAttempts int
	retryDelay  time.Duration
	decorate    func(*http.Request)
	log         hclog.Logger
}

func newClient(baseURL string, timeout time.Duration, attempts int, delay time.Duration, decorate func(*http.Request), log hclog.Logger) *client {
	if attempts < 1 {
		attempts = 1
	}
	return &client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		session:     &http.Client{Timeout: timeout},
		maxAttempts: attempts,
		retryDelay:  delay,
		decorate:    decorate,
		log:         log,
	}
}

func (c *client) newRequest(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Request, error) {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.decorate != nil {
		c.decorate(req)
	}

	return req, nil
}

func (c *client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429, 5xx)
// with exponential backoff while respecting context cancellation.
func (c *client) doWithRetry(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Response, error) {
	backoff := c.retryDelay
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := c.newRequest(ctx, method, path, query, body)
		if err != nil {
			return nil, err
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}
		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == c.maxAttempts {
			return nil, lastErr
		}

		c.log.Warn("request failed, retrying",
			"method", method, "path", path,
			"attempt", attempt, "max_attempts", c.maxAttempts, "err", err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

// getJSON issues a GET and decodes the response body into out.
// Pass a *json.RawMessage to defer decoding.
func (c *client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.roundTrip(ctx, http.MethodGet, path, query, nil, out)
}

func (c *client) postJSON(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	return c.roundTrip(ctx, http.MethodPost, path, nil, b, out)
}

func (c *client) putJSON(ctx context.Context, path string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	return c.roundTrip(ctx, http.MethodPut, path, nil, b, nil)
}

func (c *client) roundTrip(ctx context.Context, method, path string, query url.Values, body []byte, out any) error {
	resp, err := c.doWithRetry(ctx, method, path, query, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
