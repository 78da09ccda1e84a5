package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/avast/retry-go"
)

// APIError represents an error response from the Upbit API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upbit api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// doRequest performs a single HTTP request. For private requests the
// JWT binds the query parameters via their SHA-512 hash, so the exact
// same encoding must go on the wire.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, private bool) ([]byte, error) {
	fullURL := c.baseURL + path

	var body io.Reader
	if len(query) > 0 {
		if method == http.MethodGet || method == http.MethodDelete {
			fullURL += "?" + query.Encode()
		} else {
			params := make(map[string]string, len(query))
			for k := range query {
				params[k] = query.Get(k)
			}
			data, err := json.Marshal(params)
			if err != nil {
				return nil, fmt.Errorf("marshal request body: %w", err)
			}
			body = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if private {
		if c.signer == nil {
			return nil, errors.New("private endpoint requires credentials")
		}
		token, err := c.signer.SignQuery(query)
		if err != nil {
			return nil, fmt.Errorf("sign request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       data,
		}
	}

	return data, nil
}

// doWithRetry performs a request, retrying retryable API errors with a
// fixed delay. A fresh token is minted on every attempt so the nonce
// stays single-use.
func (c *Client) doWithRetry(ctx context.Context, method, path string, query url.Values, private bool) ([]byte, error) {
	var body []byte

	err := retry.Do(
		func() error {
			var err error
			body, err = c.doRequest(ctx, method, path, query, private)
			return err
		},
		retry.Attempts(c.maxRetries+1),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.IsRetryable()
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying request",
				"attempt", n+1,
				"path", path,
				"error", err,
			)
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// get performs a public GET request and decodes the response.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	return c.call(ctx, http.MethodGet, path, query, false, result)
}

// getPrivate performs a signed GET request and decodes the response.
func (c *Client) getPrivate(ctx context.Context, path string, query url.Values, result any) error {
	return c.call(ctx, http.MethodGet, path, query, true, result)
}

// call performs a request with retries and decodes the JSON response.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, private bool, result any) error {
	body, err := c.doWithRetry(ctx, method, path, query, private)
	if err != nil {
		return err
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}
