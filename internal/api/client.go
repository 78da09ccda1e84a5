package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Signer mints per-request bearer tokens. *auth.Signer satisfies it;
// nil restricts the client to public endpoints.
type Signer interface {
	Sign() (string, error)
	SignQuery(query url.Values) (string, error)
}

// Client provides access to the Upbit REST API.
type Client struct {
	baseURL    string
	signer     Signer
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries uint
	retryDelay time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client. signer may be nil for
// public-only use.
func NewClient(baseURL string, signer Signer, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		signer:  signer,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:     slog.Default(),
		maxRetries: 3,
		retryDelay: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max uint, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryDelay = delay
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}
