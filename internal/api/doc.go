// Package api provides a client for the Upbit REST API.
//
// Public endpoints (markets, tickers, orderbooks, candles) need no
// credentials. Private endpoints (accounts, orders) sign each request
// with a per-request JWT carrying a hash of the query parameters.
package api
