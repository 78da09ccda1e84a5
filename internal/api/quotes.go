package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// GetMarkets fetches every tradable market pair.
func (c *Client) GetMarkets(ctx context.Context) ([]Market, error) {
	var markets []Market
	if err := c.get(ctx, "/v1/market/all", nil, &markets); err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}
	return markets, nil
}

// GetTickers fetches snapshot quotes for the given markets.
func (c *Client) GetTickers(ctx context.Context, markets ...string) ([]TickerQuote, error) {
	query := url.Values{}
	query.Set("markets", strings.Join(markets, ","))

	var quotes []TickerQuote
	if err := c.get(ctx, "/v1/ticker", query, &quotes); err != nil {
		return nil, fmt.Errorf("get tickers: %w", err)
	}
	return quotes, nil
}

// GetOrderbooks fetches orderbook snapshots for the given markets.
func (c *Client) GetOrderbooks(ctx context.Context, markets ...string) ([]OrderbookQuote, error) {
	query := url.Values{}
	query.Set("markets", strings.Join(markets, ","))

	var books []OrderbookQuote
	if err := c.get(ctx, "/v1/orderbook", query, &books); err != nil {
		return nil, fmt.Errorf("get orderbooks: %w", err)
	}
	return books, nil
}
