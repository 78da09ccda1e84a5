package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// CandleOptions narrows a candle query. Count 0 uses the server default;
// To "" means now.
type CandleOptions struct {
	Count int
	To    string // exclusive upper bound, "2026-08-23T00:00:00Z" format
}

func (o CandleOptions) query(market string) url.Values {
	query := url.Values{}
	query.Set("market", market)
	if o.Count > 0 {
		query.Set("count", strconv.Itoa(o.Count))
	}
	if o.To != "" {
		query.Set("to", o.To)
	}
	return query
}

// GetMinuteCandles fetches minute candles at the given unit
// (1, 3, 5, 15, 10, 30, 60 or 240).
func (c *Client) GetMinuteCandles(ctx context.Context, market string, unit int, opts CandleOptions) ([]Candle, error) {
	var candles []Candle
	path := "/v1/candles/minutes/" + strconv.Itoa(unit)
	if err := c.get(ctx, path, opts.query(market), &candles); err != nil {
		return nil, fmt.Errorf("get minute candles %s/%d: %w", market, unit, err)
	}
	return candles, nil
}

// GetDayCandles fetches daily candles.
func (c *Client) GetDayCandles(ctx context.Context, market string, opts CandleOptions) ([]Candle, error) {
	var candles []Candle
	if err := c.get(ctx, "/v1/candles/days", opts.query(market), &candles); err != nil {
		return nil, fmt.Errorf("get day candles %s: %w", market, err)
	}
	return candles, nil
}

// GetWeekCandles fetches weekly candles.
func (c *Client) GetWeekCandles(ctx context.Context, market string, opts CandleOptions) ([]Candle, error) {
	var candles []Candle
	if err := c.get(ctx, "/v1/candles/weeks", opts.query(market), &candles); err != nil {
		return nil, fmt.Errorf("get week candles %s: %w", market, err)
	}
	return candles, nil
}

// GetMonthCandles fetches monthly candles.
func (c *Client) GetMonthCandles(ctx context.Context, market string, opts CandleOptions) ([]Candle, error) {
	var candles []Candle
	if err := c.get(ctx, "/v1/candles/months", opts.query(market), &candles); err != nil {
		return nil, fmt.Errorf("get month candles %s: %w", market, err)
	}
	return candles, nil
}
