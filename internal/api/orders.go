package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// PlaceOrderRequest describes a new order. Volume and Price are decimal
// strings; which are required depends on OrdType:
//
//	"limit"  needs both Volume and Price
//	"price"  is a market buy by total spend, Price only
//	"market" is a market sell, Volume only
type PlaceOrderRequest struct {
	Market  string
	Side    string // "bid" or "ask"
	Volume  string
	Price   string
	OrdType string
}

// PlaceOrder submits a new order.
func (c *Client) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	query := url.Values{}
	query.Set("market", req.Market)
	query.Set("side", req.Side)
	query.Set("ord_type", req.OrdType)
	if req.Volume != "" {
		query.Set("volume", req.Volume)
	}
	if req.Price != "" {
		query.Set("price", req.Price)
	}

	var order Order
	if err := c.call(ctx, http.MethodPost, "/v1/orders", query, true, &order); err != nil {
		return nil, fmt.Errorf("place order %s %s: %w", req.Side, req.Market, err)
	}
	return &order, nil
}

// CancelOrder cancels an open order by uuid.
func (c *Client) CancelOrder(ctx context.Context, uuid string) (*Order, error) {
	query := url.Values{}
	query.Set("uuid", uuid)

	var order Order
	if err := c.call(ctx, http.MethodDelete, "/v1/order", query, true, &order); err != nil {
		return nil, fmt.Errorf("cancel order %s: %w", uuid, err)
	}
	return &order, nil
}

// GetOrder fetches a single order by uuid.
func (c *Client) GetOrder(ctx context.Context, uuid string) (*Order, error) {
	query := url.Values{}
	query.Set("uuid", uuid)

	var order Order
	if err := c.getPrivate(ctx, "/v1/order", query, &order); err != nil {
		return nil, fmt.Errorf("get order %s: %w", uuid, err)
	}
	return &order, nil
}

// GetOrders fetches orders for a market filtered by state ("wait",
// "done", "cancel"). Empty state means every state.
func (c *Client) GetOrders(ctx context.Context, market, state string) ([]Order, error) {
	query := url.Values{}
	query.Set("market", market)
	if state != "" {
		query.Set("state", state)
	}

	var orders []Order
	if err := c.getPrivate(ctx, "/v1/orders", query, &orders); err != nil {
		return nil, fmt.Errorf("get orders %s: %w", market, err)
	}
	return orders, nil
}
