package api

import (
	"context"
	"fmt"
	"net/url"
)

// GetAccounts fetches every balance the account holds.
func (c *Client) GetAccounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := c.getPrivate(ctx, "/v1/accounts", nil, &accounts); err != nil {
		return nil, fmt.Errorf("get accounts: %w", err)
	}
	return accounts, nil
}

// GetOrderChance fetches fees and available balances for a market.
func (c *Client) GetOrderChance(ctx context.Context, market string) (*OrderChance, error) {
	query := url.Values{}
	query.Set("market", market)

	var chance OrderChance
	if err := c.getPrivate(ctx, "/v1/orders/chance", query, &chance); err != nil {
		return nil, fmt.Errorf("get order chance %s: %w", market, err)
	}
	return &chance, nil
}
