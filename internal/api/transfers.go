package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Transfer is a deposit or withdrawal record. Amounts and fees arrive as
// strings, same as order numerics.
type Transfer struct {
	Type            string `json:"type"` // "deposit" or "withdraw"
	UUID            string `json:"uuid"`
	Currency        string `json:"currency"`
	NetType         string `json:"net_type"`
	TxID            string `json:"txid"`
	State           string `json:"state"`
	CreatedAt       string `json:"created_at"`
	DoneAt          string `json:"done_at"`
	Amount          string `json:"amount"`
	Fee             string `json:"fee"`
	TransactionType string `json:"transaction_type"`
}

// DepositAddress is a funding address for one currency.
type DepositAddress struct {
	Currency         string `json:"currency"`
	NetType          string `json:"net_type"`
	DepositAddress   string `json:"deposit_address"`
	SecondaryAddress string `json:"secondary_address"`
}

// TransferOptions narrows deposit/withdrawal listings. Zero values are
// omitted from the query; Limit is capped by the exchange at 100.
type TransferOptions struct {
	Currency string
	TxID     string
	Limit    int
}

func (o TransferOptions) query() url.Values {
	query := url.Values{}
	if o.Currency != "" {
		query.Set("currency", o.Currency)
	}
	if o.TxID != "" {
		query.Set("txid", o.TxID)
	}
	if o.Limit > 0 {
		query.Set("limit", strconv.Itoa(o.Limit))
	}
	return query
}

// GetDeposits lists deposit records matching opts.
func (c *Client) GetDeposits(ctx context.Context, opts TransferOptions) ([]Transfer, error) {
	var deposits []Transfer
	if err := c.getPrivate(ctx, "/v1/deposits", opts.query(), &deposits); err != nil {
		return nil, fmt.Errorf("get deposits: %w", err)
	}
	return deposits, nil
}

// GetWithdraws lists withdrawal records matching opts.
func (c *Client) GetWithdraws(ctx context.Context, opts TransferOptions) ([]Transfer, error) {
	var withdraws []Transfer
	if err := c.getPrivate(ctx, "/v1/withdraws", opts.query(), &withdraws); err != nil {
		return nil, fmt.Errorf("get withdraws: %w", err)
	}
	return withdraws, nil
}

// GetDepositAddresses fetches every registered deposit address.
func (c *Client) GetDepositAddresses(ctx context.Context) ([]DepositAddress, error) {
	var addrs []DepositAddress
	if err := c.getPrivate(ctx, "/v1/deposits/addresses", nil, &addrs); err != nil {
		return nil, fmt.Errorf("get deposit addresses: %w", err)
	}
	return addrs, nil
}

// GetWithdrawAddresses fetches every registered withdrawal address.
func (c *Client) GetWithdrawAddresses(ctx context.Context) ([]DepositAddress, error) {
	var addrs []DepositAddress
	if err := c.getPrivate(ctx, "/v1/withdraws/addresses", nil, &addrs); err != nil {
		return nil, fmt.Errorf("get withdraw addresses: %w", err)
	}
	return addrs, nil
}
