package model

import "time"

// TradeRecord is a persisted order execution row (crypto_trades table).
type TradeRecord struct {
	Market         string
	UUID           string // Order UUID, unique per order
	Side           string // "bid" or "ask"
	Price          float64
	Volume         float64
	ExecutedVolume float64
	ExecutedPrice  float64
	OrderState     string
	CreatedAt      time.Time
	TradeTimestamp time.Time
}

// Balance is a persisted account balance row (account_balances table),
// upserted by currency.
type Balance struct {
	Currency    string
	Balance     float64
	Locked      float64
	AvgBuyPrice float64
}
