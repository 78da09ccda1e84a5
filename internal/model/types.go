package model

// -----------------------------------------------------------------------------
// Public market data (websocket DEFAULT format)
// -----------------------------------------------------------------------------

// Ticker is a real-time price update for one market.
type Ticker struct {
	Code             string  `json:"code"`              // Market code (e.g. "KRW-BTC")
	TradePrice       float64 `json:"trade_price"`       // Last trade price
	TradeVolume      float64 `json:"trade_volume"`      // Last trade volume
	Change           string  `json:"change"`            // "RISE", "EVEN", "FALL"
	SignedChangeRate float64 `json:"signed_change_rate"`
	HighPrice        float64 `json:"high_price"`
	LowPrice         float64 `json:"low_price"`
	AccTradeVolume   float64 `json:"acc_trade_volume_24h"` // 24h accumulated volume
	Timestamp        int64   `json:"timestamp"`            // Exchange timestamp (ms)
}

// Trade is a single executed trade print.
type Trade struct {
	Code           string  `json:"code"`
	TradePrice     float64 `json:"trade_price"`
	TradeVolume    float64 `json:"trade_volume"`
	AskBid         string  `json:"ask_bid"`        // "ASK" or "BID" (taker side)
	SequentialID   int64   `json:"sequential_id"`  // Exchange-assigned trade sequence
	TradeTimestamp int64   `json:"trade_timestamp"`
	Timestamp      int64   `json:"timestamp"`
}

// OrderbookUnit is one price level pair in an orderbook snapshot.
type OrderbookUnit struct {
	AskPrice float64 `json:"ask_price"`
	BidPrice float64 `json:"bid_price"`
	AskSize  float64 `json:"ask_size"`
	BidSize  float64 `json:"bid_size"`
}

// Orderbook is a full depth snapshot for one market.
type Orderbook struct {
	Code         string          `json:"code"`
	TotalAskSize float64         `json:"total_ask_size"`
	TotalBidSize float64         `json:"total_bid_size"`
	Units        []OrderbookUnit `json:"orderbook_units"`
	Timestamp    int64           `json:"timestamp"`
}

// -----------------------------------------------------------------------------
// Private stream data
// -----------------------------------------------------------------------------

// MyOrder is an order state change on the authenticated stream.
type MyOrder struct {
	Code           string  `json:"code"`
	UUID           string  `json:"uuid"`
	AskBid         string  `json:"ask_bid"`
	OrderType      string  `json:"order_type"` // "limit", "price", "market"
	State          string  `json:"state"`      // "wait", "trade", "done", "cancel"
	Price          float64 `json:"price"`
	Volume         float64 `json:"volume"`
	ExecutedVolume float64 `json:"executed_volume"`
	TradesCount    int     `json:"trades_count"`
	OrderTimestamp int64   `json:"order_timestamp"`
	Timestamp      int64   `json:"timestamp"`
}

// MyAssetItem is one currency position inside a MyAsset update.
type MyAssetItem struct {
	Currency string  `json:"currency"`
	Balance  float64 `json:"balance"`
	Locked   float64 `json:"locked"`
}

// MyAsset is a balance change on the authenticated stream.
type MyAsset struct {
	AssetUUID      string        `json:"asset_uuid"`
	Assets         []MyAssetItem `json:"assets"`
	AssetTimestamp int64         `json:"asset_timestamp"`
	Timestamp      int64         `json:"timestamp"`
}
