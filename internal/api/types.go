package api

// Account is a balance entry for one currency.
type Account struct {
	Currency            string `json:"currency"`
	Balance             string `json:"balance"`
	Locked              string `json:"locked"`
	AvgBuyPrice         string `json:"avg_buy_price"`
	AvgBuyPriceModified bool   `json:"avg_buy_price_modified"`
	UnitCurrency        string `json:"unit_currency"`
}

// OrderChance describes fees and available balances for a market.
type OrderChance struct {
	BidFee     string  `json:"bid_fee"`
	AskFee     string  `json:"ask_fee"`
	BidAccount Account `json:"bid_account"`
	AskAccount Account `json:"ask_account"`
}

// Order is an exchange order. Numeric fields arrive as strings and are
// passed through untouched; precision is the caller's problem.
type Order struct {
	UUID            string `json:"uuid"`
	Side            string `json:"side"` // "bid" or "ask"
	OrdType         string `json:"ord_type"`
	Price           string `json:"price"`
	State           string `json:"state"` // "wait", "done", "cancel"
	Market          string `json:"market"`
	CreatedAt       string `json:"created_at"`
	Volume          string `json:"volume"`
	RemainingVolume string `json:"remaining_volume"`
	ReservedFee     string `json:"reserved_fee"`
	RemainingFee    string `json:"remaining_fee"`
	PaidFee         string `json:"paid_fee"`
	Locked          string `json:"locked"`
	ExecutedVolume  string `json:"executed_volume"`
	TradesCount     int    `json:"trades_count"`
}

// Market is a tradable market pair.
type Market struct {
	Market      string `json:"market"`
	KoreanName  string `json:"korean_name"`
	EnglishName string `json:"english_name"`
}

// TickerQuote is a snapshot quote for one market.
type TickerQuote struct {
	Market             string  `json:"market"`
	TradePrice         float64 `json:"trade_price"`
	OpeningPrice       float64 `json:"opening_price"`
	HighPrice          float64 `json:"high_price"`
	LowPrice           float64 `json:"low_price"`
	PrevClosingPrice   float64 `json:"prev_closing_price"`
	Change             string  `json:"change"` // "RISE", "EVEN", "FALL"
	SignedChangePrice  float64 `json:"signed_change_price"`
	SignedChangeRate   float64 `json:"signed_change_rate"`
	TradeVolume        float64 `json:"trade_volume"`
	AccTradePrice24H   float64 `json:"acc_trade_price_24h"`
	AccTradeVolume24H  float64 `json:"acc_trade_volume_24h"`
	Highest52WeekPrice float64 `json:"highest_52_week_price"`
	Lowest52WeekPrice  float64 `json:"lowest_52_week_price"`
	Timestamp          int64   `json:"timestamp"`
}

// OrderbookQuoteUnit is one price level of an orderbook snapshot.
type OrderbookQuoteUnit struct {
	AskPrice float64 `json:"ask_price"`
	BidPrice float64 `json:"bid_price"`
	AskSize  float64 `json:"ask_size"`
	BidSize  float64 `json:"bid_size"`
}

// OrderbookQuote is a full orderbook snapshot for one market.
type OrderbookQuote struct {
	Market       string               `json:"market"`
	Timestamp    int64                `json:"timestamp"`
	TotalAskSize float64              `json:"total_ask_size"`
	TotalBidSize float64              `json:"total_bid_size"`
	Units        []OrderbookQuoteUnit `json:"orderbook_units"`
}

// Candle is an OHLCV bar.
type Candle struct {
	Market               string  `json:"market"`
	CandleDateTimeUTC    string  `json:"candle_date_time_utc"`
	CandleDateTimeKST    string  `json:"candle_date_time_kst"`
	OpeningPrice         float64 `json:"opening_price"`
	HighPrice            float64 `json:"high_price"`
	LowPrice             float64 `json:"low_price"`
	TradePrice           float64 `json:"trade_price"`
	Timestamp            int64   `json:"timestamp"`
	CandleAccTradePrice  float64 `json:"candle_acc_trade_price"`
	CandleAccTradeVolume float64 `json:"candle_acc_trade_volume"`
	Unit                 int     `json:"unit,omitempty"`
}
