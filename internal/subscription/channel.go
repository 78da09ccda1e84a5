package subscription

// Channel is a streamed data category.
type Channel string

const (
	ChannelTicker    Channel = "ticker"
	ChannelOrderbook Channel = "orderbook"
	ChannelTrade     Channel = "trade"
	ChannelMyOrder   Channel = "myOrder"
	ChannelMyAsset   Channel = "myAsset"
)

// Channels lists all channel types in the order resubscription replays them.
var Channels = []Channel{
	ChannelTicker,
	ChannelOrderbook,
	ChannelTrade,
	ChannelMyOrder,
	ChannelMyAsset,
}

// Private reports whether the channel requires an authenticated connection.
// Public market data (ticker, orderbook, trade) does not.
func (c Channel) Private() bool {
	return c == ChannelMyOrder || c == ChannelMyAsset
}

// Valid reports whether c is a known channel type.
func (c Channel) Valid() bool {
	switch c {
	case ChannelTicker, ChannelOrderbook, ChannelTrade, ChannelMyOrder, ChannelMyAsset:
		return true
	}
	return false
}
