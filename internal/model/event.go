package model

import (
	"encoding/json"
	"errors"
	"time"
)

// Event is a decoded inbound frame from the streaming connection.
//
// Only the routing envelope (type and market code) is parsed eagerly; the
// full payload is retained as raw JSON and decoded on demand by the typed
// accessors below. Ownership passes from the receiver to the processor to
// the consumer callback and is not retained afterward.
type Event struct {
	Type       string          // channel type ("ticker", "trade", "orderbook", "myOrder", "myAsset")
	Code       string          // market code (e.g. "KRW-BTC"); empty for asset events
	Raw        json.RawMessage // complete frame payload
	ReceivedAt time.Time       // local timestamp when the frame was read
}

type eventEnvelope struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

// DecodeEvent parses a raw frame into an Event. The frame must be a JSON
// object; anything else is a decode failure and the caller drops the frame.
func DecodeEvent(data []byte, receivedAt time.Time) (Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Event{}, err
	}
	if env.Type == "" {
		return Event{}, errors.New("frame has no type field")
	}

	raw := make(json.RawMessage, len(data))
	copy(raw, data)

	return Event{
		Type:       env.Type,
		Code:       env.Code,
		Raw:        raw,
		ReceivedAt: receivedAt,
	}, nil
}

// Ticker decodes the event payload as a ticker update.
func (e Event) Ticker() (Ticker, error) {
	var t Ticker
	err := json.Unmarshal(e.Raw, &t)
	return t, err
}

// Trade decodes the event payload as a trade print.
func (e Event) Trade() (Trade, error) {
	var t Trade
	err := json.Unmarshal(e.Raw, &t)
	return t, err
}

// Orderbook decodes the event payload as an orderbook snapshot.
func (e Event) Orderbook() (Orderbook, error) {
	var o Orderbook
	err := json.Unmarshal(e.Raw, &o)
	return o, err
}

// MyOrder decodes the event payload as a private order update.
func (e Event) MyOrder() (MyOrder, error) {
	var m MyOrder
	err := json.Unmarshal(e.Raw, &m)
	return m, err
}

// MyAsset decodes the event payload as a private asset update.
func (e Event) MyAsset() (MyAsset, error) {
	var m MyAsset
	err := json.Unmarshal(e.Raw, &m)
	return m, err
}
