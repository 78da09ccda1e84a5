// Package connection manages the single WebSocket connection to the
// exchange.
//
// The Manager owns the connection lifecycle:
//   - Connect is idempotent and replays the subscription registry after
//     every fresh dial
//   - Close always leaves the manager in the Disconnected state
//   - the exchange has no unsubscribe frame, so Unsubscribe drops the
//     registry entry and rebuilds the connection from what remains
//
// Reconnection policy lives in the caller (the stream receiver); the
// manager itself never retries.
package connection
