// Package subscription tracks the desired set of (market, channel) pairs
// and builds the consolidated subscribe frames the exchange expects.
//
// The registry is the single source of truth for what the connection
// should be receiving; after any reconnect the full registry is replayed.
package subscription
