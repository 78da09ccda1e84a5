// Package model defines shared data types for the Upbit streaming client.
//
// Conventions:
//   - Wire field names follow Upbit's DEFAULT websocket format.
//   - Prices and volumes from quote endpoints are float64; order endpoints
//     return them as decimal strings and are kept as strings.
//   - Timestamps from the exchange are int64 milliseconds since Unix epoch.
package model
