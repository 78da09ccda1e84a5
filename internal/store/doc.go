// Package store persists auth tokens, trade executions, and account
// balances to PostgreSQL.
//
// Tables:
//   - auth_tokens: one signed token per purpose ("websocket", "rest")
//   - crypto_trades: order executions, upserted by order UUID
//   - account_balances: current holdings, upserted by currency
package store
