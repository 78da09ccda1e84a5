// Package database provides the PostgreSQL connection pool used for
// auth-token persistence and trade/balance records.
package database
