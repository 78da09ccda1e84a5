package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/djdlzl/crypto-trading/internal/auth"
	"github.com/djdlzl/crypto-trading/internal/model"
)

// Store provides persistence for tokens and trading records.
// It implements auth.Store for the token cache.
type Store struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store backed by the given pool.
func New(db *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// EnsureSchema creates the required tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS auth_tokens (
			id BIGSERIAL PRIMARY KEY,
			token_type TEXT NOT NULL,
			token TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS crypto_trades (
			id BIGSERIAL PRIMARY KEY,
			market TEXT NOT NULL,
			uuid TEXT UNIQUE NOT NULL,
			side TEXT NOT NULL,
			price NUMERIC(20,8) NOT NULL,
			volume NUMERIC(20,8) NOT NULL,
			executed_volume NUMERIC(20,8) NOT NULL,
			executed_price NUMERIC(20,8) NOT NULL,
			order_state TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			trade_timestamp TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS account_balances (
			id BIGSERIAL PRIMARY KEY,
			currency TEXT UNIQUE NOT NULL,
			balance NUMERIC(20,8) NOT NULL,
			locked NUMERIC(20,8) NOT NULL,
			avg_buy_price NUMERIC(20,8) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// Get returns the stored token for a purpose, or auth.ErrTokenNotFound.
func (s *Store) Get(ctx context.Context, purpose string) (string, time.Time, error) {
	var token string
	var expiresAt time.Time

	err := s.db.QueryRow(ctx,
		`SELECT token, expires_at FROM auth_tokens
		 WHERE token_type = $1
		 ORDER BY created_at DESC LIMIT 1`,
		purpose,
	).Scan(&token, &expiresAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", time.Time{}, auth.ErrTokenNotFound
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("query token: %w", err)
	}

	return token, expiresAt, nil
}

// Save replaces the stored token for a purpose.
func (s *Store) Save(ctx context.Context, purpose, token string, expiresAt time.Time) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM auth_tokens WHERE token_type = $1`, purpose,
	); err != nil {
		return fmt.Errorf("delete old token: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO auth_tokens (token_type, token, expires_at) VALUES ($1, $2, $3)`,
		purpose, token, expiresAt,
	); err != nil {
		return fmt.Errorf("insert token: %w", err)
	}

	return tx.Commit(ctx)
}

// SaveTrade upserts an order execution record keyed by order UUID.
func (s *Store) SaveTrade(ctx context.Context, rec model.TradeRecord) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO crypto_trades (
			market, uuid, side, price, volume,
			executed_volume, executed_price, order_state,
			created_at, trade_timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (uuid) DO UPDATE SET
			executed_volume = EXCLUDED.executed_volume,
			executed_price = EXCLUDED.executed_price,
			order_state = EXCLUDED.order_state,
			trade_timestamp = EXCLUDED.trade_timestamp`,
		rec.Market, rec.UUID, rec.Side, rec.Price, rec.Volume,
		rec.ExecutedVolume, rec.ExecutedPrice, rec.OrderState,
		rec.CreatedAt, rec.TradeTimestamp,
	)
	if err != nil {
		return fmt.Errorf("save trade: %w", err)
	}
	return nil
}

// UpdateBalance upserts an account balance record keyed by currency.
func (s *Store) UpdateBalance(ctx context.Context, bal model.Balance) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO account_balances (currency, balance, locked, avg_buy_price, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (currency) DO UPDATE SET
			balance = EXCLUDED.balance,
			locked = EXCLUDED.locked,
			avg_buy_price = EXCLUDED.avg_buy_price,
			updated_at = now()`,
		bal.Currency, bal.Balance, bal.Locked, bal.AvgBuyPrice,
	)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}
