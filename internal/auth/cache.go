package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrTokenNotFound is returned by Store.Get when no token is persisted
// for the requested purpose.
var ErrTokenNotFound = errors.New("auth: token not found")

// Store is the persistent backing for minted tokens. The cache treats it
// as opaque and degrades to memory-only operation when it fails.
type Store interface {
	Get(ctx context.Context, purpose string) (token string, expiresAt time.Time, err error)
	Save(ctx context.Context, purpose, token string, expiresAt time.Time) error
}

type cachedToken struct {
	value     string
	expiresAt time.Time
}

// Cache mints, caches, and persists short-lived signed tokens.
//
// Concurrent callers during an invalid-token window collapse into a single
// mint+persist; all observe the same resulting token.
type Cache struct {
	signer *Signer
	store  Store // may be nil (memory-only)
	ttl    time.Duration
	logger *slog.Logger

	mu     sync.Mutex
	tokens map[string]cachedToken

	flight singleflight.Group

	// now is replaceable in tests.
	now func() time.Time
}

// NewCache creates a token cache. store may be nil to run memory-only.
func NewCache(signer *Signer, store Store, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		signer: signer,
		store:  store,
		ttl:    ttl,
		logger: logger,
		tokens: make(map[string]cachedToken),
		now:    time.Now,
	}
}

// Token returns a valid token for the given purpose, minting one if needed.
func (c *Cache) Token(ctx context.Context, purpose string) (string, error) {
	if tok, ok := c.cached(purpose); ok {
		return tok, nil
	}

	v, err, _ := c.flight.Do(purpose, func() (interface{}, error) {
		// A caller queued behind the flight may arrive just after a refresh.
		if tok, ok := c.cached(purpose); ok {
			return tok, nil
		}
		return c.refresh(ctx, purpose)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// cached returns the in-memory token if it has not expired.
func (c *Cache) cached(purpose string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tok, ok := c.tokens[purpose]
	if !ok || !c.now().Before(tok.expiresAt) {
		return "", false
	}
	return tok.value, true
}

// refresh adopts a stored token if still valid, otherwise mints and
// persists a new one. Persistence failures are logged, not returned.
func (c *Cache) refresh(ctx context.Context, purpose string) (string, error) {
	now := c.now()

	if c.store != nil {
		stored, expiresAt, err := c.store.Get(ctx, purpose)
		switch {
		case err == nil && now.Before(expiresAt):
			c.put(purpose, stored, expiresAt)
			return stored, nil
		case err != nil && !errors.Is(err, ErrTokenNotFound):
			c.logger.Warn("token store lookup failed", "purpose", purpose, "error", err)
		}
	}

	minted, err := c.signer.Sign()
	if err != nil {
		return "", err
	}
	expiresAt := now.Add(c.ttl)

	if c.store != nil {
		if err := c.store.Save(ctx, purpose, minted, expiresAt); err != nil {
			c.logger.Warn("token persist failed, serving in-memory token",
				"purpose", purpose,
				"error", err,
			)
		}
	}

	c.put(purpose, minted, expiresAt)
	return minted, nil
}

func (c *Cache) put(purpose, token string, expiresAt time.Time) {
	c.mu.Lock()
	c.tokens[purpose] = cachedToken{value: token, expiresAt: expiresAt}
	c.mu.Unlock()
}
