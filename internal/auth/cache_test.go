package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeStore is an in-memory auth.Store with fault injection and call counts.
type fakeStore struct {
	mu        sync.Mutex
	tokens    map[string]cachedToken
	saveCalls int32
	getCalls  int32
	failGet   bool
	failSave  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{tokens: make(map[string]cachedToken)}
}

func (f *fakeStore) Get(ctx context.Context, purpose string) (string, time.Time, error) {
	atomic.AddInt32(&f.getCalls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return "", time.Time{}, errors.New("store unavailable")
	}
	tok, ok := f.tokens[purpose]
	if !ok {
		return "", time.Time{}, ErrTokenNotFound
	}
	return tok.value, tok.expiresAt, nil
}

func (f *fakeStore) Save(ctx context.Context, purpose, token string, expiresAt time.Time) error {
	atomic.AddInt32(&f.saveCalls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return errors.New("store unavailable")
	}
	f.tokens[purpose] = cachedToken{value: token, expiresAt: expiresAt}
	return nil
}

func newTestCache(store Store) *Cache {
	return NewCache(NewSigner("access", "secret"), store, time.Hour, nil)
}

func TestCache_MintAndPersist(t *testing.T) {
	store := newFakeStore()
	cache := newTestCache(store)
	ctx := context.Background()

	tok, err := cache.Token(ctx, "websocket")
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if tok == "" {
		t.Fatal("empty token")
	}
	if n := atomic.LoadInt32(&store.saveCalls); n != 1 {
		t.Errorf("saveCalls = %d, want 1", n)
	}

	// Second call is served from memory: no further store traffic.
	gets := atomic.LoadInt32(&store.getCalls)
	tok2, err := cache.Token(ctx, "websocket")
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if tok2 != tok {
		t.Error("cached token differs from minted token")
	}
	if atomic.LoadInt32(&store.getCalls) != gets {
		t.Error("cache hit should not query the store")
	}
}

func TestCache_AdoptsStoredToken(t *testing.T) {
	store := newFakeStore()
	store.tokens["websocket"] = cachedToken{
		value:     "stored-token",
		expiresAt: time.Now().Add(time.Hour),
	}

	cache := newTestCache(store)

	tok, err := cache.Token(context.Background(), "websocket")
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if tok != "stored-token" {
		t.Errorf("token = %q, want stored-token", tok)
	}
	if n := atomic.LoadInt32(&store.saveCalls); n != 0 {
		t.Errorf("saveCalls = %d, want 0 (adopted, not minted)", n)
	}
}

func TestCache_IgnoresExpiredStoredToken(t *testing.T) {
	store := newFakeStore()
	store.tokens["websocket"] = cachedToken{
		value:     "stale-token",
		expiresAt: time.Now().Add(-time.Minute),
	}

	cache := newTestCache(store)

	tok, err := cache.Token(context.Background(), "websocket")
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if tok == "stale-token" {
		t.Error("expired stored token was handed out")
	}
	if n := atomic.LoadInt32(&store.saveCalls); n != 1 {
		t.Errorf("saveCalls = %d, want 1 (new mint persisted)", n)
	}
}

func TestCache_ExpiredMemoryTokenRefreshed(t *testing.T) {
	store := newFakeStore()
	cache := newTestCache(store)
	ctx := context.Background()

	first, err := cache.Token(ctx, "websocket")
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}

	// Jump past expiry.
	cache.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	second, err := cache.Token(ctx, "websocket")
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if second == first {
		t.Error("expired token was served from memory")
	}
}

func TestCache_SingleFlight(t *testing.T) {
	store := newFakeStore()
	cache := newTestCache(store)
	ctx := context.Background()

	const callers = 16
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.Token(ctx, "websocket")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Errorf("caller %d got a different token", i)
		}
	}

	if n := atomic.LoadInt32(&store.saveCalls); n > 1 {
		t.Errorf("saveCalls = %d, want at most 1", n)
	}
}

func TestCache_PersistFailureDegrades(t *testing.T) {
	store := newFakeStore()
	store.failSave = true

	cache := newTestCache(store)
	ctx := context.Background()

	tok, err := cache.Token(ctx, "websocket")
	if err != nil {
		t.Fatalf("Token failed despite save-only fault: %v", err)
	}
	if tok == "" {
		t.Fatal("empty token")
	}

	// The in-memory token keeps serving.
	tok2, err := cache.Token(ctx, "websocket")
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if tok2 != tok {
		t.Error("in-memory token not reused after persist failure")
	}
}

func TestCache_StoreLookupFailureDegrades(t *testing.T) {
	store := newFakeStore()
	store.failGet = true

	cache := newTestCache(store)

	if _, err := cache.Token(context.Background(), "websocket"); err != nil {
		t.Fatalf("Token failed despite lookup fault: %v", err)
	}
}

func TestCache_NilStore(t *testing.T) {
	cache := newTestCache(nil)

	tok, err := cache.Token(context.Background(), "websocket")
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if tok == "" {
		t.Fatal("empty token")
	}
}

func TestCache_PurposesIndependent(t *testing.T) {
	store := newFakeStore()
	cache := newTestCache(store)
	ctx := context.Background()

	ws, err := cache.Token(ctx, "websocket")
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	rest, err := cache.Token(ctx, "rest")
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}

	if ws == rest {
		t.Error("distinct purposes share a token")
	}
	if n := atomic.LoadInt32(&store.saveCalls); n != 2 {
		t.Errorf("saveCalls = %d, want 2", n)
	}
}
