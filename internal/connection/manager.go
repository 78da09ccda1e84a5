package connection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/djdlzl/crypto-trading/internal/subscription"
)

// TokenPurpose names the token the manager requests for authenticated
// handshakes.
const TokenPurpose = "websocket"

// TokenSource supplies bearer tokens for authenticated connections.
// *auth.Cache satisfies it.
type TokenSource interface {
	Token(ctx context.Context, purpose string) (string, error)
}

// Manager owns the single WebSocket connection and reconciles it with
// the subscription registry.
//
// The exchange accepts subscribe frames but has no unsubscribe frame, so
// removal is implemented as close + reconnect + full registry replay.
type Manager struct {
	cfg      ManagerConfig
	registry *subscription.Registry
	tokens   TokenSource // may be nil (public channels only)
	logger   *slog.Logger

	// newClient is replaceable in tests.
	newClient func(ClientConfig, *slog.Logger) Client

	mu     sync.Mutex
	client Client
	authed bool // current connection performed the bearer handshake

	state atomic.Int32
}

// NewManager creates a connection manager. tokens may be nil when only
// public channels will be used.
func NewManager(cfg ManagerConfig, registry *subscription.Registry, tokens TokenSource, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		cfg:       cfg,
		registry:  registry,
		tokens:    tokens,
		logger:    logger,
		newClient: NewClient,
	}
}

// State returns the current connection state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Connect establishes the connection if one is not already healthy, then
// replays every registered subscription. Calling Connect while connected
// is a no-op. The caller owns retry policy; a failed dial is returned
// with the manager left Disconnected.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectLocked(ctx)
}

func (m *Manager) connectLocked(ctx context.Context) error {
	if m.State() == Connected && m.client != nil && m.client.IsConnected() {
		return nil
	}

	// Drop any half-dead client before dialing fresh.
	if m.client != nil {
		m.client.Close()
		m.client = nil
	}

	m.state.Store(int32(Connecting))

	clientCfg := ClientConfig{
		URL:          m.cfg.WSURL,
		PingTimeout:  m.cfg.PingTimeout,
		WriteTimeout: m.cfg.WriteTimeout,
		BufferSize:   m.cfg.BufferSize,
	}

	authed := false
	if m.registry.HasPrivate() && m.tokens != nil {
		token, err := m.tokens.Token(ctx, TokenPurpose)
		if err != nil {
			m.state.Store(int32(Disconnected))
			return fmt.Errorf("fetch token: %w", err)
		}
		clientCfg.Token = token
		authed = true
	}

	cl := m.newClient(clientCfg, m.logger)
	if err := cl.Connect(ctx); err != nil {
		m.state.Store(int32(Disconnected))
		return fmt.Errorf("dial %s: %w", m.cfg.WSURL, err)
	}

	m.client = cl
	m.authed = authed
	m.state.Store(int32(Connected))

	if err := m.resubscribeLocked(); err != nil {
		cl.Close()
		m.client = nil
		m.state.Store(int32(Disconnected))
		return fmt.Errorf("replay subscriptions: %w", err)
	}

	return nil
}

// resubscribeLocked sends one consolidated frame per channel type that
// has registered markets.
func (m *Manager) resubscribeLocked() error {
	snapshot := m.registry.Snapshot()
	for _, ch := range subscription.Channels {
		codes, ok := snapshot[ch]
		if !ok {
			continue
		}
		frame, err := subscription.BuildFrame(ch, codes)
		if err != nil {
			return err
		}
		if err := m.client.Send(frame); err != nil {
			return fmt.Errorf("send %s frame: %w", ch, err)
		}
		m.logger.Debug("resubscribed", "channel", ch, "markets", len(codes))
	}
	return nil
}

// Close tears down the connection. The manager is always Disconnected
// afterwards, whatever the underlying close returned.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked()
}

func (m *Manager) closeLocked() error {
	defer m.state.Store(int32(Disconnected))

	if m.client == nil {
		return nil
	}
	err := m.client.Close()
	m.client = nil
	m.authed = false
	return err
}

// Subscribe registers markets under a channel type and sends the
// consolidated subscribe frame for that channel. If the manager is not
// connected it connects instead; the replay covers the new entry.
func (m *Manager) Subscribe(ctx context.Context, ch subscription.Channel, markets ...string) error {
	if !ch.Valid() {
		return fmt.Errorf("unknown channel type %q", ch)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	codes := m.registry.Add(ch, markets...)

	if m.State() != Connected || m.client == nil || !m.client.IsConnected() {
		return m.connectLocked(ctx)
	}

	// A private channel on a connection that never authenticated needs a
	// fresh handshake carrying the token.
	if ch.Private() && !m.authed {
		m.closeLocked()
		return m.connectLocked(ctx)
	}

	frame, err := subscription.BuildFrame(ch, codes)
	if err != nil {
		return err
	}
	if err := m.client.Send(frame); err != nil {
		m.closeLocked()
		return fmt.Errorf("send %s frame: %w", ch, err)
	}

	m.logger.Info("subscribed", "channel", ch, "markets", codes)
	return nil
}

// Unsubscribe removes a market from the given channels (every channel
// when none are named) and rebuilds the connection from the remaining
// registry. With an empty registry the manager stays disconnected.
func (m *Manager) Unsubscribe(ctx context.Context, market string, channels ...subscription.Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.registry.Remove(market, channels...) {
		return nil
	}

	m.logger.Info("unsubscribed", "market", market)

	if m.State() == Disconnected && m.client == nil {
		return nil
	}

	m.closeLocked()
	if m.registry.Empty() {
		return nil
	}
	return m.connectLocked(ctx)
}

// Send writes raw bytes to the current connection. A send failure flips
// the manager to Disconnected so the receiver's reconnect loop takes
// over.
func (m *Manager) Send(data []byte) error {
	m.mu.Lock()
	cl := m.client
	m.mu.Unlock()

	if cl == nil || m.State() != Connected {
		return ErrNotConnected
	}
	if err := cl.Send(data); err != nil {
		m.MarkDisconnected()
		return err
	}
	return nil
}

// Messages returns the current connection's message channel, or nil when
// disconnected. Callers must re-fetch after every Connect.
func (m *Manager) Messages() <-chan TimestampedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil
	}
	return m.client.Messages()
}

// Errors returns the current connection's error channel, or nil when
// disconnected.
func (m *Manager) Errors() <-chan error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil
	}
	return m.client.Errors()
}

// MarkDisconnected tears down the current client and records the
// Disconnected state. The receiver calls it when the transport reports
// an error so state observers see the failure window.
func (m *Manager) MarkDisconnected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}
