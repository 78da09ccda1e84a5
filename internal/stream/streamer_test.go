package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/djdlzl/crypto-trading/internal/connection"
	"github.com/djdlzl/crypto-trading/internal/model"
	"github.com/djdlzl/crypto-trading/internal/subscription"
)

// exchangeServer is a mock endpoint; the handler runs once per
// connection with the connection index.
type exchangeServer struct {
	server *httptest.Server

	mu    sync.Mutex
	conns int
}

func newExchangeServer(t *testing.T, handler func(idx int, conn *websocket.Conn)) *exchangeServer {
	es := &exchangeServer{}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	es.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		es.mu.Lock()
		idx := es.conns
		es.conns++
		es.mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(idx, conn)
	}))

	t.Cleanup(es.server.Close)
	return es
}

func (es *exchangeServer) url() string {
	return "ws" + strings.TrimPrefix(es.server.URL, "http")
}

func (es *exchangeServer) connCount() int {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.conns
}

// eventSink collects handled events.
type eventSink struct {
	mu     sync.Mutex
	events []model.Event
}

func (s *eventSink) handle(ev model.Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *eventSink) snapshot() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *eventSink) waitLen(t *testing.T, n int) []model.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if evs := s.snapshot(); len(evs) >= n {
			return evs
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %d events, have %d", n, len(s.snapshot()))
	return nil
}

func newTestStreamer(es *exchangeServer, handler Handler) *Streamer {
	registry := subscription.NewRegistry()
	mgr := connection.NewManager(connection.ManagerConfig{
		WSURL:        es.url(),
		PingTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   100,
	}, registry, nil, nil)

	cfg := Config{
		QueueSize: 16,
		Receiver: ReceiverConfig{
			ConnectRetryWait: 20 * time.Millisecond,
			ReadRetryWait:    20 * time.Millisecond,
		},
	}
	return NewStreamer(cfg, mgr, handler, nil)
}

func writeJSON(conn *websocket.Conn, raw string) error {
	return conn.WriteMessage(websocket.TextMessage, []byte(raw))
}

func TestStreamer_DeliversEventsInOrder(t *testing.T) {
	frames := []string{
		`{"type":"ticker","code":"KRW-BTC","trade_price":50000000}`,
		`{"type":"ticker","code":"KRW-ETH","trade_price":3000000}`,
		`{"type":"trade","code":"KRW-BTC","trade_price":50000001}`,
	}

	es := newExchangeServer(t, func(idx int, conn *websocket.Conn) {
		for _, f := range frames {
			if err := writeJSON(conn, f); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	sink := &eventSink{}
	s := newTestStreamer(es, sink.handle)

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	events := sink.waitLen(t, 3)

	want := []struct{ typ, code string }{
		{"ticker", "KRW-BTC"},
		{"ticker", "KRW-ETH"},
		{"trade", "KRW-BTC"},
	}
	for i, w := range want {
		if events[i].Type != w.typ || events[i].Code != w.code {
			t.Errorf("event %d = %s/%s, want %s/%s", i, events[i].Type, events[i].Code, w.typ, w.code)
		}
		if events[i].ReceivedAt.IsZero() {
			t.Errorf("event %d has zero ReceivedAt", i)
		}
	}

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if s.State() != connection.Disconnected {
		t.Errorf("State = %v after Stop, want Disconnected", s.State())
	}
}

func TestStreamer_MalformedFrameDropped(t *testing.T) {
	es := newExchangeServer(t, func(idx int, conn *websocket.Conn) {
		writeJSON(conn, `not json at all`)
		writeJSON(conn, `{"no_type_field":true}`)
		writeJSON(conn, `{"type":"ticker","code":"KRW-BTC","trade_price":1}`)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	sink := &eventSink{}
	s := newTestStreamer(es, sink.handle)

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		s.Stop(stopCtx)
	}()

	// The bad frames are dropped; the loop survives and delivers the
	// good one.
	events := sink.waitLen(t, 1)
	if events[0].Code != "KRW-BTC" {
		t.Errorf("event code = %q, want KRW-BTC", events[0].Code)
	}
}

func TestStreamer_KeepaliveAck(t *testing.T) {
	acks := make(chan string, 1)

	es := newExchangeServer(t, func(idx int, conn *websocket.Conn) {
		writeJSON(conn, `{"ping":1755900000}`)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			select {
			case acks <- string(data):
			default:
			}
		}
	})

	sink := &eventSink{}
	s := newTestStreamer(es, sink.handle)

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		s.Stop(stopCtx)
	}()

	select {
	case ack := <-acks:
		if ack != `{"pong":true}` {
			t.Errorf("ack = %q, want {\"pong\":true}", ack)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for keepalive ack")
	}

	// Keepalive frames never reach the handler.
	time.Sleep(50 * time.Millisecond)
	if evs := sink.snapshot(); len(evs) != 0 {
		t.Errorf("handler saw %d events, want 0", len(evs))
	}
}

func TestStreamer_ReconnectReplaysSubscriptions(t *testing.T) {
	type frame struct {
		idx  int
		data string
	}
	framesCh := make(chan frame, 16)

	es := newExchangeServer(t, func(idx int, conn *websocket.Conn) {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			framesCh <- frame{idx: idx, data: string(data)}
			if idx == 0 {
				// Kill the first connection after its subscribe frame.
				return
			}
		}
	})

	sink := &eventSink{}
	s := newTestStreamer(es, sink.handle)

	ctx := context.Background()
	if err := s.Subscribe(ctx, subscription.ChannelTicker, "KRW-BTC", "KRW-ETH"); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		s.Stop(stopCtx)
	}()

	// First connection: the original subscribe frame. Second connection:
	// the replay after the forced drop. Both carry the same market set.
	var replay string
	deadline := time.After(3 * time.Second)
	for replay == "" {
		select {
		case f := <-framesCh:
			if f.idx >= 1 {
				replay = f.data
			}
		case <-deadline:
			t.Fatal("timeout waiting for replayed subscribe frame")
		}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(replay), &elements); err != nil {
		t.Fatalf("replayed frame is not a JSON array: %v", err)
	}
	var body struct {
		Type  string   `json:"type"`
		Codes []string `json:"codes"`
	}
	if err := json.Unmarshal(elements[1], &body); err != nil {
		t.Fatalf("unmarshal type element: %v", err)
	}
	if body.Type != "ticker" {
		t.Errorf("replayed channel = %q, want ticker", body.Type)
	}
	if len(body.Codes) != 2 || body.Codes[0] != "KRW-BTC" || body.Codes[1] != "KRW-ETH" {
		t.Errorf("replayed codes = %v, want [KRW-BTC KRW-ETH]", body.Codes)
	}

	if es.connCount() < 2 {
		t.Errorf("connections = %d, want at least 2", es.connCount())
	}
}

func TestStreamer_UnsubscribeWhileStreaming(t *testing.T) {
	replayCh := make(chan string, 4)

	es := newExchangeServer(t, func(idx int, conn *websocket.Conn) {
		// Every connection starts with a subscribe frame.
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if idx == 0 {
			writeJSON(conn, `{"type":"ticker","code":"KRW-BTC","trade_price":1}`)
		} else {
			replayCh <- string(data)
			writeJSON(conn, `{"type":"ticker","code":"KRW-BTC","trade_price":2}`)
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	sink := &eventSink{}
	s := newTestStreamer(es, sink.handle)

	ctx := context.Background()
	if err := s.Subscribe(ctx, subscription.ChannelTicker, "KRW-BTC", "KRW-ETH"); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		s.Stop(stopCtx)
	}()

	sink.waitLen(t, 1)

	// Narrowing the feed rebuilds the connection with the remainder; the
	// pipeline must follow the connection across the rebuild.
	if err := s.Unsubscribe(ctx, "KRW-ETH"); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}

	select {
	case replay := <-replayCh:
		var elements []json.RawMessage
		if err := json.Unmarshal([]byte(replay), &elements); err != nil {
			t.Fatalf("replayed frame is not a JSON array: %v", err)
		}
		var body struct {
			Codes []string `json:"codes"`
		}
		if err := json.Unmarshal(elements[1], &body); err != nil {
			t.Fatalf("unmarshal type element: %v", err)
		}
		if len(body.Codes) != 1 || body.Codes[0] != "KRW-BTC" {
			t.Errorf("replayed codes = %v, want [KRW-BTC]", body.Codes)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for replayed subscribe frame")
	}

	// The event written on the rebuilt connection still arrives.
	events := sink.waitLen(t, 2)
	if events[1].Code != "KRW-BTC" {
		t.Errorf("post-unsubscribe event code = %q, want KRW-BTC", events[1].Code)
	}
}

func TestStreamer_PipelineFailureClosesConnection(t *testing.T) {
	es := newExchangeServer(t, func(idx int, conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	s := newTestStreamer(es, func(model.Event) {})

	ctx := context.Background()
	if err := s.Subscribe(ctx, subscription.ChannelTicker, "KRW-BTC"); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if s.State() != connection.Connected {
		t.Fatalf("State = %v, want Connected", s.State())
	}

	s.done = make(chan struct{})
	s.supervise(func() error { return errors.New("pipeline blew up") })

	if s.State() != connection.Disconnected {
		t.Errorf("State = %v after pipeline failure, want Disconnected", s.State())
	}
	if s.waitErr == nil {
		t.Error("waitErr not recorded")
	}
	select {
	case <-s.done:
	default:
		t.Error("done channel not closed after pipeline failure")
	}
}

func TestStreamer_HandlerPanicIsolated(t *testing.T) {
	es := newExchangeServer(t, func(idx int, conn *websocket.Conn) {
		writeJSON(conn, `{"type":"ticker","code":"KRW-BTC","trade_price":1}`)
		writeJSON(conn, `{"type":"ticker","code":"KRW-ETH","trade_price":2}`)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	sink := &eventSink{}
	handler := func(ev model.Event) {
		if ev.Code == "KRW-BTC" {
			panic("handler blew up")
		}
		sink.handle(ev)
	}

	s := newTestStreamer(es, handler)

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		s.Stop(stopCtx)
	}()

	// The panicking event is lost; the next one is still dispatched.
	events := sink.waitLen(t, 1)
	if events[0].Code != "KRW-ETH" {
		t.Errorf("event code = %q, want KRW-ETH", events[0].Code)
	}
}

func TestStreamer_StopWithoutStart(t *testing.T) {
	es := newExchangeServer(t, func(idx int, conn *websocket.Conn) {})
	s := newTestStreamer(es, func(model.Event) {})

	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("Stop before Start failed: %v", err)
	}
}

func TestStreamer_DoubleStart(t *testing.T) {
	es := newExchangeServer(t, func(idx int, conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	s := newTestStreamer(es, func(model.Event) {})

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		s.Stop(stopCtx)
	}()

	if err := s.Start(ctx); err == nil {
		t.Error("second Start should fail")
	}
}
