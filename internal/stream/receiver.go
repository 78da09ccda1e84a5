package stream

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/djdlzl/crypto-trading/internal/connection"
	"github.com/djdlzl/crypto-trading/internal/model"
)

// Conn is the connection surface the receiver drives.
// *connection.Manager satisfies it.
type Conn interface {
	Connect(ctx context.Context) error
	Send(data []byte) error
	Messages() <-chan connection.TimestampedMessage
	Errors() <-chan error
	State() connection.State
	MarkDisconnected()
}

// keepaliveAck is the exact acknowledgement the exchange expects.
var keepaliveAck = []byte(`{"pong":true}`)

// ReceiverConfig holds the fixed retry waits of the read loop.
type ReceiverConfig struct {
	ConnectRetryWait time.Duration // wait after a failed connect
	ReadRetryWait    time.Duration // wait after a read failure before reconnecting
}

// DefaultReceiverConfig returns the standard retry waits.
func DefaultReceiverConfig() ReceiverConfig {
	return ReceiverConfig{
		ConnectRetryWait: 5 * time.Second,
		ReadRetryWait:    time.Second,
	}
}

// Receiver reads raw frames from the connection, answers keepalives, and
// pushes decoded events onto the queue. Malformed frames are dropped
// with a log line; the loop never stops for a bad frame.
type Receiver struct {
	conn   Conn
	queue  *Queue[model.Event]
	cfg    ReceiverConfig
	logger *slog.Logger
}

// NewReceiver creates a receiver feeding the given queue.
func NewReceiver(conn Conn, queue *Queue[model.Event], cfg ReceiverConfig, logger *slog.Logger) *Receiver {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ConnectRetryWait <= 0 {
		cfg.ConnectRetryWait = DefaultReceiverConfig().ConnectRetryWait
	}
	if cfg.ReadRetryWait <= 0 {
		cfg.ReadRetryWait = DefaultReceiverConfig().ReadRetryWait
	}
	return &Receiver{
		conn:   conn,
		queue:  queue,
		cfg:    cfg,
		logger: logger,
	}
}

// Run drives the connect/read loop until ctx is cancelled. The queue is
// closed on the way out so the processor drains and exits.
func (r *Receiver) Run(ctx context.Context) error {
	defer r.queue.Close()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		if err := r.conn.Connect(ctx); err != nil {
			r.logger.Warn("connect failed, retrying",
				"error", err,
				"wait", r.cfg.ConnectRetryWait,
			)
			if !sleep(ctx, r.cfg.ConnectRetryWait) {
				return nil
			}
			continue
		}

		if !r.readLoop(ctx) {
			return nil
		}

		// Read failure or a replaced connection: brief pause, then
		// rebind through the connect path.
		if !sleep(ctx, r.cfg.ReadRetryWait) {
			return nil
		}
	}
}

// readLoop consumes frames until the connection dies or ctx is
// cancelled. Returns false when the receiver should stop entirely.
func (r *Receiver) readLoop(ctx context.Context) bool {
	msgs := r.conn.Messages()
	errs := r.conn.Errors()

	// The captured channels outlive a connection torn down or replaced
	// elsewhere (a send failure inside the manager, an unsubscribe
	// rebuilding the connection); poll the state and rebind when the
	// live channels are no longer the ones this loop holds.
	stateCheck := time.NewTicker(time.Second)
	defer stateCheck.Stop()

	for {
		select {
		case <-ctx.Done():
			return false

		case err := <-errs:
			r.logger.Warn("connection error, reconnecting", "error", err)
			r.conn.MarkDisconnected()
			return true

		case <-stateCheck.C:
			if r.conn.State() != connection.Connected {
				r.logger.Warn("connection lost, reconnecting")
				return true
			}
			if r.conn.Messages() != msgs {
				r.logger.Debug("connection replaced, rebinding")
				return true
			}

		case msg, ok := <-msgs:
			if !ok {
				return true
			}
			if !r.handle(msg) {
				return false
			}
		}
	}
}

// handle processes one raw frame. Returns false once the queue is
// closed.
func (r *Receiver) handle(msg connection.TimestampedMessage) bool {
	if bytes.Contains(msg.Data, []byte(`"ping"`)) {
		if err := r.conn.Send(keepaliveAck); err != nil {
			r.logger.Debug("keepalive ack failed", "error", err)
		}
		return true
	}

	ev, err := model.DecodeEvent(msg.Data, msg.ReceivedAt)
	if err != nil {
		r.logger.Warn("dropping undecodable frame",
			"error", err,
			"size", len(msg.Data),
		)
		return true
	}

	return r.queue.Push(ev)
}

// sleep waits for d or ctx cancellation. Returns false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
