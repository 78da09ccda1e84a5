package stream

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/djdlzl/crypto-trading/internal/connection"
	"github.com/djdlzl/crypto-trading/internal/model"
	"github.com/djdlzl/crypto-trading/internal/subscription"
)

// Config configures the streamer.
type Config struct {
	QueueSize int            // initial event queue capacity
	Receiver  ReceiverConfig // retry waits for the read loop
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		QueueSize: 1024,
		Receiver:  DefaultReceiverConfig(),
	}
}

// Streamer supervises the receiver and processor goroutines over one
// managed connection. Start is non-blocking; Stop cancels the pipeline,
// waits for the in-flight handler call to finish, and closes the
// connection.
type Streamer struct {
	manager *connection.Manager
	queue   *Queue[model.Event]
	logger  *slog.Logger

	receiver  *Receiver
	processor *Processor

	cancel  context.CancelFunc
	done    chan struct{}
	waitErr error
}

// NewStreamer wires a pipeline around the manager, dispatching every
// decoded event to handler.
func NewStreamer(cfg Config, manager *connection.Manager, handler Handler, logger *slog.Logger) *Streamer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}

	queue := NewQueue[model.Event](cfg.QueueSize)
	return &Streamer{
		manager:   manager,
		queue:     queue,
		logger:    logger,
		receiver:  NewReceiver(manager, queue, cfg.Receiver, logger),
		processor: NewProcessor(queue, handler, logger),
	}
}

// Start launches the receiver and processor goroutines.
func (s *Streamer) Start(ctx context.Context) error {
	if s.done != nil {
		return errors.New("streamer already started")
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	// The receiver closes the queue on exit, which drains the processor.
	g.Go(func() error { return s.receiver.Run(gctx) })
	g.Go(func() error { return s.processor.Run() })

	go s.supervise(g.Wait)

	s.logger.Info("streamer started", "queue_size", s.queue.Cap())
	return nil
}

// supervise waits for both pipeline goroutines. A failing pipeline
// closes the connection immediately rather than leaving it dangling
// until Stop.
func (s *Streamer) supervise(wait func() error) {
	s.waitErr = wait()
	if s.waitErr != nil {
		s.logger.Error("pipeline failed, closing connection", "error", s.waitErr)
		s.manager.Close()
	}
	close(s.done)
}

// Stop shuts the pipeline down. The event being dispatched when Stop is
// called finishes; queued events behind it are discarded with the queue.
func (s *Streamer) Stop(ctx context.Context) error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()

	select {
	case <-s.done:
	case <-ctx.Done():
		s.manager.Close()
		return ctx.Err()
	}

	err := s.manager.Close()

	stats := s.queue.Stats()
	s.logger.Info("streamer stopped",
		"events_received", stats.TotalPushed,
		"events_processed", stats.TotalPopped,
		"discarded", stats.Count,
	)

	if s.waitErr != nil {
		return s.waitErr
	}
	return err
}

// Subscribe registers markets under a channel type on the managed
// connection.
func (s *Streamer) Subscribe(ctx context.Context, ch subscription.Channel, markets ...string) error {
	return s.manager.Subscribe(ctx, ch, markets...)
}

// Unsubscribe removes a market from the given channels, or all channels
// when none are named.
func (s *Streamer) Unsubscribe(ctx context.Context, market string, channels ...subscription.Channel) error {
	return s.manager.Unsubscribe(ctx, market, channels...)
}

// State returns the connection state.
func (s *Streamer) State() connection.State {
	return s.manager.State()
}
