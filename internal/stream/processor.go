package stream

import (
	"log/slog"

	"github.com/djdlzl/crypto-trading/internal/model"
)

// Handler consumes decoded events in arrival order.
type Handler func(model.Event)

// Processor drains the queue and dispatches events to the handler one
// at a time. A panicking handler loses that one event; the loop keeps
// running.
type Processor struct {
	queue   *Queue[model.Event]
	handler Handler
	logger  *slog.Logger
}

// NewProcessor creates a processor draining the given queue.
func NewProcessor(queue *Queue[model.Event], handler Handler, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		queue:   queue,
		handler: handler,
		logger:  logger,
	}
}

// Run dispatches until the queue is closed and drained.
func (p *Processor) Run() error {
	for {
		ev, ok := p.queue.Pop()
		if !ok {
			return nil
		}
		p.dispatch(ev)
	}
}

func (p *Processor) dispatch(ev model.Event) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("handler panicked",
				"panic", r,
				"type", ev.Type,
				"code", ev.Code,
			)
		}
	}()

	p.handler(ev)
}
