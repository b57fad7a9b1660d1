package email

import (
	"sync"

	"github.com/rs/zerolog"
)

// SendFn is a deferred mail send. Errors are the dispatcher's to log;
// they never propagate to the operation that triggered the mail.
type SendFn func() error

// Dispatcher queues mail sends behind a single worker. Delivery is
// queue-first: when the queue is full the send runs inline instead, so a
// slow relay degrades to synchronous delivery rather than dropped mail.
type Dispatcher struct {
	jobs   chan SendFn
	logger zerolog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// NewDispatcher creates a dispatcher and starts its worker.
func NewDispatcher(queueSize int, logger zerolog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	d := &Dispatcher{
		jobs:   make(chan SendFn, queueSize),
		logger: logger,
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for job := range d.jobs {
		if err := job(); err != nil {
			d.logger.Error().Err(err).Msg("Queued email delivery failed")
		}
	}
}

// Deliver hands a send to the worker, falling back to an immediate inline
// send when the queue is full. The returned flag reports whether delivery
// was accepted (queued, or sent inline without error); it is surfaced to
// API callers as emailSent and never fails the triggering operation.
func (d *Dispatcher) Deliver(job SendFn) bool {
	select {
	case d.jobs <- job:
		return true
	default:
	}

	if err := job(); err != nil {
		d.logger.Error().Err(err).Msg("Immediate email delivery failed")
		return false
	}
	return true
}

// Close stops the worker after draining queued sends.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.jobs)
	})
	<-d.done
}
