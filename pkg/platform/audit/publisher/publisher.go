// Package publisher fronts an audit store with optional asynchronous buffering.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
)

// ErrBufferFull is returned by Emit in async mode when the buffer is saturated.
var ErrBufferFull = errors.New("audit buffer full")

// ErrClosed is returned by Emit after Close.
var ErrClosed = errors.New("audit publisher closed")

// Lister is implemented by stores that can serve recent events back.
type Lister interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

// Publisher writes audit events to a store. In async mode Emit enqueues and
// returns immediately; a single goroutine drains the queue, and Close waits
// until everything enqueued has been written.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger
	now    func() time.Time

	queue  chan queued
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

type queued struct {
	ctx   context.Context
	event audit.Event
}

type Option func(*Publisher)

// WithAsyncBuffer enables async mode with a bounded queue of size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.queue = make(chan queued, n)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue != nil {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Emit records an event. The caller's context values are kept but its
// cancellation is not, so a finished request does not abort the write.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	event.Normalize(p.now())

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	if p.queue == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.queue <- queued{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	default:
		return ErrBufferFull
	}
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for item := range p.queue {
		if err := p.store.Append(item.ctx, item.event); err != nil {
			p.logger.ErrorContext(item.ctx, "failed to persist audit event",
				"action", item.event.Action,
				"error", err,
			)
		}
	}
}

// List returns recent events when the underlying store supports it.
func (p *Publisher) List(ctx context.Context, limit int) ([]audit.Event, error) {
	lister, ok := p.store.(Lister)
	if !ok {
		return nil, errors.New("audit store does not support listing")
	}
	return lister.ListRecent(ctx, limit)
}

// Close stops accepting events and drains the async queue.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.queue != nil {
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
