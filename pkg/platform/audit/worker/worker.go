// Package worker relays audit events from the transactional outbox to Kafka.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bossygit/digital-medical-certificate-system/internal/platform/kafka/producer"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/tx"
)

// OutboxStore reads and acknowledges outbox rows.
type OutboxStore interface {
	FetchUnpublished(ctx context.Context, limit int) ([]audit.OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Publisher writes messages to the audit topic.
type Publisher interface {
	Publish(ctx context.Context, msgs ...producer.Message) error
}

// Relay polls the outbox and publishes each batch inside one transaction:
// rows stay locked while the batch is produced and are marked published only
// once the broker acknowledged it. A crash between produce and commit causes
// a redelivery, which the consumer absorbs by event ID.
type Relay struct {
	store     OutboxStore
	publisher Publisher
	tx        tx.Runner
	topic     string
	interval  time.Duration
	batch     int
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Relay)

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batch = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) { r.logger = logger }
}

func NewRelay(store OutboxStore, publisher Publisher, runner tx.Runner, topic string, opts ...Option) *Relay {
	r := &Relay{
		store:     store,
		publisher: publisher,
		tx:        runner,
		topic:     topic,
		interval:  time.Second,
		batch:     100,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run relays until ctx is cancelled. Failed batches are retried on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		for {
			n, err := r.RelayOnce(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				r.logger.ErrorContext(ctx, "outbox relay batch failed", "error", err)
				break
			}
			if n < r.batch {
				break
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RelayOnce publishes one batch and returns how many rows it relayed.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	relayed := 0
	err := r.tx.RunInTx(ctx, func(ctx context.Context) error {
		entries, err := r.store.FetchUnpublished(ctx, r.batch)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		msgs := make([]producer.Message, len(entries))
		ids := make([]uuid.UUID, len(entries))
		for i, e := range entries {
			msgs[i] = producer.Message{Topic: r.topic, Key: []byte(e.ID.String()), Value: e.Payload}
			ids[i] = e.ID
		}
		if err := r.publisher.Publish(ctx, msgs...); err != nil {
			return err
		}
		if err := r.store.MarkPublished(ctx, ids, r.now()); err != nil {
			return err
		}
		relayed = len(entries)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if relayed > 0 {
		r.logger.DebugContext(ctx, "relayed outbox batch", "count", relayed, "topic", r.topic)
	}
	return relayed, nil
}
