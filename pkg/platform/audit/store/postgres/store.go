package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
	txcontext "github.com/bossygit/digital-medical-certificate-system/pkg/platform/tx"
)

// Store implements audit.Store on PostgreSQL.
//
// With the outbox enabled, Append writes to the outbox table inside the
// caller's transaction when one is present, and the relay worker publishes
// the row to Kafka. The consumer materialises events into audit_logs through
// AppendWithID. Without the outbox, Append writes audit_logs directly.
type Store struct {
	db     *sql.DB
	outbox bool
}

type Option func(*Store)

// WithOutbox routes Append through the transactional outbox.
func WithOutbox() Option {
	return func(s *Store) { s.outbox = true }
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append records an event under a fresh ID.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()
	if !s.outbox {
		return s.insertAuditLog(ctx, s.execer(ctx), eventID, event)
	}

	payloadBytes, err := json.Marshal(audit.NewPayload(eventID, event))
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	aggregateType := "audit"
	aggregateID := eventID.String()
	if event.TargetType != "" && event.TargetID != "" {
		aggregateType = event.TargetType
		aggregateID = event.TargetID
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		eventID,
		aggregateType,
		aggregateID,
		event.Action,
		payloadBytes,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// AppendWithID inserts an event into audit_logs with a specific ID.
// Used by the Kafka consumer; duplicate deliveries are ignored.
func (s *Store) AppendWithID(ctx context.Context, eventID uuid.UUID, event audit.Event) error {
	return s.insertAuditLog(ctx, s.db, eventID, event)
}

func (s *Store) insertAuditLog(ctx context.Context, exec dbExecutor, eventID uuid.UUID, event audit.Event) error {
	var details []byte
	if len(event.Details) > 0 {
		var err error
		if details, err = json.Marshal(event.Details); err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
	}
	var userID *int64
	if !event.UserID.IsZero() {
		uid := int64(event.UserID)
		userID = &uid
	}
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	query := `
		INSERT INTO audit_logs (
			id, category, user_id, action, target_type, target_id,
			ip_address, user_agent, request_id, details, timestamp
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := exec.ExecContext(ctx, query,
		eventID,
		string(category),
		userID,
		event.Action,
		event.TargetType,
		event.TargetID,
		event.IP,
		event.UserAgent,
		event.RequestID,
		details,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByUser returns events recorded for an acting account, newest first.
func (s *Store) ListByUser(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	query := `
		SELECT category, user_id, action, target_type, target_id,
			   ip_address, user_agent, request_id, details, timestamp
		FROM audit_logs
		WHERE user_id = $1
		ORDER BY timestamp DESC
	`
	rows, err := s.db.QueryContext(ctx, query, int64(userID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListRecent returns the N most recent events.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT category, user_id, action, target_type, target_id,
			   ip_address, user_agent, request_id, details, timestamp
		FROM audit_logs
		ORDER BY timestamp DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			category   string
			event      audit.Event
			userID     sql.NullInt64
			targetType sql.NullString
			targetID   sql.NullString
			ip         sql.NullString
			userAgent  sql.NullString
			requestID  sql.NullString
			details    []byte
		)
		err := rows.Scan(
			&category,
			&userID,
			&event.Action,
			&targetType,
			&targetID,
			&ip,
			&userAgent,
			&requestID,
			&details,
			&event.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		event.UserID = id.UserID(userID.Int64)
		event.TargetType = targetType.String
		event.TargetID = targetID.String
		event.IP = ip.String
		event.UserAgent = userAgent.String
		event.RequestID = requestID.String
		if len(details) > 0 {
			if err := json.Unmarshal(details, &event.Details); err != nil {
				return nil, fmt.Errorf("unmarshal audit details: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

// FetchUnpublished locks up to limit unpublished rows, oldest first. It must
// run inside a transaction so the lock holds until MarkPublished commits;
// concurrent relays skip locked rows.
func (s *Store) FetchUnpublished(ctx context.Context, limit int) ([]audit.OutboxEntry, error) {
	query := `
		SELECT id, aggregate_id, event_type, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []audit.OutboxEntry
	for rows.Next() {
		var e audit.OutboxEntry
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return entries, nil
}

// MarkPublished stamps the given outbox rows as published.
func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, len(ids))
	for i, v := range ids {
		raw[i] = v.String()
	}
	_, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE outbox SET published_at = $2 WHERE id = ANY($1::uuid[])`,
		pq.Array(raw), at,
	)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
