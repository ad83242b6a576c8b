package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bossygit/digital-medical-certificate-system/internal/platform/kafka/consumer"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
)

type recordingStore struct {
	mu     sync.Mutex
	events map[uuid.UUID]audit.Event
	err    error
}

func (s *recordingStore) AppendWithID(_ context.Context, eventID uuid.UUID, event audit.Event) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events == nil {
		s.events = make(map[uuid.UUID]audit.Event)
	}
	if _, dup := s.events[eventID]; !dup {
		s.events[eventID] = event
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func message(t *testing.T, eventID uuid.UUID, e audit.Event) *consumer.Message {
	t.Helper()
	raw, err := json.Marshal(audit.NewPayload(eventID, e))
	require.NoError(t, err)
	return &consumer.Message{Topic: "medcert.audit", Key: []byte(eventID.String()), Value: raw}
}

func TestEventHandler(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()
	event := audit.Event{
		Timestamp: time.Now().UTC(),
		UserID:    4,
		Action:    string(audit.EventCertificateIssued),
	}

	t.Run("stores decoded event once", func(t *testing.T) {
		store := &recordingStore{}
		h := NewEventHandler(store, discardLogger())
		msg := message(t, eventID, event)

		require.NoError(t, h.Handle(ctx, msg))
		require.NoError(t, h.Handle(ctx, msg))

		require.Len(t, store.events, 1)
		assert.Equal(t, audit.CategoryCompliance, store.events[eventID].Category)
	})

	t.Run("skips malformed json", func(t *testing.T) {
		store := &recordingStore{}
		h := NewEventHandler(store, discardLogger())
		require.NoError(t, h.Handle(ctx, &consumer.Message{Value: []byte("{not json")}))
		assert.Empty(t, store.events)
	})

	t.Run("returns store errors for redelivery", func(t *testing.T) {
		h := NewEventHandler(&recordingStore{err: errors.New("db down")}, discardLogger())
		assert.Error(t, h.Handle(ctx, message(t, eventID, event)))
	})
}

func TestRouter(t *testing.T) {
	ctx := context.Background()
	audits := &recordingStore{}
	reports := &recordingStore{}
	r := NewRouter(discardLogger()).
		Register("medcert.audit", NewEventHandler(audits, discardLogger())).
		Register("medcert.reports", NewEventHandler(reports, discardLogger()))

	assert.Equal(t, []string{"medcert.audit", "medcert.reports"}, r.Topics())

	require.NoError(t, r.Handle(ctx, message(t, uuid.New(), audit.Event{Timestamp: time.Now(), Action: "logout"})))
	assert.Len(t, audits.events, 1)
	assert.Empty(t, reports.events)

	t.Run("unknown topics are committed without a handler", func(t *testing.T) {
		stray := message(t, uuid.New(), audit.Event{Timestamp: time.Now(), Action: "logout"})
		stray.Topic = "legacy.audit"
		stray.Offset = 42
		assert.NoError(t, r.Handle(ctx, stray))
		assert.Len(t, audits.events, 1)
	})
}
