package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bossygit/digital-medical-certificate-system/internal/platform/kafka/consumer"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
)

// EventStore materialises consumed events. Implementations must be idempotent on eventID.
type EventStore interface {
	AppendWithID(ctx context.Context, eventID uuid.UUID, event audit.Event) error
}

// EventHandler writes audit events from the topic into the queryable audit log.
type EventHandler struct {
	store  EventStore
	logger *slog.Logger
}

func NewEventHandler(store EventStore, logger *slog.Logger) *EventHandler {
	return &EventHandler{store: store, logger: logger}
}

// Handle decodes and stores one event. Malformed messages are logged and
// skipped so they cannot block the partition; store failures are returned
// so the offset is not committed.
func (h *EventHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	var payload audit.Payload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		h.logger.Error("failed to unmarshal audit payload",
			"key", string(msg.Key),
			"error", err,
		)
		return nil
	}

	eventID, event, err := payload.Decode()
	if err != nil {
		h.logger.Error("malformed audit event",
			"key", string(msg.Key),
			"error", err,
		)
		return nil
	}

	if event.Category == audit.CategorySecurity {
		h.logger.Warn("security audit event",
			"event_id", eventID,
			"action", event.Action,
			"ip", event.IP,
			"user_id", event.UserID,
		)
	}

	if err := h.store.AppendWithID(ctx, eventID, event); err != nil {
		h.logger.Error("failed to store audit event",
			"event_id", eventID,
			"action", event.Action,
			"error", err,
		)
		return fmt.Errorf("store audit event: %w", err)
	}

	h.logger.Debug("stored audit event",
		"event_id", eventID,
		"action", event.Action,
		"user_id", event.UserID,
	)
	return nil
}
