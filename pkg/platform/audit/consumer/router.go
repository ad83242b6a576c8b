package consumer

import (
	"context"
	"log/slog"
	"sort"

	"github.com/bossygit/digital-medical-certificate-system/internal/platform/kafka/consumer"
)

// TopicHandler consumes the messages of one topic.
type TopicHandler interface {
	Handle(ctx context.Context, msg *consumer.Message) error
}

// Router fans consumed messages out by topic. The consumer subscribes to
// exactly the topics returned by Topics.
type Router struct {
	byTopic map[string]TopicHandler
	logger  *slog.Logger
}

func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{byTopic: map[string]TopicHandler{}, logger: logger}
}

// Register binds handler to topic, replacing any earlier binding.
func (r *Router) Register(topic string, handler TopicHandler) *Router {
	r.byTopic[topic] = handler
	return r
}

// Topics lists the registered topics in a stable order.
func (r *Router) Topics() []string {
	out := make([]string, 0, len(r.byTopic))
	for topic := range r.byTopic {
		out = append(out, topic)
	}
	sort.Strings(out)
	return out
}

func (r *Router) Handle(ctx context.Context, msg *consumer.Message) error {
	if h, ok := r.byTopic[msg.Topic]; ok {
		return h.Handle(ctx, msg)
	}
	// Unroutable records are committed; redelivery would not change the outcome.
	r.logger.WarnContext(ctx, "audit consumer: unroutable record",
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
	)
	return nil
}
