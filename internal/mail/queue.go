package mail

import (
	"context"
	"encoding/json"
	"fmt"

	"quill/internal/middleware"
	"quill/internal/observability"

	"github.com/redis/go-redis/v9"
)

// OutboxKey is the Redis list the worker consumes from.
const OutboxKey = "mail:outbox"

// Queue hands messages off to the delivery worker through a Redis list.
// Without Redis it falls back to delivering inline through the fallback
// sender, which keeps development and tests working without a broker.
type Queue struct {
	rdb      *redis.Client
	fallback Sender
}

// NewQueue creates a queue backed by the given Redis client. fallback may
// be nil, in which case messages are dropped when Redis is unavailable.
func NewQueue(rdb *redis.Client, fallback Sender) *Queue {
	return &Queue{rdb: rdb, fallback: fallback}
}

// Enqueue pushes a message onto the outbox list.
func (q *Queue) Enqueue(ctx context.Context, msg Message) error {
	observability.MailEnqueued.WithLabelValues(msg.Template).Inc()

	if q.rdb == nil {
		return q.deliverInline(ctx, msg)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal mail message: %w", err)
	}
	if err := q.rdb.LPush(ctx, OutboxKey, payload).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "mail enqueue failed, delivering inline",
			"template", msg.Template, "error", err)
		return q.deliverInline(ctx, msg)
	}
	return nil
}

func (q *Queue) deliverInline(ctx context.Context, msg Message) error {
	if q.fallback == nil {
		middleware.Logger.WarnContext(ctx, "no mail transport available, dropping message",
			"template", msg.Template)
		return nil
	}
	if err := q.fallback.Send(msg); err != nil {
		observability.MailDelivered.WithLabelValues("failure").Inc()
		return fmt.Errorf("inline mail delivery: %w", err)
	}
	observability.MailDelivered.WithLabelValues("success").Inc()
	return nil
}
