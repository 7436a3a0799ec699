package mail

import (
	"context"
	"encoding/json"
	"errors"
	"runtime/debug"
	"time"

	"quill/internal/middleware"
	"quill/internal/observability"

	"github.com/redis/go-redis/v9"
)

// maxAttempts bounds redelivery of a failing message.
const maxAttempts = 3

// Worker consumes the outbox list and delivers messages through a Sender.
type Worker struct {
	rdb    *redis.Client
	sender Sender
}

func NewWorker(rdb *redis.Client, sender Sender) *Worker {
	return &Worker{rdb: rdb, sender: sender}
}

// Run blocks consuming messages until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w.rdb == nil {
		return errors.New("mail worker requires a redis client")
	}
	middleware.Logger.InfoContext(ctx, "mail worker started", "queue", OutboxKey)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		res, err := w.rdb.BRPop(ctx, 5*time.Second, OutboxKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			middleware.Logger.ErrorContext(ctx, "mail worker pop failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		// BRPop returns [key, value]
		if len(res) != 2 {
			continue
		}
		w.handle(ctx, []byte(res[1]))
	}
}

func (w *Worker) handle(ctx context.Context, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			middleware.Logger.ErrorContext(ctx, "PANIC in mail worker",
				"panic", r, "stack", string(debug.Stack()))
		}
	}()

	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		middleware.Logger.ErrorContext(ctx, "dropping undecodable mail message", "error", err)
		observability.MailDelivered.WithLabelValues("dropped").Inc()
		return
	}

	if err := w.sender.Send(msg); err != nil {
		msg.Attempts++
		if msg.Attempts >= maxAttempts {
			middleware.Logger.ErrorContext(ctx, "mail delivery abandoned",
				"to", msg.To, "template", msg.Template, "attempts", msg.Attempts, "error", err)
			observability.MailDelivered.WithLabelValues("abandoned").Inc()
			return
		}
		middleware.Logger.WarnContext(ctx, "mail delivery failed, requeueing",
			"to", msg.To, "template", msg.Template, "attempts", msg.Attempts, "error", err)
		observability.MailDelivered.WithLabelValues("failure").Inc()
		if requeued, rerr := json.Marshal(msg); rerr == nil {
			w.rdb.LPush(ctx, OutboxKey, requeued)
		}
		return
	}

	observability.MailDelivered.WithLabelValues("success").Inc()
	middleware.Logger.InfoContext(ctx, "mail delivered",
		"to", msg.To, "template", msg.Template)
}
