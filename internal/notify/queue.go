package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"workshops/internal/metrics"
)

const taskTypeMail = "mail"

var ErrNoRecipient = errors.New("notification has no recipient")

// QueueNotifier appends mails to the Redis outbox stream consumed by the worker.
type QueueNotifier struct {
	client *redis.Client
	stream string
}

func NewQueueNotifier(client *redis.Client, stream string) *QueueNotifier {
	return &QueueNotifier{client: client, stream: stream}
}

func (q *QueueNotifier) Notify(ctx context.Context, msg Message) error {
	if msg.To == "" {
		metrics.Notifications.WithLabelValues(string(msg.Kind), "failed").Inc()
		return ErrNoRecipient
	}

	_, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]any{
			"type":    taskTypeMail,
			"kind":    string(msg.Kind),
			"to":      msg.To,
			"subject": msg.Subject,
			"body":    msg.Body,
		},
	}).Result()
	if err != nil {
		metrics.Notifications.WithLabelValues(string(msg.Kind), "failed").Inc()
		return fmt.Errorf("enqueue %s mail: %w", msg.Kind, err)
	}

	metrics.Notifications.WithLabelValues(string(msg.Kind), "queued").Inc()
	return nil
}
