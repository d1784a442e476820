package redis

import (
	"context"
	"encoding/json"

	"safetyshare/internal/domain"

	"github.com/redis/go-redis/v9"
)

// ActivityQueue hands reputation events to the gamification consumer.
// Writes are best-effort; callers never fail a request on an enqueue error.
type ActivityQueue struct {
	client *redis.Client
	key    string
}

func NewActivityQueue(client *redis.Client, key string) *ActivityQueue {
	return &ActivityQueue{client: client, key: key}
}

func (q *ActivityQueue) Enqueue(ctx context.Context, event domain.ActivityEvent) error {
	b, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, b).Err()
}
