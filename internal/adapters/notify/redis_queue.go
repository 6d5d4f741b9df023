package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"

	"github.com/hbsurial/logistics-coordination-agent/internal/domain"
)

const queueKeyPrefix = "notify:"

// RedisQueue pushes notifications onto per-channel redis lists for
// downstream consumers to drain with BRPOP.
type RedisQueue struct {
	client *redis.Client
	log    hclog.Logger
}

func NewRedisQueue(client *redis.Client, log hclog.Logger) *RedisQueue {
	return &RedisQueue{client: client, log: log.Named("notify-queue")}
}

func (q *RedisQueue) Publish(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("queue notification %s: encode: %w", n.ID, err)
	}

	key := queueKeyPrefix + n.Channel
	if err := q.client.LPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("queue notification %s: lpush %s: %w", n.ID, key, err)
	}

	q.log.Debug("notification queued", "id", n.ID, "channel", n.Channel, "kind", n.Kind)
	return nil
}
