package export

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisWaker publishes wake-ups for the export worker
type RedisWaker struct {
	client *redis.Client
}

// NewRedisWaker creates a redis-backed waker
func NewRedisWaker(client *redis.Client) *RedisWaker {
	return &RedisWaker{client: client}
}

// Wake is best-effort; a lost message only delays the export to the next poll.
func (w *RedisWaker) Wake(ctx context.Context, transferID uuid.UUID) {
	if w.client == nil {
		return
	}
	if err := w.client.Publish(ctx, WakeChannel, transferID.String()).Err(); err != nil {
		log.Warn().Err(err).Msg("Failed to publish export wake-up")
	}
}
