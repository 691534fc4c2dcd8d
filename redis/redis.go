package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// InitRedis connects to addr. A nil client is returned when redis is not
// reachable and the service runs without a cache.
func InitRedis(ctx context.Context, addr string, log zerolog.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("redis not available, running without cache")
		_ = client.Close()
		return nil
	}

	log.Info().Str("addr", addr).Msg("redis connected")
	return client
}
