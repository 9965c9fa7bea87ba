package redis

import (
	"context"
	"time"

	"github.com/looking-sharp/User-Authentication-Microservice/internal/constants"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// RevocationCache keeps revoked jtis in Redis until their tokens expire.
// Every call goes through a circuit breaker so a dead Redis is skipped
// instead of slowing each request.
type RevocationCache struct {
	rdb *redis.Client
	cb  *gobreaker.CircuitBreaker
}

func NewRevocationCache(rdb *redis.Client) *RevocationCache {
	st := gobreaker.Settings{
		Name:        "RevocationCache",
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.GetLogger().Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &RevocationCache{
		rdb: rdb,
		cb:  gobreaker.NewCircuitBreaker(st),
	}
}

func revokedKey(jti string) string {
	return constants.CacheKeyRevoked + jti
}

func (c *RevocationCache) IsRevoked(ctx context.Context, jti string) (bool, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.rdb.Exists(ctx, revokedKey(jti)).Result()
	})
	if err != nil {
		return false, err
	}
	return result.(int64) > 0, nil
}

func (c *RevocationCache) MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.rdb.Set(ctx, revokedKey(jti), 1, ttl).Err()
	})
	return err
}

// Ping bypasses the breaker so health checks see the real state
func (c *RevocationCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *RevocationCache) State() gobreaker.State {
	return c.cb.State()
}

func (c *RevocationCache) Close() error {
	return c.rdb.Close()
}
