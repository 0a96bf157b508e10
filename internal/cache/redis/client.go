package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mdgraph/backend/pkg/circuitbreaker"
	"github.com/mdgraph/backend/pkg/logger"
	"github.com/mdgraph/backend/pkg/retry"
)

const graphKeyPrefix = "graph:"

// Client caches built corpus graphs. Keys are corpus fingerprints, so an
// edited corpus never hits a stale entry; Invalidate only reclaims space.
type Client struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
	retry   retry.Config
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Ping(ctx).Result()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", addr), zap.Duration("ttl", ttl))

	return newClient(client, ttl), nil
}

func newClient(client *redis.Client, ttl time.Duration) *Client {
	return &Client{
		client: client,
		ttl:    ttl,
		breaker: circuitbreaker.NewCircuitBreaker("redis", circuitbreaker.Config{
			FailureThreshold: 5,
			Timeout:          30 * time.Second,
			Logger:           logger.GetLogger(),
		}),
		retry: retry.Config{
			MaxAttempts:  2,
			InitialDelay: 50 * time.Millisecond,
			MaxDelay:     200 * time.Millisecond,
			Logger:       logger.GetLogger(),
		},
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func graphKey(fingerprint string) string {
	return graphKeyPrefix + fingerprint
}

func (c *Client) do(ctx context.Context, op func() error) error {
	return c.breaker.Execute(ctx, func() error {
		return retry.Do(ctx, c.retry, op)
	})
}

func (c *Client) SetGraph(ctx context.Context, fingerprint string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	err = c.do(ctx, func() error {
		return c.client.Set(ctx, graphKey(fingerprint), data, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to set graph cache: %w", err)
	}

	logger.Debug("Graph cached", zap.String("fingerprint", fingerprint), zap.Duration("ttl", c.ttl))
	return nil
}

// GetGraph decodes the cached entry into dest and reports whether one existed.
func (c *Client) GetGraph(ctx context.Context, fingerprint string, dest interface{}) (bool, error) {
	var (
		data  []byte
		found bool
	)
	// A missing key is a healthy answer and must not count against the breaker.
	err := c.do(ctx, func() error {
		var err error
		data, err = c.client.Get(ctx, graphKey(fingerprint)).Bytes()
		if errors.Is(err, redis.Nil) {
			found = false
			return nil
		}
		found = err == nil
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to get graph cache: %w", err)
	}
	if !found {
		logger.Debug("Graph cache miss", zap.String("fingerprint", fingerprint))
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal graph: %w", err)
	}

	logger.Debug("Graph cache hit", zap.String("fingerprint", fingerprint))
	return true, nil
}

// InvalidateGraphs deletes every cached graph.
func (c *Client) InvalidateGraphs(ctx context.Context) error {
	var deleted int
	iter := c.client.Scan(ctx, 0, graphKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("Failed to delete cache key", zap.String("key", iter.Val()), zap.Error(err))
			continue
		}
		deleted++
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to iterate cache keys: %w", err)
	}

	logger.Info("Graph cache invalidated", zap.Int("keys", deleted))
	return nil
}
