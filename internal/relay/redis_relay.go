package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis relay configuration.
type Config struct {
	Address  string
	Password string
	DB       int
}

// RedisRelay implements Publisher over Redis pub/sub and hands out
// subscribers that share its client.
type RedisRelay struct {
	client *redis.Client
}

// NewRedisRelay connects to Redis and verifies the connection.
func NewRedisRelay(cfg Config) (*RedisRelay, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisRelay{client: client}, nil
}

func (r *RedisRelay) Publish(ctx context.Context, channel string, env *Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return r.client.Publish(ctx, channel, data).Err()
}

// NewSubscriber creates a subscriber on channel that drops envelopes
// originating from selfInstanceID and hands the rest to handler.
func (r *RedisRelay) NewSubscriber(channel, selfInstanceID string, handler func(*Envelope)) *Subscriber {
	return newSubscriber(r.client, channel, selfInstanceID, handler)
}

func (r *RedisRelay) Close() error {
	return r.client.Close()
}
