package event

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// AllChannel is the channel every event is mirrored to, in addition to its
// per-type channel.
const AllChannel = "events:all"

// RedisPublisher publishes events to Redis pub/sub channels. Each event goes
// to events:<Type> and to the aggregate events:all channel.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher connects a publisher to the Redis instance at redisURL.
func NewRedisPublisher(redisURL string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return &RedisPublisher{client: redis.NewClient(opts)}, nil
}

// Publish serializes the event and sends it to both channels.
func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := Encode(e)
	if err != nil {
		return err
	}

	channel := fmt.Sprintf("events:%s", e.EventType())
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	if err := p.client.Publish(ctx, AllChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", AllChannel, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
