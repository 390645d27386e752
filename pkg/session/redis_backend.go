package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"taskflow/pkg/logger"
)

// RedisBackend keeps values in a Redis hash and announces every write on a
// Pub/Sub channel so other processes sharing the namespace observe it.
// Concurrent writers are last-write-wins.
type RedisBackend struct {
	client  *redis.Client
	hashKey string
	channel string
	origin  string
}

type changeMessage struct {
	Origin  string `json:"origin"`
	Key     string `json:"key"`
	Value   string `json:"value,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`
}

// NewRedisBackend creates a backend under namespace (for example a user or
// device id).
func NewRedisBackend(client *redis.Client, namespace string) *RedisBackend {
	return &RedisBackend{
		client:  client,
		hashKey: fmt.Sprintf("taskflow:session:%s", namespace),
		channel: fmt.Sprintf("taskflow:session:%s:changes", namespace),
		origin:  uuid.NewString(),
	}
}

func (r *RedisBackend) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.HGet(ctx, r.hashKey, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *RedisBackend) Set(ctx context.Context, key, value string) error {
	if err := r.client.HSet(ctx, r.hashKey, key, value).Err(); err != nil {
		return fmt.Errorf("session: redis set %s: %w", key, err)
	}
	return r.publish(ctx, changeMessage{Origin: r.origin, Key: key, Value: value})
}

func (r *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	if err := r.client.HDel(ctx, r.hashKey, keys...).Err(); err != nil {
		return fmt.Errorf("session: redis delete: %w", err)
	}
	for _, key := range keys {
		if err := r.publish(ctx, changeMessage{Origin: r.origin, Key: key, Deleted: true}); err != nil {
			return err
		}
	}
	return nil
}

// Watch subscribes to changes written by other RedisBackend instances.
func (r *RedisBackend) Watch(ctx context.Context) (<-chan Event, error) {
	sub := r.client.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("session: subscribe %s: %w", r.channel, err)
	}

	events := make(chan Event)
	go func() {
		defer close(events)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var change changeMessage
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					logger.Warn("session: drop malformed change message: %v", err)
					continue
				}
				if change.Origin == r.origin {
					continue
				}
				select {
				case events <- Event{Key: change.Key, Value: change.Value, Deleted: change.Deleted}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}

func (r *RedisBackend) publish(ctx context.Context, change changeMessage) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("session: publish change: %w", err)
	}
	return nil
}
