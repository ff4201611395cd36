package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
	"github.com/mohitdudhat22/Task-Management-App/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

// RedisRelay carries task events between API instances. Publish writes to a
// Redis channel and Run delivers everything on that channel into the local
// hub, including events this instance published.
type RedisRelay struct {
	rdb     *redis.Client
	channel string
	hub     *Hub
	ready   chan struct{}
}

func NewRedisRelay(rdb *redis.Client, channel string, hub *Hub) *RedisRelay {
	return &RedisRelay{
		rdb:     rdb,
		channel: channel,
		hub:     hub,
		ready:   make(chan struct{}),
	}
}

func (r *RedisRelay) Publish(ctx context.Context, ev domain.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := r.rdb.Publish(ctx, r.channel, b).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Ready is closed once the subscription is confirmed.
func (r *RedisRelay) Ready() <-chan struct{} {
	return r.ready
}

// Run blocks until ctx is cancelled or the subscription fails.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe %s: %w", r.channel, err)
	}
	close(r.ready)
	logger.Info("event relay subscribed", "channel", r.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.Warn("event relay: bad payload", "error", err)
				continue
			}
			if err := r.hub.Publish(ctx, ev); err != nil {
				logger.Warn("event relay: hub publish failed", "event", ev.Name, "error", err)
			}
		}
	}
}
