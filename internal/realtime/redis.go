package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const DefaultChannel = "foodtruck:realtime"

// RedisBroker publishes events on a Redis channel and feeds the events it
// receives back into the local hub, so every instance sees every change.
type RedisBroker struct {
	rdb     *redis.Client
	channel string
	hub     *Hub
	log     *zap.Logger
}

func NewRedisBroker(redisURL string, hub *Hub, log *zap.Logger) (*RedisBroker, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisBroker{rdb: rdb, channel: DefaultChannel, hub: hub, log: log.Named("realtime.redis")}, nil
}

// Publish sends ev to Redis. If Redis is unavailable the event is still
// delivered to local clients.
func (b *RedisBroker) Publish(ctx context.Context, ev Event) {
	payload, err := encodeEvent(ev)
	if err == nil {
		err = b.rdb.Publish(ctx, b.channel, payload).Err()
	}
	if err != nil {
		b.log.Warn("redis publish failed, delivering locally", zap.String("table", ev.Table), zap.Error(err))
		b.hub.Publish(ctx, ev)
	}
}

// Run relays channel messages into the hub until ctx is cancelled.
func (b *RedisBroker) Run(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			ev, err := decodeEvent(msg.Payload)
			if err != nil {
				b.log.Warn("discarding malformed event", zap.Error(err))
				continue
			}
			b.hub.Publish(ctx, ev)
		}
	}
}

func (b *RedisBroker) Close() error {
	return b.rdb.Close()
}

func encodeEvent(ev Event) (string, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}
	return string(data), nil
}

func decodeEvent(payload string) (Event, error) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if ev.Table == "" {
		return ev, fmt.Errorf("event without table")
	}
	return ev, nil
}
