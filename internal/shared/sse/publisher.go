package sse

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publisher sends events to the local hub, or through a Redis channel so
// that every instance subscribed to it broadcasts them.
type Publisher struct {
	hub     *Hub
	rdb     *redis.Client
	channel string
	logger  *zap.Logger
}

type wireEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewPublisher returns a publisher. rdb may be nil for a single instance.
func NewPublisher(hub *Hub, rdb *redis.Client, channel string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{hub: hub, rdb: rdb, channel: channel, logger: logger}
}

// Publish encodes v as the event data. Errors are logged.
func (p *Publisher) Publish(ctx context.Context, eventType string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		p.logger.Warn("encode sse event failed", zap.String("event", eventType), zap.Error(err))
		return
	}
	if p.rdb != nil {
		msg, _ := json.Marshal(wireEvent{Type: eventType, Data: data})
		err := p.rdb.Publish(ctx, p.channel, msg).Err()
		if err == nil {
			return
		}
		p.logger.Warn("redis publish failed, broadcasting locally", zap.Error(err))
	}
	p.hub.Broadcast(Event{Type: eventType, Data: string(data)})
}

// Run relays events from the Redis channel to the local hub until ctx is
// done. It returns at once when no Redis client is configured.
func (p *Publisher) Run(ctx context.Context) {
	if p.rdb == nil {
		return
	}
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev wireEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				p.logger.Warn("bad sse relay message", zap.Error(err))
				continue
			}
			p.hub.Broadcast(Event{Type: ev.Type, Data: string(ev.Data)})
		}
	}
}
