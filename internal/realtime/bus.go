package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/porchlight-social/porchlight/pkg/logging"
)

// topicPrefix namespaces every transport topic published by this service.
const topicPrefix = "porchlight:changes:"

// Handler consumes one change event.
type Handler func(Event)

// Bus publishes change events and hands out subscriptions. The write
// path publishes; live views subscribe.
type Bus interface {
	Publish(ctx context.Context, topic string, ev Event) error
	Subscribe(ctx context.Context, topics ...string) (Subscription, error)
}

// Subscription is one client's hold on a set of topics. OnEvent
// registers a handler; Close tears the subscription down, after which
// no handler runs again.
type Subscription interface {
	OnEvent(h Handler)
	Close() error
}

// RedisBus carries change events over Redis pub/sub.
type RedisBus struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisBus creates a bus over an existing Redis client.
func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{
		client: client,
		logger: logging.WithComponent("realtime-bus"),
	}
}

// Publish sends one event to every subscriber of the topic.
func (b *RedisBus) Publish(ctx context.Context, topic string, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return b.client.Publish(ctx, topicPrefix+topic, payload).Err()
}

// Subscribe opens a subscription on the given topics.
func (b *RedisBus) Subscribe(ctx context.Context, topics ...string) (Subscription, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("at least one topic is required")
	}

	full := make([]string, len(topics))
	for i, t := range topics {
		full[i] = topicPrefix + t
	}

	pubsub := b.client.Subscribe(ctx, full...)
	// Force the SUBSCRIBE round-trip so a failed connection surfaces here,
	// not on the first missed event.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		logger: b.logger,
		done:   make(chan struct{}),
	}
	go sub.run()
	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	logger *zap.Logger

	mu       sync.Mutex
	handlers []Handler
	closed   bool
	done     chan struct{}
}

func (s *redisSubscription) run() {
	ch := s.pubsub.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				s.logger.Warn("Dropping undecodable change event",
					zap.String("topic", msg.Channel),
					zap.Error(err))
				continue
			}
			s.mu.Lock()
			if s.closed {
				s.mu.Unlock()
				return
			}
			handlers := make([]Handler, len(s.handlers))
			copy(handlers, s.handlers)
			s.mu.Unlock()
			for _, h := range handlers {
				h(ev)
			}
		}
	}
}

// OnEvent registers a handler; events arriving before the first handler
// is registered are dropped.
func (s *redisSubscription) OnEvent(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.handlers = append(s.handlers, h)
}

// Close tears the subscription down. Idempotent.
func (s *redisSubscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.handlers = nil
	close(s.done)
	s.mu.Unlock()
	return s.pubsub.Close()
}
