package realtime

import (
	"context"
	"sync"
)

// MemoryBus is an in-process Bus for single-node deployments and tests.
// Delivery is synchronous and preserves publish order per topic.
type MemoryBus struct {
	mu   sync.Mutex
	subs map[string][]*memorySubscription
}

// NewMemoryBus creates an in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string][]*memorySubscription)}
}

// Publish delivers the event to every live subscription on the topic.
func (b *MemoryBus) Publish(_ context.Context, topic string, ev Event) error {
	b.mu.Lock()
	subs := make([]*memorySubscription, len(b.subs[topic]))
	copy(subs, b.subs[topic])
	b.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(ev)
	}
	return nil
}

// Subscribe opens a subscription on the given topics.
func (b *MemoryBus) Subscribe(_ context.Context, topics ...string) (Subscription, error) {
	sub := &memorySubscription{bus: b, topics: topics}
	b.mu.Lock()
	for _, t := range topics {
		b.subs[t] = append(b.subs[t], sub)
	}
	b.mu.Unlock()
	return sub, nil
}

type memorySubscription struct {
	bus    *MemoryBus
	topics []string

	mu       sync.Mutex
	handlers []Handler
	closed   bool
}

func (s *memorySubscription) deliver(ev Event) {
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

func (s *memorySubscription) OnEvent(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.handlers = append(s.handlers, h)
}

func (s *memorySubscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.handlers = nil
	s.mu.Unlock()

	s.bus.mu.Lock()
	for _, t := range s.topics {
		subs := s.bus.subs[t]
		for i, sub := range subs {
			if sub == s {
				s.bus.subs[t] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
	s.bus.mu.Unlock()
	return nil
}
