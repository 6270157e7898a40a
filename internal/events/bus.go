package events

import (
	"context"
	"sync"

	"github.com/vogiaan1904/playgram-matchroom/pkg/logger"
)

// Lifecycle event types delivered to player channels.
const (
	TypeMatchReady   = "match_ready"
	TypeMatchStarted = "match_started"
	TypeState        = "state"
	TypeTimerTick    = "timer.tick"
	TypeMatchEnd     = "match_end"
)

type Event struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id"`
	Payload any    `json:"payload"`
}

type Subscriber chan Event

// PlayerTopic is the per-player fan-out key. Lifecycle events are published
// only to the topics of the players involved, never broadcast to all.
func PlayerTopic(playerID string) string {
	return "player." + playerID
}

type Bus struct {
	mu     sync.RWMutex
	topics map[string]map[Subscriber]bool
	l      logger.Logger
}

func NewBus(l logger.Logger) *Bus {
	return &Bus{
		topics: make(map[string]map[Subscriber]bool),
		l:      l,
	}
}

func (b *Bus) Subscribe(topic string) Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 64)
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[Subscriber]bool)
	}
	b.topics[topic][sub] = true

	return sub
}

func (b *Bus) Unsubscribe(topic string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.topics[topic]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}

	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.topics, topic)
	}
	close(sub)
}

// Publish delivers the event to every subscriber of the topic. Sends are
// non-blocking: a slow subscriber drops events instead of stalling the
// publisher, so match-state mutation is never held up by delivery.
func (b *Bus) Publish(topic string, e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs, ok := b.topics[topic]
	if !ok {
		return
	}

	for sub := range subs {
		select {
		case sub <- e:
		default:
			b.l.Warnf(context.Background(), "events.Bus.Publish: dropped %s event on topic %s (subscriber buffer full)", e.Type, topic)
		}
	}
}
