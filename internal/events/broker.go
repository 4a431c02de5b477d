package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultBufferSize = 64
	defaultMaxHistory = 1000
)

// Broker is a publish-subscribe fan-out for chat events with a bounded
// in-memory history. Publishing never blocks: a subscriber that cannot keep
// up has events dropped rather than stalling the session core.
type Broker struct {
	mu      sync.RWMutex
	subs    map[chan Event]string
	done    chan struct{}
	history []Event
	maxHist int
	bufSize int
}

// NewBroker creates a broker with default buffer and history bounds.
func NewBroker() *Broker {
	return &Broker{
		subs:    make(map[chan Event]string),
		done:    make(chan struct{}),
		maxHist: defaultMaxHistory,
		bufSize: defaultBufferSize,
	}
}

// Publish delivers an event to every subscriber and records it in history.
func (b *Broker) Publish(t Type, sessionID string, payload any) {
	select {
	case <-b.done:
		return
	default:
	}

	event := Event{
		ID:        uuid.NewString(),
		Type:      t,
		SessionID: sessionID,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	b.mu.Lock()
	b.history = append(b.history, event)
	if len(b.history) > b.maxHist {
		copy(b.history, b.history[len(b.history)-b.maxHist:])
		b.history = b.history[:b.maxHist]
	}

	for ch := range b.subs {
		select {
		case ch <- event:
		default:
			// Subscriber buffer full; drop rather than block the core.
		}
	}
	b.mu.Unlock()
}

// Subscribe registers a new subscriber. The subscription ends when ctx is
// cancelled; the returned channel is closed at that point.
func (b *Broker) Subscribe(ctx context.Context) <-chan Event {
	b.mu.Lock()
	ch := make(chan Event, b.bufSize)
	b.subs[ch] = uuid.NewString()
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.unsubscribe(ch)
	}()

	return ch
}

func (b *Broker) unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// History returns recorded events for a session, oldest first. An empty
// sessionID returns everything.
func (b *Broker) History(sessionID string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Event
	for _, e := range b.history {
		if sessionID == "" || e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out
}

// SubscriberCount reports how many subscriptions are live.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Shutdown closes every subscription. Further publishes are dropped.
func (b *Broker) Shutdown() {
	select {
	case <-b.done:
		return
	default:
		close(b.done)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}
