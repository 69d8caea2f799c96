package broadcast

import (
	"errors"
	"sync"
)

const DefaultSubscriberBuffer = 16

var ErrHubUnavailable = errors.New("hub_unavailable")

// Hub fans status messages out to subscribers. Slow subscribers drop messages
// once their buffer is full.
type Hub struct {
	mu               sync.RWMutex
	subs             map[uint64]chan Message
	nextID           uint64
	subscriberBuffer int
}

type Subscription struct {
	hub  *Hub
	id   uint64
	ch   chan Message
	once sync.Once
}

func NewHub() *Hub {
	return &Hub{
		subs:             make(map[uint64]chan Message),
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

// Publish returns the number of subscribers that accepted msg.
func (h *Hub) Publish(msg Message) int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, ch := range h.subs {
		select {
		case ch <- msg:
			delivered++
		default:
		}
	}
	return delivered
}

func (h *Hub) Subscribe() (*Subscription, error) {
	if h == nil {
		return nil, ErrHubUnavailable
	}
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	ch := make(chan Message, h.subscriberBuffer)
	h.subs[id] = ch
	h.mu.Unlock()

	return &Subscription{hub: h, id: id, ch: ch}, nil
}

func (h *Hub) SubscriberCount() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// unsubscribe closes the channel under the write lock so Publish never sends on it.
func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	ch, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
		close(ch)
	}
	h.mu.Unlock()
}

// Messages is closed once the subscription is closed.
func (s *Subscription) Messages() <-chan Message {
	if s == nil {
		return nil
	}
	return s.ch
}

// Close releases the subscription. Only the first call has an effect.
func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.id)
	})
}
