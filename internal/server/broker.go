package server

import (
	"encoding/json"
	"sync"

	"github.com/playperu/cityguide/internal/app"
)

// Event is the payload pushed to page subscribers.
type Event struct {
	Type string    `json:"type"`
	View *app.View `json:"view,omitempty"`
}

// Broker is an in-process pub/sub fanning views out to SSE and WebSocket
// subscribers.
type Broker struct {
	mu   sync.RWMutex
	subs map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(ch chan []byte) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// Publish sends an event to every subscriber.
func (b *Broker) Publish(event Event) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow; the next view supersedes it.
		}
	}
	b.mu.RUnlock()
}

// PublishView is an app.Controller subscriber.
func (b *Broker) PublishView(v app.View) {
	b.Publish(Event{Type: "view", View: &v})
}
