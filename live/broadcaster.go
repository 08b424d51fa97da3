package live

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// clientBuffer is how many events a slow client may fall behind before
// events are dropped for it.
const clientBuffer = 32

// Broadcaster tracks connected clients and delivers every published event to
// each of them. Delivery is best-effort: a client that cannot keep up loses
// events rather than blocking the publisher.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[string]chan Event
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[string]chan Event)}
}

// NewClient registers a subscriber and returns its id and event channel. The
// caller must call RemoveClient with the id when the subscriber goes away.
func (b *Broadcaster) NewClient() (string, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	clientID := uuid.NewString()
	ch := make(chan Event, clientBuffer)
	b.clients[clientID] = ch
	return clientID, ch
}

// RemoveClient unregisters a subscriber and closes its channel.
func (b *Broadcaster) RemoveClient(clientID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.clients[clientID]; ok {
		close(ch)
		delete(b.clients, clientID)
	}
}

// Publish delivers an event to every connected client. Satisfies the feed
// package's Publisher interface.
func (b *Broadcaster) Publish(kind, postID string) {
	event := Event{Kind: kind, PostID: postID, At: time.Now().UTC()}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for clientID, ch := range b.clients {
		select {
		case ch <- event:
		default:
			// Channel full: the client is not draining. Drop the event for
			// this client and keep going.
			log.Printf("dropping event %s for slow client %s", kind, clientID)
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
