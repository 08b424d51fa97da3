// Package live fans feed events out to connected Server-Sent-Events clients.
// Mutating feed operations publish an event; every connected client receives
// it on its own buffered channel.
package live

import "time"

// Event is one feed event as delivered to subscribers.
type Event struct {
	// Kind is the event name, e.g. "post.created" or "post.liked".
	Kind string `json:"kind"`
	// PostID identifies the post the event concerns.
	PostID string `json:"post_id"`
	// At is when the event was published.
	At time.Time `json:"at"`
}
