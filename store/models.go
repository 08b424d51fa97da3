// Package store is the entity store: the persistent representation of Users
// and Posts, exposed through atomic single-document operations. Comments are
// not standalone entities; they live embedded inside their parent Post as an
// ordered list, newest first, and have no lifecycle of their own.
package store

import "time"

// User is a registered account. Favorites is an ordered, duplicate-free set
// of Post identifiers: a post appears at most once no matter how many likes
// were issued for it.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // never exposed in responses
	Avatar         string    `json:"avatar"`
	JoinDate       time.Time `json:"join_date"`
	Favorites      []string  `json:"favorites"`
}

// Message is a comment embedded in a Post. Its position in the parent's
// Messages slice is authoritative: index 0 is always the newest comment,
// regardless of timestamps.
type Message struct {
	ID          string    `json:"id"`
	MessageBody string    `json:"body"`
	MessageDate time.Time `json:"date"`
	MessageUser string    `json:"user"`
	// Author is the resolved commenting user. Populated on read paths that
	// perform the shallow join; never stored.
	Author *User `json:"author,omitempty"`
}

// Post is a content item owned by a User. Likes is a derived counter whose
// source of truth is the number of users holding the post in their favorites;
// it is maintained independently for read performance, which opens a short
// consistency window during the two-step like protocol.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ImageURL    string    `json:"image_url"`
	Categories  []string  `json:"categories"`
	Description string    `json:"description"`
	CreatedDate time.Time `json:"created_date"`
	Likes       int       `json:"likes"`
	CreatedBy   string    `json:"created_by"`
	Messages    []Message `json:"messages"`
	// Creator is the resolved owning user, populated by the shallow join on
	// feed reads. Never stored.
	Creator *User `json:"creator,omitempty"`
}

// PostUpdate carries the mutable fields of a Post for updatePost. All fields
// are set together, mirroring a single field-set update on the document.
type PostUpdate struct {
	Title       string
	ImageURL    string
	Categories  []string
	Description string
}
