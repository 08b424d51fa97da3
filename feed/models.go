// Package feed is the feed query/mutation engine: pagination over the
// canonical post order, relevance-ranked search, comment embedding, the
// two-step like/favorite protocol, and the facade that composes them for the
// API layer.
package feed

import (
	"time"

	"github.com/omerson-cruz/vue-share-backend/store"
)

// PostPage is one page of the feed plus the "more available" flag.
type PostPage struct {
	Posts   []store.Post `json:"posts"`
	HasMore bool         `json:"has_more"`
}

// LikeResult is the state returned after a like or unlike: the post's fresh
// counter and the user's favorites resolved into full posts.
type LikeResult struct {
	Likes     int          `json:"likes"`
	Favorites []store.Post `json:"favorites"`
}

// CurrentUser is the authenticated user's own view, with the favorites set
// resolved into full Post entities.
type CurrentUser struct {
	ID        string       `json:"id"`
	Username  string       `json:"username"`
	Email     string       `json:"email"`
	Avatar    string       `json:"avatar"`
	JoinDate  time.Time    `json:"join_date"`
	Favorites []store.Post `json:"favorites"`
}

// NewPostRequest carries the fields of a post to create. The creator comes
// from the verified caller identity, not the payload.
type NewPostRequest struct {
	Title       string   `json:"title"`
	ImageURL    string   `json:"image_url"`
	Categories  []string `json:"categories"`
	Description string   `json:"description"`
}

// UpdatePostRequest carries the mutable fields for updatePost.
type UpdatePostRequest struct {
	Title       string   `json:"title"`
	ImageURL    string   `json:"image_url"`
	Categories  []string `json:"categories"`
	Description string   `json:"description"`
}

// NewMessageRequest carries the body of a comment to add.
type NewMessageRequest struct {
	Body string `json:"body"`
}

// Publisher receives feed events for fan-out to live subscribers. The feed
// layer only knows this interface; the SSE broadcaster satisfies it.
type Publisher interface {
	Publish(kind, postID string)
}

// Event kinds published by the facade.
const (
	EventPostCreated  = "post.created"
	EventPostUpdated  = "post.updated"
	EventPostDeleted  = "post.deleted"
	EventPostLiked    = "post.liked"
	EventPostUnliked  = "post.unliked"
	EventCommentAdded = "comment.added"
)
