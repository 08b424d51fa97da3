package store

import "context"

// Store is the set of single-document operations the feed engines consume.
// Each method is atomic in isolation; the store guarantees nothing across two
// calls, which is exactly the contract the like protocol is built on. All
// failures are reported as apperror kinds, NotFound included, so callers can
// propagate them without re-wrapping.
type Store interface {
	// InsertUser persists a new user. The caller provides the ID.
	InsertUser(ctx context.Context, user *User) (*User, error)
	// FindUserByID returns the user with the given id.
	FindUserByID(ctx context.Context, id string) (*User, error)
	// FindUserByUsername returns the user with the given unique username.
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	// FindUsersByIDs batch-fetches users for reference resolution. Missing
	// ids are simply absent from the result map, not an error.
	FindUsersByIDs(ctx context.Context, ids []string) (map[string]*User, error)
	// AddFavorite adds postID to the user's favorites with set semantics:
	// adding an already-present id leaves the set unchanged. Returns the
	// updated user.
	AddFavorite(ctx context.Context, username, postID string) (*User, error)
	// RemoveFavorite removes postID from the user's favorites. Removing an
	// absent id is a no-op. Returns the updated user.
	RemoveFavorite(ctx context.Context, username, postID string) (*User, error)

	// InsertPost persists a new post.
	InsertPost(ctx context.Context, post *Post) (*Post, error)
	// FindPostByID returns the post with the given id.
	FindPostByID(ctx context.Context, id string) (*Post, error)
	// FindPosts returns posts in canonical feed order, creation timestamp
	// descending, skipping skip posts and returning at most limit.
	// limit < 0 means no limit.
	FindPosts(ctx context.Context, skip, limit int) ([]Post, error)
	// FindPostsByCreator returns the posts owned by the given user,
	// creation timestamp descending.
	FindPostsByCreator(ctx context.Context, userID string) ([]Post, error)
	// FindPostsByIDs returns the posts for the given ids, preserving the
	// order of ids. Ids with no matching post are skipped.
	FindPostsByIDs(ctx context.Context, ids []string) ([]Post, error)
	// CountPosts returns the total number of posts.
	CountPosts(ctx context.Context) (int64, error)
	// UpdatePostFields sets the mutable fields of the post matching both
	// postID and ownerID, returning the updated post. Wrong id and wrong
	// owner are indistinguishable: both yield NotFound.
	UpdatePostFields(ctx context.Context, postID, ownerID string, fields PostUpdate) (*Post, error)
	// DeletePost removes the post and returns it as it was.
	DeletePost(ctx context.Context, id string) (*Post, error)
	// PrependMessage embeds msg at position 0 of the post's messages and
	// returns the updated post.
	PrependMessage(ctx context.Context, postID string, msg Message) (*Post, error)
	// IncrementLikes atomically adds delta to the post's likes counter and
	// returns the post with the fresh value. The counter is allowed to go
	// negative; the caller decides what to do about that.
	IncrementLikes(ctx context.Context, postID string, delta int) (*Post, error)
	// MatchPosts returns the posts whose indexed textual fields match the
	// free-text term. Candidates only: relevance ordering is the search
	// engine's job, not the store's.
	MatchPosts(ctx context.Context, term string) ([]Post, error)
}
