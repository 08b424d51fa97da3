package feed

import (
	"context"
	"fmt"
	"log"

	"github.com/omerson-cruz/vue-share-backend/apperror"
	"github.com/omerson-cruz/vue-share-backend/store"
)

// LikeProtocol coordinates the two-entity state change behind a like: the
// post's likes counter and the user's favorites set live in separate
// documents with no shared transaction. The ordering is fixed: the counter
// mutation happens before the favorites mutation, and both happen before the
// final read of the favorited posts. There is no compensating rollback; if
// the second step fails after the first succeeded, the counter stays ahead
// and the failure is reported upward as-is.
//
// The counter and the set can therefore disagree transiently, and repeated
// likes by the same user diverge permanently: the increment is
// unconditional while the set-add is idempotent. That window is a documented
// property of the protocol, surfaced in tests, not hidden.
type LikeProtocol struct {
	store store.Store
}

// NewLikeProtocol creates a LikeProtocol over the given store.
func NewLikeProtocol(st store.Store) *LikeProtocol {
	return &LikeProtocol{store: st}
}

// Like increments the post's counter, adds the post to the user's favorites
// (a no-op if already present), and returns the fresh counter alongside the
// user's favorites resolved into full posts.
func (l *LikeProtocol) Like(ctx context.Context, postID, username string) (*LikeResult, error) {
	return l.apply(ctx, postID, username, 1)
}

// Unlike is the symmetric operation. Without a matching prior like the
// counter still decrements, possibly below zero, while the favorites removal
// is a no-op; neither is an error.
func (l *LikeProtocol) Unlike(ctx context.Context, postID, username string) (*LikeResult, error) {
	return l.apply(ctx, postID, username, -1)
}

func (l *LikeProtocol) apply(ctx context.Context, postID, username string, delta int) (*LikeResult, error) {
	// Step 1: atomic counter mutation with read-back.
	post, err := l.store.IncrementLikes(ctx, postID, delta)
	if err != nil {
		return nil, err
	}
	if post.Likes < 0 {
		// Logged, not fatal: a negative counter is an accepted outcome of
		// unmatched unlikes. The InvariantError kind is for the audit trail;
		// it is never returned to the caller.
		log.Print(apperror.NewInvariantError(
			fmt.Sprintf("invariant violation: post %s likes counter is %d", post.ID, post.Likes), nil))
	}

	// Step 2: favorites set mutation. A failure here leaves the counter
	// already moved; that partial state is reported, not repaired.
	var user *store.User
	if delta > 0 {
		user, err = l.store.AddFavorite(ctx, username, postID)
	} else {
		user, err = l.store.RemoveFavorite(ctx, username, postID)
	}
	if err != nil {
		return nil, err
	}

	// Step 3: resolve the favorites set into full posts for the caller.
	favorites, err := l.store.FindPostsByIDs(ctx, user.Favorites)
	if err != nil {
		return nil, err
	}

	return &LikeResult{Likes: post.Likes, Favorites: favorites}, nil
}
