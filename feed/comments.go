package feed

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/omerson-cruz/vue-share-backend/apperror"
	"github.com/omerson-cruz/vue-share-backend/store"
)

// CommentManager inserts comments into a post's embedded message list. The
// newest comment always lands at position 0, so the head of the list is the
// latest regardless of how many comments exist; the list is never reordered
// afterwards. Comments are write-once: no edit or delete.
type CommentManager struct {
	store store.Store
}

// NewCommentManager creates a CommentManager over the given store.
func NewCommentManager(st store.Store) *CommentManager {
	return &CommentManager{store: st}
}

// AddComment embeds a new comment at the head of the post's messages and
// returns it with its author resolved. Fails with NotFound when either the
// post or the author does not exist.
func (m *CommentManager) AddComment(ctx context.Context, postID, body, authorID string) (*store.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperror.NewValidationError("comment body must not be empty", nil)
	}

	// Resolve the author up front: it both validates the reference and
	// saves a second lookup after the write.
	author, err := m.store.FindUserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	msg := store.Message{
		ID:          uuid.NewString(),
		MessageBody: body,
		MessageDate: time.Now().UTC(),
		MessageUser: authorID,
	}
	post, err := m.store.PrependMessage(ctx, postID, msg)
	if err != nil {
		return nil, err
	}

	// Index 0 is where the store put the new comment; return the stored
	// copy rather than our local one.
	head := post.Messages[0]
	head.Author = author
	return &head, nil
}
