package feed

import (
	"context"

	"github.com/omerson-cruz/vue-share-backend/apperror"
	"github.com/omerson-cruz/vue-share-backend/store"
)

// Pager turns a (pageNumber, pageSize) request into a bounded, ordered slice
// of the feed. The canonical order for all feed traversal is creation
// timestamp descending; the store owns that ordering, the pager owns the
// skip/take arithmetic and the hasMore flag.
type Pager struct {
	store store.Store
}

// NewPager creates a Pager over the given store.
func NewPager(st store.Store) *Pager {
	return &Pager{store: st}
}

// Page returns page pageNum of the feed with pageSize posts per page.
//
// Page 1 is the first pageSize posts; any later page skips
// pageSize*(pageNum-1) posts first. hasMore is total > pageSize*pageNum,
// which also covers the edges: a pageSize of 0 yields an empty page with
// hasMore computed from the same formula, and a page past the end yields an
// empty slice with hasMore false. No upper bound on pageSize is enforced
// here; that policy belongs to the facade.
func (p *Pager) Page(ctx context.Context, pageNum, pageSize int) (*PostPage, error) {
	if pageNum < 1 {
		return nil, apperror.NewValidationError("page number must be positive", nil)
	}
	if pageSize < 0 {
		return nil, apperror.NewValidationError("page size must not be negative", nil)
	}

	posts := []store.Post{}
	if pageSize > 0 {
		skip := pageSize * (pageNum - 1)
		var err error
		posts, err = p.store.FindPosts(ctx, skip, pageSize)
		if err != nil {
			return nil, err
		}
		if err := resolveCreators(ctx, p.store, posts); err != nil {
			return nil, err
		}
	}

	total, err := p.store.CountPosts(ctx)
	if err != nil {
		return nil, err
	}

	return &PostPage{
		Posts:   posts,
		HasMore: total > int64(pageSize)*int64(pageNum),
	}, nil
}

// resolveCreators performs the shallow creator join explicitly: collect the
// referenced user ids, batch-fetch them, attach. A dangling created_by
// reference leaves Creator nil rather than failing the read.
func resolveCreators(ctx context.Context, st store.Store, posts []store.Post) error {
	if len(posts) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(posts))
	ids := make([]string, 0, len(posts))
	for i := range posts {
		if _, ok := seen[posts[i].CreatedBy]; !ok {
			seen[posts[i].CreatedBy] = struct{}{}
			ids = append(ids, posts[i].CreatedBy)
		}
	}
	users, err := st.FindUsersByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range posts {
		posts[i].Creator = users[posts[i].CreatedBy]
	}
	return nil
}
