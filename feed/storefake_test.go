package feed

import (
	"context"
	"sort"
	"time"

	"github.com/omerson-cruz/vue-share-backend/apperror"
	"github.com/omerson-cruz/vue-share-backend/store"
)

// fakeStore is an in-memory store.Store with the same per-call semantics as
// the SQL implementation: set semantics for favorites, prepend-at-zero for
// messages, unconditional counter increments, order-preserving batch fetch.
// Every method mutates or reads under copy-out so tests cannot alias internal
// state.
type fakeStore struct {
	users map[string]*store.User // keyed by id
	posts map[string]*store.Post // keyed by id
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[string]*store.User),
		posts: make(map[string]*store.Post),
	}
}

func copyUser(u *store.User) *store.User {
	cp := *u
	cp.Favorites = append([]string(nil), u.Favorites...)
	return &cp
}

func copyPost(p *store.Post) *store.Post {
	cp := *p
	cp.Categories = append([]string(nil), p.Categories...)
	cp.Messages = append([]store.Message(nil), p.Messages...)
	cp.Creator = nil
	return &cp
}

func (f *fakeStore) InsertUser(_ context.Context, user *store.User) (*store.User, error) {
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return nil, apperror.NewConflictError("username already exists", nil)
		}
	}
	cp := copyUser(user)
	if cp.JoinDate.IsZero() {
		cp.JoinDate = time.Now().UTC()
	}
	f.users[cp.ID] = cp
	return copyUser(cp), nil
}

func (f *fakeStore) FindUserByID(_ context.Context, id string) (*store.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError("user not found", nil)
	}
	return copyUser(user), nil
}

func (f *fakeStore) FindUserByUsername(_ context.Context, username string) (*store.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return copyUser(user), nil
		}
	}
	return nil, apperror.NewNotFoundError("user not found", nil)
}

func (f *fakeStore) FindUsersByIDs(_ context.Context, ids []string) (map[string]*store.User, error) {
	result := make(map[string]*store.User, len(ids))
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			result[id] = copyUser(user)
		}
	}
	return result, nil
}

func (f *fakeStore) userByUsername(username string) (*store.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, apperror.NewNotFoundError("user not found", nil)
}

func (f *fakeStore) AddFavorite(_ context.Context, username, postID string) (*store.User, error) {
	user, err := f.userByUsername(username)
	if err != nil {
		return nil, err
	}
	present := false
	for _, id := range user.Favorites {
		if id == postID {
			present = true
			break
		}
	}
	if !present {
		user.Favorites = append(user.Favorites, postID)
	}
	return copyUser(user), nil
}

func (f *fakeStore) RemoveFavorite(_ context.Context, username, postID string) (*store.User, error) {
	user, err := f.userByUsername(username)
	if err != nil {
		return nil, err
	}
	kept := user.Favorites[:0]
	for _, id := range user.Favorites {
		if id != postID {
			kept = append(kept, id)
		}
	}
	user.Favorites = kept
	return copyUser(user), nil
}

func (f *fakeStore) InsertPost(_ context.Context, post *store.Post) (*store.Post, error) {
	cp := copyPost(post)
	if cp.CreatedDate.IsZero() {
		cp.CreatedDate = time.Now().UTC()
	}
	if cp.Messages == nil {
		cp.Messages = []store.Message{}
	}
	f.posts[cp.ID] = cp
	return copyPost(cp), nil
}

func (f *fakeStore) FindPostByID(_ context.Context, id string) (*store.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, apperror.NewNotFoundError("post not found", nil)
	}
	return copyPost(post), nil
}

// orderedPosts returns every post in canonical feed order, creation timestamp
// descending with the id as tiebreaker, same as the SQL ORDER BY.
func (f *fakeStore) orderedPosts() []store.Post {
	posts := make([]store.Post, 0, len(f.posts))
	for _, p := range f.posts {
		posts = append(posts, *copyPost(p))
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedDate.Equal(posts[j].CreatedDate) {
			return posts[i].CreatedDate.After(posts[j].CreatedDate)
		}
		return posts[i].ID < posts[j].ID
	})
	return posts
}

func (f *fakeStore) FindPosts(_ context.Context, skip, limit int) ([]store.Post, error) {
	posts := f.orderedPosts()
	if skip >= len(posts) {
		return []store.Post{}, nil
	}
	posts = posts[skip:]
	if limit >= 0 && limit < len(posts) {
		posts = posts[:limit]
	}
	return posts, nil
}

func (f *fakeStore) FindPostsByCreator(_ context.Context, userID string) ([]store.Post, error) {
	result := []store.Post{}
	for _, p := range f.orderedPosts() {
		if p.CreatedBy == userID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakeStore) FindPostsByIDs(_ context.Context, ids []string) ([]store.Post, error) {
	result := []store.Post{}
	for _, id := range ids {
		if post, ok := f.posts[id]; ok {
			result = append(result, *copyPost(post))
		}
	}
	return result, nil
}

func (f *fakeStore) CountPosts(_ context.Context) (int64, error) {
	return int64(len(f.posts)), nil
}

func (f *fakeStore) UpdatePostFields(_ context.Context, postID, ownerID string, fields store.PostUpdate) (*store.Post, error) {
	post, ok := f.posts[postID]
	if !ok || post.CreatedBy != ownerID {
		return nil, apperror.NewNotFoundError("post not found", nil)
	}
	post.Title = fields.Title
	post.ImageURL = fields.ImageURL
	post.Categories = append([]string(nil), fields.Categories...)
	post.Description = fields.Description
	return copyPost(post), nil
}

func (f *fakeStore) DeletePost(_ context.Context, id string) (*store.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, apperror.NewNotFoundError("post not found", nil)
	}
	delete(f.posts, id)
	return copyPost(post), nil
}

func (f *fakeStore) PrependMessage(_ context.Context, postID string, msg store.Message) (*store.Post, error) {
	post, ok := f.posts[postID]
	if !ok {
		return nil, apperror.NewNotFoundError("post not found", nil)
	}
	post.Messages = append([]store.Message{msg}, post.Messages...)
	return copyPost(post), nil
}

func (f *fakeStore) IncrementLikes(_ context.Context, postID string, delta int) (*store.Post, error) {
	post, ok := f.posts[postID]
	if !ok {
		return nil, apperror.NewNotFoundError("post not found", nil)
	}
	post.Likes += delta
	return copyPost(post), nil
}

// MatchPosts mirrors the text index: a post is a candidate when it contains
// every token of the term somewhere in its textual fields.
func (f *fakeStore) MatchPosts(_ context.Context, term string) ([]store.Post, error) {
	queryTokens := tokenize(term)
	result := []store.Post{}
	for _, p := range f.orderedPosts() {
		counts := tokenCounts(postText(&p))
		matched := true
		for _, t := range queryTokens {
			if counts[t] == 0 {
				matched = false
				break
			}
		}
		if matched {
			result = append(result, p)
		}
	}
	return result, nil
}

// seedUser inserts a user directly, panicking on conflict. Test setup only.
func (f *fakeStore) seedUser(id, username string) *store.User {
	user := &store.User{
		ID:        id,
		Username:  username,
		Email:     username + "@example.com",
		JoinDate:  time.Now().UTC(),
		Favorites: []string{},
	}
	f.users[id] = user
	return user
}

// seedPost inserts a post directly with the given creation time. Test setup
// only.
func (f *fakeStore) seedPost(id, title, description, createdBy string, likes int, createdAt time.Time) *store.Post {
	post := &store.Post{
		ID:          id,
		Title:       title,
		ImageURL:    "http://img.example.com/" + id + ".jpg",
		Categories:  []string{},
		Description: description,
		CreatedDate: createdAt,
		Likes:       likes,
		CreatedBy:   createdBy,
		Messages:    []store.Message{},
	}
	f.posts[id] = post
	return post
}
