package feed

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/omerson-cruz/vue-share-backend/apperror"
	"github.com/omerson-cruz/vue-share-backend/store"
)

// maxPageSize is the facade's page-size policy. The pagination engine itself
// enforces no bound.
const maxPageSize = 100

// Service is the feed query facade: the single entry surface the API layer
// talks to. It validates arguments, composes the engines, and publishes feed
// events. Caller identity arrives already verified; no token logic here.
type Service struct {
	store    store.Store
	pager    *Pager
	searcher *Searcher
	comments *CommentManager
	likes    *LikeProtocol
	events   Publisher
}

// NewService creates the facade over a store. events may be nil when no live
// subscribers are wired in.
func NewService(st store.Store, events Publisher) *Service {
	return &Service{
		store:    st,
		pager:    NewPager(st),
		searcher: NewSearcher(st),
		comments: NewCommentManager(st),
		likes:    NewLikeProtocol(st),
		events:   events,
	}
}

func (s *Service) publish(kind, postID string) {
	if s.events != nil {
		s.events.Publish(kind, postID)
	}
}

// GetFeed returns every post in canonical order with creators populated.
func (s *Service) GetFeed(ctx context.Context) ([]store.Post, error) {
	posts, err := s.store.FindPosts(ctx, 0, -1)
	if err != nil {
		return nil, err
	}
	if err := resolveCreators(ctx, s.store, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetFeedPage returns one page of the feed. Page number and size must be
// positive, and the size is capped by facade policy.
func (s *Service) GetFeedPage(ctx context.Context, pageNum, pageSize int) (*PostPage, error) {
	if pageNum < 1 {
		return nil, apperror.NewValidationError("page number must be positive", nil)
	}
	if pageSize < 1 {
		return nil, apperror.NewValidationError("page size must be positive", nil)
	}
	if pageSize > maxPageSize {
		return nil, apperror.NewValidationError("page size must not exceed 100", nil)
	}
	return s.pager.Page(ctx, pageNum, pageSize)
}

// GetPost returns one post with its comment authors resolved.
func (s *Service) GetPost(ctx context.Context, postID string) (*store.Post, error) {
	if postID == "" {
		return nil, apperror.NewValidationError("post id is required", nil)
	}
	post, err := s.store.FindPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.resolveMessageAuthors(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetUserPosts returns the posts created by the given user.
func (s *Service) GetUserPosts(ctx context.Context, userID string) ([]store.Post, error) {
	if userID == "" {
		return nil, apperror.NewValidationError("user id is required", nil)
	}
	return s.store.FindPostsByCreator(ctx, userID)
}

// Search runs the relevance-ranked search. An empty term yields nil, nil:
// no search performed, which is not the same as zero matches.
func (s *Service) Search(ctx context.Context, term string) ([]store.Post, error) {
	return s.searcher.Search(ctx, term)
}

// CreatePost validates and persists a new post owned by creatorID. The
// creator must exist at creation time; ownership is immutable afterwards.
func (s *Service) CreatePost(ctx context.Context, creatorID string, req NewPostRequest) (*store.Post, error) {
	if creatorID == "" {
		return nil, apperror.NewValidationError("creator id is required", nil)
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.ImageURL) == "" || strings.TrimSpace(req.Description) == "" {
		return nil, apperror.NewValidationError("title, image_url and description are required", nil)
	}
	if _, err := s.store.FindUserByID(ctx, creatorID); err != nil {
		return nil, err
	}
	post := &store.Post{
		ID:          uuid.NewString(),
		Title:       req.Title,
		ImageURL:    req.ImageURL,
		Categories:  req.Categories,
		Description: req.Description,
		CreatedBy:   creatorID,
	}
	created, err := s.store.InsertPost(ctx, post)
	if err != nil {
		return nil, err
	}
	s.publish(EventPostCreated, created.ID)
	return created, nil
}

// UpdatePost sets the mutable fields of the post matching both postID and
// ownerID. Wrong id and wrong owner both report NotFound: the ownership
// check is folded into the lookup filter and the two causes are deliberately
// not distinguished.
func (s *Service) UpdatePost(ctx context.Context, postID, ownerID string, req UpdatePostRequest) (*store.Post, error) {
	if postID == "" || ownerID == "" {
		return nil, apperror.NewValidationError("post id and owner id are required", nil)
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.ImageURL) == "" || strings.TrimSpace(req.Description) == "" {
		return nil, apperror.NewValidationError("title, image_url and description are required", nil)
	}
	post, err := s.store.UpdatePostFields(ctx, postID, ownerID, store.PostUpdate{
		Title:       req.Title,
		ImageURL:    req.ImageURL,
		Categories:  req.Categories,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}
	s.publish(EventPostUpdated, post.ID)
	return post, nil
}

// DeletePost removes and returns the post. No ownership check happens at
// this layer; callers are expected to have authorized the deletion.
func (s *Service) DeletePost(ctx context.Context, postID string) (*store.Post, error) {
	if postID == "" {
		return nil, apperror.NewValidationError("post id is required", nil)
	}
	post, err := s.store.DeletePost(ctx, postID)
	if err != nil {
		return nil, err
	}
	s.publish(EventPostDeleted, post.ID)
	return post, nil
}

// AddComment embeds a comment at the head of the post's messages.
func (s *Service) AddComment(ctx context.Context, postID, body, authorID string) (*store.Message, error) {
	if postID == "" || authorID == "" {
		return nil, apperror.NewValidationError("post id and author id are required", nil)
	}
	msg, err := s.comments.AddComment(ctx, postID, body, authorID)
	if err != nil {
		return nil, err
	}
	s.publish(EventCommentAdded, postID)
	return msg, nil
}

// Like runs the like protocol for the given post and user.
func (s *Service) Like(ctx context.Context, postID, username string) (*LikeResult, error) {
	if postID == "" || username == "" {
		return nil, apperror.NewValidationError("post id and username are required", nil)
	}
	result, err := s.likes.Like(ctx, postID, username)
	if err != nil {
		return nil, err
	}
	s.publish(EventPostLiked, postID)
	return result, nil
}

// Unlike runs the inverse protocol.
func (s *Service) Unlike(ctx context.Context, postID, username string) (*LikeResult, error) {
	if postID == "" || username == "" {
		return nil, apperror.NewValidationError("post id and username are required", nil)
	}
	result, err := s.likes.Unlike(ctx, postID, username)
	if err != nil {
		return nil, err
	}
	s.publish(EventPostUnliked, postID)
	return result, nil
}

// GetCurrentUser returns the caller's own profile with the favorites set
// resolved into full posts, in the order the set stores them.
func (s *Service) GetCurrentUser(ctx context.Context, username string) (*CurrentUser, error) {
	if username == "" {
		return nil, apperror.NewValidationError("username is required", nil)
	}
	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	favorites, err := s.store.FindPostsByIDs(ctx, user.Favorites)
	if err != nil {
		return nil, err
	}
	return &CurrentUser{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Avatar:    user.Avatar,
		JoinDate:  user.JoinDate,
		Favorites: favorites,
	}, nil
}

// GetUser returns a user's public profile by username.
func (s *Service) GetUser(ctx context.Context, username string) (*store.User, error) {
	if username == "" {
		return nil, apperror.NewValidationError("username is required", nil)
	}
	return s.store.FindUserByUsername(ctx, username)
}

// resolveMessageAuthors attaches the commenting users to a post's embedded
// messages with one batch fetch. A comment whose author no longer resolves
// keeps a nil Author.
func (s *Service) resolveMessageAuthors(ctx context.Context, post *store.Post) error {
	if len(post.Messages) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(post.Messages))
	ids := make([]string, 0, len(post.Messages))
	for i := range post.Messages {
		if _, ok := seen[post.Messages[i].MessageUser]; !ok {
			seen[post.Messages[i].MessageUser] = struct{}{}
			ids = append(ids, post.Messages[i].MessageUser)
		}
	}
	users, err := s.store.FindUsersByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range post.Messages {
		post.Messages[i].Author = users[post.Messages[i].MessageUser]
	}
	return nil
}
