package feed

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/omerson-cruz/vue-share-backend/apperror"
	"github.com/omerson-cruz/vue-share-backend/auth"
	"github.com/omerson-cruz/vue-share-backend/store"
)

// Handler exposes the feed facade over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates the feed HTTP handlers.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the feed endpoints. Reads are public; mutations and the
// current-user view sit behind the auth middleware.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/posts", h.HandleGetFeed())
	r.Get("/posts/page", h.HandleGetFeedPage())
	r.Get("/posts/search", h.HandleSearch())
	r.Get("/posts/{postID}", h.HandleGetPost())
	r.Get("/users/{username}", h.HandleGetUser())
	r.Get("/users/{username}/posts", h.HandleGetUserPosts())

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/me", h.HandleGetCurrentUser())
		r.Post("/posts", h.HandleCreatePost())
		r.Put("/posts/{postID}", h.HandleUpdatePost())
		r.Delete("/posts/{postID}", h.HandleDeletePost())
		r.Post("/posts/{postID}/messages", h.HandleAddComment())
		r.Post("/posts/{postID}/like", h.HandleLike())
		r.Post("/posts/{postID}/unlike", h.HandleUnlike())
	})

	return r
}

// currentUser resolves the verified identity on the request into the stored
// user. Tokens carry the username; mutations that record ownership need the
// user's id, so one lookup stands between the two.
func (h *Handler) currentUser(r *http.Request) (*store.User, error) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return nil, apperror.NewAuthError("no verified identity on request", nil)
	}
	return h.service.GetUser(r.Context(), identity.Username)
}

// HandleGetFeed serves the whole feed in canonical order.
func (h *Handler) HandleGetFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.service.GetFeed(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, posts)
	}
}

// HandleGetFeedPage serves one page of the feed. Page number and size come
// from the "page" and "size" query parameters.
func (h *Handler) HandleGetFeedPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageNum, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("page must be an integer", err))
			return
		}
		pageSize, err := strconv.Atoi(r.URL.Query().Get("size"))
		if err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("size must be an integer", err))
			return
		}

		page, err := h.service.GetFeedPage(r.Context(), pageNum, pageSize)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, page)
	}
}

// HandleSearch serves the relevance-ranked search over the "term" query
// parameter. A blank term answers with an empty list.
func (h *Handler) HandleSearch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.service.Search(r.Context(), r.URL.Query().Get("term"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if posts == nil {
			posts = []store.Post{}
		}
		auth.WriteJSON(w, http.StatusOK, posts)
	}
}

// HandleGetPost serves a single post with its comment authors resolved.
func (h *Handler) HandleGetPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.service.GetPost(r.Context(), chi.URLParam(r, "postID"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, post)
	}
}

// HandleGetUser serves a user's public profile.
func (h *Handler) HandleGetUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, user)
	}
}

// HandleGetUserPosts serves the posts created by the named user.
func (h *Handler) HandleGetUserPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		posts, err := h.service.GetUserPosts(r.Context(), user.ID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, posts)
	}
}

// HandleGetCurrentUser serves the caller's own profile with favorites
// resolved into posts.
func (h *Handler) HandleGetCurrentUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("no verified identity on request", nil))
			return
		}
		current, err := h.service.GetCurrentUser(r.Context(), identity.Username)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, current)
	}
}

// HandleCreatePost creates a post owned by the caller.
func (h *Handler) HandleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.currentUser(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var req NewPostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		post, err := h.service.CreatePost(r.Context(), user.ID, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, post)
	}
}

// HandleUpdatePost updates a post the caller owns.
func (h *Handler) HandleUpdatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.currentUser(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var req UpdatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		post, err := h.service.UpdatePost(r.Context(), chi.URLParam(r, "postID"), user.ID, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, post)
	}
}

// HandleDeletePost deletes a post and answers with the removed entity.
func (h *Handler) HandleDeletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.service.DeletePost(r.Context(), chi.URLParam(r, "postID"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, post)
	}
}

// HandleAddComment prepends a comment to a post, authored by the caller.
func (h *Handler) HandleAddComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.currentUser(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var req NewMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		msg, err := h.service.AddComment(r.Context(), chi.URLParam(r, "postID"), req.Body, user.ID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, msg)
	}
}

// HandleLike runs the like protocol for the caller.
func (h *Handler) HandleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("no verified identity on request", nil))
			return
		}
		result, err := h.service.Like(r.Context(), chi.URLParam(r, "postID"), identity.Username)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, result)
	}
}

// HandleUnlike runs the inverse protocol for the caller.
func (h *Handler) HandleUnlike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("no verified identity on request", nil))
			return
		}
		result, err := h.service.Unlike(r.Context(), chi.URLParam(r, "postID"), identity.Username)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, result)
	}
}
