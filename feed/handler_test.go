package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/omerson-cruz/vue-share-backend/auth"
	"github.com/omerson-cruz/vue-share-backend/config"
	"github.com/omerson-cruz/vue-share-backend/store"
)

// newTestAPI wires the fake store behind the real handler stack and signs up
// one user, returning the router and a bearer token for that user.
func newTestAPI(t *testing.T) (*fakeStore, chi.Router, string) {
	t.Helper()
	f := newFakeStore()
	authSvc := auth.NewAuthService(f, config.AuthConfig{JWTSecret: "test-secret", TokenDuration: time.Hour})
	resp, err := authSvc.Signup(context.Background(), auth.SignupRequest{
		Username: "alice", Email: "alice@example.com", Password: "pw123456",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	handler := NewHandler(NewService(f, nil))
	router := chi.NewRouter()
	router.Mount("/", handler.Routes(auth.Middleware(authSvc)))
	return f, router, resp.Token
}

func doJSON(t *testing.T, router chi.Router, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *strings.Reader
	if body == "" {
		reqBody = strings.NewReader("")
	} else {
		reqBody = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerFeedRoundTrip(t *testing.T) {
	_, router, token := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/posts", token,
		`{"title":"sunset","image_url":"http://img.example.com/s.jpg","categories":["nature"],"description":"a sunset"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created store.Post
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created post: %v", err)
	}

	rec = doJSON(t, router, http.MethodGet, "/posts", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("feed status = %d", rec.Code)
	}
	var feedPosts []store.Post
	if err := json.Unmarshal(rec.Body.Bytes(), &feedPosts); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if len(feedPosts) != 1 || feedPosts[0].ID != created.ID {
		t.Errorf("feed = %v, want the created post", feedPosts)
	}
	if feedPosts[0].Creator == nil || feedPosts[0].Creator.Username != "alice" {
		t.Errorf("creator not resolved in feed: %+v", feedPosts[0].Creator)
	}

	rec = doJSON(t, router, http.MethodGet, "/posts/"+created.ID, "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("get post status = %d", rec.Code)
	}
}

func TestHandlerRequiresAuthForMutations(t *testing.T) {
	_, router, _ := newTestAPI(t)

	cases := []struct{ method, path string }{
		{http.MethodPost, "/posts"},
		{http.MethodPut, "/posts/p1"},
		{http.MethodDelete, "/posts/p1"},
		{http.MethodPost, "/posts/p1/messages"},
		{http.MethodPost, "/posts/p1/like"},
		{http.MethodPost, "/posts/p1/unlike"},
		{http.MethodGet, "/me"},
	}
	for _, c := range cases {
		rec := doJSON(t, router, c.method, c.path, "", "{}")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status = %d, want %d", c.method, c.path, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestHandlerPagination(t *testing.T) {
	f, router, _ := newTestAPI(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		f.seedPost(
			"p"+string(rune('a'+i)), "post", "desc", "u-unknown", 0,
			base.Add(-time.Duration(i)*time.Minute),
		)
	}

	rec := doJSON(t, router, http.MethodGet, "/posts/page?page=2&size=5", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("page status = %d, body %s", rec.Code, rec.Body.String())
	}
	var page PostPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Posts) != 2 {
		t.Errorf("page 2 has %d posts, want 2", len(page.Posts))
	}
	if page.HasMore {
		t.Error("page 2 of 7 posts should not have more")
	}

	rec = doJSON(t, router, http.MethodGet, "/posts/page?page=x&size=5", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed page: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandlerLikeFlow(t *testing.T) {
	f, router, token := newTestAPI(t)
	f.seedPost("p1", "title", "desc", "u-any", 0, time.Now().UTC())

	rec := doJSON(t, router, http.MethodPost, "/posts/p1/like", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("like status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result LikeResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode like result: %v", err)
	}
	if result.Likes != 1 || len(result.Favorites) != 1 {
		t.Errorf("like result = %+v", result)
	}

	rec = doJSON(t, router, http.MethodGet, "/me", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d", rec.Code)
	}
	var current CurrentUser
	if err := json.Unmarshal(rec.Body.Bytes(), &current); err != nil {
		t.Fatalf("decode current user: %v", err)
	}
	if len(current.Favorites) != 1 || current.Favorites[0].ID != "p1" {
		t.Errorf("favorites = %v, want [p1]", current.Favorites)
	}

	rec = doJSON(t, router, http.MethodPost, "/posts/p1/unlike", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unlike status = %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode unlike result: %v", err)
	}
	if result.Likes != 0 || len(result.Favorites) != 0 {
		t.Errorf("unlike result = %+v", result)
	}
}

func TestHandlerSearch(t *testing.T) {
	f, router, _ := newTestAPI(t)
	f.seedPost("p1", "mountain trail", "desc", "u-any", 0, time.Now().UTC())

	rec := doJSON(t, router, http.MethodGet, "/posts/search?term=mountain", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("search status = %d", rec.Code)
	}
	var posts []store.Post
	if err := json.Unmarshal(rec.Body.Bytes(), &posts); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != "p1" {
		t.Errorf("search = %v, want [p1]", posts)
	}

	// A blank term still answers 200 with an empty list over HTTP.
	rec = doJSON(t, router, http.MethodGet, "/posts/search?term=", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("blank search status = %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("blank search body = %s, want []", body)
	}
}
