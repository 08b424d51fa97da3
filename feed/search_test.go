package feed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/omerson-cruz/vue-share-backend/store"
)

func TestSearchEmptyTermMeansNoSearch(t *testing.T) {
	f := newFakeStore()
	f.seedUser("u1", "alice")
	f.seedPost("p1", "sunset", "a sunset photo", "u1", 0, time.Now().UTC())
	searcher := NewSearcher(f)

	for _, term := range []string{"", "   ", "\t\n", "!!!"} {
		posts, err := searcher.Search(context.Background(), term)
		if err != nil {
			t.Fatalf("term %q: %v", term, err)
		}
		if posts != nil {
			t.Errorf("term %q: got %v, want nil (no search performed)", term, posts)
		}
	}
}

func TestSearchNoMatchesIsEmptyNotNil(t *testing.T) {
	f := newFakeStore()
	f.seedUser("u1", "alice")
	f.seedPost("p1", "sunset", "a sunset photo", "u1", 0, time.Now().UTC())

	posts, err := NewSearcher(f).Search(context.Background(), "zebra")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if posts == nil {
		t.Fatal("no matches must be an empty slice, not nil")
	}
	if len(posts) != 0 {
		t.Errorf("got %d posts, want 0", len(posts))
	}
}

func TestSearchCapsResults(t *testing.T) {
	f := newFakeStore()
	f.seedUser("u1", "alice")
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("p%d", i)
		f.seedPost(id, "mountain view", "a mountain", "u1", 0, base.Add(-time.Duration(i)*time.Minute))
	}

	posts, err := NewSearcher(f).Search(context.Background(), "mountain")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(posts) != maxSearchResults {
		t.Errorf("got %d posts, want %d", len(posts), maxSearchResults)
	}
}

func TestSearchRanksByRelevanceThenLikes(t *testing.T) {
	f := newFakeStore()
	f.seedUser("u1", "alice")
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// "dense" mentions the term in a short text: high term share.
	f.seedPost("dense", "ocean", "ocean", "u1", 0, base.Add(-3*time.Minute))
	// "dilute" mentions it once among many other words: low term share.
	f.seedPost("dilute", "ocean", "a very long description about many other things entirely unrelated", "u1", 50, base.Add(-2*time.Minute))
	// Padding so document frequency does not trivialize the scores.
	f.seedPost("other", "forest", "trees", "u1", 0, base.Add(-time.Minute))

	posts, err := NewSearcher(f).Search(context.Background(), "ocean")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	if posts[0].ID != "dense" {
		t.Errorf("highest term share should rank first despite fewer likes, got %s", posts[0].ID)
	}
}

func TestSearchTiesBrokenByLikes(t *testing.T) {
	f := newFakeStore()
	f.seedUser("u1", "alice")
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// Identical text, identical score. The newer post has fewer likes, so
	// popularity must win over recency.
	f.seedPost("popular", "lake", "calm water", "u1", 9, base.Add(-2*time.Minute))
	f.seedPost("recent", "lake", "calm water", "u1", 2, base.Add(-time.Minute))

	posts, err := NewSearcher(f).Search(context.Background(), "lake")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	if posts[0].ID != "popular" || posts[1].ID != "recent" {
		t.Errorf("tie should break by likes desc, got [%s %s]", posts[0].ID, posts[1].ID)
	}
}

func TestSearchMatchesCategories(t *testing.T) {
	f := newFakeStore()
	f.seedUser("u1", "alice")
	post := f.seedPost("p1", "untitled", "no hint here", "u1", 0, time.Now().UTC())
	post.Categories = []string{"wildlife"}

	posts, err := NewSearcher(f).Search(context.Background(), "wildlife")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != "p1" {
		t.Errorf("category text should be searchable, got %v", posts)
	}
}

// stemmingStore widens candidate matching the way the database text index
// does: posts whose text only matches the term after stemming still come back
// as candidates.
type stemmingStore struct {
	*fakeStore
	extraCandidates []string
}

func (s *stemmingStore) MatchPosts(ctx context.Context, term string) ([]store.Post, error) {
	posts, err := s.fakeStore.MatchPosts(ctx, term)
	if err != nil {
		return nil, err
	}
	for _, id := range s.extraCandidates {
		post, err := s.fakeStore.FindPostByID(ctx, id)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, nil
}

func TestSearchStemOnlyCandidatesRankAfterScoredMatches(t *testing.T) {
	f := newFakeStore()
	f.seedUser("u1", "alice")
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f.seedPost("exact", "mountain", "a mountain", "u1", 0, base.Add(-2*time.Minute))
	// Matched by the index via stemming only; no exact query token, so it
	// scores zero and its many likes must not lift it above a scored match.
	f.seedPost("stemmed", "mountains", "many mountains", "u1", 99, base.Add(-time.Minute))

	st := &stemmingStore{fakeStore: f, extraCandidates: []string{"stemmed"}}
	posts, err := NewSearcher(st).Search(context.Background(), "mountain")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	if posts[0].ID != "exact" || posts[1].ID != "stemmed" {
		t.Errorf("order = [%s %s], want [exact stemmed] (zero-score candidates rank last)", posts[0].ID, posts[1].ID)
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("Hello, World! 123-go")
	want := []string{"hello", "world", "123", "go"}
	if len(got) != len(want) {
		t.Fatalf("tokenize returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}
