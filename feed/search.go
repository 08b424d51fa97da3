package feed

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/omerson-cruz/vue-share-backend/store"
)

// maxSearchResults caps every search result set.
const maxSearchResults = 5

// Searcher scores posts against a query string. The store supplies the
// candidates from its text index; the relevance score itself is computed
// here, in the open, as a term-frequency / document-frequency sum over every
// textual field of a post. Ranking is by (score desc, likes desc): ties in
// relevance are broken by popularity alone, never by recency.
type Searcher struct {
	store store.Store
}

// NewSearcher creates a Searcher over the given store.
func NewSearcher(st store.Store) *Searcher {
	return &Searcher{store: st}
}

// Search returns at most maxSearchResults posts ranked for the term.
//
// An empty or whitespace term means "no search performed": the result is nil
// with no error, which callers must treat as distinct from an empty match
// set. A term that matches nothing returns an empty, non-nil slice.
func (s *Searcher) Search(ctx context.Context, term string) ([]store.Post, error) {
	queryTokens := tokenize(term)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	candidates, err := s.store.MatchPosts(ctx, term)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []store.Post{}, nil
	}

	total, err := s.store.CountPosts(ctx)
	if err != nil {
		return nil, err
	}

	// Document frequency per query token. The text index only surfaces
	// matching posts, so counting within the candidate set counts every
	// post that contains the token.
	//
	// The index stems its terms while this tokenizer does not: a candidate
	// matched only through stemming ("mountains" for "mountain") contains no
	// exact query token, scores zero, and sorts after every scored match,
	// ordered among its peers by likes.
	docTokens := make([]map[string]int, len(candidates))
	df := make(map[string]int, len(queryTokens))
	for i := range candidates {
		docTokens[i] = tokenCounts(postText(&candidates[i]))
		for _, t := range queryTokens {
			if docTokens[i][t] > 0 {
				df[t]++
			}
		}
	}

	scores := make(map[string]float64, len(candidates))
	for i := range candidates {
		scores[candidates[i].ID] = relevanceScore(queryTokens, docTokens[i], df, total)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := scores[candidates[i].ID], scores[candidates[j].ID]
		if si != sj {
			return si > sj
		}
		return candidates[i].Likes > candidates[j].Likes
	})

	if len(candidates) > maxSearchResults {
		candidates = candidates[:maxSearchResults]
	}
	return candidates, nil
}

// relevanceScore sums tf*idf over the query tokens. tf is the token's share
// of the document's tokens; idf dampens tokens that appear in many posts.
func relevanceScore(queryTokens []string, doc map[string]int, df map[string]int, totalDocs int64) float64 {
	docLen := 0
	for _, n := range doc {
		docLen += n
	}
	if docLen == 0 {
		return 0
	}
	var score float64
	for _, t := range queryTokens {
		n := doc[t]
		if n == 0 {
			continue
		}
		tf := float64(n) / float64(docLen)
		idf := math.Log(1 + float64(totalDocs)/float64(1+df[t]))
		score += tf * idf
	}
	return score
}

// postText concatenates every indexed textual field of a post.
func postText(p *store.Post) string {
	parts := make([]string, 0, 2+len(p.Categories))
	parts = append(parts, p.Title, p.Description)
	parts = append(parts, p.Categories...)
	return strings.Join(parts, " ")
}

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func tokenCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, t := range tokenize(text) {
		counts[t]++
	}
	return counts
}
