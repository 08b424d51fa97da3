package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/omerson-cruz/vue-share-backend/apperror"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations, used to turn a duplicate username insert into a ConflictError.
const pgUniqueViolation = "23505"

// postColumns is the column list every post query selects, so the scan order
// is the same everywhere.
const postColumns = "id, title, image_url, categories, description, created_date, likes, created_by, messages"

const userColumns = "id, username, email, password_hash, avatar, join_date, favorites"

// searchVector is the tsvector expression over a post's textual fields. It
// must match the expression of the posts_text_search_idx GIN index character
// for character, or the planner falls back to a sequential scan.
// immutable_array_to_string is created by the posts migration.
const searchVector = `to_tsvector('english', title || ' ' || description || ' ' || immutable_array_to_string(categories, ' '))`

// PGStore implements Store on PostgreSQL. Categories and favorites are
// arrays, embedded messages are a jsonb array, and every mutating method is a
// single statement, which is what makes each operation atomic in isolation.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates a PGStore backed by the given pool.
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.Avatar, &u.JoinDate, &u.Favorites)
	if err != nil {
		return nil, err
	}
	if u.Favorites == nil {
		u.Favorites = []string{}
	}
	return &u, nil
}

func scanPost(row rowScanner) (*Post, error) {
	var p Post
	var rawMessages []byte
	err := row.Scan(&p.ID, &p.Title, &p.ImageURL, &p.Categories, &p.Description, &p.CreatedDate, &p.Likes, &p.CreatedBy, &rawMessages)
	if err != nil {
		return nil, err
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	if err := json.Unmarshal(rawMessages, &p.Messages); err != nil {
		return nil, fmt.Errorf("decoding embedded messages of post %s: %w", p.ID, err)
	}
	if p.Messages == nil {
		p.Messages = []Message{}
	}
	return &p, nil
}

func collectPosts(rows pgx.Rows) ([]Post, error) {
	defer rows.Close()
	posts := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// InsertUser persists a new user. A taken username surfaces as ConflictError.
func (s *PGStore) InsertUser(ctx context.Context, user *User) (*User, error) {
	query := `INSERT INTO users (id, username, email, password_hash, avatar, favorites)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING join_date`
	favorites := user.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	err := s.db.QueryRow(ctx, query, user.ID, user.Username, user.Email, user.HashedPassword, user.Avatar, favorites).Scan(&user.JoinDate)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.NewConflictError("username already exists", err)
		}
		return nil, apperror.NewDatabaseError("failed to insert user", err)
	}
	user.Favorites = favorites
	return user, nil
}

func (s *PGStore) FindUserByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user %s not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to find user", err)
	}
	return user, nil
}

func (s *PGStore) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(s.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user %q not found", username), nil)
		}
		return nil, apperror.NewDatabaseError("failed to find user", err)
	}
	return user, nil
}

// FindUsersByIDs batch-fetches the referenced users in one round trip. This
// is the second half of the explicit read-then-resolve join the feed engines
// perform instead of relying on implicit population.
func (s *PGStore) FindUsersByIDs(ctx context.Context, ids []string) (map[string]*User, error) {
	users := make(map[string]*User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	rows, err := s.db.Query(ctx, query, ids)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to batch-fetch users", err)
	}
	defer rows.Close()
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan user", err)
		}
		users[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to batch-fetch users", err)
	}
	return users, nil
}

// AddFavorite performs a set-add: the CASE keeps the statement a no-op when
// the id is already present, so calling it twice never duplicates an entry.
func (s *PGStore) AddFavorite(ctx context.Context, username, postID string) (*User, error) {
	query := `UPDATE users
	          SET favorites = CASE WHEN $2 = ANY(favorites) THEN favorites
	                               ELSE array_append(favorites, $2) END
	          WHERE username = $1
	          RETURNING ` + userColumns
	user, err := scanUser(s.db.QueryRow(ctx, query, username, postID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user %q not found", username), nil)
		}
		return nil, apperror.NewDatabaseError("failed to add favorite", err)
	}
	return user, nil
}

// RemoveFavorite removes the id from the set; removing an absent id leaves
// the row unchanged but still succeeds.
func (s *PGStore) RemoveFavorite(ctx context.Context, username, postID string) (*User, error) {
	query := `UPDATE users
	          SET favorites = array_remove(favorites, $2)
	          WHERE username = $1
	          RETURNING ` + userColumns
	user, err := scanUser(s.db.QueryRow(ctx, query, username, postID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user %q not found", username), nil)
		}
		return nil, apperror.NewDatabaseError("failed to remove favorite", err)
	}
	return user, nil
}

func (s *PGStore) InsertPost(ctx context.Context, post *Post) (*Post, error) {
	query := `INSERT INTO posts (id, title, image_url, categories, description, likes, created_by, messages)
	          VALUES ($1, $2, $3, $4, $5, 0, $6, '[]')
	          RETURNING created_date`
	categories := post.Categories
	if categories == nil {
		categories = []string{}
	}
	err := s.db.QueryRow(ctx, query, post.ID, post.Title, post.ImageURL, categories, post.Description, post.CreatedBy).Scan(&post.CreatedDate)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to insert post", err)
	}
	post.Categories = categories
	post.Likes = 0
	post.Messages = []Message{}
	return post, nil
}

func (s *PGStore) FindPostByID(ctx context.Context, id string) (*Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("post %s not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to find post", err)
	}
	return post, nil
}

// FindPosts reads a slice of the canonical feed order: creation timestamp
// descending, id as a deterministic tie-break.
func (s *PGStore) FindPosts(ctx context.Context, skip, limit int) ([]Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_date DESC, id OFFSET $1`
	args := []any{skip}
	if limit >= 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list posts", err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to scan posts", err)
	}
	return posts, nil
}

func (s *PGStore) FindPostsByCreator(ctx context.Context, userID string) ([]Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE created_by = $1 ORDER BY created_date DESC, id`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list posts by creator", err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to scan posts", err)
	}
	return posts, nil
}

// FindPostsByIDs resolves post references in the caller's order. The join on
// unnest WITH ORDINALITY keeps the favorites set ordered the way the user's
// document stores it.
func (s *PGStore) FindPostsByIDs(ctx context.Context, ids []string) ([]Post, error) {
	if len(ids) == 0 {
		return []Post{}, nil
	}
	query := `SELECT p.id, p.title, p.image_url, p.categories, p.description, p.created_date, p.likes, p.created_by, p.messages
	          FROM unnest($1::text[]) WITH ORDINALITY AS ref(id, ord)
	          JOIN posts p ON p.id = ref.id
	          ORDER BY ref.ord`
	rows, err := s.db.Query(ctx, query, ids)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to fetch posts by ids", err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to scan posts", err)
	}
	return posts, nil
}

func (s *PGStore) CountPosts(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM posts`).Scan(&total); err != nil {
		return 0, apperror.NewDatabaseError("failed to count posts", err)
	}
	return total, nil
}

// UpdatePostFields folds the ownership check into the lookup filter. A post
// that exists under a different owner matches nothing, so the caller cannot
// tell "wrong id" from "wrong owner"; both come back as NotFound.
func (s *PGStore) UpdatePostFields(ctx context.Context, postID, ownerID string, fields PostUpdate) (*Post, error) {
	query := `UPDATE posts
	          SET title = $3, image_url = $4, categories = $5, description = $6
	          WHERE id = $1 AND created_by = $2
	          RETURNING ` + postColumns
	categories := fields.Categories
	if categories == nil {
		categories = []string{}
	}
	post, err := scanPost(s.db.QueryRow(ctx, query, postID, ownerID, fields.Title, fields.ImageURL, categories, fields.Description))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("post %s not found", postID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to update post", err)
	}
	return post, nil
}

// DeletePost is a find-and-delete: it returns the post as it was at removal.
func (s *PGStore) DeletePost(ctx context.Context, id string) (*Post, error) {
	query := `DELETE FROM posts WHERE id = $1 RETURNING ` + postColumns
	post, err := scanPost(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("post %s not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to delete post", err)
	}
	return post, nil
}

// PrependMessage embeds the comment at position 0. Concatenating a
// one-element jsonb array in front of the stored array is one atomic
// statement, the array equivalent of a push at a fixed position.
func (s *PGStore) PrependMessage(ctx context.Context, postID string, msg Message) (*Post, error) {
	wrapped, err := json.Marshal([]Message{msg})
	if err != nil {
		return nil, apperror.NewInternalError("failed to encode message", err)
	}
	query := `UPDATE posts
	          SET messages = $2::jsonb || messages
	          WHERE id = $1
	          RETURNING ` + postColumns
	post, err := scanPost(s.db.QueryRow(ctx, query, postID, wrapped))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("post %s not found", postID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to add message", err)
	}
	return post, nil
}

// IncrementLikes is the atomic increment-and-read-back of the like protocol's
// first step. No floor is applied; a decrement can take the counter below
// zero and the protocol layer decides how loudly to complain.
func (s *PGStore) IncrementLikes(ctx context.Context, postID string, delta int) (*Post, error) {
	query := `UPDATE posts SET likes = likes + $2 WHERE id = $1 RETURNING ` + postColumns
	post, err := scanPost(s.db.QueryRow(ctx, query, postID, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("post %s not found", postID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to update likes", err)
	}
	return post, nil
}

// MatchPosts returns candidates whose indexed text matches the term. The
// expression mirrors the GIN index in the schema so the planner can use it.
func (s *PGStore) MatchPosts(ctx context.Context, term string) ([]Post, error) {
	if strings.TrimSpace(term) == "" {
		return []Post{}, nil
	}
	query := `SELECT ` + postColumns + ` FROM posts
	          WHERE ` + searchVector + ` @@ plainto_tsquery('english', $1)`
	rows, err := s.db.Query(ctx, query, term)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to search posts", err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to scan posts", err)
	}
	return posts, nil
}
