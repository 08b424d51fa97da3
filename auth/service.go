package auth

import (
	"context"
	"crypto/md5"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/omerson-cruz/vue-share-backend/apperror"
	"github.com/omerson-cruz/vue-share-backend/config"
	"github.com/omerson-cruz/vue-share-backend/store"
)

// sessionEndedMessage is the client-facing message for any token that fails
// verification, expired ones included.
const sessionEndedMessage = "Your session has ended. Please sign in again."

// Identity is a verified caller identity, as carried in token claims.
type Identity struct {
	Username string
	Email    string
}

// Claims is the JWT payload: the identity plus the registered claims.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService implements signup, signin and token verification on top of the
// entity store.
type AuthService struct {
	store store.Store
	cfg   config.AuthConfig
}

// NewAuthService creates an AuthService.
func NewAuthService(st store.Store, cfg config.AuthConfig) *AuthService {
	return &AuthService{store: st, cfg: cfg}
}

// HashCredential hashes a plaintext password for storage.
func HashCredential(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperror.NewInternalError("failed to hash password", err)
	}
	return string(hashed), nil
}

// VerifyCredential checks a plaintext password against a stored hash.
func VerifyCredential(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

// avatarURL derives a deterministic gravatar identicon from the username.
func avatarURL(username string) string {
	digest := md5.Sum([]byte(username))
	return fmt.Sprintf("http://gravatar.com/avatar/%x?d=identicon", digest)
}

// Signup registers a new user and returns a session token. A taken username
// is an AlreadyExists conflict.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*TokenResponse, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, apperror.NewValidationError("username, email and password are required", nil)
	}

	if _, err := s.store.FindUserByUsername(ctx, req.Username); err == nil {
		return nil, apperror.NewConflictError("user already exists", nil)
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}

	hashed, err := HashCredential(req.Password)
	if err != nil {
		return nil, err
	}

	user := &store.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          strings.ToLower(req.Email),
		HashedPassword: hashed,
		Avatar:         avatarURL(req.Username),
		Favorites:      []string{},
	}
	// The unique index still backs us up if two signups race past the
	// lookup above; the store reports that as the same conflict.
	created, err := s.store.InsertUser(ctx, user)
	if err != nil {
		return nil, err
	}

	return s.issueToken(created)
}

// Signin verifies credentials and returns a session token.
func (s *AuthService) Signin(ctx context.Context, req SigninRequest) (*TokenResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, apperror.NewValidationError("username and password are required", nil)
	}

	user, err := s.store.FindUserByUsername(ctx, req.Username)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewAuthError("user not found", nil)
		}
		return nil, err
	}

	if !VerifyCredential(user.HashedPassword, req.Password) {
		return nil, apperror.NewAuthError("invalid password", nil)
	}

	return s.issueToken(user)
}

// issueToken signs a token carrying the username and email claims.
func (s *AuthService) issueToken(user *store.User) (*TokenResponse, error) {
	now := time.Now()
	claims := &Claims{
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, apperror.NewInternalError("failed to sign token", err)
	}
	return &TokenResponse{Token: signed}, nil
}

// VerifyIdentity parses and validates a session token, returning the
// identity it carries. Any failure, expiry included, is an
// AuthenticationError with a stable client-facing message.
func (s *AuthService) VerifyIdentity(tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperror.NewAuthError(sessionEndedMessage, err)
	}
	if claims.Username == "" {
		return nil, apperror.NewAuthError(sessionEndedMessage, nil)
	}
	return &Identity{Username: claims.Username, Email: claims.Email}, nil
}
