// Package auth is the authentication collaborator: credential hashing,
// signed-token issue and verification, and the HTTP middleware that turns a
// bearer token into a verified caller identity. The feed core never touches
// tokens; it receives identities this package has already verified.
package auth

// SignupRequest is the registration payload.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninRequest is the login payload.
type SigninRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries the issued session token. Signup and signin both
// answer with a token rather than the user entity.
type TokenResponse struct {
	Token string `json:"token"`
}
