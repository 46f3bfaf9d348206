package auth

import "filevault/internal/domain/models"

// TokenVerifier defines the interface for session token verification.
// This abstraction allows the middleware to stay agnostic to whether
// tokens are issued locally or by an external identity provider.
type TokenVerifier interface {
	// VerifyToken validates a token string and returns the parsed claims.
	// Returns an error if the token is invalid, expired, or has an
	// invalid signature.
	VerifyToken(tokenString string) (*models.SessionClaims, error)

	// Close releases any resources held by the verifier (e.g. HTTP
	// connections for JWKS refresh).
	Close() error
}

// TokenIssuer issues session tokens for locally authenticated users
type TokenIssuer interface {
	// IssueToken creates a signed session token carrying the owner
	// identity (email) as its subject.
	IssueToken(email string) (string, error)
}
