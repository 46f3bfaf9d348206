package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"filevault/internal/domain"
	"filevault/internal/domain/models"
)

// HS256Authenticator issues and verifies HMAC-signed session tokens.
// The owner email travels in the subject claim.
type HS256Authenticator struct {
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
}

// NewHS256Authenticator creates an authenticator for locally issued sessions
func NewHS256Authenticator(secret string, ttl time.Duration, logger *slog.Logger) (*HS256Authenticator, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}

	return &HS256Authenticator{
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger,
	}, nil
}

// IssueToken creates a signed session token for the owner email
func (a *HS256Authenticator) IssueToken(email string) (string, error) {
	now := time.Now()
	claims := &models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// VerifyToken validates a session token and extracts its claims
func (a *HS256Authenticator) VerifyToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		// Prevent algorithm confusion attacks - only HS256 is accepted here
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return a.secret, nil
	})
	if err != nil {
		a.logger.Debug("token parse failed", "error", err)
		return nil, domain.ErrUnauthorized
	}

	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// TTL returns the session lifetime
func (a *HS256Authenticator) TTL() time.Duration {
	return a.ttl
}

// Close is a no-op; the authenticator holds no external resources
func (a *HS256Authenticator) Close() error {
	return nil
}
