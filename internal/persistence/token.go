package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource supplies the bearer token the gateway attaches to store calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns the same token on every call. Useful when the
// embedder already owns token acquisition.
type StaticTokenSource struct {
	token string
}

// NewStaticTokenSource creates a token source around a fixed token.
func NewStaticTokenSource(token string) *StaticTokenSource {
	return &StaticTokenSource{token: token}
}

func (s *StaticTokenSource) Token(ctx context.Context) (string, error) {
	return s.token, nil
}

// JWTTokenSource mints short-lived HS256 bearer tokens from a shared secret.
// Tokens are cached and re-minted shortly before expiry.
type JWTTokenSource struct {
	secret  []byte
	issuer  string
	subject string
	ttl     time.Duration

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewJWTTokenSource creates a minting token source. A zero ttl defaults to
// 15 minutes.
func NewJWTTokenSource(secret, issuer, subject string, ttl time.Duration) *JWTTokenSource {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &JWTTokenSource{
		secret:  []byte(secret),
		issuer:  issuer,
		subject: subject,
		ttl:     ttl,
	}
}

func (s *JWTTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-mint with a safety margin so an in-flight request never carries a
	// token that expires mid-call.
	if s.token != "" && time.Until(s.expires) > s.ttl/10 {
		return s.token, nil
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   s.subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign store token: %w", err)
	}

	s.token = token
	s.expires = now.Add(s.ttl)
	return token, nil
}
