// Package auth issues and validates the bearer tokens that guard the
// mutating HTTP routes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
	ErrEmptySubject  = errors.New("subject cannot be empty")
	ErrInvalidScope  = errors.New("invalid scope")
	ErrShortSecret   = errors.New("secret must be at least 32 characters")
)

// Scopes
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
)

var validScopes = map[string]bool{
	ScopeRead:  true,
	ScopeWrite: true,
}

// Claims are the token's payload.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// CanWrite reports whether the token may mutate habits.
func (c *Claims) CanWrite() bool {
	return c.Scope == ScopeWrite
}

// TokenValidator validates bearer tokens. The API middleware depends on
// this rather than on TokenManager.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

// TokenManager signs HS256 tokens.
type TokenManager struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
	now       func() time.Time
}

// NewTokenManager creates a token manager.
// Returns an error if the secret is shorter than 32 characters.
func NewTokenManager(secret, issuer string, ttl time.Duration) (*TokenManager, error) {
	if len(secret) < 32 {
		return nil, ErrShortSecret
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %v", ttl)
	}

	return &TokenManager{
		secretKey: []byte(secret),
		issuer:    issuer,
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

// SetClock replaces the time source. Used by tests.
func (m *TokenManager) SetClock(now func() time.Time) {
	m.now = now
}

// TTL returns the configured token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// GenerateToken issues a token for subject with the given scope.
func (m *TokenManager) GenerateToken(subject, scope string) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}
	if !validScopes[scope] {
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}

	now := m.now()
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token.
func (m *TokenManager) ValidateToken(_ context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidClaims)
	}
	if !validScopes[claims.Scope] {
		return nil, fmt.Errorf("%w: scope %q", ErrInvalidClaims, claims.Scope)
	}
	return claims, nil
}
