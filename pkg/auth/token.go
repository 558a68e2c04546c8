package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shepherdhq/shepherd/pkg/rbac"
)

const issuer = "shepherd"

// DefaultTokenTTL is the token lifetime used when config does not override it.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims is the payload inside every token.
type Claims struct {
	UserID       string    `json:"userId"`
	ChurchID     string    `json:"churchId"`
	HomeChurchID string    `json:"homeChurchId,omitempty"`
	Email        string    `json:"email"`
	Role         rbac.Role `json:"role"`
	ChurchIDs    []string  `json:"churchIds,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies tokens with a shared HMAC secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a token manager. A zero ttl falls back to
// DefaultTokenTTL.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Generate signs a token for the identity.
func (tm *TokenManager) Generate(id Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:       id.UserID,
		ChurchID:     id.ChurchID,
		HomeChurchID: id.Home(),
		Email:        id.Email,
		Role:         id.Role,
		ChurchIDs:    id.ChurchIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token string and returns the identity it carries. The
// signing method is pinned to HMAC to reject algorithm-substitution tokens.
func (tm *TokenManager) Parse(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return tm.secret, nil
		},
		jwt.WithIssuer(issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("invalid token claims")
	}

	return Identity{
		UserID:       claims.UserID,
		ChurchID:     claims.ChurchID,
		HomeChurchID: claims.HomeChurchID,
		Email:        claims.Email,
		Role:         claims.Role,
		ChurchIDs:    claims.ChurchIDs,
	}, nil
}
