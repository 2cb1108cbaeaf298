package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/quietroom/lockcore/internal/lock"
)

// ErrInvalidToken is returned when a bearer token fails validation.
var ErrInvalidToken = errors.New("api: invalid token")

// Claims are the JWT claims carried by lockcore access tokens. Level
// gates write operations: user management and security reset require
// the admin tier.
type Claims struct {
	UserID string             `json:"user_id"`
	Level  lock.SecurityLevel `json:"level"`
	jwt.RegisteredClaims
}

// issueToken signs an HS256 access token for the given user.
func issueToken(secret []byte, user lock.AuthorizedUser, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Level:  user.Level,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "lockcore",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// parseToken validates a bearer token and returns its claims. Any
// failure, a bad signature, a non-HMAC method or an expired token,
// collapses to ErrInvalidToken so the response leaks nothing.
func parseToken(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" || !claims.Level.IsValid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
