package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned by ParseClaims for credentials that are not JWTs.
var ErrOpaqueToken = errors.New("credential is not a JWT")

// Claims are the claims the todolist server puts in its tokens.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// ParseClaims decodes the claims of token without verifying its signature.
// The client has no key; the result is for display only.
func ParseClaims(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrOpaqueToken
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrOpaqueToken
		}
		return nil, fmt.Errorf("decode token claims: %w", err)
	}
	return claims, nil
}

// Claims decodes the current credential's claims. See ParseClaims.
func (s *State) Claims() (*Claims, error) {
	return ParseClaims(s.token)
}
