// Package auth signs and verifies the bearer tokens that carry caller
// identity. Tokens are issued by the identity provider in production; the
// token:issue command mints development tokens with the same secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shashiranjanraj/tiffin/config"
)

const (
	RoleCustomer    = "customer"
	RoleFoodMaker   = "food_maker"
	RoleDistributor = "distributor"
	RoleAdmin       = "admin"
)

// DefaultTTL is the lifetime of tokens minted by GenerateToken.
const DefaultTTL = 24 * time.Hour

var ErrMissingSubject = errors.New("auth: token has no user id")

// Claims holds the typed JWT payload.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func secret() []byte {
	return []byte(config.JWTSecret())
}

// GenerateToken signs a token for userID valid for DefaultTTL.
func GenerateToken(userID, role string) (string, error) {
	return GenerateTokenTTL(userID, role, DefaultTTL)
}

func GenerateTokenTTL(userID, role string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", ErrMissingSubject
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
}

// ValidateToken parses and verifies t. Only HS256 is accepted.
func ValidateToken(t string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(t, &Claims{}, func(tok *jwt.Token) (any, error) {
		return secret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}
