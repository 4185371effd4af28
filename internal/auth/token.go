package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued identity token remains valid.
const TokenTTL = 7 * 24 * time.Hour

// ErrInvalidSecret indicates the token service was built without a secret.
var ErrInvalidSecret = errors.New("token signing secret is empty")

// TokenService issues and resolves signed identity tokens.
// Tokens are HS256 JWTs binding a user id to an expiry.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given signing secret.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, ErrInvalidSecret
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Issue signs a token for the given user id, valid for TokenTTL.
func (s *TokenService) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Resolve verifies a token and returns the embedded user id.
// Any verification failure (bad signature, expiry, malformed subject)
// returns ok=false; the caller treats that as anonymous, not as an error.
func (s *TokenService) Resolve(tokenString string) (int64, bool) {
	if tokenString == "" {
		return 0, false
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, false
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}

	return userID, true
}
