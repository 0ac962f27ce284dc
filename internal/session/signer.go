package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/videocollect/internal/dependencies/clock"
)

// ErrInvalidToken is returned when a cookie token fails verification
var ErrInvalidToken = errors.New("invalid session token")

// Signer issues and verifies HS256 tokens that carry a session id
type Signer struct {
	secret []byte
	clock  clock.Clock
}

// NewSigner creates a signer using the given HMAC secret
func NewSigner(secret []byte, clk clock.Clock) *Signer {
	return &Signer{secret: secret, clock: clk}
}

// Sign returns a token for the session id valid for ttl
func (s *Signer) Sign(id string, ttl time.Duration) (string, error) {
	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the session id
func (s *Signer) Verify(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.ID == "" {
		return "", ErrInvalidToken
	}
	return claims.ID, nil
}
