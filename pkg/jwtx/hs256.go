package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinHS256SecretSize is the smallest secret accepted for HMAC signing.
const MinHS256SecretSize = 32

// HS256 signs and verifies tokens with a shared secret.
type HS256 struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewHS256 builds an HMAC-SHA256 key pair. Tokens are only accepted when
// their issuer matches.
func NewHS256(secret []byte, issuer string) (*HS256, error) {
	if len(secret) < MinHS256SecretSize {
		return nil, errors.New("jwtx: HS256 secret must be at least 32 bytes")
	}
	return &HS256{secret: secret, issuer: issuer, leeway: DefaultLeeway}, nil
}

func (h *HS256) Alg() string { return jwt.SigningMethodHS256.Alg() }

func (h *HS256) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

func (h *HS256) Verify(token string) (Claims, error) {
	return parse(token, jwt.SigningMethodHS256, h.secret, h.issuer, h.leeway)
}
