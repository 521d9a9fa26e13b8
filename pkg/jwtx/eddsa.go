package jwtx

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// EdDSA signs and verifies tokens with an Ed25519 key.
type EdDSA struct {
	kid    string
	key    ed25519.PrivateKey
	pub    ed25519.PublicKey
	issuer string
	leeway time.Duration
}

// NewEdDSA builds an Ed25519 key pair. kid is written to the token header.
func NewEdDSA(kid string, key ed25519.PrivateKey, issuer string) (*EdDSA, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.New("jwtx: invalid Ed25519 private key size")
	}
	pub, ok := key.Public().(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("jwtx: invalid Ed25519 public key")
	}
	return &EdDSA{kid: kid, key: key, pub: pub, issuer: issuer, leeway: DefaultLeeway}, nil
}

func (e *EdDSA) Alg() string { return jwt.SigningMethodEdDSA.Alg() }

func (e *EdDSA) KID() string { return e.kid }

func (e *EdDSA) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	if e.kid != "" {
		t.Header["kid"] = e.kid
	}
	return t.SignedString(e.key)
}

func (e *EdDSA) Verify(token string) (Claims, error) {
	return parse(token, jwt.SigningMethodEdDSA, e.pub, e.issuer, e.leeway)
}
