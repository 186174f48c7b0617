// Package pkce implements RFC 7636 (Proof Key for Code Exchange) client-side
// primitives: code verifier generation, S256 challenge derivation, and the
// random state parameter used for CSRF protection.
package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"

	"github.com/pkg/errors"
)

// Method identifies how a code challenge was derived from its verifier.
type Method string

const (
	// MethodS256 hashes the verifier with SHA-256 before base64url encoding.
	// The only method this package produces.
	MethodS256 Method = "S256"
)

const (
	verifierByteLength = 32 // 43 chars after base64url encoding, within RFC 7636's 43-128 range
	stateByteLength    = 16
)

// Pair holds a code verifier together with its derived challenge.
// The verifier stays client-side until the token exchange; only the
// challenge travels in the authorization redirect.
type Pair struct {
	Verifier  string
	Challenge string
	Method    Method
}

// NewPair generates a fresh verifier and derives its S256 challenge.
func NewPair() (*Pair, error) {
	verifier, err := GenerateVerifier()
	if err != nil {
		return nil, errors.Wrap(err, "[NewPair] GenerateVerifier")
	}
	return &Pair{
		Verifier:  verifier,
		Challenge: DeriveChallenge(verifier),
		Method:    MethodS256,
	}, nil
}

// GenerateVerifier produces a cryptographically random URL-safe code
// verifier. 32 random bytes encode to 43 characters, the RFC minimum.
func GenerateVerifier() (string, error) {
	bytes := make([]byte, verifierByteLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", errors.Wrap(err, "[GenerateVerifier] rand.Read")
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// GenerateState produces a random URL-safe state token for CSRF protection.
// One state per login attempt; it must round-trip unchanged through the
// provider redirect.
func GenerateState() (string, error) {
	bytes := make([]byte, stateByteLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", errors.Wrap(err, "[GenerateState] rand.Read")
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// DeriveChallenge computes the S256 challenge for a verifier:
// base64url(SHA256(verifier)), unpadded. Deterministic.
func DeriveChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// VerifyChallenge reports whether challenge matches the given verifier
// under the supplied method. Useful in tests and provider fakes.
func VerifyChallenge(challenge, verifier string, method Method) bool {
	if method != MethodS256 {
		return false
	}
	return DeriveChallenge(verifier) == challenge
}
