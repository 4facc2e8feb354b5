// Package signing issues EdDSA-signed attestation tokens over
// structured payloads.
//
// The authority holds the process-wide Ed25519 private key. Key
// material is accepted as a PEM PKCS#8 block or a raw OKP JSON Web Key;
// the encoding is resolved once when the authority is constructed.
package signing

import (
	"crypto/ed25519"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/verum-omnis/attest/internal/platform/errors"
)

// Issuer is the fixed iss claim bound into every token.
const Issuer = "verum.omnis"

// TokenTTL is the validity window applied to every token.
const TokenTTL = 3600 * time.Second

// Config describes how an Authority is constructed.
type Config struct {
	// Key is the raw key material, PEM or JWK encoded.
	Key string
	// Encoding declares the key encoding; empty means auto-detect.
	Encoding KeyEncoding
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Authority signs structured payloads with the configured Ed25519 key.
type Authority struct {
	key ed25519.PrivateKey
	now func() time.Time
}

// New constructs an Authority, resolving the key encoding at this
// boundary. A missing or malformed key is a fatal configuration error.
func New(cfg Config) (*Authority, error) {
	key, err := LoadPrivateKey(cfg.Key, cfg.Encoding)
	if err != nil {
		return nil, err
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Authority{key: key, now: now}, nil
}

// Sign produces a signed token binding payload to the issuer, the
// current issued-at time, and an expiration one TTL later. Issued-at is
// re-derived from the clock on every call; tokens are never cached.
func (a *Authority) Sign(payload map[string]any) (string, error) {
	if a == nil || len(a.key) != ed25519.PrivateKeySize {
		return "", apperrors.New(apperrors.CodeKeyMissing, "signing key is not configured")
	}

	now := a.now().UTC().Truncate(time.Second)
	claims := jwt.MapClaims{}
	for name, value := range payload {
		claims[name] = value
	}
	claims["iss"] = Issuer
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(TokenTTL).Unix()

	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(a.key)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeSigningFailed, "sign payload", err)
	}
	return token, nil
}

// Verify checks a token against the authority's public key and returns
// its claims. Expiration and issuer are validated.
func (a *Authority) Verify(token string) (map[string]any, error) {
	if a == nil || len(a.key) != ed25519.PrivateKeySize {
		return nil, apperrors.New(apperrors.CodeKeyMissing, "signing key is not configured")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.key.Public(), nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return a.now().UTC() }),
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSigningFailed, "verify token", err)
	}
	return map[string]any(claims), nil
}

// PublicKey exposes the verification half of the signing key.
func (a *Authority) PublicKey() ed25519.PublicKey {
	if a == nil {
		return nil
	}
	return a.key.Public().(ed25519.PublicKey)
}
