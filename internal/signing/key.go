package signing

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/verum-omnis/attest/internal/platform/errors"
)

// KeyEncoding declares how signing key material is encoded.
type KeyEncoding string

const (
	// KeyEncodingAuto detects the encoding from the material itself.
	// Detection happens once, at configuration load, never in the
	// signing path.
	KeyEncodingAuto KeyEncoding = "auto"
	// KeyEncodingPEM expects a PEM-encoded PKCS#8 private key block.
	KeyEncodingPEM KeyEncoding = "pem"
	// KeyEncodingJWK expects a raw OKP JSON Web Key.
	KeyEncodingJWK KeyEncoding = "jwk"
)

const pemMarker = "BEGIN PRIVATE KEY"

// okpJWK is the subset of RFC 8037 fields needed to load an Ed25519
// private key.
type okpJWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	D   string `json:"d"`
	X   string `json:"x"`
}

// LoadPrivateKey parses Ed25519 key material in the declared encoding.
// Empty material is a KEY_MISSING configuration fault; any parse
// failure is KEY_MALFORMED.
func LoadPrivateKey(material string, encoding KeyEncoding) (ed25519.PrivateKey, error) {
	material = strings.TrimSpace(material)
	if material == "" {
		return nil, apperrors.New(apperrors.CodeKeyMissing, "signing key is not configured")
	}

	if encoding == "" || encoding == KeyEncodingAuto {
		if strings.Contains(material, pemMarker) {
			encoding = KeyEncodingPEM
		} else {
			encoding = KeyEncodingJWK
		}
	}

	switch encoding {
	case KeyEncodingPEM:
		return loadPEMKey(material)
	case KeyEncodingJWK:
		return loadJWKKey(material)
	default:
		return nil, apperrors.WithMetadata(
			apperrors.CodeKeyMalformed,
			"unknown signing key encoding",
			map[string]string{"Encoding": string(encoding)},
		)
	}
}

func loadPEMKey(material string) (ed25519.PrivateKey, error) {
	parsed, err := jwt.ParseEdPrivateKeyFromPEM([]byte(material))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeKeyMalformed, "parse PEM signing key", err)
	}
	key, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, apperrors.New(apperrors.CodeKeyMalformed, "PEM block is not an Ed25519 key")
	}
	return key, nil
}

func loadJWKKey(material string) (ed25519.PrivateKey, error) {
	var jwk okpJWK
	if err := json.Unmarshal([]byte(material), &jwk); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeKeyMalformed, "parse JWK signing key", err)
	}
	if jwk.Kty != "OKP" || jwk.Crv != "Ed25519" {
		return nil, apperrors.WithMetadata(
			apperrors.CodeKeyMalformed,
			"JWK is not an Ed25519 OKP key",
			map[string]string{"Kty": jwk.Kty, "Crv": jwk.Crv},
		)
	}
	seed, err := base64.RawURLEncoding.DecodeString(jwk.D)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeKeyMalformed, "decode JWK d parameter", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, apperrors.New(apperrors.CodeKeyMalformed,
			fmt.Sprintf("JWK d parameter must be %d bytes", ed25519.SeedSize))
	}
	return ed25519.NewKeyFromSeed(seed), nil
}
