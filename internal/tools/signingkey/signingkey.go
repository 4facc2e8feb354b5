// Package signingkey generates the Ed25519 keypair used by the signing
// authority.
package signingkey

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// Run generates a signing key pair and writes exports. The private key
// is emitted as a single-line OKP JSON Web Key so it can live in an
// environment variable; the public half is raw base64.
func Run(out io.Writer, reader io.Reader) error {
	if out == nil {
		return errors.New("output is required")
	}
	if reader == nil {
		reader = rand.Reader
	}
	publicKey, privateKey, err := ed25519.GenerateKey(reader)
	if err != nil {
		return fmt.Errorf("generate signing key: %w", err)
	}
	jwk := fmt.Sprintf(`{"kty":"OKP","crv":"Ed25519","d":%q,"x":%q}`,
		base64.RawURLEncoding.EncodeToString(privateKey.Seed()),
		base64.RawURLEncoding.EncodeToString(publicKey))
	if _, err := fmt.Fprintf(out, "export VERUM_OMNIS_SIGNING_KEY='%s'\n", jwk); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "export VERUM_OMNIS_SIGNING_PUBLIC_KEY=%s\n", base64.RawStdEncoding.EncodeToString(publicKey)); err != nil {
		return err
	}
	return nil
}
