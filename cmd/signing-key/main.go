// Package main provides a one-shot utility for signing key generation.
//
// It emits the Ed25519 keypair used by the attestation signing
// authority.
package main

import (
	"os"

	"github.com/verum-omnis/attest/internal/platform/config"
	"github.com/verum-omnis/attest/internal/tools/signingkey"
)

func main() {
	if err := signingkey.Run(os.Stdout, nil); err != nil {
		config.Exitf("generate signing key: %v", err)
	}
}
