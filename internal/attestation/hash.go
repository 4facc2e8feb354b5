package attestation

import (
	"regexp"
	"strings"

	apperrors "github.com/verum-omnis/attest/internal/platform/errors"
)

// hashShape matches a lowercase hex fingerprint of at least 64 chars,
// accommodating both 256-bit and 512-bit caller digests.
var hashShape = regexp.MustCompile(`^[0-9a-f]{64,}$`)

// NormalizeHash lowercases a caller-supplied content hash and validates
// its shape. The normalized form is what gets stored and compared.
func NormalizeHash(input string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if !hashShape.MatchString(normalized) {
		return "", apperrors.New(apperrors.CodeInvalidHash, "hash must be hex of at least 64 chars")
	}
	return normalized, nil
}
