// Package errors provides structured error handling for attestation
// operations.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeInvalidHash indicates a caller-supplied content hash failed
	// shape validation. Always recoverable; no side effects were
	// performed.
	CodeInvalidHash Code = "INVALID_HASH"

	// Signing errors
	CodeKeyMissing    Code = "KEY_MISSING"
	CodeKeyMalformed  Code = "KEY_MALFORMED"
	CodeSigningFailed Code = "SIGNING_FAILED"

	// Fingerprint errors
	CodeNotFound Code = "NOT_FOUND"

	// Storage errors
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
)

// Recoverable reports whether the code maps to a caller fault that a
// corrected request can clear, as opposed to a process-level fault.
func (c Code) Recoverable() bool {
	switch c {
	case CodeInvalidHash, CodeNotFound:
		return true
	default:
		return false
	}
}
