// Package timeouts defines shared timeout constants used across the
// attestation core. Centralizing these values prevents drift between
// callers and makes the durations discoverable.
package timeouts

import "time"

// FileDigest caps the wall-clock time allowed for hashing a single
// reference file. Hashing is the dominant cost of pack fingerprinting.
const FileDigest = 30 * time.Second

// StoreOp caps the time allowed for a single receipt store read or
// write.
const StoreOp = 5 * time.Second

// Issue caps an end-to-end anchor issuance (sign plus persist).
const Issue = 10 * time.Second
