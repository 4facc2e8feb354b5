// Package receipt defines the signed receipt record and its
// persistence contracts.
//
// A receipt binds a caller-supplied content hash to the reference-pack
// digests that were current at issuance time. Once persisted a receipt
// is immutable; the store contract has no update or delete operation.
package receipt

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no receipt is stored for the requested hash.
	ErrNotFound = errors.New("receipt not found")
)

// Receipt is one issued attestation record. Chain and TxID are empty on
// receipts regenerated without a durable anchor; Note is non-empty only
// on those regenerated receipts.
type Receipt struct {
	Hash             string    `json:"hash"`
	Chain            string    `json:"chain,omitempty"`
	TxID             string    `json:"txid,omitempty"`
	ManifestHash     string    `json:"manifestHash"`
	ConstitutionHash string    `json:"constitutionHash"`
	Product          string    `json:"product"`
	IssuedAt         time.Time `json:"issuedAt"`
	Note             string    `json:"note,omitempty"`
	Signature        string    `json:"signature"`
}

// Anchored reports whether the receipt carries a durable anchor
// reference.
func (r Receipt) Anchored() bool {
	return r.TxID != ""
}

// Store persists receipts keyed by the attested hash (exact match,
// case-sensitive).
type Store interface {
	// Put stores a receipt unconditionally, replacing any existing
	// record for the same hash.
	Put(ctx context.Context, r Receipt) error
	// PutIfAbsent stores a receipt only when no record exists for its
	// hash. It returns the durable record and whether this call
	// inserted it, so racing issuers converge on one receipt.
	PutIfAbsent(ctx context.Context, r Receipt) (Receipt, bool, error)
	// Get returns the stored receipt for hash, or ErrNotFound.
	Get(ctx context.Context, hash string) (Receipt, error)
}
