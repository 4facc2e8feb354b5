// Package attestation orchestrates receipt issuance over the
// fingerprint engine, signing authority, and receipt store.
//
// The service is constructed from an explicit immutable configuration
// (product identity, chain label, reference-pack digests) so tests can
// run it against fake keys and packs.
package attestation

import (
	"context"
	"errors"
	"time"

	"github.com/verum-omnis/attest/internal/fingerprint"
	apperrors "github.com/verum-omnis/attest/internal/platform/errors"
	"github.com/verum-omnis/attest/internal/receipt"
	"github.com/verum-omnis/attest/internal/signing"
)

// RegeneratedNote marks receipts synthesized on lookup-miss, which
// carry no durable anchor.
const RegeneratedNote = "Receipt regenerated - no anchor found"

// txidLength is the fixed truncation applied to the locally derived
// anchor reference identifier.
const txidLength = 64

// Config is the immutable reference state an attestation service is
// built from.
type Config struct {
	// Product is the fixed product identifier bound into every receipt.
	Product string
	// ChainLabel labels durable anchors. It is an opaque identifier,
	// not a verified blockchain reference.
	ChainLabel string
	// Policy is the licensing policy text bound into integrity
	// statements.
	Policy string
	// ManifestHash is the model-pack digest computed at boot.
	ManifestHash string
	// ConstitutionHash is the constitution document digest computed at
	// boot.
	ConstitutionHash string
	// RulesItems are the per-file digests of the rules pack.
	RulesItems []fingerprint.FileDigest
	// RulesPackHash is the pack digest over RulesItems.
	RulesPackHash string
}

// Service issues, regenerates, and signs attestation receipts.
type Service struct {
	cfg       Config
	authority *signing.Authority
	store     receipt.Store
	now       func() time.Time
}

// New constructs an attestation service. The authority and store are
// required; now defaults to time.Now.
func New(cfg Config, authority *signing.Authority, store receipt.Store, now func() time.Time) (*Service, error) {
	if authority == nil {
		return nil, errors.New("signing authority is required")
	}
	if store == nil {
		return nil, errors.New("receipt store is required")
	}
	if now == nil {
		now = time.Now
	}
	return &Service{cfg: cfg, authority: authority, store: store, now: now}, nil
}

// IssueAnchor durably anchors a content hash: it derives a local txid,
// assembles and signs a receipt, and persists it with an atomic
// insert-if-absent. Anchoring is idempotent per hash; a repeat anchor
// (or a lost insert race) returns the existing durable receipt, so at
// most one anchor exists per hash.
func (s *Service) IssueAnchor(ctx context.Context, hash string) (receipt.Receipt, error) {
	normalized, err := NormalizeHash(hash)
	if err != nil {
		return receipt.Receipt{}, err
	}

	issuedAt := s.now().UTC().Truncate(time.Second)
	txid := fingerprint.DigestBytes([]byte(normalized + issuedAt.Format(time.RFC3339)))[:txidLength]

	r := receipt.Receipt{
		Hash:             normalized,
		Chain:            s.cfg.ChainLabel,
		TxID:             txid,
		ManifestHash:     s.cfg.ManifestHash,
		ConstitutionHash: s.cfg.ConstitutionHash,
		Product:          s.cfg.Product,
		IssuedAt:         issuedAt,
	}
	signature, err := s.authority.Sign(receiptClaims(r))
	if err != nil {
		return receipt.Receipt{}, err
	}
	r.Signature = signature

	stored, _, err := s.store.PutIfAbsent(ctx, r)
	if err != nil {
		return receipt.Receipt{}, apperrors.Wrap(apperrors.CodeStoreUnavailable, "persist receipt", err)
	}
	return stored, nil
}

// GetOrRegenerateReceipt returns the durable receipt for hash when one
// was anchored, byte-identical to what was stored. On a miss it
// synthesizes an ephemeral receipt with no anchor reference and a
// regeneration note, signs it fresh, and does not persist it.
func (s *Service) GetOrRegenerateReceipt(ctx context.Context, hash string) (receipt.Receipt, error) {
	normalized, err := NormalizeHash(hash)
	if err != nil {
		return receipt.Receipt{}, err
	}

	stored, err := s.store.Get(ctx, normalized)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, receipt.ErrNotFound) {
		return receipt.Receipt{}, apperrors.Wrap(apperrors.CodeStoreUnavailable, "look up receipt", err)
	}

	r := receipt.Receipt{
		Hash:             normalized,
		ManifestHash:     s.cfg.ManifestHash,
		ConstitutionHash: s.cfg.ConstitutionHash,
		Product:          s.cfg.Product,
		IssuedAt:         s.now().UTC().Truncate(time.Second),
		Note:             RegeneratedNote,
	}
	signature, err := s.authority.Sign(receiptClaims(r))
	if err != nil {
		return receipt.Receipt{}, err
	}
	r.Signature = signature
	return r, nil
}

// IntegrityStatement is a signed snapshot of the reference artifacts
// the process attests against.
type IntegrityStatement struct {
	ConstitutionHash string    `json:"constitutionHash"`
	ModelPackHash    string    `json:"modelPackHash"`
	Policy           string    `json:"policy"`
	Product          string    `json:"product"`
	Timestamp        time.Time `json:"timestamp"`
	Signature        string    `json:"signature"`
}

// Integrity produces a freshly signed integrity statement.
func (s *Service) Integrity(ctx context.Context) (IntegrityStatement, error) {
	if err := ctx.Err(); err != nil {
		return IntegrityStatement{}, err
	}
	statement := IntegrityStatement{
		ConstitutionHash: s.cfg.ConstitutionHash,
		ModelPackHash:    s.cfg.ManifestHash,
		Policy:           s.cfg.Policy,
		Product:          s.cfg.Product,
		Timestamp:        s.now().UTC().Truncate(time.Second),
	}
	signature, err := s.authority.Sign(map[string]any{
		"constitutionHash": statement.ConstitutionHash,
		"modelPackHash":    statement.ModelPackHash,
		"policy":           statement.Policy,
		"product":          statement.Product,
		"timestamp":        statement.Timestamp.Format(time.RFC3339),
	})
	if err != nil {
		return IntegrityStatement{}, err
	}
	statement.Signature = signature
	return statement, nil
}

// RulesStatement is a signed inventory of the rules pack.
type RulesStatement struct {
	Product       string                   `json:"product"`
	Rules         []fingerprint.FileDigest `json:"rules"`
	RulesPackHash string                   `json:"rulesPackHash"`
	IssuedAt      time.Time                `json:"issuedAt"`
	Signature     string                   `json:"signature"`
}

// Rules produces a freshly signed rules-pack statement.
func (s *Service) Rules(ctx context.Context) (RulesStatement, error) {
	if err := ctx.Err(); err != nil {
		return RulesStatement{}, err
	}
	statement := RulesStatement{
		Product:       s.cfg.Product,
		Rules:         s.cfg.RulesItems,
		RulesPackHash: s.cfg.RulesPackHash,
		IssuedAt:      s.now().UTC().Truncate(time.Second),
	}
	signature, err := s.authority.Sign(map[string]any{
		"product":       statement.Product,
		"rules":         statement.Rules,
		"rulesPackHash": statement.RulesPackHash,
		"issuedAt":      statement.IssuedAt.Format(time.RFC3339),
	})
	if err != nil {
		return RulesStatement{}, err
	}
	statement.Signature = signature
	return statement, nil
}

// Authority exposes the signing authority for collaborators that sign
// their own response payloads.
func (s *Service) Authority() *signing.Authority {
	return s.authority
}

// receiptClaims flattens a receipt into the signed claim set. Chain and
// txid are explicit nulls on unanchored receipts so verifiers can
// distinguish them from omitted fields.
func receiptClaims(r receipt.Receipt) map[string]any {
	claims := map[string]any{
		"hash":             r.Hash,
		"chain":            nil,
		"txid":             nil,
		"manifestHash":     r.ManifestHash,
		"constitutionHash": r.ConstitutionHash,
		"product":          r.Product,
		"issuedAt":         r.IssuedAt.Format(time.RFC3339),
	}
	if r.Chain != "" {
		claims["chain"] = r.Chain
	}
	if r.TxID != "" {
		claims["txid"] = r.TxID
	}
	if r.Note != "" {
		claims["note"] = r.Note
	}
	return claims
}
