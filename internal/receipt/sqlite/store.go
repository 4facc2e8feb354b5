// Package sqlite provides a SQLite-backed receipt store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/verum-omnis/attest/internal/platform/storage/sqlitemigrate"
	"github.com/verum-omnis/attest/internal/receipt"
	"github.com/verum-omnis/attest/internal/receipt/sqlite/migrations"
)

// Store persists receipts in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite receipt store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Put stores a receipt unconditionally, replacing any existing record.
func (s *Store) Put(ctx context.Context, r receipt.Receipt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO receipts (
		   hash, chain, txid, manifest_hash, constitution_hash,
		   product, issued_at, note, signature
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(hash) DO UPDATE SET
		   chain = excluded.chain,
		   txid = excluded.txid,
		   manifest_hash = excluded.manifest_hash,
		   constitution_hash = excluded.constitution_hash,
		   product = excluded.product,
		   issued_at = excluded.issued_at,
		   note = excluded.note,
		   signature = excluded.signature`,
		r.Hash,
		nullable(r.Chain),
		nullable(r.TxID),
		r.ManifestHash,
		r.ConstitutionHash,
		r.Product,
		r.IssuedAt.UTC().Format(time.RFC3339),
		r.Note,
		r.Signature,
	)
	if err != nil {
		return fmt.Errorf("put receipt: %w", err)
	}
	return nil
}

// PutIfAbsent inserts a receipt only when its hash is unclaimed, and
// returns the durable record either way. The single INSERT makes the
// insert-if-absent atomic under concurrent issuers.
func (s *Store) PutIfAbsent(ctx context.Context, r receipt.Receipt) (receipt.Receipt, bool, error) {
	if err := ctx.Err(); err != nil {
		return receipt.Receipt{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return receipt.Receipt{}, false, fmt.Errorf("storage is not configured")
	}
	result, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO receipts (
		   hash, chain, txid, manifest_hash, constitution_hash,
		   product, issued_at, note, signature
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(hash) DO NOTHING`,
		r.Hash,
		nullable(r.Chain),
		nullable(r.TxID),
		r.ManifestHash,
		r.ConstitutionHash,
		r.Product,
		r.IssuedAt.UTC().Format(time.RFC3339),
		r.Note,
		r.Signature,
	)
	if err != nil {
		return receipt.Receipt{}, false, fmt.Errorf("put receipt: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return receipt.Receipt{}, false, fmt.Errorf("rows affected: %w", err)
	}
	if inserted > 0 {
		return r, true, nil
	}
	existing, err := s.Get(ctx, r.Hash)
	if err != nil {
		return receipt.Receipt{}, false, err
	}
	return existing, false, nil
}

// Get returns the stored receipt for hash.
func (s *Store) Get(ctx context.Context, hash string) (receipt.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return receipt.Receipt{}, err
	}
	if s == nil || s.sqlDB == nil {
		return receipt.Receipt{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT hash, chain, txid, manifest_hash, constitution_hash,
		        product, issued_at, note, signature
		 FROM receipts WHERE hash = ?`, hash)

	var r receipt.Receipt
	var chain, txid sql.NullString
	var issuedAt string
	err := row.Scan(&r.Hash, &chain, &txid, &r.ManifestHash, &r.ConstitutionHash,
		&r.Product, &issuedAt, &r.Note, &r.Signature)
	if errors.Is(err, sql.ErrNoRows) {
		return receipt.Receipt{}, receipt.ErrNotFound
	}
	if err != nil {
		return receipt.Receipt{}, fmt.Errorf("get receipt: %w", err)
	}
	r.Chain = chain.String
	r.TxID = txid.String
	parsed, err := time.Parse(time.RFC3339, issuedAt)
	if err != nil {
		return receipt.Receipt{}, fmt.Errorf("parse issued_at: %w", err)
	}
	r.IssuedAt = parsed.UTC()
	return r, nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
