// Package attest implements the attest CLI, a collaborator over the
// attestation core: it anchors hashes, fetches or regenerates receipts,
// renders sealed documents, and emits signed integrity statements.
package attest

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/verum-omnis/attest/internal/attestation"
	"github.com/verum-omnis/attest/internal/platform/config"
	"github.com/verum-omnis/attest/internal/platform/timeouts"
	"github.com/verum-omnis/attest/internal/receipt"
	receiptsqlite "github.com/verum-omnis/attest/internal/receipt/sqlite"
	"github.com/verum-omnis/attest/internal/refpack"
	"github.com/verum-omnis/attest/internal/seal"
	"github.com/verum-omnis/attest/internal/signing"
)

// Product is the fixed product identifier bound into receipts and
// statements.
const Product = "VO-Web32"

// ChainLabel labels durable anchors. It is an opaque identifier, not a
// verified blockchain reference.
const ChainLabel = "eth"

// PolicyText is the licensing policy bound into integrity statements.
const PolicyText = "Free for private citizens. Institutions: 20% of recovered fraud or per-case licensing as agreed."

// Config holds attest command configuration.
type Config struct {
	Command string
	Hash    string
	Title   string
	Notes   string
	Out     string
}

// attestEnv holds environment configuration for the CLI process.
type attestEnv struct {
	SigningKey  string `env:"VERUM_OMNIS_SIGNING_KEY"`
	KeyEncoding string `env:"VERUM_OMNIS_SIGNING_KEY_ENCODING" envDefault:"auto"`
	DBPath      string `env:"VERUM_OMNIS_DB_PATH"`
	AssetsDir   string `env:"VERUM_OMNIS_ASSETS_DIR" envDefault:"assets"`
	LogoPath    string `env:"VERUM_OMNIS_LOGO_PATH"`
}

func loadEnv() attestEnv {
	var cfg attestEnv
	_ = config.ParseEnv(&cfg)
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "receipts.db")
	}
	if cfg.AssetsDir == "" {
		cfg.AssetsDir = "assets"
	}
	return cfg
}

// ParseConfig parses the subcommand and its flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	if len(args) == 0 {
		return Config{}, fmt.Errorf("usage: attest <anchor|receipt|seal|verify|rules> [flags]")
	}
	cfg := Config{Command: args[0], Out: "seal.pdf"}
	switch cfg.Command {
	case "anchor", "receipt", "seal", "verify", "rules":
	default:
		return Config{}, fmt.Errorf("unknown command %q", cfg.Command)
	}

	fs.StringVar(&cfg.Hash, "hash", "", "content hash to attest (hex, 64+ chars)")
	fs.StringVar(&cfg.Title, "title", "", "seal document title")
	fs.StringVar(&cfg.Notes, "notes", "", "seal document notes")
	fs.StringVar(&cfg.Out, "out", cfg.Out, "seal output path")
	if err := fs.Parse(args[1:]); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes one attest command against a fresh service built from
// environment configuration.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	env := loadEnv()

	authority, err := signing.New(signing.Config{
		Key:      env.SigningKey,
		Encoding: signing.KeyEncoding(env.KeyEncoding),
	})
	if err != nil {
		return fmt.Errorf("configure signing authority: %w", err)
	}

	loadCtx, cancel := context.WithTimeout(ctx, timeouts.FileDigest)
	defer cancel()
	pack, err := refpack.Load(loadCtx, env.AssetsDir)
	if err != nil {
		return fmt.Errorf("load reference packs: %w", err)
	}

	store, err := receiptsqlite.Open(env.DBPath)
	if err != nil {
		return fmt.Errorf("open receipt store: %w", err)
	}
	defer store.Close()

	service, err := attestation.New(attestation.Config{
		Product:          Product,
		ChainLabel:       ChainLabel,
		Policy:           PolicyText,
		ManifestHash:     pack.ModelPackHash,
		ConstitutionHash: pack.ConstitutionHash,
		RulesItems:       pack.RulesItems,
		RulesPackHash:    pack.RulesPackHash,
	}, authority, store, time.Now)
	if err != nil {
		return fmt.Errorf("build attestation service: %w", err)
	}

	switch cfg.Command {
	case "anchor":
		opCtx, cancel := context.WithTimeout(ctx, timeouts.Issue)
		defer cancel()
		r, err := service.IssueAnchor(opCtx, cfg.Hash)
		if err != nil {
			return err
		}
		return writeJSON(out, r)
	case "receipt":
		opCtx, cancel := context.WithTimeout(ctx, timeouts.StoreOp)
		defer cancel()
		r, err := service.GetOrRegenerateReceipt(opCtx, cfg.Hash)
		if err != nil {
			return err
		}
		return writeJSON(out, r)
	case "verify":
		statement, err := service.Integrity(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, statement)
	case "rules":
		statement, err := service.Rules(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, statement)
	case "seal":
		return runSeal(ctx, cfg, env, service, out)
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
}

func runSeal(ctx context.Context, cfg Config, env attestEnv, service *attestation.Service, out io.Writer) error {
	normalized, err := attestation.NormalizeHash(cfg.Hash)
	if err != nil {
		return err
	}

	// The seal presents whatever receipt exists; an unanchored hash
	// still renders, just without anchor details.
	opCtx, cancel := context.WithTimeout(ctx, timeouts.StoreOp)
	defer cancel()
	var rcpt *receipt.Receipt
	if stored, err := service.GetOrRegenerateReceipt(opCtx, normalized); err == nil {
		rcpt = &stored
	}

	renderer := seal.NewRenderer(Product, env.LogoPath)
	doc, err := renderer.Render(normalized, cfg.Title, cfg.Notes, rcpt)
	if err != nil {
		return fmt.Errorf("render seal: %w", err)
	}
	if err := os.WriteFile(cfg.Out, doc, 0o600); err != nil {
		return fmt.Errorf("write seal: %w", err)
	}
	_, err = fmt.Fprintf(out, "wrote %s (%d bytes)\n", cfg.Out, len(doc))
	return err
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
