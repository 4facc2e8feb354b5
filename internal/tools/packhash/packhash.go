// Package packhash is a one-shot utility that fingerprints the
// reference artifacts under an assets directory.
package packhash

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/verum-omnis/attest/internal/fingerprint"
	"github.com/verum-omnis/attest/internal/refpack"
)

// Config holds configuration for pack digest computation.
type Config struct {
	AssetsDir string
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{AssetsDir: refpack.LoadEnvFromEnv().AssetsDir}
	fs.StringVar(&cfg.AssetsDir, "assets", cfg.AssetsDir, "directory holding the reference artifacts")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// report is the JSON document written for one assets directory.
type report struct {
	ConstitutionHash string                   `json:"constitutionHash"`
	ModelPackHash    string                   `json:"modelPackHash"`
	Rules            []fingerprint.FileDigest `json:"rules"`
	RulesPackHash    string                   `json:"rulesPackHash"`
}

// Run fingerprints the reference packs and writes the digests as JSON.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		return errors.New("output is required")
	}
	pack, err := refpack.Load(ctx, cfg.AssetsDir)
	if err != nil {
		return fmt.Errorf("load reference packs: %w", err)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report{
		ConstitutionHash: pack.ConstitutionHash,
		ModelPackHash:    pack.ModelPackHash,
		Rules:            pack.RulesItems,
		RulesPackHash:    pack.RulesPackHash,
	})
}
