// Package refpack loads the trusted reference artifacts (constitution
// document, model pack, rules pack) and fingerprints them at process
// start.
//
// Missing constitution or model-pack files degrade to the "missing"
// sentinel digest rather than failing the process; that policy lives
// here, outside the fingerprint engine. A missing rules directory
// degrades to an empty pack.
package refpack

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/verum-omnis/attest/internal/fingerprint"
	"github.com/verum-omnis/attest/internal/platform/config"
	apperrors "github.com/verum-omnis/attest/internal/platform/errors"
)

// MissingDigest is the degraded-mode digest reported for an absent
// reference artifact.
const MissingDigest = "missing"

// Env configures where reference artifacts are read from.
type Env struct {
	AssetsDir string `env:"VERUM_OMNIS_ASSETS_DIR" envDefault:"assets"`
}

// LoadEnvFromEnv reads the reference artifact location.
func LoadEnvFromEnv() Env {
	var cfg Env
	_ = config.ParseEnv(&cfg)
	if cfg.AssetsDir == "" {
		cfg.AssetsDir = "assets"
	}
	return cfg
}

// Pack holds the boot-time digests of all reference artifacts.
type Pack struct {
	ConstitutionHash string
	ModelPackHash    string
	RulesItems       []fingerprint.FileDigest
	RulesPackHash    string
}

// Load fingerprints the reference artifacts under assetsDir: the
// constitution document, the model pack, and every file directly under
// rules/ (name-sorted).
func Load(ctx context.Context, assetsDir string) (Pack, error) {
	pack := Pack{
		ConstitutionHash: MissingDigest,
		ModelPackHash:    MissingDigest,
	}

	constitution, err := digestOptional(ctx, filepath.Join(assetsDir, "constitution.pdf"))
	if err != nil {
		return Pack{}, err
	}
	if constitution != "" {
		pack.ConstitutionHash = constitution
	}

	modelPack, err := digestOptional(ctx, filepath.Join(assetsDir, "model_pack.json"))
	if err != nil {
		return Pack{}, err
	}
	if modelPack != "" {
		pack.ModelPackHash = modelPack
	}

	files, err := listRuleFiles(filepath.Join(assetsDir, "rules"))
	if err != nil {
		return Pack{}, err
	}
	items, packDigest, err := fingerprint.DigestPack(ctx, files)
	if err != nil {
		return Pack{}, err
	}
	pack.RulesItems = items
	pack.RulesPackHash = packDigest
	return pack, nil
}

// digestOptional digests one artifact, mapping absence to the empty
// string so the caller can substitute the sentinel.
func digestOptional(ctx context.Context, path string) (string, error) {
	digest, err := fingerprint.DigestFile(ctx, path)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeNotFound {
			return "", nil
		}
		return "", err
	}
	return digest, nil
}

// listRuleFiles enumerates regular files directly under dir. A missing
// directory yields an empty pack.
func listRuleFiles(dir string) ([]fingerprint.PackFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var files []fingerprint.PackFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, fingerprint.PackFile{
			Name: entry.Name(),
			Path: filepath.Join(dir, entry.Name()),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
