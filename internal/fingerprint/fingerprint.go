// Package fingerprint computes deterministic SHA-512 digests for
// individual reference files and for ordered collections of files.
//
// A pack digest covers the concatenation of its member digests in file
// name order, so two packs with identical membership and content always
// fingerprint identically regardless of filesystem enumeration order.
package fingerprint

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	apperrors "github.com/verum-omnis/attest/internal/platform/errors"
)

// PackFile names one member of a reference pack.
type PackFile struct {
	Name string
	Path string
}

// FileDigest is the computed identity of one reference file.
type FileDigest struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	Digest string `json:"sha512"`
}

// DigestBytes returns the SHA-512 digest of data as a 128-char lowercase
// hex string.
func DigestBytes(data []byte) string {
	sum := sha512.Sum512(data)
	return hex.EncodeToString(sum[:])
}

// DigestFile returns the SHA-512 digest of the file at path. A missing
// file yields a NOT_FOUND domain error; hashing respects context
// cancellation so callers can bound wall-clock latency.
func DigestFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.WithMetadata(
				apperrors.CodeNotFound,
				"reference file not found",
				map[string]string{"Path": path},
			)
		}
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha512.New()
	if _, err := io.Copy(h, &contextReader{ctx: ctx, r: f}); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DigestPack digests every member of files and returns the per-file
// digests plus the pack digest. Members are sorted by name before
// digesting; the file name is the sole ordering key.
func DigestPack(ctx context.Context, files []PackFile) ([]FileDigest, string, error) {
	sorted := make([]PackFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	items := make([]FileDigest, 0, len(sorted))
	var concat strings.Builder
	for _, file := range sorted {
		digest, err := DigestFile(ctx, file.Path)
		if err != nil {
			return nil, "", fmt.Errorf("digest pack member %s: %w", file.Name, err)
		}
		info, err := os.Stat(file.Path)
		if err != nil {
			return nil, "", fmt.Errorf("stat pack member %s: %w", file.Name, err)
		}
		items = append(items, FileDigest{Name: file.Name, Size: info.Size(), Digest: digest})
		concat.WriteString(digest)
	}
	return items, DigestBytes([]byte(concat.String())), nil
}

// contextReader cancels an in-flight read when its context ends, keeping
// large-file hashing responsive to caller timeouts.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
