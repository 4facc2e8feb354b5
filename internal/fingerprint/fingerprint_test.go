package fingerprint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/verum-omnis/attest/internal/platform/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDigestBytesLength(t *testing.T) {
	digest := DigestBytes([]byte("x"))
	if len(digest) != 128 {
		t.Fatalf("digest length = %d, want 128", len(digest))
	}
}

func TestDigestFileMatchesDigestBytes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "hello")

	got, err := DigestFile(context.Background(), path)
	if err != nil {
		t.Fatalf("digest file: %v", err)
	}
	if want := DigestBytes([]byte("hello")); got != want {
		t.Fatalf("digest = %s, want %s", got, want)
	}
}

func TestDigestFileMissing(t *testing.T) {
	_, err := DigestFile(context.Background(), filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if got := apperrors.CodeOf(err); got != apperrors.CodeNotFound {
		t.Fatalf("error code = %q, want %q", got, apperrors.CodeNotFound)
	}
}

func TestDigestFileCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "hello")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := DigestFile(ctx, path); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDigestPackOrderIndependent(t *testing.T) {
	dir := t.TempDir()
	pathA := writeFile(t, dir, "a", "x")
	pathB := writeFile(t, dir, "b", "y")

	forward := []PackFile{{Name: "a", Path: pathA}, {Name: "b", Path: pathB}}
	reversed := []PackFile{{Name: "b", Path: pathB}, {Name: "a", Path: pathA}}

	_, first, err := DigestPack(context.Background(), forward)
	if err != nil {
		t.Fatalf("digest pack: %v", err)
	}
	_, second, err := DigestPack(context.Background(), reversed)
	if err != nil {
		t.Fatalf("digest reversed pack: %v", err)
	}
	if first != second {
		t.Fatalf("pack digest changed with input order: %s vs %s", first, second)
	}
}

func TestDigestPackMatchesConcatenation(t *testing.T) {
	dir := t.TempDir()
	pathA := writeFile(t, dir, "a", "x")
	pathB := writeFile(t, dir, "b", "y")

	items, packDigest, err := DigestPack(context.Background(), []PackFile{
		{Name: "b", Path: pathB},
		{Name: "a", Path: pathA},
	})
	if err != nil {
		t.Fatalf("digest pack: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].Name != "a" || items[1].Name != "b" {
		t.Fatalf("items not sorted by name: %s, %s", items[0].Name, items[1].Name)
	}
	if items[0].Size != 1 {
		t.Fatalf("size = %d, want 1", items[0].Size)
	}

	want := DigestBytes([]byte(DigestBytes([]byte("x")) + DigestBytes([]byte("y"))))
	if packDigest != want {
		t.Fatalf("pack digest = %s, want %s", packDigest, want)
	}
}

func TestDigestPackSensitivity(t *testing.T) {
	dir := t.TempDir()
	pathA := writeFile(t, dir, "a", "x")
	pathB := writeFile(t, dir, "b", "y")

	files := []PackFile{{Name: "a", Path: pathA}, {Name: "b", Path: pathB}}
	items, baseline, err := DigestPack(context.Background(), files)
	if err != nil {
		t.Fatalf("digest pack: %v", err)
	}

	// One changed byte changes the member digest and the pack digest.
	writeFile(t, dir, "a", "z")
	changedItems, changed, err := DigestPack(context.Background(), files)
	if err != nil {
		t.Fatalf("digest changed pack: %v", err)
	}
	if changed == baseline {
		t.Fatal("pack digest did not change after content change")
	}
	if changedItems[0].Digest == items[0].Digest {
		t.Fatal("member digest did not change after content change")
	}

	// Renaming without changing content also changes the pack digest.
	writeFile(t, dir, "a", "x")
	renamed := []PackFile{{Name: "c", Path: pathA}, {Name: "b", Path: pathB}}
	_, renamedDigest, err := DigestPack(context.Background(), renamed)
	if err != nil {
		t.Fatalf("digest renamed pack: %v", err)
	}
	if renamedDigest == baseline {
		t.Fatal("pack digest did not change after rename")
	}
}

func TestDigestPackMissingMember(t *testing.T) {
	dir := t.TempDir()
	pathA := writeFile(t, dir, "a", "x")

	_, _, err := DigestPack(context.Background(), []PackFile{
		{Name: "a", Path: pathA},
		{Name: "b", Path: filepath.Join(dir, "absent")},
	})
	if err == nil {
		t.Fatal("expected error for missing member")
	}
	if got := apperrors.CodeOf(err); got != apperrors.CodeNotFound {
		t.Fatalf("error code = %q, want %q", got, apperrors.CodeNotFound)
	}
}

func TestDigestPackEmpty(t *testing.T) {
	items, packDigest, err := DigestPack(context.Background(), nil)
	if err != nil {
		t.Fatalf("digest empty pack: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items = %d, want 0", len(items))
	}
	if want := DigestBytes(nil); packDigest != want {
		t.Fatalf("empty pack digest = %s, want %s", packDigest, want)
	}
}
