package seal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verum-omnis/attest/internal/receipt"
)

const testHash = "9b71d224bd62f3785d96d46ad3ea3d73319bfbc2890caadae2dff72519673ca72323c3d99ba5c11d7c7acc6e14b8c5da0c4663475c2e5c3adef46f73bcdec043"

func TestRenderWithoutReceipt(t *testing.T) {
	renderer := NewRenderer("VO-Web32", "")
	doc, err := renderer.Render(testHash, "", "", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF")) {
		t.Fatal("expected a PDF document")
	}
}

func TestRenderWithReceipt(t *testing.T) {
	renderer := NewRenderer("VO-Web32", "")
	r := &receipt.Receipt{
		Hash:      testHash,
		Chain:     "eth",
		TxID:      strings.Repeat("ab", 32),
		Product:   "VO-Web32",
		IssuedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Signature: "token",
	}
	doc, err := renderer.Render(testHash, "Evidence Seal", "chain of custody notes", r)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF")) {
		t.Fatal("expected a PDF document")
	}
	if len(doc) == 0 {
		t.Fatal("expected non-empty document")
	}
}

func TestRenderCapsTitleAndNotes(t *testing.T) {
	renderer := NewRenderer("VO-Web32", "")
	longTitle := strings.Repeat("t", 500)
	longNotes := strings.Repeat("n", 5000)
	if _, err := renderer.Render(testHash, longTitle, longNotes, nil); err != nil {
		t.Fatalf("render with oversized metadata: %v", err)
	}
}

func TestRenderMissingLogoIsNotFatal(t *testing.T) {
	renderer := NewRenderer("VO-Web32", "/nonexistent/logo.png")
	if _, err := renderer.Render(testHash, "", "", nil); err != nil {
		t.Fatalf("render without logo file: %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short"); got != "short" {
		t.Fatalf("truncate short = %q", got)
	}
	long := strings.Repeat("a", 40)
	if got := truncate(long); got != strings.Repeat("a", 16)+"..." {
		t.Fatalf("truncate long = %q", got)
	}
}
