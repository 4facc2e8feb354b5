// Package seal renders a receipt into a printable sealed document.
//
// Rendering is a pure presentation transform: it re-displays existing
// receipt fields and embeds them as a scannable code, producing no new
// cryptographic material. A nil receipt renders an unsealed document.
package seal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/verum-omnis/attest/internal/receipt"
)

const (
	defaultTitle = "Sealed Verification"
	maxTitleLen  = 120
	maxNotesLen  = 2000
)

// Renderer produces sealed PDF documents for one product identity.
type Renderer struct {
	product  string
	logoPath string
}

// NewRenderer creates a renderer. logoPath is optional; a missing logo
// renders a document without branding.
func NewRenderer(product, logoPath string) *Renderer {
	return &Renderer{product: product, logoPath: logoPath}
}

// qrPayload is the machine-readable encoding embedded in the seal.
type qrPayload struct {
	Hash      string     `json:"hash"`
	ProductID string     `json:"productId"`
	Receipt   *qrReceipt `json:"receipt"`
}

type qrReceipt struct {
	Chain    string `json:"chain,omitempty"`
	TxID     string `json:"txid,omitempty"`
	IssuedAt string `json:"issuedAt"`
}

// Render produces the sealed document for hash. The receipt may be nil;
// the document then presents the hash without anchor details.
func (r *Renderer) Render(hash, title, notes string, rcpt *receipt.Receipt) ([]byte, error) {
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}
	if len(notes) > maxNotesLen {
		notes = notes[:maxNotesLen]
	}
	if title == "" {
		title = defaultTitle
	}

	qrPNG, err := r.encodeQR(hash, rcpt)
	if err != nil {
		return nil, fmt.Errorf("encode seal qr: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()

	logo := r.logoExists()
	if logo {
		pdf.ImageOptions(r.logoPath, (pageW-50)/2, 10, 50, 0, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
		// Faint watermark behind the body text.
		pdf.SetAlpha(0.08, "Normal")
		pdf.ImageOptions(r.logoPath, (pageW-130)/2, (pageH-130)/2, 130, 0, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
		pdf.SetAlpha(1, "Normal")
	}

	pdf.SetY(40)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, "SHA-512: "+hash, "", "L", false)
	if rcpt != nil {
		if !rcpt.IssuedAt.IsZero() {
			pdf.CellFormat(0, 5, "Issued: "+rcpt.IssuedAt.UTC().Format(time.RFC3339), "", 1, "L", false, 0, "")
		}
		if rcpt.TxID != "" {
			chain := rcpt.Chain
			if chain == "" {
				chain = "eth"
			}
			pdf.CellFormat(0, 5, fmt.Sprintf("Anchor: %s / %s", chain, truncate(rcpt.TxID)), "", 1, "L", false, 0, "")
		}
		if rcpt.Note != "" {
			pdf.CellFormat(0, 5, "Note: "+rcpt.Note, "", 1, "L", false, 0, "")
		}
	}
	pdf.CellFormat(0, 5, "Product: "+r.product, "", 1, "L", false, 0, "")
	pdf.Ln(3)

	if notes != "" {
		pdf.SetFont("Helvetica", "U", 11)
		pdf.CellFormat(0, 6, "Notes:", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, notes, "", "L", false)
	}

	// Verification block with the scannable code, bottom right.
	const blockW, blockH = 85.0, 40.0
	blockX := pageW - blockW - 20
	blockY := pageH - blockH - 20
	pdf.RoundedRect(blockX, blockY, blockW, blockH, 4, "1234", "D")

	pdf.RegisterImageOptionsReader("seal-qr", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	if pdf.Err() {
		return nil, fmt.Errorf("register seal qr: %w", pdf.Error())
	}
	pdf.ImageOptions("seal-qr", blockX+3, blockY+3, blockH-6, blockH-6, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := blockX + blockH
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(textX, blockY+5)
	pdf.CellFormat(blockW-blockH-3, 4, "Verum Omnis", "", 2, "L", false, 0, "")
	pdf.CellFormat(blockW-blockH-3, 4, "Hash: "+truncate(hash), "", 2, "L", false, 0, "")
	pdf.SetXY(textX, blockY+blockH-12)
	pdf.MultiCell(blockW-blockH-3, 4, "This document is sealed and tamper-evident.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render seal pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) encodeQR(hash string, rcpt *receipt.Receipt) ([]byte, error) {
	payload := qrPayload{Hash: hash, ProductID: r.product}
	if rcpt != nil {
		payload.Receipt = &qrReceipt{
			Chain:    rcpt.Chain,
			TxID:     rcpt.TxID,
			IssuedAt: rcpt.IssuedAt.UTC().Format(time.RFC3339),
		}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(encoded), qrcode.Medium, 256)
}

func (r *Renderer) logoExists() bool {
	if r.logoPath == "" {
		return false
	}
	info, err := os.Stat(r.logoPath)
	return err == nil && !info.IsDir()
}

// truncate shortens an identifier to its 16-char display form.
func truncate(value string) string {
	if len(value) <= 16 {
		return value
	}
	return value[:16] + "..."
}
