package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// Fields holds the structured data pulled out of an invoice document. Every
// field is optional; an empty value means the model could not read it.
type Fields struct {
	Issuer        string
	InvoiceNumber string
	IssuedOn      string
	Currency      string
	AmountTotal   decimal.NullDecimal
	AmountTax     decimal.NullDecimal
}

// Extractor turns invoice file content into structured fields.
type Extractor interface {
	Extract(ctx context.Context, filename string, data []byte) (Fields, error)
}

// wireFields is the JSON shape the model is instructed to return. Amounts
// travel as strings so decimal precision survives the wire.
type wireFields struct {
	Issuer        string `json:"issuer"`
	InvoiceNumber string `json:"invoice_number"`
	IssuedOn      string `json:"issued_on"`
	Currency      string `json:"currency"`
	AmountTotal   string `json:"amount_total"`
	AmountTax     string `json:"amount_tax"`
}

// parseFields decodes a model response into Fields. Unparsable amounts are
// dropped rather than failing the whole extraction.
func parseFields(data []byte) (Fields, error) {
	var wire wireFields
	if err := json.Unmarshal(data, &wire); err != nil {
		return Fields{}, fmt.Errorf("decode extraction response: %w", err)
	}

	fields := Fields{
		Issuer:        strings.TrimSpace(wire.Issuer),
		InvoiceNumber: strings.TrimSpace(wire.InvoiceNumber),
		IssuedOn:      strings.TrimSpace(wire.IssuedOn),
		Currency:      strings.ToUpper(strings.TrimSpace(wire.Currency)),
	}
	if raw := strings.TrimSpace(wire.AmountTotal); raw != "" {
		if d, err := decimal.NewFromString(raw); err == nil {
			fields.AmountTotal = decimal.NewNullDecimal(d)
		}
	}
	if raw := strings.TrimSpace(wire.AmountTax); raw != "" {
		if d, err := decimal.NewFromString(raw); err == nil {
			fields.AmountTax = decimal.NewNullDecimal(d)
		}
	}
	return fields, nil
}

// mimeForFilename maps the file extension to the MIME type sent alongside the
// document bytes.
func mimeForFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
