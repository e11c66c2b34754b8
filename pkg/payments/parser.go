// Package payments orchestrates the pipeline from a raw payment request
// to an executed cross-chain transfer.
package payments

import (
	"context"

	"github.com/payflow-hq/payflow-engine/pkg/models"
)

// Parser is the external parsing collaborator. It turns informal input
// (free text or an uploaded invoice document) into structured records. The
// engine validates its output; it never trusts the parse blindly.
type Parser interface {
	// ParseText extracts a payment intent from a natural-language request.
	ParseText(ctx context.Context, text string) (*models.PaymentIntent, error)
	// ParseInvoice extracts a structured invoice from an uploaded document.
	ParseInvoice(ctx context.Context, fileName, fileType string, data []byte) (*models.ParsedInvoice, error)
}
