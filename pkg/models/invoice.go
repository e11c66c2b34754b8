package models

import "time"

// InvoiceStatus tracks an invoice through its lifecycle.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceParsed    InvoiceStatus = "parsed"
	InvoiceConfirmed InvoiceStatus = "confirmed"
	InvoicePaying    InvoiceStatus = "paying"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceFailed    InvoiceStatus = "failed"
)

// PaymentStatus tracks a payment record through its lifecycle.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentExecuting PaymentStatus = "executing"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// ParsedInvoice is the structured record extracted from an uploaded
// invoice document by the parsing collaborator. It is validated exactly
// like a text-derived intent.
type ParsedInvoice struct {
	RecipientName    string `json:"recipient_name"`
	RecipientAddress string `json:"recipient_address"`
	ResolvedAddress  string `json:"resolved_address,omitempty"`
	Amount           string `json:"amount"`
	Token            string `json:"token"`
	Chain            string `json:"chain"`
	Memo             string `json:"memo"`
	DueDate          string `json:"due_date,omitempty"`
}

// Invoice is a stored invoice record.
type Invoice struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	RawFileName string         `json:"raw_file_name,omitempty"`
	RawFileType string         `json:"raw_file_type,omitempty"`
	Parsed      *ParsedInvoice `json:"parsed,omitempty"`
	Status      InvoiceStatus  `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Payment is a stored payment record tied to an invoice.
type Payment struct {
	ID         string        `json:"id"`
	InvoiceID  string        `json:"invoice_id"`
	TxHash     string        `json:"tx_hash,omitempty"`
	FromChain  int           `json:"from_chain"`
	ToChain    int           `json:"to_chain"`
	FromToken  string        `json:"from_token"`
	ToToken    string        `json:"to_token"`
	Amount     string        `json:"amount"`
	Status     PaymentStatus `json:"status"`
	RouteLabel string        `json:"route_label,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Intent converts a parsed invoice into a payment intent so both input
// shapes flow through identical validation downstream.
func (p *ParsedInvoice) Intent(originalInput string) PaymentIntent {
	intent := PaymentIntent{
		Amount:           p.Amount,
		Token:            p.Token,
		Recipient:        p.RecipientAddress,
		DestinationChain: p.Chain,
		Confidence:       ConfidenceMedium,
		OriginalInput:    originalInput,
	}
	intent.MissingFields = intent.ComputeMissingFields()
	return intent
}
