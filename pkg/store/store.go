// Package store persists invoice and payment records.
package store

import (
	"context"
	"errors"

	"github.com/payflow-hq/payflow-engine/pkg/models"
)

// ErrNotFound marks a lookup for a record that does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the persistence surface for invoices and payments. Records are
// replaced wholesale on update, never patched in place.
type Store interface {
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	UpdateInvoice(ctx context.Context, invoice *models.Invoice) error
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)
	ListInvoices(ctx context.Context, userID string) ([]*models.Invoice, error)
	DeleteInvoice(ctx context.Context, id string) error

	CreatePayment(ctx context.Context, payment *models.Payment) error
	UpdatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	ListPayments(ctx context.Context, invoiceID string) ([]*models.Payment, error)
}
