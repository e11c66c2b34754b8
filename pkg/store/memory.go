package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/payflow-hq/payflow-engine/pkg/models"
)

// MemoryStore is an in-memory Store for tests and single-process
// deployments. Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	invoices map[string]*models.Invoice
	payments map[string]*models.Payment
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		invoices: make(map[string]*models.Invoice),
		payments: make(map[string]*models.Payment),
	}
}

func (s *MemoryStore) CreateInvoice(_ context.Context, invoice *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.invoices[invoice.ID]; exists {
		return fmt.Errorf("invoice %s already exists", invoice.ID)
	}
	cp := *invoice
	s.invoices[invoice.ID] = &cp
	return nil
}

func (s *MemoryStore) UpdateInvoice(_ context.Context, invoice *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.invoices[invoice.ID]; !exists {
		return ErrNotFound
	}
	cp := *invoice
	s.invoices[invoice.ID] = &cp
	return nil
}

func (s *MemoryStore) GetInvoice(_ context.Context, id string) (*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	invoice, exists := s.invoices[id]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *invoice
	return &cp, nil
}

func (s *MemoryStore) ListInvoices(_ context.Context, userID string) ([]*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Invoice
	for _, invoice := range s.invoices {
		if invoice.UserID != userID {
			continue
		}
		cp := *invoice
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) DeleteInvoice(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.invoices[id]; !exists {
		return ErrNotFound
	}
	delete(s.invoices, id)
	return nil
}

func (s *MemoryStore) CreatePayment(_ context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.payments[payment.ID]; exists {
		return fmt.Errorf("payment %s already exists", payment.ID)
	}
	cp := *payment
	s.payments[payment.ID] = &cp
	return nil
}

func (s *MemoryStore) UpdatePayment(_ context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.payments[payment.ID]; !exists {
		return ErrNotFound
	}
	cp := *payment
	s.payments[payment.ID] = &cp
	return nil
}

func (s *MemoryStore) GetPayment(_ context.Context, id string) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payment, exists := s.payments[id]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *payment
	return &cp, nil
}

func (s *MemoryStore) ListPayments(_ context.Context, invoiceID string) ([]*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Payment
	for _, payment := range s.payments {
		if payment.InvoiceID != invoiceID {
			continue
		}
		cp := *payment
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
