package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payflow-hq/payflow-engine/pkg/models"
)

func TestMemoryStoreInvoiceLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	invoice := &models.Invoice{
		ID:          "inv-1",
		UserID:      "user-1",
		RawFileName: "march.pdf",
		Status:      models.InvoiceParsed,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, s.CreateInvoice(ctx, invoice))

	t.Run("duplicate create fails", func(t *testing.T) {
		assert.Error(t, s.CreateInvoice(ctx, invoice))
	})

	t.Run("get returns a copy", func(t *testing.T) {
		got, err := s.GetInvoice(ctx, "inv-1")
		require.NoError(t, err)
		assert.Equal(t, models.InvoiceParsed, got.Status)

		got.Status = models.InvoicePaid
		again, err := s.GetInvoice(ctx, "inv-1")
		require.NoError(t, err)
		assert.Equal(t, models.InvoiceParsed, again.Status)
	})

	t.Run("update", func(t *testing.T) {
		invoice.Status = models.InvoicePaying
		require.NoError(t, s.UpdateInvoice(ctx, invoice))
		got, err := s.GetInvoice(ctx, "inv-1")
		require.NoError(t, err)
		assert.Equal(t, models.InvoicePaying, got.Status)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteInvoice(ctx, "inv-1"))
		_, err := s.GetInvoice(ctx, "inv-1")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.DeleteInvoice(ctx, "inv-1"), ErrNotFound)
	})
}

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.GetInvoice(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.UpdateInvoice(ctx, &models.Invoice{ID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetPayment(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.UpdatePayment(ctx, &models.Payment{ID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreListInvoicesFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now()

	require.NoError(t, s.CreateInvoice(ctx, &models.Invoice{
		ID: "inv-old", UserID: "user-1", CreatedAt: base.Add(-2 * time.Hour),
	}))
	require.NoError(t, s.CreateInvoice(ctx, &models.Invoice{
		ID: "inv-new", UserID: "user-1", CreatedAt: base,
	}))
	require.NoError(t, s.CreateInvoice(ctx, &models.Invoice{
		ID: "inv-other", UserID: "user-2", CreatedAt: base,
	}))

	out, err := s.ListInvoices(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "inv-new", out[0].ID)
	assert.Equal(t, "inv-old", out[1].ID)

	none, err := s.ListInvoices(ctx, "user-3")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStorePayments(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now()

	require.NoError(t, s.CreatePayment(ctx, &models.Payment{
		ID: "pay-1", InvoiceID: "inv-1", Status: models.PaymentPending,
		CreatedAt: base.Add(-time.Minute),
	}))
	require.NoError(t, s.CreatePayment(ctx, &models.Payment{
		ID: "pay-2", InvoiceID: "inv-1", Status: models.PaymentCompleted,
		TxHash: "0xabc", CreatedAt: base,
	}))
	require.NoError(t, s.CreatePayment(ctx, &models.Payment{
		ID: "pay-3", InvoiceID: "inv-2", Status: models.PaymentPending,
		CreatedAt: base,
	}))

	assert.Error(t, s.CreatePayment(ctx, &models.Payment{ID: "pay-1"}))

	out, err := s.ListPayments(ctx, "inv-1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "pay-2", out[0].ID)
	assert.Equal(t, "pay-1", out[1].ID)

	pay := out[1]
	pay.Status = models.PaymentExecuting
	require.NoError(t, s.UpdatePayment(ctx, pay))
	got, err := s.GetPayment(ctx, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentExecuting, got.Status)
}
