package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payflow-hq/payflow-engine/pkg/models"
)

func holdings() []models.TokenBalance {
	return []models.TokenBalance{
		{Symbol: "ETH", ChainID: 1, AmountRaw: "2000000000000000000"},
		{Symbol: "USDC", ChainID: 42161, AmountRaw: "50000000"},
		{Symbol: "USDC", ChainID: 10, AmountRaw: "25000000"},
		{Symbol: "USDT", ChainID: 137, AmountRaw: "10000000"},
	}
}

func TestReconcilePrefersIntentChainAndToken(t *testing.T) {
	r := NewReconciler(nil)

	sel, err := r.Reconcile(&models.PaymentIntent{
		Amount:           "10",
		Token:            "USDC",
		Recipient:        "alice.eth",
		SourceChain:      "optimism",
		DestinationChain: "base",
	}, holdings())
	require.NoError(t, err)

	assert.Equal(t, 10, sel.SourceChainID)
	assert.Equal(t, "USDC", sel.SourceToken)
	assert.Equal(t, 8453, sel.DestinationChainID)
	assert.False(t, sel.Fallback)
}

func TestReconcileTokenOnAnyChain(t *testing.T) {
	r := NewReconciler(nil)

	// No source chain hint: the first balance carrying the token wins.
	sel, err := r.Reconcile(&models.PaymentIntent{
		Amount:    "10",
		Token:     "usdc",
		Recipient: "alice.eth",
	}, holdings())
	require.NoError(t, err)

	assert.Equal(t, 42161, sel.SourceChainID)
	assert.Equal(t, "USDC", sel.SourceToken)
	assert.False(t, sel.Fallback)
}

func TestReconcileChainHintWithoutMatchFallsToToken(t *testing.T) {
	r := NewReconciler(nil)

	// USDT is held only on polygon, so the arbitrum hint cannot be honored.
	sel, err := r.Reconcile(&models.PaymentIntent{
		Amount:      "5",
		Token:       "USDT",
		Recipient:   "bob.eth",
		SourceChain: "arbitrum",
	}, holdings())
	require.NoError(t, err)

	assert.Equal(t, 137, sel.SourceChainID)
	assert.Equal(t, "USDT", sel.SourceToken)
	assert.False(t, sel.Fallback)
}

func TestReconcileFallbackToFirstBalance(t *testing.T) {
	r := NewReconciler(nil)

	sel, err := r.Reconcile(&models.PaymentIntent{
		Amount:    "10",
		Token:     "DAI",
		Recipient: "alice.eth",
	}, holdings())
	require.NoError(t, err)

	assert.Equal(t, 1, sel.SourceChainID)
	assert.Equal(t, "ETH", sel.SourceToken)
	assert.True(t, sel.Fallback)
}

func TestReconcileChainAliases(t *testing.T) {
	r := NewReconciler(nil)

	sel, err := r.Reconcile(&models.PaymentIntent{
		Amount:           "10",
		Token:            "USDC",
		Recipient:        "alice.eth",
		SourceChain:      "arb",
		DestinationChain: "op",
	}, holdings())
	require.NoError(t, err)

	assert.Equal(t, 42161, sel.SourceChainID)
	assert.Equal(t, 10, sel.DestinationChainID)
}

func TestReconcileUnknownDestinationIgnored(t *testing.T) {
	r := NewReconciler(nil)

	sel, err := r.Reconcile(&models.PaymentIntent{
		Amount:           "10",
		Token:            "USDC",
		Recipient:        "alice.eth",
		DestinationChain: "solana",
	}, holdings())
	require.NoError(t, err)
	assert.Equal(t, 0, sel.DestinationChainID)
	assert.Equal(t, 42161, sel.SourceChainID)
}

func TestReconcileNoBalances(t *testing.T) {
	r := NewReconciler(nil)

	sel, err := r.Reconcile(&models.PaymentIntent{
		Amount:           "10",
		Token:            "USDC",
		Recipient:        "alice.eth",
		DestinationChain: "base",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, sel.SourceChainID)
	assert.Empty(t, sel.SourceToken)
	assert.Equal(t, 8453, sel.DestinationChainID)
	assert.False(t, sel.Fallback)
}

func TestReconcileUnparseable(t *testing.T) {
	r := NewReconciler(nil)

	_, err := r.Reconcile(&models.PaymentIntent{SourceChain: "ethereum"}, holdings())
	assert.ErrorIs(t, err, ErrUnparseable)
}
