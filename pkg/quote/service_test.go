package quote

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payflow-hq/payflow-engine/pkg/config"
	"github.com/payflow-hq/payflow-engine/pkg/models"
)

// mockProvider counts calls and returns a canned route or error.
type mockProvider struct {
	mu       sync.Mutex
	calls    int
	requests []RouteRequest
	route    *RouteResponse
	err      error
}

func (m *mockProvider) GetRoute(_ context.Context, req RouteRequest) (*RouteResponse, error) {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.route, nil
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

const (
	fromAddr = "0x1111111111111111111111111111111111111111"
	toAddr   = "0x2222222222222222222222222222222222222222"
)

func sampleRoute() *RouteResponse {
	route := &RouteResponse{
		ID:   "route-1",
		Tool: "across",
	}
	route.Action.FromChainID = 42161
	route.Action.ToChainID = 8453
	route.Action.FromToken = RouteToken{
		Address:  "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
		Symbol:   "USDC",
		Decimals: 6,
	}
	route.Action.ToToken = RouteToken{
		Address:  "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		Symbol:   "USDC",
		Decimals: 6,
	}
	route.Action.FromAmount = "10000000"
	route.Estimate = RouteEstimate{
		ToAmount:          "9990000",
		ToAmountMin:       "9950000",
		ApprovalAddress:   "0x3333333333333333333333333333333333333333",
		ExecutionDuration: 30,
		FeeCosts:          []CostEntry{{AmountUSD: "0.01"}, {AmountUSD: "0.02"}},
		GasCosts:          []CostEntry{{AmountUSD: "0.50"}},
	}
	route.TransactionRequest = RouteTransaction{
		To:       "0x4444444444444444444444444444444444444444",
		Data:     "0xdeadbeef",
		Value:    "0x0",
		ChainID:  42161,
		GasLimit: "300000",
	}
	return route
}

func validRequest() Request {
	return Request{
		SourceChainID:      42161,
		DestinationChainID: 8453,
		SourceToken:        "USDC",
		DestinationToken:   "USDC",
		Amount:             "10",
		FromAddress:        fromAddr,
		Recipient:          toAddr,
	}
}

func TestScaleAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals int
		expected string
		wantErr  bool
	}{
		{name: "Whole USDC", amount: "10", decimals: 6, expected: "10000000"},
		{name: "Fractional USDC", amount: "0.5", decimals: 6, expected: "500000"},
		{name: "Eighteen decimals", amount: "1.5", decimals: 18, expected: "1500000000000000000"},
		{name: "Excess precision floors", amount: "0.0000001", decimals: 6, expected: "0"},
		{name: "Zero rejected", amount: "0", decimals: 6, wantErr: true},
		{name: "Negative rejected", amount: "-1", decimals: 6, wantErr: true},
		{name: "Garbage rejected", amount: "ten", decimals: 6, wantErr: true},
		{name: "Empty rejected", amount: "", decimals: 6, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			scaled, err := ScaleAmount(tc.amount, tc.decimals)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, scaled)
		})
	}
}

func TestGetQuoteSuccess(t *testing.T) {
	provider := &mockProvider{route: sampleRoute()}
	svc := NewService(provider, config.DefaultTokens(), time.Millisecond, nil)

	quote, err := svc.GetQuote(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "route-1", quote.ID)
	assert.Equal(t, "across", quote.RouteLabel)
	assert.Equal(t, 42161, quote.Source.ChainID)
	assert.Equal(t, 8453, quote.Destination.ChainID)
	assert.Equal(t, quote.Source.ChainID, quote.ExecutionPayload.ChainID)
	assert.Equal(t, "0.03", quote.FeeUsd)
	assert.Equal(t, "0.5", quote.GasUsd)
	assert.Equal(t, 30, quote.EstimatedDurationSeconds)
	assert.Equal(t, "9950000", quote.Destination.AmountRawMinimum)

	// The provider saw the scaled amount and resolved contract addresses.
	require.Equal(t, 1, provider.callCount())
	sent := provider.requests[0]
	assert.Equal(t, "10000000", sent.FromAmount)
	assert.Equal(t, "0xaf88d065e77c8cC2239327C5EDb3A432268e5831", sent.FromToken)
	assert.Equal(t, toAddr, sent.ToAddress)
}

func TestGetQuotePayloadChainFallsBackToSource(t *testing.T) {
	route := sampleRoute()
	route.TransactionRequest.ChainID = 0
	provider := &mockProvider{route: route}
	svc := NewService(provider, config.DefaultTokens(), time.Millisecond, nil)

	quote, err := svc.GetQuote(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, 42161, quote.ExecutionPayload.ChainID)
}

func TestGetQuotePayloadChainMismatchRejected(t *testing.T) {
	route := sampleRoute()
	route.TransactionRequest.ChainID = 10 // disagrees with the route's source chain
	provider := &mockProvider{route: route}
	svc := NewService(provider, config.DefaultTokens(), time.Millisecond, nil)

	quote, err := svc.GetQuote(context.Background(), validRequest())
	require.Error(t, err)
	assert.Nil(t, quote)

	var qe *Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, KindProviderError, qe.Kind)
}

func TestGetQuoteUnknownDestinationTokenIsLocal(t *testing.T) {
	provider := &mockProvider{route: sampleRoute()}
	svc := NewService(provider, config.DefaultTokens(), time.Millisecond, nil)

	req := validRequest()
	req.DestinationChainID = 8453
	req.DestinationToken = "USDT" // no USDT contract on base

	_, err := svc.GetQuote(context.Background(), req)
	require.Error(t, err)
	assert.True(t, IsInvalidRequest(err))
	assert.Equal(t, 0, provider.callCount(), "local rejection must not reach the provider")
}

func TestGetQuoteValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{name: "Missing recipient", mutate: func(r *Request) { r.Recipient = "" }},
		{name: "ENS-shaped recipient", mutate: func(r *Request) { r.Recipient = "vitalik.eth" }},
		{name: "Malformed address", mutate: func(r *Request) { r.Recipient = "0x1234" }},
		{name: "Missing sender", mutate: func(r *Request) { r.FromAddress = "" }},
		{name: "Missing amount", mutate: func(r *Request) { r.Amount = "" }},
		{name: "Negative amount", mutate: func(r *Request) { r.Amount = "-5" }},
		{name: "Missing source token", mutate: func(r *Request) { r.SourceToken = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			provider := &mockProvider{route: sampleRoute()}
			svc := NewService(provider, config.DefaultTokens(), time.Millisecond, nil)

			req := validRequest()
			tc.mutate(&req)

			_, err := svc.GetQuote(context.Background(), req)
			require.Error(t, err)
			assert.True(t, IsInvalidRequest(err))
			assert.Equal(t, 0, provider.callCount())
		})
	}
}

func TestGetQuoteNoRouteClassification(t *testing.T) {
	provider := &mockProvider{err: fmt.Errorf("No available quotes for the requested transfer")}
	svc := NewService(provider, config.DefaultTokens(), time.Millisecond, nil)

	_, err := svc.GetQuote(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, IsNoRoute(err))
}

func TestGetQuoteProviderErrorClassification(t *testing.T) {
	provider := &mockProvider{err: fmt.Errorf("upstream 503")}
	svc := NewService(provider, config.DefaultTokens(), time.Millisecond, nil)

	_, err := svc.GetQuote(context.Background(), validRequest())
	require.Error(t, err)
	assert.False(t, IsNoRoute(err))
	assert.False(t, IsInvalidRequest(err))

	qe, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindProviderError, qe.Kind)
	assert.Contains(t, qe.Message, "upstream 503")
}

func TestGetQuoteDebouncedSupersede(t *testing.T) {
	provider := &mockProvider{route: sampleRoute()}
	svc := NewService(provider, config.DefaultTokens(), 20*time.Millisecond, nil)

	var mu sync.Mutex
	var got []*models.Quote

	apply := func(q *models.Quote, err error) {
		mu.Lock()
		got = append(got, q)
		mu.Unlock()
	}

	// Two edits in quick succession: only the second request fires.
	first := validRequest()
	first.Amount = "1"
	svc.GetQuoteDebounced(context.Background(), first, apply)
	time.Sleep(2 * time.Millisecond)
	second := validRequest()
	second.Amount = "10"
	svc.GetQuoteDebounced(context.Background(), second, apply)

	time.Sleep(100 * time.Millisecond)

	require.Equal(t, 1, provider.callCount())
	assert.Equal(t, "10000000", provider.requests[0].FromAmount)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "route-1", got[0].ID)
}
