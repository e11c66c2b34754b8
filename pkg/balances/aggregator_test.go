package balances

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payflow-hq/payflow-engine/pkg/circuitbreaker"
	"github.com/payflow-hq/payflow-engine/pkg/config"
	"github.com/payflow-hq/payflow-engine/pkg/models"
)

// mockReader is a ChainReader with canned balances.
type mockReader struct {
	mu          sync.Mutex
	native      *big.Int
	tokens      map[string]*big.Int
	failNative  bool
	failTokens  bool
	allowance   *big.Int
	fetchCalls  int
	blockNumber uint64
}

func (m *mockReader) NativeBalance(_ context.Context, _ string) (*big.Int, error) {
	m.mu.Lock()
	m.fetchCalls++
	m.mu.Unlock()
	if m.failNative {
		return nil, fmt.Errorf("rpc timeout")
	}
	if m.native == nil {
		return big.NewInt(0), nil
	}
	return m.native, nil
}

func (m *mockReader) TokenBalances(_ context.Context, _ string, tokens []string) ([]*big.Int, error) {
	if m.failTokens {
		return nil, fmt.Errorf("rpc error")
	}
	out := make([]*big.Int, len(tokens))
	for i, addr := range tokens {
		if amount, ok := m.tokens[addr]; ok {
			out[i] = amount
		} else {
			out[i] = big.NewInt(0)
		}
	}
	return out, nil
}

func (m *mockReader) Allowance(_ context.Context, _, _, _ string) (*big.Int, error) {
	if m.allowance == nil {
		return big.NewInt(0), nil
	}
	return m.allowance, nil
}

func (m *mockReader) BlockNumber(_ context.Context) (uint64, error) {
	return m.blockNumber, nil
}

func testChains() map[int]config.Chain {
	chains := make(map[int]config.Chain)
	for id, name := range map[int]string{1: "ethereum", 42161: "arbitrum", 10: "optimism", 137: "polygon", 8453: "base"} {
		currency := "ETH"
		if id == 137 {
			currency = "MATIC"
		}
		chains[id] = config.Chain{ID: id, Name: name, DisplayName: name, NativeCurrency: currency}
	}
	return chains
}

func TestGetBalancesUnionOfSucceededChains(t *testing.T) {
	tokens := config.DefaultTokens()
	usdcArb := tokens.Address(42161, "USDC")
	usdcBase := tokens.Address(8453, "USDC")

	readers := map[int]ChainReader{
		1:     &mockReader{failNative: true},
		42161: &mockReader{native: big.NewInt(5), tokens: map[string]*big.Int{usdcArb: big.NewInt(1000000)}},
		10:    &mockReader{failNative: true},
		137:   &mockReader{},
		8453:  &mockReader{tokens: map[string]*big.Int{usdcBase: big.NewInt(42)}},
	}

	agg := NewAggregator(testChains(), tokens, readers, nil, nil, nil)
	result := agg.GetBalances(context.Background(), "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
		[]int{1, 42161, 10, 137, 8453})

	// Two chains failed, one held nothing; the rest contribute their
	// non-zero balances.
	require.Len(t, result, 3)

	byChain := make(map[int][]models.TokenBalance)
	for _, b := range result {
		byChain[b.ChainID] = append(byChain[b.ChainID], b)
	}
	assert.Len(t, byChain[42161], 2, "native plus USDC on arbitrum")
	assert.Len(t, byChain[8453], 1, "USDC only on base")
	assert.Empty(t, byChain[1])
	assert.Empty(t, byChain[10])
	assert.Empty(t, byChain[137], "zero balances are filtered")
}

func TestGetBalancesTotalFailureYieldsEmpty(t *testing.T) {
	readers := map[int]ChainReader{
		1:     &mockReader{failNative: true},
		42161: &mockReader{failNative: true},
	}

	agg := NewAggregator(testChains(), config.DefaultTokens(), readers, nil, nil, nil)
	result := agg.GetBalances(context.Background(), "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
		[]int{1, 42161})

	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestGetBalancesIdempotent(t *testing.T) {
	tokens := config.DefaultTokens()
	usdcEth := tokens.Address(1, "USDC")
	readers := map[int]ChainReader{
		1: &mockReader{native: big.NewInt(7), tokens: map[string]*big.Int{usdcEth: big.NewInt(99)}},
	}

	agg := NewAggregator(testChains(), tokens, readers, nil, nil, nil)
	owner := "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"

	first := agg.GetBalances(context.Background(), owner, []int{1})
	second := agg.GetBalances(context.Background(), owner, []int{1})
	assert.Equal(t, first, second, "repeated calls against unchanged state return the same result")
}

func TestGetBalancesTokenReadFailureKeepsNative(t *testing.T) {
	readers := map[int]ChainReader{
		1: &mockReader{native: big.NewInt(123), failTokens: true},
	}

	agg := NewAggregator(testChains(), config.DefaultTokens(), readers, nil, nil, nil)
	result := agg.GetBalances(context.Background(), "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", []int{1})

	require.Len(t, result, 1)
	assert.Equal(t, models.NativeTokenAddress, result[0].TokenAddress)
	assert.Equal(t, "123", result[0].AmountRaw)
}

func TestGetBalancesSkipsOpenBreaker(t *testing.T) {
	reader := &mockReader{native: big.NewInt(1)}
	readers := map[int]ChainReader{1: reader}

	cb := circuitbreaker.NewCircuitBreaker(true, 1, time.Minute, time.Hour, nil)
	cb.RecordFailure()
	require.True(t, cb.IsOpen())

	agg := NewAggregator(testChains(), config.DefaultTokens(), readers,
		map[int]*circuitbreaker.CircuitBreaker{1: cb}, nil, nil)
	result := agg.GetBalances(context.Background(), "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", []int{1})

	assert.Empty(t, result)
	assert.Equal(t, 0, reader.fetchCalls, "open breaker must short-circuit the fetch")
}

func TestAllowanceNativeIsUnlimited(t *testing.T) {
	agg := NewAggregator(testChains(), config.DefaultTokens(), map[int]ChainReader{}, nil, nil, nil)

	allowance, err := agg.Allowance(context.Background(), 1, models.NativeTokenAddress,
		"0x1111111111111111111111111111111111111111", "0x2222222222222222222222222222222222222222")
	require.NoError(t, err)
	assert.Equal(t, MaxUint256(), allowance)
}

func TestAllowanceUnknownChain(t *testing.T) {
	agg := NewAggregator(testChains(), config.DefaultTokens(), map[int]ChainReader{}, nil, nil, nil)

	_, err := agg.Allowance(context.Background(), 999, "0x3333333333333333333333333333333333333333",
		"0x1111111111111111111111111111111111111111", "0x2222222222222222222222222222222222222222")
	assert.Error(t, err)
}
