// Package balances aggregates an owner's native and token balances across
// chains. Sub-fetches run concurrently and fail independently; the result is
// the union of whatever succeeded.
package balances

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/payflow-hq/payflow-engine/pkg/circuitbreaker"
	"github.com/payflow-hq/payflow-engine/pkg/config"
	"github.com/payflow-hq/payflow-engine/pkg/logger"
	"github.com/payflow-hq/payflow-engine/pkg/metrics"
	"github.com/payflow-hq/payflow-engine/pkg/models"
)

// PriceSource supplies USD prices for balance display. Best-effort.
type PriceSource interface {
	UsdPrice(ctx context.Context, symbol string) string
}

// Aggregator fetches balances across chains.
type Aggregator struct {
	chains   map[int]config.Chain
	tokens   *config.Tokens
	readers  map[int]ChainReader
	breakers map[int]*circuitbreaker.CircuitBreaker
	prices   PriceSource
	logger   logger.Logger
}

// NewAggregator creates an aggregator over the given per-chain readers.
// breakers and prices may be nil.
func NewAggregator(
	chains map[int]config.Chain,
	tokens *config.Tokens,
	readers map[int]ChainReader,
	breakers map[int]*circuitbreaker.CircuitBreaker,
	prices PriceSource,
	log logger.Logger,
) *Aggregator {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Aggregator{
		chains:   chains,
		tokens:   tokens,
		readers:  readers,
		breakers: breakers,
		prices:   prices,
		logger:   log,
	}
}

// GetBalances fetches the owner's balances on every requested chain
// concurrently. A failing chain contributes nothing and never fails its
// siblings; total failure yields an empty slice, not an error.
func (a *Aggregator) GetBalances(ctx context.Context, owner string, chainIDs []int) []models.TokenBalance {
	results := make(chan []models.TokenBalance, len(chainIDs))

	var wg sync.WaitGroup
	for _, chainID := range chainIDs {
		wg.Add(1)
		go func(chainID int) {
			defer wg.Done()

			if cb, ok := a.breakers[chainID]; ok && cb.IsEnabled() && cb.IsOpen() {
				a.logger.DebugWithChain(chainID, "Circuit breaker open, skipping balance fetch")
				return
			}

			chainBalances, err := a.fetchChainBalances(ctx, owner, chainID)
			if err != nil {
				a.logger.ErrorWithChain(chainID, "Balance fetch failed: %v", err)
				metrics.BalanceFetchFailures.WithLabelValues(fmt.Sprintf("%d", chainID)).Inc()
				if cb, ok := a.breakers[chainID]; ok {
					cb.RecordFailure()
				}
				return
			}
			results <- chainBalances
		}(chainID)
	}
	wg.Wait()
	close(results)

	balances := []models.TokenBalance{}
	for chainBalances := range results {
		balances = append(balances, chainBalances...)
	}
	metrics.BalancesReturned.Set(float64(len(balances)))
	return balances
}

// fetchChainBalances fetches the native balance plus the chain's token
// allow-list for one chain. Zero balances are filtered here, at the source.
func (a *Aggregator) fetchChainBalances(ctx context.Context, owner string, chainID int) ([]models.TokenBalance, error) {
	reader, ok := a.readers[chainID]
	if !ok {
		return nil, fmt.Errorf("no reader configured for chain %d", chainID)
	}
	chain, ok := a.chains[chainID]
	if !ok {
		return nil, fmt.Errorf("chain configuration not found for %d", chainID)
	}

	var balances []models.TokenBalance

	native, err := reader.NativeBalance(ctx, owner)
	if err != nil {
		return nil, err
	}
	if native.Sign() > 0 {
		balances = append(balances, models.TokenBalance{
			Symbol:       chain.NativeCurrency,
			DisplayName:  chain.DisplayName,
			AmountRaw:    native.String(),
			ChainID:      chainID,
			TokenAddress: models.NativeTokenAddress,
			Decimals:     18,
			UsdPrice:     a.usdPrice(ctx, chain.NativeCurrency),
		})
	}

	tokens := a.tokens.List(chainID)
	if len(tokens) == 0 {
		return balances, nil
	}

	addresses := make([]string, len(tokens))
	for i, token := range tokens {
		addresses[i] = token.Address
	}

	amounts, err := reader.TokenBalances(ctx, owner, addresses)
	if err != nil {
		// Native succeeded; keep it rather than dropping the whole chain
		a.logger.DebugWithChain(chainID, "Token balance read failed: %v", err)
		return balances, nil
	}

	for i, amount := range amounts {
		if amount == nil || amount.Sign() <= 0 {
			continue
		}
		balances = append(balances, models.TokenBalance{
			Symbol:       tokens[i].Symbol,
			DisplayName:  tokens[i].DisplayName,
			AmountRaw:    amount.String(),
			ChainID:      chainID,
			TokenAddress: tokens[i].Address,
			Decimals:     tokens[i].Decimals,
			UsdPrice:     a.usdPrice(ctx, tokens[i].Symbol),
		})
	}
	return balances, nil
}

// Allowance reads the current ERC-20 allowance on a chain. Native tokens
// never need allowance and report the max value.
func (a *Aggregator) Allowance(ctx context.Context, chainID int, token, owner, spender string) (*big.Int, error) {
	if token == models.NativeTokenAddress {
		return MaxUint256(), nil
	}
	reader, ok := a.readers[chainID]
	if !ok {
		return nil, fmt.Errorf("no reader configured for chain %d", chainID)
	}
	return reader.Allowance(ctx, token, owner, spender)
}

// Reader exposes the underlying reader for a chain, for readiness probes.
func (a *Aggregator) Reader(chainID int) (ChainReader, bool) {
	reader, ok := a.readers[chainID]
	return reader, ok
}

func (a *Aggregator) usdPrice(ctx context.Context, symbol string) string {
	if a.prices == nil {
		return "0"
	}
	return a.prices.UsdPrice(ctx, symbol)
}

// MaxUint256 returns 2^256 - 1.
func MaxUint256() *big.Int {
	return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
}
