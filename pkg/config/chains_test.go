package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeChainName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Arbitrum alias", input: "arb", expected: "arbitrum"},
		{name: "Optimism alias", input: "op", expected: "optimism"},
		{name: "Polygon alias", input: "poly", expected: "polygon"},
		{name: "Ethereum alias", input: "eth", expected: "ethereum"},
		{name: "Mainnet alias", input: "mainnet", expected: "ethereum"},
		{name: "Canonical passes through", input: "base", expected: "base"},
		{name: "Case folded", input: "ARB", expected: "arbitrum"},
		{name: "Whitespace trimmed", input: "  arbitrum  ", expected: "arbitrum"},
		{name: "Unknown passes through lowercased", input: "Solana", expected: "solana"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeChainName(tc.input))
		})
	}
}

func TestChainIDByName(t *testing.T) {
	id, ok := ChainIDByName("arbitrum")
	assert.True(t, ok)
	assert.Equal(t, 42161, id)

	id, ok = ChainIDByName("mainnet")
	assert.True(t, ok)
	assert.Equal(t, 1, id)

	id, ok = ChainIDByName("base")
	assert.True(t, ok)
	assert.Equal(t, 8453, id)

	_, ok = ChainIDByName("solana")
	assert.False(t, ok)
}

func TestGetChainName(t *testing.T) {
	assert.Equal(t, "ethereum", GetChainName(1))
	assert.Equal(t, "base", GetChainName(8453))
	assert.Equal(t, "", GetChainName(999))
}

func TestTokensAddress(t *testing.T) {
	tokens := DefaultTokens()

	t.Run("USDC known on every chain", func(t *testing.T) {
		for _, chainID := range []int{1, 42161, 10, 137, 8453} {
			assert.NotEmpty(t, tokens.Address(chainID, "USDC"), "chain %d", chainID)
		}
	})

	t.Run("USDT has no Base contract", func(t *testing.T) {
		assert.Empty(t, tokens.Address(8453, "USDT"))
		assert.NotEmpty(t, tokens.Address(1, "USDT"))
	})

	t.Run("DAI only on Ethereum", func(t *testing.T) {
		assert.NotEmpty(t, tokens.Address(1, "DAI"))
		assert.Empty(t, tokens.Address(42161, "DAI"))
	})

	t.Run("Native currencies use the zero pseudo-address", func(t *testing.T) {
		assert.Equal(t, "0x0000000000000000000000000000000000000000", tokens.Address(1, "ETH"))
		assert.Equal(t, "0x0000000000000000000000000000000000000000", tokens.Address(137, "MATIC"))
	})

	t.Run("Native symbol of another chain is unknown", func(t *testing.T) {
		assert.Empty(t, tokens.Address(137, "ETH"))
		assert.Empty(t, tokens.Address(1, "MATIC"))
		assert.Empty(t, tokens.Address(8453, "MATIC"))
	})

	t.Run("Symbol match is case-insensitive", func(t *testing.T) {
		assert.Equal(t, tokens.Address(1, "USDC"), tokens.Address(1, "usdc"))
	})
}

func TestTokensDecimals(t *testing.T) {
	tokens := DefaultTokens()

	usdc := tokens.Address(1, "USDC")
	assert.Equal(t, 6, tokens.Decimals(1, usdc))

	dai := tokens.Address(1, "DAI")
	assert.Equal(t, 18, tokens.Decimals(1, dai))

	assert.Equal(t, 18, tokens.Decimals(1, "0x0000000000000000000000000000000000000000"))
	assert.Equal(t, -1, tokens.Decimals(1, "0x1111111111111111111111111111111111111111"))
}

func TestTokensSymbolByAddress(t *testing.T) {
	tokens := DefaultTokens()

	usdcArb := tokens.Address(42161, "USDC")
	assert.Equal(t, "USDC", tokens.SymbolByAddress(usdcArb))
	assert.Equal(t, "", tokens.SymbolByAddress("0x2222222222222222222222222222222222222222"))
}

func TestTokensList(t *testing.T) {
	tokens := DefaultTokens()

	base := tokens.List(8453)
	for _, token := range base {
		assert.NotEqual(t, "USDT", token.Symbol)
	}

	eth := tokens.List(1)
	symbols := make([]string, len(eth))
	for i, token := range eth {
		symbols[i] = token.Symbol
	}
	assert.ElementsMatch(t, []string{"USDC", "USDT", "DAI"}, symbols)
}
