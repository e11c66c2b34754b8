package config

import "strings"

// Chain describes one supported chain. The table is loaded once at startup
// and injected into every component that needs it; nothing reads it as
// ambient global state.
type Chain struct {
	ID             int
	Name           string
	DisplayName    string
	NativeCurrency string
	RPCURL         string
	ExplorerURL    string
}

// TokenInfo describes one ERC-20 contract on a chain's allow-list.
type TokenInfo struct {
	Address     string
	Symbol      string
	DisplayName string
	Decimals    int
}

// chainNames maps chain IDs to canonical chain names
var chainNames = map[int]string{
	1:     "ethereum",
	42161: "arbitrum",
	10:    "optimism",
	137:   "polygon",
	8453:  "base",
}

// chainAliases maps informal chain names to canonical ones
var chainAliases = map[string]string{
	"arb":     "arbitrum",
	"op":      "optimism",
	"poly":    "polygon",
	"eth":     "ethereum",
	"mainnet": "ethereum",
}

// nativeCurrencies maps chain IDs to the symbol of the chain's native
// currency. Polygon is the only supported chain whose native currency is
// not ETH.
var nativeCurrencies = map[int]string{
	1:     "ETH",
	42161: "ETH",
	10:    "ETH",
	137:   "MATIC",
	8453:  "ETH",
}

// usdcAddresses maps chain IDs to USDC contract addresses
var usdcAddresses = map[int]string{
	1:     "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
	42161: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
	10:    "0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85",
	137:   "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359",
	8453:  "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
}

// usdtAddresses maps chain IDs to USDT contract addresses. Base has no
// configured USDT contract; requests for it are rejected locally.
var usdtAddresses = map[int]string{
	1:     "0xdAC17F958D2ee523a2206206994597C13D831ec7",
	42161: "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9",
	10:    "0x94b008aA00579c1307B0EF2c499aD98a8ce58e58",
	137:   "0xc2132D05D31c914a87C6611C10748AEb04B58e8F",
}

// daiAddresses maps chain IDs to DAI contract addresses
var daiAddresses = map[int]string{
	1: "0x6B175474E89094C44Da98b954EedeAC495271d0F",
}

// NormalizeChainName maps informal chain names to canonical ones; unknown
// names pass through lowercased unchanged.
func NormalizeChainName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := chainAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// GetChainName returns the canonical name of the chain for a given chain ID
func GetChainName(chainID int) string {
	name, exists := chainNames[chainID]
	if !exists {
		return ""
	}
	return name
}

// ChainIDByName returns the chain ID for a canonical chain name, resolving
// aliases first. The second return is false for unknown names.
func ChainIDByName(name string) (int, bool) {
	canonical := NormalizeChainName(name)
	for id, n := range chainNames {
		if n == canonical {
			return id, true
		}
	}
	return 0, false
}

// Tokens is the token contract catalog injected into the quote service and
// balance aggregator. It replaces ambient global lookups: constructed once
// at startup, passed around explicitly.
type Tokens struct {
	byChain map[int][]TokenInfo
}

// DefaultTokens builds the catalog from the built-in address tables.
func DefaultTokens() *Tokens {
	byChain := make(map[int][]TokenInfo)
	for chainID := range chainNames {
		var tokens []TokenInfo
		if addr, ok := usdcAddresses[chainID]; ok {
			tokens = append(tokens, TokenInfo{Address: addr, Symbol: "USDC", DisplayName: "USD Coin", Decimals: 6})
		}
		if addr, ok := usdtAddresses[chainID]; ok {
			tokens = append(tokens, TokenInfo{Address: addr, Symbol: "USDT", DisplayName: "Tether USD", Decimals: 6})
		}
		if addr, ok := daiAddresses[chainID]; ok {
			tokens = append(tokens, TokenInfo{Address: addr, Symbol: "DAI", DisplayName: "Dai Stablecoin", Decimals: 18})
		}
		byChain[chainID] = tokens
	}
	return &Tokens{byChain: byChain}
}

// List returns the ERC-20 allow-list queried on a chain during balance
// aggregation (native currency is fetched separately).
func (t *Tokens) List(chainID int) []TokenInfo {
	return t.byChain[chainID]
}

// Address returns the contract address of a token symbol on a chain. The
// native pseudo-address is returned only when the symbol is that chain's
// native currency; the empty string means the token has no known contract
// there.
func (t *Tokens) Address(chainID int, symbol string) string {
	if native, ok := nativeCurrencies[chainID]; ok && strings.EqualFold(symbol, native) {
		return "0x0000000000000000000000000000000000000000"
	}
	for _, token := range t.byChain[chainID] {
		if strings.EqualFold(token.Symbol, symbol) {
			return token.Address
		}
	}
	return ""
}

// SymbolByAddress walks the catalog and returns the symbol a contract
// address belongs to, or the empty string if unknown.
func (t *Tokens) SymbolByAddress(address string) string {
	for _, tokens := range t.byChain {
		for _, token := range tokens {
			if strings.EqualFold(token.Address, address) {
				return token.Symbol
			}
		}
	}
	return ""
}

// Decimals returns the decimals for a token contract on a chain; 18 for the
// native pseudo-address, -1 when unknown.
func (t *Tokens) Decimals(chainID int, address string) int {
	if address == "0x0000000000000000000000000000000000000000" {
		return 18
	}
	for _, token := range t.byChain[chainID] {
		if strings.EqualFold(token.Address, address) {
			return token.Decimals
		}
	}
	return -1
}
