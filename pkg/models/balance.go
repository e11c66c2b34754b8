package models

// NativeTokenAddress is the pseudo-address used for a chain's native
// currency in balance and quote requests.
const NativeTokenAddress = "0x0000000000000000000000000000000000000000"

// TokenBalance represents a single token holding on a single chain.
// AmountRaw is always expressed in the token's smallest unit; zero-value
// balances are filtered out before they ever leave the aggregator.
type TokenBalance struct {
	Symbol       string `json:"symbol"`
	DisplayName  string `json:"display_name"`
	AmountRaw    string `json:"amount_raw"`
	ChainID      int    `json:"chain_id"`
	TokenAddress string `json:"token_address"`
	Decimals     int    `json:"decimals"`
	UsdPrice     string `json:"usd_price"`
}

// IsNative reports whether the balance is the chain's native currency.
func (b TokenBalance) IsNative() bool {
	return b.TokenAddress == NativeTokenAddress
}
