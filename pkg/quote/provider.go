package quote

import "context"

// RouteRequest is the fully concrete request handed to a routing provider.
// Amounts are already scaled to the token's smallest unit.
type RouteRequest struct {
	FromChainID int
	ToChainID   int
	FromToken   string
	ToToken     string
	FromAmount  string
	FromAddress string
	ToAddress   string
}

// RouteToken describes a token in a provider response.
type RouteToken struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// RouteEstimate is the provider's cost and outcome estimate for a route.
type RouteEstimate struct {
	ToAmount          string      `json:"toAmount"`
	ToAmountMin       string      `json:"toAmountMin"`
	ApprovalAddress   string      `json:"approvalAddress"`
	ExecutionDuration int         `json:"executionDuration"`
	FeeCosts          []CostEntry `json:"feeCosts"`
	GasCosts          []CostEntry `json:"gasCosts"`
}

// CostEntry is one fee or gas line item in a provider estimate.
type CostEntry struct {
	AmountUSD string `json:"amountUSD"`
}

// RouteTransaction is the raw transaction the provider asks the wallet to sign.
type RouteTransaction struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	ChainID  int    `json:"chainId"`
	GasLimit string `json:"gasLimit"`
}

// RouteResponse is a provider's proposal for one transfer.
type RouteResponse struct {
	ID     string `json:"id"`
	Tool   string `json:"tool"`
	Action struct {
		FromChainID int        `json:"fromChainId"`
		ToChainID   int        `json:"toChainId"`
		FromToken   RouteToken `json:"fromToken"`
		ToToken     RouteToken `json:"toToken"`
		FromAmount  string     `json:"fromAmount"`
	} `json:"action"`
	Estimate           RouteEstimate    `json:"estimate"`
	TransactionRequest RouteTransaction `json:"transactionRequest"`
}

// RouteProvider is the external routing collaborator. Implementations are
// constructed by the caller and injected; the service never owns a shared
// instance.
type RouteProvider interface {
	GetRoute(ctx context.Context, req RouteRequest) (*RouteResponse, error)
}
