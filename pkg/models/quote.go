package models

// QuoteToken describes one side's token in a quote.
type QuoteToken struct {
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	Address  string `json:"address"`
}

// QuoteSource is the source leg of a quote.
type QuoteSource struct {
	ChainID   int        `json:"chain_id"`
	Token     QuoteToken `json:"token"`
	AmountRaw string     `json:"amount_raw"`
}

// QuoteDestination is the destination leg of a quote.
type QuoteDestination struct {
	ChainID           int        `json:"chain_id"`
	Token             QuoteToken `json:"token"`
	AmountRawExpected string     `json:"amount_raw_expected"`
	AmountRawMinimum  string     `json:"amount_raw_minimum"`
}

// ExecutionPayload is the one on-chain call the wallet must sign for the
// main transfer. The executor passes these fields through unaltered.
type ExecutionPayload struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	ChainID  int    `json:"chain_id"`
	GasLimit string `json:"gas_limit"`
}

// Quote is an immutable snapshot of a routing provider's proposal for a
// cross-chain transfer. ExecutionPayload.ChainID always equals
// Source.ChainID.
type Quote struct {
	ID                       string           `json:"id"`
	RouteLabel               string           `json:"route_label"`
	Source                   QuoteSource      `json:"source"`
	Destination              QuoteDestination `json:"destination"`
	ApprovalTarget           string           `json:"approval_target"`
	FeeUsd                   string           `json:"fee_usd"`
	GasUsd                   string           `json:"gas_usd"`
	EstimatedDurationSeconds int              `json:"estimated_duration_seconds"`
	ExecutionPayload         ExecutionPayload `json:"execution_payload"`
}
