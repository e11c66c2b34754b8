package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/payflow-hq/payflow-engine/pkg/config"
	"github.com/payflow-hq/payflow-engine/pkg/debounce"
	"github.com/payflow-hq/payflow-engine/pkg/logger"
	"github.com/payflow-hq/payflow-engine/pkg/metrics"
	"github.com/payflow-hq/payflow-engine/pkg/models"
)

// Request is a fully concrete quote request. Amount is in human-readable
// units; the service scales it to the source token's smallest unit. The
// recipient must already be a concrete address, never an unresolved name.
type Request struct {
	SourceChainID      int    `validate:"required"`
	DestinationChainID int    `validate:"required"`
	SourceToken        string `validate:"required"`
	DestinationToken   string `validate:"required"`
	Amount             string `validate:"required"`
	FromAddress        string `validate:"required,eth_addr"`
	Recipient          string `validate:"required,eth_addr"`
}

// Service validates requests, short-circuits locally unroutable ones, and
// normalizes provider responses into quotes.
type Service struct {
	provider RouteProvider
	tokens   *config.Tokens
	validate *validator.Validate
	debounce *debounce.Debouncer
	logger   logger.Logger
}

// NewService creates a quote service around an injected routing provider and
// token catalog.
func NewService(provider RouteProvider, tokens *config.Tokens, quiet time.Duration, log logger.Logger) *Service {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Service{
		provider: provider,
		tokens:   tokens,
		validate: validator.New(),
		debounce: debounce.New(quiet),
		logger:   log,
	}
}

// ScaleAmount converts a human-readable decimal amount into the token's
// smallest unit. Fails on non-positive or unparseable amounts.
func ScaleAmount(amount string, decimals int) (string, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", NewInvalidRequestError("invalid amount %q: %v", amount, err)
	}
	if !d.IsPositive() {
		return "", NewInvalidRequestError("amount must be positive, got %s", amount)
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.IsInteger() {
		scaled = scaled.Floor()
	}
	return scaled.BigInt().String(), nil
}

// GetQuote validates the request, resolves token contract addresses from the
// catalog, and requests a route. Unknown destination tokens on the selected
// chain are rejected before any network call.
func (s *Service) GetQuote(ctx context.Context, req Request) (*models.Quote, error) {
	if err := s.validate.Struct(req); err != nil {
		metrics.QuoteRequests.WithLabelValues("invalid").Inc()
		return nil, NewInvalidRequestError("invalid quote request: %v", err)
	}

	sourceAddr := s.tokens.Address(req.SourceChainID, req.SourceToken)
	if sourceAddr == "" {
		metrics.QuoteRequests.WithLabelValues("invalid").Inc()
		return nil, NewInvalidRequestError(
			"token %s has no known contract on chain %d", req.SourceToken, req.SourceChainID)
	}
	destAddr := s.tokens.Address(req.DestinationChainID, req.DestinationToken)
	if destAddr == "" {
		metrics.QuoteRequests.WithLabelValues("invalid").Inc()
		return nil, NewInvalidRequestError(
			"token %s has no known contract on chain %d", req.DestinationToken, req.DestinationChainID)
	}

	srcDecimals := s.tokens.Decimals(req.SourceChainID, sourceAddr)
	if srcDecimals < 0 {
		metrics.QuoteRequests.WithLabelValues("invalid").Inc()
		return nil, NewInvalidRequestError(
			"unknown decimals for token %s on chain %d", req.SourceToken, req.SourceChainID)
	}
	amountRaw, err := ScaleAmount(req.Amount, srcDecimals)
	if err != nil {
		metrics.QuoteRequests.WithLabelValues("invalid").Inc()
		return nil, err
	}

	start := time.Now()
	route, err := s.provider.GetRoute(ctx, RouteRequest{
		FromChainID: req.SourceChainID,
		ToChainID:   req.DestinationChainID,
		FromToken:   sourceAddr,
		ToToken:     destAddr,
		FromAmount:  amountRaw,
		FromAddress: req.FromAddress,
		ToAddress:   req.Recipient,
	})
	metrics.QuoteLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		classified := ClassifyProviderError(err)
		metrics.QuoteRequests.WithLabelValues(string(classified.Kind)).Inc()
		s.logger.Debug("Quote request failed: %v", classified)
		return nil, classified
	}

	if route.TransactionRequest.ChainID != 0 && route.TransactionRequest.ChainID != route.Action.FromChainID {
		metrics.QuoteRequests.WithLabelValues(string(KindProviderError)).Inc()
		return nil, &Error{
			Kind: KindProviderError,
			Message: fmt.Sprintf("provider payload targets chain %d but the route starts on chain %d",
				route.TransactionRequest.ChainID, route.Action.FromChainID),
		}
	}

	metrics.QuoteRequests.WithLabelValues("success").Inc()
	return s.normalize(route), nil
}

// GetQuoteDebounced schedules a quote request after the quiet period and
// delivers the result through apply. A newer call supersedes an older one;
// superseded results are discarded, even when the provider call is already
// in flight when the newer input arrives.
func (s *Service) GetQuoteDebounced(ctx context.Context, req Request, apply func(*models.Quote, error)) {
	s.debounce.Do(func(stale func() bool) {
		quote, err := s.GetQuote(ctx, req)
		if stale() {
			return
		}
		apply(quote, err)
	})
}

// CancelPending drops any scheduled quote request.
func (s *Service) CancelPending() {
	s.debounce.Cancel()
}

// normalize maps a provider route into the quote shape. The execution
// payload keeps the source chain id even when the provider omits it;
// mismatched nonzero values are rejected before normalization runs.
func (s *Service) normalize(route *RouteResponse) *models.Quote {
	payloadChainID := route.TransactionRequest.ChainID
	if payloadChainID == 0 {
		payloadChainID = route.Action.FromChainID
	}
	return &models.Quote{
		ID:         route.ID,
		RouteLabel: route.Tool,
		Source: models.QuoteSource{
			ChainID: route.Action.FromChainID,
			Token: models.QuoteToken{
				Symbol:   route.Action.FromToken.Symbol,
				Decimals: route.Action.FromToken.Decimals,
				Address:  route.Action.FromToken.Address,
			},
			AmountRaw: route.Action.FromAmount,
		},
		Destination: models.QuoteDestination{
			ChainID: route.Action.ToChainID,
			Token: models.QuoteToken{
				Symbol:   route.Action.ToToken.Symbol,
				Decimals: route.Action.ToToken.Decimals,
				Address:  route.Action.ToToken.Address,
			},
			AmountRawExpected: route.Estimate.ToAmount,
			AmountRawMinimum:  route.Estimate.ToAmountMin,
		},
		ApprovalTarget:           route.Estimate.ApprovalAddress,
		FeeUsd:                   sumCostsUsd(route.Estimate.FeeCosts),
		GasUsd:                   sumCostsUsd(route.Estimate.GasCosts),
		EstimatedDurationSeconds: route.Estimate.ExecutionDuration,
		ExecutionPayload: models.ExecutionPayload{
			To:       route.TransactionRequest.To,
			Data:     route.TransactionRequest.Data,
			Value:    route.TransactionRequest.Value,
			ChainID:  payloadChainID,
			GasLimit: route.TransactionRequest.GasLimit,
		},
	}
}

// sumCostsUsd adds up a provider's USD cost line items. Unparseable entries
// are skipped.
func sumCostsUsd(costs []CostEntry) string {
	total := decimal.Zero
	for _, cost := range costs {
		d, err := decimal.NewFromString(cost.AmountUSD)
		if err != nil {
			continue
		}
		total = total.Add(d)
	}
	return total.String()
}
