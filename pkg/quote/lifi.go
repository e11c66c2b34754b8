package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/payflow-hq/payflow-engine/pkg/logger"
)

// HTTPProvider is a RouteProvider backed by an HTTP routing engine exposing
// a LI.FI-compatible /quote endpoint.
type HTTPProvider struct {
	endpoint   string
	integrator string
	httpClient *http.Client
	logger     logger.Logger
}

var _ RouteProvider = (*HTTPProvider)(nil)

// NewHTTPProvider creates a routing provider client.
func NewHTTPProvider(endpoint, integrator string, log logger.Logger) *HTTPProvider {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &HTTPProvider{
		endpoint:   endpoint,
		integrator: integrator,
		httpClient: createHTTPClient(),
		logger:     log,
	}
}

// providerError is the routing engine's failure payload.
type providerError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// GetRoute requests a quote for one transfer. Non-200 responses surface as
// errors carrying the provider's message so the service can classify them.
func (p *HTTPProvider) GetRoute(ctx context.Context, req RouteRequest) (*RouteResponse, error) {
	query := url.Values{}
	query.Set("fromChain", strconv.Itoa(req.FromChainID))
	query.Set("toChain", strconv.Itoa(req.ToChainID))
	query.Set("fromToken", req.FromToken)
	query.Set("toToken", req.ToToken)
	query.Set("fromAmount", req.FromAmount)
	query.Set("fromAddress", req.FromAddress)
	query.Set("toAddress", req.ToAddress)
	if p.integrator != "" {
		query.Set("integrator", p.integrator)
	}

	reqURL := fmt.Sprintf("%s/quote?%s", p.endpoint, query.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build quote request: %v", err)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote: %v", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			p.logger.Error("Failed to close response body: %v", err)
		}
	}(resp.Body)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		var perr providerError
		if err := json.Unmarshal(bodyBytes, &perr); err == nil && perr.Message != "" {
			return nil, fmt.Errorf("%s", perr.Message)
		}
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var route RouteResponse
	if err := json.Unmarshal(bodyBytes, &route); err != nil {
		return nil, fmt.Errorf("failed to decode quote response: %v", err)
	}
	return &route, nil
}

// Helper function to create an HTTP client with timeouts
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
