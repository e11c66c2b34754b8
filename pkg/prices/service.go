// Package prices supplies USD token prices to the balance aggregator. Reads
// are best-effort: a price failure degrades to zero and never fails a
// balance fetch.
package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/payflow-hq/payflow-engine/pkg/logger"
)

// DefaultPriceEndpoint is the default price API endpoint.
const DefaultPriceEndpoint = "https://api.coingecko.com/api/v3/simple/price"

// coinIDs maps token symbols to price API coin identifiers
var coinIDs = map[string]string{
	"ETH":   "ethereum",
	"MATIC": "matic-network",
	"USDC":  "usd-coin",
	"USDT":  "tether",
	"DAI":   "dai",
}

// Service fetches USD prices with a TTL cache in front.
type Service struct {
	endpoint   string
	httpClient *http.Client
	cache      *Cache
	logger     logger.Logger
}

// NewService creates a price service. An empty endpoint selects the default.
func NewService(endpoint string, cacheTTL time.Duration, log logger.Logger) *Service {
	if endpoint == "" {
		endpoint = DefaultPriceEndpoint
	}
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Service{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:  NewCache(cacheTTL),
		logger: log,
	}
}

// UsdPrice returns the USD price of a token symbol as a decimal string.
// Unknown symbols and fetch failures return "0".
func (s *Service) UsdPrice(ctx context.Context, symbol string) string {
	symbol = strings.ToUpper(symbol)
	coinID, ok := coinIDs[symbol]
	if !ok {
		return "0"
	}

	if price, ok := s.cache.Get(symbol); ok {
		return strconv.FormatFloat(price, 'f', -1, 64)
	}

	price, err := s.fetchPrice(ctx, coinID)
	if err != nil {
		s.logger.Debug("Failed to fetch price for %s: %v", symbol, err)
		return "0"
	}

	s.cache.Set(symbol, price)
	return strconv.FormatFloat(price, 'f', -1, 64)
}

// fetchPrice queries the price API for one coin's USD price
func (s *Service) fetchPrice(ctx context.Context, coinID string) (float64, error) {
	reqURL := fmt.Sprintf("%s?ids=%s&vs_currencies=usd", s.endpoint, coinID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build price request: %v", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch price: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response body: %v", err)
	}

	// Response shape: {"ethereum": {"usd": 1234.5}}
	var parsed map[string]map[string]float64
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return 0, fmt.Errorf("failed to decode price response: %v", err)
	}

	entry, ok := parsed[coinID]
	if !ok {
		return 0, fmt.Errorf("no price entry for %s", coinID)
	}
	price, ok := entry["usd"]
	if !ok {
		return 0, fmt.Errorf("no usd price for %s", coinID)
	}
	return price, nil
}
