package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/payflow-hq/payflow-engine/pkg/logger"
)

const (
	// DefaultWorkerCount defines the default number of workers processing payments
	DefaultWorkerCount = 5

	// DefaultMetricsPort defines the default port for the health/metrics server
	DefaultMetricsPort = "8080"

	// DefaultReceiptPollInterval defines the default delay between receipt polls in seconds
	DefaultReceiptPollInterval = 2

	// DefaultConfirmTimeoutMinutes defines the default receipt-wait timeout.
	// Zero disables the timeout and polls forever.
	DefaultConfirmTimeoutMinutes = 10

	// DefaultResolveDebounceMillis defines the quiet period before a name resolution fires
	DefaultResolveDebounceMillis = 300

	// DefaultQuoteDebounceMillis defines the quiet period before a quote request fires
	DefaultQuoteDebounceMillis = 500

	// DefaultQuoteEndpoint defines the default routing provider API endpoint
	DefaultQuoteEndpoint = "https://li.quest/v1"

	// DefaultQuoteIntegrator identifies this client to the routing provider
	DefaultQuoteIntegrator = "payflow"

	// DefaultPriceCacheTTL defines the default token price cache TTL in minutes
	DefaultPriceCacheTTL = 5

	// DefaultCircuitBreakerEnabled defines whether the per-chain breaker is enabled
	DefaultCircuitBreakerEnabled = true

	// DefaultCircuitBreakerThreshold defines failures before the breaker trips
	DefaultCircuitBreakerThreshold = 5

	// DefaultCircuitBreakerWindow defines the failure window in minutes
	DefaultCircuitBreakerWindow = 5

	// DefaultCircuitBreakerReset defines the reset timeout in minutes
	DefaultCircuitBreakerReset = 15

	// Per-chain RPC defaults, overridable via <NAME>_RPC_URL

	DefaultEthereumRPCURL = "https://eth.drpc.org"
	DefaultArbitrumRPCURL = "https://arbitrum.drpc.org"
	DefaultOptimismRPCURL = "https://optimism.drpc.org"
	DefaultPolygonRPCURL  = "https://polygon.drpc.org"
	DefaultBaseRPCURL     = "https://base.drpc.org"
)

// defaultChains is the built-in chain table. RPC URLs may be overridden per
// chain through environment variables.
var defaultChains = []Chain{
	{ID: 1, Name: "ethereum", DisplayName: "Ethereum", NativeCurrency: "ETH", RPCURL: DefaultEthereumRPCURL, ExplorerURL: "https://etherscan.io"},
	{ID: 42161, Name: "arbitrum", DisplayName: "Arbitrum", NativeCurrency: "ETH", RPCURL: DefaultArbitrumRPCURL, ExplorerURL: "https://arbiscan.io"},
	{ID: 10, Name: "optimism", DisplayName: "Optimism", NativeCurrency: "ETH", RPCURL: DefaultOptimismRPCURL, ExplorerURL: "https://optimistic.etherscan.io"},
	{ID: 137, Name: "polygon", DisplayName: "Polygon", NativeCurrency: "MATIC", RPCURL: DefaultPolygonRPCURL, ExplorerURL: "https://polygonscan.com"},
	{ID: 8453, Name: "base", DisplayName: "Base", NativeCurrency: "ETH", RPCURL: DefaultBaseRPCURL, ExplorerURL: "https://basescan.org"},
}

// GetEnvChains returns the chain table with per-chain RPC overrides applied
func GetEnvChains() (map[int]Chain, error) {
	chains := make(map[int]Chain, len(defaultChains))
	for _, chain := range defaultChains {
		envVar := fmt.Sprintf("%s_RPC_URL", toEnvName(chain.Name))
		if override := os.Getenv(envVar); override != "" {
			if _, err := url.ParseRequestURI(override); err != nil {
				return nil, fmt.Errorf("invalid %s value: %s", envVar, override)
			}
			chain.RPCURL = override
		}
		chains[chain.ID] = chain
	}
	return chains, nil
}

// GetEnvPrivateKey returns the signer private key. Required; the engine
// cannot submit transactions without one.
func GetEnvPrivateKey() (string, error) {
	key := os.Getenv("PRIVATE_KEY")
	if key == "" {
		return "", fmt.Errorf("PRIVATE_KEY environment variable is required")
	}
	return strings.TrimPrefix(key, "0x"), nil
}

// GetEnvWorkerCount returns the configured worker count or the default
func GetEnvWorkerCount() (int, error) {
	return getEnvInt("WORKER_COUNT", DefaultWorkerCount)
}

// GetEnvMetricsPort returns the configured metrics port or the default
func GetEnvMetricsPort() (string, error) {
	port := os.Getenv("METRICS_PORT")
	if port == "" {
		return DefaultMetricsPort, nil
	}
	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("invalid METRICS_PORT value: %s", port)
	}
	return port, nil
}

// GetEnvQuoteEndpoint returns the routing provider endpoint or the default
func GetEnvQuoteEndpoint() (string, error) {
	endpoint := os.Getenv("QUOTE_API_ENDPOINT")
	if endpoint == "" {
		return DefaultQuoteEndpoint, nil
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return "", fmt.Errorf("invalid QUOTE_API_ENDPOINT value: %s", endpoint)
	}
	return endpoint, nil
}

// GetEnvQuoteIntegrator returns the integrator tag sent to the routing provider
func GetEnvQuoteIntegrator() string {
	if v := os.Getenv("QUOTE_INTEGRATOR"); v != "" {
		return v
	}
	return DefaultQuoteIntegrator
}

// GetEnvParserEndpoint returns the parsing service endpoint. Empty means
// text and invoice intake are disabled.
func GetEnvParserEndpoint() (string, error) {
	endpoint := os.Getenv("PARSER_API_ENDPOINT")
	if endpoint == "" {
		return "", nil
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return "", fmt.Errorf("invalid PARSER_API_ENDPOINT value: %s", endpoint)
	}
	return endpoint, nil
}

// GetEnvReceiptPollInterval returns the receipt polling interval
func GetEnvReceiptPollInterval() (time.Duration, error) {
	seconds, err := getEnvInt("RECEIPT_POLL_INTERVAL_SECONDS", DefaultReceiptPollInterval)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}

// GetEnvConfirmTimeout returns the receipt-wait timeout; zero means no timeout
func GetEnvConfirmTimeout() (time.Duration, error) {
	minutes, err := getEnvInt("CONFIRM_TIMEOUT_MINUTES", DefaultConfirmTimeoutMinutes)
	if err != nil {
		return 0, err
	}
	if minutes < 0 {
		return 0, fmt.Errorf("CONFIRM_TIMEOUT_MINUTES must not be negative")
	}
	return time.Duration(minutes) * time.Minute, nil
}

// GetEnvResolveDebounce returns the name-resolution debounce quiet period
func GetEnvResolveDebounce() (time.Duration, error) {
	millis, err := getEnvInt("RESOLVE_DEBOUNCE_MILLIS", DefaultResolveDebounceMillis)
	if err != nil {
		return 0, err
	}
	return time.Duration(millis) * time.Millisecond, nil
}

// GetEnvQuoteDebounce returns the quote-request debounce quiet period
func GetEnvQuoteDebounce() (time.Duration, error) {
	millis, err := getEnvInt("QUOTE_DEBOUNCE_MILLIS", DefaultQuoteDebounceMillis)
	if err != nil {
		return 0, err
	}
	return time.Duration(millis) * time.Millisecond, nil
}

// GetEnvPriceCacheTTL returns the token price cache TTL
func GetEnvPriceCacheTTL() (time.Duration, error) {
	minutes, err := getEnvInt("PRICE_CACHE_TTL_MINUTES", DefaultPriceCacheTTL)
	if err != nil {
		return 0, err
	}
	return time.Duration(minutes) * time.Minute, nil
}

// GetEnvCircuitBreakerEnabled returns whether the circuit breaker is enabled
func GetEnvCircuitBreakerEnabled() (bool, error) {
	val := os.Getenv("CIRCUIT_BREAKER_ENABLED")
	if val == "" {
		return DefaultCircuitBreakerEnabled, nil
	}
	enabled, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid CIRCUIT_BREAKER_ENABLED value: %s", val)
	}
	return enabled, nil
}

// GetEnvCircuitBreakerThreshold returns the breaker failure threshold
func GetEnvCircuitBreakerThreshold() (int, error) {
	return getEnvInt("CIRCUIT_BREAKER_THRESHOLD", DefaultCircuitBreakerThreshold)
}

// GetEnvCircuitBreakerWindow returns the breaker failure window
func GetEnvCircuitBreakerWindow() (time.Duration, error) {
	minutes, err := getEnvInt("CIRCUIT_BREAKER_WINDOW_MINUTES", DefaultCircuitBreakerWindow)
	if err != nil {
		return 0, err
	}
	return time.Duration(minutes) * time.Minute, nil
}

// GetEnvCircuitBreakerReset returns the breaker reset timeout
func GetEnvCircuitBreakerReset() (time.Duration, error) {
	minutes, err := getEnvInt("CIRCUIT_BREAKER_RESET_MINUTES", DefaultCircuitBreakerReset)
	if err != nil {
		return 0, err
	}
	return time.Duration(minutes) * time.Minute, nil
}

// GetEnvLogLevel returns the configured log level, default info
func GetEnvLogLevel() (logger.Level, error) {
	switch os.Getenv("LOG_LEVEL") {
	case "", "info":
		return logger.InfoLevel, nil
	case "debug":
		return logger.DebugLevel, nil
	case "notice":
		return logger.NoticeLevel, nil
	case "error":
		return logger.ErrorLevel, nil
	}
	return 0, fmt.Errorf("invalid LOG_LEVEL value: %s", os.Getenv("LOG_LEVEL"))
}

// GetEnvLogColoring returns whether log coloring is enabled, default true
func GetEnvLogColoring() (bool, error) {
	val := os.Getenv("LOG_COLORING")
	if val == "" {
		return true, nil
	}
	coloring, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid LOG_COLORING value: %s", val)
	}
	return coloring, nil
}

// getEnvInt reads a positive integer environment variable with a default
func getEnvInt(key string, defaultValue int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %s", key, val)
	}
	return parsed, nil
}

// toEnvName converts a chain name to its environment variable prefix
func toEnvName(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
