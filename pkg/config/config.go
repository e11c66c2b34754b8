package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/payflow-hq/payflow-engine/pkg/logger"
)

// Config holds the configuration for the payment engine
type Config struct {
	Chains          map[int]Chain
	Tokens          *Tokens
	PrivateKey      string
	WorkerCount     int
	MetricsPort     string
	QuoteEndpoint   string
	QuoteIntegrator string
	ParserEndpoint  string
	ReceiptPoll     time.Duration
	ConfirmTimeout  time.Duration
	ResolveDebounce time.Duration
	QuoteDebounce   time.Duration
	PriceCacheTTL   time.Duration
	CircuitBreaker  CircuitBreakerConfig
	LoggerConfig    LoggerConfig
}

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled        bool
	Threshold      int
	WindowDuration time.Duration
	ResetTimeout   time.Duration
}

// LoggerConfig holds the configuration for logging
type LoggerConfig struct {
	Level    logger.Level
	Coloring bool
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	chains, err := GetEnvChains()
	if err != nil {
		return nil, err
	}

	privateKey, err := GetEnvPrivateKey()
	if err != nil {
		return nil, err
	}

	workerCount, err := GetEnvWorkerCount()
	if err != nil {
		return nil, err
	}

	metricsPort, err := GetEnvMetricsPort()
	if err != nil {
		return nil, err
	}

	quoteEndpoint, err := GetEnvQuoteEndpoint()
	if err != nil {
		return nil, err
	}

	parserEndpoint, err := GetEnvParserEndpoint()
	if err != nil {
		return nil, err
	}

	receiptPoll, err := GetEnvReceiptPollInterval()
	if err != nil {
		return nil, err
	}

	confirmTimeout, err := GetEnvConfirmTimeout()
	if err != nil {
		return nil, err
	}

	resolveDebounce, err := GetEnvResolveDebounce()
	if err != nil {
		return nil, err
	}

	quoteDebounce, err := GetEnvQuoteDebounce()
	if err != nil {
		return nil, err
	}

	priceCacheTTL, err := GetEnvPriceCacheTTL()
	if err != nil {
		return nil, err
	}

	cbEnabled, err := GetEnvCircuitBreakerEnabled()
	if err != nil {
		return nil, err
	}

	cbThreshold, err := GetEnvCircuitBreakerThreshold()
	if err != nil {
		return nil, err
	}

	cbWindow, err := GetEnvCircuitBreakerWindow()
	if err != nil {
		return nil, err
	}

	cbReset, err := GetEnvCircuitBreakerReset()
	if err != nil {
		return nil, err
	}

	logLevel, err := GetEnvLogLevel()
	if err != nil {
		return nil, err
	}

	logColoring, err := GetEnvLogColoring()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Chains:          chains,
		Tokens:          DefaultTokens(),
		PrivateKey:      privateKey,
		WorkerCount:     workerCount,
		MetricsPort:     metricsPort,
		QuoteEndpoint:   quoteEndpoint,
		QuoteIntegrator: GetEnvQuoteIntegrator(),
		ParserEndpoint:  parserEndpoint,
		ReceiptPoll:     receiptPoll,
		ConfirmTimeout:  confirmTimeout,
		ResolveDebounce: resolveDebounce,
		QuoteDebounce:   quoteDebounce,
		PriceCacheTTL:   priceCacheTTL,
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:        cbEnabled,
			Threshold:      cbThreshold,
			WindowDuration: cbWindow,
			ResetTimeout:   cbReset,
		},
		LoggerConfig: LoggerConfig{
			Level:    logLevel,
			Coloring: logColoring,
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if len(cfg.Chains) == 0 {
		return fmt.Errorf("at least one chain configuration is required")
	}
	for chainID, chain := range cfg.Chains {
		if chain.RPCURL == "" {
			return fmt.Errorf("RPC URL for chain %d is required", chainID)
		}
	}
	if cfg.WorkerCount <= 0 {
		return fmt.Errorf("worker count must be positive")
	}
	if cfg.ReceiptPoll <= 0 {
		return fmt.Errorf("receipt poll interval must be positive")
	}
	return nil
}
