package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/payflow-hq/payflow-engine/pkg/balances"
	"github.com/payflow-hq/payflow-engine/pkg/circuitbreaker"
	"github.com/payflow-hq/payflow-engine/pkg/config"
	"github.com/payflow-hq/payflow-engine/pkg/executor"
	"github.com/payflow-hq/payflow-engine/pkg/health"
	"github.com/payflow-hq/payflow-engine/pkg/logger"
	"github.com/payflow-hq/payflow-engine/pkg/payments"
	"github.com/payflow-hq/payflow-engine/pkg/prices"
	"github.com/payflow-hq/payflow-engine/pkg/quote"
	"github.com/payflow-hq/payflow-engine/pkg/resolver"
	"github.com/payflow-hq/payflow-engine/pkg/store"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg := logger.NewStdLogger(cfg.LoggerConfig.Coloring, cfg.LoggerConfig.Level)

	// Set up context with cancellation on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect a balance reader per chain
	readers := make(map[int]balances.ChainReader)
	for chainID, chain := range cfg.Chains {
		reader, err := balances.NewEthReader(chainID, chain.RPCURL)
		if err != nil {
			log.Fatalf("Failed to connect to chain %d: %v", chainID, err)
		}
		readers[chainID] = reader
	}

	// One circuit breaker per chain
	breakers := make(map[int]*circuitbreaker.CircuitBreaker)
	for chainID := range cfg.Chains {
		breakers[chainID] = circuitbreaker.NewCircuitBreaker(
			cfg.CircuitBreaker.Enabled,
			cfg.CircuitBreaker.Threshold,
			cfg.CircuitBreaker.WindowDuration,
			cfg.CircuitBreaker.ResetTimeout,
			lg,
		)
	}

	priceService := prices.NewService("", cfg.PriceCacheTTL, lg)
	aggregator := balances.NewAggregator(cfg.Chains, cfg.Tokens, readers, breakers, priceService, lg)

	names := resolver.NewENSClient("")
	addressResolver := resolver.New(names, cfg.ResolveDebounce, lg)

	routeProvider := quote.NewHTTPProvider(cfg.QuoteEndpoint, cfg.QuoteIntegrator, lg)
	quoteService := quote.NewService(routeProvider, cfg.Tokens, cfg.QuoteDebounce, lg)

	wallet, err := executor.NewKeyWallet(cfg.PrivateKey, cfg.Chains, lg)
	if err != nil {
		log.Fatalf("Failed to create wallet: %v", err)
	}
	exec := executor.New(wallet, aggregator, cfg.Chains, cfg.ReceiptPoll, cfg.ConfirmTimeout, lg)

	var parser payments.Parser
	if cfg.ParserEndpoint != "" {
		parser = payments.NewHTTPParser(cfg.ParserEndpoint, lg)
	}

	recordStore := store.NewMemoryStore()
	service := payments.NewService(cfg, parser, addressResolver, aggregator, quoteService, exec, recordStore, lg)

	// Health, readiness and metrics server
	healthServer := health.NewServer(cfg.MetricsPort, cfg.Chains, aggregator, breakers, lg)
	go healthServer.Start()

	// Set up signal handling for graceful shutdown
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		lg.Notice("Received termination signal, shutting down gracefully...")
		cancel()
	}()

	lg.Info("Starting the payment engine...")
	if err := service.Start(ctx); err != nil {
		log.Fatalf("Failed to start payment service: %v", err)
	}

	<-ctx.Done()
	service.Stop()
}
