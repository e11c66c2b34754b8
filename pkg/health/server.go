// Package health serves health, readiness, chain status and metrics
// endpoints.
package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/payflow-hq/payflow-engine/pkg/balances"
	"github.com/payflow-hq/payflow-engine/pkg/circuitbreaker"
	"github.com/payflow-hq/payflow-engine/pkg/config"
	"github.com/payflow-hq/payflow-engine/pkg/logger"
)

// Server is the health check HTTP server.
type Server struct {
	port            string
	chains          map[int]config.Chain
	aggregator      *balances.Aggregator
	circuitBreakers map[int]*circuitbreaker.CircuitBreaker
	metricsAPIKey   string
	logger          logger.Logger
}

// NewServer creates a health check server. The metrics endpoint is guarded
// by METRICS_API_KEY when set.
func NewServer(
	port string,
	chains map[int]config.Chain,
	agg *balances.Aggregator,
	circuitBreakers map[int]*circuitbreaker.CircuitBreaker,
	log logger.Logger,
) *Server {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Server{
		port:            port,
		chains:          chains,
		aggregator:      agg,
		circuitBreakers: circuitBreakers,
		metricsAPIKey:   os.Getenv("METRICS_API_KEY"),
		logger:          log,
	}
}

// metricsAuthMiddleware is a middleware that checks for a valid API key
func (s *Server) metricsAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth if no API key is configured
		if s.metricsAPIKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
			return
		}

		if parts[1] != s.metricsAPIKey {
			http.Error(w, "Invalid API key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Start starts the health check server. Blocks until the listener fails.
func (s *Server) Start() {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Readiness: every configured chain must have a reachable reader.
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		for chainID := range s.chains {
			reader, ok := s.aggregator.Reader(chainID)
			if !ok {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(fmt.Sprintf("Chain %d client not connected", chainID)))
				return
			}
			if _, err := reader.BlockNumber(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(fmt.Sprintf("Chain %d not reachable: %v", chainID, err)))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Ready"))
	})

	// Chain status endpoint
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		status := make(map[string]interface{})

		for chainID, chain := range s.chains {
			circuitStatus := "closed"
			if cb, ok := s.circuitBreakers[chainID]; ok && cb.IsOpen() {
				circuitStatus = "open"
			}

			reader, connected := s.aggregator.Reader(chainID)
			chainStatus := map[string]interface{}{
				"name":      chain.Name,
				"rpc_url":   chain.RPCURL,
				"connected": connected,
				"circuit":   circuitStatus,
			}
			if connected {
				if blockNumber, err := reader.BlockNumber(r.Context()); err == nil {
					chainStatus["latest_block"] = blockNumber
				}
			}

			status[fmt.Sprintf("chain_%d", chainID)] = chainStatus
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			s.logger.Error("Error encoding status JSON: %v", err)
		}
	})

	// Circuit breaker admin control endpoint
	mux.HandleFunc("/circuit/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		chainIDStr := r.URL.Query().Get("chain")
		if chainIDStr == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("Missing chain parameter"))
			return
		}

		chainID, err := strconv.Atoi(chainIDStr)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("Invalid chain ID"))
			return
		}

		cb, ok := s.circuitBreakers[chainID]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(fmt.Sprintf("No circuit breaker for chain %d", chainID)))
			return
		}

		cb.Reset()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(fmt.Sprintf("Circuit breaker for chain %d reset", chainID)))
	})

	// Expose Prometheus metrics with API key authentication
	mux.Handle("/metrics", s.metricsAuthMiddleware(promhttp.Handler()))

	s.logger.Info("Starting health and metrics server on port %s", s.port)
	if err := http.ListenAndServe(":"+s.port, mux); err != nil {
		s.logger.Error("Health server error: %v", err)
	}
}
