package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for monitoring
var (
	PaymentsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payflow_payments_executed_total",
		Help: "The total number of executed payments",
	}, []string{"chain_id", "status"})

	PaymentProcessingTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payflow_payment_processing_seconds",
		Help:    "Time taken to drive a payment from intent to terminal state",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10), // Start at 1s with 10 buckets doubling in size
	}, []string{"chain_id"})

	QuoteRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payflow_quote_requests_total",
		Help: "Quote requests by outcome",
	}, []string{"outcome"})

	QuoteLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payflow_quote_latency_seconds",
		Help:    "Routing provider quote latency",
		Buckets: prometheus.DefBuckets,
	})

	BalanceFetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payflow_balance_fetch_failures_total",
		Help: "Per-chain balance sub-fetch failures",
	}, []string{"chain_id"})

	BalancesReturned = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "payflow_balances_returned",
		Help: "Number of non-zero balances in the latest aggregation",
	})

	NameResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payflow_name_resolutions_total",
		Help: "Name resolutions by outcome",
	}, []string{"outcome"})

	ReceiptPolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payflow_receipt_polls_total",
		Help: "Receipt polls issued while awaiting confirmations",
	}, []string{"chain_id"})

	ExecutionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payflow_execution_errors_total",
		Help: "Execution failures by step",
	}, []string{"chain_id", "step"})

	ApprovalsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payflow_approvals_sent_total",
		Help: "ERC-20 approval transactions sent",
	}, []string{"chain_id"})

	PendingPayments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "payflow_pending_payments",
		Help: "The number of submitted payments waiting to be processed",
	})
)
