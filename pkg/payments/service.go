package payments

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/payflow-hq/payflow-engine/pkg/balances"
	"github.com/payflow-hq/payflow-engine/pkg/config"
	"github.com/payflow-hq/payflow-engine/pkg/executor"
	"github.com/payflow-hq/payflow-engine/pkg/intent"
	"github.com/payflow-hq/payflow-engine/pkg/logger"
	"github.com/payflow-hq/payflow-engine/pkg/metrics"
	"github.com/payflow-hq/payflow-engine/pkg/models"
	"github.com/payflow-hq/payflow-engine/pkg/quote"
	"github.com/payflow-hq/payflow-engine/pkg/resolver"
	"github.com/payflow-hq/payflow-engine/pkg/store"
)

// Job is one payment request submitted to the pipeline. Invoice is optional;
// text-derived requests carry only the intent.
type Job struct {
	Invoice *models.Invoice
	Intent  models.PaymentIntent
	Signer  string
}

// Service drives payments end to end: reconcile the intent against current
// balances, resolve the recipient, fetch a quote, execute, and persist the
// record trail. Jobs are processed by a fixed worker pool.
type Service struct {
	cfg        *config.Config
	parser     Parser
	resolver   *resolver.Resolver
	balances   *balances.Aggregator
	quotes     *quote.Service
	reconciler *intent.Reconciler
	executor   *executor.Executor
	store      store.Store
	logger     logger.Logger

	jobs chan Job
	wg   sync.WaitGroup

	mu      sync.Mutex
	started bool
}

// NewService wires the pipeline from already-constructed components.
func NewService(
	cfg *config.Config,
	parser Parser,
	res *resolver.Resolver,
	agg *balances.Aggregator,
	quotes *quote.Service,
	exec *executor.Executor,
	st store.Store,
	log logger.Logger,
) *Service {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Service{
		cfg:        cfg,
		parser:     parser,
		resolver:   res,
		balances:   agg,
		quotes:     quotes,
		reconciler: intent.NewReconciler(log),
		executor:   exec,
		store:      st,
		logger:     log,
		jobs:       make(chan Job, cfg.WorkerCount*10),
	}
}

// Start launches the worker pool. Workers exit when the context is
// cancelled or Stop closes the queue.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("service already started")
	}
	s.started = true

	for i := 0; i < s.cfg.WorkerCount; i++ {
		go s.worker(ctx, i)
	}
	s.logger.Info("Started %d payment workers", s.cfg.WorkerCount)
	return nil
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	close(s.jobs)
	s.wg.Wait()
}

// SubmitText parses a free-text payment request and queues it. Unparseable
// requests are rejected before they reach the pipeline.
func (s *Service) SubmitText(ctx context.Context, text, signer string) error {
	if s.parser == nil {
		return fmt.Errorf("no parsing service configured")
	}
	it, err := s.parser.ParseText(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to parse request: %v", err)
	}
	if it.Unparseable() {
		return intent.ErrUnparseable
	}
	return s.Submit(Job{Intent: *it, Signer: signer})
}

// SubmitInvoice parses an uploaded invoice document, persists the invoice
// record and queues the payment.
func (s *Service) SubmitInvoice(ctx context.Context, userID, fileName, fileType string, data []byte, signer string) error {
	if s.parser == nil {
		return fmt.Errorf("no parsing service configured")
	}
	parsed, err := s.parser.ParseInvoice(ctx, fileName, fileType, data)
	if err != nil {
		return fmt.Errorf("failed to parse invoice: %v", err)
	}

	invoice := &models.Invoice{
		ID:          newID(),
		UserID:      userID,
		RawFileName: fileName,
		RawFileType: fileType,
		Parsed:      parsed,
		Status:      models.InvoiceParsed,
		CreatedAt:   time.Now(),
	}
	if err := s.store.CreateInvoice(ctx, invoice); err != nil {
		return fmt.Errorf("failed to persist invoice: %v", err)
	}

	it := parsed.Intent(fileName)
	if it.Unparseable() {
		s.updateInvoiceStatus(ctx, invoice, models.InvoiceFailed)
		return intent.ErrUnparseable
	}
	return s.Submit(Job{Invoice: invoice, Intent: it, Signer: signer})
}

// Submit queues a job. Fails when the service is not running or the queue
// is full rather than blocking the caller.
func (s *Service) Submit(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return fmt.Errorf("payment service is not running")
	}
	select {
	case s.jobs <- job:
		s.wg.Add(1)
		metrics.PendingPayments.Inc()
		return nil
	default:
		return fmt.Errorf("payment queue is full")
	}
}

// worker runs until the queue is closed. Jobs dequeued after the context is
// cancelled are dropped without processing so Stop always observes every
// queued job settled.
func (s *Service) worker(ctx context.Context, id int) {
	s.logger.Debug("Starting payment worker %d", id)
	for job := range s.jobs {
		metrics.PendingPayments.Dec()
		if ctx.Err() != nil {
			s.logger.Debug("Worker %d dropping queued job: shutting down", id)
			s.recordFailure(ctx, job)
			s.wg.Done()
			continue
		}
		if _, err := s.process(ctx, job); err != nil {
			s.logger.Error("Worker %d payment failed: %v", id, err)
		}
		s.wg.Done()
	}
	s.logger.Debug("Payment worker %d shutting down: queue closed", id)
}

// process runs one job through the full pipeline.
func (s *Service) process(ctx context.Context, job Job) (models.ExecutionState, error) {
	it := job.Intent

	sel, err := s.reconcile(ctx, &it, job.Signer)
	if err != nil {
		s.recordFailure(ctx, job)
		return models.ExecutionState{}, err
	}

	recipient, err := s.resolveRecipient(ctx, it.Recipient)
	if err != nil {
		s.recordFailure(ctx, job)
		return models.ExecutionState{}, err
	}

	destChainID := sel.DestinationChainID
	if destChainID == 0 {
		destChainID = sel.SourceChainID
	}
	destToken := it.Token
	if destToken == "" {
		destToken = sel.SourceToken
	}

	q, err := s.quotes.GetQuote(ctx, quote.Request{
		SourceChainID:      sel.SourceChainID,
		DestinationChainID: destChainID,
		SourceToken:        sel.SourceToken,
		DestinationToken:   destToken,
		Amount:             it.Amount,
		FromAddress:        job.Signer,
		Recipient:          recipient,
	})
	if err != nil {
		s.recordFailure(ctx, job)
		return models.ExecutionState{}, err
	}

	payment := &models.Payment{
		ID:         newID(),
		FromChain:  q.Source.ChainID,
		ToChain:    q.Destination.ChainID,
		FromToken:  q.Source.Token.Symbol,
		ToToken:    q.Destination.Token.Symbol,
		Amount:     q.Source.AmountRaw,
		Status:     models.PaymentPending,
		RouteLabel: q.RouteLabel,
		CreatedAt:  time.Now(),
	}
	if job.Invoice != nil {
		payment.InvoiceID = job.Invoice.ID
		s.updateInvoiceStatus(ctx, job.Invoice, models.InvoicePaying)
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		s.logger.Error("Failed to persist payment record: %v", err)
	}

	payment.Status = models.PaymentExecuting
	s.updatePayment(ctx, payment)

	chainLabel := strconv.Itoa(q.Source.ChainID)
	execStart := time.Now()
	state, err := s.executor.Execute(ctx, q, job.Signer, executor.Callbacks{
		OnState: func(st models.ExecutionState) {
			s.logger.DebugWithChain(q.Source.ChainID, "Execution state: %s", st.Status)
		},
		OnSuccess: func(txHash string) {
			s.logger.NoticeWithChain(q.Source.ChainID, "Payment %s settled: %s", payment.ID, txHash)
		},
	})

	metrics.PaymentProcessingTime.WithLabelValues(chainLabel).Observe(time.Since(execStart).Seconds())

	payment.TxHash = state.TxHash
	if err != nil {
		payment.Status = models.PaymentFailed
		s.updatePayment(ctx, payment)
		if job.Invoice != nil {
			s.updateInvoiceStatus(ctx, job.Invoice, models.InvoiceFailed)
		}
		metrics.PaymentsExecuted.WithLabelValues(chainLabel, "failed").Inc()
		return state, err
	}

	payment.Status = models.PaymentCompleted
	s.updatePayment(ctx, payment)
	if job.Invoice != nil {
		s.updateInvoiceStatus(ctx, job.Invoice, models.InvoicePaid)
	}
	metrics.PaymentsExecuted.WithLabelValues(chainLabel, "succeeded").Inc()
	return state, nil
}

// reconcile fetches the signer's balances and picks a funding source.
func (s *Service) reconcile(ctx context.Context, it *models.PaymentIntent, signer string) (intent.Selection, error) {
	chainIDs := make([]int, 0, len(s.cfg.Chains))
	for chainID := range s.cfg.Chains {
		chainIDs = append(chainIDs, chainID)
	}
	held := s.balances.GetBalances(ctx, signer, chainIDs)

	sel, err := s.reconciler.Reconcile(it, held)
	if err != nil {
		return intent.Selection{}, err
	}
	if sel.SourceChainID == 0 {
		return intent.Selection{}, fmt.Errorf("no balances available to fund the payment")
	}
	if sel.Fallback {
		s.logger.Info("No %s balance found, defaulting to %s on chain %d",
			it.Token, sel.SourceToken, sel.SourceChainID)
	}
	return sel, nil
}

// resolveRecipient turns the intent's recipient into a concrete address.
func (s *Service) resolveRecipient(ctx context.Context, input string) (string, error) {
	res := s.resolver.Resolve(ctx, input)
	if res.Status != resolver.StatusResolved {
		return "", fmt.Errorf("recipient %q could not be resolved to an address", input)
	}
	return res.Address, nil
}

func (s *Service) updatePayment(ctx context.Context, payment *models.Payment) {
	if err := s.store.UpdatePayment(ctx, payment); err != nil {
		s.logger.Error("Failed to update payment %s: %v", payment.ID, err)
	}
}

func (s *Service) updateInvoiceStatus(ctx context.Context, invoice *models.Invoice, status models.InvoiceStatus) {
	invoice.Status = status
	if err := s.store.UpdateInvoice(ctx, invoice); err != nil {
		s.logger.Error("Failed to update invoice %s: %v", invoice.ID, err)
	}
}

func (s *Service) recordFailure(ctx context.Context, job Job) {
	if job.Invoice == nil {
		return
	}
	s.updateInvoiceStatus(ctx, job.Invoice, models.InvoiceFailed)
}

// newID generates a random record identifier.
func newID() string {
	return uuid.NewString()
}
