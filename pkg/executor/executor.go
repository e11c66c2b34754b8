package executor

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/payflow-hq/payflow-engine/pkg/config"
	"github.com/payflow-hq/payflow-engine/pkg/logger"
	"github.com/payflow-hq/payflow-engine/pkg/metrics"
	"github.com/payflow-hq/payflow-engine/pkg/models"
)

// DefaultSuccessGrace is how long the executor waits after confirmation
// before firing the success callback, so balance reads observe the new state.
const DefaultSuccessGrace = 2 * time.Second

// AllowanceReader reads the current ERC-20 allowance on a chain.
type AllowanceReader interface {
	Allowance(ctx context.Context, chainID int, token, owner, spender string) (*big.Int, error)
}

// Callbacks receive state transitions and the post-confirmation success
// signal for one attempt.
type Callbacks struct {
	OnState   func(models.ExecutionState)
	OnSuccess func(txHash string)
}

// Executor drives one payment attempt through chain switching, approval,
// submission and confirmation polling. It owns the attempt's ExecutionState
// and allows at most one in-flight attempt per signer.
type Executor struct {
	wallet         WalletProvider
	allowances     AllowanceReader
	chains         map[int]config.Chain
	pollInterval   time.Duration
	confirmTimeout time.Duration
	successGrace   time.Duration
	logger         logger.Logger

	mu     sync.Mutex
	active map[string]bool
}

// New creates an executor. A zero confirmTimeout polls until the context is
// cancelled.
func New(
	wallet WalletProvider,
	allowances AllowanceReader,
	chains map[int]config.Chain,
	pollInterval time.Duration,
	confirmTimeout time.Duration,
	log logger.Logger,
) *Executor {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	if pollInterval <= 0 {
		pollInterval = config.DefaultReceiptPollInterval * time.Second
	}
	return &Executor{
		wallet:         wallet,
		allowances:     allowances,
		chains:         chains,
		pollInterval:   pollInterval,
		confirmTimeout: confirmTimeout,
		successGrace:   DefaultSuccessGrace,
		logger:         log,
	}
}

// Execute runs one attempt for a quote. It returns the terminal state; the
// error is non-nil exactly when the terminal status is Failed. A second call
// for the same signer while an attempt is in flight fails immediately with
// ErrAttemptInProgress and publishes no state.
func (e *Executor) Execute(ctx context.Context, quote *models.Quote, signer string, cb Callbacks) (models.ExecutionState, error) {
	e.mu.Lock()
	if e.active == nil {
		e.active = make(map[string]bool)
	}
	if e.active[signer] {
		e.mu.Unlock()
		return models.ExecutionState{}, ErrAttemptInProgress
	}
	e.active[signer] = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.active, signer)
		e.mu.Unlock()
	}()

	state := models.ExecutionState{Status: models.StatusIdle}
	publish := func() {
		if cb.OnState != nil {
			cb.OnState(state)
		}
	}
	fail := func(err *StepError) (models.ExecutionState, error) {
		state.Status = models.StatusFailed
		state.Error = err
		publish()
		metrics.ExecutionErrors.WithLabelValues(strconv.Itoa(quote.Source.ChainID), string(err.Step)).Inc()
		return state, err
	}

	// Chain switch phase. Skipped entirely when the signer is already on
	// the source chain.
	state.Status = models.StatusSwitchingChain
	publish()
	if err := e.ensureChain(ctx, quote.Source.ChainID); err != nil {
		return fail(newStepError(StepChainSwitch, err))
	}

	// Approval phase. Native source tokens and sufficient allowances skip
	// straight to submission.
	needed, err := e.needsApproval(ctx, quote, signer)
	if err != nil {
		return fail(newStepError(StepApproval, err))
	}
	if needed {
		state.Status = models.StatusApproving
		publish()
		approveHash, err := e.sendApproval(ctx, quote)
		if err != nil {
			return fail(newStepError(StepApproval, err))
		}
		e.logger.InfoWithChain(quote.Source.ChainID, "Approval submitted: %s", approveHash)

		state.Status = models.StatusAwaitingApprovalConfirmation
		publish()
		receipt, err := e.awaitReceipt(ctx, quote.Source.ChainID, approveHash)
		if err != nil {
			return fail(&StepError{Step: StepApproval, TxHash: approveHash, Err: err})
		}
		if receipt.Status == 0 {
			return fail(&StepError{
				Step:     StepApproval,
				TxHash:   approveHash,
				Reverted: true,
				Err:      fmt.Errorf("approval transaction reverted"),
			})
		}
	}

	// Submission phase. The payload is forwarded exactly as quoted and the
	// hash recorded before any confirmation work.
	state.Status = models.StatusSubmitting
	publish()
	txHash, err := e.wallet.SendTransaction(ctx, TxRequest{
		To:       quote.ExecutionPayload.To,
		Data:     quote.ExecutionPayload.Data,
		Value:    quote.ExecutionPayload.Value,
		ChainID:  quote.ExecutionPayload.ChainID,
		GasLimit: quote.ExecutionPayload.GasLimit,
	})
	if err != nil {
		return fail(newStepError(StepSubmission, err))
	}
	state.TxHash = txHash
	e.logger.InfoWithChain(quote.Source.ChainID, "Payment submitted: %s", txHash)

	state.Status = models.StatusAwaitingConfirmation
	publish()
	receipt, err := e.awaitReceipt(ctx, quote.Source.ChainID, txHash)
	if err != nil {
		return fail(&StepError{Step: StepConfirmation, TxHash: txHash, Err: err})
	}
	if receipt.Status == 0 {
		return fail(&StepError{
			Step:     StepConfirmation,
			TxHash:   txHash,
			Reverted: true,
			Err:      fmt.Errorf("transaction reverted"),
		})
	}

	state.Status = models.StatusSucceeded
	publish()
	e.logger.NoticeWithChain(quote.Source.ChainID, "Payment confirmed: %s", txHash)

	if cb.OnSuccess != nil {
		grace := time.NewTimer(e.successGrace)
		select {
		case <-ctx.Done():
			grace.Stop()
		case <-grace.C:
			cb.OnSuccess(txHash)
		}
	}
	return state, nil
}

// ensureChain moves the signer to the target chain if needed. An
// unrecognized chain rejection triggers one add-chain request followed by a
// single switch retry.
func (e *Executor) ensureChain(ctx context.Context, chainID int) error {
	current, err := e.wallet.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to read signer chain: %v", err)
	}
	if current == chainID {
		return nil
	}

	err = e.wallet.SwitchChain(ctx, chainID)
	if err == nil {
		return nil
	}
	if !IsUnrecognizedChain(err) {
		return err
	}

	chain, ok := e.chains[chainID]
	if !ok {
		return fmt.Errorf("chain %d is not configured", chainID)
	}
	if err := e.wallet.AddChain(ctx, MetadataForChain(chain)); err != nil {
		return fmt.Errorf("failed to add chain %d: %v", chainID, err)
	}
	return e.wallet.SwitchChain(ctx, chainID)
}

// needsApproval reports whether the quoted transfer requires an ERC-20
// approval first.
func (e *Executor) needsApproval(ctx context.Context, quote *models.Quote, signer string) (bool, error) {
	if quote.Source.Token.Address == models.NativeTokenAddress {
		return false, nil
	}
	if quote.ApprovalTarget == "" {
		return false, nil
	}

	required, ok := new(big.Int).SetString(quote.Source.AmountRaw, 10)
	if !ok {
		return false, fmt.Errorf("invalid source amount: %s", quote.Source.AmountRaw)
	}
	allowance, err := e.allowances.Allowance(
		ctx, quote.Source.ChainID, quote.Source.Token.Address, signer, quote.ApprovalTarget)
	if err != nil {
		return false, fmt.Errorf("failed to read allowance: %v", err)
	}
	return allowance.Cmp(required) < 0, nil
}

// sendApproval submits an unlimited approve for the quote's source token.
func (e *Executor) sendApproval(ctx context.Context, quote *models.Quote) (string, error) {
	parsedABI, err := abi.JSON(strings.NewReader(approveABI))
	if err != nil {
		return "", fmt.Errorf("failed to parse approve ABI: %v", err)
	}
	data, err := parsedABI.Pack("approve", common.HexToAddress(quote.ApprovalTarget), maxUint256())
	if err != nil {
		return "", fmt.Errorf("failed to encode approve call: %v", err)
	}

	hash, err := e.wallet.SendTransaction(ctx, TxRequest{
		To:      quote.Source.Token.Address,
		Data:    hexutil.Encode(data),
		Value:   "0",
		ChainID: quote.Source.ChainID,
	})
	if err != nil {
		return "", err
	}
	metrics.ApprovalsSent.WithLabelValues(strconv.Itoa(quote.Source.ChainID)).Inc()
	return hash, nil
}

// awaitReceipt polls until a receipt appears, the context is cancelled, or
// the configured timeout elapses. Missing receipts and transport failures
// are treated identically: keep polling.
func (e *Executor) awaitReceipt(ctx context.Context, chainID int, txHash string) (*Receipt, error) {
	var deadline <-chan time.Time
	if e.confirmTimeout > 0 {
		timer := time.NewTimer(e.confirmTimeout)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	chainLabel := strconv.Itoa(chainID)
	for {
		metrics.ReceiptPolls.WithLabelValues(chainLabel).Inc()
		receipt, err := e.wallet.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil {
			e.logger.Debug("Receipt poll for %s: %v", txHash, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, ErrConfirmationTimedOut
		case <-ticker.C:
		}
	}
}

// approveABI holds only the ERC-20 approve method.
const approveABI = `[{
	"constant": false,
	"inputs": [
		{"name": "spender", "type": "address"},
		{"name": "amount", "type": "uint256"}
	],
	"name": "approve",
	"outputs": [{"name": "", "type": "bool"}],
	"type": "function"
}]`

// maxUint256 returns 2^256 - 1, the unlimited approval amount.
func maxUint256() *big.Int {
	return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
}
