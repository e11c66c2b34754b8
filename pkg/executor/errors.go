package executor

import (
	"errors"
	"fmt"
)

// Step names the execution phase an error occurred in.
type Step string

const (
	StepChainSwitch  Step = "chain_switch"
	StepApproval     Step = "approval"
	StepSubmission   Step = "submission"
	StepConfirmation Step = "confirmation"
)

// ErrConfirmationTimedOut marks a confirmation poll loop that outlived the
// configured timeout without finding a receipt.
var ErrConfirmationTimedOut = errors.New("confirmation timed out")

// ErrAttemptInProgress marks a second attempt requested while the signer
// already has one in flight.
var ErrAttemptInProgress = errors.New("an execution attempt is already in progress for this signer")

// StepError is an execution failure classified by phase. TxHash is set when
// a transaction was submitted before the failure, so reverted and stalled
// transactions stay auditable.
type StepError struct {
	Step     Step
	TxHash   string
	Reverted bool
	Err      error
}

func (e *StepError) Error() string {
	if e.TxHash != "" {
		return fmt.Sprintf("%s failed (tx %s): %v", e.Step, e.TxHash, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func newStepError(step Step, err error) *StepError {
	return &StepError{Step: step, Err: err}
}

// IsReverted reports whether err is a mined-but-reverted transaction.
func IsReverted(err error) bool {
	var se *StepError
	return errors.As(err, &se) && se.Reverted
}
