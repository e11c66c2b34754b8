package models

// ExecutionStatus is the state tag of one payment execution attempt.
type ExecutionStatus string

const (
	StatusIdle                         ExecutionStatus = "idle"
	StatusSwitchingChain               ExecutionStatus = "switching_chain"
	StatusApproving                    ExecutionStatus = "approving"
	StatusAwaitingApprovalConfirmation ExecutionStatus = "awaiting_approval_confirmation"
	StatusSubmitting                   ExecutionStatus = "submitting"
	StatusAwaitingConfirmation         ExecutionStatus = "awaiting_confirmation"
	StatusSucceeded                    ExecutionStatus = "succeeded"
	StatusFailed                       ExecutionStatus = "failed"
)

// Terminal reports whether the status is final. A new attempt requires a
// fresh ExecutionState starting at idle.
func (s ExecutionStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// ExecutionState is the mutable per-attempt record owned by the executor
// for the duration of one attempt and published outward on transitions.
type ExecutionState struct {
	Status ExecutionStatus `json:"status"`
	TxHash string          `json:"tx_hash,omitempty"`
	Error  error           `json:"-"`
}
