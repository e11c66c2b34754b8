package intent

import (
	"errors"
	"strings"

	"github.com/payflow-hq/payflow-engine/pkg/config"
	"github.com/payflow-hq/payflow-engine/pkg/logger"
	"github.com/payflow-hq/payflow-engine/pkg/models"
)

// ErrUnparseable marks an intent with amount, token and recipient all
// missing. Such intents never reach reconciliation.
var ErrUnparseable = errors.New("intent has no amount, token or recipient")

// Selection is a pre-selected funding source for a form. It is a
// suggestion, never authoritative; the caller may override every field.
type Selection struct {
	SourceChainID      int
	SourceToken        string
	DestinationChainID int
	// Fallback is set when no balance matched the intent's token and the
	// first available balance was chosen instead.
	Fallback bool
}

// Reconciler combines a parsed intent with the caller's current balances to
// pick a funding source.
type Reconciler struct {
	logger logger.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(log logger.Logger) *Reconciler {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Reconciler{logger: log}
}

// Reconcile picks a source chain and token for the intent. Preference
// order: a balance on the intent's source chain matching its token, then a
// matching token on any chain, then the first available balance. With no
// balances at all the zero Selection is returned. Destination chain names
// map through the alias table; unknown names are ignored.
func (r *Reconciler) Reconcile(it *models.PaymentIntent, balances []models.TokenBalance) (Selection, error) {
	if it.Unparseable() {
		return Selection{}, ErrUnparseable
	}

	var sel Selection

	if it.DestinationChain != "" {
		if chainID, ok := config.ChainIDByName(it.DestinationChain); ok {
			sel.DestinationChainID = chainID
		} else {
			r.logger.Debug("Ignoring unknown destination chain %q", it.DestinationChain)
		}
	}

	if len(balances) == 0 {
		return sel, nil
	}

	token := strings.ToUpper(it.Token)
	sourceChainID := 0
	if it.SourceChain != "" {
		if chainID, ok := config.ChainIDByName(it.SourceChain); ok {
			sourceChainID = chainID
		}
	}

	if token != "" && sourceChainID != 0 {
		for _, b := range balances {
			if b.ChainID == sourceChainID && strings.EqualFold(b.Symbol, token) {
				sel.SourceChainID = b.ChainID
				sel.SourceToken = b.Symbol
				return sel, nil
			}
		}
	}

	if token != "" {
		for _, b := range balances {
			if strings.EqualFold(b.Symbol, token) {
				sel.SourceChainID = b.ChainID
				sel.SourceToken = b.Symbol
				return sel, nil
			}
		}
	}

	sel.SourceChainID = balances[0].ChainID
	sel.SourceToken = balances[0].Symbol
	sel.Fallback = true
	return sel, nil
}
