package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/payflow-hq/payflow-engine/pkg/config"
)

// TxRequest is one transaction handed to the wallet for signing and
// submission. Fields are passed to the wallet exactly as given.
type TxRequest struct {
	To       string
	Data     string
	Value    string
	ChainID  int
	GasLimit string
}

// Receipt is a mined transaction receipt. Status follows the EVM
// convention: 1 for success, 0 for revert.
type Receipt struct {
	Status      uint64
	BlockNumber uint64
}

// ChainMetadata describes a chain for the wallet's add-chain request.
type ChainMetadata struct {
	ChainID        int
	Name           string
	NativeCurrency string
	RPCURLs        []string
	ExplorerURLs   []string
}

// MetadataForChain builds add-chain metadata from a configured chain.
func MetadataForChain(chain config.Chain) ChainMetadata {
	meta := ChainMetadata{
		ChainID:        chain.ID,
		Name:           chain.DisplayName,
		NativeCurrency: chain.NativeCurrency,
		RPCURLs:        []string{chain.RPCURL},
	}
	if chain.ExplorerURL != "" {
		meta.ExplorerURLs = []string{chain.ExplorerURL}
	}
	return meta
}

// WalletProvider is the signer the executor drives. Implementations wrap a
// wallet RPC surface; sends, switches and adds are requests the user may
// reject, which surfaces as an error.
type WalletProvider interface {
	// ChainID reports the chain the signer is currently connected to.
	ChainID(ctx context.Context) (int, error)
	// SwitchChain asks the wallet to move the signer to the given chain.
	SwitchChain(ctx context.Context, chainID int) error
	// AddChain registers a chain the wallet does not know yet.
	AddChain(ctx context.Context, meta ChainMetadata) error
	// SendTransaction signs and submits one transaction, returning its hash.
	SendTransaction(ctx context.Context, tx TxRequest) (string, error)
	// TransactionReceipt fetches the receipt for a hash. Both a missing
	// receipt and a transport failure surface as errors; callers poll.
	TransactionReceipt(ctx context.Context, txHash string) (*Receipt, error)
}

// CodeUnrecognizedChain is the wallet error code for a switch request
// naming a chain the wallet has not been told about.
const CodeUnrecognizedChain = 4902

// WalletError is a coded error from the wallet RPC surface.
type WalletError struct {
	Code    int
	Message string
}

func (e *WalletError) Error() string {
	return fmt.Sprintf("wallet error %d: %s", e.Code, e.Message)
}

// IsUnrecognizedChain reports whether err is the wallet's unrecognized
// chain rejection, which the executor answers with an add-chain request.
func IsUnrecognizedChain(err error) bool {
	var we *WalletError
	return errors.As(err, &we) && we.Code == CodeUnrecognizedChain
}
