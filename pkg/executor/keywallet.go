package executor

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/payflow-hq/payflow-engine/pkg/config"
	"github.com/payflow-hq/payflow-engine/pkg/logger"
)

// KeyWallet is a WalletProvider that signs with a locally held private key
// over per-chain RPC clients. Switching chains selects the client to use;
// adding a chain dials its RPC endpoint.
type KeyWallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
	logger  logger.Logger

	mu      sync.Mutex
	clients map[int]*ethclient.Client
	current int
}

var _ WalletProvider = (*KeyWallet)(nil)

// NewKeyWallet creates a wallet from a hex-encoded private key and dials
// every configured chain.
func NewKeyWallet(privateKeyHex string, chains map[int]config.Chain, log logger.Logger) (*KeyWallet, error) {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %v", err)
	}

	clients := make(map[int]*ethclient.Client)
	current := 0
	for chainID, chain := range chains {
		client, err := ethclient.Dial(chain.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to chain %d: %v", chainID, err)
		}
		clients[chainID] = client
		if current == 0 || chainID == 1 {
			current = chainID
		}
	}
	if current == 0 {
		return nil, fmt.Errorf("at least one chain is required")
	}

	return &KeyWallet{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		logger:  log,
		clients: clients,
		current: current,
	}, nil
}

// Address returns the signer address.
func (w *KeyWallet) Address() common.Address {
	return w.address
}

// ChainID reports the currently selected chain.
func (w *KeyWallet) ChainID(_ context.Context) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current, nil
}

// SwitchChain selects the client for the given chain. Unknown chains fail
// with the unrecognized-chain code so callers can add them first.
func (w *KeyWallet) SwitchChain(_ context.Context, chainID int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.clients[chainID]; !ok {
		return &WalletError{
			Code:    CodeUnrecognizedChain,
			Message: fmt.Sprintf("chain %d has not been added", chainID),
		}
	}
	w.current = chainID
	return nil
}

// AddChain dials the chain's RPC endpoint and registers the client.
func (w *KeyWallet) AddChain(_ context.Context, meta ChainMetadata) error {
	if len(meta.RPCURLs) == 0 {
		return fmt.Errorf("chain %d has no RPC URL", meta.ChainID)
	}
	client, err := ethclient.Dial(meta.RPCURLs[0])
	if err != nil {
		return fmt.Errorf("failed to connect to chain %d: %v", meta.ChainID, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[meta.ChainID] = client
	w.logger.Info("Added chain %d (%s)", meta.ChainID, meta.Name)
	return nil
}

// SendTransaction signs and submits one transaction on its chain.
func (w *KeyWallet) SendTransaction(ctx context.Context, req TxRequest) (string, error) {
	client, err := w.clientFor(req.ChainID)
	if err != nil {
		return "", err
	}

	nonce, err := client.PendingNonceAt(ctx, w.address)
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %v", err)
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get gas price: %v", err)
	}

	to := common.HexToAddress(req.To)
	value, err := parseQuantity(req.Value)
	if err != nil {
		return "", fmt.Errorf("invalid transaction value %q: %v", req.Value, err)
	}

	var data []byte
	if req.Data != "" && req.Data != "0x" {
		data, err = hexutil.Decode(req.Data)
		if err != nil {
			return "", fmt.Errorf("invalid transaction data: %v", err)
		}
	}

	var gasLimit uint64
	if req.GasLimit != "" {
		limit, err := parseQuantity(req.GasLimit)
		if err != nil {
			return "", fmt.Errorf("invalid gas limit %q: %v", req.GasLimit, err)
		}
		gasLimit = limit.Uint64()
	} else {
		gasLimit, err = client.EstimateGas(ctx, ethereum.CallMsg{
			From:  w.address,
			To:    &to,
			Value: value,
			Data:  data,
		})
		if err != nil {
			return "", fmt.Errorf("failed to estimate gas: %v", err)
		}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
	signer := types.LatestSignerForChainID(big.NewInt(int64(req.ChainID)))
	signed, err := types.SignTx(tx, signer, w.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %v", err)
	}

	if err := client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("failed to send transaction: %v", err)
	}
	return signed.Hash().Hex(), nil
}

// TransactionReceipt fetches the receipt on the currently selected chain.
// A pending transaction surfaces as an error, which pollers retry.
func (w *KeyWallet) TransactionReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	w.mu.Lock()
	client := w.clients[w.current]
	w.mu.Unlock()

	receipt, err := client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		return nil, err
	}
	return &Receipt{
		Status:      receipt.Status,
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

func (w *KeyWallet) clientFor(chainID int) (*ethclient.Client, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	client, ok := w.clients[chainID]
	if !ok {
		return nil, fmt.Errorf("no client for chain %d", chainID)
	}
	return client, nil
}

// parseQuantity parses a hex or decimal integer string. Empty and "0x"
// parse as zero.
func parseQuantity(s string) (*big.Int, error) {
	if s == "" || s == "0x" {
		return big.NewInt(0), nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return hexutil.DecodeBig(s)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("not a valid integer")
	}
	return v, nil
}
