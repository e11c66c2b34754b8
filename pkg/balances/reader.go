package balances

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ChainReader is the per-chain RPC read surface the engine depends on.
// One reader serves one chain.
type ChainReader interface {
	// NativeBalance returns the owner's native-currency balance.
	NativeBalance(ctx context.Context, owner string) (*big.Int, error)

	// TokenBalances returns the owner's balance for each token contract, in
	// input order. A failed individual read yields a zero entry.
	TokenBalances(ctx context.Context, owner string, tokens []string) ([]*big.Int, error)

	// Allowance returns the amount the spender may move on the owner's
	// behalf for the given token contract.
	Allowance(ctx context.Context, token, owner, spender string) (*big.Int, error)

	// BlockNumber returns the chain's latest block number. Used by
	// readiness probes.
	BlockNumber(ctx context.Context) (uint64, error)
}

// EthReader is a ChainReader over an ethclient connection.
type EthReader struct {
	chainID int
	client  *ethclient.Client
}

var _ ChainReader = (*EthReader)(nil)

// NewEthReader connects to a chain RPC endpoint.
func NewEthReader(chainID int, rpcURL string) (*EthReader, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain %d: %v", chainID, err)
	}
	return &EthReader{chainID: chainID, client: client}, nil
}

// NativeBalance returns the owner's native balance via eth_getBalance.
func (r *EthReader) NativeBalance(ctx context.Context, owner string) (*big.Int, error) {
	balance, err := r.client.BalanceAt(ctx, common.HexToAddress(owner), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get native balance on chain %d: %v", r.chainID, err)
	}
	return balance, nil
}

// TokenBalances reads balanceOf for each token contract.
func (r *EthReader) TokenBalances(ctx context.Context, owner string, tokens []string) ([]*big.Int, error) {
	erc20ABI, err := getERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("failed to get ERC20 ABI: %v", err)
	}

	ownerAddr := common.HexToAddress(owner)
	results := make([]*big.Int, len(tokens))
	for i, token := range tokens {
		contract := bind.NewBoundContract(
			common.HexToAddress(token),
			erc20ABI,
			r.client,
			r.client,
			r.client,
		)

		var out []interface{}
		callOpts := &bind.CallOpts{Context: ctx}
		if err := contract.Call(callOpts, &out, "balanceOf", ownerAddr); err != nil {
			// One failed contract read must not sink the chain's sub-fetch
			results[i] = big.NewInt(0)
			continue
		}
		balance, ok := out[0].(*big.Int)
		if !ok || balance == nil {
			results[i] = big.NewInt(0)
			continue
		}
		results[i] = balance
	}
	return results, nil
}

// Allowance reads the ERC-20 allowance granted by owner to spender.
func (r *EthReader) Allowance(ctx context.Context, token, owner, spender string) (*big.Int, error) {
	erc20ABI, err := getERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("failed to get ERC20 ABI: %v", err)
	}

	contract := bind.NewBoundContract(
		common.HexToAddress(token),
		erc20ABI,
		r.client,
		r.client,
		r.client,
	)

	callOpts := &bind.CallOpts{Context: ctx}
	var out []interface{}
	if err := contract.Call(callOpts, &out, "allowance", common.HexToAddress(owner), common.HexToAddress(spender)); err != nil {
		return nil, fmt.Errorf("failed to check allowance: %v", err)
	}
	if len(out) == 0 || out[0] == nil {
		return nil, fmt.Errorf("empty result from allowance call")
	}
	allowance, ok := out[0].(*big.Int)
	if !ok || allowance == nil {
		return nil, fmt.Errorf("invalid allowance result type")
	}
	return allowance, nil
}

// BlockNumber returns the latest block number.
func (r *EthReader) BlockNumber(ctx context.Context) (uint64, error) {
	return r.client.BlockNumber(ctx)
}

// getERC20ABI returns the minimal ERC-20 read ABI.
func getERC20ABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(`[
		{
			"constant": true,
			"inputs": [
				{
					"name": "_owner",
					"type": "address"
				}
			],
			"name": "balanceOf",
			"outputs": [
				{
					"name": "",
					"type": "uint256"
				}
			],
			"payable": false,
			"stateMutability": "view",
			"type": "function"
		},
		{
			"constant": true,
			"inputs": [
				{
					"name": "_owner",
					"type": "address"
				},
				{
					"name": "_spender",
					"type": "address"
				}
			],
			"name": "allowance",
			"outputs": [
				{
					"name": "",
					"type": "uint256"
				}
			],
			"payable": false,
			"stateMutability": "view",
			"type": "function"
		}
	]`))
}
