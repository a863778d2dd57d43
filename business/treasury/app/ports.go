// Package app contains application services and port definitions for the treasury context.
package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/fd1az/treasury-bot/business/treasury/domain"
)

// EthClient is the subset of ethclient.Client the treasury core relies on.
// *ethclient.Client satisfies it; tests substitute an in-memory fake.
type EthClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Transferor executes a single value transfer through the submission core.
type Transferor interface {
	Transfer(ctx context.Context, req domain.TransferRequest) domain.TransferOutcome
}

// AccountReader exposes read-only views of the treasury account.
type AccountReader interface {
	// Address returns the canonical treasury address once the signing
	// identity has been derived; ok is false before first connection.
	Address() (common.Address, bool)

	// NonceValue returns the sequencer's next unused nonce, -1 when the
	// counter has not yet been synchronized with the network.
	NonceValue() int64

	// Balance reads the treasury balance from the active connection.
	Balance(ctx context.Context) (*big.Int, error)

	// AlternateBalance reads the balance through an independent one-off
	// connection to a different pool endpoint. Used for cross-validation.
	AlternateBalance(ctx context.Context) (*big.Int, error)
}
