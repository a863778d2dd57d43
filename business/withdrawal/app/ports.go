// Package app contains application services and port definitions for the withdrawal context.
package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/treasury-bot/business/withdrawal/domain"
)

// Request is one caller-supplied withdrawal.
type Request struct {
	Variant domain.Variant
	// Amount in wei. Nil or non-positive requests a maximum-available sweep.
	Amount      *big.Int
	Destination common.Address
	// AuxDestination is an optional second target. A split request carrying
	// one divides between Destination and AuxDestination instead of the
	// configured destination set.
	AuxDestination *common.Address
}

// Approver decides whether a gated withdrawal may proceed. Implementations
// must be deterministic under test; randomness lives behind this port, not
// in the dispatch path.
type Approver interface {
	Approve(ctx context.Context, req Request) (bool, error)
}

// Reporter defines the interface for reporting withdrawal activity.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// ReportWithdrawal records one finished withdrawal.
	ReportWithdrawal(req Request, result domain.Result)

	// UpdateTreasury updates the treasury account display.
	UpdateTreasury(address common.Address, nonce int64, balanceWei *big.Int)

	// Stop gracefully shuts down the reporter.
	Stop() error
}
