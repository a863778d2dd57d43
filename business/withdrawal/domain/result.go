package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	treasury "github.com/fd1az/treasury-bot/business/treasury/domain"
)

// Result is the aggregate outcome of one withdrawal request. Single-leg
// variants carry exactly one outcome; split carries one per attempted leg
// and stops recording at the first failure.
type Result struct {
	Variant  Variant
	Legs     []treasury.TransferOutcome
	Finished time.Time
}

// NewResult builds a result for variant from the attempted legs.
func NewResult(variant Variant, legs ...treasury.TransferOutcome) Result {
	return Result{Variant: variant, Legs: legs, Finished: time.Now()}
}

// Succeeded reports whether every attempted leg confirmed.
func (r Result) Succeeded() bool {
	if len(r.Legs) == 0 {
		return false
	}
	for _, leg := range r.Legs {
		if !leg.Succeeded() {
			return false
		}
	}
	return true
}

// TotalSent sums the confirmed amounts across legs, in wei.
func (r Result) TotalSent() *big.Int {
	total := new(big.Int)
	for _, leg := range r.Legs {
		if leg.Succeeded() && leg.Amount != nil {
			total.Add(total, leg.Amount)
		}
	}
	return total
}

// FirstHash returns the first transaction hash that left the process, or a
// zero hash when no leg was submitted.
func (r Result) FirstHash() common.Hash {
	for _, leg := range r.Legs {
		if leg.LeftProcess() {
			return leg.TxHash
		}
	}
	return common.Hash{}
}

// FirstError returns the error of the first failed leg, nil when all legs
// confirmed.
func (r Result) FirstError() error {
	for _, leg := range r.Legs {
		if leg.Err != nil {
			return leg.Err
		}
	}
	return nil
}
