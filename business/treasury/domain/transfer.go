package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TransferRequest describes one outgoing value transfer.
type TransferRequest struct {
	To common.Address
	// Amount in wei. Zero or negative means "send the maximum available
	// after reserving worst-case fees and the safety reserve".
	Amount *big.Int
	Fees   FeeOverrides
}

// MaxSend reports whether the request asks for a maximum-available sweep.
func (r TransferRequest) MaxSend() bool {
	return r.Amount == nil || r.Amount.Sign() <= 0
}

// OutcomeStatus tags a TransferOutcome.
type OutcomeStatus string

const (
	StatusConfirmed OutcomeStatus = "confirmed"
	StatusFailed    OutcomeStatus = "failed"
)

// TransferOutcome is the tagged result of one transfer attempt. A failed
// outcome carries a transaction hash only when the transaction left the
// process (mined-but-reverted, or confirmation timed out after submission);
// a zero hash means the failure was local and the nonce slot was freed.
type TransferOutcome struct {
	Status  OutcomeStatus
	TxHash  common.Hash
	Amount  *big.Int       // amount actually sent, set on confirmation
	Receipt *types.Receipt // inclusion receipt, set when mined
	Err     error          // failure cause, nil on confirmation
}

// Confirmed builds a successful outcome.
func Confirmed(hash common.Hash, amount *big.Int, receipt *types.Receipt) TransferOutcome {
	return TransferOutcome{
		Status:  StatusConfirmed,
		TxHash:  hash,
		Amount:  amount,
		Receipt: receipt,
	}
}

// Failed builds a failed outcome for an error that occurred before the
// transaction reached the network.
func Failed(err error) TransferOutcome {
	return TransferOutcome{Status: StatusFailed, Err: err}
}

// FailedOnChain builds a failed outcome for a transaction that was
// submitted, identified by its hash.
func FailedOnChain(hash common.Hash, receipt *types.Receipt, err error) TransferOutcome {
	return TransferOutcome{Status: StatusFailed, TxHash: hash, Receipt: receipt, Err: err}
}

// Succeeded reports whether the transfer confirmed with successful execution.
func (o TransferOutcome) Succeeded() bool {
	return o.Status == StatusConfirmed
}

// LeftProcess reports whether the transaction was handed to the network.
func (o TransferOutcome) LeftProcess() bool {
	return o.TxHash != (common.Hash{})
}

// ResolveAmount resolves the amount to send for a request given the current
// balance and fee quote:
//
//	affordableMax = balance − quote.Cost() − safetyReserve
//
// A positive requested amount is capped at affordableMax; a max-send request
// resolves to affordableMax itself. The result may be zero or negative, the
// engine converts anything at or below the dust threshold into an
// insufficient-funds failure before touching the network.
func ResolveAmount(req TransferRequest, balance *big.Int, quote FeeQuote, safetyReserve *big.Int) *big.Int {
	affordable := new(big.Int).Sub(balance, quote.Cost())
	affordable.Sub(affordable, safetyReserve)

	if req.MaxSend() {
		return affordable
	}
	if req.Amount.Cmp(affordable) > 0 {
		return affordable
	}
	return new(big.Int).Set(req.Amount)
}
