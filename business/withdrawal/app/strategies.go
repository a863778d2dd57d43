package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"

	treasury "github.com/fd1az/treasury-bot/business/treasury/domain"
	"github.com/fd1az/treasury-bot/business/withdrawal/domain"
	"github.com/fd1az/treasury-bot/internal/apperror"
)

// direct performs a single transfer with no extra checks.
func (d *Dispatcher) direct(ctx context.Context, req Request) domain.Result {
	outcome := d.transferor.Transfer(ctx, treasury.TransferRequest{
		To:     req.Destination,
		Amount: req.Amount,
	})
	return domain.NewResult(req.Variant, outcome)
}

// verified cross-validates the balance against an independent endpoint and
// refuses to transfer when the two views diverge.
func (d *Dispatcher) verified(ctx context.Context, req Request) domain.Result {
	if _, err := d.treasury.VerifiedBalance(ctx, d.config.BalanceTolerance); err != nil {
		return domain.NewResult(req.Variant, treasury.Failed(err))
	}
	return d.direct(ctx, req)
}

// audited transfers, then re-reads the balance and rejects the reported
// success when the balance did not decrease. The transaction hash is kept:
// the transfer itself left the process.
func (d *Dispatcher) audited(ctx context.Context, req Request) domain.Result {
	before, err := d.accounts.Balance(ctx)
	if err != nil {
		return domain.NewResult(req.Variant, treasury.Failed(err))
	}

	result := d.direct(ctx, req)
	if !result.Succeeded() {
		return result
	}

	outcome := result.Legs[0]
	after, err := d.accounts.Balance(ctx)
	if err != nil {
		return domain.NewResult(req.Variant, treasury.FailedOnChain(outcome.TxHash, outcome.Receipt,
			apperror.New(apperror.CodePostCheckFailed,
				apperror.WithCause(err),
				apperror.WithContext("post-transfer balance read failed"))))
	}

	if after.Cmp(before) >= 0 {
		d.logger.Warn(ctx, "balance did not decrease after confirmed transfer",
			"before_wei", before.String(), "after_wei", after.String(), "tx", outcome.TxHash.Hex())
		return domain.NewResult(req.Variant, treasury.FailedOnChain(outcome.TxHash, outcome.Receipt,
			apperror.New(apperror.CodePostCheckFailed,
				apperror.WithContext("balance "+before.String()+" wei did not decrease"))))
	}

	return result
}

// gated consults the approval port before transferring.
func (d *Dispatcher) gated(ctx context.Context, req Request) domain.Result {
	approved, err := d.approver.Approve(ctx, req)
	if err != nil {
		return domain.NewResult(req.Variant, treasury.Failed(
			apperror.New(apperror.CodeApprovalError, apperror.WithCause(err))))
	}
	if !approved {
		return domain.NewResult(req.Variant, treasury.Failed(
			apperror.New(apperror.CodeGateDeclined,
				apperror.WithContext("withdrawal declined by approval gate"))))
	}
	return d.direct(ctx, req)
}

// internal redirects funds to the configured internal address with a custom
// gas limit. The caller-supplied destination is ignored.
func (d *Dispatcher) internal(ctx context.Context, req Request) domain.Result {
	outcome := d.transferor.Transfer(ctx, treasury.TransferRequest{
		To:     d.config.RedirectAddress,
		Amount: req.Amount,
		Fees:   treasury.FeeOverrides{GasLimit: d.config.RedirectGasLimit},
	})
	return domain.NewResult(req.Variant, outcome)
}

// split divides the amount evenly across a destination set, one sequential
// transfer per destination. A request carrying an auxiliary destination
// splits two ways between it and the primary destination; otherwise the
// configured set is used. Integer division: any wei remainder stays in the
// treasury. Stops at the first failed leg; later legs are never attempted.
func (d *Dispatcher) split(ctx context.Context, req Request) domain.Result {
	destinations := d.config.SplitDestinations
	if req.AuxDestination != nil {
		destinations = []common.Address{req.Destination, *req.AuxDestination}
	}
	if len(destinations) == 0 {
		return domain.NewResult(req.Variant, treasury.Failed(
			apperror.New(apperror.CodeConfigurationError,
				apperror.WithContext("no split destinations configured"))))
	}
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		// A max-send sweep cannot be divided up front: the affordable
		// maximum is only known per leg, after fees.
		return domain.NewResult(req.Variant, treasury.Failed(
			apperror.New(apperror.CodeInvalidAmount,
				apperror.WithContext("split requires a positive amount"))))
	}

	per := new(big.Int).Div(req.Amount, big.NewInt(int64(len(destinations))))

	legs := make([]treasury.TransferOutcome, 0, len(destinations))
	for _, dest := range destinations {
		outcome := d.transferor.Transfer(ctx, treasury.TransferRequest{
			To:     dest,
			Amount: per,
		})
		legs = append(legs, outcome)
		if !outcome.Succeeded() {
			break
		}
	}

	return domain.NewResult(req.Variant, legs...)
}

// express overrides only the priority fee, high enough for next-block
// inclusion; ceiling and gas limit stay with the estimator.
func (d *Dispatcher) express(ctx context.Context, req Request) domain.Result {
	tip := new(big.Int).Mul(big.NewInt(d.config.ExpressTipGwei), big.NewInt(params.GWei))
	outcome := d.transferor.Transfer(ctx, treasury.TransferRequest{
		To:     req.Destination,
		Amount: req.Amount,
		Fees:   treasury.FeeOverrides{Tip: tip},
	})
	return domain.NewResult(req.Variant, outcome)
}

// frugal submits with a zero priority fee. The override must pass through
// exactly, bypassing the configured tip floor.
func (d *Dispatcher) frugal(ctx context.Context, req Request) domain.Result {
	outcome := d.transferor.Transfer(ctx, treasury.TransferRequest{
		To:     req.Destination,
		Amount: req.Amount,
		Fees:   treasury.FeeOverrides{Tip: big.NewInt(0)},
	})
	return domain.NewResult(req.Variant, outcome)
}
