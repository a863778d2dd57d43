package ethereum

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/treasury-bot/business/treasury/domain"
	"github.com/fd1az/treasury-bot/internal/apperror"
	"github.com/fd1az/treasury-bot/internal/logger"
)

// EngineConfig holds transfer engine policy.
type EngineConfig struct {
	ChainID uint64
	// SafetyReserve is left untouched on top of worst-case fees so the
	// treasury never fully drains on a max-send.
	SafetyReserve *big.Int
	// DustThreshold is the minimum amount worth submitting.
	DustThreshold       *big.Int
	ConfirmTimeout      time.Duration
	ConfirmPollInterval time.Duration
}

// ConnectionSource is the subset of the connection manager the engine uses.
// *Manager satisfies it; tests substitute a fixed connection.
type ConnectionSource interface {
	Acquire(ctx context.Context) (*Connection, *SigningIdentity, error)
	Invalidate(ctx context.Context, conn *Connection)
	DialAlternate(ctx context.Context) (*Connection, error)
	Address() (common.Address, bool)
}

// engineMetrics holds OTEL metric instruments.
type engineMetrics struct {
	submitted   metric.Int64Counter
	confirmed   metric.Int64Counter
	failed      metric.Int64Counter
	sendLatency metric.Float64Histogram
}

// Engine is the single chokepoint that assembles, signs, submits, and
// confirms a value transfer. Every withdrawal variant funnels through here.
type Engine struct {
	config EngineConfig
	conns  ConnectionSource
	nonces *Sequencer
	fees   *Estimator
	logger logger.LoggerInterface

	tracer  trace.Tracer
	metrics *engineMetrics
}

// NewEngine creates the transfer engine.
func NewEngine(cfg EngineConfig, conns ConnectionSource, nonces *Sequencer, fees *Estimator, log logger.LoggerInterface) (*Engine, error) {
	e := &Engine{
		config: cfg,
		conns:  conns,
		nonces: nonces,
		fees:   fees,
		logger: log,
		tracer: otel.Tracer(tracerName),
	}

	if err := e.initMetrics(); err != nil {
		return nil, err
	}

	return e, nil
}

func (e *Engine) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	e.metrics = &engineMetrics{}

	e.metrics.submitted, err = meter.Int64Counter(
		"transfers_submitted_total",
		metric.WithDescription("Transactions handed to the network"),
		metric.WithUnit("{tx}"),
	)
	if err != nil {
		return err
	}

	e.metrics.confirmed, err = meter.Int64Counter(
		"transfers_confirmed_total",
		metric.WithDescription("Transactions confirmed with successful execution"),
		metric.WithUnit("{tx}"),
	)
	if err != nil {
		return err
	}

	e.metrics.failed, err = meter.Int64Counter(
		"transfers_failed_total",
		metric.WithDescription("Transfer attempts that did not confirm"),
		metric.WithUnit("{tx}"),
	)
	if err != nil {
		return err
	}

	e.metrics.sendLatency, err = meter.Float64Histogram(
		"transfer_confirm_latency_ms",
		metric.WithDescription("Latency from submission to confirmation"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Transfer executes one value transfer end to end. A reserved nonce is
// rolled back on every failure that happens before the transaction reaches
// the network; once submitted the nonce is consumed regardless of outcome.
func (e *Engine) Transfer(ctx context.Context, req domain.TransferRequest) domain.TransferOutcome {
	ctx, span := e.tracer.Start(ctx, "engine.transfer",
		trace.WithAttributes(attribute.String("to", req.To.Hex())),
	)
	defer span.End()

	conn, signer, err := e.conns.Acquire(ctx)
	if err != nil {
		return e.fail(ctx, span, err)
	}

	nonce, err := e.nonces.Reserve(ctx, func(ctx context.Context) (uint64, error) {
		return conn.Client.PendingNonceAt(ctx, signer.Address())
	})
	if err != nil {
		e.conns.Invalidate(ctx, conn)
		return e.fail(ctx, span, err)
	}
	span.SetAttributes(attribute.Int64("nonce", int64(nonce)))

	quote, err := e.fees.Quote(ctx, conn.Client, req.Fees)
	if err != nil {
		e.nonces.Release(nonce)
		// An open fee breaker rejects locally; the connection was never tried.
		if !apperror.HasCode(err, apperror.CodeCircuitOpen) {
			e.conns.Invalidate(ctx, conn)
		}
		return e.fail(ctx, span, err)
	}

	balance, err := conn.Client.BalanceAt(ctx, signer.Address(), nil)
	if err != nil {
		e.nonces.Release(nonce)
		e.conns.Invalidate(ctx, conn)
		return e.fail(ctx, span, apperror.New(apperror.CodeRPCError,
			apperror.WithCause(err),
			apperror.WithContext("failed to read treasury balance")))
	}

	amount := domain.ResolveAmount(req, balance, quote, e.config.SafetyReserve)
	if amount.Cmp(e.config.DustThreshold) <= 0 {
		// Local decision, no network call was made with this nonce.
		e.nonces.Release(nonce)
		return e.fail(ctx, span, apperror.New(apperror.CodeInsufficientFunds,
			apperror.WithContext("resolved "+amount.String()+" wei")))
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   new(big.Int).SetUint64(e.config.ChainID),
		Nonce:     nonce,
		GasTipCap: quote.Tip,
		GasFeeCap: quote.MaxFee,
		Gas:       quote.GasLimit,
		To:        &req.To,
		Value:     amount,
	})

	signed, err := signer.SignTx(tx)
	if err != nil {
		e.nonces.Release(nonce)
		return e.fail(ctx, span, err)
	}

	if err := conn.Client.SendTransaction(ctx, signed); err != nil {
		e.nonces.Release(nonce)
		e.conns.Invalidate(ctx, conn)
		return e.fail(ctx, span, apperror.New(apperror.CodeSubmissionRejected,
			apperror.WithCause(err),
			apperror.WithContext("network refused transaction before inclusion")))
	}

	hash := signed.Hash()
	submittedAt := time.Now()
	e.metrics.submitted.Add(ctx, 1)
	span.SetAttributes(attribute.String("tx_hash", hash.Hex()))
	e.logger.Info(ctx, "transfer submitted",
		"tx", hash.Hex(), "to", req.To.Hex(), "amount_wei", amount.String(), "nonce", nonce)

	// The transaction left the process: from here on the nonce slot is
	// consumed and must never be rolled back.
	receipt, err := e.waitMined(ctx, conn, hash)
	if err != nil {
		e.metrics.failed.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "confirmation timeout")
		return domain.FailedOnChain(hash, nil, err)
	}

	e.metrics.sendLatency.Record(ctx, float64(time.Since(submittedAt).Milliseconds()))

	if receipt.Status != types.ReceiptStatusSuccessful {
		e.metrics.failed.Add(ctx, 1)
		span.SetStatus(codes.Error, "mined but reverted")
		e.logger.Warn(ctx, "transfer reverted on chain", "tx", hash.Hex())
		return domain.FailedOnChain(hash, receipt, apperror.New(apperror.CodeMinedReverted,
			apperror.WithContext("tx "+hash.Hex())))
	}

	e.metrics.confirmed.Add(ctx, 1)
	span.SetStatus(codes.Ok, "confirmed")
	e.logger.Info(ctx, "transfer confirmed",
		"tx", hash.Hex(), "block", receipt.BlockNumber.String(), "amount_wei", amount.String())

	return domain.Confirmed(hash, amount, receipt)
}

// waitMined polls for the inclusion receipt until the configured timeout.
func (e *Engine) waitMined(ctx context.Context, conn *Connection, hash common.Hash) (*types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, e.config.ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(e.config.ConfirmPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := conn.Client.TransactionReceipt(waitCtx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}

		select {
		case <-waitCtx.Done():
			return nil, apperror.New(apperror.CodeConfirmTimeout,
				apperror.WithCause(waitCtx.Err()),
				apperror.WithContext("no inclusion within "+e.config.ConfirmTimeout.String()))
		case <-ticker.C:
		}
	}
}

// fail records a failed outcome for an error raised before submission.
func (e *Engine) fail(ctx context.Context, span trace.Span, err error) domain.TransferOutcome {
	e.metrics.failed.Add(ctx, 1)
	span.RecordError(err)
	span.SetStatus(codes.Error, string(apperror.GetCode(err)))
	e.logger.Warn(ctx, "transfer failed before submission", "error", err)
	return domain.Failed(err)
}

// Balance reads the treasury balance from the active connection.
func (e *Engine) Balance(ctx context.Context) (*big.Int, error) {
	conn, signer, err := e.conns.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	balance, err := conn.Client.BalanceAt(ctx, signer.Address(), nil)
	if err != nil {
		return nil, apperror.New(apperror.CodeRPCError,
			apperror.WithCause(err),
			apperror.WithContext("failed to read treasury balance"))
	}
	return balance, nil
}

// AlternateBalance reads the treasury balance through an independent
// connection to a different pool endpoint.
func (e *Engine) AlternateBalance(ctx context.Context) (*big.Int, error) {
	addr, ok := e.conns.Address()
	if !ok {
		// Derive the identity through a normal acquire first.
		if _, _, err := e.conns.Acquire(ctx); err != nil {
			return nil, err
		}
		addr, _ = e.conns.Address()
	}

	alt, err := e.conns.DialAlternate(ctx)
	if err != nil {
		return nil, err
	}
	defer alt.Close()

	balance, err := alt.Client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, apperror.New(apperror.CodeRPCError,
			apperror.WithCause(err),
			apperror.WithContext("failed to read balance from alternate endpoint"))
	}
	return balance, nil
}

// Address returns the published treasury address.
func (e *Engine) Address() (common.Address, bool) {
	return e.conns.Address()
}

// NonceValue returns the sequencer's next unused nonce, -1 when unsynced.
func (e *Engine) NonceValue() int64 {
	return e.nonces.Current()
}
