package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	treasuryApp "github.com/fd1az/treasury-bot/business/treasury/app"
	"github.com/fd1az/treasury-bot/business/withdrawal/domain"
	"github.com/fd1az/treasury-bot/internal/apperror"
	"github.com/fd1az/treasury-bot/internal/logger"
	"github.com/fd1az/treasury-bot/internal/ratelimit"
)

const (
	tracerName = "github.com/fd1az/treasury-bot/business/withdrawal/app"
	meterName  = "github.com/fd1az/treasury-bot/business/withdrawal/app"
)

// DispatcherConfig holds variant policy configuration.
type DispatcherConfig struct {
	// SplitDestinations is the fixed destination set for the split variant.
	SplitDestinations []common.Address
	// RedirectAddress is the internal address the internal variant pays to.
	RedirectAddress common.Address
	// RedirectGasLimit is the gas limit for internal transfers.
	RedirectGasLimit uint64
	// ExpressTipGwei is the priority fee override for the express variant.
	ExpressTipGwei int64
	// BalanceTolerance is the max divergence between two endpoints' balance
	// reads, in wei, before the verified variant aborts.
	BalanceTolerance *big.Int
	// RatePerMinute caps dispatched withdrawals.
	RatePerMinute int
}

// strategy executes one variant's policy around the transfer engine.
type strategy func(ctx context.Context, req Request) domain.Result

// dispatcherMetrics holds OTEL metric instruments.
type dispatcherMetrics struct {
	withdrawals metric.Int64Counter
}

// Dispatcher maps a named withdrawal variant to one or more transfer engine
// invocations with variant-specific pre and post checks. The variant set is
// closed; unknown identifiers fail with a typed error before any side effect.
type Dispatcher struct {
	config     DispatcherConfig
	transferor treasuryApp.Transferor
	accounts   treasuryApp.AccountReader
	treasury   *treasuryApp.TreasuryService
	approver   Approver
	reporter   Reporter
	limiter    *ratelimit.Limiter
	logger     logger.LoggerInterface

	strategies map[domain.Variant]strategy

	tracer  trace.Tracer
	metrics *dispatcherMetrics
}

// NewDispatcher creates the strategy dispatcher.
func NewDispatcher(
	cfg DispatcherConfig,
	transferor treasuryApp.Transferor,
	accounts treasuryApp.AccountReader,
	treasury *treasuryApp.TreasuryService,
	approver Approver,
	reporter Reporter,
	log logger.LoggerInterface,
) (*Dispatcher, error) {
	d := &Dispatcher{
		config:     cfg,
		transferor: transferor,
		accounts:   accounts,
		treasury:   treasury,
		approver:   approver,
		reporter:   reporter,
		limiter:    ratelimit.New(cfg.RatePerMinute),
		logger:     log,
		tracer:     otel.Tracer(tracerName),
	}

	d.strategies = map[domain.Variant]strategy{
		domain.VariantDirect:   d.direct,
		domain.VariantVerified: d.verified,
		domain.VariantAudited:  d.audited,
		domain.VariantGated:    d.gated,
		domain.VariantInternal: d.internal,
		domain.VariantSplit:    d.split,
		domain.VariantExpress:  d.express,
		domain.VariantFrugal:   d.frugal,
	}

	if err := d.initMetrics(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Dispatcher) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	d.metrics = &dispatcherMetrics{}

	d.metrics.withdrawals, err = meter.Int64Counter(
		"withdrawals_total",
		metric.WithDescription("Withdrawal requests by variant and outcome"),
		metric.WithUnit("{withdrawal}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Variants returns the registered variant identifiers.
func (d *Dispatcher) Variants() []domain.Variant {
	return domain.All()
}

// Dispatch resolves and executes the variant named by req. A request-level
// rejection (unknown variant, rate limit) returns an error and performs no
// transfer; policy-level aborts and transfer failures come back inside the
// Result so callers always see the same outcome shape.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (domain.Result, error) {
	ctx, span := d.tracer.Start(ctx, "withdrawal.dispatch",
		trace.WithAttributes(attribute.String("variant", req.Variant.String())),
	)
	defer span.End()

	exec, ok := d.strategies[req.Variant]
	if !ok {
		span.SetStatus(codes.Error, "unknown variant")
		return domain.Result{}, apperror.New(apperror.CodeUnknownVariant,
			apperror.WithCause(domain.ErrUnknownVariant),
			apperror.WithContext("variant "+req.Variant.String()))
	}

	if !d.limiter.Allow() {
		span.SetStatus(codes.Error, "rate limited")
		return domain.Result{}, apperror.New(apperror.CodeRateLimitExceeded,
			apperror.WithContext("withdrawal rate cap reached"))
	}

	result := exec(ctx, req)

	outcome := "failed"
	if result.Succeeded() {
		outcome = "confirmed"
		span.SetStatus(codes.Ok, "confirmed")
	} else {
		span.SetStatus(codes.Error, string(apperror.GetCode(result.FirstError())))
	}
	d.metrics.withdrawals.Add(ctx, 1, metric.WithAttributes(
		attribute.String("variant", req.Variant.String()),
		attribute.String("outcome", outcome),
	))

	d.logger.Info(ctx, "withdrawal dispatched",
		"variant", req.Variant.String(),
		"outcome", outcome,
		"legs", len(result.Legs),
		"total_sent_wei", result.TotalSent().String())

	if d.reporter != nil {
		d.reporter.ReportWithdrawal(req, result)
	}

	return result, nil
}
