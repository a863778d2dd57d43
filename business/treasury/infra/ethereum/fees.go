package ethereum

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/params"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/treasury-bot/business/treasury/app"
	"github.com/fd1az/treasury-bot/business/treasury/domain"
	"github.com/fd1az/treasury-bot/internal/apperror"
	"github.com/fd1az/treasury-bot/internal/circuitbreaker"
	"github.com/fd1az/treasury-bot/internal/logger"
)

// EstimatorConfig holds fee policy configuration.
type EstimatorConfig struct {
	MinTipGwei      int64  // floor for the priority fee, guarantees inclusion economics
	DefaultGasLimit uint64 // simple-transfer cost unless a variant overrides it
}

// estimatorMetrics holds OTEL metric instruments.
type estimatorMetrics struct {
	feeFetches metric.Int64Counter
	tipGwei    metric.Float64Gauge
}

// Estimator computes a fresh FeeQuote per transfer from live network fee
// data. Quotes are never cached: base-fee conditions change block to block.
type Estimator struct {
	config EstimatorConfig
	logger logger.LoggerInterface

	cb *circuitbreaker.CircuitBreaker[domain.FeeData]

	tracer  trace.Tracer
	metrics *estimatorMetrics
}

// NewEstimator creates a fee estimator.
func NewEstimator(cfg EstimatorConfig, log logger.LoggerInterface) (*Estimator, error) {
	e := &Estimator{
		config: cfg,
		logger: log,
		cb:     circuitbreaker.New[domain.FeeData](circuitbreaker.DefaultConfig("fee-data")),
		tracer: otel.Tracer(tracerName),
	}

	if err := e.initMetrics(); err != nil {
		return nil, err
	}

	return e, nil
}

func (e *Estimator) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	e.metrics = &estimatorMetrics{}

	e.metrics.feeFetches, err = meter.Int64Counter(
		"fee_data_fetches_total",
		metric.WithDescription("Total fee data fetch attempts"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return err
	}

	e.metrics.tipGwei, err = meter.Float64Gauge(
		"fee_priority_gwei",
		metric.WithDescription("Priority fee of the latest quote in gwei"),
		metric.WithUnit("gwei"),
	)
	if err != nil {
		return err
	}

	return nil
}

// MinTip returns the configured priority fee floor in wei.
func (e *Estimator) MinTip() *big.Int {
	return new(big.Int).Mul(big.NewInt(e.config.MinTipGwei), big.NewInt(params.GWei))
}

// Quote fetches live fee data through the circuit breaker and derives the
// FeeQuote for one transfer.
func (e *Estimator) Quote(ctx context.Context, client app.EthClient, overrides domain.FeeOverrides) (domain.FeeQuote, error) {
	ctx, span := e.tracer.Start(ctx, "fees.quote")
	defer span.End()

	e.metrics.feeFetches.Add(ctx, 1)

	data, err := e.cb.Execute(func() (domain.FeeData, error) {
		return fetchFeeData(ctx, client)
	})
	if err != nil {
		span.RecordError(err)
		// A breaker rejection happens before any network call; it carries
		// a distinct code so callers do not fail the connection over it.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			span.SetStatus(codes.Error, "circuit open")
			return domain.FeeQuote{}, apperror.New(apperror.CodeCircuitOpen,
				apperror.WithCause(err),
				apperror.WithContext("fee data requests suspended"))
		}
		span.SetStatus(codes.Error, "fetch failed")
		return domain.FeeQuote{}, apperror.New(apperror.CodeFeeEstimateFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to fetch network fee data"))
	}

	quote := domain.ComputeQuote(overrides, data, e.MinTip(), e.config.DefaultGasLimit)

	tipGwei, _ := new(big.Float).Quo(
		new(big.Float).SetInt(quote.Tip),
		big.NewFloat(params.GWei),
	).Float64()
	e.metrics.tipGwei.Record(ctx, tipGwei)

	span.SetAttributes(
		attribute.String("tip_wei", quote.Tip.String()),
		attribute.String("max_fee_wei", quote.MaxFee.String()),
		attribute.Int64("gas_limit", int64(quote.GasLimit)),
	)
	span.SetStatus(codes.Ok, "quoted")

	return quote, nil
}

// fetchFeeData reads the suggested tip and latest base fee, deriving the
// node-conventional ceiling of 2×baseFee + tip.
func fetchFeeData(ctx context.Context, client app.EthClient) (domain.FeeData, error) {
	tip, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		return domain.FeeData{}, err
	}

	header, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return domain.FeeData{}, err
	}

	data := domain.FeeData{SuggestedTip: tip, BaseFee: header.BaseFee}
	if header.BaseFee != nil {
		data.SuggestedCeiling = new(big.Int).Add(
			new(big.Int).Mul(header.BaseFee, big.NewInt(2)),
			tip,
		)
	}

	return data, nil
}
