// Package report provides Reporter implementations for withdrawal activity.
package report

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/treasury-bot/business/withdrawal/app"
	"github.com/fd1az/treasury-bot/business/withdrawal/domain"
	"github.com/fd1az/treasury-bot/internal/asset"
	"github.com/fd1az/treasury-bot/internal/logger"
)

// ConsoleReporter writes withdrawal activity to the structured log. Used in
// headless mode and as the fallback when the TUI is disabled.
type ConsoleReporter struct {
	logger logger.LoggerInterface
}

// NewConsoleReporter creates a log-backed reporter.
func NewConsoleReporter(log logger.LoggerInterface) *ConsoleReporter {
	return &ConsoleReporter{logger: log}
}

// Start is a no-op for the console reporter.
func (r *ConsoleReporter) Start(_ context.Context) error {
	return nil
}

// ReportWithdrawal logs one finished withdrawal.
func (r *ConsoleReporter) ReportWithdrawal(req app.Request, result domain.Result) {
	ctx := context.Background()

	kv := []any{
		"variant", result.Variant.String(),
		"success", result.Succeeded(),
		"legs", len(result.Legs),
		"total_sent_eth", asset.FormatWei(result.TotalSent()),
	}
	if hash := result.FirstHash(); hash != (common.Hash{}) {
		kv = append(kv, "tx", hash.Hex())
	}

	if result.Succeeded() {
		r.logger.Info(ctx, "withdrawal completed", kv...)
		return
	}
	if err := result.FirstError(); err != nil {
		kv = append(kv, "error", err)
	}
	r.logger.Warn(ctx, "withdrawal failed", kv...)
}

// UpdateTreasury logs the treasury snapshot at debug level.
func (r *ConsoleReporter) UpdateTreasury(address common.Address, nonce int64, balanceWei *big.Int) {
	r.logger.Debug(context.Background(), "treasury snapshot",
		"address", address.Hex(),
		"next_nonce", nonce,
		"balance_eth", asset.FormatWei(balanceWei))
}

// Stop is a no-op for the console reporter.
func (r *ConsoleReporter) Stop() error {
	return nil
}
