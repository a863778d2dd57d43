package ui

import (
	"context"
	"math/big"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/treasury-bot/business/withdrawal/app"
	"github.com/fd1az/treasury-bot/business/withdrawal/domain"
	"github.com/fd1az/treasury-bot/internal/asset"
)

// TUIReporter adapts the dashboard to the withdrawal Reporter port.
type TUIReporter struct {
	program *tea.Program
	done    chan error
}

// NewTUIReporter creates a reporter backed by a fresh dashboard program.
func NewTUIReporter() *TUIReporter {
	return &TUIReporter{
		program: tea.NewProgram(New(), tea.WithAltScreen()),
		done:    make(chan error, 1),
	}
}

// Start runs the dashboard in a background goroutine.
func (r *TUIReporter) Start(_ context.Context) error {
	go func() {
		_, err := r.program.Run()
		r.done <- err
	}()
	return nil
}

// Done is closed-equivalent: it yields when the user quits the dashboard.
func (r *TUIReporter) Done() <-chan error {
	return r.done
}

// ReportWithdrawal pushes one finished withdrawal to the dashboard.
func (r *TUIReporter) ReportWithdrawal(_ app.Request, result domain.Result) {
	msg := WithdrawalMsg{
		Variant:    result.Variant.String(),
		Success:    result.Succeeded(),
		AmountEth:  asset.FormatWei(result.TotalSent()),
		Legs:       len(result.Legs),
		FinishedAt: result.Finished,
	}
	if hash := result.FirstHash(); hash != (common.Hash{}) {
		msg.TxHash = hash.Hex()
	}
	if err := result.FirstError(); err != nil {
		msg.Error = err.Error()
	}
	r.program.Send(msg)
}

// UpdateTreasury pushes the treasury snapshot to the dashboard.
func (r *TUIReporter) UpdateTreasury(address common.Address, nonce int64, balanceWei *big.Int) {
	msg := TreasuryMsg{
		NextNonce: nonce,
	}
	if address != (common.Address{}) {
		msg.Address = address.Hex()
		msg.Connected = true
	}
	if balanceWei != nil {
		msg.BalanceEth = asset.FormatWei(balanceWei)
	}
	r.program.Send(msg)
}

// Stop quits the dashboard program.
func (r *TUIReporter) Stop() error {
	r.program.Quit()
	return <-r.done
}
