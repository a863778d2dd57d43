// Package ui provides the Bubble Tea TUI for the treasury bot.
package ui

import "time"

// Message types for TUI updates

// WithdrawalMsg is sent when a withdrawal finishes.
type WithdrawalMsg struct {
	Variant    string
	Success    bool
	TxHash     string
	AmountEth  string
	Legs       int
	Error      string
	FinishedAt time.Time
}

// TreasuryMsg is sent when the treasury snapshot changes.
type TreasuryMsg struct {
	Address    string
	Connected  bool
	NextNonce  int64
	BalanceEth string
}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}
