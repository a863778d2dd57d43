// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// TreasuryComponent renders the treasury account panel.
type TreasuryComponent struct {
	address    string
	connected  bool
	nextNonce  int64
	balanceEth string
}

// NewTreasuryComponent creates a new treasury panel.
func NewTreasuryComponent() *TreasuryComponent {
	return &TreasuryComponent{nextNonce: -1}
}

// Update replaces the displayed snapshot.
func (t *TreasuryComponent) Update(address string, connected bool, nextNonce int64, balanceEth string) {
	t.address = address
	t.connected = connected
	t.nextNonce = nextNonce
	t.balanceEth = balanceEth
}

// View renders the treasury component.
func (t *TreasuryComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	badStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	status := badStyle.Render("● disconnected")
	if t.connected {
		status = okStyle.Render("● connected")
	}

	nonce := "unsynced"
	if t.nextNonce >= 0 {
		nonce = fmt.Sprintf("%d", t.nextNonce)
	}

	addr := t.address
	if addr == "" {
		addr = "(deriving…)"
	}

	result := headerStyle.Render("TREASURY") + "  " + status + "\n"
	result += fmt.Sprintf("  Address:    %s\n", addr)
	result += fmt.Sprintf("  Next nonce: %s\n", nonce)
	result += fmt.Sprintf("  Balance:    %s ETH", t.balanceEth)

	return result
}
