package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// WithdrawalRow represents one finished withdrawal in the list.
type WithdrawalRow struct {
	Time      time.Time
	Variant   string
	Success   bool
	AmountEth string
	TxHash    string
	Error     string
}

// WithdrawalsComponent renders the recent withdrawals list.
type WithdrawalsComponent struct {
	rows    []WithdrawalRow
	maxRows int
}

// NewWithdrawalsComponent creates a new withdrawals component.
func NewWithdrawalsComponent(maxRows int) *WithdrawalsComponent {
	return &WithdrawalsComponent{
		rows:    make([]WithdrawalRow, 0),
		maxRows: maxRows,
	}
}

// Add prepends a finished withdrawal.
func (c *WithdrawalsComponent) Add(row WithdrawalRow) {
	c.rows = append([]WithdrawalRow{row}, c.rows...)
	if len(c.rows) > c.maxRows {
		c.rows = c.rows[:c.maxRows]
	}
}

// Clear removes all rows.
func (c *WithdrawalsComponent) Clear() {
	c.rows = make([]WithdrawalRow, 0)
}

// View renders the withdrawals component.
func (c *WithdrawalsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	badStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	if len(c.rows) == 0 {
		return headerStyle.Render("WITHDRAWALS") + "\n  No withdrawals yet..."
	}

	result := headerStyle.Render(fmt.Sprintf("WITHDRAWALS (last %d)", c.maxRows)) + "\n"

	for _, row := range c.rows {
		mark := okStyle.Render("✓")
		detail := row.AmountEth + " ETH"
		if !row.Success {
			mark = badStyle.Render("✗")
			detail = row.Error
		}

		hash := row.TxHash
		if len(hash) > 14 {
			hash = hash[:10] + "…" + hash[len(hash)-4:]
		}

		result += fmt.Sprintf("  %s %s  %-9s %-24s %s\n",
			row.Time.Format("15:04:05"),
			mark,
			row.Variant,
			detail,
			hash,
		)
	}

	return result
}
