// Package ui provides the Bubble Tea TUI for the treasury bot.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/treasury-bot/pkg/ui/components"
)

const (
	maxWithdrawalRows = 20
	maxLogLines       = 8
	tickInterval      = time.Second
)

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	treasury    *components.TreasuryComponent
	withdrawals *components.WithdrawalsComponent

	keys     KeyMap
	width    int
	height   int
	quitting bool
	logs     []string

	confirmed uint64
	failed    uint64
}

// New creates a new TUI model.
func New() Model {
	return Model{
		treasury:    components.NewTreasuryComponent(),
		withdrawals: components.NewWithdrawalsComponent(maxWithdrawalRows),
		keys:        DefaultKeyMap(),
		logs:        make([]string, 0, maxLogLines),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			m.withdrawals.Clear()
			m.logs = m.logs[:0]
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TreasuryMsg:
		m.treasury.Update(msg.Address, msg.Connected, msg.NextNonce, msg.BalanceEth)

	case WithdrawalMsg:
		if msg.Success {
			m.confirmed++
		} else {
			m.failed++
		}
		m.withdrawals.Add(components.WithdrawalRow{
			Time:      msg.FinishedAt,
			Variant:   msg.Variant,
			Success:   msg.Success,
			AmountEth: msg.AmountEth,
			TxHash:    msg.TxHash,
			Error:     msg.Error,
		})

	case LogMsg:
		line := fmt.Sprintf("%s [%s] %s", time.Now().Format("15:04:05"), msg.Level, msg.Message)
		m.logs = append(m.logs, line)
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}

	case TickMsg:
		return m, tick()
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	title := TitleStyle.Render("TREASURY BOT")
	stats := MutedValue.Render(fmt.Sprintf("  confirmed: %d  failed: %d", m.confirmed, m.failed))
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, stats)

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(BoxStyle.Render(m.treasury.View()))
	b.WriteString("\n")
	b.WriteString(BoxStyle.Render(m.withdrawals.View()))

	if len(m.logs) > 0 {
		b.WriteString("\n")
		b.WriteString(BoxStyle.Render(HeaderStyle.Render("LOG") + "\n  " + strings.Join(m.logs, "\n  ")))
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("q quit · c clear · ? help"))
	b.WriteString("\n")

	return b.String()
}
