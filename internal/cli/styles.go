package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"saldo/internal/aggregate"
	"saldo/internal/app"
	"saldo/internal/core"
)

var (
	PrimaryColor = lipgloss.Color("#FF6B6B")
	SuccessColor = lipgloss.Color("#4ECDC4")
	WarningColor = lipgloss.Color("#FFE66D")
	ErrorColor   = lipgloss.Color("#FF6B6B")
	SubtleColor  = lipgloss.Color("#666666")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)

	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

	// Income is green and expenses red in every listing.
	IncomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	ExpenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

const (
	SuccessIcon = "✓"
	WarningIcon = "⚠"
	ErrorIcon   = "✗"
)

// FormatNotice renders a notice with the icon and colour of its kind.
func FormatNotice(n app.Notice) string {
	switch n.Kind {
	case app.NoticeWarning:
		return WarningStyle.Render(WarningIcon + " " + n.Message)
	case app.NoticeError:
		return ErrorStyle.Render(ErrorIcon + " " + n.Message)
	default:
		return SuccessStyle.Render(SuccessIcon + " " + n.Message)
	}
}

func FormatTitle(title string) string {
	return TitleStyle.Render(title)
}

// FormatAmount colours a signed amount by its type.
func FormatAmount(m core.Money, symbol string) string {
	s := m.Format(symbol)
	if m.IsNegative() {
		return ExpenseStyle.Render(s)
	}
	return IncomeStyle.Render(s)
}

const barWidth = 20

// Bar draws a progress bar for percent in [0, 100].
func Bar(percent float64, style lipgloss.Style) string {
	filled := int(percent / 100 * barWidth)
	filled = min(max(filled, 0), barWidth)
	return style.Render(strings.Repeat("█", filled)) +
		SubtleStyle.Render(strings.Repeat("░", barWidth-filled))
}

// BudgetBar colours the progress bar by budget level.
func BudgetBar(st aggregate.Status) string {
	style := SuccessStyle
	switch st.Level {
	case aggregate.LevelNone:
		return SubtleStyle.Render("no budget")
	case aggregate.LevelWarning:
		style = WarningStyle
	case aggregate.LevelOver:
		style = ErrorStyle
	}
	return fmt.Sprintf("%s %3.0f%%", Bar(st.Progress, style), st.Progress)
}
