// Package ui renders run summaries and tables for the terminal.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#0969DA")
	accentColor  = lipgloss.Color("#2DA44E")
	warningColor = lipgloss.Color("#D29922")
	errorColor   = lipgloss.Color("#CF222E")
	dimColor     = lipgloss.Color("#6E7681")
	tickerColor  = lipgloss.Color("#FFA657")

	TitleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			Width(20)

	ValueStyle = lipgloss.NewStyle().
			Bold(true)

	TickerStyle = lipgloss.NewStyle().
			Foreground(tickerColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	BoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)
)
