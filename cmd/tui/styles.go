package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette for the TUI
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Violet
	secondaryColor = lipgloss.Color("#10B981") // Emerald
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	successColor   = lipgloss.Color("#22C55E") // Green

	fgColor     = lipgloss.Color("#CDD6F4") // Light foreground
	mutedColor  = lipgloss.Color("#6C7086") // Muted text
	borderColor = lipgloss.Color("#45475A") // Border
)

// subtitleStyle creates the subtitle/description style
var subtitleStyle = lipgloss.NewStyle().
	Foreground(mutedColor).
	Italic(true)

// helpStyle creates the style for help text at the bottom
var helpStyle = lipgloss.NewStyle().
	Foreground(mutedColor).
	MarginTop(1)

// boxStyle creates a bordered box style
var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(borderColor).
	Padding(1, 2)

var messageStyle = lipgloss.NewStyle().
	Foreground(fgColor).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(secondaryColor).
	PaddingLeft(1)

var successStyle = lipgloss.NewStyle().
	Foreground(successColor).
	Bold(true)

var errorStyle = lipgloss.NewStyle().
	Foreground(errorColor).
	Bold(true)

// headerStyle creates the header/banner style
var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(fgColor).
	Background(primaryColor).
	Padding(0, 2).
	MarginBottom(1)

var inputLabelStyle = lipgloss.NewStyle().
	Foreground(secondaryColor).
	Bold(true)

var progressStyle = lipgloss.NewStyle().
	Foreground(accentColor)
