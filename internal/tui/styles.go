package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/goastro/indigo/internal/protocol"
)

// Color palette for the monitor UI
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	OkColor      = lipgloss.Color("#43BF6D") // Green - Ok state
	BusyColor    = lipgloss.Color("#FFA500") // Orange - Busy state
	AlertColor   = lipgloss.Color("#FF5555") // Red - Alert state
	MutedColor   = lipgloss.Color("#626262") // Gray - Idle state, secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
)

// Shared styles for the monitor UI
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true).
			PaddingLeft(2)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingLeft(2)

	DeviceStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	GroupStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	PropertyStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	ItemStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	MessageStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)
)

// State markers
const (
	MarkerOk    = "✓"
	MarkerBusy  = "●"
	MarkerAlert = "✗"
	MarkerIdle  = "·"
)

// StateStyle returns the display style for a property state
func StateStyle(state protocol.PropertyState) lipgloss.Style {
	switch state {
	case protocol.StateOk:
		return lipgloss.NewStyle().Foreground(OkColor)
	case protocol.StateBusy:
		return lipgloss.NewStyle().Foreground(BusyColor)
	case protocol.StateAlert:
		return lipgloss.NewStyle().Foreground(AlertColor)
	default:
		return lipgloss.NewStyle().Foreground(MutedColor)
	}
}

// StateMarker returns the glyph for a property state
func StateMarker(state protocol.PropertyState) string {
	switch state {
	case protocol.StateOk:
		return MarkerOk
	case protocol.StateBusy:
		return MarkerBusy
	case protocol.StateAlert:
		return MarkerAlert
	default:
		return MarkerIdle
	}
}

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// IsTerminal reports whether stdout is an interactive terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
