package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table palette: cream on baize, brass for the dealer and anything that
// needs a decision.
const (
	baize = lipgloss.Color("#0B5D3B")
	cream = lipgloss.Color("#F4EBD0")
	brass = lipgloss.Color("#D4A537")
	ruby  = lipgloss.Color("#E0474C")
	ink   = lipgloss.Color("#E8E8E8")
	slate = lipgloss.Color("#7A8B84")
	mint  = lipgloss.Color("#5FD38D")
)

var (
	// RoomBannerStyle labels the room code like a table placard.
	RoomBannerStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(baize).
			Bold(true).
			Padding(0, 1)

	DealerStyle = lipgloss.NewStyle().
			Foreground(brass).
			Bold(true)

	RedSuitStyle = lipgloss.NewStyle().
			Foreground(ruby).
			Bold(true)

	BlackSuitStyle = lipgloss.NewStyle().
			Foreground(ink).
			Bold(true)

	// HoleCardStyle draws a face down card as a card back.
	HoleCardStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(lipgloss.Color("#7A1F2B"))

	ChipStyle = lipgloss.NewStyle().
			Foreground(brass)

	TurnMarkerStyle = lipgloss.NewStyle().
			Foreground(mint).
			Bold(true)

	WinStyle = lipgloss.NewStyle().
			Foreground(mint).
			Bold(true)

	PushStyle = lipgloss.NewStyle().
			Foreground(cream)

	LossStyle = lipgloss.NewStyle().
			Foreground(ruby)

	// SideBetStyle marks insurance and surrenders.
	SideBetStyle = lipgloss.NewStyle().
			Foreground(brass).
			Italic(true)

	DecisionStyle = lipgloss.NewStyle().
			Foreground(brass).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(slate)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ruby).
			Bold(true)
)

// resultStyle picks the colour for a settled hand such as "Win +50".
func resultStyle(result string) lipgloss.Style {
	switch {
	case strings.HasPrefix(result, "Win"), strings.HasPrefix(result, "Blackjack"):
		return WinStyle
	case strings.HasPrefix(result, "Push"):
		return PushStyle
	default:
		return LossStyle
	}
}
