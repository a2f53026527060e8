package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Kelp green for branding.
const kelpGreen = "#2E8B57"

// Styles contains all lipgloss styles for the TUI.
type Styles struct {
	Banner        lipgloss.Style
	User          lipgloss.Style
	Assistant     lipgloss.Style
	System        lipgloss.Style
	Error         lipgloss.Style
	Separator     lipgloss.Style
	StatusBar     lipgloss.Style
	Indicator     lipgloss.Style // Version indicator under the selected message
	SelectedRow   lipgloss.Style // Cursor row in transcript and browser
	CurrentMark   lipgloss.Style // Marker for the current version
	Dialog        lipgloss.Style // Version browser frame
	DialogTitle   lipgloss.Style
	DiffInsert    lipgloss.Style
	DiffDelete    lipgloss.Style
	Warning       lipgloss.Style // Edit branch warning
	Muted         lipgloss.Style // Timestamps, counts
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Banner:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(kelpGreen)),
		User:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Assistant:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		System:      lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Separator:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		StatusBar:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Indicator:   lipgloss.NewStyle().Foreground(lipgloss.Color(kelpGreen)),
		SelectedRow: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")),
		CurrentMark: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(kelpGreen)),
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(kelpGreen)).
			Padding(0, 1),
		DialogTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(kelpGreen)),
		DiffInsert:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		DiffDelete:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Strikethrough(true),
		Warning:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		Muted:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// kelpArt is the startup banner.
var kelpArt = []string{
	" ██╗  ██╗███████╗██╗     ██████╗ ",
	" ██║ ██╔╝██╔════╝██║     ██╔══██╗",
	" █████╔╝ █████╗  ██║     ██████╔╝",
	" ██╔═██╗ ██╔══╝  ██║     ██╔═══╝ ",
	" ██║  ██╗███████╗███████╗██║     ",
	" ╚═╝  ╚═╝╚══════╝╚══════╝╚═╝     ",
}

// RenderBanner returns the KELP ASCII art banner as a styled string.
func (s Styles) RenderBanner() string {
	var b strings.Builder
	for _, line := range kelpArt {
		_, _ = b.WriteString(s.Banner.Render(line))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}

// welcomeTips are shown under the banner.
var welcomeTips = []string{
	"Tips:",
	"  • ↑/↓ select a message, ←/→ step through its versions",
	"  • Press v to browse versions, e to edit a user message",
	"  • Press q to quit",
}

// RenderWelcomeTips returns the styled welcome tips.
func (s Styles) RenderWelcomeTips() string {
	var b strings.Builder
	for _, tip := range welcomeTips {
		_, _ = b.WriteString(s.StatusBar.Render(tip))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}
