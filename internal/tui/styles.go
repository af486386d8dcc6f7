package tui

import (
	"github.com/tinytelemetry/thermotray/internal/model"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorBlue   = lipgloss.Color("39")
	ColorGreen  = lipgloss.Color("42")
	ColorYellow = lipgloss.Color("220")
	ColorOrange = lipgloss.Color("208")
	ColorRed    = lipgloss.Color("196")
	ColorGray   = lipgloss.Color("240")
	ColorWhite  = lipgloss.Color("252")
)

var (
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	activeSectionStyle = sectionStyle.
				BorderForeground(ColorBlue)

	chartTitleStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	statusStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBlue).
			Padding(0, 2)

	staleStyle = lipgloss.NewStyle().Foreground(ColorGray).Faint(true)
)

// seriesColor picks a line colour for a load or temperature value.
func seriesColor(v float64, temp bool) lipgloss.Color {
	if temp {
		switch {
		case v >= 185:
			return ColorRed
		case v >= 160:
			return ColorOrange
		default:
			return ColorGreen
		}
	}
	switch {
	case v >= 90:
		return ColorRed
	case v >= 60:
		return ColorYellow
	default:
		return ColorGreen
	}
}

// statusBadge is appended to deck titles for degraded series.
func statusBadge(s model.SeriesStatus) string {
	switch s {
	case model.StatusStale:
		return " ⏸ stale"
	case model.StatusUnavailable:
		return " n/a"
	default:
		return ""
	}
}
