package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 120 * time.Millisecond

// renderScanningPlaceholder renders the animated indicator shown while
// hardware is being enumerated.
func renderScanningPlaceholder(frame, width, height int) string {
	glyph := spinnerFrames[frame%len(spinnerFrames)]

	loadingStyle := lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true)

	text := loadingStyle.Render(glyph + " Scanning sensors...")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text)
}

// SpinnerTickMsg advances the scanning spinner.
type SpinnerTickMsg struct{}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(_ time.Time) tea.Msg {
		return SpinnerTickMsg{}
	})
}

// handleSpinnerTick re-schedules spinner ticks until the source is ready.
func (m *DashboardModel) handleSpinnerTick() tea.Cmd {
	if !m.scanning {
		m.spinning = false
		return nil
	}
	m.spinnerFrame++
	return spinnerTick()
}
