package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the dashboard.
func (m *DashboardModel) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return "Initializing dashboard..."
	}
	if m.scanning {
		return renderScanningPlaceholder(m.spinnerFrame, width, height)
	}
	if !m.detailVisible {
		return m.renderTooltipOnly(width, height)
	}
	if height < 20 || width < 60 {
		return "Terminal too small. Resize to at least 60x20."
	}
	return m.renderDashboard(width, height)
}

// renderTooltipOnly is the collapsed view: just the tooltip, centred.
func (m *DashboardModel) renderTooltipOnly(width, height int) string {
	text := m.tooltip
	if text == "" {
		text = "waiting for first sample"
	}
	box := detailStyle.Render(text)
	hint := helpStyle.Render("d: show detail  q: quit")
	block := lipgloss.JoinVertical(lipgloss.Center, box, hint)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, block)
}

func (m *DashboardModel) renderDashboard(width, height int) string {
	detail := m.renderDetailPanel(width)
	decksH := height - lipgloss.Height(detail) - statusLineHeight
	decks, hidden := m.renderDecksGrid(width, decksH)
	status := m.renderStatusLine(width, hidden)

	return lipgloss.NewStyle().
		Width(width).
		MaxWidth(width).
		Height(height).
		MaxHeight(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, detail, decks, status))
}

// renderDetailPanel shows the four-line readout above the charts.
func (m *DashboardModel) renderDetailPanel(width int) string {
	var body string
	if m.hasDetail {
		body = strings.Join(m.detail.Lines(), "\n")
	} else {
		body = helpStyle.Render("…")
	}
	if m.sourceErr != nil {
		warn := lipgloss.NewStyle().Foreground(ColorRed).Render("no sensors found")
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, "    ", warn)
	}
	return detailStyle.
		Width(max(1, width-deckBorder)).
		Height(detailPanelHeight - deckBorder).
		Render(body)
}

func (m *DashboardModel) renderStatusLine(width, hiddenTiles int) string {
	left := windowTitle(m.tooltip)
	right := fmt.Sprintf("frame %d", m.frames)
	if !m.lastFrameAt.IsZero() {
		right += " @ " + m.lastFrameAt.Format("15:04:05")
	}
	if hiddenTiles > 0 {
		right = fmt.Sprintf("+%d tiles hidden  %s", hiddenTiles, right)
	}
	right += "  " + m.help.View(m.keys)

	inner := width - 2
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	line := left + strings.Repeat(" ", max(1, gap)) + right
	return statusStyle.Width(width).MaxWidth(width).Render(line)
}
