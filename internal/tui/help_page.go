package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const helpPageID = "help"

const helpText = `thermotray shows live CPU and GPU load and temperature.

The top panel is the detail readout. Below it, the load charts are
fixed to 0-100%; temperature charts rescale to recent readings.
Each tile is one CPU core or GPU engine.

A dimmed chart marked "stale" missed its last reading or lost its
sensor after a hardware change. "n/a" means the sensor has failed
repeatedly and is reported as zero until it recovers.`

// HelpPage lists key bindings and explains the dashboard.
type HelpPage struct {
	keys KeyMap
	help help.Model
}

func NewHelpPage() *HelpPage {
	h := help.New()
	h.ShowAll = true
	return &HelpPage{keys: DefaultKeyMap(), help: h}
}

func (p *HelpPage) ID() string    { return helpPageID }
func (p *HelpPage) Init() tea.Cmd { return nil }

func (p *HelpPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, nil
	}
	switch {
	case key.Matches(km, p.keys.ForceQuit):
		return tea.Quit, nil
	case key.Matches(km, p.keys.Escape), key.Matches(km, p.keys.Help), key.Matches(km, p.keys.Quit):
		return nil, &PageNav{PageID: dashboardPageID}
	}
	return nil, nil
}

func (p *HelpPage) View(width, height int) string {
	header := lipgloss.NewStyle().
		Foreground(ColorBlue).
		Bold(true).
		Render("Help")

	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		helpText,
		"",
		p.help.View(p.keys),
		"",
		helpStyle.Render("esc/?: back"),
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBlue).
		Padding(1, 2).
		MaxWidth(max(1, width)).
		Render(body)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
