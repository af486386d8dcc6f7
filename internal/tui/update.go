package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Init starts the scanning spinner. Returning to the dashboard from another
// page does not start a second spinner chain.
func (m *DashboardModel) Init() tea.Cmd {
	if m.scanning && !m.spinning {
		m.spinning = true
		return spinnerTick()
	}
	return nil
}

// Update handles messages
func (m *DashboardModel) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case SpinnerTickMsg:
		return m.handleSpinnerTick(), nil

	case SourceReadyMsg:
		return m.handleSourceReady(msg), nil

	case frameMsg:
		return m.applyFrame(msg.frame), nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}
	return nil, nil
}

func (m *DashboardModel) handleSourceReady(msg SourceReadyMsg) tea.Cmd {
	m.scanning = false
	m.sourceErr = msg.Err
	m.mailbox = msg.Frames
	m.toggler = msg.Toggler
	if m.toggler != nil {
		m.toggler.SetDetailVisible(m.detailVisible)
	}
	if m.mailbox == nil {
		return nil
	}
	return waitForFrame(m.ctx, m.mailbox)
}

func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Cmd, *PageNav) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit), key.Matches(msg, m.keys.Quit):
		return tea.Quit, nil

	case key.Matches(msg, m.keys.Help):
		return nil, &PageNav{PageID: helpPageID}

	case key.Matches(msg, m.keys.ToggleDetail):
		m.setDetailVisible(!m.detailVisible)

	case key.Matches(msg, m.keys.NextDeck):
		if n := len(m.decks()); n > 0 {
			m.activeDeckIdx = (m.activeDeckIdx + 1) % n
		}

	case key.Matches(msg, m.keys.PrevDeck):
		if n := len(m.decks()); n > 0 {
			m.activeDeckIdx = (m.activeDeckIdx - 1 + n) % n
		}

	case key.Matches(msg, m.keys.Escape):
		m.activeDeckIdx = 0
	}
	return nil, nil
}
