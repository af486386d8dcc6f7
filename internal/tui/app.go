package tui

import tea "github.com/charmbracelet/bubbletea"

// App is the top-level Bubble Tea model that routes between pages.
type App struct {
	pages      map[string]Page
	order      []string
	activePage string
	width      int
	height     int
}

// NewApp creates a new App with the given pages. The first page is the default.
func NewApp(pages ...Page) *App {
	a := &App{pages: make(map[string]Page, len(pages))}
	for i, p := range pages {
		a.pages[p.ID()] = p
		a.order = append(a.order, p.ID())
		if i == 0 {
			a.activePage = p.ID()
		}
	}
	return a
}

func (a *App) Init() tea.Cmd {
	if p, ok := a.pages[a.activePage]; ok {
		return p.Init()
	}
	return nil
}

// Update sends key presses to the active page only. Every other message
// reaches all pages, so the dashboard keeps consuming frames behind the
// help page.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		a.width = wsm.Width
		a.height = wsm.Height
	}

	if _, isKey := msg.(tea.KeyMsg); isKey {
		p, ok := a.pages[a.activePage]
		if !ok {
			return a, nil
		}
		cmd, nav := p.Update(msg)
		return a, a.navigate(cmd, nav)
	}

	cmds := make([]tea.Cmd, 0, len(a.order))
	for _, id := range a.order {
		cmd, _ := a.pages[id].Update(msg)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

func (a *App) navigate(cmd tea.Cmd, nav *PageNav) tea.Cmd {
	if nav == nil {
		return cmd
	}
	next, exists := a.pages[nav.PageID]
	if !exists {
		return cmd
	}
	a.activePage = nav.PageID
	return tea.Batch(cmd, next.Init())
}

// NewDashboardApp builds the App with the dashboard as its first page and
// the help page behind it.
func NewDashboardApp(opts DashboardOptions) (*App, *DashboardModel) {
	dash := NewDashboardModel(opts)
	return NewApp(dash, NewHelpPage()), dash
}

// ActivePage returns the ID of the page being shown.
func (a *App) ActivePage() string { return a.activePage }

func (a *App) View() string {
	if p, ok := a.pages[a.activePage]; ok {
		return p.View(a.width, a.height)
	}
	return "No active page"
}
