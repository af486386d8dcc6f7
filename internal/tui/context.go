package tui

// ViewContext provides read-only context to decks for rendering, replacing
// direct access to *DashboardModel.
type ViewContext struct {
	ContentWidth  int
	ContentHeight int
	// Compact is set when there is only room for a one-line summary per deck.
	Compact bool
}

// viewContext builds the context decks render against.
func (m *DashboardModel) viewContext() ViewContext {
	return ViewContext{
		ContentWidth:  m.width,
		ContentHeight: m.height,
		Compact:       m.height < 30,
	}
}
