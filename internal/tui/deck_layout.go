package tui

import (
	"github.com/tinytelemetry/thermotray/internal/layout"

	"github.com/charmbracelet/lipgloss"
)

const (
	// Each deck adds 2 cells of border on each axis on top of its size.
	deckBorder = 2
	colGap     = 1

	detailPanelHeight = 6
	statusLineHeight  = 1
	minTotalsRow      = 6
)

// totalsColumnCount keeps CPU and GPU on separate rows: load on the left,
// temperature on the right.
func (m *DashboardModel) totalsColumnCount(width int) int {
	if width < 2*(25+deckBorder)+colGap {
		return 1
	}
	return 2
}

// tileColumnCount derives the tile grid from the terminal width.
func (m *DashboardModel) tileColumnCount(width int) int {
	return layout.Columns(width, m.tileWidth)
}

// tileHeight is the outer height of one tile row; every tile is the same size.
func (m *DashboardModel) tileHeight() int {
	var probe TileDeck
	return probe.ContentLines(m.viewContext()) + deckBorder
}

// splitDeckHeight divides height between the totals grid and the tile grid.
// Totals keep at least minTotalsRow per row; tile rows that do not fit are
// dropped and reported as hidden.
func (m *DashboardModel) splitDeckHeight(width, height int) (totalsH, tilesH, hiddenTiles int) {
	totalsRows := layout.Rows(len(m.totals), m.totalsColumnCount(width))
	if len(m.tiles) == 0 {
		return height, 0, 0
	}

	cols := m.tileColumnCount(width)
	tileRows := layout.Rows(len(m.tiles), cols)
	th := m.tileHeight()

	fit := max(0, (height-totalsRows*minTotalsRow)/th)
	shown := min(tileRows, fit)
	hiddenTiles = max(0, len(m.tiles)-shown*cols)

	tilesH = shown * th
	return height - tilesH, tilesH, hiddenTiles
}

// rowHeights distributes height equally across rows, giving the last row
// any remainder.
func rowHeights(rows, height, minRow int) []int {
	if rows <= 0 {
		return nil
	}
	perRow := max(minRow, height/rows)
	out := make([]int, rows)
	for i := range out {
		out[i] = perRow
	}
	out[rows-1] = max(minRow, height-perRow*(rows-1))
	return out
}

// renderGrid lays decks out in cols columns. offset is the focus index of
// decks[0] so the active deck can be highlighted.
func (m *DashboardModel) renderGrid(decks []Deck, offset, cols, width int, heights []int) string {
	if len(decks) == 0 || len(heights) == 0 {
		return ""
	}

	deckWidth := width - deckBorder
	if cols > 1 {
		deckWidth = (width - colGap*(cols-1) - cols*deckBorder) / cols
	}
	deckWidth = max(4, deckWidth)

	ctx := m.viewContext()
	renderedRows := make([]string, 0, len(heights))
	for row, h := range heights {
		innerH := max(1, h-deckBorder)
		rowDecks := make([]string, 0, cols*2)
		for col := 0; col < cols; col++ {
			idx := row*cols + col
			if idx >= len(decks) {
				break
			}
			if col > 0 {
				rowDecks = append(rowDecks, " ")
			}
			active := m.activeDeckIdx == offset+idx
			rowDecks = append(rowDecks, decks[idx].Render(ctx, deckWidth, innerH, active))
		}
		if len(rowDecks) == 0 {
			break
		}
		renderedRows = append(renderedRows, lipgloss.JoinHorizontal(lipgloss.Top, rowDecks...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, renderedRows...)
}

// renderDecksGrid renders the totals charts above the per-core tiles.
func (m *DashboardModel) renderDecksGrid(width, height int) (string, int) {
	if width < 20 {
		return "Terminal too narrow", 0
	}

	totalsH, tilesH, hidden := m.splitDeckHeight(width, height)

	totalsCols := m.totalsColumnCount(width)
	totals := make([]Deck, len(m.totals))
	for i, d := range m.totals {
		totals[i] = d
	}
	sections := []string{
		m.renderGrid(totals, 0, totalsCols, width,
			rowHeights(layout.Rows(len(totals), totalsCols), totalsH, minTotalsRow)),
	}

	if tilesH > 0 {
		tiles := make([]Deck, len(m.tiles))
		for i, d := range m.tiles {
			tiles[i] = d
		}
		th := m.tileHeight()
		heights := make([]int, tilesH/th)
		for i := range heights {
			heights[i] = th
		}
		sections = append(sections,
			m.renderGrid(tiles, len(m.totals), m.tileColumnCount(width), width, heights))
	}

	result := lipgloss.JoinVertical(lipgloss.Left, sections...)

	constrained := lipgloss.NewStyle().
		Height(height).
		MaxHeight(height).
		Width(width).
		MaxWidth(width)

	return constrained.Render(result), hidden
}
