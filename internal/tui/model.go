package tui

import (
	"context"
	"strings"
	"time"

	"github.com/tinytelemetry/thermotray/internal/model"
	"github.com/tinytelemetry/thermotray/internal/readout"
	"github.com/tinytelemetry/thermotray/internal/sampler"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
)

// DashboardOptions configures a new dashboard.
type DashboardOptions struct {
	// Context bounds frame waits. Defaults to context.Background().
	Context context.Context
	// TileWidth is the outer width of one per-core tile, in cells.
	TileWidth     int
	DetailVisible bool
}

// DashboardModel is the live view of the sampler. It implements
// model.DisplaySink; frames are applied through sampler.Deliver on the
// bubbletea goroutine.
type DashboardModel struct {
	ctx  context.Context
	keys KeyMap
	help help.Model

	width     int
	height    int
	tileWidth int

	scanning     bool
	spinning     bool
	spinnerFrame int
	sourceErr    error

	mailbox       *sampler.Mailbox
	toggler       DetailToggler
	detailVisible bool

	tooltip   string
	title     string
	detail    model.DetailText
	hasDetail bool

	totals        []*TotalsDeck
	tiles         []*TileDeck
	byKey         map[model.SeriesKey]Deck
	activeDeckIdx int

	frames      uint64
	lastFrameAt time.Time
}

var _ model.DisplaySink = (*DashboardModel)(nil)

const dashboardPageID = "dashboard"

// NewDashboardModel creates a dashboard in the scanning state.
func NewDashboardModel(opts DashboardOptions) *DashboardModel {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tileWidth := opts.TileWidth
	if tileWidth <= 0 {
		tileWidth = 28
	}

	m := &DashboardModel{
		ctx:           ctx,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		tileWidth:     tileWidth,
		scanning:      true,
		detailVisible: opts.DetailVisible,
		byKey:         make(map[model.SeriesKey]Deck),
	}
	for _, class := range model.Classes {
		name := strings.ToUpper(class.String())
		m.addTotals(NewTotalsDeck(model.TotalLoadKey(class), name+" Load", false))
		m.addTotals(NewTotalsDeck(model.TotalTempKey(class), name+" Temp", true))
	}
	return m
}

func (m *DashboardModel) addTotals(d *TotalsDeck) {
	m.totals = append(m.totals, d)
	m.byKey[d.Key()] = d
}

func (m *DashboardModel) addTile(d *TileDeck) {
	m.tiles = append(m.tiles, d)
	m.byKey[d.Key()] = d
}

// decks returns totals followed by tiles, the order used for focus.
func (m *DashboardModel) decks() []Deck {
	out := make([]Deck, 0, len(m.totals)+len(m.tiles))
	for _, d := range m.totals {
		out = append(out, d)
	}
	for _, d := range m.tiles {
		out = append(out, d)
	}
	return out
}

func (m *DashboardModel) ID() string { return dashboardPageID }

// UpdateTooltip implements model.DisplaySink.
func (m *DashboardModel) UpdateTooltip(text string) {
	m.tooltip = text
}

// UpdateDetailText implements model.DisplaySink.
func (m *DashboardModel) UpdateDetailText(d model.DetailText) {
	m.detail = d
	m.hasDetail = true
}

// UpdateSeries implements model.DisplaySink. Unknown keys get a tile.
func (m *DashboardModel) UpdateSeries(key model.SeriesKey, snapshot []float64, status model.SeriesStatus) {
	d, ok := m.byKey[key]
	if !ok {
		t := NewTileDeck(key, string(key))
		m.addTile(t)
		d = t
	}
	d.Apply(snapshot, status)
}

// ensureTiles creates tiles for unit series the dashboard has not seen yet,
// using the labels the frame carries.
func (m *DashboardModel) ensureTiles(f sampler.Frame) {
	for _, s := range f.Series {
		if _, ok := m.byKey[s.Key]; ok {
			continue
		}
		m.addTile(NewTileDeck(s.Key, s.Label))
	}
}

// applyFrame delivers one frame and returns the commands that follow it:
// the next frame wait and, when the tooltip changed, a window title update.
func (m *DashboardModel) applyFrame(f sampler.Frame) tea.Cmd {
	// Frames built before the detail view was hidden still carry text.
	if !m.detailVisible {
		f.Detail = nil
	}
	m.ensureTiles(f)
	sampler.Deliver(f, m)
	for _, s := range f.Series {
		if d, ok := m.byKey[s.Key].(*TotalsDeck); ok {
			d.Rescale(s.Min, s.Max)
		}
	}
	m.frames++
	m.lastFrameAt = f.At

	var cmds []tea.Cmd
	if title := windowTitle(m.tooltip); title != m.title {
		m.title = title
		cmds = append(cmds, tea.SetWindowTitle(title))
	}
	if m.mailbox != nil {
		cmds = append(cmds, waitForFrame(m.ctx, m.mailbox))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// windowTitle folds the two-line tooltip into a single title line.
func windowTitle(tooltip string) string {
	if tooltip == "" {
		return "thermotray"
	}
	return strings.ReplaceAll(tooltip, "\n", "  ")
}

// setDetailVisible flips the detail view and tells the sampler, so hidden
// detail text is never formatted. Reopening rebuilds the panel from the
// last frame's totals instead of waiting for the next tick.
func (m *DashboardModel) setDetailVisible(v bool) {
	m.detailVisible = v
	m.hasDetail = false
	if v && m.frames > 0 {
		m.detail = readout.Detail(m.totalLast(1), m.totalLast(3), m.totalLast(0), m.totalLast(2))
		m.hasDetail = true
	}
	if m.toggler != nil {
		m.toggler.SetDetailVisible(v)
	}
}

// totalLast returns the newest value of the i-th totals deck.
func (m *DashboardModel) totalLast(i int) float64 {
	v, _ := m.totals[i].last()
	return v
}

// DetailVisible reports whether the detail view is shown.
func (m *DashboardModel) DetailVisible() bool { return m.detailVisible }

// Tooltip returns the most recent tooltip text.
func (m *DashboardModel) Tooltip() string { return m.tooltip }
