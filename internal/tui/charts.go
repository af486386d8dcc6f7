package tui

import (
	"fmt"
	"strings"

	"github.com/tinytelemetry/thermotray/internal/model"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"
	"github.com/charmbracelet/lipgloss"
)

// TotalsDeck draws a class-wide load or temperature series as a streaming
// line chart.
type TotalsDeck struct {
	key   model.SeriesKey
	title string
	temp  bool
	axis  *AxisScaler
	deckState
}

// NewTotalsDeck creates a deck for a total series. Temperature decks scale
// their Y axis adaptively; load decks are fixed to 0..100.
func NewTotalsDeck(key model.SeriesKey, title string, temp bool) *TotalsDeck {
	d := &TotalsDeck{key: key, title: title, temp: temp}
	if temp {
		d.axis = NewAxisScaler()
	}
	return d
}

func (d *TotalsDeck) ID() string           { return string(d.key) }
func (d *TotalsDeck) Title() string        { return d.title }
func (d *TotalsDeck) Key() model.SeriesKey { return d.key }

func (d *TotalsDeck) Apply(values []float64, status model.SeriesStatus) {
	d.apply(values, status)
}

// Rescale feeds the frame's raw extent into the adaptive axis.
func (d *TotalsDeck) Rescale(rawMin, rawMax float64) {
	if d.axis != nil {
		d.axis.Update(rawMin, rawMax)
	}
}

func (d *TotalsDeck) ContentLines(ctx ViewContext) int {
	if ctx.Compact {
		return 4
	}
	return 8
}

func (d *TotalsDeck) yRange() (float64, float64) {
	if d.axis != nil {
		if lo, hi := d.axis.Range(); hi > lo {
			return lo, hi
		}
		return model.TempPrefill - model.AxisMinSpan/2, model.TempPrefill + model.AxisMinSpan/2
	}
	return 0, 100
}

func (d *TotalsDeck) headerText(width int) string {
	left := d.title + statusBadge(d.status)
	cur, ok := d.last()
	if !ok || d.status == model.StatusUnavailable {
		return left
	}

	unit := "%"
	format := "%.0f"
	if d.temp {
		unit = "°F"
		format = "%.1f"
	}
	lo, hi, _ := d.extent()
	right := fmt.Sprintf(format+unit+"  min "+format+" max "+format, cur, lo, hi)

	spacer := width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if spacer <= 0 {
		return left
	}
	return left + strings.Repeat(" ", spacer) + right
}

// Render draws the deck. width and height are the size inside the border.
func (d *TotalsDeck) Render(ctx ViewContext, width, height int, active bool) string {
	style := sectionStyle.Width(width).Height(height)
	if active {
		style = activeSectionStyle.Width(width).Height(height)
	}

	title := chartTitleStyle.Render(d.headerText(width))
	if d.status == model.StatusUnavailable {
		msg := helpStyle.Render("sensor unavailable")
		return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, msg))
	}

	chartW := max(10, width-2)
	chartH := max(3, height-1)
	lo, hi := d.yRange()

	cur, _ := d.last()
	lineStyle := lipgloss.NewStyle().Foreground(seriesColor(cur, d.temp))
	if d.status == model.StatusStale {
		lineStyle = staleStyle
	}

	chart := streamlinechart.New(chartW, chartH,
		streamlinechart.WithYRange(lo, hi),
		streamlinechart.WithStyles(runes.ArcLineStyle, lineStyle),
	)
	for _, v := range d.values {
		chart.Push(min(hi, max(lo, v)))
	}
	chart.Draw()

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, chart.View()))
}
