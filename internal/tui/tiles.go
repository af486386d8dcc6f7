package tui

import (
	"fmt"

	"github.com/tinytelemetry/thermotray/internal/model"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/lipgloss"
)

// TileDeck is a small sparkline for one core or GPU engine.
type TileDeck struct {
	key   model.SeriesKey
	label string
	deckState
}

func NewTileDeck(key model.SeriesKey, label string) *TileDeck {
	return &TileDeck{key: key, label: label}
}

func (d *TileDeck) ID() string           { return string(d.key) }
func (d *TileDeck) Title() string        { return d.label }
func (d *TileDeck) Key() model.SeriesKey { return d.key }

func (d *TileDeck) Apply(values []float64, status model.SeriesStatus) {
	d.apply(values, status)
}

func (d *TileDeck) ContentLines(ctx ViewContext) int {
	if ctx.Compact {
		return 1
	}
	return 3
}

func (d *TileDeck) Render(ctx ViewContext, width, height int, active bool) string {
	style := sectionStyle.Width(width).Height(height)
	if active {
		style = activeSectionStyle.Width(width).Height(height)
	}

	cur, _ := d.last()
	head := d.label + statusBadge(d.status)
	if d.status != model.StatusUnavailable {
		head = fmt.Sprintf("%s %3.0f%%", head, cur)
	}
	title := chartTitleStyle.Render(truncate(head, width-2))

	if ctx.Compact || d.status == model.StatusUnavailable {
		return style.Render(title)
	}

	lineStyle := lipgloss.NewStyle().Foreground(seriesColor(cur, false))
	if d.status == model.StatusStale {
		lineStyle = staleStyle
	}

	w := max(4, width-2)
	values := d.values
	if len(values) > w {
		values = values[len(values)-w:]
	}
	sl := sparkline.New(w, max(1, height-1),
		sparkline.WithMaxValue(100),
		sparkline.WithStyle(lineStyle),
	)
	sl.PushAll(values)
	sl.Draw()

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, sl.View()))
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
