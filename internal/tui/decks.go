package tui

import (
	"github.com/tinytelemetry/thermotray/internal/model"
)

// Deck is one bordered panel on the dashboard, bound to a single series.
type Deck interface {
	ID() string
	Title() string
	Key() model.SeriesKey
	// Apply receives the newest snapshot for the deck's series.
	Apply(values []float64, status model.SeriesStatus)
	Render(ctx ViewContext, width, height int, active bool) string
	ContentLines(ctx ViewContext) int
}
