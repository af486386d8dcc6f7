package tui

import "github.com/tinytelemetry/thermotray/internal/model"

// deckState is the data a deck holds between frames.
type deckState struct {
	values []float64
	status model.SeriesStatus
}

func (s *deckState) apply(values []float64, status model.SeriesStatus) {
	s.values = values
	s.status = status
}

func (s *deckState) last() (float64, bool) {
	if len(s.values) == 0 {
		return 0, false
	}
	return s.values[len(s.values)-1], true
}

func (s *deckState) extent() (lo, hi float64, ok bool) {
	if len(s.values) == 0 {
		return 0, 0, false
	}
	lo, hi = s.values[0], s.values[0]
	for _, v := range s.values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi, true
}
