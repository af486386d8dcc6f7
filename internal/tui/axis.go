package tui

import "github.com/tinytelemetry/thermotray/internal/model"

// AxisScaler smooths a chart's Y range between frames so the axis does not
// jump on every sample. Growth to fit new data is immediate; shrinking
// eases in by Alpha per update.
type AxisScaler struct {
	Alpha   float64
	Padding float64
	MinSpan float64

	lo, hi float64
	primed bool
}

// NewAxisScaler returns a scaler with the dashboard's default constants.
func NewAxisScaler() *AxisScaler {
	return &AxisScaler{
		Alpha:   model.AxisSmoothing,
		Padding: model.AxisPadding,
		MinSpan: model.AxisMinSpan,
	}
}

// Update folds in the raw extent of the latest snapshot and returns the
// range to draw.
func (a *AxisScaler) Update(rawMin, rawMax float64) (lo, hi float64) {
	targetLo := rawMin - a.Padding
	targetHi := rawMax + a.Padding

	if !a.primed {
		a.lo, a.hi = targetLo, targetHi
		a.primed = true
	} else {
		if targetLo < a.lo {
			a.lo = targetLo
		} else {
			a.lo += a.Alpha * (targetLo - a.lo)
		}
		if targetHi > a.hi {
			a.hi = targetHi
		} else {
			a.hi += a.Alpha * (targetHi - a.hi)
		}
	}

	if span := a.hi - a.lo; span < a.MinSpan {
		mid := (a.lo + a.hi) / 2
		a.lo = mid - a.MinSpan/2
		a.hi = mid + a.MinSpan/2
	}
	return a.lo, a.hi
}

// Range returns the last computed range.
func (a *AxisScaler) Range() (lo, hi float64) {
	return a.lo, a.hi
}
