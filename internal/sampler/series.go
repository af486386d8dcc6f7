package sampler

import (
	"github.com/tinytelemetry/thermotray/internal/model"
	"github.com/tinytelemetry/thermotray/internal/window"
)

// Series is one named metric with its rolling window. Only the scheduler's
// tick goroutine touches a Series.
type Series struct {
	Key    model.SeriesKey
	Label  string
	Class  model.DeviceClass
	buf    *window.Buffer
	status model.SeriesStatus
}

func newSeries(key model.SeriesKey, label string, class model.DeviceClass, capacity int, prefill float64) *Series {
	return &Series{
		Key:   key,
		Label: label,
		Class: class,
		buf:   window.New(capacity, prefill),
	}
}

func (s *Series) push(v float64, status model.SeriesStatus) {
	s.buf.Push(v)
	s.status = status
}

func (s *Series) last() float64 {
	v, _ := s.buf.Last()
	return v
}

func (s *Series) frame() SeriesFrame {
	lo, hi, _ := s.buf.MinMax()
	return SeriesFrame{
		Key:    s.Key,
		Label:  s.Label,
		Class:  s.Class,
		Values: s.buf.Snapshot(),
		Status: s.status,
		Min:    lo,
		Max:    hi,
	}
}

// family groups every series fed by one device class. Failures are tracked
// per family so a GPU fault never stalls CPU series.
type family struct {
	class    model.DeviceClass
	temp     *Series
	load     *Series
	units    []*Series
	handles  []model.SensorHandle
	failures int
	// topologyStale is set once the live sensor set stops matching handles.
	topologyStale bool
}

func (f *family) all() []*Series {
	out := make([]*Series, 0, 2+len(f.units))
	out = append(out, f.load, f.temp)
	return append(out, f.units...)
}

func (f *family) mark(status model.SeriesStatus) {
	for _, s := range f.all() {
		s.status = status
	}
}
