package sampler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tinytelemetry/thermotray/internal/model"
)

// SeriesFrame is an immutable copy of one series taken at the end of a tick.
type SeriesFrame struct {
	Key    model.SeriesKey
	Label  string
	Class  model.DeviceClass
	Values []float64
	Status model.SeriesStatus
	// Min and Max are the raw extent of Values.
	Min, Max float64
}

// Frame carries everything one tick produced. Consumers apply a frame as a
// whole, so no display ever mixes samples from different ticks.
type Frame struct {
	Seq     uint64
	At      time.Time
	Tooltip string
	// Detail is nil while the detail view is hidden.
	Detail *model.DetailText
	Series []SeriesFrame
}

// Lookup returns the series with the given key.
func (f Frame) Lookup(key model.SeriesKey) (SeriesFrame, bool) {
	for _, s := range f.Series {
		if s.Key == key {
			return s, true
		}
	}
	return SeriesFrame{}, false
}

// Deliver pushes a frame into a DisplaySink in a fixed order: tooltip,
// detail text when present, then every series.
func Deliver(f Frame, sink model.DisplaySink) {
	sink.UpdateTooltip(f.Tooltip)
	if f.Detail != nil {
		sink.UpdateDetailText(*f.Detail)
	}
	for _, s := range f.Series {
		sink.UpdateSeries(s.Key, s.Values, s.Status)
	}
}

// Mailbox is a single-slot, latest-value handoff between the sampler and
// the display. Put never blocks; an unread frame is replaced.
type Mailbox struct {
	mu      sync.Mutex
	ch      chan Frame
	dropped atomic.Uint64
}

func NewMailbox() *Mailbox {
	return &Mailbox{ch: make(chan Frame, 1)}
}

// Put stores f, discarding any frame the consumer has not taken yet.
func (m *Mailbox) Put(f Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.ch:
		m.dropped.Add(1)
	default:
	}
	m.ch <- f
}

// Next blocks until a frame is available or ctx is done.
func (m *Mailbox) Next(ctx context.Context) (Frame, error) {
	select {
	case f := <-m.ch:
		return f, nil
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

// TryNext returns the pending frame without blocking.
func (m *Mailbox) TryNext() (Frame, bool) {
	select {
	case f := <-m.ch:
		return f, true
	default:
		return Frame{}, false
	}
}

// Dropped counts frames replaced before anyone read them.
func (m *Mailbox) Dropped() uint64 {
	return m.dropped.Load()
}
