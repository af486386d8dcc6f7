package model

import "context"

// SensorSource reads hardware sensors. Open and Update may block on I/O and
// must not be called from the UI goroutine. Reads between two Update calls
// observe the same cached refresh.
type SensorSource interface {
	// Open enumerates hardware. Returns ErrHardwareUnavailable when nothing
	// readable is present.
	Open(ctx context.Context) error
	// Update refreshes all cached readings. Per-class failures are reported
	// as *ReadError values, joined when more than one class fails.
	Update(ctx context.Context) error
	ReadAggregate() Aggregate
	ListCoreSensors(class DeviceClass) []SensorHandle
	// ReadSensor returns (0, false) when the reading is absent.
	ReadSensor(h SensorHandle) (float64, bool)
	Close() error
}

// DisplaySink consumes sampler output. Implementations are called from a
// single goroutine.
type DisplaySink interface {
	UpdateTooltip(text string)
	UpdateDetailText(d DetailText)
	UpdateSeries(key SeriesKey, snapshot []float64, status SeriesStatus)
}
