package model

import "fmt"

// DeviceClass identifies a family of hardware the source can read.
type DeviceClass int

const (
	ClassCPU DeviceClass = iota
	ClassGPU
)

func (c DeviceClass) String() string {
	switch c {
	case ClassCPU:
		return "cpu"
	case ClassGPU:
		return "gpu"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Classes lists every device class in display order.
var Classes = []DeviceClass{ClassCPU, ClassGPU}

// SensorHandle is an opaque reference to one per-core or per-engine load sensor.
// ID is stable for the lifetime of an opened source.
type SensorHandle struct {
	ID    string
	Label string
	Class DeviceClass
	Index int
}

// Aggregate holds pooled averages for one refresh. Temperatures are Celsius,
// loads are percent. A slot with zero contributing sensors reads 0.
type Aggregate struct {
	CPUTemp float64
	GPUTemp float64
	CPULoad float64
	GPULoad float64

	CPUTempSensors int
	GPUTempSensors int
	CPULoadSensors int
	GPULoadSensors int
}

// Temp returns the temperature slot and its sensor count for a class.
func (a Aggregate) Temp(c DeviceClass) (float64, int) {
	if c == ClassGPU {
		return a.GPUTemp, a.GPUTempSensors
	}
	return a.CPUTemp, a.CPUTempSensors
}

// Load returns the load slot and its sensor count for a class.
func (a Aggregate) Load(c DeviceClass) (float64, int) {
	if c == ClassGPU {
		return a.GPULoad, a.GPULoadSensors
	}
	return a.CPULoad, a.CPULoadSensors
}

// SeriesStatus tells the display whether a series' newest samples are real.
type SeriesStatus int

const (
	StatusLive SeriesStatus = iota
	StatusStale
	StatusUnavailable
)

func (s SeriesStatus) String() string {
	switch s {
	case StatusLive:
		return "live"
	case StatusStale:
		return "stale"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// SeriesKey names a metric series, e.g. "cpu.total.load" or "cpu.core.3.load".
type SeriesKey string

// TotalLoadKey returns the key of a class's aggregate load series.
func TotalLoadKey(c DeviceClass) SeriesKey {
	return SeriesKey(c.String() + ".total.load")
}

// TotalTempKey returns the key of a class's aggregate temperature series.
func TotalTempKey(c DeviceClass) SeriesKey {
	return SeriesKey(c.String() + ".total.temp")
}

// UnitLoadKey returns the key for the n-th per-core or per-engine series.
func UnitLoadKey(c DeviceClass, n int) SeriesKey {
	unit := "core"
	if c == ClassGPU {
		unit = "engine"
	}
	return SeriesKey(fmt.Sprintf("%s.%s.%d.load", c, unit, n))
}

// DetailText is the four formatted lines shown by the detail view.
type DetailText struct {
	CPUTemp string
	GPUTemp string
	CPULoad string
	GPULoad string
}

// Lines returns the detail text in display order.
func (d DetailText) Lines() []string {
	return []string{d.CPUTemp, d.GPUTemp, d.CPULoad, d.GPULoad}
}
