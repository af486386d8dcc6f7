package sensor

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/tinytelemetry/thermotray/internal/model"
)

// Synthetic is a deterministic random-walk source for demo mode and for
// machines without readable sensors.
type Synthetic struct {
	mu      sync.Mutex
	rng     *rand.Rand
	cores   []float64
	engines []float64
	cpuTemp float64
	gpuTemp float64
}

// NewSynthetic returns a source with the given core and engine counts.
// The same seed yields the same sequence.
func NewSynthetic(cores, engines int, seed uint64) *Synthetic {
	return &Synthetic{
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		cores:   make([]float64, cores),
		engines: make([]float64, engines),
		cpuTemp: 45,
		gpuTemp: 40,
	}
}

func (s *Synthetic) Open(_ context.Context) error { return nil }

func (s *Synthetic) Update(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cores {
		s.cores[i] = s.walk(s.cores[i], 12, 0, 100)
	}
	for i := range s.engines {
		s.engines[i] = s.walk(s.engines[i], 15, 0, 100)
	}
	s.cpuTemp = s.walk(s.cpuTemp, 1.5, 30, 95)
	s.gpuTemp = s.walk(s.gpuTemp, 1.5, 30, 90)
	return nil
}

func (s *Synthetic) walk(v, step, lo, hi float64) float64 {
	v += (s.rng.Float64()*2 - 1) * step
	return min(hi, max(lo, v))
}

func (s *Synthetic) ReadAggregate() model.Aggregate {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := model.Aggregate{
		CPUTemp:        s.cpuTemp,
		GPUTemp:        s.gpuTemp,
		CPUTempSensors: 1,
		GPUTempSensors: 1,
	}
	a.CPULoad, a.CPULoadSensors = mean(s.cores)
	a.GPULoad, a.GPULoadSensors = mean(s.engines)
	if len(s.engines) == 0 {
		a.GPUTemp, a.GPUTempSensors = 0, 0
	}
	return a
}

func (s *Synthetic) ListCoreSensors(class model.DeviceClass) []model.SensorHandle {
	n := len(s.cores)
	if class == model.ClassGPU {
		n = len(s.engines)
	}
	out := make([]model.SensorHandle, n)
	for i := range out {
		out[i] = model.SensorHandle{
			ID:    fmt.Sprintf("synthetic/%s/%d", class, i),
			Label: fmt.Sprintf("%s %d", class, i),
			Class: class,
			Index: i,
		}
	}
	return out
}

func (s *Synthetic) ReadSensor(h model.SensorHandle) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vals := s.cores
	if h.Class == model.ClassGPU {
		vals = s.engines
	}
	if h.Index < 0 || h.Index >= len(vals) {
		return 0, false
	}
	return vals[h.Index], true
}

func (s *Synthetic) Close() error { return nil }

// Unavailable stands in when Open fails with ErrHardwareUnavailable. Every
// reading is absent.
type Unavailable struct{}

func (Unavailable) Open(context.Context) error                             { return nil }
func (Unavailable) Update(context.Context) error                           { return nil }
func (Unavailable) ReadAggregate() model.Aggregate                         { return model.Aggregate{} }
func (Unavailable) ListCoreSensors(model.DeviceClass) []model.SensorHandle { return nil }
func (Unavailable) ReadSensor(model.SensorHandle) (float64, bool)          { return 0, false }
func (Unavailable) Close() error                                           { return nil }
