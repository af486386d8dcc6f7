// Package sensor implements model.SensorSource over the local machine's
// hardware, plus synthetic and degraded stand-ins.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/tinytelemetry/thermotray/internal/model"

	"go.uber.org/zap"
)

// Host reads CPU sensors through a CPUReader and GPUs through a set of
// GPUProbes. Readings are cached by Update and served from memory.
type Host struct {
	cpu    CPUReader
	probes []GPUProbe
	logger *zap.Logger

	mu        sync.Mutex
	coreLoads []float64
	cpuTemps  []float64
	// Last good samples per probe, indexed like probes.
	probeGPUs [][]GPUSample
	// Enumerated once by Open.
	engines []model.SensorHandle
	values  map[string]float64
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithCPUReader replaces the gopsutil CPU reader.
func WithCPUReader(r CPUReader) HostOption {
	return func(h *Host) { h.cpu = r }
}

// WithGPUProbes replaces the default GPU probes. Passing none disables GPUs.
func WithGPUProbes(probes ...GPUProbe) HostOption {
	return func(h *Host) { h.probes = probes }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *zap.Logger) HostOption {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHost returns a Host using gopsutil for the CPU and the sysfs DRM and
// nvidia-smi probes for GPUs.
func NewHost(opts ...HostOption) *Host {
	h := &Host{
		cpu:    GopsutilCPU{},
		probes: []GPUProbe{NewDRMProbe(), NewNvidiaSMIProbe()},
		logger: zap.NewNop(),
		values: make(map[string]float64),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Open performs the first refresh, fixes the GPU engine list for the
// session and reports ErrHardwareUnavailable when neither CPU nor GPU
// sensors respond.
func (h *Host) Open(ctx context.Context) error {
	h.mu.Lock()
	h.probeGPUs = make([][]GPUSample, len(h.probes))
	h.mu.Unlock()

	err := h.Update(ctx)
	if err != nil {
		h.logger.Warn("initial sensor refresh incomplete", zap.Error(err))
	}

	h.mu.Lock()
	h.engines = engineHandles(h.gpusLocked())
	cores, temps, engines := len(h.coreLoads), len(h.cpuTemps), len(h.engines)
	gpuTemps := 0
	for _, g := range h.gpusLocked() {
		gpuTemps += len(g.Temps)
	}
	h.mu.Unlock()

	if cores == 0 && temps == 0 && engines == 0 && gpuTemps == 0 {
		if err != nil {
			return fmt.Errorf("%w: %v", model.ErrHardwareUnavailable, err)
		}
		return model.ErrHardwareUnavailable
	}

	h.logger.Info("sensors opened",
		zap.Int("cpu_cores", cores),
		zap.Int("cpu_temp_sensors", temps),
		zap.Int("gpu_engines", engines),
		zap.Int("gpu_temp_sensors", gpuTemps))
	return nil
}

// Update refreshes every reader. A failing CPU reader keeps its previous
// readings. A failing GPU probe keeps its own previous samples while the
// other probes publish fresh ones; the GPU class is reported as a
// *model.ReadError only when every probe failed.
func (h *Host) Update(ctx context.Context) error {
	var errs []error

	loads, loadErr := h.cpu.PerCoreLoad(ctx)
	temps, tempErr := h.cpu.Temperatures(ctx)
	if err := errors.Join(loadErr, tempErr); err != nil {
		errs = append(errs, &model.ReadError{Class: model.ClassCPU, Err: err})
	}

	fresh := make([][]GPUSample, len(h.probes))
	probeErrs := make([]error, len(h.probes))
	var gpuErrs []error
	for i, p := range h.probes {
		samples, err := p.Sample(ctx)
		if err != nil {
			probeErrs[i] = err
			gpuErrs = append(gpuErrs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		fresh[i] = samples
	}
	switch {
	case len(gpuErrs) == len(h.probes) && len(gpuErrs) > 0:
		errs = append(errs, &model.ReadError{Class: model.ClassGPU, Err: errors.Join(gpuErrs...)})
	case len(gpuErrs) > 0:
		h.logger.Debug("gpu probe failed, holding its last samples", zap.Error(errors.Join(gpuErrs...)))
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if loadErr == nil {
		h.coreLoads = loads
	}
	if tempErr == nil {
		h.cpuTemps = temps
	}
	if len(h.probeGPUs) != len(h.probes) {
		h.probeGPUs = make([][]GPUSample, len(h.probes))
	}
	for i := range h.probes {
		if probeErrs[i] == nil {
			h.probeGPUs[i] = fresh[i]
		}
	}
	h.rebuildValues()

	return errors.Join(errs...)
}

func (h *Host) gpusLocked() []GPUSample {
	var out []GPUSample
	for _, samples := range h.probeGPUs {
		out = append(out, samples...)
	}
	return out
}

func (h *Host) rebuildValues() {
	clear(h.values)
	for i, v := range h.coreLoads {
		h.values[coreID(i)] = v
	}
	for _, g := range h.gpusLocked() {
		for engine, v := range g.Engines {
			h.values[engineID(g.Device, engine)] = v
		}
	}
}

func (h *Host) ReadAggregate() model.Aggregate {
	h.mu.Lock()
	defer h.mu.Unlock()

	var a model.Aggregate
	a.CPULoad, a.CPULoadSensors = mean(h.coreLoads)
	a.CPUTemp, a.CPUTempSensors = mean(h.cpuTemps)

	var gpuLoads, gpuTemps []float64
	for _, g := range h.gpusLocked() {
		for _, v := range g.Engines {
			gpuLoads = append(gpuLoads, v)
		}
		gpuTemps = append(gpuTemps, g.Temps...)
	}
	a.GPULoad, a.GPULoadSensors = mean(gpuLoads)
	a.GPUTemp, a.GPUTempSensors = mean(gpuTemps)
	return a
}

func (h *Host) ListCoreSensors(class model.DeviceClass) []model.SensorHandle {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch class {
	case model.ClassCPU:
		out := make([]model.SensorHandle, len(h.coreLoads))
		for i := range h.coreLoads {
			out[i] = model.SensorHandle{
				ID:    coreID(i),
				Label: fmt.Sprintf("Core %d", i),
				Class: model.ClassCPU,
				Index: i,
			}
		}
		return out
	case model.ClassGPU:
		return append([]model.SensorHandle(nil), h.engines...)
	}
	return nil
}

func (h *Host) ReadSensor(handle model.SensorHandle) (float64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.values[handle.ID]
	return v, ok
}

func (h *Host) Close() error {
	h.logger.Debug("sensors closed")
	return nil
}

// engineHandles orders every exposed engine by device then engine name.
func engineHandles(gpus []GPUSample) []model.SensorHandle {
	type pair struct{ device, engine string }
	seen := make(map[pair]bool)
	var pairs []pair
	add := func(p pair) {
		if !seen[p] {
			seen[p] = true
			pairs = append(pairs, p)
		}
	}
	for _, g := range gpus {
		for _, engine := range g.EngineNames {
			add(pair{g.Device, engine})
		}
		for engine := range g.Engines {
			add(pair{g.Device, engine})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].device != pairs[j].device {
			return pairs[i].device < pairs[j].device
		}
		return pairs[i].engine < pairs[j].engine
	})

	out := make([]model.SensorHandle, len(pairs))
	for i, p := range pairs {
		out[i] = model.SensorHandle{
			ID:    engineID(p.device, p.engine),
			Label: p.device + " " + p.engine,
			Class: model.ClassGPU,
			Index: i,
		}
	}
	return out
}

func coreID(i int) string                   { return fmt.Sprintf("cpu/core/%d", i) }
func engineID(device, engine string) string { return "gpu/" + device + "/" + engine }

func mean(vs []float64) (float64, int) {
	if len(vs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs)), len(vs)
}
