package sensor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/tinytelemetry/thermotray/internal/model"
)

var (
	_ model.SensorSource = (*Host)(nil)
	_ model.SensorSource = (*Synthetic)(nil)
	_ model.SensorSource = Unavailable{}
)

type fakeCPU struct {
	loads   []float64
	temps   []float64
	loadErr error
	tempErr error
}

func (f *fakeCPU) PerCoreLoad(context.Context) ([]float64, error)  { return f.loads, f.loadErr }
func (f *fakeCPU) Temperatures(context.Context) ([]float64, error) { return f.temps, f.tempErr }

type fakeProbe struct {
	samples []GPUSample
	err     error
}

func (p *fakeProbe) Name() string { return "fake" }
func (p *fakeProbe) Sample(context.Context) ([]GPUSample, error) {
	return p.samples, p.err
}

func TestHost_AggregatePoolsAcrossDevices(t *testing.T) {
	t.Parallel()

	cpu := &fakeCPU{loads: []float64{10, 20, 30, 40}, temps: []float64{50, 60}}
	probe := &fakeProbe{samples: []GPUSample{
		{Device: "card0", Temps: []float64{70}, Engines: map[string]float64{"gfx": 80, "memory": 20}},
		{Device: "card1", Temps: []float64{40, 50}, Engines: map[string]float64{"gfx": 50}},
	}}
	h := NewHost(WithCPUReader(cpu), WithGPUProbes(probe))

	if err := h.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}

	a := h.ReadAggregate()
	if a.CPULoad != 25 || a.CPULoadSensors != 4 {
		t.Fatalf("CPULoad = %v (%d sensors), want 25 (4)", a.CPULoad, a.CPULoadSensors)
	}
	if a.CPUTemp != 55 {
		t.Fatalf("CPUTemp = %v, want 55", a.CPUTemp)
	}
	if a.GPULoad != 50 || a.GPULoadSensors != 3 {
		t.Fatalf("GPULoad = %v (%d sensors), want 50 (3)", a.GPULoad, a.GPULoadSensors)
	}
	if a.GPUTemp != 160.0/3 {
		t.Fatalf("GPUTemp = %v, want %v", a.GPUTemp, 160.0/3)
	}
}

func TestHost_ListAndReadSensors(t *testing.T) {
	t.Parallel()

	cpu := &fakeCPU{loads: []float64{5, 95}}
	probe := &fakeProbe{samples: []GPUSample{
		{Device: "card0", Engines: map[string]float64{"memory": 11, "gfx": 77}},
	}}
	h := NewHost(WithCPUReader(cpu), WithGPUProbes(probe))
	if err := h.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}

	cores := h.ListCoreSensors(model.ClassCPU)
	if len(cores) != 2 {
		t.Fatalf("cores = %d, want 2", len(cores))
	}
	if v, ok := h.ReadSensor(cores[1]); !ok || v != 95 {
		t.Fatalf("ReadSensor(core1) = (%v, %v), want (95, true)", v, ok)
	}

	engines := h.ListCoreSensors(model.ClassGPU)
	if len(engines) != 2 || engines[0].Label != "card0 gfx" || engines[1].Label != "card0 memory" {
		t.Fatalf("engines = %+v, want gfx then memory", engines)
	}
	if v, ok := h.ReadSensor(engines[0]); !ok || v != 77 {
		t.Fatalf("ReadSensor(gfx) = (%v, %v), want (77, true)", v, ok)
	}

	if _, ok := h.ReadSensor(model.SensorHandle{ID: "gpu/card9/gfx"}); ok {
		t.Fatal("unknown handle should be absent")
	}
}

func TestHost_OpenWithoutHardware(t *testing.T) {
	t.Parallel()

	h := NewHost(WithCPUReader(&fakeCPU{}), WithGPUProbes())
	err := h.Open(context.Background())
	if !errors.Is(err, model.ErrHardwareUnavailable) {
		t.Fatalf("Open error = %v, want ErrHardwareUnavailable", err)
	}
}

func TestHost_UpdateReportsFailingClass(t *testing.T) {
	t.Parallel()

	cpu := &fakeCPU{loads: []float64{10}, temps: []float64{50}}
	probe := &fakeProbe{samples: []GPUSample{{Device: "card0", Engines: map[string]float64{"gfx": 30}}}}
	h := NewHost(WithCPUReader(cpu), WithGPUProbes(probe))
	if err := h.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}

	probe.err = errors.New("driver reset")
	cpu.loads = []float64{90}
	err := h.Update(context.Background())

	failed := model.FailedClasses(err)
	if !failed[model.ClassGPU] || failed[model.ClassCPU] {
		t.Fatalf("FailedClasses = %v, want only gpu", failed)
	}

	a := h.ReadAggregate()
	if a.CPULoad != 90 {
		t.Fatalf("CPULoad = %v, want 90 after successful cpu refresh", a.CPULoad)
	}
	if a.GPULoad != 30 {
		t.Fatalf("GPULoad = %v, want previous reading 30", a.GPULoad)
	}
}

func TestHost_FailingProbeKeepsOtherProbesData(t *testing.T) {
	t.Parallel()

	cpu := &fakeCPU{loads: []float64{10}, temps: []float64{50}}
	amd := &fakeProbe{samples: []GPUSample{
		{Device: "card0", Temps: []float64{60}, Engines: map[string]float64{"gfx": 40, "memory": 20}},
	}}
	nv := &fakeProbe{err: errors.New("exit status 9")}
	h := NewHost(WithCPUReader(cpu), WithGPUProbes(amd, nv))

	if err := h.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if n := len(h.ListCoreSensors(model.ClassGPU)); n != 2 {
		t.Fatalf("engines = %d, want 2 from the working probe", n)
	}
	a := h.ReadAggregate()
	if a.GPULoad != 30 || a.GPULoadSensors != 2 || a.GPUTemp != 60 {
		t.Fatalf("gpu aggregate = %+v, want load 30 over 2 and temp 60", a)
	}

	amd.samples[0].Engines = map[string]float64{"gfx": 80, "memory": 60}
	if failed := model.FailedClasses(h.Update(context.Background())); failed[model.ClassGPU] {
		t.Fatal("gpu class reported failed while one probe still reads")
	}
	if a := h.ReadAggregate(); a.GPULoad != 70 {
		t.Fatalf("GPULoad = %v, want fresh reading 70", a.GPULoad)
	}
}

func TestHost_EngineListStableWhenReadingMissing(t *testing.T) {
	t.Parallel()

	names := []string{"encoder", "gfx"}
	probe := &fakeProbe{samples: []GPUSample{
		{Device: "nvidia0", EngineNames: names, Engines: map[string]float64{"gfx": 50, "encoder": 5}},
	}}
	h := NewHost(WithCPUReader(&fakeCPU{}), WithGPUProbes(probe))
	if err := h.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	before := h.ListCoreSensors(model.ClassGPU)

	probe.samples = []GPUSample{
		{Device: "nvidia0", EngineNames: names, Engines: map[string]float64{"gfx": 55}},
	}
	if err := h.Update(context.Background()); err != nil {
		t.Fatalf("Update: %v", err)
	}
	after := h.ListCoreSensors(model.ClassGPU)
	if len(after) != len(before) || len(after) != 2 {
		t.Fatalf("handles before=%d after=%d, want 2 both times", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("handle %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
	if v, ok := h.ReadSensor(after[0]); ok || v != 0 {
		t.Fatalf("ReadSensor(encoder) = (%v, %v), want (0, false)", v, ok)
	}
	if v, ok := h.ReadSensor(after[1]); !ok || v != 55 {
		t.Fatalf("ReadSensor(gfx) = (%v, %v), want (55, true)", v, ok)
	}
}

func TestDRMProbe_ReadsSysfs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	device := filepath.Join(root, "class", "drm", "card0", "device")
	hwmon := filepath.Join(device, "hwmon", "hwmon3")
	mustMkdir(t, hwmon)
	mustMkdir(t, filepath.Join(root, "class", "drm", "card0-DP-1"))
	mustMkdir(t, filepath.Join(root, "bus", "pci", "drivers", "amdgpu"))

	if err := os.Symlink(filepath.Join(root, "bus", "pci", "drivers", "amdgpu"), filepath.Join(device, "driver")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	mustWrite(t, filepath.Join(device, "gpu_busy_percent"), "42\n")
	mustWrite(t, filepath.Join(device, "mem_busy_percent"), "7\n")
	mustWrite(t, filepath.Join(hwmon, "temp1_input"), "61000\n")
	mustWrite(t, filepath.Join(hwmon, "temp2_input"), "65000\n")

	samples, err := newDRMProbeFrom(root).Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("samples = %d, want 1", len(samples))
	}
	s := samples[0]
	if s.Device != "card0" || s.Engines["gfx"] != 42 || s.Engines["memory"] != 7 {
		t.Fatalf("sample = %+v", s)
	}
	if len(s.EngineNames) != 2 {
		t.Fatalf("engine names = %v, want gfx and memory", s.EngineNames)
	}
	if len(s.Temps) != 2 || s.Temps[0] != 61 || s.Temps[1] != 65 {
		t.Fatalf("temps = %v, want [61 65]", s.Temps)
	}
}

func TestDRMProbe_MissingTreeIsEmpty(t *testing.T) {
	t.Parallel()

	samples, err := newDRMProbeFrom(t.TempDir()).Sample(context.Background())
	if err != nil || len(samples) != 0 {
		t.Fatalf("Sample = (%v, %v), want empty and nil", samples, err)
	}
}

func TestParseNvidiaSMI(t *testing.T) {
	t.Parallel()

	out := "0, 35, 12, 0, 0, 58\n1, 90, [N/A], [N/A], 4, 71\n"
	samples := parseNvidiaSMI(out)
	if len(samples) != 2 {
		t.Fatalf("samples = %d, want 2", len(samples))
	}
	if samples[0].Device != "nvidia0" || samples[0].Engines["gfx"] != 35 || samples[0].Temps[0] != 58 {
		t.Fatalf("sample[0] = %+v", samples[0])
	}
	if _, ok := samples[1].Engines["memory"]; ok {
		t.Fatal("[N/A] memory utilisation should be absent")
	}
	if len(samples[1].Engines) != 2 {
		t.Fatalf("sample[1] engines = %v, want gfx and decoder", samples[1].Engines)
	}
	if len(samples[1].EngineNames) != 4 {
		t.Fatalf("sample[1] engine names = %v, want all queried engines", samples[1].EngineNames)
	}
}

func TestNvidiaSMIProbe_MissingBinary(t *testing.T) {
	t.Parallel()

	p := &NvidiaSMIProbe{run: func(context.Context, string, ...string) ([]byte, error) {
		return nil, &exec.Error{Name: "nvidia-smi", Err: exec.ErrNotFound}
	}}
	samples, err := p.Sample(context.Background())
	if err != nil || samples != nil {
		t.Fatalf("Sample = (%v, %v), want (nil, nil)", samples, err)
	}

	p.run = func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exit status 9")
	}
	if _, err := p.Sample(context.Background()); err == nil {
		t.Fatal("expected error when nvidia-smi fails")
	}
}

func TestSynthetic_DeterministicAndBounded(t *testing.T) {
	t.Parallel()

	a := NewSynthetic(4, 2, 7)
	b := NewSynthetic(4, 2, 7)
	for i := 0; i < 200; i++ {
		_ = a.Update(context.Background())
		_ = b.Update(context.Background())
	}
	if a.ReadAggregate() != b.ReadAggregate() {
		t.Fatal("same seed produced different readings")
	}
	for _, h := range a.ListCoreSensors(model.ClassCPU) {
		v, ok := a.ReadSensor(h)
		if !ok || v < 0 || v > 100 {
			t.Fatalf("core %d = (%v, %v), want within [0,100]", h.Index, v, ok)
		}
	}
	if n := len(a.ListCoreSensors(model.ClassGPU)); n != 2 {
		t.Fatalf("engines = %d, want 2", n)
	}
}

func TestIsCPUSensor(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"coretemp_package_id_0", "k10temp_tctl", "coretemp_core_3"} {
		if !isCPUSensor(key) {
			t.Fatalf("isCPUSensor(%q) = false", key)
		}
	}
	for _, key := range []string{"nvme_composite", "amdgpu_edge", "acpitz"} {
		if isCPUSensor(key) {
			t.Fatalf("isCPUSensor(%q) = true", key)
		}
	}
}

func mustMkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

func mustWrite(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
