package sensor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// GPUSample is one refresh of a single GPU.
type GPUSample struct {
	Device string
	// Temps holds every temperature sensor on the device in Celsius.
	Temps []float64
	// Engines maps an engine name (gfx, memory, encoder...) to percent busy.
	// An engine whose reading failed this refresh is missing from the map.
	Engines map[string]float64
	// EngineNames lists every engine the device exposes, read or not.
	EngineNames []string
}

// GPUProbe discovers and samples one vendor's GPUs. A probe that finds no
// devices returns an empty slice and a nil error.
type GPUProbe interface {
	Name() string
	Sample(ctx context.Context) ([]GPUSample, error)
}

// DRMProbe reads amdgpu utilisation and temperature from sysfs.
type DRMProbe struct {
	sysRoot string
}

// NewDRMProbe returns a probe rooted at /sys.
func NewDRMProbe() *DRMProbe {
	return newDRMProbeFrom("/sys")
}

func newDRMProbeFrom(sysRoot string) *DRMProbe {
	return &DRMProbe{sysRoot: sysRoot}
}

func (p *DRMProbe) Name() string { return "amdgpu" }

var drmEngineFiles = []struct {
	file   string
	engine string
}{
	{"gpu_busy_percent", "gfx"},
	{"mem_busy_percent", "memory"},
}

func (p *DRMProbe) Sample(_ context.Context) ([]GPUSample, error) {
	drmBase := filepath.Join(p.sysRoot, "class", "drm")
	entries, err := os.ReadDir(drmBase)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", drmBase, err)
	}

	var out []GPUSample
	for _, entry := range entries {
		name := entry.Name()
		if !isCardDevice(name) {
			continue
		}
		devicePath := filepath.Join(drmBase, name, "device")
		if readDriverName(devicePath) != "amdgpu" {
			continue
		}

		s := GPUSample{Device: name, Engines: make(map[string]float64)}
		for _, ef := range drmEngineFiles {
			path := filepath.Join(devicePath, ef.file)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			s.EngineNames = append(s.EngineNames, ef.engine)
			if v, err := readSysfsFloat(path); err == nil {
				s.Engines[ef.engine] = v
			}
		}
		s.Temps = readHwmonTemps(devicePath)
		out = append(out, s)
	}
	return out, nil
}

// isCardDevice matches card0, card1... but not connectors like card0-DP-1.
func isCardDevice(name string) bool {
	suffix, ok := strings.CutPrefix(name, "card")
	if !ok || suffix == "" {
		return false
	}
	_, err := strconv.Atoi(suffix)
	return err == nil
}

func readDriverName(devicePath string) string {
	link, err := os.Readlink(filepath.Join(devicePath, "driver"))
	if err != nil {
		return ""
	}
	return filepath.Base(link)
}

func readSysfsFloat(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
}

// readHwmonTemps returns temp*_input values under device/hwmon, converted
// from millidegrees.
func readHwmonTemps(devicePath string) []float64 {
	matches, _ := filepath.Glob(filepath.Join(devicePath, "hwmon", "hwmon*", "temp*_input"))
	sort.Strings(matches)
	var temps []float64
	for _, m := range matches {
		v, err := readSysfsFloat(m)
		if err != nil {
			continue
		}
		temps = append(temps, v/1000)
	}
	return temps
}

// CommandRunner runs an external command and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// NvidiaSMIProbe samples NVIDIA GPUs through nvidia-smi.
type NvidiaSMIProbe struct {
	run CommandRunner
}

// NewNvidiaSMIProbe returns a probe that shells out to nvidia-smi.
func NewNvidiaSMIProbe() *NvidiaSMIProbe {
	return &NvidiaSMIProbe{run: execRunner}
}

func (p *NvidiaSMIProbe) Name() string { return "nvidia" }

var nvidiaEngines = []string{"gfx", "memory", "encoder", "decoder"}

func (p *NvidiaSMIProbe) Sample(ctx context.Context) ([]GPUSample, error) {
	out, err := p.run(ctx, "nvidia-smi",
		"--query-gpu=index,utilization.gpu,utilization.memory,utilization.encoder,utilization.decoder,temperature.gpu",
		"--format=csv,noheader,nounits")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("nvidia-smi: %w", err)
	}
	return parseNvidiaSMI(string(out)), nil
}

// parseNvidiaSMI parses csv,noheader,nounits rows. Every queried engine
// column is listed; fields reported as "[N/A]" or "[Not Supported]" have no
// value.
func parseNvidiaSMI(out string) []GPUSample {
	var samples []GPUSample
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Split(line, ",")
		if len(fields) < 2+len(nvidiaEngines) {
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		s := GPUSample{
			Device:      "nvidia" + fields[0],
			Engines:     make(map[string]float64),
			EngineNames: nvidiaEngines,
		}
		for i, engine := range nvidiaEngines {
			if v, err := strconv.ParseFloat(fields[1+i], 64); err == nil {
				s.Engines[engine] = v
			}
		}
		if v, err := strconv.ParseFloat(fields[1+len(nvidiaEngines)], 64); err == nil {
			s.Temps = []float64{v}
		}
		samples = append(samples, s)
	}
	return samples
}
