package sensor

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
)

// CPUReader reads per-core utilisation and CPU temperatures.
type CPUReader interface {
	// PerCoreLoad returns one percent value per logical core.
	PerCoreLoad(ctx context.Context) ([]float64, error)
	// Temperatures returns every CPU temperature sensor in Celsius.
	Temperatures(ctx context.Context) ([]float64, error)
}

// cpuSensorKeys are substrings of gopsutil sensor keys that belong to the CPU.
var cpuSensorKeys = []string{"coretemp", "k10temp", "zenpower", "cpu", "package", "tctl", "tdie", "core"}

// GopsutilCPU reads CPU sensors through gopsutil.
type GopsutilCPU struct{}

func (GopsutilCPU) PerCoreLoad(ctx context.Context) ([]float64, error) {
	// Interval 0 compares against the previous call, so each tick sees the
	// utilisation since the last tick.
	pct, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		return nil, fmt.Errorf("cpu percent: %w", err)
	}
	return pct, nil
}

func (GopsutilCPU) Temperatures(ctx context.Context) ([]float64, error) {
	temps, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil && len(temps) == 0 {
		return nil, fmt.Errorf("sensor temperatures: %w", err)
	}
	var out []float64
	for _, t := range temps {
		if isCPUSensor(t.SensorKey) && t.Temperature > 0 {
			out = append(out, t.Temperature)
		}
	}
	return out, nil
}

func isCPUSensor(key string) bool {
	k := strings.ToLower(key)
	for _, want := range cpuSensorKeys {
		if strings.Contains(k, want) {
			return true
		}
	}
	return false
}
