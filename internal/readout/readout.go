// Package readout converts raw sensor values into display units and text.
package readout

import (
	"fmt"

	"github.com/tinytelemetry/thermotray/internal/model"
)

// Fahrenheit converts Celsius to Fahrenheit.
func Fahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// ClampPercent bounds a load reading to [0, 100].
func ClampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// LoadOrZero maps an absent reading to 0 and clamps present ones.
func LoadOrZero(v float64, ok bool) float64 {
	if !ok {
		return 0
	}
	return ClampPercent(v)
}

// Tooltip renders the compact two-line temperature summary.
func Tooltip(cpuF, gpuF float64) string {
	return fmt.Sprintf("CPU: %.1f°F\nGPU: %.1f°F", cpuF, gpuF)
}

// Detail renders the four detail-view lines. Temperatures are Fahrenheit.
func Detail(cpuF, gpuF, cpuLoad, gpuLoad float64) model.DetailText {
	return model.DetailText{
		CPUTemp: fmt.Sprintf("CPU Temp:   %.1f°F", cpuF),
		GPUTemp: fmt.Sprintf("GPU Temp:   %.1f°F", gpuF),
		CPULoad: fmt.Sprintf("CPU Load:   %.0f%%", cpuLoad),
		GPULoad: fmt.Sprintf("GPU Load:   %.0f%%", gpuLoad),
	}
}
