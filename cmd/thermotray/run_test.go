package main

import (
	"context"
	"testing"

	"github.com/tinytelemetry/thermotray/internal/model"
	"github.com/tinytelemetry/thermotray/internal/sensor"

	"go.uber.org/zap"
)

func TestOpenSource_TestModeUsesSynthetic(t *testing.T) {
	t.Parallel()

	cfg := appConfig{TestMode: true, SyntheticCores: 4, SyntheticEngines: 1}
	src, err := openSource(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("openSource: %v", err)
	}
	defer src.Close()

	if _, ok := src.(*sensor.Synthetic); !ok {
		t.Fatalf("source = %T, want *sensor.Synthetic", src)
	}
	if got := len(src.ListCoreSensors(model.ClassCPU)); got != 4 {
		t.Fatalf("cores = %d, want 4", got)
	}
	if got := len(src.ListCoreSensors(model.ClassGPU)); got != 1 {
		t.Fatalf("engines = %d, want 1", got)
	}
}
