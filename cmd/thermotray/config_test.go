package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := loadConfig("", nil)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.SampleInterval != 750*time.Millisecond {
		t.Fatalf("sample-interval = %v, want 750ms", cfg.SampleInterval)
	}
	if cfg.TotalCapacity != 120 || cfg.TileCapacity != 60 || cfg.TempCapacity != 30 {
		t.Fatalf("capacities = %d/%d/%d, want 120/60/30", cfg.TotalCapacity, cfg.TileCapacity, cfg.TempCapacity)
	}
	if cfg.FailureThreshold != 3 || cfg.TopologyCheckEvery != 40 {
		t.Fatalf("threshold/topology = %d/%d, want 3/40", cfg.FailureThreshold, cfg.TopologyCheckEvery)
	}
	if !cfg.DetailVisible || cfg.TestMode {
		t.Fatalf("detail/test = %v/%v, want true/false", cfg.DetailVisible, cfg.TestMode)
	}
	if cfg.TileWidth != 28 {
		t.Fatalf("tile-width = %d, want 28", cfg.TileWidth)
	}
	want := filepath.Join(home, ".local", "state", "thermotray", "thermotray.log")
	if cfg.LogPath != want {
		t.Fatalf("log-path = %q, want %q", cfg.LogPath, want)
	}
}

func TestLoadConfig_FileEnvAndFlags(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("THERMOTRAY_FAILURE_THRESHOLD", "5")

	path := writeConfig(t, `
sample-interval: 1s
tile-capacity: 90
detail-visible: false
log-path: ~/logs/tray.log
failure-threshold: 2
`)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("test-mode", false, "")
	if err := flags.Parse([]string{"--test-mode"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := loadConfig(path, flags)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.SampleInterval != time.Second {
		t.Fatalf("sample-interval = %v, want 1s", cfg.SampleInterval)
	}
	if cfg.TileCapacity != 90 {
		t.Fatalf("tile-capacity = %d, want 90", cfg.TileCapacity)
	}
	if cfg.DetailVisible {
		t.Fatal("detail-visible = true, want false from file")
	}
	if cfg.FailureThreshold != 5 {
		t.Fatalf("failure-threshold = %d, want env override 5", cfg.FailureThreshold)
	}
	if !cfg.TestMode {
		t.Fatal("test-mode flag not applied")
	}
	if want := filepath.Join(home, "logs", "tray.log"); cfg.LogPath != want {
		t.Fatalf("log-path = %q, want %q", cfg.LogPath, want)
	}
	if cfg.ConfigPath != path {
		t.Fatalf("ConfigPath = %q, want %q", cfg.ConfigPath, path)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "interval too small", body: "sample-interval: 10ms\n", want: "sample-interval"},
		{name: "zero capacity", body: "temp-capacity: 0\n", want: "temp-capacity"},
		{name: "zero threshold", body: "failure-threshold: 0\n", want: "failure-threshold"},
		{name: "negative topology", body: "topology-check-every: -1\n", want: "topology-check-every"},
		{name: "malformed", body: "sample-interval: [\n", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.body), nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfig_ExplicitPathMustExist(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	missing := filepath.Join(t.TempDir(), "confg.yml")
	if _, err := loadConfig(missing, nil); err == nil {
		t.Fatal("expected error for a --config path that does not exist")
	}
	if _, err := loadConfig("", nil); err != nil {
		t.Fatalf("missing default config should be tolerated: %v", err)
	}
}

func TestRunMain_VersionAndPrintConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	if err := runMain([]string{"--version"}, &out); err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.Contains(out.String(), "Version:    dev") {
		t.Fatalf("version output = %q", out.String())
	}

	out.Reset()
	if err := runMain([]string{"--print-config", "--test-mode"}, &out); err != nil {
		t.Fatalf("--print-config: %v", err)
	}
	for _, want := range []string{"sample-interval: 750ms", "test-mode: true", "tile-width: 28"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("print-config missing %q:\n%s", want, out.String())
		}
	}

	if err := runMain([]string{"--no-such-flag"}, &out); err == nil {
		t.Fatal("unknown flag should fail")
	}
}
