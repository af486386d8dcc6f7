package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tinytelemetry/thermotray/internal/model"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultSampleInterval     = model.DefaultSampleInterval
	defaultTotalCapacity      = model.DefaultTotalCapacity
	defaultTileCapacity       = model.DefaultTileCapacity
	defaultTempCapacity       = model.DefaultTempCapacity
	defaultFailureThreshold   = model.DefaultFailureThreshold
	defaultTopologyCheckEvery = model.DefaultTopologyCheckEvery
	defaultTileWidth          = 28 // terminal cells
	defaultSyntheticCores     = 8
	defaultSyntheticEngines   = 2
	defaultLogLevel           = "info"
	minSampleInterval         = 50 * time.Millisecond
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	SampleInterval     time.Duration `mapstructure:"sample-interval" yaml:"sample-interval"`
	TotalCapacity      int           `mapstructure:"total-capacity" yaml:"total-capacity"`
	TileCapacity       int           `mapstructure:"tile-capacity" yaml:"tile-capacity"`
	TempCapacity       int           `mapstructure:"temp-capacity" yaml:"temp-capacity"`
	FailureThreshold   int           `mapstructure:"failure-threshold" yaml:"failure-threshold"`
	TopologyCheckEvery int           `mapstructure:"topology-check-every" yaml:"topology-check-every"`
	DetailVisible      bool          `mapstructure:"detail-visible" yaml:"detail-visible"`
	TileWidth          int           `mapstructure:"tile-width" yaml:"tile-width"`
	TestMode           bool          `mapstructure:"test-mode" yaml:"test-mode"`
	SyntheticCores     int           `mapstructure:"synthetic-cores" yaml:"synthetic-cores"`
	SyntheticEngines   int           `mapstructure:"synthetic-engines" yaml:"synthetic-engines"`
	LogLevel           string        `mapstructure:"log-level" yaml:"log-level"`
	LogPath            string        `mapstructure:"log-path" yaml:"log-path"`
	DisableGPUProbes   bool          `mapstructure:"disable-gpu-probes" yaml:"disable-gpu-probes"`
	ConfigPath         string        `mapstructure:"-" yaml:"-"` // not from config file
}

// loadConfig layers defaults, the optional config file, THERMOTRAY_*
// environment variables and any flags in flags, in increasing priority.
func loadConfig(configPath string, flags *pflag.FlagSet) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("THERMOTRAY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("sample-interval", defaultSampleInterval)
	v.SetDefault("total-capacity", defaultTotalCapacity)
	v.SetDefault("tile-capacity", defaultTileCapacity)
	v.SetDefault("temp-capacity", defaultTempCapacity)
	v.SetDefault("failure-threshold", defaultFailureThreshold)
	v.SetDefault("topology-check-every", defaultTopologyCheckEvery)
	v.SetDefault("detail-visible", true)
	v.SetDefault("tile-width", defaultTileWidth)
	v.SetDefault("test-mode", false)
	v.SetDefault("synthetic-cores", defaultSyntheticCores)
	v.SetDefault("synthetic-engines", defaultSyntheticEngines)
	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("log-path", filepath.Join(home, ".local", "state", "thermotray", "thermotray.log"))
	v.SetDefault("disable-gpu-probes", false)

	if flags != nil {
		if f := flags.Lookup("test-mode"); f != nil {
			if err := v.BindPFlag("test-mode", f); err != nil {
				return cfg, fmt.Errorf("binding --test-mode: %w", err)
			}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "thermotray", "config.yml"))
	}

	// A missing file is fine only when it is the default location.
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &configFileNotFound) || os.IsNotExist(err)
		if !missing || configPath != "" {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	// Expand ~ in log-path
	if strings.HasPrefix(cfg.LogPath, "~/") {
		cfg.LogPath = filepath.Join(home, cfg.LogPath[2:])
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c appConfig) validate() error {
	if c.SampleInterval < minSampleInterval {
		return fmt.Errorf("invalid sample-interval: %v (minimum %v)", c.SampleInterval, minSampleInterval)
	}
	for name, n := range map[string]int{
		"total-capacity": c.TotalCapacity,
		"tile-capacity":  c.TileCapacity,
		"temp-capacity":  c.TempCapacity,
		"tile-width":     c.TileWidth,
	} {
		if n <= 0 {
			return fmt.Errorf("invalid %s: %d", name, n)
		}
	}
	if c.FailureThreshold < 1 {
		return fmt.Errorf("invalid failure-threshold: %d", c.FailureThreshold)
	}
	if c.TopologyCheckEvery < 0 {
		return fmt.Errorf("invalid topology-check-every: %d", c.TopologyCheckEvery)
	}
	if c.TestMode && (c.SyntheticCores < 0 || c.SyntheticEngines < 0) {
		return fmt.Errorf("invalid synthetic sensor counts: %d cores, %d engines", c.SyntheticCores, c.SyntheticEngines)
	}
	return nil
}
