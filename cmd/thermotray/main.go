// thermotray is a terminal dashboard for CPU and GPU load and temperature.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	if err := runMain(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runMain(args []string, stdout io.Writer) error {
	var configPath string
	var showVersion bool
	var printConfig bool

	flagSet := pflag.NewFlagSet("thermotray", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/thermotray/config.yml)")
	flagSet.BoolVar(&showVersion, "version", false, "print version information")
	flagSet.Bool("test-mode", false, "use synthetic sensors instead of hardware")
	flagSet.BoolVar(&printConfig, "print-config", false, "print the effective configuration as YAML and exit")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if showVersion {
		printVersion(stdout)
		return nil
	}

	cfg, err := loadConfig(configPath, flagSet)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if printConfig {
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		return enc.Close()
	}

	return run(cfg)
}

func printVersion(w io.Writer) {
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	fmt.Fprintln(w, cyan.Render("thermotray")+" "+dim.Render("CPU/GPU sensor dashboard"))
	fmt.Fprintf(w, "  Version:    %s\n", version)
	fmt.Fprintf(w, "  Commit:     %s\n", commit)
	fmt.Fprintf(w, "  Built:      %s\n", buildTime)
	fmt.Fprintf(w, "  Go version: %s\n", goVersion)
}
