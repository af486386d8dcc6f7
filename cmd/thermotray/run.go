package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/tinytelemetry/thermotray/internal/model"
	"github.com/tinytelemetry/thermotray/internal/sampler"
	"github.com/tinytelemetry/thermotray/internal/sensor"
	"github.com/tinytelemetry/thermotray/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// run starts the dashboard immediately and brings up sensors behind it.
// Shutdown order: quit the program, stop the scheduler, close the source,
// sync the logger.
func run(cfg appConfig) error {
	logger, syncLogger, err := newLogger(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		return err
	}
	defer syncLogger()

	logger.Info("starting",
		zap.String("version", version),
		zap.Duration("sample_interval", cfg.SampleInterval),
		zap.Bool("test_mode", cfg.TestMode),
		zap.String("config", cfg.ConfigPath))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, _ := tui.NewDashboardApp(tui.DashboardOptions{
		Context:       ctx,
		TileWidth:     cfg.TileWidth,
		DetailVisible: cfg.DetailVisible,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	shutdownDone := make(chan struct{})
	defer close(shutdownDone)
	watchSignals(ctx, p, logger, shutdownDone)

	var (
		mu     sync.Mutex
		sched  *sampler.Scheduler
		source model.SensorSource
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		src, openErr := openSource(gctx, cfg, logger)
		if src == nil {
			p.Quit()
			return openErr
		}

		s, err := sampler.New(src,
			sampler.WithLogger(logger.Named("sampler")),
			sampler.WithInterval(cfg.SampleInterval),
			sampler.WithFailureThreshold(cfg.FailureThreshold),
			sampler.WithTopologyCheckEvery(cfg.TopologyCheckEvery),
			sampler.WithCapacities(sampler.Capacities{
				Total: cfg.TotalCapacity,
				Tile:  cfg.TileCapacity,
				Temp:  cfg.TempCapacity,
			}),
			sampler.WithDetailVisible(cfg.DetailVisible),
		)
		if err != nil {
			_ = src.Close()
			p.Quit()
			return fmt.Errorf("creating sampler: %w", err)
		}
		if err := s.Start(gctx); err != nil {
			_ = src.Close()
			p.Quit()
			return fmt.Errorf("starting sampler: %w", err)
		}

		mu.Lock()
		sched, source = s, src
		mu.Unlock()

		p.Send(tui.SourceReadyMsg{Frames: s.Frames(), Toggler: s, Err: openErr})
		return nil
	})

	_, runErr := p.Run()
	cancel()
	groupErr := g.Wait()

	mu.Lock()
	if sched != nil {
		sched.Stop()
		st := sched.Stats()
		logger.Info("sampler stats",
			zap.Uint64("ticks", st.Ticks),
			zap.Uint64("dropped_frames", st.DroppedFrames))
	}
	if source != nil {
		if err := source.Close(); err != nil {
			logger.Warn("closing sensors", zap.Error(err))
		}
	}
	mu.Unlock()

	if runErr != nil {
		if strings.Contains(runErr.Error(), "TTY") || strings.Contains(runErr.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", runErr)
	}
	if groupErr != nil && !errors.Is(groupErr, context.Canceled) {
		return groupErr
	}
	return nil
}

// openSource opens real hardware, or the synthetic source in test mode.
// When nothing is readable it returns the Unavailable stand-in together
// with the error, so the dashboard can still run and say why it is empty.
func openSource(ctx context.Context, cfg appConfig, logger *zap.Logger) (model.SensorSource, error) {
	var src model.SensorSource
	if cfg.TestMode {
		src = sensor.NewSynthetic(cfg.SyntheticCores, cfg.SyntheticEngines, uint64(time.Now().UnixNano()))
	} else {
		opts := []sensor.HostOption{sensor.WithLogger(logger.Named("sensor"))}
		if cfg.DisableGPUProbes {
			opts = append(opts, sensor.WithGPUProbes())
		}
		src = sensor.NewHost(opts...)
	}

	err := src.Open(ctx)
	switch {
	case err == nil:
		return src, nil
	case errors.Is(err, model.ErrHardwareUnavailable):
		logger.Warn("no readable sensors, running without hardware", zap.Error(err))
		_ = src.Close()
		return sensor.Unavailable{}, err
	default:
		_ = src.Close()
		return nil, fmt.Errorf("opening sensors: %w", err)
	}
}

// watchSignals quits the program on SIGINT or SIGTERM. A second signal, or
// a shutdown that outlives shutdownTimeout, forces the process to exit.
func watchSignals(ctx context.Context, p *tea.Program, logger *zap.Logger, done <-chan struct{}) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			logger.Info("shutting down", zap.String("signal", sig.String()))
		case <-ctx.Done():
			return
		}
		p.Quit()

		// Shutdown deadline starts now, not at boot.
		deadline := time.NewTimer(shutdownTimeout)
		defer deadline.Stop()

		select {
		case <-done:
			return
		case <-sigCh:
			logger.Warn("forced shutdown")
		case <-deadline.C:
			logger.Warn("shutdown timed out, forcing exit")
		}
		_ = logger.Sync()
		os.Exit(1)
	}()
}
