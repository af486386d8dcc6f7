// Package sampler runs the fixed-rate sampling loop that turns sensor
// readings into rolling windows and publishes them as frames.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tinytelemetry/thermotray/internal/clock"
	"github.com/tinytelemetry/thermotray/internal/model"
	"github.com/tinytelemetry/thermotray/internal/readout"

	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned by Start on a running scheduler.
var ErrAlreadyRunning = errors.New("sampler: already running")

// State is the scheduler lifecycle state.
type State int

const (
	StateStopped State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "stopped"
}

// Capacities sets the window length of each kind of series.
type Capacities struct {
	Total int
	Tile  int
	Temp  int
}

// Stats is a point-in-time view of scheduler health.
type Stats struct {
	Ticks            uint64
	LastTickDuration time.Duration
	Failures         map[model.DeviceClass]int
	DroppedFrames    uint64
}

// Scheduler samples a SensorSource on a fixed period. Ticks run serially on
// one goroutine; a slow tick delays the next rather than overlapping it.
type Scheduler struct {
	source           model.SensorSource
	clock            clock.Clock
	logger           *zap.Logger
	interval         time.Duration
	failureThreshold int
	topologyEvery    int
	caps             Capacities
	out              *Mailbox

	detailVisible atomic.Bool

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}

	// Owned by the tick goroutine.
	families []*family
	series   []*Series
	seq      uint64

	statsMu sync.Mutex
	stats   Stats
}

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.interval = d }
}

// WithFailureThreshold sets how many consecutive failed refreshes a device
// class tolerates before its series degrade to unavailable.
func WithFailureThreshold(n int) Option {
	return func(s *Scheduler) { s.failureThreshold = n }
}

// WithTopologyCheckEvery re-lists sensors every n ticks. Zero disables it.
func WithTopologyCheckEvery(n int) Option {
	return func(s *Scheduler) { s.topologyEvery = n }
}

func WithCapacities(c Capacities) Option {
	return func(s *Scheduler) { s.caps = c }
}

// WithMailbox publishes frames into m instead of a private mailbox.
func WithMailbox(m *Mailbox) Option {
	return func(s *Scheduler) { s.out = m }
}

func WithDetailVisible(v bool) Option {
	return func(s *Scheduler) { s.detailVisible.Store(v) }
}

// New builds a scheduler for an opened source. The per-core and per-engine
// sensor set is captured here and kept for the scheduler's lifetime.
func New(source model.SensorSource, opts ...Option) (*Scheduler, error) {
	if source == nil {
		return nil, fmt.Errorf("sampler: nil source")
	}
	s := &Scheduler{
		source:           source,
		clock:            clock.Real(),
		logger:           zap.NewNop(),
		interval:         model.DefaultSampleInterval,
		failureThreshold: model.DefaultFailureThreshold,
		topologyEvery:    model.DefaultTopologyCheckEvery,
		caps: Capacities{
			Total: model.DefaultTotalCapacity,
			Tile:  model.DefaultTileCapacity,
			Temp:  model.DefaultTempCapacity,
		},
	}
	s.detailVisible.Store(true)
	for _, opt := range opts {
		opt(s)
	}

	if s.interval <= 0 {
		return nil, fmt.Errorf("sampler: invalid interval %v", s.interval)
	}
	if s.failureThreshold < 1 {
		return nil, fmt.Errorf("sampler: failure threshold must be >= 1, got %d", s.failureThreshold)
	}
	if s.caps.Total <= 0 || s.caps.Tile <= 0 || s.caps.Temp <= 0 {
		return nil, fmt.Errorf("sampler: invalid capacities %+v", s.caps)
	}
	if s.out == nil {
		s.out = NewMailbox()
	}

	s.buildSeries()
	return s, nil
}

func (s *Scheduler) buildSeries() {
	for _, class := range model.Classes {
		name := "CPU"
		if class == model.ClassGPU {
			name = "GPU"
		}
		f := &family{
			class:   class,
			load:    newSeries(model.TotalLoadKey(class), name+" Load", class, s.caps.Total, model.LoadPrefill),
			temp:    newSeries(model.TotalTempKey(class), name+" Temp", class, s.caps.Temp, model.TempPrefill),
			handles: s.source.ListCoreSensors(class),
		}
		for i, h := range f.handles {
			f.units = append(f.units, newSeries(model.UnitLoadKey(class, i), h.Label, class, s.caps.Tile, model.LoadPrefill))
		}
		s.families = append(s.families, f)
	}
	for _, f := range s.families {
		s.series = append(s.series, f.load, f.temp)
	}
	for _, f := range s.families {
		s.series = append(s.series, f.units...)
	}
}

// Frames returns the mailbox frames are published to.
func (s *Scheduler) Frames() *Mailbox { return s.out }

// Interval returns the sampling period.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Keys lists every series key in publication order.
func (s *Scheduler) Keys() []model.SeriesKey {
	keys := make([]model.SeriesKey, len(s.series))
	for i, sr := range s.series {
		keys[i] = sr.Key
	}
	return keys
}

// SetDetailVisible controls whether frames carry detail text. It takes
// effect from the next tick.
func (s *Scheduler) SetDetailVisible(v bool) { s.detailVisible.Store(v) }

func (s *Scheduler) DetailVisible() bool { return s.detailVisible.Load() }

// Start begins ticking. The first tick fires one interval after Start.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runningLocked() {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	ticker := s.clock.NewTicker(s.interval)
	done := make(chan struct{})

	s.cancel = cancel
	s.done = done
	s.state = StateRunning

	s.logger.Info("sampler started",
		zap.Duration("interval", s.interval),
		zap.Int("series", len(s.series)))

	go s.loop(ctx, ticker, done)
	return nil
}

// Stop halts ticking and waits for an in-flight tick to finish. Safe to
// call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.runningLocked() {
		return
	}
	s.cancel()
	<-s.done
	s.state = StateStopped
	s.logger.Info("sampler stopped", zap.Uint64("ticks", s.Stats().Ticks))
}

// State reports StateStopped once the loop has exited, including when the
// context passed to Start was cancelled.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runningLocked() {
		return StateRunning
	}
	return StateStopped
}

// runningLocked folds a loop that exited on its own context back into the
// stopped state. Callers hold s.mu.
func (s *Scheduler) runningLocked() bool {
	if s.state != StateRunning {
		return false
	}
	select {
	case <-s.done:
		s.cancel()
		s.state = StateStopped
		return false
	default:
		return true
	}
}

func (s *Scheduler) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	out := s.stats
	out.Failures = make(map[model.DeviceClass]int, len(s.stats.Failures))
	for k, v := range s.stats.Failures {
		out.Failures[k] = v
	}
	out.DroppedFrames = s.out.Dropped()
	return out
}

func (s *Scheduler) loop(ctx context.Context, ticker *clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one sampling pass. A tick cancelled mid-refresh publishes
// nothing.
func (s *Scheduler) tick(ctx context.Context) {
	start := s.clock.Now()

	err := s.source.Update(ctx)
	if ctx.Err() != nil {
		return
	}
	failed := model.FailedClasses(err)
	if err != nil {
		s.logger.Debug("sensor refresh failed", zap.Error(err))
	}

	agg := s.source.ReadAggregate()
	s.seq++
	checkTopology := s.topologyEvery > 0 && s.seq%uint64(s.topologyEvery) == 0

	for _, f := range s.families {
		s.sampleFamily(f, agg, failed[f.class], checkTopology)
	}

	s.out.Put(s.buildFrame(start))

	s.statsMu.Lock()
	s.stats.Ticks = s.seq
	s.stats.LastTickDuration = s.clock.Now().Sub(start)
	if s.stats.Failures == nil {
		s.stats.Failures = make(map[model.DeviceClass]int)
	}
	for _, f := range s.families {
		s.stats.Failures[f.class] = f.failures
	}
	s.statsMu.Unlock()
}

func (s *Scheduler) sampleFamily(f *family, agg model.Aggregate, failed bool, checkTopology bool) {
	if failed {
		f.failures++
		if f.failures < s.failureThreshold {
			if f.failures == 1 {
				s.logger.Warn("sensor read failed, holding last samples",
					zap.Stringer("class", f.class))
			}
			f.mark(model.StatusStale)
			return
		}
		if f.failures == s.failureThreshold {
			s.logger.Error("sensor reads keep failing, series degraded",
				zap.Stringer("class", f.class),
				zap.Int("consecutive_failures", f.failures))
		}
		f.temp.push(readout.Fahrenheit(0), model.StatusUnavailable)
		f.load.push(0, model.StatusUnavailable)
		for _, u := range f.units {
			u.push(0, model.StatusUnavailable)
		}
		return
	}

	if f.failures > 0 {
		s.logger.Info("sensor reads recovered",
			zap.Stringer("class", f.class),
			zap.Int("after_failures", f.failures))
		f.failures = 0
	}

	tempC, tempN := agg.Temp(f.class)
	f.temp.push(readout.Fahrenheit(tempC), presence(tempN > 0))
	load, loadN := agg.Load(f.class)
	f.load.push(readout.ClampPercent(load), presence(loadN > 0))

	if checkTopology && !f.topologyStale {
		s.checkTopology(f)
	}

	for i, h := range f.handles {
		u := f.units[i]
		if f.topologyStale {
			u.status = model.StatusStale
			continue
		}
		v, ok := s.source.ReadSensor(h)
		u.push(readout.LoadOrZero(v, ok), presence(ok))
	}
}

func (s *Scheduler) checkTopology(f *family) {
	current := s.source.ListCoreSensors(f.class)
	if sameHandles(f.handles, current) {
		return
	}
	f.topologyStale = true
	s.logger.Warn("per-unit series frozen",
		zap.Stringer("class", f.class),
		zap.Int("captured", len(f.handles)),
		zap.Int("current", len(current)),
		zap.Error(model.ErrTopologyChanged))
}

func sameHandles(a, b []model.SensorHandle) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

func presence(ok bool) model.SeriesStatus {
	if ok {
		return model.StatusLive
	}
	return model.StatusUnavailable
}

func (s *Scheduler) buildFrame(at time.Time) Frame {
	cpu, gpu := s.families[0], s.families[1]

	f := Frame{
		Seq:     s.seq,
		At:      at,
		Tooltip: readout.Tooltip(cpu.temp.last(), gpu.temp.last()),
		Series:  make([]SeriesFrame, len(s.series)),
	}
	if s.detailVisible.Load() {
		d := readout.Detail(cpu.temp.last(), gpu.temp.last(), cpu.load.last(), gpu.load.last())
		f.Detail = &d
	}
	for i, sr := range s.series {
		f.Series[i] = sr.frame()
	}
	return f
}
