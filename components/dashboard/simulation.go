package dashboard

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"
)

// SimulationState is the phase of the metric simulation loop.
type SimulationState string

const (
	SimulationIdle     SimulationState = "idle"
	SimulationArmed    SimulationState = "armed"
	SimulationUpdating SimulationState = "updating"
)

var (
	// ErrSimulationRunning is returned by Start on a simulation that was already started.
	ErrSimulationRunning = errors.New("dashboard: simulation already running")
	// ErrSimulationStopped is returned when an update is forced on an idle simulation.
	ErrSimulationStopped = errors.New("dashboard: simulation is not running")
)

// SimulationConfig controls the update cadence.
type SimulationConfig struct {
	// Interval between update bursts.
	Interval time.Duration `yaml:"interval" json:"interval"`
	// TickInterval between metric mutations inside a burst.
	TickInterval time.Duration `yaml:"tick_interval" json:"tick_interval"`
	// UpdateWindow is how long a burst lasts.
	UpdateWindow time.Duration `yaml:"update_window" json:"update_window"`
	// MaxDelta bounds each random step to [-MaxDelta, MaxDelta).
	MaxDelta float64 `yaml:"max_delta" json:"max_delta"`
}

// DefaultSimulationConfig mirrors the live dashboard cadence: a 3s burst of 2s ticks every 30s.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		Interval:     30 * time.Second,
		TickInterval: 2 * time.Second,
		UpdateWindow: 3 * time.Second,
		MaxDelta:     5,
	}
}

func (c SimulationConfig) withDefaults() SimulationConfig {
	def := DefaultSimulationConfig()
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	if c.UpdateWindow <= 0 {
		c.UpdateWindow = def.UpdateWindow
	}
	if c.MaxDelta <= 0 {
		c.MaxDelta = def.MaxDelta
	}
	return c
}

// SimulationOptions wires a Simulation to its collaborators.
type SimulationOptions struct {
	Config    SimulationConfig
	Scheduler Scheduler
	Rand      *rand.Rand
	// OnStateChange and OnTick run after the simulation releases its lock, in the order
	// the transitions were made. A slow callback delays only the goroutine that fired it.
	OnStateChange func(SimulationState)
	OnTick        func(Snapshot[MetricRecord])
}

// Simulation periodically perturbs the metric collection of a RecordStore. Every
// transition and tick is serialized, and callbacks from cancelled timers are ignored.
type Simulation struct {
	mu    sync.Mutex
	store *RecordStore
	opts  SimulationOptions
	cfg   SimulationConfig
	rng   *rand.Rand

	state SimulationState
	run   uint64
	burst uint64
	ticks int

	outer Timer
	inner Timer
	stop  Timer

	pending []func()
}

// NewSimulation builds an idle simulation over store.
func NewSimulation(store *RecordStore, opts SimulationOptions) *Simulation {
	if opts.Scheduler == nil {
		opts.Scheduler = NewTimeScheduler()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Simulation{
		store: store,
		opts:  opts,
		cfg:   opts.Config.withDefaults(),
		rng:   opts.Rand,
		state: SimulationIdle,
	}
}

// Config returns the effective configuration.
func (s *Simulation) Config() SimulationConfig {
	return s.cfg
}

// State returns the current phase.
func (s *Simulation) State() SimulationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ticks returns how many metric mutations have been applied since construction.
func (s *Simulation) Ticks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Start arms the outer timer. It fails if the simulation is already started.
func (s *Simulation) Start() error {
	s.mu.Lock()
	defer s.unlock()
	if s.state != SimulationIdle {
		return ErrSimulationRunning
	}
	s.run++
	run := s.run
	s.outer = s.opts.Scheduler.Every(s.cfg.Interval, func() { s.beginUpdate(run) })
	s.setState(SimulationArmed)
	return nil
}

// Stop cancels every timer and returns to idle. Calling it more than once is safe.
func (s *Simulation) Stop() {
	s.mu.Lock()
	defer s.unlock()
	s.cancelBurst()
	if s.outer != nil {
		s.outer.Stop()
		s.outer = nil
	}
	s.run++
	s.setState(SimulationIdle)
}

// TriggerUpdate starts a burst right away without waiting for the outer timer.
func (s *Simulation) TriggerUpdate() error {
	s.mu.Lock()
	run := s.run
	idle := s.state == SimulationIdle
	s.mu.Unlock()
	if idle {
		return ErrSimulationStopped
	}
	s.beginUpdate(run)
	return nil
}

func (s *Simulation) beginUpdate(run uint64) {
	s.mu.Lock()
	defer s.unlock()
	if s.run != run || s.state == SimulationIdle {
		return
	}
	s.cancelBurst()
	s.burst++
	burst := s.burst
	s.setState(SimulationUpdating)
	s.inner = s.opts.Scheduler.Every(s.cfg.TickInterval, func() { s.tick(burst) })
	s.stop = s.opts.Scheduler.After(s.cfg.UpdateWindow, func() { s.endUpdate(burst) })
}

func (s *Simulation) tick(burst uint64) {
	s.mu.Lock()
	defer s.unlock()
	if s.burst != burst || s.state != SimulationUpdating {
		return
	}
	snapshot := s.store.ApplyMetricDeltas(func(int, MetricRecord) float64 {
		return s.nextDelta()
	})
	s.ticks++
	if s.opts.OnTick != nil {
		s.notify(func() { s.opts.OnTick(snapshot) })
	}
}

func (s *Simulation) endUpdate(burst uint64) {
	s.mu.Lock()
	defer s.unlock()
	if s.burst != burst || s.state != SimulationUpdating {
		return
	}
	s.cancelBurst()
	s.setState(SimulationArmed)
}

// nextDelta draws uniformly from [-MaxDelta, MaxDelta) and rounds to one decimal.
func (s *Simulation) nextDelta() float64 {
	raw := s.rng.Float64()*2*s.cfg.MaxDelta - s.cfg.MaxDelta
	return roundTo(raw, 1)
}

func (s *Simulation) cancelBurst() {
	if s.inner != nil {
		s.inner.Stop()
		s.inner = nil
	}
	if s.stop != nil {
		s.stop.Stop()
		s.stop = nil
	}
}

func (s *Simulation) setState(next SimulationState) {
	if s.state == next {
		return
	}
	s.state = next
	if s.opts.OnStateChange != nil {
		s.notify(func() { s.opts.OnStateChange(next) })
	}
}

// notify queues fn until the lock is released. Callers must hold s.mu.
func (s *Simulation) notify(fn func()) {
	s.pending = append(s.pending, fn)
}

// unlock releases s.mu and then runs the callbacks queued while it was held.
func (s *Simulation) unlock() {
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}
