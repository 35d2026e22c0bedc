package dashboard

import (
	"context"
	"errors"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	errMissingSource = errors.New("dashboard: user source not configured")
	errServiceClosed = errors.New("dashboard: service closed")
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Source      UserSource
	Config      *Config
	Logger      logrus.FieldLogger
	Telemetry   Telemetry
	RefreshHook RefreshHook
	Scheduler   Scheduler
	Charts      *ChartRenderer
	Validator   RequestValidator
	// NewRand seeds per-session randomness. Each session gets its own generator.
	NewRand func() *rand.Rand
	Now     func() time.Time
	// DisableSimulation mounts sessions without arming the metric simulation.
	DisableSimulation bool
	// HookTimeout bounds each refresh hook call made from simulation timers.
	HookTimeout time.Duration
}

// Service mounts dashboard sessions and keeps them addressable by id.
type Service struct {
	opts Options

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Config == nil {
		cfg := DefaultConfig()
		opts.Config = &cfg
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewTimeScheduler()
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.NewRand == nil {
		opts.NewRand = func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HookTimeout <= 0 {
		opts.HookTimeout = defaultHookTimeout
	}
	if opts.Charts == nil {
		opts.Charts = NewChartRenderer(WithChartCache(NewChartCache(defaultChartTTL, WithCacheClock(opts.Now))))
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Config returns the effective dashboard configuration.
func (s *Service) Config() *Config {
	return s.opts.Config
}

// Logger returns the service logger.
func (s *Service) Logger() logrus.FieldLogger {
	return s.opts.Logger
}

// Mount creates a session, runs the initial fetch, and arms the simulation. A failed fetch
// does not fail the mount: the session stays empty and the error is logged.
func (s *Service) Mount(ctx context.Context) (*Session, error) {
	if s.opts.Source == nil {
		return nil, errMissingSource
	}
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, errServiceClosed
	}

	session := newSession(sessionDeps{
		id:        uuid.NewString(),
		cfg:       s.opts.Config,
		logger:    s.opts.Logger,
		hook:      s.opts.RefreshHook,
		telemetry: s.opts.Telemetry,
		scheduler: s.opts.Scheduler,
		now:       s.opts.Now,
		rng:       s.opts.NewRand(),
		timeout:   s.opts.HookTimeout,
	})
	session.load(ctx, s.opts.Source)
	if !s.opts.DisableSimulation {
		if err := session.sim.Start(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = session.Dispose(ctx)
		return nil, errServiceClosed
	}
	s.sessions[session.id] = session
	s.mu.Unlock()

	_ = session.emit(ctx, DashboardEvent{Kind: EventSessionMounted})
	s.recordTelemetry(ctx, "dashboard.session.mount", map[string]any{
		"session_id": session.id,
	})
	return session, nil
}

// Session looks up a mounted session.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Sessions lists mounted session ids in lexical order.
func (s *Service) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dispose unmounts a session and stops its timers.
func (s *Service) Dispose(ctx context.Context, id string) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	err := session.Dispose(ctx)
	s.recordTelemetry(ctx, "dashboard.session.dispose", map[string]any{
		"session_id": id,
	})
	return err
}

// Close disposes every session. Later mounts fail.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	var errs []error
	for _, session := range sessions {
		if err := session.Dispose(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// TableView derives a table for a mounted session.
func (s *Service) TableView(ctx context.Context, sessionID, table string, req TableRequest) (TablePayload, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return TablePayload{}, err
	}
	return session.TableView(table, req)
}

// ToggleSort applies a header click for a mounted session.
func (s *Service) ToggleSort(ctx context.Context, sessionID, table, key string) (SortConfig, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return SortConfig{}, err
	}
	cfg, err := session.ToggleSort(table, key)
	if err != nil {
		return SortConfig{}, err
	}
	s.recordTelemetry(ctx, "dashboard.sort.toggle", map[string]any{
		"session_id": sessionID,
		"table":      table,
		"key":        cfg.Key,
		"direction":  string(cfg.Direction),
	})
	return cfg, nil
}

// Export renders a table download for a mounted session.
func (s *Service) Export(ctx context.Context, sessionID, table string, format ExportFormat, req TableRequest) (Export, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return Export{}, err
	}
	return session.Export(ctx, table, format, req)
}

// Refresh forces an update burst for a mounted session.
func (s *Service) Refresh(ctx context.Context, sessionID string) error {
	session, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	return session.Refresh(ctx)
}

// NotifyDashboardUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyDashboardUpdated(ctx context.Context, event DashboardEvent) error {
	if event.At.IsZero() {
		event.At = s.opts.Now()
	}
	if err := s.opts.RefreshHook.DashboardUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.event", map[string]any{
		"session_id": event.SessionID,
		"kind":       event.Kind,
	})
	return nil
}

// ValidateRequest checks a transport payload against a named request schema.
func (s *Service) ValidateRequest(name string, payload map[string]any) error {
	return s.opts.Validator.Validate(name, payload)
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

type noopRefreshHook struct{}

func (noopRefreshHook) DashboardUpdated(context.Context, DashboardEvent) error {
	return nil
}
