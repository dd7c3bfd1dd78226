// Package monitor turns a running world into an HTTP server that can be
// inspected and controlled while it evolves.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"

	"ecogrid/internal/core"
	"ecogrid/internal/logging"
	"ecogrid/internal/runner"
	"ecogrid/internal/sims/trophic"
	"ecogrid/internal/sims/world"
	"ecogrid/internal/stream"
)

const shutdownTimeout = 5 * time.Second

// Monitor owns a world and advances it on a fixed schedule. Handlers and the
// tick loop share the world under mu.
type Monitor struct {
	mu     sync.Mutex
	world  *world.World
	paused bool
	limit  uint32

	pace            *core.FixedStep
	hub             *stream.Hub
	observers       []runner.Observer
	profileDuration time.Duration
	openBrowser     bool
	log             *logging.Logger
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithTPS sets how many generations are advanced per second.
func WithTPS(tps int) Option {
	return func(m *Monitor) { m.pace.SetTPS(tps) }
}

// WithLimit pauses the loop once the world reaches generation n. Zero means
// no limit.
func WithLimit(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.limit = uint32(n)
		}
	}
}

// WithObservers adds observers that see every generation the loop or the
// step endpoint produces.
func WithObservers(obs ...runner.Observer) Option {
	return func(m *Monitor) { m.observers = append(m.observers, obs...) }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Monitor) { m.log = l }
}

// WithBrowser opens the monitor in the default browser once it listens.
func WithBrowser(open bool) Option {
	return func(m *Monitor) { m.openBrowser = open }
}

// WithProfileDuration sets how long /api/profile samples the CPU.
func WithProfileDuration(d time.Duration) Option {
	return func(m *Monitor) { m.profileDuration = d }
}

// WithPaused starts the monitor paused.
func WithPaused(paused bool) Option {
	return func(m *Monitor) { m.paused = paused }
}

// New creates a monitor for w.
func New(w *world.World, opts ...Option) *Monitor {
	m := &Monitor{
		world:           w,
		pace:            core.NewFixedStep(4),
		profileDuration: time.Second,
		log:             logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.hub = stream.NewHub(m.log)
	return m
}

// Paused reports whether the loop is paused.
func (m *Monitor) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// SetPaused pauses or resumes the loop.
func (m *Monitor) SetPaused(paused bool) {
	m.mu.Lock()
	m.paused = paused
	m.mu.Unlock()
	m.log.Infof("monitor paused=%t", paused)
}

// Continue resumes the loop. A generation limit that has already been
// reached is cleared so the loop keeps running instead of pausing again on
// the next step.
func (m *Monitor) Continue() {
	m.mu.Lock()
	if m.limit > 0 && m.world.Grid().Generation() >= m.limit {
		m.log.Infof("clearing generation limit %d", m.limit)
		m.limit = 0
	}
	m.paused = false
	m.mu.Unlock()
	m.log.Infof("monitor paused=false")
}

// Snapshot copies the current generation.
func (m *Monitor) Snapshot() trophic.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.world.Grid().Snapshot()
}

// Step advances the world by one generation and publishes it.
func (m *Monitor) Step(ctx context.Context) error {
	m.mu.Lock()
	m.world.Step()
	snap := m.world.Grid().Snapshot()
	if m.limit > 0 && snap.Generation >= m.limit && !m.paused {
		m.paused = true
		m.log.Infof("reached generation %d, pausing", snap.Generation)
	}
	m.mu.Unlock()

	return m.publish(ctx, snap)
}

// Reset rebuilds the starting layout with seed (zero keeps the configured
// seed) and publishes generation 0.
func (m *Monitor) Reset(ctx context.Context, seed int64) error {
	m.mu.Lock()
	m.world.Reset(seed)
	snap := m.world.Grid().Snapshot()
	used := m.world.Seed()
	m.mu.Unlock()

	m.log.Infof("world reset with seed %d", used)
	return m.publish(ctx, snap)
}

func (m *Monitor) publish(ctx context.Context, snap trophic.Snapshot) error {
	var errs []error
	if err := m.hub.Observe(ctx, snap); err != nil {
		errs = append(errs, err)
	}
	for _, o := range m.observers {
		if err := o.Observe(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run advances the world at the configured pace until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.pace.Step())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if m.Paused() {
				continue
			}
			if err := m.Step(ctx); err != nil {
				m.log.Warnf("publishing generation failed: %v", err)
			}
		}
	}
}

// Handler returns the HTTP routes of the monitor.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", m.index).Methods(http.MethodGet)
	r.HandleFunc("/api/generation", m.generation).Methods(http.MethodGet)
	r.HandleFunc("/api/cells", m.cells).Methods(http.MethodGet)
	r.HandleFunc("/api/cell/{row:[0-9]+}/{col:[0-9]+}", m.cell).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", m.stats).Methods(http.MethodGet)
	r.HandleFunc("/api/params", m.params).Methods(http.MethodGet)
	r.HandleFunc("/api/pause", m.pause).Methods(http.MethodPost)
	r.HandleFunc("/api/continue", m.resume).Methods(http.MethodPost)
	r.HandleFunc("/api/step", m.step).Methods(http.MethodPost)
	r.HandleFunc("/api/reset", m.reset).Methods(http.MethodPost)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)
	r.HandleFunc("/api/inspect", m.inspect).Methods(http.MethodGet)
	r.Handle("/ws", m.hub)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	return r
}

// Serve listens on addr, runs the tick loop and blocks until ctx is done.
func (m *Monitor) Serve(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	url := fmt.Sprintf("http://localhost:%d", listener.Addr().(*net.TCPAddr).Port)
	m.log.Infof("monitoring ecogrid with %s", url)
	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			m.log.Warnf("cannot open browser: %v", err)
		}
	}

	srv := &http.Server{Handler: m.Handler(), ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(listener) }()

	loopCtx, stopLoop := context.WithCancel(ctx)
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		m.Run(loopCtx)
	}()

	select {
	case <-ctx.Done():
		err = nil
	case err = <-serveErr:
	}

	stopLoop()
	<-loopDone
	m.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return err
}

// Close stops the websocket hub. Serve closes it on its own.
func (m *Monitor) Close() error { return m.hub.Close() }
