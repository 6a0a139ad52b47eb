// Package scheduler runs a fixed set of named periodic subsystems, each
// with its own period, priority, and body, under a single cooperative
// shutdown flag with deadline measurement and bounded restart-with-backoff.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sls-core/sim/internal/clock"
	"github.com/sls-core/sim/internal/metrics"
	"github.com/sls-core/sim/internal/registry"
	"github.com/sls-core/sim/internal/sink"
)

// Body is one subsystem's periodic work. elapsed is the wall time since the
// previous invocation (dt, in seconds). A returned error is treated as a
// fatal body error and triggers the restart policy.
type Body func(ctx context.Context, elapsedS float64) error

// Subsystem is one named periodic task: name, period, priority, and body.
type Subsystem struct {
	Name     string
	Period   time.Duration
	Priority int
	Body     Body

	// Component tags this subsystem's own sink events (deadline misses,
	// restarts) with its event-sink component code (e.g. "FCC", "SAFETY");
	// defaults to Name if unset.
	Component string

	// Deadline is the configured per-tick execution budget; a body that
	// overruns it produces a Warn event and a counted deadline miss. The
	// running body is never interrupted — there is no hard timeout.
	Deadline time.Duration

	// MaxRestarts bounds how many times this subsystem is restarted after
	// a fatal body error before the scheduler raises FatalShutdown.
	MaxRestarts int
}

// unit is the scheduler's internal handle on one running subsystem.
type unit struct {
	sub      Subsystem
	cancel   context.CancelFunc
	restarts int
}

// Scheduler runs a fixed set of subsystems, each as its own goroutine
// looping on start := now(); body(ctx, dt); sleep_until(start+period). A
// registry.Registry exposes the running set for introspection only —
// subsystems are all registered before Run, never added dynamically.
type Scheduler struct {
	clk     clock.Clock
	evs     *sink.Sink
	metrics *metrics.Metrics

	units    *registry.Registry[*unit]
	wg       sync.WaitGroup
	mu       sync.Mutex
	shutdown bool

	fatal chan struct{}
}

func New(clk clock.Clock, evs *sink.Sink, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		clk:     clk,
		evs:     evs,
		metrics: m,
		units:   registry.New[*unit](),
		fatal:   make(chan struct{}),
	}
}

// Register adds a subsystem. All subsystems must be registered before Run;
// this is not a dynamic registry.
func (s *Scheduler) Register(sub Subsystem) {
	if sub.Deadline <= 0 {
		sub.Deadline = time.Duration(float64(sub.Period) * 1.5)
	}
	if sub.Component == "" {
		sub.Component = sub.Name
	}
	s.units.Set(sub.Name, &unit{sub: sub})
}

// Run starts every registered subsystem and blocks until ctx is cancelled,
// Shutdown is called, or a subsystem exhausts its restart budget
// (FatalShutdown), whichever comes first. Subsystems are started in
// descending priority order.
func (s *Scheduler) Run(ctx context.Context) {
	ctx, cancelAll := context.WithCancel(ctx)
	defer cancelAll()

	names := s.units.Keys()
	ordered := make([]*unit, 0, len(names))
	for _, n := range names {
		u, _ := s.units.Get(n)
		ordered = append(ordered, u)
	}
	sortByPriorityDesc(ordered)

	for _, u := range ordered {
		s.startUnit(ctx, u)
	}

	select {
	case <-ctx.Done():
	case <-s.fatal:
		cancelAll()
	}
	s.wg.Wait()
}

// Shutdown raises the global shutdown flag; every subsystem loop observes
// it within one of its periods.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdown {
		return
	}
	s.shutdown = true
	close(s.fatal)
}

func (s *Scheduler) isShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

func (s *Scheduler) startUnit(ctx context.Context, u *unit) {
	unitCtx, cancel := context.WithCancel(ctx)
	u.cancel = cancel
	s.wg.Add(1)
	go s.runLoop(unitCtx, u)
}

// runLoop is the per-subsystem body: start := now(); body(ctx, dt);
// sleep_until(start+period), with deadline measurement and an
// exponential-backoff restart policy.
func (s *Scheduler) runLoop(ctx context.Context, u *unit) {
	defer s.wg.Done()

	last := s.clk.Now()
	for {
		if s.isShutdown() {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		start := s.clk.Now()
		dt := start.Since(last)
		last = start

		err := s.runOnce(ctx, u, dt.Seconds())
		if err != nil {
			if s.handleFailure(ctx, u, err) {
				return // FatalShutdown: restart budget exhausted
			}
			continue // restarted; loop again without sleeping a full period
		}

		s.clk.SleepUntil(start.Add(u.sub.Period))
	}
}

// runOnce executes one body invocation, measuring wall time against the
// configured deadline.
func (s *Scheduler) runOnce(ctx context.Context, u *unit, dt float64) (err error) {
	begin := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subsystem %s panicked: %v", u.sub.Name, r)
		}
		elapsed := time.Since(begin)
		if s.metrics != nil {
			s.metrics.SubsystemTicks.WithLabelValues(u.sub.Name).Inc()
			s.metrics.SubsystemTickSeconds.WithLabelValues(u.sub.Name).Observe(elapsed.Seconds())
		}
		if elapsed > u.sub.Deadline {
			if s.metrics != nil {
				s.metrics.SubsystemDeadlineMiss.WithLabelValues(u.sub.Name).Inc()
			}
			s.evs.Emit(sink.Warn, u.sub.Component, fmt.Sprintf("%s missed deadline: %s > %s",
				u.sub.Name, elapsed, u.sub.Deadline))
		}
	}()
	return u.sub.Body(ctx, dt)
}

// handleFailure records a fatal body error and either restarts the
// subsystem after an exponential backoff or, once MaxRestarts is
// exceeded, raises FatalShutdown and cancels every subsystem. Returns true
// if FatalShutdown was raised (caller should stop this loop).
func (s *Scheduler) handleFailure(ctx context.Context, u *unit, err error) bool {
	s.evs.Emit(sink.Error, "SCHED", fmt.Sprintf("%s: %s", u.sub.Name, err.Error()))

	u.restarts++
	if s.metrics != nil {
		s.metrics.SubsystemRestarts.WithLabelValues(u.sub.Name).Inc()
	}
	if u.restarts > u.sub.MaxRestarts {
		s.evs.Emit(sink.Critical, "SCHED", fmt.Sprintf("%s exceeded max restarts, raising FatalShutdown", u.sub.Name))
		s.Shutdown()
		return true
	}

	backoff := time.Duration(1<<uint(u.restarts-1)) * time.Second
	wake := s.clk.Now().Add(backoff)
	s.clk.SleepUntil(wake)
	return false
}

// sortByPriorityDesc orders subsystems highest-priority first.
func sortByPriorityDesc(units []*unit) {
	for i := 1; i < len(units); i++ {
		for j := i; j > 0 && units[j].sub.Priority > units[j-1].sub.Priority; j-- {
			units[j], units[j-1] = units[j-1], units[j]
		}
	}
}
