package enginectl

import "context"

// HealthStatus is the worst-of-N fleet health rollup, grounded on the
// PropulsionHealth aggregate pattern (see DESIGN.md "Engine health
// rollup").
type HealthStatus string

const (
	HealthOK       HealthStatus = "OK"
	HealthDegraded HealthStatus = "Degraded"
	HealthCritical HealthStatus = "Critical"
	HealthFailed   HealthStatus = "Failed"
)

// Fleet owns the N engines and the coordinated IgnitionSequence flag that
// drives every engine through the same purge/ramp/ignite/run stages.
type Fleet struct {
	engines []*Engine

	ignitionActive   bool
	shutdownRequested bool
}

// NewFleet constructs n engines, each seeded independently so their noise
// and SensorInjected draws are uncorrelated.
func NewFleet(n int, baseSeed int64, chamberPMax float64) *Fleet {
	f := &Fleet{engines: make([]*Engine, n)}
	for i := 0; i < n; i++ {
		f.engines[i] = New(i+1, baseSeed+int64(i), chamberPMax)
	}
	return f
}

// StartIgnition raises the fleet-wide IgnitionSequence flag; every engine
// currently Offline begins its own PreStart timer on the next Tick.
func (f *Fleet) StartIgnition() { f.ignitionActive = true }

// RequestShutdown raises the fleet-wide shutdown flag; every Running engine
// begins its 2s ramp-down on the next Tick.
func (f *Fleet) RequestShutdown() {
	f.shutdownRequested = true
	f.ignitionActive = false
}

// Tick advances every engine by dt and returns their snapshots.
func (f *Fleet) Tick(ctx context.Context, dt float64) []State {
	states := make([]State, len(f.engines))
	for i, e := range f.engines {
		states[i] = e.Tick(ctx, dt, f.ignitionActive, f.shutdownRequested)
	}
	return states
}

// SetThrottle applies a throttle fraction (0..1) to every Running engine,
// scaling between the 60% floor and 100%.
func (f *Fleet) SetThrottle(frac float64) {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	pct := minThrottlePct + frac*(100-minThrottlePct)
	for _, e := range f.engines {
		e.SetThrustPct(pct)
	}
}

// AllRunning reports whether every engine has reached Running — the guard
// for the Ignition->Liftoff mission phase transition.
func (f *Fleet) AllRunning() bool {
	for _, e := range f.engines {
		if e.FSM() != Running {
			return false
		}
	}
	return true
}

// TotalThrustFrac returns the fleet's mean thrust fraction (0..1), used by
// Flight Control to compute net vehicle thrust.
func (f *Fleet) TotalThrustFrac() float64 {
	if len(f.engines) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range f.engines {
		sum += e.thrustPct / 100
	}
	return sum / float64(len(f.engines))
}

// TotalFuelFlowKgS and TotalOxFlowKgS sum each engine's current flow.
func (f *Fleet) TotalFuelFlowKgS() float64 {
	sum := 0.0
	for _, e := range f.engines {
		sum += e.fuelFlowKgS()
	}
	return sum
}

func (f *Fleet) TotalOxFlowKgS() float64 {
	sum := 0.0
	for _, e := range f.engines {
		sum += e.oxFlowKgS()
	}
	return sum
}

// Reset clears every faulted engine in response to an external Reset command.
func (f *Fleet) Reset() {
	for _, e := range f.engines {
		e.Reset()
	}
}

// Health rolls every engine's fault (if any) up to the worst severity
// observed across the fleet.
func (f *Fleet) Health() HealthStatus {
	worst := HealthOK
	for _, e := range f.engines {
		if e.fault == nil {
			continue
		}
		switch severityOf(*e.fault) {
		case SeverityCatastrophic:
			return HealthFailed
		case SeverityCritical, SeverityMajor:
			worst = HealthCritical
		case SeverityMinor, SeverityWarn:
			if worst == HealthOK {
				worst = HealthDegraded
			}
		}
	}
	return worst
}
