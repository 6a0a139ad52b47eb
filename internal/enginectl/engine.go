// Package enginectl implements the Engine Control subsystem: N independent
// engines, each a small FSM driven by a coordinated ignition/shutdown
// sequence, with simulated chamber pressure, turbopump RPM, and nozzle
// temperature signals and a sticky fault policy.
package enginectl

import (
	"context"
	"math"
	"math/rand"

	"github.com/sls-core/sim/internal/statemachine"
)

const (
	restPa  = 101_325.0
	pMaxPa  = 12_000_000.0 // overridable via Config.ChamberPressureMaxPa
	minPa   = 1_000_000.0  // ChamberPressureLow threshold (1 MPa)
	maxNozzleK = 3_000.0

	minThrottlePct = 60.0 // Running floor
)

// EngineFsm is the per-engine lifecycle state.
type EngineFsm string

const (
	Offline  EngineFsm = "Offline"
	PreStart EngineFsm = "PreStart"
	Ignition EngineFsm = "Ignition"
	Running  EngineFsm = "Running"
	Shutdown EngineFsm = "Shutdown"
	Fault    EngineFsm = "Fault"
)

// State is one engine's full public record.
type State struct {
	ID                int
	FSM               EngineFsm
	ThrustPct         float64
	ChamberPa         float64
	FuelFlowKgS       float64
	OxFlowKgS         float64
	NozzleK           float64
	TurbopumpRPM      float64
	IgnitionElapsedS  float64
	ShutdownElapsedS  float64
	Fault             *FaultKind
}

// Engine is one engine's mutable runtime, owned exclusively by Engine
// Control — no other subsystem writes these fields.
type Engine struct {
	id  int
	fsm *statemachine.Machine
	rng *rand.Rand

	thrustPct        float64
	ignitionElapsedS float64
	shutdownElapsedS float64
	chamberPMax      float64
	fault            *FaultKind

	// last* cache this tick's noisy readings so the fault check and the
	// published snapshot agree on the same sampled values.
	lastChamberPa    float64
	lastTurbopumpRPM float64
	lastNozzleK      float64
}

// New returns an engine in the Offline state.
func New(id int, seed int64, chamberPMax float64) *Engine {
	if chamberPMax <= 0 {
		chamberPMax = pMaxPa
	}
	e := &Engine{
		id:          id,
		rng:         rand.New(rand.NewSource(seed)),
		chamberPMax: chamberPMax,
	}

	m := statemachine.NewMachine(statemachine.State(Offline))
	for _, s := range []EngineFsm{Offline, PreStart, Ignition, Running, Shutdown, Fault} {
		m.AddState(statemachine.StateConfig{Name: statemachine.State(s)})
	}
	e.fsm = m
	return e
}

func (e *Engine) FSM() EngineFsm { return EngineFsm(e.fsm.Current()) }

// Reset clears a sticky Fault and returns the engine to Offline. A fault is
// sticky until an external Reset command arrives.
func (e *Engine) Reset() {
	if e.FSM() != Fault {
		return
	}
	e.fault = nil
	e.thrustPct = 0
	e.ignitionElapsedS = 0
	e.shutdownElapsedS = 0
	e.fsm.Force(context.Background(), statemachine.State(Offline))
}

// Tick advances the engine by dt seconds. ignitionActive and
// shutdownRequested are supplied by the coordinating IgnitionSequence, a
// top-level active flag that drives all engines through coordinated stages.
func (e *Engine) Tick(ctx context.Context, dt float64, ignitionActive, shutdownRequested bool) State {
	if e.FSM() == Fault {
		return e.snapshot()
	}

	if shutdownRequested && e.FSM() == Running {
		e.fsm.Force(ctx, statemachine.State(Shutdown))
		e.shutdownElapsedS = 0
	}

	switch e.FSM() {
	case Offline:
		if ignitionActive {
			e.fsm.Force(ctx, statemachine.State(PreStart))
			e.ignitionElapsedS = 0
		}
	case PreStart:
		e.ignitionElapsedS += dt
		if e.ignitionElapsedS >= 3.0 {
			e.fsm.Force(ctx, statemachine.State(Ignition))
		}
	case Ignition:
		e.ignitionElapsedS += dt
		if e.ignitionElapsedS >= 4.0 {
			e.fsm.Force(ctx, statemachine.State(Running))
			e.thrustPct = minThrottlePct
		}
	case Running:
		// thrust_pct held at floor by default; Flight Control's throttle
		// command is applied by the caller via SetThrustPct.
	case Shutdown:
		e.shutdownElapsedS += dt
		e.thrustPct = math.Max(0, minThrottlePct*(1-e.shutdownElapsedS/2.0))
		if e.shutdownElapsedS >= 2.0 {
			e.thrustPct = 0
			e.fsm.Force(ctx, statemachine.State(Offline))
		}
	}

	e.lastChamberPa = e.chamberPaNoisy()
	e.lastTurbopumpRPM = e.turbopumpRPMNoisy()
	e.lastNozzleK = e.nozzleKNoisy()
	e.checkFaults()
	return e.snapshot()
}

// SetThrustPct lets Flight Control command throttle while Running; it has
// no effect outside Running (the ignition floor and shutdown ramp own
// thrust during those phases).
func (e *Engine) SetThrustPct(pct float64) {
	if e.FSM() != Running {
		return
	}
	if pct < minThrottlePct {
		pct = minThrottlePct
	}
	if pct > 100 {
		pct = 100
	}
	e.thrustPct = pct
}

func (e *Engine) checkFaults() {
	if e.FSM() != Running {
		return
	}

	if e.rng.Float64() < 1e-4 {
		e.raiseFault(SensorInjected)
		return
	}

	switch {
	case e.lastChamberPa > e.chamberPMax:
		e.raiseFault(ChamberPressureHigh)
	case e.lastChamberPa < minPa:
		e.raiseFault(ChamberPressureLow)
	case e.FSM() == Running && e.lastTurbopumpRPM < 8_000:
		e.raiseFault(TurbopumpUnderspeed)
	case e.lastNozzleK > maxNozzleK:
		e.raiseFault(NozzleOverTemp)
	}
}

func (e *Engine) raiseFault(k FaultKind) {
	fk := k
	e.fault = &fk
	e.thrustPct = 0
	e.fsm.Force(context.Background(), statemachine.State(Fault))
}

func (e *Engine) chamberPaNoisy() float64 {
	base := restPa
	if e.FSM() == Running {
		base = restPa + (e.chamberPMax-restPa)*e.thrustPct/100
	}
	return base * (1 + 0.02*e.rng.NormFloat64())
}

func (e *Engine) turbopumpRPMNoisy() float64 {
	var base float64
	switch e.FSM() {
	case Running:
		base = 8_000 + 4_000*e.thrustPct/100
	case PreStart, Ignition:
		// Spin-up ramp: held at 0 until t=1s, then rises linearly to
		// 12,000 RPM by t=3s, and holds there until Running is reached.
		switch {
		case e.ignitionElapsedS < 1.0:
			base = 0
		case e.ignitionElapsedS < 3.0:
			base = 12_000 * (e.ignitionElapsedS - 1.0) / 2.0
		default:
			base = 12_000
		}
	}
	return base * (1 + 0.05*e.rng.NormFloat64())
}

func (e *Engine) nozzleKNoisy() float64 {
	base := 300.0
	if e.FSM() == Running {
		base = 2_500
	}
	return base + 50*e.rng.NormFloat64()
}

func (e *Engine) fuelFlowKgS() float64 {
	if e.FSM() != Running {
		return 0
	}
	return 200 * e.thrustPct / 100
}

func (e *Engine) oxFlowKgS() float64 {
	if e.FSM() != Running {
		return 0
	}
	return 400 * e.thrustPct / 100
}

func (e *Engine) snapshot() State {
	return State{
		ID:               e.id,
		FSM:              e.FSM(),
		ThrustPct:        e.thrustPct,
		ChamberPa:        e.lastChamberPa,
		FuelFlowKgS:      e.fuelFlowKgS(),
		OxFlowKgS:        e.oxFlowKgS(),
		NozzleK:          e.lastNozzleK,
		TurbopumpRPM:     e.lastTurbopumpRPM,
		IgnitionElapsedS: e.ignitionElapsedS,
		ShutdownElapsedS: e.shutdownElapsedS,
		Fault:            e.fault,
	}
}
