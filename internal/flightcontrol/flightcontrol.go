// Package flightcontrol implements the Flight Control subsystem: the
// dynamics integrator, the decoupled-axis autopilot, and the mission-phase
// policy.
//
// Design decisions (recorded here rather than guessed silently):
//   - T_max (max vehicle thrust) is a Config-supplied constant rather than
//     a derived formula.
//   - The autopilot targets a nominal 3g ascent rate from Liftoff
//     (target_v = 3·9.81·t_since_liftoff), which the PID then tracks; the
//     single vertical axis of VehicleState stands in for a fuller per-axis
//     decomposition.
//   - The operator-commanded throttle field (set via the Throttle command)
//     is wired into the thrust formula as throttle_frac's operator
//     component, multiplied by a phase-based schedule (1.0 default, 0.75
//     during Ascent); the two are treated as multiplicative so both matter.
package flightcontrol

import (
	"context"
	"math"
	"time"

	"github.com/sls-core/sim/internal/enginectl"
	"github.com/sls-core/sim/internal/sink"
	"github.com/sls-core/sim/internal/vehicle"
)

const (
	gravityMS2   = 9.81
	dragCd       = 0.3
	dragAreaM2   = 50.0
	soundSpeedMS = 343.0
	fuelBurnKgS  = 1000.0

	dynamicPressureWarnPa = 50_000.0
	gLoadWarnG            = 5.0
)

// pidAxis is a single-axis PID controller with fixed Kp/Ki/Kd gains.
type pidAxis struct {
	kp, ki, kd float64
	integral   float64
	prevErr    float64
	hasPrev    bool
}

func newAxis() *pidAxis {
	return &pidAxis{kp: 0.1, ki: 0.01, kd: 0.05}
}

func (p *pidAxis) update(target, actual, dt float64) float64 {
	e := target - actual
	p.integral += e * dt
	deriv := 0.0
	if p.hasPrev && dt > 0 {
		deriv = (e - p.prevErr) / dt
	}
	p.prevErr = e
	p.hasPrev = true

	u := p.kp*e + p.ki*p.integral - p.kd*deriv
	return math.Max(-10, math.Min(10, u))
}

// Config holds the physics constants the core leaves to the deployment.
type Config struct {
	ThrustMaxN float64
	DryMassKg  float64
	FuelMassKg float64
}

// Subsystem is the Flight Control periodic body.
type Subsystem struct {
	state  *vehicle.State
	fleet  *enginectl.Fleet
	phase  *vehicle.PhasePolicy
	sink   *sink.Sink
	cfg    Config
	axis   *pidAxis

	liftoffAt      float64
	sawLiftoff     bool
	shutdownSent   bool
	ignitionSent   bool
}

// New constructs the Flight Control subsystem bound to shared state, the
// engine fleet it reads thrust fraction from, and the event sink.
func New(state *vehicle.State, fleet *enginectl.Fleet, evs *sink.Sink, cfg Config) *Subsystem {
	s := &Subsystem{state: state, fleet: fleet, sink: evs, cfg: cfg, axis: newAxis()}
	s.phase = vehicle.NewPhasePolicy(state, fleet.AllRunning)
	return s
}

// Tick runs one period of the Flight Control body: advance the mission
// clock, poll the phase transition, integrate engine/dynamics state, run
// the autopilot, and publish derived quantities.
func (s *Subsystem) Tick(ctx context.Context, dt float64) {
	s.state.SetMissionTimeS(s.state.MissionTimeS() + dt)
	s.state.SetTimestampNS(time.Now().UnixNano())

	// Step 1: poll/advance mission phase.
	s.phase.Tick(ctx)
	phase := s.phase.Current()

	if phase == vehicle.Ignition && !s.ignitionSent {
		s.ignitionSent = true
		s.fleet.StartIgnition()
	}
	if phase == vehicle.Liftoff && !s.sawLiftoff {
		s.sawLiftoff = true
		s.liftoffAt = s.state.MissionTimeS()
	}
	if phase == vehicle.Abort && !s.shutdownSent {
		s.shutdownSent = true
		s.fleet.RequestShutdown()
	}

	groundHeld := phase == vehicle.PreLaunch || phase == vehicle.Countdown || phase == vehicle.Ignition

	v := s.state.VelocityMS()
	x := s.state.AltitudeM()
	m := s.state.MassKg()

	var accel float64

	if groundHeld {
		v, x, accel = 0, 0, 0
	} else {
		phaseSchedule := 1.0
		if phase == vehicle.Ascent {
			phaseSchedule = 0.75
		}
		operatorFrac := float64(s.state.Throttle()) / 100.0
		s.fleet.SetThrottle(phaseSchedule * operatorFrac)
		thrustFrac := s.fleet.TotalThrustFrac()
		thrustN := s.cfg.ThrustMaxN * thrustFrac

		if m > 0 {
			accel = thrustN / m
		}

		if m > s.cfg.DryMassKg {
			m -= fuelBurnKgS * dt
			if m < s.cfg.DryMassKg {
				m = s.cfg.DryMassKg
			}
		}

		accel -= gravityMS2

		rho := 1.225 * math.Exp(-x/8000.0)
		q := 0.5 * rho * v * v
		if x < 100_000 {
			dragForce := 0.5 * rho * v * v * dragCd * dragAreaM2
			dragAccel := dragForce / math.Max(m, 1)
			if v > 0 {
				accel -= dragAccel
			} else if v < 0 {
				accel += dragAccel
			}
		}

		if autopilotActive(phase) {
			tSinceLiftoff := s.state.MissionTimeS() - s.liftoffAt
			targetV := 3.0 * gravityMS2 * tSinceLiftoff
			accel += s.axis.update(targetV, v, dt)
		}

		v += accel * dt
		x += v * dt
		if x < 0 {
			x = 0
		}

		s.checkSafety(phase, q, accel, x)
	}

	s.state.SetVelocityMS(v)
	s.state.SetAltitudeM(x)
	s.state.SetAccelerationMS2(accel)
	s.state.SetMassKg(m)

	fuelPct := 0.0
	if s.cfg.FuelMassKg > 0 {
		fuelPct = (m - s.cfg.DryMassKg) / s.cfg.FuelMassKg * 100
	}
	s.state.SetFuelPct(fuelPct)

	rho := 1.225 * math.Exp(-x/8000.0)
	q := 0.5 * rho * v * v
	s.state.SetDynamicPressurePa(q)
	s.state.SetMach(math.Abs(v) / soundSpeedMS)
}

func (s *Subsystem) checkSafety(phase vehicle.Phase, q, accel, altitude float64) {
	if s.state.FuelPct() < 5 {
		s.sink.Emit(sink.Warn, "FCC", "low fuel")
	}
	if q > dynamicPressureWarnPa {
		s.sink.Emit(sink.Warn, "FCC", "dynamic pressure exceeds 50 kPa")
	}
	if math.Abs(accel) > gLoadWarnG*gravityMS2 {
		s.sink.Emit(sink.Warn, "FCC", "acceleration exceeds 5g")
	}
	if altitude < 0 {
		s.sink.Emit(sink.Warn, "FCC", "altitude negative during flight")
	}
}

// Phase exposes the current mission phase for other subsystems/telemetry.
func (s *Subsystem) Phase() vehicle.Phase { return s.phase.Current() }

// autopilotActive reports whether phase falls in Liftoff..OrbitInsertion
// inclusive — the only phases where the autopilot is active.
func autopilotActive(phase vehicle.Phase) bool {
	switch phase {
	case vehicle.Liftoff, vehicle.Ascent, vehicle.StageSeparation, vehicle.OrbitInsertion:
		return true
	default:
		return false
	}
}
