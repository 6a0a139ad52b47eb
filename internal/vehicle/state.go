// Package vehicle holds the shared, process-global VehicleState record and
// the MissionPhase state machine. Each scalar field has exactly one
// designated writer (documented per-field below); all reads are lock-free
// atomic loads. Consistency across fields is eventual, not a snapshot.
package vehicle

import (
	"math"
	"sync/atomic"
)

// Phase is the top-level mission lifecycle state.
type Phase string

const (
	PreLaunch       Phase = "PreLaunch"
	Countdown       Phase = "Countdown"
	Ignition        Phase = "Ignition"
	Liftoff         Phase = "Liftoff"
	Ascent          Phase = "Ascent"
	StageSeparation Phase = "StageSeparation"
	OrbitInsertion  Phase = "OrbitInsertion"
	MissionComplete Phase = "MissionComplete"
	Abort           Phase = "Abort"
)

// Health is the worst-of-N engine health rollup published into the state
// (see DESIGN.md "Engine health rollup").
type Health string

const (
	HealthOK       Health = "OK"
	HealthDegraded Health = "Degraded"
	HealthCritical Health = "Critical"
	HealthFailed   Health = "Failed"
)

// State is the mutable, process-global vehicle record. Writers:
//   - Command Service: MissionGo, Throttle, AbortRequested.
//   - Flight Control: MissionTimeS, AltitudeM, VelocityMS, AccelerationMS2,
//     FuelPct, MassKg, DynamicPressurePa, Mach, Phase, TimestampNS.
//   - Engine Control: EngineHealth (published aggregate only; raw per-engine
//     fields are owned entirely by Engine Control and never written here).
//
// Every field is backed by an atomic so readers never take a lock; fields
// that are logically float64 are stored bit-cast via math.Float64bits so
// the zero value (all-zero bits) is a legitimate 0.0.
type State struct {
	missionTimeS      atomic.Uint64
	altitudeM         atomic.Uint64
	velocityMS        atomic.Uint64
	accelerationMS2   atomic.Uint64
	fuelPct           atomic.Uint64
	massKg            atomic.Uint64
	dynamicPressurePa atomic.Uint64
	mach              atomic.Uint64

	phase       atomic.Value // Phase
	engineHealt atomic.Value // Health

	missionGo      atomic.Bool
	throttle       atomic.Int32
	abortRequested atomic.Bool

	timestampNS atomic.Int64
}

// New returns a State initialized to the ground-held defaults: zero
// velocity/altitude/acceleration, PreLaunch phase, mission_go=false.
func New(massKg, initialFuelPct float64) *State {
	s := &State{}
	s.massKg.Store(math.Float64bits(massKg))
	s.fuelPct.Store(math.Float64bits(initialFuelPct))
	s.phase.Store(PreLaunch)
	s.engineHealt.Store(HealthOK)
	s.throttle.Store(100) // throttle_frac default of 1.0
	return s
}

func loadF(a *atomic.Uint64) float64  { return math.Float64frombits(a.Load()) }
func storeF(a *atomic.Uint64, v float64) { a.Store(math.Float64bits(v)) }

func (s *State) MissionTimeS() float64    { return loadF(&s.missionTimeS) }
func (s *State) SetMissionTimeS(v float64) { storeF(&s.missionTimeS, v) }

func (s *State) AltitudeM() float64    { return loadF(&s.altitudeM) }
func (s *State) SetAltitudeM(v float64) { storeF(&s.altitudeM, v) }

func (s *State) VelocityMS() float64    { return loadF(&s.velocityMS) }
func (s *State) SetVelocityMS(v float64) { storeF(&s.velocityMS, v) }

func (s *State) AccelerationMS2() float64    { return loadF(&s.accelerationMS2) }
func (s *State) SetAccelerationMS2(v float64) { storeF(&s.accelerationMS2, v) }

func (s *State) FuelPct() float64 { return loadF(&s.fuelPct) }
func (s *State) SetFuelPct(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	storeF(&s.fuelPct, v)
}

func (s *State) MassKg() float64    { return loadF(&s.massKg) }
func (s *State) SetMassKg(v float64) { storeF(&s.massKg, v) }

func (s *State) DynamicPressurePa() float64    { return loadF(&s.dynamicPressurePa) }
func (s *State) SetDynamicPressurePa(v float64) { storeF(&s.dynamicPressurePa, v) }

func (s *State) Mach() float64    { return loadF(&s.mach) }
func (s *State) SetMach(v float64) { storeF(&s.mach, v) }

func (s *State) Phase() Phase { return s.phase.Load().(Phase) }
func (s *State) SetPhase(p Phase) { s.phase.Store(p) }

func (s *State) EngineHealth() Health     { return s.engineHealt.Load().(Health) }
func (s *State) SetEngineHealth(h Health) { s.engineHealt.Store(h) }

func (s *State) MissionGo() bool     { return s.missionGo.Load() }
func (s *State) SetMissionGo(v bool) { s.missionGo.Store(v) }

// Throttle is stored as 0..100 inclusive; SetThrottle clamps out-of-range
// values rather than rejecting them.
func (s *State) Throttle() int {
	return int(s.throttle.Load())
}
func (s *State) SetThrottle(v int) {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	s.throttle.Store(int32(v))
}

func (s *State) AbortRequested() bool     { return s.abortRequested.Load() }
func (s *State) SetAbortRequested(v bool) { s.abortRequested.Store(v) }

func (s *State) TimestampNS() int64     { return s.timestampNS.Load() }
func (s *State) SetTimestampNS(v int64) { s.timestampNS.Store(v) }
