// Package safety implements the SafetyMonitor subsystem: an independent
// 5 Hz re-check of the same thresholds Flight Control already guards, so a
// wedged or buggy Flight Control body is not the only thing standing
// between the vehicle and a silent safety violation.
//
// Sustained-threshold-then-alert: a single sample over a threshold does not
// raise an event; the condition must hold for SustainTicks consecutive
// samples before it fires, and must drop back below threshold before it
// can fire again.
package safety

import (
	"math"

	"github.com/sls-core/sim/internal/sink"
	"github.com/sls-core/sim/internal/vehicle"
)

const (
	gravityMS2            = 9.81
	dynamicPressureWarnPa = 50_000.0
	gLoadWarnG            = 5.0
	lowFuelPct            = 5.0
)

// Monitor tracks consecutive-tick counts per condition and only emits once
// a condition has sustained for SustainTicks ticks; it resets the count as
// soon as the condition clears.
type Monitor struct {
	state *vehicle.State
	sink  *sink.Sink

	sustainTicks int
	lowFuelRun   int
	qRun         int
	gLoadRun     int
	altitudeRun  int
}

func New(state *vehicle.State, evs *sink.Sink, sustainTicks int) *Monitor {
	if sustainTicks <= 0 {
		sustainTicks = 1
	}
	return &Monitor{state: state, sink: evs, sustainTicks: sustainTicks}
}

// Tick re-derives the same four conditions Flight Control checks and emits
// a Warn once each has sustained for SustainTicks consecutive samples.
func (m *Monitor) Tick() {
	fuelPct := m.state.FuelPct()
	velocity := m.state.VelocityMS()
	accel := m.state.AccelerationMS2()
	altitude := m.state.AltitudeM()
	q := m.state.DynamicPressurePa()

	m.lowFuelRun = sustain(m.lowFuelRun, fuelPct < lowFuelPct, m.sustainTicks, func() {
		m.sink.Emit(sink.Warn, "SAFETY", "sustained low fuel")
	})
	m.qRun = sustain(m.qRun, q > dynamicPressureWarnPa, m.sustainTicks, func() {
		m.sink.Emit(sink.Warn, "SAFETY", "sustained dynamic pressure exceeds 50 kPa")
	})
	m.gLoadRun = sustain(m.gLoadRun, math.Abs(accel) > gLoadWarnG*gravityMS2, m.sustainTicks, func() {
		m.sink.Emit(sink.Warn, "SAFETY", "sustained acceleration exceeds 5g")
	})
	m.altitudeRun = sustain(m.altitudeRun, velocity != 0 && altitude < 0, m.sustainTicks, func() {
		m.sink.Emit(sink.Warn, "SAFETY", "sustained negative altitude during flight")
	})
}

// sustain advances or resets a consecutive-tick counter; once the counter
// reaches limit it fires and holds (re-firing every tick while the
// condition persists would flood the sink, so it fires once per threshold
// crossing, not once per tick above threshold).
func sustain(run int, active bool, limit int, fire func()) int {
	if !active {
		return 0
	}
	run++
	if run == limit {
		fire()
	}
	return run
}
