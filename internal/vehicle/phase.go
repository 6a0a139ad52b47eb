package vehicle

import (
	"context"

	"github.com/sls-core/sim/internal/statemachine"
)

// PhasePolicy wraps the generic FSM with the mission phase transition table:
// time-based conditions against mission_time_s, plus Abort which may fire
// from any non-terminal phase regardless of mission time.
type PhasePolicy struct {
	m     *statemachine.Machine
	state *State

	// allEnginesRunning is polled by the Ignition->Liftoff guard; Flight
	// Control supplies it each tick since Engine Control owns engine FSMs.
	allEnginesRunning func() bool
}

func NewPhasePolicy(state *State, allEnginesRunning func() bool) *PhasePolicy {
	p := &PhasePolicy{state: state, allEnginesRunning: allEnginesRunning}
	m := statemachine.NewMachine(statemachine.State(PreLaunch))

	for _, ph := range []Phase{PreLaunch, Countdown, Ignition, Liftoff, Ascent,
		StageSeparation, OrbitInsertion, MissionComplete, Abort} {
		m.AddState(statemachine.StateConfig{Name: statemachine.State(ph)})
	}

	mt := func() float64 { return state.MissionTimeS() }

	add := func(from, to Phase, guard func() bool) {
		m.AddTransition(statemachine.Transition{
			From: statemachine.State(from), To: statemachine.State(to), Event: "tick",
			Guard: func(context.Context) bool { return guard() },
		})
	}

	add(PreLaunch, Countdown, func() bool { return mt() >= -600 })
	add(Countdown, Ignition, func() bool { return mt() >= -6 })
	add(Ignition, Liftoff, func() bool { return p.allEnginesRunning() })
	add(Liftoff, Ascent, func() bool { return mt() >= 10 })
	add(StageSeparation, OrbitInsertion, func() bool { return mt() >= 125 })
	add(OrbitInsertion, MissionComplete, func() bool { return mt() >= 480 })

	// Ascent -> StageSeparation carries the StageSeparation entry action
	// (mass ← mass × 0.3), so it is registered directly rather than
	// through the guard-only add() helper.
	m.AddTransition(statemachine.Transition{
		From: statemachine.State(Ascent), To: statemachine.State(StageSeparation), Event: "tick",
		Guard:  func(context.Context) bool { return mt() >= 120 },
		Action: func(context.Context) error { state.SetMassKg(state.MassKg() * 0.3); return nil },
	})

	m.OnTransition(func(from, to statemachine.State, evt statemachine.Event) {
		state.SetPhase(Phase(to))
	})

	p.m = m
	return p
}

// Tick advances the phase policy by one Flight Control period: it checks
// Abort first (can fire from any non-terminal phase), then the ordinary
// time-based transition for the current phase.
func (p *PhasePolicy) Tick(ctx context.Context) {
	current := Phase(p.m.Current())
	if current == MissionComplete || current == Abort {
		return
	}
	if p.state.AbortRequested() {
		p.m.Force(ctx, statemachine.State(Abort))
		p.state.SetPhase(Abort)
		return
	}
	p.m.Trigger(ctx, "tick")
}

func (p *PhasePolicy) Current() Phase {
	return Phase(p.m.Current())
}
