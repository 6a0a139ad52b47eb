// Package statemachine is a small, generic finite state machine used by
// both the mission phase policy and the per-engine lifecycle: named
// states, named events, guarded transitions, and enter/exit hooks.
package statemachine

import (
	"context"
	"fmt"
	"sync"
)

type State string
type Event string

type GuardFunc func(ctx context.Context) bool
type ActionFunc func(ctx context.Context) error
type HookFunc func(from, to State, evt Event)

type StateConfig struct {
	Name    State
	OnEnter ActionFunc
	OnExit  ActionFunc
}

type Transition struct {
	From   State
	To     State
	Event  Event
	Guard  GuardFunc
	Action ActionFunc
}

// Machine is a mutex-guarded FSM: one current state, a table of states,
// and a table of transitions keyed by (from-state, event).
type Machine struct {
	mu          sync.Mutex
	current     State
	states      map[State]StateConfig
	transitions map[State]map[Event]Transition
	hooks       []HookFunc
}

func NewMachine(initial State) *Machine {
	return &Machine{
		current:     initial,
		states:      make(map[State]StateConfig),
		transitions: make(map[State]map[Event]Transition),
	}
}

func (m *Machine) AddState(cfg StateConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[cfg.Name] = cfg
}

func (m *Machine) AddTransition(t Transition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.transitions[t.From] == nil {
		m.transitions[t.From] = make(map[Event]Transition)
	}
	if _, exists := m.transitions[t.From][t.Event]; exists {
		return fmt.Errorf("statemachine: duplicate transition for state %q event %q", t.From, t.Event)
	}
	m.transitions[t.From][t.Event] = t
	return nil
}

// Trigger attempts to fire evt from the current state. It returns nil and
// does nothing if no transition is registered for (current, evt), unless
// the transition's guard exists and returns false, in which case it is
// likewise a no-op returning nil (callers poll conditions every tick, so a
// failed guard is not an error).
func (m *Machine) Trigger(ctx context.Context, evt Event) error {
	m.mu.Lock()
	from := m.current
	byEvent, ok := m.transitions[from]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	t, ok := byEvent[evt]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	if t.Guard != nil && !t.Guard(ctx) {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	return m.executeTransition(ctx, t)
}

func (m *Machine) executeTransition(ctx context.Context, t Transition) error {
	m.mu.Lock()
	fromCfg := m.states[t.From]
	toCfg := m.states[t.To]
	hooks := append([]HookFunc(nil), m.hooks...)
	m.mu.Unlock()

	if fromCfg.OnExit != nil {
		if err := fromCfg.OnExit(ctx); err != nil {
			return err
		}
	}
	if t.Action != nil {
		if err := t.Action(ctx); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.current = t.To
	m.mu.Unlock()

	if toCfg.OnEnter != nil {
		if err := toCfg.OnEnter(ctx); err != nil {
			return err
		}
	}

	for _, h := range hooks {
		h(t.From, t.To, t.Event)
	}
	return nil
}

func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Force unconditionally moves to a state without running any guard, used
// for transitions like Abort that may fire from any non-terminal state.
func (m *Machine) Force(ctx context.Context, to State) {
	m.mu.Lock()
	from := m.current
	fromCfg := m.states[from]
	toCfg := m.states[to]
	hooks := append([]HookFunc(nil), m.hooks...)
	m.current = to
	m.mu.Unlock()

	if fromCfg.OnExit != nil {
		fromCfg.OnExit(ctx)
	}
	if toCfg.OnEnter != nil {
		toCfg.OnEnter(ctx)
	}
	for _, h := range hooks {
		h(from, to, "")
	}
}

func (m *Machine) Can(evt Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	byEvent, ok := m.transitions[m.current]
	if !ok {
		return false
	}
	_, ok = byEvent[evt]
	return ok
}

func (m *Machine) OnTransition(h HookFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, h)
}
