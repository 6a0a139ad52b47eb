package statemachine

import (
	"context"
	"testing"
)

func TestTriggerRespectsGuard(t *testing.T) {
	m := NewMachine("Idle")
	m.AddState(StateConfig{Name: "Idle"})
	m.AddState(StateConfig{Name: "Running"})

	allowed := false
	m.AddTransition(Transition{
		From: "Idle", To: "Running", Event: "start",
		Guard: func(ctx context.Context) bool { return allowed },
	})

	m.Trigger(context.Background(), "start")
	if m.Current() != "Idle" {
		t.Fatalf("expected guard to block transition, got %q", m.Current())
	}

	allowed = true
	m.Trigger(context.Background(), "start")
	if m.Current() != "Running" {
		t.Fatalf("expected transition after guard passes, got %q", m.Current())
	}
}

func TestDuplicateTransitionRejected(t *testing.T) {
	m := NewMachine("A")
	m.AddTransition(Transition{From: "A", To: "B", Event: "go"})
	err := m.AddTransition(Transition{From: "A", To: "C", Event: "go"})
	if err == nil {
		t.Fatalf("expected duplicate (from, event) to be rejected")
	}
}

func TestForceFromAnyState(t *testing.T) {
	m := NewMachine("Ascent")
	m.AddState(StateConfig{Name: "Ascent"})
	m.AddState(StateConfig{Name: "Abort"})

	m.Force(context.Background(), "Abort")
	if m.Current() != "Abort" {
		t.Fatalf("expected forced transition to Abort, got %q", m.Current())
	}
}
