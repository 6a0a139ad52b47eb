package safety

import (
	"testing"

	"github.com/sls-core/sim/internal/sink"
	"github.com/sls-core/sim/internal/vehicle"
)

func TestLowFuelFiresOnlyAfterSustainedTicks(t *testing.T) {
	state := vehicle.New(1000, 3)
	evs := sink.New(8)
	sub := evs.Subscribe(sink.Warn)
	defer sub.Close()

	m := New(state, evs, 3)

	m.Tick() // 1
	m.Tick() // 2
	select {
	case <-sub.Events():
		t.Fatalf("expected no event before sustain threshold reached")
	default:
	}

	m.Tick() // 3: fires
	select {
	case ev := <-sub.Events():
		if ev.Component != "SAFETY" {
			t.Fatalf("expected SAFETY component, got %s", ev.Component)
		}
	default:
		t.Fatalf("expected an event once sustained for 3 ticks")
	}
}

func TestConditionClearingResetsRun(t *testing.T) {
	state := vehicle.New(1000, 3) // below the 5% low-fuel threshold
	evs := sink.New(8)
	m := New(state, evs, 3)

	m.Tick()
	m.Tick()
	state.SetFuelPct(90) // clears the low-fuel condition
	m.Tick()
	if m.lowFuelRun != 0 {
		t.Fatalf("expected run counter reset once condition clears, got %d", m.lowFuelRun)
	}
}
