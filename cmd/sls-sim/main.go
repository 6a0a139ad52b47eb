// Command sls-sim is the main simulator binary. It takes no required
// arguments, reads its configuration from the environment, wires every
// subsystem together under the Scheduler, and runs until SIGINT/SIGTERM,
// exiting 0 after a clean shutdown.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sls-core/sim/internal/clock"
	"github.com/sls-core/sim/internal/command"
	"github.com/sls-core/sim/internal/config"
	"github.com/sls-core/sim/internal/console"
	"github.com/sls-core/sim/internal/enginectl"
	"github.com/sls-core/sim/internal/flightcontrol"
	"github.com/sls-core/sim/internal/metrics"
	"github.com/sls-core/sim/internal/safety"
	"github.com/sls-core/sim/internal/scheduler"
	"github.com/sls-core/sim/internal/sink"
	"github.com/sls-core/sim/internal/telemetry"
	"github.com/sls-core/sim/internal/telemetrysub"
	"github.com/sls-core/sim/internal/vehicle"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "sls-sim:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	evs := sink.New(cfg.EventSinkBufferSize)
	defer evs.Close()

	reg := prometheus.NewRegistry()
	m := metrics.Init(reg)

	device := telemetry.New(cfg.TelemetryBufferBytes)
	defer device.Close()

	state := vehicle.New(cfg.DryMassKg+cfg.FuelMassKg, 100)
	state.SetMissionTimeS(cfg.CountdownHoldS)

	fleet := enginectl.NewFleet(cfg.EngineCount, 1, cfg.ChamberPressureMaxPa)
	svc := command.NewService(state)

	fcc := flightcontrol.New(state, fleet, evs, flightcontrol.Config{
		ThrustMaxN: 30_000_000,
		DryMassKg:  cfg.DryMassKg,
		FuelMassKg: cfg.FuelMassKg,
	})
	monitor := safety.New(state, evs, cfg.SafetyMonitorSustainTicks)
	telem := telemetrysub.New(state, device, evs)

	clk := clock.NewSystem()
	sched := scheduler.New(clk, evs, m)

	sched.Register(scheduler.Subsystem{
		Name: "command", Component: "CMD", Period: time.Millisecond, Priority: 20,
		MaxRestarts: cfg.MaxRestarts,
		Body: func(ctx context.Context, dt float64) error {
			svc.Run(ctx)
			return nil
		},
	})
	sched.Register(scheduler.Subsystem{
		Name: "safety", Component: "SAFETY", Period: time.Duration(cfg.SafetyMonitorPeriodMS) * time.Millisecond, Priority: 60,
		MaxRestarts: cfg.MaxRestarts,
		Body: func(ctx context.Context, dt float64) error {
			monitor.Tick()
			return nil
		},
	})
	sched.Register(scheduler.Subsystem{
		Name: "flightcontrol", Component: "FCC", Period: time.Duration(cfg.FlightControlPeriodMS) * time.Millisecond, Priority: 50,
		MaxRestarts: cfg.MaxRestarts,
		Body: func(ctx context.Context, dt float64) error {
			fcc.Tick(ctx, dt)
			return nil
		},
	})
	sched.Register(scheduler.Subsystem{
		Name: "enginecontrol", Component: "ENG", Period: time.Duration(cfg.EngineControlPeriodMS) * time.Millisecond, Priority: 45,
		MaxRestarts: cfg.MaxRestarts,
		Body: func(ctx context.Context, dt float64) error {
			states := fleet.Tick(ctx, dt)
			for _, st := range states {
				m.EngineThrustPct.WithLabelValues(fmt.Sprint(st.ID)).Set(st.ThrustPct)
				if st.Fault != nil {
					m.EngineFaults.WithLabelValues(fmt.Sprint(st.ID), string(*st.Fault)).Inc()
				}
			}
			state.SetEngineHealth(vehicle.Health(fleet.Health()))
			return nil
		},
	})
	var lastEventsDropped, lastRecordsDropped uint64
	sched.Register(scheduler.Subsystem{
		Name: "telemetry", Component: "TLM", Period: time.Duration(cfg.TelemetryPeriodMS) * time.Millisecond, Priority: 40,
		MaxRestarts: cfg.MaxRestarts,
		Body: func(ctx context.Context, dt float64) error {
			telem.Tick()
			m.TelemetryBufferFill.Set(float64(device.Fill()))
			recordsDropped := device.DroppedRecords()
			m.TelemetryDroppedRecords.Add(float64(recordsDropped - lastRecordsDropped))
			lastRecordsDropped = recordsDropped

			dropped := evs.DroppedCount()
			m.EventSinkDropped.Add(float64(dropped - lastEventsDropped))
			lastEventsDropped = dropped
			return nil
		},
	})
	sched.Register(scheduler.Subsystem{
		Name: "console", Component: "CONSOLE", Period: 50 * time.Millisecond, Priority: 20,
		MaxRestarts: 0,
		Body: func(ctx context.Context, dt float64) error {
			c := console.New(svc, os.Stdin, os.Stdout)
			return c.Run(ctx)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	evs.Emit(sink.Info, "MAIN", "starting simulator: "+cfg.String())
	sched.Run(ctx)
	evs.Emit(sink.Info, "MAIN", "clean shutdown")
	return nil
}
