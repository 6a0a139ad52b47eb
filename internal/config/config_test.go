package config

import "testing"

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadDeadlineFactor(t *testing.T) {
	c := Default()
	c.DeadlineFactor = 1.0
	if err := c.Validate(); err == nil {
		t.Fatalf("expected deadline factor <= 1.0 to be rejected")
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("SLS_ENGINE_COUNT", "6")
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.EngineCount != 6 {
		t.Fatalf("expected env override to take effect, got %d", cfg.EngineCount)
	}
}

func TestLoadFromEnvOverridesEveryTaggedField(t *testing.T) {
	t.Setenv("SLS_TELEMETRY_BUFFER_BYTES", "4096")
	t.Setenv("SLS_EVENT_SINK_BUFFER", "32")
	t.Setenv("SLS_MAX_RESTARTS", "7")
	t.Setenv("SLS_ENGINE_COUNT", "6")
	t.Setenv("SLS_FCC_PERIOD_MS", "5")
	t.Setenv("SLS_ENGINE_PERIOD_MS", "25")
	t.Setenv("SLS_TELEMETRY_PERIOD_MS", "50")
	t.Setenv("SLS_SAFETY_PERIOD_MS", "250")
	t.Setenv("SLS_DEADLINE_FACTOR", "2.0")
	t.Setenv("SLS_DRY_MASS_KG", "31000")
	t.Setenv("SLS_FUEL_MASS_KG", "71000")
	t.Setenv("SLS_CHAMBER_PA_MAX", "13000000")
	t.Setenv("SLS_SAFETY_SUSTAIN_TICKS", "4")
	t.Setenv("SLS_COUNTDOWN_HOLD_S", "-300")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Config{
		TelemetryBufferBytes:      4096,
		EventSinkBufferSize:       32,
		FlightControlPeriodMS:     5,
		EngineControlPeriodMS:     25,
		TelemetryPeriodMS:         50,
		SafetyMonitorPeriodMS:     250,
		DeadlineFactor:            2.0,
		MaxRestarts:               7,
		EngineCount:               6,
		DryMassKg:                 31000,
		FuelMassKg:                71000,
		ChamberPressureMaxPa:      13_000_000,
		SafetyMonitorSustainTicks: 4,
		CountdownHoldS:            -300,
	}
	if cfg != want {
		t.Fatalf("expected every tagged field to take its env override:\n got: %+v\nwant: %+v", cfg, want)
	}
}

func TestLoadFromEnvRejectsUnparsableValue(t *testing.T) {
	t.Setenv("SLS_DEADLINE_FACTOR", "not-a-float")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatalf("expected an unparsable SLS_DEADLINE_FACTOR to error")
	}
}
