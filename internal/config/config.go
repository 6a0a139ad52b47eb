// Package config holds the simulator's configuration object. Config file
// parsing is out of scope: a configuration object is assumed as input, so
// this package only builds and validates that object; it never reads a
// config file. LoadFromEnv is an ambient env-var override of defaults, not
// file parsing.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config is every tunable the core reads from a configuration object.
type Config struct {
	TelemetryBufferBytes int `env:"SLS_TELEMETRY_BUFFER_BYTES" default:"8192"`
	EventSinkBufferSize  int `env:"SLS_EVENT_SINK_BUFFER" default:"64"`

	FlightControlPeriodMS int `env:"SLS_FCC_PERIOD_MS" default:"10"`  // 100 Hz
	EngineControlPeriodMS int `env:"SLS_ENGINE_PERIOD_MS" default:"20"` // 50 Hz
	TelemetryPeriodMS     int `env:"SLS_TELEMETRY_PERIOD_MS" default:"100"` // 10 Hz
	SafetyMonitorPeriodMS int `env:"SLS_SAFETY_PERIOD_MS" default:"200"` // 5 Hz

	DeadlineFactor float64 `env:"SLS_DEADLINE_FACTOR" default:"1.5"`
	MaxRestarts    int     `env:"SLS_MAX_RESTARTS" default:"5"`

	EngineCount int     `env:"SLS_ENGINE_COUNT" default:"4"`
	DryMassKg   float64 `env:"SLS_DRY_MASS_KG" default:"30000"`
	FuelMassKg  float64 `env:"SLS_FUEL_MASS_KG" default:"70000"`

	ChamberPressureMaxPa float64 `env:"SLS_CHAMBER_PA_MAX" default:"12000000"`

	SafetyMonitorSustainTicks int `env:"SLS_SAFETY_SUSTAIN_TICKS" default:"3"`

	// CountdownHoldS is the mission_time_s the vehicle starts at: T-600s,
	// matching the PreLaunch->Countdown guard.
	CountdownHoldS float64 `env:"SLS_COUNTDOWN_HOLD_S" default:"-600"`
}

// Default returns the built-in default configuration.
func Default() Config {
	return Config{
		TelemetryBufferBytes:      8192,
		EventSinkBufferSize:       64,
		FlightControlPeriodMS:     10,
		EngineControlPeriodMS:     20,
		TelemetryPeriodMS:         100,
		SafetyMonitorPeriodMS:     200,
		DeadlineFactor:            1.5,
		MaxRestarts:               5,
		EngineCount:               4,
		DryMassKg:                 30000,
		FuelMassKg:                70000,
		ChamberPressureMaxPa:      12_000_000,
		SafetyMonitorSustainTicks: 3,
		CountdownHoldS:            -600,
	}
}

// LoadFromEnv starts from Default and overrides any field whose env var is
// set, then validates the result.
func LoadFromEnv() (Config, error) {
	cfg := Default()

	if v := os.Getenv("SLS_TELEMETRY_BUFFER_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: SLS_TELEMETRY_BUFFER_BYTES: %w", err)
		}
		cfg.TelemetryBufferBytes = n
	}
	if v := os.Getenv("SLS_EVENT_SINK_BUFFER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: SLS_EVENT_SINK_BUFFER: %w", err)
		}
		cfg.EventSinkBufferSize = n
	}
	if v := os.Getenv("SLS_MAX_RESTARTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: SLS_MAX_RESTARTS: %w", err)
		}
		cfg.MaxRestarts = n
	}
	if v := os.Getenv("SLS_ENGINE_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: SLS_ENGINE_COUNT: %w", err)
		}
		cfg.EngineCount = n
	}
	if v := os.Getenv("SLS_FCC_PERIOD_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: SLS_FCC_PERIOD_MS: %w", err)
		}
		cfg.FlightControlPeriodMS = n
	}
	if v := os.Getenv("SLS_ENGINE_PERIOD_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: SLS_ENGINE_PERIOD_MS: %w", err)
		}
		cfg.EngineControlPeriodMS = n
	}
	if v := os.Getenv("SLS_TELEMETRY_PERIOD_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: SLS_TELEMETRY_PERIOD_MS: %w", err)
		}
		cfg.TelemetryPeriodMS = n
	}
	if v := os.Getenv("SLS_SAFETY_PERIOD_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: SLS_SAFETY_PERIOD_MS: %w", err)
		}
		cfg.SafetyMonitorPeriodMS = n
	}
	if v := os.Getenv("SLS_DEADLINE_FACTOR"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: SLS_DEADLINE_FACTOR: %w", err)
		}
		cfg.DeadlineFactor = f
	}
	if v := os.Getenv("SLS_DRY_MASS_KG"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: SLS_DRY_MASS_KG: %w", err)
		}
		cfg.DryMassKg = f
	}
	if v := os.Getenv("SLS_FUEL_MASS_KG"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: SLS_FUEL_MASS_KG: %w", err)
		}
		cfg.FuelMassKg = f
	}
	if v := os.Getenv("SLS_CHAMBER_PA_MAX"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: SLS_CHAMBER_PA_MAX: %w", err)
		}
		cfg.ChamberPressureMaxPa = f
	}
	if v := os.Getenv("SLS_SAFETY_SUSTAIN_TICKS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: SLS_SAFETY_SUSTAIN_TICKS: %w", err)
		}
		cfg.SafetyMonitorSustainTicks = n
	}
	if v := os.Getenv("SLS_COUNTDOWN_HOLD_S"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: SLS_COUNTDOWN_HOLD_S: %w", err)
		}
		cfg.CountdownHoldS = f
	}

	return cfg, cfg.Validate()
}

// Validate performs the cross-field sanity checks a caller would want
// before trusting this Config.
func (c Config) Validate() error {
	if c.TelemetryBufferBytes <= 0 {
		return fmt.Errorf("config: TelemetryBufferBytes must be positive, got %d", c.TelemetryBufferBytes)
	}
	if c.EventSinkBufferSize <= 0 {
		return fmt.Errorf("config: EventSinkBufferSize must be positive, got %d", c.EventSinkBufferSize)
	}
	if c.EngineCount <= 0 {
		return fmt.Errorf("config: EngineCount must be positive, got %d", c.EngineCount)
	}
	if c.DeadlineFactor <= 1.0 {
		return fmt.Errorf("config: DeadlineFactor must exceed 1.0, got %f", c.DeadlineFactor)
	}
	if c.MaxRestarts < 0 {
		return fmt.Errorf("config: MaxRestarts must be non-negative, got %d", c.MaxRestarts)
	}
	if c.DryMassKg <= 0 || c.FuelMassKg <= 0 {
		return fmt.Errorf("config: DryMassKg and FuelMassKg must be positive")
	}
	return nil
}

// String renders a single-line summary for startup logging.
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{telemetry_buffer=%dB event_sink_buffer=%d fcc_period=%dms engine_period=%dms "+
			"telemetry_period=%dms safety_period=%dms deadline_factor=%.2f max_restarts=%d "+
			"engines=%d dry_mass=%.0fkg fuel_mass=%.0fkg}",
		c.TelemetryBufferBytes, c.EventSinkBufferSize, c.FlightControlPeriodMS, c.EngineControlPeriodMS,
		c.TelemetryPeriodMS, c.SafetyMonitorPeriodMS, c.DeadlineFactor, c.MaxRestarts,
		c.EngineCount, c.DryMassKg, c.FuelMassKg,
	)
}
