// Package telemetrysub implements the Telemetry Subsystem: it samples
// shared vehicle state at its own period, formats a fixed-field ABNF
// record, and writes it to the Telemetry Device.
package telemetrysub

import (
	"fmt"

	"github.com/sls-core/sim/internal/sink"
	"github.com/sls-core/sim/internal/telemetry"
	"github.com/sls-core/sim/internal/vehicle"
)

// Subsystem formats and emits one telemetry record per period.
type Subsystem struct {
	state  *vehicle.State
	device *telemetry.Device
	sink   *sink.Sink
}

func New(state *vehicle.State, device *telemetry.Device, evs *sink.Sink) *Subsystem {
	return &Subsystem{state: state, device: device, sink: evs}
}

// Tick samples state and writes one record. It never blocks: Device.Write
// only waits on its own writer mutex, never on readers.
func (s *Subsystem) Tick() {
	record := format(s.state)
	if _, err := s.device.Write([]byte(record)); err != nil {
		s.sink.Emit(sink.Warn, "TLM", "telemetry write failed: "+err.Error())
	}
}

// format builds the fixed-field record:
// "<sec>.<millis>,alt=<f>,vel=<f>,thr=<i>,go=<0|1>\n".
func format(state *vehicle.State) string {
	ns := state.TimestampNS()
	sec := ns / 1_000_000_000
	millis := (ns % 1_000_000_000) / 1_000_000
	if millis < 0 {
		millis = -millis
	}

	goBit := 0
	if state.MissionGo() {
		goBit = 1
	}

	return fmt.Sprintf("%d.%03d,alt=%.2f,vel=%.2f,thr=%d,go=%d\n",
		sec, millis, state.AltitudeM(), state.VelocityMS(), state.Throttle(), goBit)
}
