package telemetrysub

import (
	"strings"
	"testing"

	"github.com/sls-core/sim/internal/sink"
	"github.com/sls-core/sim/internal/telemetry"
	"github.com/sls-core/sim/internal/vehicle"
)

func readOneRecord(t *testing.T, device *telemetry.Device, r *telemetry.Reader) string {
	t.Helper()
	buf := make([]byte, 256)
	n, err := r.Read(buf, false)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	return string(buf[:n])
}

func TestTickWritesOneNewlineTerminatedRecord(t *testing.T) {
	state := vehicle.New(100_000, 100)
	state.SetTimestampNS(12_345_678_000)
	state.SetAltitudeM(1500.25)
	state.SetVelocityMS(88.5)
	state.SetThrottle(75)
	state.SetMissionGo(true)

	device := telemetry.New(telemetry.DefaultSize)
	defer device.Close()
	r := device.NewReader()
	defer r.Close()
	evs := sink.New(4)
	defer evs.Close()

	New(state, device, evs).Tick()

	line := readOneRecord(t, device, r)
	if !strings.HasSuffix(line, "\n") {
		t.Fatalf("expected newline-terminated record, got %q", line)
	}
	want := "12.345,alt=1500.25,vel=88.50,thr=75,go=1\n"
	if line != want {
		t.Fatalf("record mismatch:\n got: %q\nwant: %q", line, want)
	}
}

func TestTickReportsGoZeroWhenMissionNotGo(t *testing.T) {
	state := vehicle.New(100_000, 100)
	state.SetMissionGo(false)

	device := telemetry.New(telemetry.DefaultSize)
	defer device.Close()
	r := device.NewReader()
	defer r.Close()
	evs := sink.New(4)
	defer evs.Close()

	New(state, device, evs).Tick()

	line := readOneRecord(t, device, r)
	if !strings.Contains(line, "go=0") {
		t.Fatalf("expected go=0 in record, got %q", line)
	}
}
