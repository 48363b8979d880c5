package buttons

import (
	"testing"
	"time"

	"github.com/cjeanneret/RotGo/internal/hw/gpio"
)

// scriptedDriver serves fixed pin levels; buttons are active-low.
type scriptedDriver struct {
	levels map[int]gpio.Level
}

func newScriptedDriver() *scriptedDriver {
	return &scriptedDriver{levels: map[int]gpio.Level{}}
}

func (d *scriptedDriver) SetupPin(int, gpio.PinMode) error { return nil }
func (d *scriptedDriver) WritePin(int, gpio.Level) error   { return nil }

func (d *scriptedDriver) ReadPin(pin int) (gpio.Level, error) {
	lvl, ok := d.levels[pin]
	if !ok {
		return gpio.High, nil
	}
	return lvl, nil
}

func (d *scriptedDriver) Close() error { return nil }

var pins = Pins{CW: 23, CCW: 24, Up: 25, Down: 16, Cal: 20}

func testPad(t *testing.T, d *scriptedDriver) (*Pad, *time.Time) {
	t.Helper()
	p, err := New(d, pins, Config{
		ReadEvery:     200 * time.Millisecond,
		FastAfter:     2 * time.Second,
		FastIncrement: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }
	return p, &now
}

func TestPoll_HeldButtonsNudgeOncePerCadence(t *testing.T) {
	d := newScriptedDriver()
	p, now := testPad(t, d)
	d.levels[pins.CW] = gpio.Low

	in := p.Poll()
	if in.AzimuthDelta != 1 {
		t.Errorf("delta = %d, want 1 on the first tick", in.AzimuthDelta)
	}
	if !in.ManualActive {
		t.Error("a held direction button is a manual override")
	}

	// Within the cadence: override state only, no further nudge.
	*now = now.Add(50 * time.Millisecond)
	in = p.Poll()
	if in.AzimuthDelta != 0 {
		t.Errorf("delta = %d, want 0 between cadence ticks", in.AzimuthDelta)
	}
	if !in.ManualActive {
		t.Error("override must stay reported between ticks")
	}

	*now = now.Add(200 * time.Millisecond)
	in = p.Poll()
	if in.AzimuthDelta != 1 {
		t.Errorf("delta = %d, want 1 on the next tick", in.AzimuthDelta)
	}
}

func TestPoll_AcceleratorAfterLongHold(t *testing.T) {
	d := newScriptedDriver()
	p, now := testPad(t, d)
	d.levels[pins.Down] = gpio.Low

	if in := p.Poll(); in.ElevationDelta != -1 {
		t.Fatalf("delta = %d, want -1 before the accelerator", in.ElevationDelta)
	}

	*now = now.Add(3 * time.Second)
	if in := p.Poll(); in.ElevationDelta != -5 {
		t.Errorf("delta = %d, want -5 once held past the threshold", in.ElevationDelta)
	}
}

func TestPoll_ReleaseResetsAccelerator(t *testing.T) {
	d := newScriptedDriver()
	p, now := testPad(t, d)
	d.levels[pins.CW] = gpio.Low

	p.Poll()
	*now = now.Add(3 * time.Second)
	p.Poll() // accelerated

	d.levels[pins.CW] = gpio.High
	*now = now.Add(300 * time.Millisecond)
	if in := p.Poll(); in.AzimuthDelta != 0 || in.ManualActive {
		t.Fatalf("released button still reports %+v", in)
	}

	d.levels[pins.CW] = gpio.Low
	*now = now.Add(300 * time.Millisecond)
	if in := p.Poll(); in.AzimuthDelta != 1 {
		t.Errorf("delta = %d, want the accelerator reset to 1 on re-press", in.AzimuthDelta)
	}
}

func TestPoll_CalibrateIsAnEdge(t *testing.T) {
	d := newScriptedDriver()
	p, now := testPad(t, d)
	d.levels[pins.Cal] = gpio.Low

	if in := p.Poll(); !in.CalibratePressed {
		t.Fatal("press must report the calibrate edge")
	}
	if in := p.Poll(); in.CalibratePressed {
		t.Error("within the cadence nothing is re-read")
	}
	*now = now.Add(300 * time.Millisecond)
	if in := p.Poll(); in.CalibratePressed {
		t.Error("a held calibrate button must not repeat the edge")
	}
	if p.Poll().ManualActive {
		t.Error("the calibrate button is not a direction override")
	}
}

func TestPoll_OpposingButtonsCancel(t *testing.T) {
	d := newScriptedDriver()
	p, _ := testPad(t, d)
	d.levels[pins.CW] = gpio.Low
	d.levels[pins.CCW] = gpio.Low

	if in := p.Poll(); in.AzimuthDelta != 0 {
		t.Errorf("delta = %d, want CW and CCW to cancel out", in.AzimuthDelta)
	}
}

func TestRawReads_BypassCadence(t *testing.T) {
	d := newScriptedDriver()
	p, _ := testPad(t, d)
	d.levels[pins.Cal] = gpio.Low

	// Back to back raw reads see the level every time.
	if !p.CalDown() || !p.CalDown() {
		t.Error("raw reads must not be cadence-limited")
	}
	if p.CWDown() {
		t.Error("released CW must read up")
	}
}

func TestPinNotFitted(t *testing.T) {
	d := newScriptedDriver()
	p, err := New(d, Pins{CW: 23}, Config{ReadEvery: 200 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	if p.CalDown() {
		t.Error("an unfitted button must read released")
	}
	if p.CalFitted() {
		t.Error("a zero pin means no calibrate button")
	}
}

func TestCalFitted(t *testing.T) {
	d := newScriptedDriver()
	p, err := New(d, pins, Config{ReadEvery: 200 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	if !p.CalFitted() {
		t.Error("a wired calibrate button must report fitted")
	}
}
