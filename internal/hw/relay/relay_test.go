package relay

import (
	"testing"

	"github.com/cjeanneret/RotGo/internal/hw/gpio"
)

// recordingDriver captures pin levels for assertions.
type recordingDriver struct {
	setups []int
	levels map[int]gpio.Level
}

func newRecordingDriver() *recordingDriver {
	return &recordingDriver{levels: map[int]gpio.Level{}}
}

func (d *recordingDriver) SetupPin(pin int, mode gpio.PinMode) error {
	d.setups = append(d.setups, pin)
	return nil
}

func (d *recordingDriver) WritePin(pin int, lvl gpio.Level) error {
	d.levels[pin] = lvl
	return nil
}

func (d *recordingDriver) ReadPin(pin int) (gpio.Level, error) {
	return d.levels[pin], nil
}

func (d *recordingDriver) Close() error { return nil }

var pins = Pins{Run: 17, Select: 27, Direction: 22}

func TestNew_DropsEveryRelay(t *testing.T) {
	d := newRecordingDriver()
	if _, err := New(d, pins, Polarity{}); err != nil {
		t.Fatalf("new: %v", err)
	}

	if len(d.setups) != 3 {
		t.Errorf("setups = %v, want the three relay pins", d.setups)
	}
	for _, pin := range []int{pins.Run, pins.Select, pins.Direction} {
		if d.levels[pin] != gpio.Low {
			t.Errorf("pin %d = %v, want Low at start", pin, d.levels[pin])
		}
	}
}

func TestBoard_NonInvertedLevels(t *testing.T) {
	d := newRecordingDriver()
	b, err := New(d, pins, Polarity{})
	if err != nil {
		t.Fatal(err)
	}

	b.Select(true)
	b.Direction(true)
	b.Run(true)

	if d.levels[pins.Select] != gpio.High {
		t.Error("select elevation must drive the select pin High")
	}
	if d.levels[pins.Direction] != gpio.High {
		t.Error("forward must drive the direction pin High")
	}
	if d.levels[pins.Run] != gpio.High {
		t.Error("run must drive the power pin High")
	}

	b.Run(false)
	b.Release()

	for _, pin := range []int{pins.Run, pins.Select, pins.Direction} {
		if d.levels[pin] != gpio.Low {
			t.Errorf("pin %d = %v, want Low after release", pin, d.levels[pin])
		}
	}
}

func TestBoard_InvertedPolarity(t *testing.T) {
	d := newRecordingDriver()
	b, err := New(d, pins, Polarity{
		RunInverted:       true,
		SelectInverted:    true,
		DirectionInverted: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Dropped relays on an inverted board sit High.
	for _, pin := range []int{pins.Run, pins.Select, pins.Direction} {
		if d.levels[pin] != gpio.High {
			t.Errorf("pin %d = %v, want High when dropped inverted", pin, d.levels[pin])
		}
	}

	b.Select(true)
	b.Run(true)
	if d.levels[pins.Select] != gpio.Low {
		t.Error("inverted select must assert Low")
	}
	if d.levels[pins.Run] != gpio.Low {
		t.Error("inverted run must assert Low")
	}
}
