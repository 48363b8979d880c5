package lamp

import (
	"sync"
	"time"

	"github.com/cjeanneret/RotGo/internal/hw/gpio"
)

const (
	faultBlinks = 6
	blinkPeriod = 150 * time.Millisecond
)

// Lamp drives the status indicator LED: steady while the controller
// is healthy, a short blink burst after a stall recovery. A zero pin
// makes every method a no-op for builds without the indicator.
type Lamp struct {
	gpio gpio.Driver
	pin  int

	mu       sync.Mutex
	blinking bool
}

// New configures the indicator pin and lights it.
func New(g gpio.Driver, pin int) (*Lamp, error) {
	l := &Lamp{gpio: g, pin: pin}
	if pin == 0 {
		return l, nil
	}
	if err := g.SetupPin(pin, gpio.Output); err != nil {
		return nil, err
	}
	if err := g.WritePin(pin, gpio.High); err != nil {
		return nil, err
	}
	return l, nil
}

// Fault runs the blink burst without blocking the control loop. A
// burst already in progress is left alone.
func (l *Lamp) Fault() {
	if l.pin == 0 {
		return
	}
	l.mu.Lock()
	if l.blinking {
		l.mu.Unlock()
		return
	}
	l.blinking = true
	l.mu.Unlock()

	go func() {
		for i := 0; i < faultBlinks; i++ {
			_ = l.gpio.WritePin(l.pin, gpio.Low)
			time.Sleep(blinkPeriod)
			_ = l.gpio.WritePin(l.pin, gpio.High)
			time.Sleep(blinkPeriod)
		}
		l.mu.Lock()
		l.blinking = false
		l.mu.Unlock()
	}()
}

// Off extinguishes the indicator, for shutdown.
func (l *Lamp) Off() {
	if l.pin == 0 {
		return
	}
	_ = l.gpio.WritePin(l.pin, gpio.Low)
}
