package buttons

import (
	"time"

	"github.com/cjeanneret/RotGo/internal/debug"
	"github.com/cjeanneret/RotGo/internal/hw/gpio"
	"github.com/cjeanneret/RotGo/internal/logic/engine"
)

// Pins holds the BCM pin numbers of the five push buttons. A zero pin
// means the button is not fitted.
type Pins struct {
	CW   int
	CCW  int
	Up   int
	Down int
	Cal  int
}

// Config tunes the poll cadence and the hold accelerator.
type Config struct {
	ReadEvery     time.Duration // poll cadence; must stay below the pulse interval
	FastAfter     time.Duration // hold time before the accelerator kicks in; 0 disables
	FastIncrement int           // accelerated degrees per tick
}

const (
	btnCW = iota
	btnCCW
	btnUp
	btnDown
	btnCal
	btnCount
)

type buttonState struct {
	down      bool
	downSince time.Time
}

// Pad polls the five buttons on a fixed cadence and turns held
// direction buttons into per-tick target adjustments. Holding a
// button past the fast threshold accelerates the increment. It
// implements the motion engine's Buttons collaborator.
type Pad struct {
	gpio gpio.Driver
	pins [btnCount]int
	cfg  Config
	now  func() time.Time

	lastRead time.Time
	state    [btnCount]buttonState
}

// New configures the button inputs with pull-ups (buttons short to
// ground, so down = low).
func New(g gpio.Driver, pins Pins, cfg Config) (*Pad, error) {
	p := &Pad{
		gpio: g,
		pins: [btnCount]int{pins.CW, pins.CCW, pins.Up, pins.Down, pins.Cal},
		cfg:  cfg,
		now:  time.Now,
	}
	if p.cfg.FastIncrement <= 0 {
		p.cfg.FastIncrement = 1
	}
	for _, pin := range p.pins {
		if pin == 0 {
			continue
		}
		if err := g.SetupPin(pin, gpio.InputPullup); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Poll reads the buttons if the cadence allows and returns the
// resulting target adjustments. Between cadence ticks it only reports
// the remembered manual-override state, so a held button keeps
// out-ranking remote commands without extra pin reads.
func (p *Pad) Poll() engine.ButtonInput {
	now := p.now()
	if now.Sub(p.lastRead) < p.cfg.ReadEvery {
		return engine.ButtonInput{ManualActive: p.anyDirectionDown()}
	}
	p.lastRead = now

	var in engine.ButtonInput
	for i, pin := range p.pins {
		cur := p.pinDown(pin)
		st := &p.state[i]
		edge := cur && !st.down
		if edge {
			st.downSince = now
		}
		st.down = cur

		if i == btnCal {
			in.CalibratePressed = edge
			continue
		}
		if !cur {
			continue
		}
		incr := 1
		if p.cfg.FastAfter > 0 && now.Sub(st.downSince) >= p.cfg.FastAfter {
			incr = p.cfg.FastIncrement
		}
		switch i {
		case btnCW:
			in.AzimuthDelta += incr
		case btnCCW:
			in.AzimuthDelta -= incr
		case btnUp:
			in.ElevationDelta += incr
		case btnDown:
			in.ElevationDelta -= incr
		}
	}
	in.ManualActive = p.anyDirectionDown()
	return in
}

// CWDown reads the CW button level directly, bypassing the cadence.
// Used by the calibration procedure.
func (p *Pad) CWDown() bool { return p.pinDown(p.pins[btnCW]) }

// CCWDown reads the CCW button level directly.
func (p *Pad) CCWDown() bool { return p.pinDown(p.pins[btnCCW]) }

// CalDown reads the calibrate button level directly.
func (p *Pad) CalDown() bool { return p.pinDown(p.pins[btnCal]) }

// CalFitted reports whether a calibrate button is wired.
func (p *Pad) CalFitted() bool { return p.pins[btnCal] != 0 }

func (p *Pad) anyDirectionDown() bool {
	return p.state[btnCW].down || p.state[btnCCW].down ||
		p.state[btnUp].down || p.state[btnDown].down
}

func (p *Pad) pinDown(pin int) bool {
	if pin == 0 {
		return false
	}
	lvl, err := p.gpio.ReadPin(pin)
	if err != nil {
		debug.Error(err)
		return false
	}
	return lvl == gpio.Low
}
