package engine

import (
	"time"

	"github.com/cjeanneret/RotGo/internal/debug"
)

// Actuator drives the relay board. Implementations translate the
// domain-level request into electrical levels; the engine never deals
// in relay polarity.
type Actuator interface {
	// Select routes motor power to one axis (true = elevation).
	Select(elevation bool) error
	// Direction sets the direction relay (true = CW / up).
	Direction(forward bool) error
	// Run asserts or drops the shared power relay.
	Run(on bool) error
	// Release de-asserts the select and direction relays.
	Release() error
}

// Inputs exposes the digital inputs the engine polls.
type Inputs interface {
	// IndexHigh reads the index pulse line of an axis
	// (true = elevation). The line is idle-high; a pulse is low.
	IndexHigh(elevation bool) bool
	// PowerPresent reports whether the rotator supply is up.
	PowerPresent() bool
	// RebootRequested reports a soft-reboot input edge.
	RebootRequested() bool
}

// Saver persists the axis positions.
type Saver interface {
	Save(azimuth, elevation int) error
}

// Renderer is the display collaborator. Refresh consumes a state
// snapshot; Transient shows a short status message (timeouts,
// calibration phases) that reverts to the idle banner on its own.
type Renderer interface {
	Refresh(s Snapshot)
	Transient(msg string)
}

// Indicator signals faults on the status lamp.
type Indicator interface {
	Fault()
}

// Config carries the limits and timing of the motion engine, already
// converted from the file configuration.
type Config struct {
	ElevationEnabled bool

	AzimuthMin, AzimuthMax     int
	ElevationMin, ElevationMax int

	AzimuthPark, ElevationPark               int
	AzimuthParkEnabled, ElevationParkEnabled bool

	MotorTimeout    time.Duration
	Debounce        time.Duration
	Backup          time.Duration
	SaveDelay       time.Duration
	AzimuthSettle   time.Duration
	ElevationSettle time.Duration
	ButtonRead      time.Duration
	LoopTick        time.Duration
}

// Deps are the engine's collaborators. Store, Display and Lamp may be
// nil; no-op implementations are substituted.
type Deps struct {
	Clock   Clock
	Board   Actuator
	Inputs  Inputs
	Store   Saver
	Display Renderer
	Lamp    Indicator
}

// Engine owns the complete mutable state of the motion controller:
// the two axis records and the single motor record. All mutation
// happens on the driver goroutine; collaborators feed requests in
// through the Run loop.
type Engine struct {
	cfg Config

	clock   Clock
	board   Actuator
	inputs  Inputs
	store   Saver
	display Renderer
	lamp    Indicator

	Az    Axis
	El    Axis
	Motor MotorState

	manualOverride   bool
	calibratePending bool
	lastStop         StopReason
}

// New builds an engine around the given collaborators. Positions start
// at zero until Seed or calibration establishes a reference.
func New(cfg Config, d Deps) *Engine {
	if d.Clock == nil {
		d.Clock = RealClock()
	}
	if d.Store == nil {
		d.Store = nopSaver{}
	}
	if d.Display == nil {
		d.Display = nopRenderer{}
	}
	if d.Lamp == nil {
		d.Lamp = nopIndicator{}
	}
	return &Engine{
		cfg:     cfg,
		clock:   d.Clock,
		board:   d.Board,
		inputs:  d.Inputs,
		store:   d.Store,
		display: d.Display,
		lamp:    d.Lamp,
		Az: Axis{
			Name: "AZ",
			Min:  cfg.AzimuthMin,
			Max:  cfg.AzimuthMax,
		},
		El: Axis{
			Name: "EL",
			Min:  cfg.ElevationMin,
			Max:  cfg.ElevationMax,
		},
	}
}

// Seed installs persisted positions as the trusted starting state.
func (e *Engine) Seed(az, el int) {
	az = e.Az.clamp(az)
	el = e.El.clamp(el)
	e.Az.Current, e.Az.Target, e.Az.LastGood = az, az, az
	e.El.Current, e.El.Target, e.El.LastGood = el, el, el
	e.Az.CurrentChanged, e.Az.TargetChanged = true, true
	e.El.CurrentChanged, e.El.TargetChanged = true, true
	debug.Info("seeded positions az=%d el=%d", az, el)
}

// RequestCalibration schedules the calibration procedure for the next
// driver pass. Used at first boot when no valid saved state exists.
func (e *Engine) RequestCalibration() {
	e.calibratePending = true
}

func (e *Engine) axis(id AxisID) *Axis {
	if id == AxisElevation {
		return &e.El
	}
	return &e.Az
}

func (e *Engine) settle(id AxisID) time.Duration {
	if id == AxisElevation {
		return e.cfg.ElevationSettle
	}
	return e.cfg.AzimuthSettle
}

// persistNow writes both positions through the store and clears the
// pending-save flags. A failed write keeps the flags set so the
// debounced save path retries.
func (e *Engine) persistNow() {
	if err := e.store.Save(e.Az.Current, e.El.Current); err != nil {
		debug.Error(err)
		return
	}
	e.Az.PendingSave = false
	e.El.PendingSave = false
	debug.Verbose("persisted az=%d el=%d", e.Az.Current, e.El.Current)
}

// Snapshot returns a copy of the externally visible state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		AzimuthCurrent:   e.Az.Current,
		AzimuthTarget:    e.Az.Target,
		ElevationCurrent: e.El.Current,
		ElevationTarget:  e.El.Target,
		ElevationEnabled: e.cfg.ElevationEnabled,
		Moving:           e.Motor.Active.String(),
		Direction:        e.Motor.Dir.String(),
		Calibrating:      e.Az.Calibrating || e.El.Calibrating,
		PowerPresent:     e.inputs.PowerPresent(),
	}
}

// refreshDisplay renders when any dirty flag is set, then clears them.
func (e *Engine) refreshDisplay() {
	if !(e.Az.TargetChanged || e.Az.CurrentChanged || e.El.TargetChanged || e.El.CurrentChanged) {
		return
	}
	e.display.Refresh(e.Snapshot())
	e.Az.TargetChanged, e.Az.CurrentChanged = false, false
	e.El.TargetChanged, e.El.CurrentChanged = false, false
}

type nopSaver struct{}

func (nopSaver) Save(int, int) error { return nil }

type nopRenderer struct{}

func (nopRenderer) Refresh(Snapshot) {}
func (nopRenderer) Transient(string) {}

type nopIndicator struct{}

func (nopIndicator) Fault() {}
