package engine

import "time"

// AxisID names one of the two rotator axes. AxisNone doubles as the
// "no motor running" value in MotorState.
type AxisID int

const (
	AxisNone AxisID = iota
	AxisAzimuth
	AxisElevation
)

func (a AxisID) String() string {
	switch a {
	case AxisAzimuth:
		return "AZ"
	case AxisElevation:
		return "EL"
	default:
		return "none"
	}
}

// Direction is the domain-level motor direction. The mapping to relay
// levels lives at the actuation boundary (the Actuator), never here.
type Direction int

const (
	DirNone Direction = iota
	DirCW
	DirCCW
	DirUp
	DirDown
)

func (d Direction) String() string {
	switch d {
	case DirCW:
		return "CW"
	case DirCCW:
		return "CCW"
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	default:
		return "none"
	}
}

// sign returns the per-pulse position increment for the direction.
func (d Direction) sign() int {
	switch d {
	case DirCW, DirUp:
		return 1
	case DirCCW, DirDown:
		return -1
	default:
		return 0
	}
}

// forward reports whether the direction maps to the asserted level of
// the direction relay (CW for azimuth, up for elevation).
func (d Direction) forward() bool {
	return d == DirCW || d == DirUp
}

func (d Direction) opposite() Direction {
	switch d {
	case DirCW:
		return DirCCW
	case DirCCW:
		return DirCW
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	default:
		return DirNone
	}
}

// StopReason records why a motor was stopped. Reasons are diagnostics
// for the log and display only; no control decision depends on them.
type StopReason int

const (
	StopElevationTimeout StopReason = iota
	StopAzimuthTimeout
	StopElevationNormal
	StopAzimuthNormal
	StopElevationCalibrate
	StopElevationBackup
	StopReversal
	StopReboot
)

// Label returns the human-readable form used by the display and log.
func (r StopReason) Label() string {
	switch r {
	case StopElevationTimeout:
		return "EL Timeout"
	case StopAzimuthTimeout:
		return "AZ Timeout"
	case StopElevationNormal:
		return "EL Stop"
	case StopAzimuthNormal:
		return "AZ Stop"
	case StopElevationCalibrate:
		return "EL Calibrate"
	case StopElevationBackup:
		return "EL Backup"
	case StopReversal:
		return "Reversal"
	case StopReboot:
		return "Reboot"
	default:
		return "Unknown"
	}
}

// routine reports whether the reason is an ordinary target-reached
// stop, the only kind suppressed while a human is holding a button.
func (r StopReason) routine() bool {
	return r == StopAzimuthNormal || r == StopElevationNormal
}

// Axis holds the full tracked state of one rotator axis. Current is
// the authoritative position estimate, integrated from index pulses;
// LastGood is the recovery anchor after a stall.
type Axis struct {
	Name string

	Target   int
	Current  int
	LastGood int

	Min, Max int

	// Dirty bits consumed by the display; cleared once rendered.
	TargetChanged  bool
	CurrentChanged bool

	// Current has moved since the last persisted value.
	PendingSave bool

	StoppedAt   time.Time
	Calibrating bool
}

// clamp forces v into the axis's valid range.
func (a *Axis) clamp(v int) int {
	if v < a.Min {
		return a.Min
	}
	if v > a.Max {
		return a.Max
	}
	return v
}

// setTarget clamps and applies a new target, flagging the change.
func (a *Axis) setTarget(v int) {
	v = a.clamp(v)
	if v != a.Target {
		a.Target = v
		a.TargetChanged = true
	}
}

// MotorState is the process-wide motor record. The hardware shares one
// power relay between both axes, so at most one axis is ever active.
type MotorState struct {
	Active    AxisID
	Dir       Direction
	LastPulse time.Time
}

// Snapshot is a read-only copy of the engine state handed to the
// display and web collaborators.
type Snapshot struct {
	AzimuthCurrent   int    `json:"azimuth_current"`
	AzimuthTarget    int    `json:"azimuth_target"`
	ElevationCurrent int    `json:"elevation_current"`
	ElevationTarget  int    `json:"elevation_target"`
	ElevationEnabled bool   `json:"elevation_enabled"`
	Moving           string `json:"moving"`    // "AZ", "EL" or "none"
	Direction        string `json:"direction"` // "CW", "CCW", "up", "down" or "none"
	Calibrating      bool   `json:"calibrating"`
	PowerPresent     bool   `json:"power_present"`
}
