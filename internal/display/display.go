package display

import (
	"fmt"
	"time"

	"github.com/cjeanneret/RotGo/internal/debug"
	"github.com/cjeanneret/RotGo/internal/logic/engine"
)

// FormatAzimuth renders the fixed 3-digit zero-padded azimuth field.
func FormatAzimuth(v int) string {
	return fmt.Sprintf("%03d", v)
}

// FormatElevation renders the elevation field. Values below zero only
// occur during the calibration excursion and are shown as value+360 so
// the field never looks negative.
func FormatElevation(v int) string {
	if v < 0 {
		v += 360
	}
	return fmt.Sprintf("%03d", v)
}

// Banner renders the idle banner line from a state snapshot.
func Banner(s engine.Snapshot) string {
	line := fmt.Sprintf("AZ %s>%s", FormatAzimuth(s.AzimuthCurrent), FormatAzimuth(s.AzimuthTarget))
	if s.ElevationEnabled {
		line += fmt.Sprintf("  EL %s>%s", FormatElevation(s.ElevationCurrent), FormatElevation(s.ElevationTarget))
	}
	if s.Moving != "none" {
		line += fmt.Sprintf("  [%s %s]", s.Moving, s.Direction)
	}
	if s.Calibrating {
		line += "  CAL"
	}
	return line
}

// Console renders the axis state to the log. A transient status
// message (timeout, calibration phase) is prepended to the banner and
// expires after the hold duration.
type Console struct {
	hold time.Duration
	now  func() time.Time

	transient string
	shownAt   time.Time
}

// NewConsole creates a console renderer with the given transient hold.
func NewConsole(hold time.Duration) *Console {
	return &Console{hold: hold, now: time.Now}
}

// Transient shows a short status message ahead of the banner.
func (c *Console) Transient(msg string) {
	c.transient = msg
	c.shownAt = c.now()
	debug.Live("status: %s", msg)
}

// Refresh renders the banner, with any unexpired transient in front.
func (c *Console) Refresh(s engine.Snapshot) {
	line := Banner(s)
	if c.transient != "" {
		if c.now().Sub(c.shownAt) <= c.hold {
			line = c.transient + " | " + line
		} else {
			c.transient = ""
		}
	}
	debug.Live("%s", line)
}

// Multi fans a refresh out to several renderers (console + web).
type Multi []engine.Renderer

func (m Multi) Refresh(s engine.Snapshot) {
	for _, r := range m {
		r.Refresh(s)
	}
}

func (m Multi) Transient(msg string) {
	for _, r := range m {
		r.Transient(msg)
	}
}
