package proto

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cjeanneret/RotGo/internal/debug"
)

// Rotator is the slice of the motion engine the wire protocol touches.
type Rotator interface {
	PowerPresent() bool
	ElevationEnabled() bool
	AzimuthState() (current, target int)
	ElevationState() (current, target int)
	SetAzimuthTarget(deg int) bool
	SetElevationTarget(deg int) bool
	SetTargets(az, el int) bool
	Park()
	ForceSync(az, el int)
}

// Handler translates the ASCII command grammar into rotator calls.
// Framing is the caller's job: Execute receives one complete command
// with the terminator already stripped.
//
// The grammar is a single upper-case letter plus fixed-width numeric
// fields: C, C2, M DDD, W DDD+0DDD, E DDD, P, Z DDD+0DDD. Unknown
// letters are ignored without a reply; malformed numeric fields parse
// as zero. Target-changing commands are dropped while the rotator
// supply is absent or a manual button is held — except Z, the bench
// command, which only ignores the supply check.
type Handler struct {
	out io.Writer
}

// NewHandler creates a protocol handler replying on out.
func NewHandler(out io.Writer) *Handler {
	return &Handler{out: out}
}

// Execute runs one command against the rotator.
func (h *Handler) Execute(line string, rot Rotator) {
	line = strings.ToUpper(strings.TrimSpace(line))
	if line == "" {
		return
	}
	debug.Verbose("protocol command %q", line)

	switch {
	case line == "C2":
		az, _ := rot.AzimuthState()
		el, _ := rot.ElevationState()
		h.reply("+0%03d+0%03d\r", az, el)

	case line == "C":
		az, _ := rot.AzimuthState()
		h.reply("AZ=%03d\r", az)

	case line[0] == 'M':
		if !rot.PowerPresent() {
			return
		}
		rot.SetAzimuthTarget(num(line, 1, 4))

	case line[0] == 'W':
		if !rot.PowerPresent() {
			return
		}
		rot.SetTargets(num(line, 1, 4), num(line, 6, 9))

	case line[0] == 'E':
		if !rot.PowerPresent() || !rot.ElevationEnabled() {
			return
		}
		rot.SetElevationTarget(num(line, 1, 4))

	case line[0] == 'P':
		if !rot.PowerPresent() {
			return
		}
		rot.Park()

	case line[0] == 'Z':
		// Bench testing aid: works with the supply sense disconnected.
		rot.ForceSync(num(line, 1, 4), num(line, 6, 9))
	}
}

func (h *Handler) reply(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(h.out, format, args...); err != nil {
		debug.Error(fmt.Errorf("protocol reply: %w", err))
	}
}

// num extracts the fixed-width numeric field line[from:to]. A short
// line or a field with any non-numeric garbage reads as zero; the
// protocol clamps rather than rejects.
func num(line string, from, to int) int {
	if len(line) < to {
		return 0
	}
	v, err := strconv.Atoi(line[from:to])
	if err != nil || v < 0 {
		return 0
	}
	return v
}
