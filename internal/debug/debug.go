package debug

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Debug levels
const (
	LevelOff     = 0 // No output
	LevelInfo    = 1 // Important info (boot, calibration, faults)
	LevelLive    = 2 // Live info (motor starts/stops, target changes)
	LevelVerbose = 3 // Verbose (pulse accounting, persistence, protocol)
	LevelTrace   = 4 // Trace (GPIO, very low level)
)

var (
	level  int
	logger = logrus.New()
)

// Init initializes the debug system with a level (0-4).
// 0 = no output
// 1 = important info (boot, calibration, stall recovery)
// 2 = live info (motor activity, targets)
// 3 = verbose (pulses, saves, protocol traffic)
// 4 = trace (GPIO, very low level)
func Init(debugLevel int) {
	level = debugLevel
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	switch {
	case level <= LevelOff:
		logger.SetOutput(io.Discard)
	case level >= LevelTrace:
		logger.SetLevel(logrus.TraceLevel)
	case level == LevelVerbose:
		logger.SetLevel(logrus.DebugLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput redirects all debug output, e.g. to a MultiWriter that
// also feeds the web status broadcaster.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Level returns the current debug level.
func Level() int {
	return level
}

// IsEnabled returns true if debug level is >= the requested level.
func IsEnabled(minLevel int) bool {
	return level >= minLevel
}

// --- Level 1 functions (Info): important info ---

// Info prints a level 1 message (important info).
func Info(format string, args ...interface{}) {
	if level >= LevelInfo {
		logger.Infof(format, args...)
	}
}

// Section prints a section separator (level 1).
func Section(name string) {
	if level >= LevelInfo {
		logger.Info("═══════════════════════════════════════")
		logger.Infof("  %s", name)
		logger.Info("═══════════════════════════════════════")
	}
}

// Value prints a named value in formatted form (level 1).
func Value(name string, value interface{}) {
	if level >= LevelInfo {
		logger.Infof("  %s = %v", name, value)
	}
}

// --- Level 2 functions (Live): real-time info ---

// Live prints a level 2 message (live info).
func Live(format string, args ...interface{}) {
	if level >= LevelLive {
		logger.Infof(format, args...)
	}
}

// Motor prints a motor start/stop event (level 2).
func Motor(axis, event string) {
	if level >= LevelLive {
		logger.WithFields(logrus.Fields{"axis": axis}).Infof("motor %s", event)
	}
}

// Target prints a target change (level 2).
func Target(axis string, degrees int, source string) {
	if level >= LevelLive {
		logger.WithFields(logrus.Fields{
			"axis":   axis,
			"source": source,
		}).Infof("target -> %d", degrees)
	}
}

// --- Level 3 functions (Verbose) ---

// Verbose prints a level 3 message.
func Verbose(format string, args ...interface{}) {
	if level >= LevelVerbose {
		logger.Debugf(format, args...)
	}
}

// Pulse prints one confirmed index pulse (level 3).
func Pulse(axis string, current int) {
	if level >= LevelVerbose {
		logger.WithFields(logrus.Fields{"axis": axis}).Debugf("pulse, current=%d", current)
	}
}

// --- Level 4 functions (Trace): very low level ---

// Trace prints a level 4 message.
func Trace(format string, args ...interface{}) {
	if level >= LevelTrace {
		logger.Tracef(format, args...)
	}
}

// GPIO prints a GPIO operation (level 4).
func GPIO(operation string, pin int, value interface{}) {
	if level >= LevelTrace {
		logger.Tracef("GPIO %s pin=%d value=%v", operation, pin, value)
	}
}

// --- General functions ---

// Error prints a debug error (level 1+).
func Error(err error) {
	if level >= LevelInfo {
		logger.Errorf("%v", err)
	}
}
