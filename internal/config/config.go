package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxConfigFileBytes caps how much of a config file Load will accept.
const MaxConfigFileBytes = 64 * 1024

// SerialConfig describes the wire-protocol port (N1MM+ and friends
// expect 9600 baud; most other PC programs are configurable).
type SerialConfig struct {
	Port string `yaml:"port"` // e.g. "/dev/ttyUSB0"; empty disables the serial protocol
	Baud int    `yaml:"baud"`
}

// PinsConfig holds the BCM pin assignments for every line the
// controller touches.
type PinsConfig struct {
	RunRelay       int `yaml:"run_relay"`       // shared motor power relay
	SelectRelay    int `yaml:"select_relay"`    // axis select relay
	DirectionRelay int `yaml:"direction_relay"` // direction relay (meaning depends on selected axis)
	AzimuthIndex   int `yaml:"azimuth_index"`   // index pulse input, idle-high
	ElevationIndex int `yaml:"elevation_index"` // index pulse input, idle-high
	PowerSense     int `yaml:"power_sense"`     // rotator supply present input
	Reboot         int `yaml:"reboot"`          // soft reboot input
	ButtonCW       int `yaml:"button_cw"`
	ButtonCCW      int `yaml:"button_ccw"`
	ButtonUp       int `yaml:"button_up"`
	ButtonDown     int `yaml:"button_down"`
	ButtonCal      int `yaml:"button_cal"`
	Lamp           int `yaml:"lamp"` // status indicator; 0 = not fitted
}

// RelayPolarity separates the domain-level meaning of each relay from
// the electrical level that asserts it. A board wired with inverted
// drivers flips the corresponding flag instead of touching any logic.
type RelayPolarity struct {
	RunInverted       bool `yaml:"run_inverted"`
	SelectInverted    bool `yaml:"select_inverted"`    // non-inverted: High selects elevation
	DirectionInverted bool `yaml:"direction_inverted"` // non-inverted: High drives CW / Up
}

// AxisConfig describes the travel limits and park position of one axis.
type AxisConfig struct {
	Enabled     bool `yaml:"enabled"` // elevation only; azimuth is always enabled
	Min         int  `yaml:"min"`
	Max         int  `yaml:"max"`
	Park        int  `yaml:"park"`
	ParkEnabled bool `yaml:"park_enabled"`
}

// TimingConfig carries every timing constant of the motion engine.
// The defaults match a stock SPID BIG-RAS/HR with a 12-15 V supply,
// where index pulses arrive every 340-410 ms.
type TimingConfig struct {
	MotorTimeoutMs  int `yaml:"motor_timeout_ms"`  // stall bound; must exceed the worst pulse gap
	DebounceMs      int `yaml:"debounce_ms"`       // index pulse debounce
	BackupMs        int `yaml:"backup_ms"`         // elevation endstop back-off
	SaveDelayMs     int `yaml:"save_delay_ms"`     // idle time before the debounced position save
	ButtonReadMs    int `yaml:"button_read_ms"`    // button poll cadence
	ButtonFastMs    int `yaml:"button_fast_ms"`    // hold time before the accelerator kicks in
	ButtonFastIncr  int `yaml:"button_fast_incr"`  // accelerated degrees per button tick
	AzimuthSettleMs int `yaml:"azimuth_settle_ms"` // relay settle before/after azimuth run
	ElevSettleMs    int `yaml:"elevation_settle_ms"`
	DisplayHoldMs   int `yaml:"display_hold_ms"` // transient status hold time
	LoopTickMs      int `yaml:"loop_tick_ms"`    // driver poll interval
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel int    `yaml:"debug_level"` // 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO   bool   `yaml:"mock_gpio"`   // use mock GPIO (true=dev/test, false=real Raspberry Pi)
	StatePath  string `yaml:"state_path"`  // persisted position file
}

// Config aggregates all application configuration.
type Config struct {
	Serial    SerialConfig   `yaml:"serial"`
	Pins      PinsConfig     `yaml:"pins"`
	Polarity  RelayPolarity  `yaml:"relay_polarity"`
	Azimuth   AxisConfig     `yaml:"azimuth"`
	Elevation AxisConfig     `yaml:"elevation"`
	Timing    TimingConfig   `yaml:"timing"`
	Defaults  DefaultsConfig `yaml:"defaults"`
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > MaxConfigFileBytes {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), MaxConfigFileBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration for a stock SPID AZ/EL rotator.
// Load starts from this and overlays the file on top.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{Baud: 9600},
		Azimuth: AxisConfig{
			Enabled:     true,
			Min:         0,
			Max:         360,
			Park:        42,
			ParkEnabled: true,
		},
		Elevation: AxisConfig{
			Enabled:     true,
			Min:         0,
			Max:         90,
			Park:        0,
			ParkEnabled: true,
		},
		Timing: TimingConfig{
			MotorTimeoutMs:  700,
			DebounceMs:      10,
			BackupMs:        50,
			SaveDelayMs:     10000,
			ButtonReadMs:    200,
			ButtonFastMs:    2000,
			ButtonFastIncr:  5,
			AzimuthSettleMs: 10,
			ElevSettleMs:    20,
			DisplayHoldMs:   2000,
			LoopTickMs:      1,
		},
		Defaults: DefaultsConfig{
			DebugLevel: 1,
			StatePath:  "rotor-state.yaml",
		},
	}
}

func (c *Config) validate() error {
	if c.Azimuth.Min < 0 || c.Azimuth.Max > 360 || c.Azimuth.Min >= c.Azimuth.Max {
		return fmt.Errorf("azimuth limits [%d,%d] out of range (allowed 0..360)", c.Azimuth.Min, c.Azimuth.Max)
	}
	if c.Elevation.Enabled {
		if c.Elevation.Min < 0 || c.Elevation.Max > 90 || c.Elevation.Min >= c.Elevation.Max {
			return fmt.Errorf("elevation limits [%d,%d] out of range (allowed 0..90)", c.Elevation.Min, c.Elevation.Max)
		}
		if c.Elevation.ParkEnabled && (c.Elevation.Park < c.Elevation.Min || c.Elevation.Park > c.Elevation.Max) {
			return fmt.Errorf("elevation park %d outside [%d,%d]", c.Elevation.Park, c.Elevation.Min, c.Elevation.Max)
		}
	}
	if c.Azimuth.ParkEnabled && (c.Azimuth.Park < c.Azimuth.Min || c.Azimuth.Park > c.Azimuth.Max) {
		return fmt.Errorf("azimuth park %d outside [%d,%d]", c.Azimuth.Park, c.Azimuth.Min, c.Azimuth.Max)
	}
	if c.Timing.MotorTimeoutMs <= c.Timing.DebounceMs {
		return fmt.Errorf("motor_timeout_ms (%d) must exceed debounce_ms (%d)", c.Timing.MotorTimeoutMs, c.Timing.DebounceMs)
	}
	if c.Timing.ButtonReadMs >= c.Timing.MotorTimeoutMs {
		// Button polling slower than the pulse interval makes the motors
		// stop and start constantly, which is hard on the relays.
		return fmt.Errorf("button_read_ms (%d) must be below motor_timeout_ms (%d)", c.Timing.ButtonReadMs, c.Timing.MotorTimeoutMs)
	}
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("serial baud must be positive, got %d", c.Serial.Baud)
	}
	if c.Defaults.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}
	return nil
}

// MotorTimeout returns the stall detection bound.
func (c *Config) MotorTimeout() time.Duration {
	return time.Duration(c.Timing.MotorTimeoutMs) * time.Millisecond
}

// Debounce returns the index pulse debounce interval.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Timing.DebounceMs) * time.Millisecond
}

// Backup returns how long the elevation motor backs off an endstop.
func (c *Config) Backup() time.Duration {
	return time.Duration(c.Timing.BackupMs) * time.Millisecond
}

// SaveDelay returns the idle quiet period before a debounced position save.
func (c *Config) SaveDelay() time.Duration {
	return time.Duration(c.Timing.SaveDelayMs) * time.Millisecond
}

// ButtonRead returns the button poll cadence.
func (c *Config) ButtonRead() time.Duration {
	return time.Duration(c.Timing.ButtonReadMs) * time.Millisecond
}

// ButtonFast returns the hold duration that enables the accelerator.
func (c *Config) ButtonFast() time.Duration {
	return time.Duration(c.Timing.ButtonFastMs) * time.Millisecond
}

// SettleFor returns the relay settle interval for an axis; the
// elevation relays carry a heavier load and need longer.
func (c *Config) SettleFor(elevation bool) time.Duration {
	if elevation {
		return time.Duration(c.Timing.ElevSettleMs) * time.Millisecond
	}
	return time.Duration(c.Timing.AzimuthSettleMs) * time.Millisecond
}

// DisplayHold returns how long a transient status message stays up.
func (c *Config) DisplayHold() time.Duration {
	return time.Duration(c.Timing.DisplayHoldMs) * time.Millisecond
}

// LoopTick returns the driver poll interval.
func (c *Config) LoopTick() time.Duration {
	return time.Duration(c.Timing.LoopTickMs) * time.Millisecond
}
