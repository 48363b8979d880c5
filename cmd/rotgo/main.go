package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cjeanneret/RotGo/internal/config"
	"github.com/cjeanneret/RotGo/internal/debug"
	"github.com/cjeanneret/RotGo/internal/display"
	"github.com/cjeanneret/RotGo/internal/hw/buttons"
	"github.com/cjeanneret/RotGo/internal/hw/gpio"
	"github.com/cjeanneret/RotGo/internal/hw/lamp"
	"github.com/cjeanneret/RotGo/internal/hw/relay"
	"github.com/cjeanneret/RotGo/internal/hw/sense"
	"github.com/cjeanneret/RotGo/internal/logic/engine"
	"github.com/cjeanneret/RotGo/internal/proto"
	"github.com/cjeanneret/RotGo/internal/store"
	"github.com/cjeanneret/RotGo/internal/web"
)

func main() {
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	webPort := flag.Int("web", 0, "serve the status UI on this port; 0 disables")
	forceCal := flag.Bool("calibrate", false, "run calibration at startup even with valid saved state")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)
	debug.Value("Mock GPIO", cfg.Defaults.MockGPIO)
	debug.Value("Elevation axis", cfg.Elevation.Enabled)

	gpioDriver, err := gpio.NewDriver(cfg.Defaults.MockGPIO)
	if err != nil {
		log.Fatalf("init GPIO failed: %v", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()

	board, err := relay.New(gpioDriver, relay.Pins{
		Run:       cfg.Pins.RunRelay,
		Select:    cfg.Pins.SelectRelay,
		Direction: cfg.Pins.DirectionRelay,
	}, relay.Polarity{
		RunInverted:       cfg.Polarity.RunInverted,
		SelectInverted:    cfg.Polarity.SelectInverted,
		DirectionInverted: cfg.Polarity.DirectionInverted,
	})
	if err != nil {
		log.Fatalf("init relay board failed: %v", err)
	}

	panel, err := sense.New(gpioDriver, sense.Pins{
		AzimuthIndex:   cfg.Pins.AzimuthIndex,
		ElevationIndex: cfg.Pins.ElevationIndex,
		PowerSense:     cfg.Pins.PowerSense,
		Reboot:         cfg.Pins.Reboot,
	})
	if err != nil {
		log.Fatalf("init input panel failed: %v", err)
	}

	pad, err := buttons.New(gpioDriver, buttons.Pins{
		CW:   cfg.Pins.ButtonCW,
		CCW:  cfg.Pins.ButtonCCW,
		Up:   cfg.Pins.ButtonUp,
		Down: cfg.Pins.ButtonDown,
		Cal:  cfg.Pins.ButtonCal,
	}, buttons.Config{
		ReadEvery:     cfg.ButtonRead(),
		FastAfter:     cfg.ButtonFast(),
		FastIncrement: cfg.Timing.ButtonFastIncr,
	})
	if err != nil {
		log.Fatalf("init buttons failed: %v", err)
	}

	indicator, err := lamp.New(gpioDriver, cfg.Pins.Lamp)
	if err != nil {
		log.Fatalf("init status lamp failed: %v", err)
	}

	st := store.New(cfg.Defaults.StatePath)
	requests := make(chan engine.Request, 16)

	renderers := display.Multi{display.NewConsole(cfg.DisplayHold())}
	if *webPort > 0 {
		broadcaster := web.NewStatusBroadcaster()
		statusRenderer := web.NewStatusRenderer(broadcaster)
		renderers = append(renderers, statusRenderer)
		debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))

		srv := web.NewServer(fmt.Sprintf(":%d", *webPort), broadcaster, statusRenderer, requests)
		go func() {
			if err := srv.Run(ctx); err != nil {
				debug.Error(err)
			}
		}()
	}

	eng := engine.New(engineConfig(cfg), engine.Deps{
		Board:   board,
		Inputs:  panel,
		Store:   st,
		Display: renderers,
		Lamp:    indicator,
	})

	if az, el, ok := st.Load(); ok && !*forceCal {
		eng.Seed(az, el)
	} else {
		debug.Info("no valid saved positions, calibration scheduled")
		eng.RequestCalibration()
	}

	if cfg.Serial.Port != "" {
		port, err := proto.OpenSerial(cfg.Serial.Port, cfg.Serial.Baud)
		if err != nil {
			log.Fatalf("open serial port %s failed: %v", cfg.Serial.Port, err)
		}
		defer port.Close()
		debug.Value("Serial port", cfg.Serial.Port)
		go func() {
			if err := proto.Serve(ctx, port, requests); err != nil && !errors.Is(err, context.Canceled) {
				debug.Error(err)
			}
		}()
	}

	err = eng.Run(ctx, pad, requests)
	indicator.Off()
	switch {
	case errors.Is(err, engine.ErrRebootRequested):
		// The supervisor (systemd Restart=always) brings us back up.
		debug.Info("reboot requested, exiting")
	case errors.Is(err, context.Canceled):
		debug.Info("shutdown complete")
	case err != nil:
		log.Fatalf("engine: %v", err)
	}
}

// engineConfig maps the file configuration onto the motion engine's
// parameters.
func engineConfig(cfg *config.Config) engine.Config {
	return engine.Config{
		ElevationEnabled:     cfg.Elevation.Enabled,
		AzimuthMin:           cfg.Azimuth.Min,
		AzimuthMax:           cfg.Azimuth.Max,
		ElevationMin:         cfg.Elevation.Min,
		ElevationMax:         cfg.Elevation.Max,
		AzimuthPark:          cfg.Azimuth.Park,
		ElevationPark:        cfg.Elevation.Park,
		AzimuthParkEnabled:   cfg.Azimuth.ParkEnabled,
		ElevationParkEnabled: cfg.Elevation.ParkEnabled,
		MotorTimeout:         cfg.MotorTimeout(),
		Debounce:             cfg.Debounce(),
		Backup:               cfg.Backup(),
		SaveDelay:            cfg.SaveDelay(),
		AzimuthSettle:        cfg.SettleFor(false),
		ElevationSettle:      cfg.SettleFor(true),
		ButtonRead:           cfg.ButtonRead(),
		LoopTick:             cfg.LoopTick(),
	}
}
