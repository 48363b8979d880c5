package engine

import (
	"testing"
)

// script replays a level sequence one read at a time; the last level
// sticks, an empty script reads as released.
type script struct {
	levels []bool
	pos    int
}

func (s *script) next() bool {
	if len(s.levels) == 0 {
		return false
	}
	lvl := s.levels[s.pos]
	if s.pos < len(s.levels)-1 {
		s.pos++
	}
	return lvl
}

// fakePad scripts the raw button levels the calibration procedure
// reads. Poll is unused during calibration and returns nothing held.
type fakePad struct {
	cw, ccw, cal script
	noCal        bool
}

func (p *fakePad) Poll() ButtonInput { return ButtonInput{} }
func (p *fakePad) CWDown() bool      { return p.cw.next() }
func (p *fakePad) CCWDown() bool     { return p.ccw.next() }
func (p *fakePad) CalDown() bool     { return p.cal.next() }
func (p *fakePad) CalFitted() bool   { return !p.noCal }

func TestCalibrate_ElevationDrivesIntoEndstop(t *testing.T) {
	h := newHarness(t, testConfig())
	h.eng.Seed(100, 30)
	// Operator confirms immediately; one press-release on the cal button.
	pad := &fakePad{cal: script{levels: []bool{true, false}}}

	h.eng.Calibrate(pad)

	if h.eng.El.Current != 0 || h.eng.El.Target != 0 || h.eng.El.LastGood != 0 {
		t.Errorf("elevation = %d/%d/%d, want zeroed at the endstop",
			h.eng.El.Current, h.eng.El.Target, h.eng.El.LastGood)
	}
	if h.eng.Motor.Active != AxisNone {
		t.Error("calibration must leave the motor stopped")
	}
	if h.eng.Az.Calibrating || h.eng.El.Calibrating {
		t.Error("calibration flags must be cleared on exit")
	}
	if h.eng.calibratePending {
		t.Error("pending flag must be consumed")
	}
	if len(h.saver.saves) == 0 {
		t.Error("calibration must persist the result")
	}
	last := h.saver.saves[len(h.saver.saves)-1]
	if last != [2]int{100, 0} {
		t.Errorf("persisted %v, want [100 0]", last)
	}
}

func TestCalibrate_AzimuthButtonWalk(t *testing.T) {
	h := newHarness(t, testConfig())
	h.eng.Seed(100, 0)
	// Two CW nudges, one CCW, one quiet pass, then the operator
	// confirms. CCW is only sampled on passes where CW reads released.
	pad := &fakePad{
		cw:  script{levels: []bool{true, true, false}},
		ccw: script{levels: []bool{true, false}},
		cal: script{levels: []bool{false, false, false, false, true, false}},
	}

	h.eng.Calibrate(pad)

	if h.eng.Az.Current != 101 {
		t.Errorf("azimuth = %d, want 101 after +1 +1 -1", h.eng.Az.Current)
	}
	if h.eng.Az.Target != 101 || h.eng.Az.LastGood != 101 {
		t.Error("the walked reading must become target and last good too")
	}
	if len(h.disp.transients) == 0 {
		t.Fatal("calibration must announce the azimuth phase")
	}
	if h.disp.transients[len(h.disp.transients)-1] != "CAL AZ" {
		t.Errorf("transients = %v, want CAL AZ last", h.disp.transients)
	}
}

func TestCalibrate_NudgeNeverRunsTheMotor(t *testing.T) {
	cfg := testConfig()
	cfg.ElevationEnabled = false
	h := newHarness(t, cfg)
	h.eng.Seed(100, 0)
	pad := &fakePad{
		cw:  script{levels: []bool{true, false}},
		cal: script{levels: []bool{false, false, true, false}},
	}

	h.eng.Calibrate(pad)

	if len(h.board.ops) != 0 {
		t.Errorf("azimuth walk adjusts the reading only, relay ops = %v", h.board.ops)
	}
	if h.eng.Az.Current != 101 {
		t.Errorf("azimuth = %d, want 101", h.eng.Az.Current)
	}
}

func TestCalibrate_AzimuthWalkClamps(t *testing.T) {
	cfg := testConfig()
	cfg.ElevationEnabled = false
	h := newHarness(t, cfg)
	h.eng.Seed(360, 0)
	pad := &fakePad{
		cw:  script{levels: []bool{true, false}},
		cal: script{levels: []bool{false, false, true, false}},
	}

	h.eng.Calibrate(pad)

	if h.eng.Az.Current != 360 {
		t.Errorf("azimuth = %d, want clamped at 360", h.eng.Az.Current)
	}
}

func TestCalibrate_WithoutPowerAbandonsExcursionTarget(t *testing.T) {
	h := newHarness(t, testConfig())
	h.eng.Seed(100, 30)
	h.inputs.power = false
	pad := &fakePad{cal: script{levels: []bool{true, false}}}

	h.eng.Calibrate(pad)

	// The endstop drive never started, so the out-of-range excursion
	// target must not survive into normal operation.
	if h.eng.El.Target != 30 {
		t.Errorf("elevation target = %d, want restored to 30", h.eng.El.Target)
	}
	if h.eng.El.Current != 30 || h.eng.El.LastGood != 30 {
		t.Errorf("elevation = %d/%d, want untouched at 30", h.eng.El.Current, h.eng.El.LastGood)
	}
	if len(h.board.ops) != 0 {
		t.Errorf("relay ops = %v, want none without supply", h.board.ops)
	}
	if h.eng.El.Calibrating || h.eng.calibratePending {
		t.Error("calibration flags must be cleared on exit")
	}
}

func TestCalibrate_FinishesWithoutCalibrateButton(t *testing.T) {
	h := newHarness(t, testConfig())
	h.eng.Seed(100, 30)

	// A headless build: the confirmation wait has nothing to wait on,
	// so the azimuth phase is skipped entirely. Returning at all is
	// the point of this test.
	h.eng.Calibrate(nopButtons{})

	if h.eng.El.Current != 0 || h.eng.El.Target != 0 {
		t.Errorf("elevation = %d→%d, want the endstop phase still run", h.eng.El.Current, h.eng.El.Target)
	}
	if h.eng.Az.Current != 100 {
		t.Errorf("azimuth = %d, want left alone with no buttons", h.eng.Az.Current)
	}
	if h.eng.Az.Calibrating || h.eng.El.Calibrating || h.eng.calibratePending {
		t.Error("calibration flags must be cleared on exit")
	}
	if len(h.saver.saves) == 0 {
		t.Error("calibration must persist the result")
	}
}

func TestCalibrate_SkipsElevationWhenDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.ElevationEnabled = false
	h := newHarness(t, cfg)
	h.eng.Seed(100, 0)
	pad := &fakePad{cal: script{levels: []bool{true, false}}}

	h.eng.Calibrate(pad)

	for _, op := range h.board.ops {
		if op == "select el=true" {
			t.Fatal("azimuth-only build must never select the elevation motor")
		}
	}
}
