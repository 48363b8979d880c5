package proto

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/cjeanneret/RotGo/internal/logic/engine"
)

// fakeRotator records protocol-driven calls.
type fakeRotator struct {
	power     bool
	elevation bool
	az, el    int

	calls []string
}

func (r *fakeRotator) PowerPresent() bool     { return r.power }
func (r *fakeRotator) ElevationEnabled() bool { return r.elevation }

func (r *fakeRotator) AzimuthState() (int, int)   { return r.az, r.az }
func (r *fakeRotator) ElevationState() (int, int) { return r.el, r.el }

func (r *fakeRotator) SetAzimuthTarget(deg int) bool {
	r.calls = append(r.calls, fmt.Sprintf("az=%d", deg))
	return true
}

func (r *fakeRotator) SetElevationTarget(deg int) bool {
	r.calls = append(r.calls, fmt.Sprintf("el=%d", deg))
	return true
}

func (r *fakeRotator) SetTargets(az, el int) bool {
	r.calls = append(r.calls, fmt.Sprintf("both=%d,%d", az, el))
	return true
}

func (r *fakeRotator) Park() {
	r.calls = append(r.calls, "park")
}

func (r *fakeRotator) ForceSync(az, el int) {
	r.calls = append(r.calls, fmt.Sprintf("sync=%d,%d", az, el))
}

func run(t *testing.T, rot *fakeRotator, line string) string {
	t.Helper()
	var out bytes.Buffer
	NewHandler(&out).Execute(line, rot)
	return out.String()
}

func TestExecute_AzimuthQuery(t *testing.T) {
	rot := &fakeRotator{power: true, az: 45}
	if got := run(t, rot, "C"); got != "AZ=045\r" {
		t.Errorf("C reply = %q, want %q", got, "AZ=045\r")
	}
}

func TestExecute_CombinedQuery(t *testing.T) {
	rot := &fakeRotator{power: true, az: 45, el: 7}
	if got := run(t, rot, "C2"); got != "+0045+0007\r" {
		t.Errorf("C2 reply = %q, want %q", got, "+0045+0007\r")
	}
}

func TestExecute_LowercaseAccepted(t *testing.T) {
	rot := &fakeRotator{power: true, az: 45, el: 7}
	if got := run(t, rot, "c2"); got != "+0045+0007\r" {
		t.Errorf("c2 reply = %q, want %q", got, "+0045+0007\r")
	}
}

func TestExecute_MoveAzimuth(t *testing.T) {
	rot := &fakeRotator{power: true}
	run(t, rot, "M200")
	if len(rot.calls) != 1 || rot.calls[0] != "az=200" {
		t.Errorf("calls = %v, want [az=200]", rot.calls)
	}
}

func TestExecute_MoveBoth(t *testing.T) {
	rot := &fakeRotator{power: true, elevation: true}
	run(t, rot, "W400+0999")
	if len(rot.calls) != 1 || rot.calls[0] != "both=400,999" {
		t.Errorf("calls = %v, want [both=400,999]", rot.calls)
	}
}

func TestExecute_MoveElevation(t *testing.T) {
	rot := &fakeRotator{power: true, elevation: true}
	run(t, rot, "E045")
	if len(rot.calls) != 1 || rot.calls[0] != "el=45" {
		t.Errorf("calls = %v, want [el=45]", rot.calls)
	}
}

func TestExecute_ElevationDroppedOnAzimuthOnlyBuild(t *testing.T) {
	rot := &fakeRotator{power: true, elevation: false}
	run(t, rot, "E045")
	if len(rot.calls) != 0 {
		t.Errorf("calls = %v, want none", rot.calls)
	}
}

func TestExecute_Park(t *testing.T) {
	rot := &fakeRotator{power: true}
	run(t, rot, "P")
	if len(rot.calls) != 1 || rot.calls[0] != "park" {
		t.Errorf("calls = %v, want [park]", rot.calls)
	}
}

func TestExecute_MovesDroppedWithoutPower(t *testing.T) {
	rot := &fakeRotator{power: false, elevation: true}
	for _, line := range []string{"M200", "W120+0030", "E045", "P"} {
		run(t, rot, line)
	}
	if len(rot.calls) != 0 {
		t.Errorf("calls = %v, want none without rotator supply", rot.calls)
	}
}

func TestExecute_ForceSyncIgnoresPowerSense(t *testing.T) {
	rot := &fakeRotator{power: false}
	run(t, rot, "Z180+0045")
	if len(rot.calls) != 1 || rot.calls[0] != "sync=180,45" {
		t.Errorf("calls = %v, want [sync=180,45]", rot.calls)
	}
}

func TestExecute_MalformedFieldsReadAsZero(t *testing.T) {
	rot := &fakeRotator{power: true}
	run(t, rot, "MXYZ")
	run(t, rot, "M2")
	run(t, rot, "M-12")
	want := []string{"az=0", "az=0", "az=0"}
	if len(rot.calls) != 3 {
		t.Fatalf("calls = %v, want %v", rot.calls, want)
	}
	for i, c := range rot.calls {
		if c != want[i] {
			t.Errorf("call %d = %q, want %q", i, c, want[i])
		}
	}
}

func TestExecute_CWithTrailingGarbageIgnored(t *testing.T) {
	rot := &fakeRotator{power: true, az: 45}
	if got := run(t, rot, "C9"); got != "" {
		t.Errorf("C9 replied %q, want the line ignored", got)
	}
}

func TestExecute_UnknownAndEmptyIgnored(t *testing.T) {
	rot := &fakeRotator{power: true}
	if got := run(t, rot, "Q99"); got != "" {
		t.Errorf("unknown command replied %q, want nothing", got)
	}
	if got := run(t, rot, "   "); got != "" {
		t.Errorf("blank line replied %q, want nothing", got)
	}
	if len(rot.calls) != 0 {
		t.Errorf("calls = %v, want none", rot.calls)
	}
}

// fakePort is a serial port stand-in: scripted input, captured output.
type fakePort struct {
	in  *bytes.Reader
	out bytes.Buffer
}

func (p *fakePort) Read(b []byte) (int, error)  { return p.in.Read(b) }
func (p *fakePort) Write(b []byte) (int, error) { return p.out.Write(b) }

type stubInputs struct{}

func (stubInputs) IndexHigh(bool) bool   { return true }
func (stubInputs) PowerPresent() bool    { return true }
func (stubInputs) RebootRequested() bool { return false }

func TestServe_FramesAndQueuesCommands(t *testing.T) {
	eng := engine.New(engine.Config{
		ElevationEnabled: true,
		AzimuthMax:       360,
		ElevationMax:     90,
	}, engine.Deps{Inputs: stubInputs{}})
	eng.Seed(45, 7)

	port := &fakePort{in: bytes.NewReader([]byte("C\rW120+0030\nC2\r"))}
	requests := make(chan engine.Request, 16)

	if err := Serve(context.Background(), port, requests); err != nil {
		t.Fatalf("serve: %v", err)
	}
	close(requests)
	for req := range requests {
		req(eng)
	}

	if got, want := port.out.String(), "AZ=045\r+0045+0007\r"; got != want {
		t.Errorf("replies = %q, want %q", got, want)
	}
	if _, tgt := eng.AzimuthState(); tgt != 120 {
		t.Errorf("azimuth target = %d, want 120", tgt)
	}
	if _, tgt := eng.ElevationState(); tgt != 30 {
		t.Errorf("elevation target = %d, want 30", tgt)
	}
}

func TestSplitCommands(t *testing.T) {
	adv, tok, err := splitCommands([]byte("M200\rC2"), false)
	if err != nil || adv != 5 || string(tok) != "M200" {
		t.Errorf("split = %d %q %v, want 5 M200 nil", adv, tok, err)
	}

	adv, tok, _ = splitCommands([]byte("C2"), false)
	if adv != 0 || tok != nil {
		t.Errorf("incomplete command must request more data, got %d %q", adv, tok)
	}

	adv, tok, _ = splitCommands([]byte("C2"), true)
	if adv != 2 || string(tok) != "C2" {
		t.Errorf("EOF must flush the tail, got %d %q", adv, tok)
	}
}
