package engine

import "time"

// Clock abstracts time so the timed busy-waits (debounce, relay
// settle, pulse rising-edge, endstop back-off) are deterministic under
// test.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }
