package engine

// PollReversal stops a motor that is moving away from its (possibly
// just-changed) target. It never restarts anything: the next driver
// pass sees current ≠ target and re-invokes the arbiter with the
// correct direction.
func (e *Engine) PollReversal() {
	switch e.Motor.Dir {
	case DirCW:
		if e.Az.Current > e.Az.Target {
			e.Stop(StopReversal)
		}
	case DirCCW:
		if e.Az.Current < e.Az.Target {
			e.Stop(StopReversal)
		}
	case DirUp:
		if e.El.Current > e.El.Target {
			e.Stop(StopReversal)
		}
	case DirDown:
		if e.El.Current < e.El.Target {
			e.Stop(StopReversal)
		}
	}
}
