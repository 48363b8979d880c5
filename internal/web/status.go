package web

import (
	"sync"

	"github.com/cjeanneret/RotGo/internal/logic/engine"
)

// StatusRenderer is the web-side display collaborator: it remembers
// the latest snapshot for GET /status and pushes every refresh and
// transient message to the SSE stream. Refresh runs on the driver
// goroutine, Last on HTTP goroutines, hence the lock.
type StatusRenderer struct {
	b *StatusBroadcaster

	mu   sync.RWMutex
	last engine.Snapshot
	seen bool
}

// NewStatusRenderer wraps a broadcaster as a display renderer.
func NewStatusRenderer(b *StatusBroadcaster) *StatusRenderer {
	return &StatusRenderer{b: b}
}

func (r *StatusRenderer) Refresh(s engine.Snapshot) {
	r.mu.Lock()
	r.last = s
	r.seen = true
	r.mu.Unlock()
	r.b.BroadcastState(s)
}

func (r *StatusRenderer) Transient(msg string) {
	r.b.Broadcast("status", msg)
}

// Last returns the most recent snapshot, if any was rendered yet.
func (r *StatusRenderer) Last() (engine.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.seen
}
