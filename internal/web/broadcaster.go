package web

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/cjeanneret/RotGo/internal/logic/engine"
)

// Event is a single SSE payload: either a log/status line or an axis
// state snapshot.
type Event struct {
	Time  string           `json:"t"`
	Kind  string           `json:"kind"` // "log", "status" or "state"
	Msg   string           `json:"msg,omitempty"`
	State *engine.Snapshot `json:"state,omitempty"`
}

// StatusBroadcaster distributes events to multiple SSE clients.
type StatusBroadcaster struct {
	mu      sync.RWMutex
	clients map[chan string]struct{}
}

// NewStatusBroadcaster creates a new broadcaster.
func NewStatusBroadcaster() *StatusBroadcaster {
	return &StatusBroadcaster{
		clients: make(map[chan string]struct{}),
	}
}

// Subscribe returns a channel that receives broadcast events and a
// cleanup function. The caller must call the cleanup when done (e.g.
// on client disconnect).
func (b *StatusBroadcaster) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 64)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()

	unsub := func() {
		b.mu.Lock()
		delete(b.clients, ch)
		b.mu.Unlock()
		close(ch)
	}
	return ch, unsub
}

// Broadcast sends a message event to all subscribed clients. Slow
// clients may miss events (non-blocking, buffered).
func (b *StatusBroadcaster) Broadcast(kind, msg string) {
	b.send(Event{Kind: kind, Msg: msg})
}

// BroadcastState sends an axis state snapshot to all clients.
func (b *StatusBroadcaster) BroadcastState(s engine.Snapshot) {
	b.send(Event{Kind: "state", State: &s})
}

func (b *StatusBroadcaster) send(evt Event) {
	evt.Time = time.Now().Format(time.RFC3339)
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	payload := string(data)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- payload:
		default:
			// channel full, skip
		}
	}
}

// BroadcastWriter wraps the broadcaster as an io.Writer so the debug
// log can be teed to SSE clients.
func BroadcastWriter(b *StatusBroadcaster) *broadcastWriter {
	return &broadcastWriter{b: b}
}

type broadcastWriter struct {
	b *StatusBroadcaster
}

func (w *broadcastWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	if msg != "" {
		w.b.Broadcast("log", msg)
	}
	return len(p), nil
}
