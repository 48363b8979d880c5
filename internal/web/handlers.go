package web

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/cjeanneret/RotGo/internal/logic/engine"
)

// TargetRequest is the POST /target body. Nil fields are left alone.
type TargetRequest struct {
	Azimuth   *int `json:"azimuth"`
	Elevation *int `json:"elevation"`
}

// Handlers holds dependencies for HTTP handlers. Target mutations are
// queued onto the driver loop through the requests channel; nothing
// here touches engine state directly.
type Handlers struct {
	Broadcaster *StatusBroadcaster
	Status      *StatusRenderer
	requests    chan<- engine.Request
	staticFS    fs.FS
}

// NewHandlers creates handlers with the given dependencies.
func NewHandlers(b *StatusBroadcaster, status *StatusRenderer, requests chan<- engine.Request, staticFS fs.FS) *Handlers {
	return &Handlers{
		Broadcaster: b,
		Status:      status,
		requests:    requests,
		staticFS:    staticFS,
	}
}

// HandleStatus returns the latest axis state snapshot as JSON.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.Status.Last()
	if !ok {
		http.Error(w, "no status yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// HandleTarget queues a remote target change. The same gates as the
// wire protocol apply on the driver loop: no supply, no effect; a held
// button out-ranks us.
func (h *Handlers) HandleTarget(w http.ResponseWriter, r *http.Request) {
	var req TargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Azimuth == nil && req.Elevation == nil {
		http.Error(w, "azimuth or elevation required", http.StatusBadRequest)
		return
	}

	if !h.enqueue(func(e *engine.Engine) {
		if !e.PowerPresent() {
			return
		}
		if req.Azimuth != nil {
			e.SetAzimuthTarget(*req.Azimuth)
		}
		if req.Elevation != nil {
			e.SetElevationTarget(*req.Elevation)
		}
	}) {
		http.Error(w, "controller busy", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandlePark queues a park request.
func (h *Handlers) HandlePark(w http.ResponseWriter, r *http.Request) {
	if !h.enqueue(func(e *engine.Engine) {
		if e.PowerPresent() {
			e.Park()
		}
	}) {
		http.Error(w, "controller busy", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandleStatusStream serves the SSE event stream.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	for {
		select {
		case <-r.Context().Done():
			return
		case payload, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

func (h *Handlers) enqueue(req engine.Request) bool {
	select {
	case h.requests <- req:
		return true
	default:
		return false
	}
}
