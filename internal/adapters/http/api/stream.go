package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

const (
	defaultStreamBuffer    = 16
	defaultHeartbeatPeriod = 25 * time.Second
)

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithStreamBuffer sets the per-subscriber notice buffer.
func WithStreamBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithHeartbeat sets how often idle streams receive a comment line.
func WithHeartbeat(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}

// Hub fans change notices out to connected dashboards. A subscriber whose
// buffer is full misses the notice; the next one still reaches it.
type Hub struct {
	mu        sync.Mutex
	subs      map[uint64]chan model.Notice
	nextID    uint64
	closed    bool
	buffer    int
	heartbeat time.Duration
}

// NewHub creates an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		subs:      make(map[uint64]chan model.Notice),
		buffer:    defaultStreamBuffer,
		heartbeat: defaultHeartbeatPeriod,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a listener. The returned cancel func is idempotent
// and closes the channel.
func (h *Hub) Subscribe() (<-chan model.Notice, func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, nil, ErrHubClosed
	}
	id := h.nextID
	h.nextID++
	ch := make(chan model.Notice, h.buffer)
	h.subs[id] = ch
	metrics.UpdateStreamSubscribers(len(h.subs))

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
				metrics.UpdateStreamSubscribers(len(h.subs))
			}
		})
	}
	return ch, cancel, nil
}

// Publish delivers n to every subscriber without blocking.
func (h *Hub) Publish(_ context.Context, n model.Notice) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	for _, ch := range h.subs {
		select {
		case ch <- n:
		default:
			metrics.RecordStreamDropped()
		}
	}
	return nil
}

// Subscribers returns the number of connected listeners.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close disconnects every subscriber. Later publishes fail.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
	metrics.UpdateStreamSubscribers(0)
}

// StreamHandler serves change notices as server-sent events.
type StreamHandler struct {
	hub *Hub
	log logger.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(hub *Hub) *StreamHandler {
	return &StreamHandler{hub: hub, log: logger.Named("stream")}
}

// HandleStream handles GET /api/stream.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	const op = "api.stream"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	rc := http.NewResponseController(w)
	notices, cancel, err := h.hub.Subscribe()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "stream_closed", wrap(op, err))
		return
	}
	defer cancel()

	// Streams outlive the server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		h.log.Warn(r.Context(), "stream aborted", logger.Error(wrapKind(op, ErrNoStreaming, err)))
		return
	}

	ticker := time.NewTicker(h.hub.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case n, ok := <-notices:
			if !ok {
				return
			}
			if err := writeEvent(w, n); err != nil {
				h.log.Debug(r.Context(), "stream write failed", logger.Error(err))
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, n model.Notice) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", n.Kind, data)
	return err
}
