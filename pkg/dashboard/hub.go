// Package dashboard serves a live monitoring UI over HTTP. A Hub fans
// incoming pipeline events out to WebSocket clients, and the server exposes
// the dashboard page plus a small stats API.
package dashboard

import (
	"log"
	"sync"
	"time"

	"github.com/espirado/log-insights/pkg/analyzer"
	"github.com/espirado/log-insights/pkg/parser"
)

const subscriberBuffer = 1024

// Event is one dashboard update, either a coalesced log entry or a
// completed chunk analysis.
type Event struct {
	Type      string             `json:"type"` // "entry" or "analysis"
	Timestamp string             `json:"timestamp,omitempty"`
	Source    string             `json:"source,omitempty"`
	Level     string             `json:"level,omitempty"`
	Message   string             `json:"message,omitempty"`
	Analysis  *analyzer.Analysis `json:"analysis,omitempty"`
}

// EntryEvent builds an entry event from a coalesced log entry.
func EntryEvent(e *parser.LogEntry) Event {
	ev := Event{
		Type:    "entry",
		Source:  e.Source(),
		Level:   string(e.Level),
		Message: e.Body(),
	}
	if e.HasTimestamp {
		ev.Timestamp = e.Timestamp.Format(time.RFC3339)
	}
	return ev
}

// AnalysisEvent builds an analysis event from a completed chunk analysis.
func AnalysisEvent(a *analyzer.Analysis) Event {
	return Event{
		Type:      "analysis",
		Timestamp: a.Timestamp,
		Analysis:  a,
	}
}

// Stats is a snapshot of what the hub has seen since start.
type Stats struct {
	Uptime      string           `json:"uptime"`
	Entries     int64            `json:"entries"`
	Analyses    int64            `json:"analyses"`
	Levels      map[string]int64 `json:"levels"`
	Dropped     int64            `json:"dropped"`
	Subscribers int              `json:"subscribers"`
}

// Hub broadcasts events to all subscribed WebSocket clients and keeps
// running counters for the stats API.
type Hub struct {
	mu          sync.Mutex
	subscribers []chan Event
	started     time.Time
	entries     int64
	analyses    int64
	levels      map[string]int64
	dropped     int64
	closed      bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		started: time.Now(),
		levels:  make(map[string]int64),
	}
}

// Subscribe returns a buffered channel that receives every published event.
// The channel is closed when the hub shuts down.
func (h *Hub) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.subscribers = append(h.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber channel and closes it, so disconnected
// clients stop accumulating drops. Unknown channels are ignored.
func (h *Hub) Unsubscribe(ch <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for i, sub := range h.subscribers {
		if sub == ch {
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Publish sends an event to all subscribers. Slow subscribers with full
// buffers drop the event rather than blocking the pipeline.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	switch ev.Type {
	case "entry":
		h.entries++
		if ev.Level != "" {
			h.levels[ev.Level]++
		}
	case "analysis":
		h.analyses++
	}

	for _, ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			h.dropped++
			log.Printf("loginsight: dashboard dropped event for slow client (total: %d)", h.dropped)
		}
	}
}

// Stats returns a snapshot of the hub counters.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	levels := make(map[string]int64, len(h.levels))
	for k, v := range h.levels {
		levels[k] = v
	}
	return Stats{
		Uptime:      time.Since(h.started).Round(time.Second).String(),
		Entries:     h.entries,
		Analyses:    h.analyses,
		Levels:      levels,
		Dropped:     h.dropped,
		Subscribers: len(h.subscribers),
	}
}

// Close shuts the hub down and closes all subscriber channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = nil
}
