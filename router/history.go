package router

import (
	"sync"

	"github.com/hupe1980/schedmesh/core"
)

// DefaultHistoryCapacity bounds the audit ring when no override is given.
const DefaultHistoryCapacity = 1000

// History is a fixed-capacity FIFO ring of routed messages guarded by a
// single mutex. It is observational only: appending is not transactionally
// coupled to delivery.
type History struct {
	mu   sync.Mutex
	buf  []core.Message
	next int
	full bool
}

// NewHistory creates a ring holding at most capacity messages. A
// non-positive capacity falls back to DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{buf: make([]core.Message, capacity)}
}

// Add appends a message, evicting the oldest entry once full.
func (h *History) Add(msg core.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf[h.next] = msg
	h.next = (h.next + 1) % len(h.buf)
	if h.next == 0 {
		h.full = true
	}
}

// Len reports the number of messages currently retained.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.full {
		return len(h.buf)
	}
	return h.next
}

// HistoryFilter narrows a Snapshot. Zero values match everything.
type HistoryFilter struct {
	// AgentID matches messages sent from or to the agent.
	AgentID string
	// Type matches messages of one type.
	Type core.MessageType
	// Limit caps the result to the most recent N matches (0 = no cap).
	Limit int
}

// Snapshot returns matching messages oldest-first.
func (h *History) Snapshot(filter HistoryFilter) []core.Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	var ordered []core.Message
	if h.full {
		ordered = append(ordered, h.buf[h.next:]...)
		ordered = append(ordered, h.buf[:h.next]...)
	} else {
		ordered = append(ordered, h.buf[:h.next]...)
	}

	var matched []core.Message
	for _, msg := range ordered {
		if filter.AgentID != "" && msg.From != filter.AgentID && msg.To != filter.AgentID {
			continue
		}
		if filter.Type != "" && msg.Type != filter.Type {
			continue
		}
		matched = append(matched, msg)
	}

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[len(matched)-filter.Limit:]
	}
	return matched
}
