package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProtocolVersion identifies the envelope format carried by Message.
const ProtocolVersion = "1.0"

// Broadcast is the sentinel destination delivering a message to every active
// agent except the sender.
const Broadcast = "broadcast"

// MessageType categorizes agent-to-agent messages. The set is closed; the
// router dispatches on it via its handler table.
type MessageType string

const (
	// MessageTypeQuery asks an agent a natural-language question.
	MessageTypeQuery MessageType = "query"
	// MessageTypeResponse answers a previously routed message.
	MessageTypeResponse MessageType = "response"
	// MessageTypeBroadcast is a fan-out notification without a single target.
	MessageTypeBroadcast MessageType = "broadcast"
	// MessageTypeScheduleShare transfers schedule data between agents.
	MessageTypeScheduleShare MessageType = "schedule_share"
	// MessageTypeScheduleCompare requests a schedule comparison.
	MessageTypeScheduleCompare MessageType = "schedule_compare"
	// MessageTypeError reports a failure condition.
	MessageTypeError MessageType = "error"
	// MessageTypeHeartbeat signals liveness.
	MessageTypeHeartbeat MessageType = "heartbeat"
	// MessageTypeAck acknowledges receipt.
	MessageTypeAck MessageType = "acknowledgment"
)

// Priority orders messages by urgency.
type Priority int

const (
	// PriorityLow marks background traffic.
	PriorityLow Priority = iota + 1
	// PriorityNormal is the default.
	PriorityNormal
	// PriorityHigh marks traffic that should preempt normal work.
	PriorityHigh
	// PriorityUrgent marks traffic that must not wait.
	PriorityUrgent
)

// String returns the string representation of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	default:
		return "unknown"
	}
}

// Message is the typed envelope passed between agents. After creation it
// should be treated as immutable; a reply is a new Message derived via
// Respond so the CorrelationID groups the request/response pair. It captures:
//
//   - Identity and correlation (ID, CorrelationID)
//   - Routing (From, To — an agent id or the Broadcast sentinel)
//   - The opaque Payload interpreted by the receiving handler
//   - Priority, UTC timestamp and free-form metadata
type Message struct {
	ID            string         `json:"message_id"`
	CorrelationID string         `json:"correlation_id"`
	Type          MessageType    `json:"message_type"`
	From          string         `json:"from_agent"`
	To            string         `json:"to_agent"`
	Payload       map[string]any `json:"payload"`
	Priority      Priority       `json:"priority"`
	Timestamp     time.Time      `json:"timestamp"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// MessageOption customizes a Message at construction time.
type MessageOption func(*Message)

// WithPriority overrides the default Normal priority.
func WithPriority(p Priority) MessageOption {
	return func(m *Message) { m.Priority = p }
}

// WithCorrelationID groups the message with an existing exchange instead of
// starting a new one.
func WithCorrelationID(id string) MessageOption {
	return func(m *Message) { m.CorrelationID = id }
}

// WithMetadata attaches free-form metadata to the message.
func WithMetadata(md map[string]any) MessageOption {
	return func(m *Message) { m.Metadata = md }
}

// NewMessage creates a message envelope. The ID is always fresh; the
// CorrelationID defaults to the ID so a lone message forms its own exchange.
func NewMessage(msgType MessageType, from, to string, payload map[string]any, optFns ...MessageOption) Message {
	m := Message{
		ID:        NewID(),
		Type:      msgType,
		From:      from,
		To:        to,
		Payload:   payload,
		Priority:  PriorityNormal,
		Timestamp: time.Now().UTC(),
	}
	for _, fn := range optFns {
		fn(&m)
	}
	if m.CorrelationID == "" {
		m.CorrelationID = m.ID
	}
	return m
}

// NewQueryMessage is a convenience constructor for the common query envelope.
func NewQueryMessage(from, to, query string, optFns ...MessageOption) Message {
	return NewMessage(MessageTypeQuery, from, to, map[string]any{"query": query}, optFns...)
}

// Respond derives a reply addressed back to the sender. The reply is a new
// message carrying the original CorrelationID; the original is untouched.
func (m Message) Respond(msgType MessageType, payload map[string]any) Message {
	return NewMessage(msgType, m.To, m.From, payload,
		WithCorrelationID(m.CorrelationID),
		WithPriority(m.Priority),
		WithMetadata(map[string]any{"responding_to": m.ID}),
	)
}

// Validate checks the structural invariants of the envelope: From and To are
// non-empty, the ID is set, and Query/Response messages carry a payload.
func (m Message) Validate() error {
	if m.From == "" || m.To == "" {
		return fmt.Errorf("%w: from and to must be non-empty", ErrInvalidMessage)
	}
	if m.ID == "" {
		return fmt.Errorf("%w: missing message id", ErrInvalidMessage)
	}
	if len(m.Payload) == 0 && (m.Type == MessageTypeQuery || m.Type == MessageTypeResponse) {
		return fmt.Errorf("%w: %s messages require a payload", ErrInvalidMessage, m.Type)
	}
	return nil
}

// QueryText extracts the "query" payload field, if present.
func (m Message) QueryText() string {
	if s, ok := m.Payload["query"].(string); ok {
		return s
	}
	return ""
}

// NewID generates a new unique identifier for messages and documents.
func NewID() string { return uuid.NewString() }
