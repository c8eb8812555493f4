package core

import "time"

// Status reports whether a registered agent may receive traffic.
type Status string

const (
	// StatusActive marks an agent as routable.
	StatusActive Status = "active"
	// StatusInactive marks an unregistered agent. The record is kept so
	// message history stays attributable.
	StatusInactive Status = "inactive"
)

// Registration is the directory record for one agent. Records are soft
// state: unregistering flips Status to Inactive, nothing is deleted.
type Registration struct {
	AgentID      string         `json:"agent_id"`
	DisplayName  string         `json:"agent_name"`
	Capabilities []string       `json:"capabilities"`
	Status       Status         `json:"status"`
	RegisteredAt time.Time      `json:"registered_at"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// HasCapability reports whether the registration lists the capability.
func (r Registration) HasCapability(cap string) bool {
	for _, c := range r.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}
