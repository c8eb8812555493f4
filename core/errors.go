package core

import "errors"

// Sentinel errors forming the shared taxonomy. Callers should test with
// errors.Is since they are usually wrapped with context.
var (
	// ErrInvalidMessage marks a structurally malformed envelope, rejected
	// before dispatch.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrAgentNotFound marks a unicast to an agent the registry does not
	// list as active.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrNoUsableData marks an aggregation where every agent failed or
	// returned nothing. It is surfaced as a fixed "not found" answer, never
	// as an exception to the caller.
	ErrNoUsableData = errors.New("no usable data from any agent")
)
