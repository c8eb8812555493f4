// Package registry implements the agent directory. The contract (the
// Registration record and Status lifecycle) lives in the core package; this
// package supplies the process-local, mutex-guarded implementation used by
// the router and orchestrator.
//
// Records are soft state: unregistering flips an agent to Inactive and drops
// it from the capability index, but the record stays queryable by id so
// message history remains attributable.
package registry

import (
	"sync"
	"time"

	"github.com/hupe1980/schedmesh/core"
)

// Registry is a concurrency-safe directory of known agents and their
// capabilities. The zero value is not usable; construct with New.
type Registry struct {
	mu           sync.RWMutex
	agents       map[string]*core.Registration
	capabilities map[string][]string // agentID -> capabilities (active only)
	order        []string            // registration order of agent ids
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{
		agents:       make(map[string]*core.Registration),
		capabilities: make(map[string][]string),
	}
}

// Register inserts or overwrites an Active registration for the agent.
func (r *Registry) Register(agentID, displayName string, capabilities []string, metadata map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, known := r.agents[agentID]; !known {
		r.order = append(r.order, agentID)
	}
	caps := make([]string, len(capabilities))
	copy(caps, capabilities)
	r.agents[agentID] = &core.Registration{
		AgentID:      agentID,
		DisplayName:  displayName,
		Capabilities: caps,
		Status:       core.StatusActive,
		RegisteredAt: time.Now().UTC(),
		Metadata:     metadata,
	}
	r.capabilities[agentID] = caps
}

// Unregister marks the agent Inactive and removes it from the capability
// index. The registration record itself is retained.
func (r *Registry) Unregister(agentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reg, ok := r.agents[agentID]; ok {
		reg.Status = core.StatusInactive
		delete(r.capabilities, agentID)
	}
}

// Get returns a copy of the registration (active or inactive) or false if
// the agent was never registered.
func (r *Registry) Get(agentID string) (core.Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.agents[agentID]
	if !ok {
		return core.Registration{}, false
	}
	return *reg, true
}

// FindByCapability returns the ids of all Active agents whose capability set
// contains cap, in registration order.
func (r *Registry) FindByCapability(cap string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for _, id := range r.order {
		for _, c := range r.capabilities[id] {
			if c == cap {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids
}

// ListActive returns all Active agent ids in registration order.
func (r *Registry) ListActive() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for _, id := range r.order {
		if reg, ok := r.agents[id]; ok && reg.Status == core.StatusActive {
			ids = append(ids, id)
		}
	}
	return ids
}

// IsActive reports whether the agent is currently routable.
func (r *Registry) IsActive(agentID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.agents[agentID]
	return ok && reg.Status == core.StatusActive
}

// All returns copies of every registration, active and inactive, in
// registration order.
func (r *Registry) All() []core.Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	regs := make([]core.Registration, 0, len(r.order))
	for _, id := range r.order {
		if reg, ok := r.agents[id]; ok {
			regs = append(regs, *reg)
		}
	}
	return regs
}
