// Package schedmesh provides a high-level façade over the registry, router
// and orchestrator enabling rapid construction of multi-agent schedule
// coordination systems. Most applications interact with this package by:
//  1. Creating a Mesh via New() (optionally overriding the generator and logger)
//  2. Registering one or more schedule agents (RegisterAgent)
//  3. Asking questions through Answer, or computing overlap deterministically
//     through CommonFreeTime
//
// The façade delegates query handling to orchestrator.Orchestrator and
// message delivery to router.Router while keeping setup ergonomics concise.
// All defaults are safe for local development and testing; production
// deployments typically supply a real model provider and a structured logger.
package schedmesh

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/schedmesh/agent"
	"github.com/hupe1980/schedmesh/core"
	"github.com/hupe1980/schedmesh/interval"
	"github.com/hupe1980/schedmesh/logging"
	"github.com/hupe1980/schedmesh/model"
	"github.com/hupe1980/schedmesh/orchestrator"
	"github.com/hupe1980/schedmesh/registry"
	"github.com/hupe1980/schedmesh/router"
)

// Options configure the Mesh instance.
type Options struct {
	// Generator used by the orchestrator for routing, synthesis and general
	// questions. Defaults to the mock generator, which is only suitable for
	// tests and demos.
	Generator model.Generator

	// HistoryCapacity bounds the router's message audit ring.
	HistoryCapacity int

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Stats summarizes the state of the mesh.
type Stats struct {
	TotalAgents   int            `json:"total_agents"`
	ActiveAgents  int            `json:"active_agents"`
	Capabilities  map[string]int `json:"capabilities"`
	TotalMessages int            `json:"total_messages"`
}

// Mesh is the high-level façade aggregating registry, router, orchestrator
// and the registered schedule agents.
type Mesh struct {
	opts         Options
	registry     *registry.Registry
	router       *router.Router
	orchestrator *orchestrator.Orchestrator

	mu     sync.RWMutex
	agents map[string]*agent.ScheduleAgent
}

// New creates a new Mesh instance with optional overrides.
func New(optFns ...func(o *Options)) *Mesh {
	opts := Options{
		Generator:       model.NewMock(),
		HistoryCapacity: router.DefaultHistoryCapacity,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	reg := registry.New()
	rt := router.New(reg, func(o *router.Options) {
		o.HistoryCapacity = opts.HistoryCapacity
		o.Logger = opts.Logger
	})
	orch := orchestrator.New(rt, opts.Generator, func(o *orchestrator.Options) {
		o.Logger = opts.Logger
	})

	m := &Mesh{
		opts:         opts,
		registry:     reg,
		router:       rt,
		orchestrator: orch,
		agents:       make(map[string]*agent.ScheduleAgent),
	}

	rt.Handle(core.MessageTypeQuery, m.handleQuery)
	rt.Handle(core.MessageTypeBroadcast, m.handleBroadcast)
	rt.Handle(core.MessageTypeScheduleShare, m.handleScheduleShare)
	rt.Handle(core.MessageTypeScheduleCompare, m.handleScheduleCompare)

	return m
}

// RegisterAgent adds a schedule agent to the mesh: it joins the registry,
// becomes routable and becomes selectable by the orchestrator. Registering
// the same id again replaces the previous agent.
func (m *Mesh) RegisterAgent(a *agent.ScheduleAgent) {
	m.mu.Lock()
	m.agents[a.ID()] = a
	m.mu.Unlock()

	m.registry.Register(a.ID(), a.DisplayName(), a.Capabilities(), nil)
	m.orchestrator.AddSubject(a.ID(), a.DisplayName())
}

// UnregisterAgent marks an agent inactive and removes it from selection. The
// registry keeps the registration record for inspection.
func (m *Mesh) UnregisterAgent(agentID string) {
	m.mu.Lock()
	delete(m.agents, agentID)
	m.mu.Unlock()

	m.registry.Unregister(agentID)
	m.orchestrator.RemoveSubject(agentID)
}

// Agent returns a registered agent by id.
func (m *Mesh) Agent(agentID string) (*agent.ScheduleAgent, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.agents[agentID]
	return a, ok
}

// Answer routes a natural-language query through the orchestrator. The
// optional history replaces the conversation context for subject inference.
func (m *Mesh) Answer(ctx context.Context, query string, history ...string) (*orchestrator.Result, error) {
	return m.orchestrator.Answer(ctx, query, history)
}

// handleQuery multiplexes routed query messages onto the addressed agent.
func (m *Mesh) handleQuery(ctx context.Context, msg core.Message) (core.Response, error) {
	a, ok := m.Agent(msg.To)
	if !ok {
		return core.Response{}, fmt.Errorf("%w: %s", core.ErrAgentNotFound, msg.To)
	}

	answer := a.Query(ctx, msg.QueryText())
	return core.SuccessResponse(map[string]any{
		"answer":    answer.Text,
		"documents": answer.Documents,
		"degraded":  answer.Degraded,
	}), nil
}

// handleBroadcast acknowledges a fan-out notification on behalf of the
// addressed recipient.
func (m *Mesh) handleBroadcast(_ context.Context, msg core.Message) (core.Response, error) {
	if _, ok := m.Agent(msg.To); !ok {
		return core.Response{}, fmt.Errorf("%w: %s", core.ErrAgentNotFound, msg.To)
	}
	return core.SuccessResponse(map[string]any{"acknowledged_by": msg.To}), nil
}

// handleScheduleShare answers with every document the addressed agent holds,
// letting agents exchange schedules for comparison.
func (m *Mesh) handleScheduleShare(ctx context.Context, msg core.Message) (core.Response, error) {
	a, ok := m.Agent(msg.To)
	if !ok {
		return core.Response{}, fmt.Errorf("%w: %s", core.ErrAgentNotFound, msg.To)
	}

	docs, err := a.FetchAll(ctx)
	if err != nil {
		return core.Response{}, fmt.Errorf("fetch schedules: %w", err)
	}
	return core.SuccessResponse(map[string]any{
		"agent_id":  a.ID(),
		"documents": docs,
	}), nil
}

// handleScheduleCompare answers with the addressed agent's busy spans parsed
// from its documents, ready for interval arithmetic on the requester side.
func (m *Mesh) handleScheduleCompare(ctx context.Context, msg core.Message) (core.Response, error) {
	a, ok := m.Agent(msg.To)
	if !ok {
		return core.Response{}, fmt.Errorf("%w: %s", core.ErrAgentNotFound, msg.To)
	}

	docs, err := a.FetchAll(ctx)
	if err != nil {
		return core.Response{}, fmt.Errorf("fetch schedules: %w", err)
	}

	var busy []interval.Span
	for _, doc := range docs {
		busy = append(busy, interval.Parse(doc.Content)...)
	}
	return core.SuccessResponse(map[string]any{
		"agent_id": a.ID(),
		"busy":     interval.Merge(busy),
	}), nil
}

// CommonFreeTime computes when every active agent is free, using
// agent-to-agent schedule-compare messages and the interval engine. The
// result is deterministic: no generator is involved.
func (m *Mesh) CommonFreeTime(ctx context.Context) (string, []interval.Span, error) {
	active := m.registry.ListActive()
	if len(active) == 0 {
		return "", nil, fmt.Errorf("%w: no active agents", core.ErrNoUsableData)
	}

	var allBusy []interval.Span
	for _, agentID := range active {
		msg := core.NewMessage(core.MessageTypeScheduleCompare, orchestrator.ID, agentID, map[string]any{
			"request": "busy_spans",
		})
		resp, err := m.router.Route(ctx, msg)
		if err != nil {
			return "", nil, fmt.Errorf("compare with %s: %w", agentID, err)
		}
		if resp == nil || !resp.Success {
			continue
		}
		if busy, ok := resp.Data["busy"].([]interval.Span); ok {
			allBusy = append(allBusy, busy...)
		}
	}

	free := interval.Complement(interval.Merge(allBusy), interval.DayStart, interval.DayEnd)
	significant := interval.Significant(free)

	if len(significant) == 0 {
		return "No common free time available", free, nil
	}
	summary := fmt.Sprintf("Common free time: %s", interval.Describe(significant))
	return summary, free, nil
}

// Broadcast sends a notification to every active agent except the sender.
func (m *Mesh) Broadcast(ctx context.Context, from string, payload map[string]any) (*core.Response, error) {
	msg := core.NewMessage(core.MessageTypeBroadcast, from, core.Broadcast, payload)
	return m.router.Route(ctx, msg)
}

// History returns recently routed messages, optionally filtered.
func (m *Mesh) History(filter router.HistoryFilter) []core.Message {
	return m.router.History(filter)
}

// Stats reports agent counts, capability distribution and message totals.
func (m *Mesh) Stats() Stats {
	capabilities := make(map[string]int)
	active := 0
	all := m.registry.All()
	for _, reg := range all {
		if reg.Status == core.StatusActive {
			active++
			for _, cap := range reg.Capabilities {
				capabilities[cap]++
			}
		}
	}
	return Stats{
		TotalAgents:   len(all),
		ActiveAgents:  active,
		Capabilities:  capabilities,
		TotalMessages: m.router.HistoryLen(),
	}
}

// Seed stores initial schedule text on a registered agent, splitting on
// semicolons so each entry becomes its own document.
func (m *Mesh) Seed(ctx context.Context, agentID, schedules string) error {
	a, ok := m.Agent(agentID)
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrAgentNotFound, agentID)
	}
	for _, entry := range strings.Split(schedules, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if _, err := a.StoreSchedule(ctx, entry, map[string]string{
			"seeded_at": time.Now().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	return nil
}
