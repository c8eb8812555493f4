// Package router delivers messages between agents. It supports unicast to a
// single active agent, broadcast to every active agent except the sender,
// and per-message-type handler dispatch. Every routed message is recorded in
// a bounded history ring for auditing.
//
// Failure isolation is the central property: a handler error (or panic)
// during broadcast produces a per-agent error entry and never aborts
// delivery to the remaining recipients.
package router

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/schedmesh/core"
	"github.com/hupe1980/schedmesh/logging"
	"github.com/hupe1980/schedmesh/registry"
)

// Handler processes one routed message. Handlers are registered per message
// type; a handler needing per-agent behavior multiplexes on the message's To
// field, which the router guarantees names the concrete recipient.
type Handler func(ctx context.Context, msg core.Message) (core.Response, error)

// Options configure the Router.
type Options struct {
	// HistoryCapacity bounds the audit ring. Defaults to DefaultHistoryCapacity.
	HistoryCapacity int
	// Logger used for delivery diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Router validates, records and dispatches messages. It holds at most one
// handler per message type; the last registration wins.
type Router struct {
	registry *registry.Registry
	mu       sync.RWMutex
	handlers map[core.MessageType]Handler
	history  *History
	logger   logging.Logger
}

// New constructs a router bound to a registry.
func New(reg *registry.Registry, optFns ...func(o *Options)) *Router {
	opts := Options{
		HistoryCapacity: DefaultHistoryCapacity,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Router{
		registry: reg,
		handlers: make(map[core.MessageType]Handler),
		history:  NewHistory(opts.HistoryCapacity),
		logger:   opts.Logger,
	}
}

// Handle registers the handler for a message type, replacing any previous
// one. Safe to call concurrently with Route.
func (r *Router) Handle(msgType core.MessageType, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[msgType] = h
}

func (r *Router) handler(msgType core.MessageType) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[msgType]
	return h, ok
}

// Route validates and delivers a message.
//
// Broadcast messages are delivered to every active agent except the sender;
// per-agent outcomes are collected into the returned response's Data under
// "responses" (agent id -> core.Response) alongside "recipients".
//
// Unicast messages to an unknown or inactive agent fail with
// core.ErrAgentNotFound. If no handler is registered for the message type
// the message is silently dropped and (nil, nil) is returned: unhandled
// types are not errors.
//
// Every message reaching validation success is appended to the history ring
// regardless of delivery outcome.
func (r *Router) Route(ctx context.Context, msg core.Message) (*core.Response, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	r.history.Add(msg)

	if msg.To == core.Broadcast {
		resp := r.broadcast(ctx, msg)
		return &resp, nil
	}

	if !r.registry.IsActive(msg.To) {
		return nil, fmt.Errorf("%w: %s", core.ErrAgentNotFound, msg.To)
	}

	handler, ok := r.handler(msg.Type)
	if !ok {
		r.logger.Debug("no handler registered, message dropped", "message_type", string(msg.Type))
		return nil, nil
	}

	resp := invoke(ctx, handler, msg)
	return &resp, nil
}

// broadcast fans the message out to all active agents except the sender. A
// failing recipient contributes an error entry; siblings are unaffected.
func (r *Router) broadcast(ctx context.Context, msg core.Message) core.Response {
	responses := make(map[string]core.Response)
	handler, hasHandler := r.handler(msg.Type)

	for _, agentID := range r.registry.ListActive() {
		if agentID == msg.From {
			continue
		}
		if !hasHandler {
			continue
		}
		// Stamp the concrete recipient so a multiplexing handler can route.
		delivery := msg
		delivery.To = agentID
		responses[agentID] = invoke(ctx, handler, delivery)
	}

	return core.SuccessResponse(map[string]any{
		"responses":  responses,
		"recipients": len(responses),
	})
}

// invoke runs a handler converting returned errors and panics into error
// responses so one agent's failure cannot take down the routing loop.
func invoke(ctx context.Context, h Handler, msg core.Message) (resp core.Response) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = core.ErrorResponse(fmt.Sprintf("handler panic: %v", rec))
		}
	}()

	resp, err := h(ctx, msg)
	if err != nil {
		return core.ErrorResponse(err.Error())
	}
	return resp
}

// History returns a filtered snapshot of recently routed messages.
func (r *Router) History(filter HistoryFilter) []core.Message {
	return r.history.Snapshot(filter)
}

// HistoryLen reports how many messages the ring currently holds.
func (r *Router) HistoryLen() int { return r.history.Len() }
