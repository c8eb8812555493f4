package router

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/schedmesh/core"
	"github.com/hupe1980/schedmesh/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(agentIDs ...string) (*Router, *registry.Registry) {
	reg := registry.New()
	for _, id := range agentIDs {
		reg.Register(id, id, []string{"schedule_query"}, nil)
	}
	return New(reg), reg
}

func echoHandler(_ context.Context, msg core.Message) (core.Response, error) {
	return core.SuccessResponse(map[string]any{"echo": msg.QueryText(), "handled_by": msg.To}), nil
}

func TestRoute_InvalidMessage(t *testing.T) {
	r, _ := newTestRouter("agent1")

	tests := []struct {
		name string
		msg  core.Message
	}{
		{"missing from", core.Message{ID: "x", To: "agent1", Type: core.MessageTypeQuery, Payload: map[string]any{"query": "q"}}},
		{"missing to", core.Message{ID: "x", From: "orchestrator", Type: core.MessageTypeQuery, Payload: map[string]any{"query": "q"}}},
		{"empty query payload", core.NewMessage(core.MessageTypeQuery, "orchestrator", "agent1", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := r.Route(context.Background(), tt.msg)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, core.ErrInvalidMessage)
		})
	}

	// Invalid messages are rejected before history.
	assert.Equal(t, 0, r.HistoryLen())
}

func TestRoute_AgentNotFound(t *testing.T) {
	r, reg := newTestRouter("agent1")
	r.Handle(core.MessageTypeQuery, echoHandler)

	_, err := r.Route(context.Background(), core.NewQueryMessage("orchestrator", "ghost", "hello"))
	assert.ErrorIs(t, err, core.ErrAgentNotFound)

	// An unregistered agent is no longer routable either.
	reg.Unregister("agent1")
	_, err = r.Route(context.Background(), core.NewQueryMessage("orchestrator", "agent1", "hello"))
	assert.ErrorIs(t, err, core.ErrAgentNotFound)
}

func TestRoute_Unicast(t *testing.T) {
	r, _ := newTestRouter("agent1")
	r.Handle(core.MessageTypeQuery, echoHandler)

	resp, err := r.Route(context.Background(), core.NewQueryMessage("orchestrator", "agent1", "when am I free?"))
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "when am I free?", resp.Data["echo"])
}

func TestRoute_NoHandlerSilentlyDropped(t *testing.T) {
	r, _ := newTestRouter("agent1")

	resp, err := r.Route(context.Background(), core.NewMessage(core.MessageTypeHeartbeat, "agent1", "agent1", map[string]any{"ping": true}))
	assert.NoError(t, err)
	assert.Nil(t, resp)

	// Dropped messages still land in history.
	assert.Equal(t, 1, r.HistoryLen())
}

func TestRoute_HandlerErrorBecomesErrorResponse(t *testing.T) {
	r, _ := newTestRouter("agent1")
	r.Handle(core.MessageTypeQuery, func(_ context.Context, _ core.Message) (core.Response, error) {
		return core.Response{}, errors.New("backend down")
	})

	resp, err := r.Route(context.Background(), core.NewQueryMessage("orchestrator", "agent1", "q"))
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "backend down")
}

func TestRoute_BroadcastPartialFailure(t *testing.T) {
	r, _ := newTestRouter("agent1", "agent2", "agent3")
	r.Handle(core.MessageTypeQuery, func(_ context.Context, msg core.Message) (core.Response, error) {
		if msg.To == "agent2" {
			panic("boom")
		}
		return core.SuccessResponse(map[string]any{"answer": "ok from " + msg.To}), nil
	})

	resp, err := r.Route(context.Background(), core.NewQueryMessage("orchestrator", core.Broadcast, "anyone free?"))
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.True(t, resp.Success)

	responses, ok := resp.Data["responses"].(map[string]core.Response)
	require.True(t, ok)
	require.Len(t, responses, 3)
	assert.Equal(t, 3, resp.Data["recipients"])

	var failures, successes int
	for _, agentResp := range responses {
		if agentResp.Success {
			successes++
		} else {
			failures++
			assert.Contains(t, agentResp.Error, "boom")
		}
	}
	assert.Equal(t, 1, failures)
	assert.Equal(t, 2, successes)
}

func TestRoute_BroadcastExcludesSender(t *testing.T) {
	r, _ := newTestRouter("agent1", "agent2")
	r.Handle(core.MessageTypeQuery, echoHandler)

	resp, err := r.Route(context.Background(), core.NewQueryMessage("agent1", core.Broadcast, "ping"))
	require.NoError(t, err)

	responses := resp.Data["responses"].(map[string]core.Response)
	assert.Len(t, responses, 1)
	_, hasSelf := responses["agent1"]
	assert.False(t, hasSelf)
}

func TestRoute_BroadcastStampsRecipient(t *testing.T) {
	r, _ := newTestRouter("agent1", "agent2")
	seen := map[string]bool{}
	r.Handle(core.MessageTypeQuery, func(_ context.Context, msg core.Message) (core.Response, error) {
		seen[msg.To] = true
		return core.SuccessResponse(map[string]any{}), nil
	})

	_, err := r.Route(context.Background(), core.NewQueryMessage("orchestrator", core.Broadcast, "ping"))
	require.NoError(t, err)
	assert.True(t, seen["agent1"])
	assert.True(t, seen["agent2"])
}

func TestRoute_LastHandlerWins(t *testing.T) {
	r, _ := newTestRouter("agent1")
	r.Handle(core.MessageTypeQuery, func(_ context.Context, _ core.Message) (core.Response, error) {
		return core.SuccessResponse(map[string]any{"version": 1}), nil
	})
	r.Handle(core.MessageTypeQuery, func(_ context.Context, _ core.Message) (core.Response, error) {
		return core.SuccessResponse(map[string]any{"version": 2}), nil
	})

	resp, err := r.Route(context.Background(), core.NewQueryMessage("orchestrator", "agent1", "q"))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Data["version"])
}

func TestHistory_Eviction(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Add(core.NewQueryMessage("a", "b", fmt.Sprintf("q%d", i)))
	}

	assert.Equal(t, 3, h.Len())
	snap := h.Snapshot(HistoryFilter{})
	require.Len(t, snap, 3)
	// Oldest first, entries q0 and q1 evicted.
	assert.Equal(t, "q2", snap[0].QueryText())
	assert.Equal(t, "q4", snap[2].QueryText())
}

func TestHistory_Filters(t *testing.T) {
	h := NewHistory(10)
	h.Add(core.NewQueryMessage("orchestrator", "agent1", "q1"))
	h.Add(core.NewQueryMessage("orchestrator", "agent2", "q2"))
	h.Add(core.NewMessage(core.MessageTypeHeartbeat, "agent1", "orchestrator", map[string]any{"ping": true}))

	byAgent := h.Snapshot(HistoryFilter{AgentID: "agent1"})
	assert.Len(t, byAgent, 2)

	byType := h.Snapshot(HistoryFilter{Type: core.MessageTypeQuery})
	assert.Len(t, byType, 2)

	limited := h.Snapshot(HistoryFilter{Limit: 1})
	require.Len(t, limited, 1)
	assert.Equal(t, core.MessageTypeHeartbeat, limited[0].Type)
}

func TestRouter_HistoryRecordsAllOutcomes(t *testing.T) {
	r, _ := newTestRouter("agent1")
	r.Handle(core.MessageTypeQuery, echoHandler)

	_, _ = r.Route(context.Background(), core.NewQueryMessage("orchestrator", "agent1", "ok"))
	_, _ = r.Route(context.Background(), core.NewQueryMessage("orchestrator", "ghost", "not found"))
	_, _ = r.Route(context.Background(), core.NewQueryMessage("orchestrator", core.Broadcast, "all"))

	assert.Equal(t, 3, r.HistoryLen())
}

func TestRouter_ConcurrentHandleAndRoute(t *testing.T) {
	r, _ := newTestRouter("agent1")
	r.Handle(core.MessageTypeQuery, echoHandler)

	const workers = 8
	const iterations = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				r.Handle(core.MessageTypeHeartbeat, func(_ context.Context, _ core.Message) (core.Response, error) {
					return core.SuccessResponse(nil), nil
				})
				resp, err := r.Route(context.Background(), core.NewQueryMessage("orchestrator", "agent1", "ping"))
				assert.NoError(t, err)
				assert.NotNil(t, resp)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*iterations, r.HistoryLen())
}
