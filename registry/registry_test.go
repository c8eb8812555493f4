package registry

import (
	"testing"

	"github.com/hupe1980/schedmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndList(t *testing.T) {
	r := New()
	r.Register("agent1", "Agent 1", []string{"schedule_query"}, nil)
	r.Register("agent2", "Agent 2", []string{"schedule_query", "schedule_compare"}, nil)

	assert.Equal(t, []string{"agent1", "agent2"}, r.ListActive())
	assert.True(t, r.IsActive("agent1"))

	reg, ok := r.Get("agent2")
	require.True(t, ok)
	assert.Equal(t, "Agent 2", reg.DisplayName)
	assert.Equal(t, core.StatusActive, reg.Status)
	assert.True(t, reg.HasCapability("schedule_compare"))
	assert.False(t, reg.HasCapability("cooking"))
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	r := New()
	r.Register("agent1", "Agent 1", []string{"a"}, nil)
	r.Register("agent1", "Agent One", []string{"b"}, nil)

	reg, ok := r.Get("agent1")
	require.True(t, ok)
	assert.Equal(t, "Agent One", reg.DisplayName)
	assert.Equal(t, []string{"b"}, reg.Capabilities)

	// Re-registration must not duplicate the order entry.
	assert.Equal(t, []string{"agent1"}, r.ListActive())
}

func TestRegistry_Unregister(t *testing.T) {
	r := New()
	r.Register("agent1", "Agent 1", []string{"schedule_query"}, nil)
	r.Register("agent2", "Agent 2", []string{"schedule_query"}, nil)

	r.Unregister("agent1")

	assert.Equal(t, []string{"agent2"}, r.ListActive())
	assert.False(t, r.IsActive("agent1"))
	assert.Empty(t, r.FindByCapability("schedule_query")[0:0], "index sanity")
	assert.Equal(t, []string{"agent2"}, r.FindByCapability("schedule_query"))

	// Record survives for history attribution.
	reg, ok := r.Get("agent1")
	require.True(t, ok)
	assert.Equal(t, core.StatusInactive, reg.Status)
}

func TestRegistry_UnregisterUnknownIsNoOp(t *testing.T) {
	r := New()
	r.Unregister("ghost")
	assert.Empty(t, r.ListActive())
}

func TestRegistry_FindByCapability(t *testing.T) {
	r := New()
	r.Register("agent1", "Agent 1", []string{"schedule_query"}, nil)
	r.Register("agent2", "Agent 2", []string{"schedule_query", "schedule_share"}, nil)
	r.Register("agent3", "Agent 3", []string{"schedule_share"}, nil)

	assert.Equal(t, []string{"agent1", "agent2"}, r.FindByCapability("schedule_query"))
	assert.Equal(t, []string{"agent2", "agent3"}, r.FindByCapability("schedule_share"))
	assert.Empty(t, r.FindByCapability("unknown"))
}

func TestRegistry_All(t *testing.T) {
	r := New()
	r.Register("agent1", "Agent 1", nil, map[string]any{"user": "user1"})
	r.Register("agent2", "Agent 2", nil, nil)
	r.Unregister("agent2")

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, core.StatusActive, all[0].Status)
	assert.Equal(t, core.StatusInactive, all[1].Status)
}
