package agent

import (
	"context"
	"testing"

	"github.com/hupe1980/schedmesh/knowledge"
	"github.com/hupe1980/schedmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleAgent_QueryHappyPath(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewInMemoryStore()
	_, err := store.Store(ctx, "Monday: Gym 07:00-08:00", nil)
	require.NoError(t, err)

	mock := model.NewMock()
	mock.AddContainsResponse("gym", "You have gym on Monday from 07:00 to 08:00.")

	a := New("agent1", mock, store, func(o *Options) { o.DisplayName = "User 1" })
	answer := a.Query(ctx, "When is my gym session?")

	assert.Equal(t, "You have gym on Monday from 07:00 to 08:00.", answer.Text)
	assert.False(t, answer.Degraded)
	require.Len(t, answer.Documents, 1)

	// The prompt carries the retrieved context and the owner's name.
	require.Len(t, mock.Prompts(), 1)
	assert.Contains(t, mock.Prompts()[0], "Monday: Gym 07:00-08:00")
	assert.Contains(t, mock.Prompts()[0], "User 1")
}

func TestScheduleAgent_QueryStripsMarkdown(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewInMemoryStore()
	_, _ = store.Store(ctx, "Standup 09:30", nil)

	mock := model.NewMock()
	mock.AddContainsResponse("standup", "**Standup** is at:\n- 09:30 daily")

	a := New("agent1", mock, store)
	answer := a.Query(ctx, "when is standup")

	assert.NotContains(t, answer.Text, "**")
	assert.NotContains(t, answer.Text, "- ")
	assert.Contains(t, answer.Text, "Standup is at:")
}

func TestScheduleAgent_GeneratorFailureFallsBackToDocuments(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewInMemoryStore()
	_, _ = store.Store(ctx, "Focus 11:00-13:00", nil)
	_, _ = store.Store(ctx, "Evening gaming 19:00-21:00", nil)

	mock := model.NewMock()
	mock.FailAlways(model.ErrUnavailable)

	a := New("agent2", mock, store, func(o *Options) { o.DisplayName = "User 2" })
	answer := a.Query(ctx, "When is User 2 free in the evening?")

	assert.True(t, answer.Degraded)
	assert.Contains(t, answer.Text, "Based on User 2's schedule:")
	assert.Contains(t, answer.Text, "Evening gaming 19:00-21:00")
	assert.Contains(t, answer.Text, "Free time would be between these activities.")
	assert.NotEmpty(t, answer.Documents)
}

func TestScheduleAgent_GeneratorFailureNoDocuments(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewInMemoryStore()

	mock := model.NewMock()
	mock.FailAlways(model.ErrRateLimited)

	a := New("agent1", mock, store)
	answer := a.Query(ctx, "what about yoga")

	assert.True(t, answer.Degraded)
	assert.NotEmpty(t, answer.Text)
	assert.Contains(t, answer.Text, "couldn't find any relevant schedule information")
	assert.Empty(t, answer.Documents)
}

func TestScheduleAgent_EmptyCompletionDegrades(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewInMemoryStore()
	_, _ = store.Store(ctx, "Lunch 12:00-12:30", nil)

	mock := model.NewMock()
	mock.AddContainsResponse("lunch", "   \n  ")

	a := New("agent1", mock, store)
	answer := a.Query(ctx, "when is lunch time")

	assert.True(t, answer.Degraded)
	assert.Contains(t, answer.Text, "Lunch 12:00-12:30")
}

func TestScheduleAgent_StoreScheduleStampsTimestamp(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewInMemoryStore()
	a := New("agent1", model.NewMock(), store)

	id, err := a.StoreSchedule(ctx, "Dentist Friday 15:00", map[string]string{"category": "health"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	docs, err := a.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "health", docs[0].Metadata["category"])
	assert.NotEmpty(t, docs[0].Metadata["timestamp"])
}

func TestScheduleAgent_StoreScheduleKeepsCallerTimestamp(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewInMemoryStore()
	a := New("agent1", model.NewMock(), store)

	_, err := a.StoreSchedule(ctx, "Gym", map[string]string{"timestamp": "2026-01-01T00:00:00Z"})
	require.NoError(t, err)

	docs, _ := a.FetchAll(ctx)
	require.Len(t, docs, 1)
	assert.Equal(t, "2026-01-01T00:00:00Z", docs[0].Metadata["timestamp"])
}

func TestScheduleAgent_Delete(t *testing.T) {
	ctx := context.Background()
	store := knowledge.NewInMemoryStore()
	a := New("agent1", model.NewMock(), store)

	id, err := a.StoreSchedule(ctx, "to remove", nil)
	require.NoError(t, err)
	require.NoError(t, a.Delete(ctx, id))

	docs, _ := a.FetchAll(ctx)
	assert.Empty(t, docs)
	assert.Error(t, a.Delete(ctx, id))
}

func TestScheduleAgent_Capabilities(t *testing.T) {
	a := New("agent1", model.NewMock(), knowledge.NewInMemoryStore())
	caps := a.Capabilities()
	assert.Contains(t, caps, "schedule_query")

	caps[0] = "mutated"
	assert.Contains(t, a.Capabilities(), "schedule_query")
}
