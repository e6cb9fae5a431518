package service

import (
	"context"
	"testing"
	"time"

	"aion/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnsureCreatesAgentOnce(t *testing.T) {
	store := &stubAgentStore{}
	svc := NewAgentService(store, &stubConversationStore{}, zap.NewNop())
	spec := BudgetAgentSpec(testAgentsConfig())

	first, err := svc.Ensure(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, "budget_agent", first.Name)
	assert.Equal(t, "GigaChat-2-Max", first.Model)

	second, err := svc.Ensure(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.agents, 1)
	assert.Zero(t, store.updates, "unchanged spec must not trigger an update")
}

func TestEnsurePatchesDriftedConfig(t *testing.T) {
	store := &stubAgentStore{}
	svc := NewAgentService(store, &stubConversationStore{}, zap.NewNop())

	cfg := testAgentsConfig()
	first, err := svc.Ensure(context.Background(), BudgetAgentSpec(cfg))
	require.NoError(t, err)

	cfg.BudgetModel = "GigaChat-3-Max"
	patched, err := svc.Ensure(context.Background(), BudgetAgentSpec(cfg))
	require.NoError(t, err)

	assert.Equal(t, first.ID, patched.ID)
	assert.Equal(t, "GigaChat-3-Max", patched.Model)
	assert.Equal(t, 1, store.updates)
}

func TestHistoryFlattensTurnsInOrder(t *testing.T) {
	turns := &stubConversationStore{}
	svc := NewAgentService(&stubAgentStore{}, turns, zap.NewNop())

	agentID := uuid.New()
	userID := uuid.New()

	require.NoError(t, svc.AppendTurn(context.Background(), agentID, userID, models.RoleUser, "hello"))
	require.NoError(t, svc.AppendTurn(context.Background(), agentID, userID, models.RoleModel, "hi there"))
	require.NoError(t, svc.AppendTurn(context.Background(), agentID, uuid.New(), models.RoleUser, "other user"))

	history, err := svc.History(context.Background(), agentID, userID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, "hello", history[0].Text)
	assert.Equal(t, models.RoleModel, history[1].Role)
	assert.Equal(t, "hi there", history[1].Text)
}

func TestHistoryKeepsAppendOrderOnEqualTimestamps(t *testing.T) {
	turns := &stubConversationStore{}
	svc := NewAgentService(&stubAgentStore{}, turns, zap.NewNop())

	agentID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	// Two turns sharing one timestamp must replay in the order they were
	// appended, not in id order.
	first := &models.ConversationTurn{
		ID:        uuid.MustParse("ffffffff-ffff-4fff-8fff-ffffffffffff"),
		AgentID:   agentID,
		UserID:    userID,
		Role:      models.RoleUser,
		Content:   models.NewTurnContent("question"),
		CreatedAt: now,
	}
	second := &models.ConversationTurn{
		ID:        uuid.MustParse("00000000-0000-4000-8000-000000000000"),
		AgentID:   agentID,
		UserID:    userID,
		Role:      models.RoleModel,
		Content:   models.NewTurnContent("answer"),
		CreatedAt: now,
	}
	require.NoError(t, turns.Append(context.Background(), first))
	require.NoError(t, turns.Append(context.Background(), second))

	history, err := svc.History(context.Background(), agentID, userID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "question", history[0].Text)
	assert.Equal(t, "answer", history[1].Text)
}
