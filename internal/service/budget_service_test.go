package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"aion/internal/dto"
	"aion/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBudgetServiceForTest(gateway Gateway, budgets *stubBudgetStore, users *stubUserStore) (*BudgetService, *stubConversationStore) {
	logger := zap.NewNop()
	turns := &stubConversationStore{}
	agents := NewAgentService(&stubAgentStore{}, turns, logger)
	svc := NewBudgetService(gateway, agents, budgets, users, NewBudgetLocks(), testAgentsConfig(), logger)
	return svc, turns
}

func seedBudget(store *stubBudgetStore, userID uuid.UUID, title string, allocated, spent int64) uuid.UUID {
	id := uuid.New()
	now := time.Now()
	store.budgets = append(store.budgets, models.Budget{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Allocated: decimal.NewFromInt(allocated),
		Spent:     decimal.NewFromInt(spent),
		CreatedAt: now,
		UpdatedAt: now,
	})
	return id
}

func TestGenerateMergesWithoutDeletingUnmentioned(t *testing.T) {
	userID := uuid.New()
	budgets := &stubBudgetStore{}
	seedBudget(budgets, userID, "Groceries", 300, 50)
	seedBudget(budgets, userID, "Transport", 100, 10)

	gateway := &stubGateway{responses: []string{`{
		"budgets": [
			{"title": "Groceries", "allocated_amount": 400, "spent_amount": 50, "description": "more food"},
			{"title": "Savings", "allocated_amount": 200, "spent_amount": 0, "description": "new"}
		],
		"message": "Here is your plan."
	}`}}

	svc, _ := newBudgetServiceForTest(gateway, budgets, &stubUserStore{})
	result := svc.Generate(context.Background(), userID, "plan my month")

	require.Equal(t, dto.ResultSuccess, result.Type)
	data, ok := result.Data.(*dto.BudgetGenerationData)
	require.True(t, ok)
	assert.Equal(t, "Here is your plan.", data.Message)
	assert.Len(t, data.Budgets, 2)

	// Mentioned rows are updated or inserted.
	groceries := budgets.byTitle("Groceries")
	require.NotNil(t, groceries)
	assert.True(t, groceries.Allocated.Equal(decimal.NewFromInt(400)))

	savings := budgets.byTitle("Savings")
	require.NotNil(t, savings)
	assert.True(t, savings.Allocated.Equal(decimal.NewFromInt(200)))

	// Unmentioned rows survive untouched.
	transport := budgets.byTitle("Transport")
	require.NotNil(t, transport)
	assert.True(t, transport.Allocated.Equal(decimal.NewFromInt(100)))
	assert.Len(t, budgets.budgets, 3)
}

func TestGenerateSkipsInvalidModelItems(t *testing.T) {
	userID := uuid.New()
	budgets := &stubBudgetStore{}

	gateway := &stubGateway{responses: []string{`{
		"budgets": [
			{"title": "", "allocated_amount": 100, "spent_amount": 0},
			{"title": "Negative", "allocated_amount": -5, "spent_amount": 0},
			{"title": "Valid", "allocated_amount": 100, "spent_amount": 0}
		],
		"message": "done"
	}`}}

	svc, _ := newBudgetServiceForTest(gateway, budgets, &stubUserStore{})
	result := svc.Generate(context.Background(), userID, "plan")

	require.Equal(t, dto.ResultSuccess, result.Type)
	assert.Len(t, budgets.budgets, 1)
	assert.NotNil(t, budgets.byTitle("Valid"))
}

func TestGenerateInjectsProfileOnFirstContact(t *testing.T) {
	userID := uuid.New()
	users := &stubUserStore{users: []models.User{{
		ID:        userID,
		Username:  "alice",
		Email:     "alice@example.com",
		CreatedAt: time.Now(),
	}}}
	budgets := &stubBudgetStore{}
	gateway := &stubGateway{responses: []string{`{"budgets": [], "message": "hello"}`}}

	svc, _ := newBudgetServiceForTest(gateway, budgets, users)
	svc.Generate(context.Background(), userID, "plan my month")

	req := gateway.lastRequest()
	require.NotNil(t, req)
	require.NotEmpty(t, req.Messages)
	first := req.Messages[0].Text
	assert.Contains(t, first, "USER FINANCIAL PROFILE:")
	assert.Contains(t, first, "alice")
	assert.Contains(t, first, "TASK: plan my month")
}

func TestGenerateProfileFallbackWhenUserMissing(t *testing.T) {
	userID := uuid.New()
	gateway := &stubGateway{responses: []string{`{"budgets": [], "message": "ok"}`}}

	svc, _ := newBudgetServiceForTest(gateway, &stubBudgetStore{}, &stubUserStore{})
	svc.Generate(context.Background(), userID, "plan")

	req := gateway.lastRequest()
	require.NotNil(t, req)
	assert.Contains(t, req.Messages[0].Text, "User profile not found or incomplete.")
}

func TestGenerateNoProfileWhenHistoryExists(t *testing.T) {
	userID := uuid.New()
	gateway := &stubGateway{responses: []string{
		`{"budgets": [], "message": "first"}`,
		`{"budgets": [], "message": "second"}`,
	}}

	svc, _ := newBudgetServiceForTest(gateway, &stubBudgetStore{}, &stubUserStore{})
	svc.Generate(context.Background(), userID, "first request")
	svc.Generate(context.Background(), userID, "second request")

	req := gateway.lastRequest()
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "second request", req.Messages[2].Text)
	assert.NotContains(t, req.Messages[2].Text, "USER FINANCIAL PROFILE:")
}

func TestGenerateDefaultPrompt(t *testing.T) {
	userID := uuid.New()
	gateway := &stubGateway{responses: []string{`{"budgets": [], "message": "ok"}`}}

	svc, _ := newBudgetServiceForTest(gateway, &stubBudgetStore{}, &stubUserStore{})
	svc.Generate(context.Background(), userID, "")

	req := gateway.lastRequest()
	assert.Contains(t, req.Messages[0].Text, "Generate budget based on available info.")
}

func TestGenerateGatewayFailureTouchesNoBudgets(t *testing.T) {
	userID := uuid.New()
	budgets := &stubBudgetStore{}
	seedBudget(budgets, userID, "Groceries", 300, 50)
	gateway := &stubGateway{err: errors.New("model unavailable")}

	svc, _ := newBudgetServiceForTest(gateway, budgets, &stubUserStore{})
	result := svc.Generate(context.Background(), userID, "plan")

	assert.Equal(t, dto.ResultError, result.Type)
	assert.Zero(t, budgets.creates)
	assert.Zero(t, budgets.updates)
}

func TestGenerateUnparseableOutputTouchesNoBudgets(t *testing.T) {
	userID := uuid.New()
	budgets := &stubBudgetStore{}
	gateway := &stubGateway{responses: []string{"sorry, I cannot do that"}}

	svc, _ := newBudgetServiceForTest(gateway, budgets, &stubUserStore{})
	result := svc.Generate(context.Background(), userID, "plan")

	assert.Equal(t, dto.ResultError, result.Type)
	assert.Zero(t, budgets.creates)
	assert.Zero(t, budgets.updates)
}

func TestGenerateRecordsConversationTurns(t *testing.T) {
	userID := uuid.New()
	gateway := &stubGateway{responses: []string{`{"budgets": [], "message": "ok"}`}}

	svc, turns := newBudgetServiceForTest(gateway, &stubBudgetStore{}, &stubUserStore{})
	svc.Generate(context.Background(), userID, "plan")

	require.Len(t, turns.turns, 2)
	assert.Equal(t, models.RoleUser, turns.turns[0].Role)
	assert.Equal(t, models.RoleModel, turns.turns[1].Role)
}

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestAllocationUpdateRunsRebalanceFlow(t *testing.T) {
	userID := uuid.New()
	budgets := &stubBudgetStore{}
	id := seedBudget(budgets, userID, "Groceries", 300, 50)
	seedBudget(budgets, userID, "Transport", 100, 10)

	gateway := &stubGateway{responses: []string{`{"budgets": [], "message": "rebalanced"}`}}
	svc, _ := newBudgetServiceForTest(gateway, budgets, &stubUserStore{})

	result, err := svc.ApplyUpdate(context.Background(), userID, id, &dto.UpdateBudgetRequest{Allocated: decPtr(500)})
	require.NoError(t, err)
	assert.Equal(t, dto.ResultSuccess, result.Type)

	// The new allocation is committed before the agent runs, so the
	// snapshot already reflects it.
	groceries := budgets.byTitle("Groceries")
	assert.True(t, groceries.Allocated.Equal(decimal.NewFromInt(500)))

	prompt := gateway.lastRequest().Messages[len(gateway.lastRequest().Messages)-1].Text
	assert.Contains(t, prompt, "EVENT: Budget Allocation Change")
	assert.Contains(t, prompt, "- Groceries: Budget=500, Spent=50")
	assert.Contains(t, prompt, "- Transport: Budget=100, Spent=10")
}

func TestSpentUpdateBeyondAllocationRunsOverspendFlow(t *testing.T) {
	userID := uuid.New()
	budgets := &stubBudgetStore{}
	id := seedBudget(budgets, userID, "Groceries", 300, 50)

	gateway := &stubGateway{responses: []string{`{"budgets": [], "message": "adjusted"}`}}
	svc, _ := newBudgetServiceForTest(gateway, budgets, &stubUserStore{})

	result, err := svc.ApplyUpdate(context.Background(), userID, id, &dto.UpdateBudgetRequest{Spent: decPtr(350)})
	require.NoError(t, err)
	assert.Equal(t, dto.ResultSuccess, result.Type)

	groceries := budgets.byTitle("Groceries")
	assert.True(t, groceries.Spent.Equal(decimal.NewFromInt(350)))

	prompt := gateway.lastRequest().Messages[len(gateway.lastRequest().Messages)-1].Text
	assert.Contains(t, prompt, "EVENT: Overspending Alert")
	assert.Contains(t, prompt, "The user has spent 350 on 'Groceries', which exceeds the budget of 300.")
	assert.Contains(t, prompt, "- Groceries: Budget=300, Spent=350")
}

func TestSpentUpdateWithinAllocationSkipsAgent(t *testing.T) {
	userID := uuid.New()
	budgets := &stubBudgetStore{}
	id := seedBudget(budgets, userID, "Groceries", 300, 50)

	gateway := &stubGateway{}
	svc, _ := newBudgetServiceForTest(gateway, budgets, &stubUserStore{})

	result, err := svc.ApplyUpdate(context.Background(), userID, id, &dto.UpdateBudgetRequest{Spent: decPtr(100)})
	require.NoError(t, err)
	assert.Equal(t, dto.ResultSuccess, result.Type)
	assert.Empty(t, gateway.requests)

	groceries := budgets.byTitle("Groceries")
	assert.True(t, groceries.Spent.Equal(decimal.NewFromInt(100)))
}

func TestApplyUpdateBothFieldsFiresBothFlows(t *testing.T) {
	userID := uuid.New()
	budgets := &stubBudgetStore{}
	id := seedBudget(budgets, userID, "Groceries", 300, 50)

	gateway := &stubGateway{responses: []string{
		`{"budgets": [], "message": "rebalanced"}`,
		`{"budgets": [], "message": "adjusted"}`,
	}}
	svc, _ := newBudgetServiceForTest(gateway, budgets, &stubUserStore{})

	result, err := svc.ApplyUpdate(context.Background(), userID, id, &dto.UpdateBudgetRequest{
		Allocated: decPtr(200),
		Spent:     decPtr(250),
	})
	require.NoError(t, err)
	assert.Equal(t, dto.ResultSuccess, result.Type)

	require.Len(t, gateway.requests, 2)
	first := gateway.requests[0].Messages[len(gateway.requests[0].Messages)-1].Text
	second := gateway.requests[1].Messages[len(gateway.requests[1].Messages)-1].Text
	assert.Contains(t, first, "EVENT: Budget Allocation Change")
	assert.Contains(t, second, "EVENT: Overspending Alert")
}

func TestApplyUpdateNotFound(t *testing.T) {
	userID := uuid.New()
	svc, _ := newBudgetServiceForTest(&stubGateway{}, &stubBudgetStore{}, &stubUserStore{})

	_, err := svc.ApplyUpdate(context.Background(), userID, uuid.New(), &dto.UpdateBudgetRequest{Allocated: decPtr(100)})
	assert.ErrorIs(t, err, ErrBudgetNotFound)
}

func TestUpdateFallbackPromptForUnknownKind(t *testing.T) {
	userID := uuid.New()
	budgets := &stubBudgetStore{}
	seedBudget(budgets, userID, "Groceries", 300, 50)

	gateway := &stubGateway{responses: []string{`{"budgets": [], "message": "ok"}`}}
	svc, _ := newBudgetServiceForTest(gateway, budgets, &stubUserStore{})

	result := svc.Update(context.Background(), userID, budgets.byTitle("Groceries"), ChangeKind("unknown"))
	assert.Equal(t, dto.ResultSuccess, result.Type)

	prompt := gateway.lastRequest().Messages[len(gateway.lastRequest().Messages)-1].Text
	assert.Contains(t, prompt, "Analyze current budget state.")
}

func TestDeleteSnapshotExcludesDeletedRow(t *testing.T) {
	userID := uuid.New()
	budgets := &stubBudgetStore{}
	id := seedBudget(budgets, userID, "Leisure", 100, 20)
	seedBudget(budgets, userID, "Groceries", 300, 50)

	gateway := &stubGateway{responses: []string{`{"budgets": [], "message": "rebalanced"}`}}
	svc, _ := newBudgetServiceForTest(gateway, budgets, &stubUserStore{})

	result, err := svc.Delete(context.Background(), userID, id)
	require.NoError(t, err)
	assert.Equal(t, dto.ResultSuccess, result.Type)
	assert.Nil(t, budgets.byTitle("Leisure"))

	prompt := gateway.lastRequest().Messages[len(gateway.lastRequest().Messages)-1].Text
	assert.Contains(t, prompt, "EVENT: Budget Category Deleted")
	assert.Contains(t, prompt, "Groceries")
	assert.NotContains(t, prompt, "Leisure")
}

func TestDeleteNotFound(t *testing.T) {
	userID := uuid.New()
	svc, _ := newBudgetServiceForTest(&stubGateway{}, &stubBudgetStore{}, &stubUserStore{})

	_, err := svc.Delete(context.Background(), userID, uuid.New())
	assert.ErrorIs(t, err, ErrBudgetNotFound)
}

func TestCreateRejectsDuplicateTitle(t *testing.T) {
	userID := uuid.New()
	budgets := &stubBudgetStore{}
	seedBudget(budgets, userID, "Groceries", 300, 0)

	svc, _ := newBudgetServiceForTest(&stubGateway{}, budgets, &stubUserStore{})
	_, err := svc.Create(context.Background(), userID, &dto.CreateBudgetRequest{
		Title:     "Groceries",
		Allocated: decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, ErrBudgetExists)
}
