package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aion/internal/dto"
	"aion/internal/models"
	"aion/pkg/config"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrBudgetNotFound = errors.New("budget not found")
	ErrBudgetExists   = errors.New("budget already exists")
)

// ChangeKind names the event that triggers a reconciliation pass over
// an existing budget set.
type ChangeKind string

const (
	ChangeAllocation ChangeKind = "allocation_change"
	ChangeOverspend  ChangeKind = "overspend"
)

type BudgetStore interface {
	Create(ctx context.Context, budget *models.Budget) error
	Update(ctx context.Context, budget *models.Budget) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Budget, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Budget, error)
	FindByTitle(ctx context.Context, userID uuid.UUID, title string) (*models.Budget, error)
	FindByTitleFold(ctx context.Context, userID uuid.UUID, title string) (*models.Budget, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// BudgetService is the reconciliation engine: it drives the budget agent
// and merges its proposals back into the persisted budget set.
type BudgetService struct {
	gateway Gateway
	agents  *AgentService
	budgets BudgetStore
	users   UserStore
	locks   *BudgetLocks
	cfg     *config.AgentsConfig
	logger  *zap.Logger
}

func NewBudgetService(
	gateway Gateway,
	agents *AgentService,
	budgets BudgetStore,
	users UserStore,
	locks *BudgetLocks,
	cfg *config.AgentsConfig,
	logger *zap.Logger,
) *BudgetService {
	return &BudgetService{
		gateway: gateway,
		agents:  agents,
		budgets: budgets,
		users:   users,
		locks:   locks,
		cfg:     cfg,
		logger:  logger,
	}
}

// Structured output negotiated with the budget agent.
type modelBudgetItem struct {
	Title       string          `json:"title"`
	Allocated   decimal.Decimal `json:"allocated_amount"`
	Spent       decimal.Decimal `json:"spent_amount"`
	Description string          `json:"description"`
}

type budgetGenerationResponse struct {
	Budgets []modelBudgetItem `json:"budgets"`
	Message string            `json:"message"`
}

// Generate asks the budget agent for a fresh or revised budget set.
func (s *BudgetService) Generate(ctx context.Context, userID uuid.UUID, userMessage string) *dto.Result {
	prompt := userMessage
	if prompt == "" {
		prompt = "Generate budget based on available info."
	}
	return s.runTask(ctx, userID, prompt)
}

// Update runs the rebalancing flow after a budget row was mutated. The
// snapshot embedded in the prompt reflects the state after the mutation;
// the model decides the rebalancing and the merge executes it mechanically.
func (s *BudgetService) Update(ctx context.Context, userID uuid.UUID, budget *models.Budget, kind ChangeKind) *dto.Result {
	snapshot, err := s.snapshot(ctx, userID)
	if err != nil {
		return dto.Error(err)
	}

	var prompt string
	switch kind {
	case ChangeAllocation:
		prompt = fmt.Sprintf(`EVENT: Budget Allocation Change
The user manually updated the budget for '%s' to %s.

CURRENT STATE OF BUDGETS (After User Update):
%s

TASK:
1. Analyze the new total budget.
2. Rebalance the other categories if necessary to maintain a logical distribution.
3. If the change seems isolated, just confirm.
4. Update the descriptions if the context changes.

OUTPUT:
Return the full list of budgets (including the modified one) with updated amounts and descriptions.`,
			budget.Title, budget.Allocated, snapshot)
	case ChangeOverspend:
		prompt = fmt.Sprintf(`EVENT: Overspending Alert
The user has spent %s on '%s', which exceeds the budget of %s.

CURRENT STATE OF BUDGETS:
%s

TASK:
1. Acknowledge the overspending.
2. Update the description of '%s' to include a warning and advice.
3. Suggest adjustments to other budgets to cover the deficit if possible.

OUTPUT:
Return the full list of budgets with updated amounts and descriptions.`,
			budget.Spent, budget.Title, budget.Allocated, snapshot, budget.Title)
	default:
		prompt = "Analyze current budget state."
	}

	return s.runTask(ctx, userID, prompt)
}

// HandleDeletion rebalances the survivors after a budget row was
// removed. The snapshot lists only the remaining rows.
func (s *BudgetService) HandleDeletion(ctx context.Context, userID uuid.UUID) *dto.Result {
	snapshot, err := s.snapshot(ctx, userID)
	if err != nil {
		return dto.Error(err)
	}

	prompt := fmt.Sprintf(`EVENT: Budget Category Deleted
The user deleted a budget category.

CURRENT STATE OF REMAINING BUDGETS:
%s

TASK:
1. Analyze the remaining budgets.
2. Rebalance the funds from the deleted category into the remaining ones (or savings) if appropriate.
3. Update descriptions.

OUTPUT:
Return the full list of budgets with updated amounts and descriptions.`, snapshot)

	return s.runTask(ctx, userID, prompt)
}

// runTask is the shared generate/merge path. No budget row is touched
// unless the model call and parse both succeed.
func (s *BudgetService) runTask(ctx context.Context, userID uuid.UUID, prompt string) *dto.Result {
	agent, err := s.agents.Ensure(ctx, BudgetAgentSpec(s.cfg))
	if err != nil {
		return dto.Error(err)
	}

	history, err := s.agents.History(ctx, agent.ID, userID)
	if err != nil {
		return dto.Error(err)
	}

	// First contact: prime the conversation with the financial profile.
	if len(history) == 0 {
		prompt = s.financialProfile(ctx, userID) + "\n\nTASK: " + prompt
	}

	if err := s.agents.AppendTurn(ctx, agent.ID, userID, models.RoleUser, prompt); err != nil {
		return dto.Error(err)
	}
	history = append(history, ChatMessage{Role: models.RoleUser, Text: prompt})

	resp, err := s.gateway.Generate(ctx, &GenerateRequest{
		Model:             agent.Model,
		SystemInstruction: agent.SystemInstruction + "\n\n" + budgetResponseSchema,
		Temperature:       s.cfg.Temperature,
		Messages:          history,
	})
	if err != nil {
		s.logger.Error("Budget agent call failed", zap.Error(err))
		return dto.Error(err)
	}

	if err := s.agents.AppendTurn(ctx, agent.ID, userID, models.RoleModel, resp.Text); err != nil {
		return dto.Error(err)
	}

	var generated budgetGenerationResponse
	if err := decodeJSONObject(resp.Text, &generated); err != nil {
		s.logger.Error("Budget agent returned unparseable output", zap.Error(err))
		return dto.Error(err)
	}

	merged, err := s.merge(ctx, userID, generated.Budgets)
	if err != nil {
		return dto.Error(err)
	}

	message := generated.Message
	if message == "" {
		message = "Budget updated."
	}

	return dto.Success(&dto.BudgetGenerationData{Message: message, Budgets: merged})
}

// merge applies the model's proposals: match by exact title, overwrite
// matches in place, insert the rest. Rows the model did not mention are
// never modified or removed.
func (s *BudgetService) merge(ctx context.Context, userID uuid.UUID, items []modelBudgetItem) ([]dto.BudgetResponse, error) {
	lock := s.locks.ForUser(userID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.budgets.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byTitle := make(map[string]*models.Budget, len(existing))
	for _, b := range existing {
		byTitle[b.Title] = b
	}

	merged := make([]dto.BudgetResponse, 0, len(items))
	for _, item := range items {
		if item.Title == "" || item.Allocated.IsNegative() || item.Spent.IsNegative() {
			s.logger.Warn("Skipping invalid budget item from model", zap.String("title", item.Title))
			continue
		}

		now := time.Now()
		if budget, ok := byTitle[item.Title]; ok {
			budget.Allocated = item.Allocated.Round(2)
			budget.Spent = item.Spent.Round(2)
			budget.Description = sanitizeUTF8(item.Description)
			budget.UpdatedAt = now
			if err := s.budgets.Update(ctx, budget); err != nil {
				return nil, err
			}
			merged = append(merged, budgetResponse(budget))
		} else {
			budget := &models.Budget{
				ID:          uuid.New(),
				UserID:      userID,
				Title:       item.Title,
				Allocated:   item.Allocated.Round(2),
				Spent:       item.Spent.Round(2),
				Description: sanitizeUTF8(item.Description),
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := s.budgets.Create(ctx, budget); err != nil {
				return nil, err
			}
			merged = append(merged, budgetResponse(budget))
		}
	}

	return merged, nil
}

// financialProfile synthesizes the context block injected before the
// first task prompt of a conversation.
func (s *BudgetService) financialProfile(ctx context.Context, userID uuid.UUID) string {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil || user == nil {
		return "User profile not found or incomplete."
	}

	var sb strings.Builder
	sb.WriteString("USER FINANCIAL PROFILE:\n")
	fmt.Fprintf(&sb, "- Username: %s\n", user.Username)
	fmt.Fprintf(&sb, "- Member since: %s\n", user.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(&sb, "- Currency: %s\n", s.cfg.Currency)

	budgets, err := s.budgets.ListByUser(ctx, userID)
	if err == nil {
		totalAllocated := decimal.Zero
		totalSpent := decimal.Zero
		for _, b := range budgets {
			totalAllocated = totalAllocated.Add(b.Allocated)
			totalSpent = totalSpent.Add(b.Spent)
		}
		fmt.Fprintf(&sb, "- Budget categories: %d\n", len(budgets))
		fmt.Fprintf(&sb, "- Total allocated: %s\n", totalAllocated)
		fmt.Fprintf(&sb, "- Total spent: %s", totalSpent)
	}

	return sb.String()
}

// snapshot renders the deterministic budget listing embedded in event
// prompts. The repository returns rows ordered by title.
func (s *BudgetService) snapshot(ctx context.Context, userID uuid.UUID) (string, error) {
	budgets, err := s.budgets.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(budgets))
	for _, b := range budgets {
		lines = append(lines, fmt.Sprintf("- %s: Budget=%s, Spent=%s", b.Title, b.Allocated, b.Spent))
	}
	return strings.Join(lines, "\n"), nil
}

// List returns the user's budgets as wire objects.
func (s *BudgetService) List(ctx context.Context, userID uuid.UUID) ([]dto.BudgetResponse, error) {
	budgets, err := s.budgets.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.BudgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, budgetResponse(b))
	}
	return out, nil
}

// Create inserts a budget row directly, outside the agent flow.
func (s *BudgetService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateBudgetRequest) (*dto.BudgetResponse, error) {
	if req.Title == "" {
		return nil, errors.New("title is required")
	}
	if req.Allocated.IsNegative() {
		return nil, errors.New("allocated amount must not be negative")
	}
	if existing, err := s.budgets.FindByTitle(ctx, userID, req.Title); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrBudgetExists
	}

	now := time.Now()
	budget := &models.Budget{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       req.Title,
		Allocated:   req.Allocated.Round(2),
		Spent:       decimal.Zero,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.budgets.Create(ctx, budget); err != nil {
		return nil, err
	}

	resp := budgetResponse(budget)
	return &resp, nil
}

// ApplyUpdate persists a manual field update, then runs the matching
// reconciliation flows over the new state: an allocation change when the
// allocated amount moved, an overspending alert when the new spent
// amount exceeds the allocation. A spent change that stays within the
// allocation triggers no agent run.
func (s *BudgetService) ApplyUpdate(ctx context.Context, userID, id uuid.UUID, req *dto.UpdateBudgetRequest) (*dto.Result, error) {
	if req.Allocated == nil && req.Spent == nil {
		return nil, errors.New("no fields to update")
	}
	if req.Allocated != nil && req.Allocated.IsNegative() {
		return nil, errors.New("allocated amount must not be negative")
	}
	if req.Spent != nil && req.Spent.IsNegative() {
		return nil, errors.New("spent amount must not be negative")
	}

	lock := s.locks.ForUser(userID)
	lock.Lock()
	budget, err := s.budgets.GetByID(ctx, userID, id)
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	if budget == nil {
		lock.Unlock()
		return nil, ErrBudgetNotFound
	}

	allocationChanged := req.Allocated != nil && !req.Allocated.Equal(budget.Allocated)
	spentChanged := req.Spent != nil && !req.Spent.Equal(budget.Spent)

	if allocationChanged {
		budget.Allocated = req.Allocated.Round(2)
	}
	if spentChanged {
		budget.Spent = req.Spent.Round(2)
	}
	budget.UpdatedAt = time.Now()
	if err := s.budgets.Update(ctx, budget); err != nil {
		lock.Unlock()
		return nil, err
	}
	lock.Unlock()

	var result *dto.Result
	if allocationChanged {
		result = s.Update(ctx, userID, budget, ChangeAllocation)
	}
	if spentChanged && budget.Spent.GreaterThan(budget.Allocated) {
		result = s.Update(ctx, userID, budget, ChangeOverspend)
	}
	if result == nil {
		result = dto.Success(&dto.BudgetGenerationData{
			Message: "Budget updated.",
			Budgets: []dto.BudgetResponse{budgetResponse(budget)},
		})
	}
	return result, nil
}

// Delete removes a budget row, then rebalances the survivors.
func (s *BudgetService) Delete(ctx context.Context, userID, id uuid.UUID) (*dto.Result, error) {
	deleted, err := s.budgets.Delete(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, ErrBudgetNotFound
	}

	return s.HandleDeletion(ctx, userID), nil
}

func budgetResponse(b *models.Budget) dto.BudgetResponse {
	return dto.BudgetResponse{
		ID:          b.ID.String(),
		Title:       b.Title,
		Allocated:   b.Allocated,
		Spent:       b.Spent,
		Description: b.Description,
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   b.UpdatedAt.Format(time.RFC3339),
	}
}
