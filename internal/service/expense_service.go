package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"aion/internal/dto"
	"aion/internal/models"
	"aion/pkg/config"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// warnThreshold is the share of the allocation at which the approaching-
// limit alert fires.
var warnThreshold = decimal.NewFromFloat(0.8)

type ExpenseStore interface {
	Create(ctx context.Context, expense *models.Expense) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Expense, error)
}

// TextExtractor turns an uploaded attachment (receipt image or PDF)
// into plain text for the extraction prompt.
type TextExtractor interface {
	ExtractTextFromReader(ctx context.Context, reader io.Reader, contentType string) (string, error)
}

// FilePayload is an optional attachment submitted with an expense message.
type FilePayload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

// ExpenseService is the intake engine: it extracts structured expense
// entries, applies them against budgets and raises threshold alerts.
type ExpenseService struct {
	gateway   Gateway
	agents    *AgentService
	budgets   BudgetStore
	expenses  ExpenseStore
	notifier  *NotificationService
	extractor TextExtractor
	locks     *BudgetLocks
	cfg       *config.AgentsConfig
	logger    *zap.Logger
}

func NewExpenseService(
	gateway Gateway,
	agents *AgentService,
	budgets BudgetStore,
	expenses ExpenseStore,
	notifier *NotificationService,
	extractor TextExtractor,
	locks *BudgetLocks,
	cfg *config.AgentsConfig,
	logger *zap.Logger,
) *ExpenseService {
	return &ExpenseService{
		gateway:   gateway,
		agents:    agents,
		budgets:   budgets,
		expenses:  expenses,
		notifier:  notifier,
		extractor: extractor,
		locks:     locks,
		cfg:       cfg,
		logger:    logger,
	}
}

type extractedExpense struct {
	Category    string          `json:"category"`
	ProductName string          `json:"product_name"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	budgetID    string
}

type expenseExtractionResponse struct {
	Expenses []extractedExpense `json:"expenses"`
}

// Process handles one expense submission. A manual override bypasses the
// model entirely; otherwise the message (plus optional attachment text)
// is run through the expense agent. Extraction failure aborts the whole
// call with no writes. Once extraction has succeeded, entries are
// committed one by one; a failure mid-list does not roll back earlier
// entries.
func (s *ExpenseService) Process(ctx context.Context, userID uuid.UUID, message string, file *FilePayload, manual *dto.ManualExpense) *dto.Result {
	entries, errResult := s.extract(ctx, userID, message, file, manual)
	if errResult != nil {
		return errResult
	}

	processed := make([]dto.ExpenseResponse, 0, len(entries))
	alerts := []string{}

	for _, entry := range entries {
		resp, entryAlerts, err := s.apply(ctx, userID, entry)
		if err != nil {
			s.logger.Error("Failed to apply expense entry",
				zap.String("product", entry.ProductName),
				zap.Error(err),
			)
			return dto.Error(err)
		}
		processed = append(processed, *resp)
		alerts = append(alerts, entryAlerts...)
	}

	return dto.Response(&dto.ProcessedExpensesData{
		Message:  fmt.Sprintf("Processed %d expenses.", len(processed)),
		Expenses: processed,
		Alerts:   alerts,
	})
}

// extract produces the entry list, either from the manual override or
// from the model. Returns a non-nil Result on failure.
func (s *ExpenseService) extract(ctx context.Context, userID uuid.UUID, message string, file *FilePayload, manual *dto.ManualExpense) ([]extractedExpense, *dto.Result) {
	if manual != nil && !manual.Amount.IsZero() && manual.ProductName != "" {
		return []extractedExpense{{
			ProductName: manual.ProductName,
			Amount:      manual.Amount,
			Description: manual.Description,
			budgetID:    manual.BudgetID,
		}}, nil
	}

	if file != nil {
		text, err := s.extractor.ExtractTextFromReader(ctx, file.Reader, file.ContentType)
		if err != nil {
			s.logger.Error("Attachment extraction failed", zap.String("file", file.Filename), zap.Error(err))
			return nil, dto.Error(fmt.Errorf("failed to read file: %w", err))
		}
		message = message + "\n\nDOCUMENT TEXT:\n" + text
	}

	agent, err := s.agents.Ensure(ctx, ExpenseAgentSpec(s.cfg))
	if err != nil {
		return nil, dto.Error(err)
	}

	titles, err := s.budgetTitles(ctx, userID)
	if err != nil {
		return nil, dto.Error(err)
	}
	prompt := message + "\n\n" +
		fmt.Sprintf("User's existing budget categories: %s. Try to match these.", titles)

	resp, err := s.gateway.Generate(ctx, &GenerateRequest{
		Model:             agent.Model,
		SystemInstruction: agent.SystemInstruction,
		Temperature:       s.cfg.Temperature,
		Messages:          []ChatMessage{{Role: models.RoleUser, Text: prompt}},
	})
	if err != nil {
		s.logger.Error("Expense agent call failed", zap.Error(err))
		return nil, dto.Error(err)
	}

	var extraction expenseExtractionResponse
	if err := decodeJSONObject(resp.Text, &extraction); err != nil {
		s.logger.Error("Expense agent returned unparseable output", zap.Error(err))
		return nil, dto.Error(err)
	}

	// Safe fallbacks for malformed entries rather than aborting.
	for i := range extraction.Expenses {
		if extraction.Expenses[i].ProductName == "" {
			extraction.Expenses[i].ProductName = "Unknown Product"
		}
		if extraction.Expenses[i].Amount.IsNegative() {
			extraction.Expenses[i].Amount = decimal.Zero
		}
	}

	return extraction.Expenses, nil
}

// apply commits one entry: insert the expense row, bump the resolved
// budget's spent amount and evaluate the alert thresholds.
func (s *ExpenseService) apply(ctx context.Context, userID uuid.UUID, entry extractedExpense) (*dto.ExpenseResponse, []string, error) {
	budget, err := s.resolveBudget(ctx, userID, entry)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	expense := &models.Expense{
		ID:          uuid.New(),
		UserID:      userID,
		ProductName: entry.ProductName,
		Amount:      entry.Amount.Round(2),
		Description: sanitizeUTF8(entry.Description),
		Date:        now,
		CreatedAt:   now,
	}
	if budget != nil {
		id := budget.ID
		expense.BudgetID = &id
	}
	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, nil, err
	}

	category := "Uncategorized"
	var alerts []string
	if budget != nil {
		category = budget.Title
		alerts, err = s.applySpend(ctx, userID, budget.ID, expense)
		if err != nil {
			return nil, nil, err
		}
	}

	return &dto.ExpenseResponse{
		ID:       expense.ID.String(),
		Product:  expense.ProductName,
		Amount:   expense.Amount,
		Category: category,
	}, alerts, nil
}

// applySpend performs the locked read-modify-write of spent_amount and
// the ordered threshold evaluation: overspend first, then the 80% warning.
// At most one notification fires per update.
func (s *ExpenseService) applySpend(ctx context.Context, userID, budgetID uuid.UUID, expense *models.Expense) ([]string, error) {
	lock := s.locks.ForUser(userID)
	lock.Lock()
	defer lock.Unlock()

	budget, err := s.budgets.GetByID(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		// Deleted between resolution and spend update; the expense
		// stays uncategorized.
		return nil, nil
	}

	budget.Spent = budget.Spent.Add(expense.Amount).Round(2)
	budget.UpdatedAt = time.Now()
	if err := s.budgets.Update(ctx, budget); err != nil {
		return nil, err
	}

	currency := s.cfg.Currency
	var alerts []string

	switch {
	case budget.Spent.GreaterThan(budget.Allocated):
		alerts = append(alerts, fmt.Sprintf("Overspending detected in %s. Budget: %s, Spent: %s",
			budget.Title, budget.Allocated, budget.Spent))

		message := fmt.Sprintf("You have exceeded your budget for %s. Budget: %s %s, Spent: %s %s",
			budget.Title, budget.Allocated, currency, budget.Spent, currency)
		_, err = s.notifier.Create(ctx, &CreateNotificationInput{
			UserID:           userID,
			Type:             models.NotificationBudgetAlert,
			Priority:         models.PriorityHigh,
			Title:            fmt.Sprintf("⚠️ Overspending in %s", budget.Title),
			Message:          message,
			RelatedBudgetID:  &budget.ID,
			RelatedExpenseID: &expense.ID,
			ActionURL:        "/budget/" + budget.ID.String(),
		})
		if err != nil {
			return nil, err
		}

	case budget.Allocated.IsPositive() && budget.Spent.GreaterThanOrEqual(budget.Allocated.Mul(warnThreshold)):
		percentage := budget.Spent.Div(budget.Allocated).Mul(decimal.NewFromInt(100)).Round(0)
		remaining := budget.Allocated.Sub(budget.Spent)

		message := fmt.Sprintf("You have used %s%% of your %s budget. Remaining: %s %s",
			percentage, budget.Title, remaining, currency)
		_, err = s.notifier.Create(ctx, &CreateNotificationInput{
			UserID:           userID,
			Type:             models.NotificationExpenseAlert,
			Priority:         models.PriorityMedium,
			Title:            fmt.Sprintf("📊 Approaching budget limit: %s", budget.Title),
			Message:          message,
			RelatedBudgetID:  &budget.ID,
			RelatedExpenseID: &expense.ID,
			ActionURL:        "/budget/" + budget.ID.String(),
		})
		if err != nil {
			return nil, err
		}
	}

	return alerts, nil
}

// resolveBudget picks the target: explicit id wins, then case-insensitive
// title match on the category, else uncategorized.
func (s *ExpenseService) resolveBudget(ctx context.Context, userID uuid.UUID, entry extractedExpense) (*models.Budget, error) {
	if entry.budgetID != "" {
		id, err := uuid.Parse(entry.budgetID)
		if err != nil {
			return nil, fmt.Errorf("invalid budget id: %w", err)
		}
		return s.budgets.GetByID(ctx, userID, id)
	}
	if entry.Category != "" {
		return s.budgets.FindByTitleFold(ctx, userID, entry.Category)
	}
	return nil, nil
}

func (s *ExpenseService) budgetTitles(ctx context.Context, userID uuid.UUID) (string, error) {
	budgets, err := s.budgets.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	titles := make([]string, 0, len(budgets))
	for _, b := range budgets {
		titles = append(titles, b.Title)
	}
	return strings.Join(titles, ", "), nil
}

// List returns the user's expenses newest first, with resolved category
// titles.
func (s *ExpenseService) List(ctx context.Context, userID uuid.UUID) ([]dto.ExpenseListItem, error) {
	expenses, err := s.expenses.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	budgets, err := s.budgets.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	titles := make(map[uuid.UUID]string, len(budgets))
	for _, b := range budgets {
		titles[b.ID] = b.Title
	}

	out := make([]dto.ExpenseListItem, 0, len(expenses))
	for _, e := range expenses {
		category := "Uncategorized"
		if e.BudgetID != nil {
			if title, ok := titles[*e.BudgetID]; ok {
				category = title
			}
		}
		out = append(out, dto.ExpenseListItem{
			ID:          e.ID.String(),
			ProductName: e.ProductName,
			Amount:      e.Amount,
			Description: e.Description,
			Category:    category,
			Date:        e.Date.Format(time.RFC3339),
		})
	}
	return out, nil
}
