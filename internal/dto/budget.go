package dto

import "github.com/shopspring/decimal"

type BudgetResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Allocated   decimal.Decimal `json:"allocated_amount"`
	Spent       decimal.Decimal `json:"spent_amount"`
	Description string          `json:"description"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

type GenerateBudgetsRequest struct {
	Message string `json:"message"`
}

type CreateBudgetRequest struct {
	Title       string          `json:"title"`
	Allocated   decimal.Decimal `json:"allocated_amount"`
	Description string          `json:"description"`
}

// UpdateBudgetRequest mutates a budget row in place. Absent fields are
// left untouched; a spent amount pushed past the allocation triggers the
// overspending reconciliation flow.
type UpdateBudgetRequest struct {
	Allocated *decimal.Decimal `json:"allocated_amount,omitempty"`
	Spent     *decimal.Decimal `json:"spent_amount,omitempty"`
}

// BudgetGenerationData is the success payload of the reconciliation flows.
type BudgetGenerationData struct {
	Message string           `json:"message"`
	Budgets []BudgetResponse `json:"budgets"`
}
