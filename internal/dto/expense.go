package dto

import "github.com/shopspring/decimal"

type ProcessExpenseRequest struct {
	Message string         `json:"message"`
	Manual  *ManualExpense `json:"manual,omitempty"`
}

// ManualExpense bypasses model extraction entirely.
type ManualExpense struct {
	Amount      decimal.Decimal `json:"amount"`
	ProductName string          `json:"product_name"`
	Description string          `json:"description,omitempty"`
	BudgetID    string          `json:"budget_id,omitempty"`
}

type ExpenseResponse struct {
	ID       string          `json:"id"`
	Product  string          `json:"product"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
}

type ExpenseListItem struct {
	ID          string          `json:"id"`
	ProductName string          `json:"product_name"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
}

// ProcessedExpensesData is the response payload of the intake engine.
type ProcessedExpensesData struct {
	Message  string            `json:"message"`
	Expenses []ExpenseResponse `json:"expenses"`
	Alerts   []string          `json:"alerts"`
}
