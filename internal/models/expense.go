package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a single recorded purchase. BudgetID is nil when the
// expense could not be categorized. Expenses are immutable after creation.
type Expense struct {
	ID          uuid.UUID       `db:"id"`
	UserID      uuid.UUID       `db:"user_id"`
	BudgetID    *uuid.UUID      `db:"budget_id"`
	ProductName string          `db:"product_name"`
	Amount      decimal.Decimal `db:"amount"`
	Description string          `db:"description"`
	Date        time.Time       `db:"date"`
	CreatedAt   time.Time       `db:"created_at"`
}
