package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget is a named spending allocation owned by a single user.
// Title is unique per user; Allocated and Spent are non-negative
// amounts with two fractional digits.
type Budget struct {
	ID          uuid.UUID       `db:"id"`
	UserID      uuid.UUID       `db:"user_id"`
	Title       string          `db:"title"`
	Allocated   decimal.Decimal `db:"allocated_amount"`
	Spent       decimal.Decimal `db:"spent_amount"`
	Description string          `db:"description"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}
