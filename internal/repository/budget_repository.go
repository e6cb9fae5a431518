package repository

import (
	"context"
	"errors"

	"aion/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var budgetColumns = []string{
	"id", "user_id", "title", "allocated_amount", "spent_amount",
	"description", "created_at", "updated_at",
}

type BudgetRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewBudgetRepository(db *pgxpool.Pool, logger *zap.Logger) *BudgetRepository {
	return &BudgetRepository{
		db:     db,
		logger: logger,
	}
}

func (r *BudgetRepository) Create(ctx context.Context, budget *models.Budget) error {
	query := squirrel.Insert("budgets").
		Columns(budgetColumns...).
		Values(budget.ID, budget.UserID, budget.Title, budget.Allocated, budget.Spent,
			budget.Description, budget.CreatedAt, budget.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *BudgetRepository) Update(ctx context.Context, budget *models.Budget) error {
	query := squirrel.Update("budgets").
		Set("title", budget.Title).
		Set("allocated_amount", budget.Allocated).
		Set("spent_amount", budget.Spent).
		Set("description", budget.Description).
		Set("updated_at", budget.UpdatedAt).
		Where(squirrel.Eq{"id": budget.ID, "user_id": budget.UserID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// GetByID returns (nil, nil) when the row does not exist or is not owned
// by the given user.
func (r *BudgetRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Budget, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id, "user_id": userID})
}

// FindByTitle matches the title exactly.
func (r *BudgetRepository) FindByTitle(ctx context.Context, userID uuid.UUID, title string) (*models.Budget, error) {
	return r.getOne(ctx, squirrel.Eq{"user_id": userID, "title": title})
}

// FindByTitleFold matches the title case-insensitively.
func (r *BudgetRepository) FindByTitleFold(ctx context.Context, userID uuid.UUID, title string) (*models.Budget, error) {
	return r.getOne(ctx, squirrel.And{
		squirrel.Eq{"user_id": userID},
		squirrel.Expr("LOWER(title) = LOWER(?)", title),
	})
}

func (r *BudgetRepository) getOne(ctx context.Context, pred any) (*models.Budget, error) {
	query := squirrel.Select(budgetColumns...).
		From("budgets").
		Where(pred).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var budget models.Budget
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&budget.ID, &budget.UserID, &budget.Title, &budget.Allocated, &budget.Spent,
		&budget.Description, &budget.CreatedAt, &budget.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &budget, nil
}

func (r *BudgetRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Budget, error) {
	query := squirrel.Select(budgetColumns...).
		From("budgets").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("title ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		var budget models.Budget
		if err := rows.Scan(
			&budget.ID, &budget.UserID, &budget.Title, &budget.Allocated, &budget.Spent,
			&budget.Description, &budget.CreatedAt, &budget.UpdatedAt,
		); err != nil {
			return nil, err
		}
		budgets = append(budgets, &budget)
	}

	return budgets, rows.Err()
}

// Delete removes a budget row; expenses referencing it keep a dangling
// nil category via ON DELETE SET NULL. Returns false when nothing matched.
func (r *BudgetRepository) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	query := squirrel.Delete("budgets").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}
