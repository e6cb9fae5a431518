package repository

import (
	"context"
	"errors"

	"aion/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var agentColumns = []string{
	"id", "name", "description", "system_instruction", "model",
	"thinking_budget", "created_at", "updated_at",
}

type AgentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAgentRepository(db *pgxpool.Pool, logger *zap.Logger) *AgentRepository {
	return &AgentRepository{
		db:     db,
		logger: logger,
	}
}

// GetByName returns (nil, nil) when no agent with that name exists.
func (r *AgentRepository) GetByName(ctx context.Context, name string) (*models.Agent, error) {
	query := squirrel.Select(agentColumns...).
		From("agents").
		Where(squirrel.Eq{"name": name}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var agent models.Agent
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&agent.ID, &agent.Name, &agent.Description, &agent.SystemInstruction,
		&agent.Model, &agent.ThinkingBudget, &agent.CreatedAt, &agent.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &agent, nil
}

func (r *AgentRepository) Create(ctx context.Context, agent *models.Agent) error {
	query := squirrel.Insert("agents").
		Columns(agentColumns...).
		Values(agent.ID, agent.Name, agent.Description, agent.SystemInstruction,
			agent.Model, agent.ThinkingBudget, agent.CreatedAt, agent.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *AgentRepository) Update(ctx context.Context, agent *models.Agent) error {
	query := squirrel.Update("agents").
		Set("description", agent.Description).
		Set("system_instruction", agent.SystemInstruction).
		Set("model", agent.Model).
		Set("thinking_budget", agent.ThinkingBudget).
		Set("updated_at", agent.UpdatedAt).
		Where(squirrel.Eq{"id": agent.ID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
