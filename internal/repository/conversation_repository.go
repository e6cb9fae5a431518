package repository

import (
	"context"

	"aion/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// seq is a bigserial assigned by the database; inserts never set it.
var turnColumns = []string{
	"id", "agent_id", "user_id", "role", "content", "seq", "created_at",
}

var turnInsertColumns = []string{
	"id", "agent_id", "user_id", "role", "content", "created_at",
}

// ConversationRepository is the append-only log of conversation turns
// keyed by (agent, user).
type ConversationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewConversationRepository(db *pgxpool.Pool, logger *zap.Logger) *ConversationRepository {
	return &ConversationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ConversationRepository) Append(ctx context.Context, turn *models.ConversationTurn) error {
	query := squirrel.Insert("conversation_turns").
		Columns(turnInsertColumns...).
		Values(turn.ID, turn.AgentID, turn.UserID, turn.Role, turn.Content, turn.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// ListByAgentAndUser returns the full log in replay order. The order fed
// back to the model must match the order the turns were appended in, so
// ordering rides on the insert-assigned sequence rather than timestamps.
func (r *ConversationRepository) ListByAgentAndUser(ctx context.Context, agentID, userID uuid.UUID) ([]*models.ConversationTurn, error) {
	query := squirrel.Select(turnColumns...).
		From("conversation_turns").
		Where(squirrel.Eq{"agent_id": agentID, "user_id": userID}).
		OrderBy("seq ASC").
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

	var turns []*models.ConversationTurn
	for rows.Next() {
		var turn models.ConversationTurn
		if err := rows.Scan(
			&turn.ID, &turn.AgentID, &turn.UserID, &turn.Role, &turn.Content, &turn.Seq, &turn.CreatedAt,
		); err != nil {
			return nil, err
		}
		turns = append(turns, &turn)
	}

	return turns, rows.Err()
}
