package service

import (
	"context"
	"time"

	"aion/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AgentSpec is the compiled-in desired configuration of one agent.
type AgentSpec struct {
	Name              string
	Description       string
	SystemInstruction string
	Model             string
	ThinkingBudget    int
}

type AgentStore interface {
	GetByName(ctx context.Context, name string) (*models.Agent, error)
	Create(ctx context.Context, agent *models.Agent) error
	Update(ctx context.Context, agent *models.Agent) error
}

type ConversationStore interface {
	Append(ctx context.Context, turn *models.ConversationTurn) error
	ListByAgentAndUser(ctx context.Context, agentID, userID uuid.UUID) ([]*models.ConversationTurn, error)
}

// AgentService owns agent configuration reconciliation and the per
// (agent, user) conversation log.
type AgentService struct {
	agents AgentStore
	turns  ConversationStore
	logger *zap.Logger
}

func NewAgentService(agents AgentStore, turns ConversationStore, logger *zap.Logger) *AgentService {
	return &AgentService{
		agents: agents,
		turns:  turns,
		logger: logger,
	}
}

// Ensure lazily creates the agent on first use and patches only the
// fields that drifted from the desired spec. Calling it again with the
// same spec is a no-op.
func (s *AgentService) Ensure(ctx context.Context, spec AgentSpec) (*models.Agent, error) {
	agent, err := s.agents.GetByName(ctx, spec.Name)
	if err != nil {
		return nil, err
	}

	if agent == nil {
		now := time.Now()
		agent = &models.Agent{
			ID:                uuid.New(),
			Name:              spec.Name,
			Description:       spec.Description,
			SystemInstruction: spec.SystemInstruction,
			Model:             spec.Model,
			ThinkingBudget:    spec.ThinkingBudget,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := s.agents.Create(ctx, agent); err != nil {
			return nil, err
		}
		s.logger.Info("Agent created", zap.String("agent", spec.Name))
		return agent, nil
	}

	changed := false
	if agent.Model != spec.Model {
		agent.Model = spec.Model
		changed = true
	}
	if agent.ThinkingBudget != spec.ThinkingBudget {
		agent.ThinkingBudget = spec.ThinkingBudget
		changed = true
	}
	if agent.SystemInstruction != spec.SystemInstruction {
		agent.SystemInstruction = spec.SystemInstruction
		changed = true
	}
	if changed {
		agent.UpdatedAt = time.Now()
		if err := s.agents.Update(ctx, agent); err != nil {
			return nil, err
		}
		s.logger.Info("Agent configuration upgraded", zap.String("agent", spec.Name))
	}

	return agent, nil
}

// History returns the conversation log in replay order, flattened to
// chat messages.
func (s *AgentService) History(ctx context.Context, agentID, userID uuid.UUID) ([]ChatMessage, error) {
	turns, err := s.turns.ListByAgentAndUser(ctx, agentID, userID)
	if err != nil {
		return nil, err
	}

	messages := make([]ChatMessage, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, ChatMessage{Role: turn.Role, Text: turn.Text()})
	}
	return messages, nil
}

// AppendTurn records one turn. Appends are at-least-once and ordered;
// the log is never rewritten.
func (s *AgentService) AppendTurn(ctx context.Context, agentID, userID uuid.UUID, role models.Role, text string) error {
	return s.turns.Append(ctx, &models.ConversationTurn{
		ID:        uuid.New(),
		AgentID:   agentID,
		UserID:    userID,
		Role:      role,
		Content:   models.NewTurnContent(text),
		CreatedAt: time.Now(),
	})
}
