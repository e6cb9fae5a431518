package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"aion/internal/models"
	"aion/pkg/config"

	"github.com/google/uuid"
)

func testAgentsConfig() *config.AgentsConfig {
	return &config.AgentsConfig{
		BudgetModel:  "GigaChat-2-Max",
		UtilityModel: "GigaChat-2",
		Temperature:  0.7,
		Currency:     "DZD",
	}
}

// stubGateway returns scripted responses and records every request.
type stubGateway struct {
	responses []string
	err       error
	requests  []*GenerateRequest
}

func (g *stubGateway) Generate(_ context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	if len(g.responses) == 0 {
		return &GenerateResponse{Text: ""}, nil
	}
	text := g.responses[0]
	if len(g.responses) > 1 {
		g.responses = g.responses[1:]
	}
	return &GenerateResponse{Text: text}, nil
}

func (g *stubGateway) lastRequest() *GenerateRequest {
	if len(g.requests) == 0 {
		return nil
	}
	return g.requests[len(g.requests)-1]
}

// stubBudgetStore stores budgets by value so callers only see committed
// state through Create/Update, like a real database.
type stubBudgetStore struct {
	budgets []models.Budget
	creates int
	updates int
}

func (s *stubBudgetStore) Create(_ context.Context, budget *models.Budget) error {
	s.creates++
	s.budgets = append(s.budgets, *budget)
	return nil
}

func (s *stubBudgetStore) Update(_ context.Context, budget *models.Budget) error {
	s.updates++
	for i := range s.budgets {
		if s.budgets[i].ID == budget.ID {
			s.budgets[i] = *budget
			return nil
		}
	}
	return errors.New("budget not found")
}

func (s *stubBudgetStore) GetByID(_ context.Context, userID, id uuid.UUID) (*models.Budget, error) {
	for i := range s.budgets {
		if s.budgets[i].ID == id && s.budgets[i].UserID == userID {
			b := s.budgets[i]
			return &b, nil
		}
	}
	return nil, nil
}

func (s *stubBudgetStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Budget, error) {
	var out []*models.Budget
	for i := range s.budgets {
		if s.budgets[i].UserID == userID {
			b := s.budgets[i]
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *stubBudgetStore) FindByTitle(_ context.Context, userID uuid.UUID, title string) (*models.Budget, error) {
	for i := range s.budgets {
		if s.budgets[i].UserID == userID && s.budgets[i].Title == title {
			b := s.budgets[i]
			return &b, nil
		}
	}
	return nil, nil
}

func (s *stubBudgetStore) FindByTitleFold(_ context.Context, userID uuid.UUID, title string) (*models.Budget, error) {
	for i := range s.budgets {
		if s.budgets[i].UserID == userID && strings.EqualFold(s.budgets[i].Title, title) {
			b := s.budgets[i]
			return &b, nil
		}
	}
	return nil, nil
}

func (s *stubBudgetStore) Delete(_ context.Context, userID, id uuid.UUID) (bool, error) {
	for i := range s.budgets {
		if s.budgets[i].ID == id && s.budgets[i].UserID == userID {
			s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *stubBudgetStore) byTitle(title string) *models.Budget {
	for i := range s.budgets {
		if s.budgets[i].Title == title {
			b := s.budgets[i]
			return &b
		}
	}
	return nil
}

type stubUserStore struct {
	users []models.User
}

func (s *stubUserStore) Create(_ context.Context, user *models.User) error {
	s.users = append(s.users, *user)
	return nil
}

func (s *stubUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (s *stubUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for i := range s.users {
		if s.users[i].Email == email {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

type stubExpenseStore struct {
	expenses  []models.Expense
	createErr error
}

func (s *stubExpenseStore) Create(_ context.Context, expense *models.Expense) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.expenses = append(s.expenses, *expense)
	return nil
}

func (s *stubExpenseStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Expense, error) {
	var out []*models.Expense
	for i := range s.expenses {
		if s.expenses[i].UserID == userID {
			e := s.expenses[i]
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

type stubNotificationStore struct {
	notifications []models.Notification
}

func (s *stubNotificationStore) Create(_ context.Context, n *models.Notification) error {
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *stubNotificationStore) GetByIDForUser(_ context.Context, id, userID uuid.UUID) (*models.Notification, error) {
	for i := range s.notifications {
		if s.notifications[i].ID == id && s.notifications[i].UserID == userID {
			n := s.notifications[i]
			return &n, nil
		}
	}
	return nil, nil
}

func (s *stubNotificationStore) List(_ context.Context, userID uuid.UUID, isRead *bool, limit int) ([]*models.Notification, error) {
	var out []*models.Notification
	for i := range s.notifications {
		n := s.notifications[i]
		if n.UserID != userID {
			continue
		}
		if isRead != nil && n.IsRead != *isRead {
			continue
		}
		out = append(out, &n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubNotificationStore) MarkRead(_ context.Context, id, userID uuid.UUID, readAt time.Time) error {
	for i := range s.notifications {
		if s.notifications[i].ID == id && s.notifications[i].UserID == userID && !s.notifications[i].IsRead {
			s.notifications[i].IsRead = true
			s.notifications[i].ReadAt = &readAt
		}
	}
	return nil
}

func (s *stubNotificationStore) MarkAllRead(_ context.Context, userID uuid.UUID, readAt time.Time) (int64, error) {
	var count int64
	for i := range s.notifications {
		if s.notifications[i].UserID == userID && !s.notifications[i].IsRead {
			s.notifications[i].IsRead = true
			s.notifications[i].ReadAt = &readAt
			count++
		}
	}
	return count, nil
}

func (s *stubNotificationStore) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for i := range s.notifications {
		if s.notifications[i].UserID == userID && !s.notifications[i].IsRead {
			count++
		}
	}
	return count, nil
}

func (s *stubNotificationStore) Delete(_ context.Context, id, userID uuid.UUID) (bool, error) {
	for i := range s.notifications {
		if s.notifications[i].ID == id && s.notifications[i].UserID == userID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *stubNotificationStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var kept []models.Notification
	var count int64
	for i := range s.notifications {
		if s.notifications[i].CreatedAt.Before(cutoff) {
			count++
			continue
		}
		kept = append(kept, s.notifications[i])
	}
	s.notifications = kept
	return count, nil
}

type stubAgentStore struct {
	agents  []models.Agent
	updates int
}

func (s *stubAgentStore) GetByName(_ context.Context, name string) (*models.Agent, error) {
	for i := range s.agents {
		if s.agents[i].Name == name {
			a := s.agents[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (s *stubAgentStore) Create(_ context.Context, agent *models.Agent) error {
	s.agents = append(s.agents, *agent)
	return nil
}

func (s *stubAgentStore) Update(_ context.Context, agent *models.Agent) error {
	s.updates++
	for i := range s.agents {
		if s.agents[i].ID == agent.ID {
			s.agents[i] = *agent
			return nil
		}
	}
	return errors.New("agent not found")
}

// stubConversationStore assigns sequence numbers on append and lists in
// sequence order, like the database-backed store.
type stubConversationStore struct {
	turns   []models.ConversationTurn
	lastSeq int64
}

func (s *stubConversationStore) Append(_ context.Context, turn *models.ConversationTurn) error {
	s.lastSeq++
	stored := *turn
	stored.Seq = s.lastSeq
	s.turns = append(s.turns, stored)
	return nil
}

func (s *stubConversationStore) ListByAgentAndUser(_ context.Context, agentID, userID uuid.UUID) ([]*models.ConversationTurn, error) {
	var out []*models.ConversationTurn
	for i := range s.turns {
		if s.turns[i].AgentID == agentID && s.turns[i].UserID == userID {
			t := s.turns[i]
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) ExtractTextFromReader(_ context.Context, _ io.Reader, _ string) (string, error) {
	return s.text, s.err
}
