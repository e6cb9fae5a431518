package service

import (
	"context"
	"fmt"
	"strings"

	"aion/internal/dto"
	"aion/internal/models"
	"aion/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportService produces narrative financial reports. Each request is a
// single-shot model call over a deterministic tabulation of the user's
// records; nothing is persisted.
type ReportService struct {
	gateway  Gateway
	agents   *AgentService
	budgets  BudgetStore
	expenses ExpenseStore
	cfg      *config.AgentsConfig
	logger   *zap.Logger
}

func NewReportService(
	gateway Gateway,
	agents *AgentService,
	budgets BudgetStore,
	expenses ExpenseStore,
	cfg *config.AgentsConfig,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		gateway:  gateway,
		agents:   agents,
		budgets:  budgets,
		expenses: expenses,
		cfg:      cfg,
		logger:   logger,
	}
}

// Generate builds the data tabulation, runs the report agent once and
// returns the narrative verbatim.
func (s *ReportService) Generate(ctx context.Context, userID uuid.UUID, message string) *dto.Result {
	agent, err := s.agents.Ensure(ctx, ReportAgentSpec(s.cfg))
	if err != nil {
		return dto.Error(err)
	}

	prompt, err := s.buildPrompt(ctx, userID, message)
	if err != nil {
		return dto.Error(err)
	}

	resp, err := s.gateway.Generate(ctx, &GenerateRequest{
		Model:             agent.Model,
		SystemInstruction: agent.SystemInstruction,
		Temperature:       s.cfg.Temperature,
		Messages:          []ChatMessage{{Role: models.RoleUser, Text: prompt}},
	})
	if err != nil {
		s.logger.Error("Report agent call failed", zap.Error(err))
		return dto.Error(err)
	}

	return dto.Response(&dto.ReportData{Report: resp.Text})
}

// buildPrompt tabulates expenses newest first and the current budget
// state, then appends the user's request.
func (s *ReportService) buildPrompt(ctx context.Context, userID uuid.UUID, message string) (string, error) {
	expenses, err := s.expenses.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	budgets, err := s.budgets.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}

	titles := make(map[uuid.UUID]string, len(budgets))
	for _, b := range budgets {
		titles[b.ID] = b.Title
	}

	var sb strings.Builder
	sb.WriteString("EXPENSES:\n")
	for _, e := range expenses {
		category := "No Category"
		if e.BudgetID != nil {
			if title, ok := titles[*e.BudgetID]; ok {
				category = title
			}
		}
		fmt.Fprintf(&sb, "- %s: %s (%s) - %s\n",
			e.Date.Format("2006-01-02"), e.ProductName, e.Amount, category)
	}

	sb.WriteString("\nBUDGETS:\n")
	for _, b := range budgets {
		fmt.Fprintf(&sb, "- %s: Budget %s, Spent %s\n", b.Title, b.Allocated, b.Spent)
	}

	fmt.Fprintf(&sb, "\nUser Request: %s", message)
	return sb.String(), nil
}
