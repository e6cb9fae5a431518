package handlers

import (
	"aion/internal/dto"
	"aion/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BudgetHandler struct {
	budgetService *service.BudgetService
	logger        *zap.Logger
}

func NewBudgetHandler(budgetService *service.BudgetService, logger *zap.Logger) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		logger:        logger,
	}
}

// ListBudgets godoc
// @Summary List budgets
// @Description List the user's budgets ordered by title
// @Tags budgets
// @Produce json
// @Success 200 {array} dto.BudgetResponse
// @Router /api/v1/budgets [get]
func (h *BudgetHandler) ListBudgets(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	budgets, err := h.budgetService.List(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list budgets", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list budgets",
		})
	}

	return c.JSON(budgets)
}

// CreateBudget godoc
// @Summary Create a budget
// @Description Create a budget category manually
// @Tags budgets
// @Accept json
// @Produce json
// @Param request body dto.CreateBudgetRequest true "Budget"
// @Success 201 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/budgets [post]
func (h *BudgetHandler) CreateBudget(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	var req dto.CreateBudgetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}

	budget, err := h.budgetService.Create(c.Context(), userID, &req)
	if err != nil {
		if err == service.ErrBudgetExists {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Budget with this title already exists",
			})
		}
		h.logger.Error("Failed to create budget", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create budget",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(budget)
}

// GenerateBudgets godoc
// @Summary Generate budgets
// @Description Run the budget agent against the user's message and merge the proposals
// @Tags budgets
// @Accept json
// @Produce json
// @Param request body dto.GenerateBudgetsRequest true "Generation request"
// @Success 200 {object} dto.Result
// @Router /api/v1/budgets/generate [post]
func (h *BudgetHandler) GenerateBudgets(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	var req dto.GenerateBudgetsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result := h.budgetService.Generate(c.Context(), userID, req.Message)
	return renderResult(c, result)
}

// UpdateBudget godoc
// @Summary Update a budget
// @Description Change the allocated or spent amount and let the budget agent react
// @Tags budgets
// @Accept json
// @Produce json
// @Param id path string true "Budget ID"
// @Param request body dto.UpdateBudgetRequest true "Fields to update"
// @Success 200 {object} dto.Result
// @Failure 404 {object} map[string]string
// @Router /api/v1/budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid budget id",
		})
	}

	var req dto.UpdateBudgetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Allocated == nil && req.Spent == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No fields to update",
		})
	}
	if (req.Allocated != nil && req.Allocated.IsNegative()) ||
		(req.Spent != nil && req.Spent.IsNegative()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Amounts must not be negative",
		})
	}

	result, err := h.budgetService.ApplyUpdate(c.Context(), userID, id, &req)
	if err != nil {
		if err == service.ErrBudgetNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Budget not found",
			})
		}
		h.logger.Error("Failed to update budget", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update budget",
		})
	}

	return renderResult(c, result)
}

// DeleteBudget godoc
// @Summary Delete a budget
// @Description Delete a budget and let the budget agent rebalance the rest
// @Tags budgets
// @Produce json
// @Param id path string true "Budget ID"
// @Success 200 {object} dto.Result
// @Failure 404 {object} map[string]string
// @Router /api/v1/budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid budget id",
		})
	}

	result, err := h.budgetService.Delete(c.Context(), userID, id)
	if err != nil {
		if err == service.ErrBudgetNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Budget not found",
			})
		}
		h.logger.Error("Failed to delete budget", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete budget",
		})
	}

	return renderResult(c, result)
}
