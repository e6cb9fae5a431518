package handlers

import (
	"aion/internal/dto"
	"aion/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ExpenseHandler struct {
	expenseService *service.ExpenseService
	logger         *zap.Logger
}

func NewExpenseHandler(expenseService *service.ExpenseService, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		logger:         logger,
	}
}

// ListExpenses godoc
// @Summary List expenses
// @Description List the user's expenses newest first with resolved categories
// @Tags expenses
// @Produce json
// @Success 200 {array} dto.ExpenseListItem
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) ListExpenses(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	expenses, err := h.expenseService.List(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list expenses", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list expenses",
		})
	}

	return c.JSON(expenses)
}

// ProcessExpenses godoc
// @Summary Process expenses
// @Description Extract expenses from a message plus optional receipt file, or record a manual entry
// @Tags expenses
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param request body dto.ProcessExpenseRequest false "Expense submission"
// @Param file formData file false "Receipt image or PDF"
// @Success 200 {object} dto.Result
// @Router /api/v1/expenses/process [post]
func (h *ExpenseHandler) ProcessExpenses(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	var req dto.ProcessExpenseRequest
	var file *service.FilePayload

	if fileHeader, err := c.FormFile("file"); err == nil {
		req.Message = c.FormValue("message")
		if raw := c.FormValue("amount"); raw != "" {
			amount, err := decimal.NewFromString(raw)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid amount",
				})
			}
			req.Manual = &dto.ManualExpense{
				Amount:      amount,
				ProductName: c.FormValue("product_name"),
				Description: c.FormValue("description"),
				BudgetID:    c.FormValue("budget_id"),
			}
		}

		opened, err := fileHeader.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to read uploaded file",
			})
		}
		defer opened.Close()

		file = &service.FilePayload{
			Reader:      opened,
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
		}
	} else if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result := h.expenseService.Process(c.Context(), userID, req.Message, file, req.Manual)
	return renderResult(c, result)
}
