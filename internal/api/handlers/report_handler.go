package handlers

import (
	"aion/internal/dto"
	"aion/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reportService *service.ReportService
	logger        *zap.Logger
}

func NewReportHandler(reportService *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// GenerateReport godoc
// @Summary Generate a financial report
// @Description Run the report agent over the user's budgets and expenses
// @Tags reports
// @Accept json
// @Produce json
// @Param request body dto.ReportRequest true "Report request"
// @Success 200 {object} dto.Result
// @Router /api/v1/reports [post]
func (h *ReportHandler) GenerateReport(c *fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return err
	}

	var req dto.ReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	result := h.reportService.Generate(c.Context(), userID, req.Message)
	return renderResult(c, result)
}
