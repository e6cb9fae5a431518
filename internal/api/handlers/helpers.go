package handlers

import (
	"aion/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// userIDFromCtx reads the authenticated user id set by the auth
// middleware.
func userIDFromCtx(c *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := c.Locals("userID").(string)
	if !ok || raw == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Missing user identity")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid user identity")
	}
	return id, nil
}

// renderResult maps an agent Result to an HTTP response: success and
// response payloads are 200, error results are 500.
func renderResult(c *fiber.Ctx, result *dto.Result) error {
	status := fiber.StatusOK
	if result.Type == dto.ResultError {
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(result)
}
