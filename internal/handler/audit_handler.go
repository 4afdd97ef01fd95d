package handler

import (
	"ai-supportchat-be/internal/pkg/logger"
	"ai-supportchat-be/internal/pkg/serverutils"
	"ai-supportchat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuditHandler struct {
	audit  service.IAuditService
	logger logger.ILogger
}

func NewAuditHandler(audit service.IAuditService, log logger.ILogger) *AuditHandler {
	return &AuditHandler{
		audit:  audit,
		logger: log,
	}
}

// GetActions returns the most recent executed actions, newest first.
func (h *AuditHandler) GetActions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	entries := h.audit.Recent(limit)
	return c.JSON(serverutils.SuccessResponse("Audit entries retrieved", entries))
}

// GetLogs exposes the application log file for ops tooling.
func (h *AuditHandler) GetLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)
	level := c.Query("level")

	logs, err := h.logger.GetLogs(level, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"data":  logs,
		"limit": limit,
	})
}

// RegisterRoutes registers the audit routes.
func (h *AuditHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/actions", h.GetActions)
	router.Get("/logs", h.GetLogs)
}
