package handlers

import (
	"errors"
	"strings"

	"github.com/fragbox/backend/internal/core/ports"
	"github.com/fragbox/backend/internal/core/services"
	"github.com/fragbox/backend/internal/infrastructure/logger"
	"github.com/fragbox/backend/internal/transport/http/dto"
	"github.com/gofiber/fiber/v2"
)

type SettingHandler struct {
	service ports.SystemSettingService
	logger  *logger.Logger
}

func NewSettingHandler(service ports.SystemSettingService, logger *logger.Logger) *SettingHandler {
	return &SettingHandler{service: service, logger: logger}
}

func (h *SettingHandler) UpdateSandboxKey(c *fiber.Ctx) error {
	var req dto.UpdateSandboxKeyRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("setting_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
		})
	}

	if err := h.service.SetSandboxAPIKey(c.Context(), req.APIKey); err != nil {
		if errors.Is(err, services.ErrSettingValueRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: err.Error(),
			})
		}
		h.logger.Errorw("setting_update_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to update sandbox API key",
		})
	}

	h.logger.Infow("setting_sandbox_key_updated")
	return c.JSON(fiber.Map{"success": true})
}

// GetSandboxKeyStatus reports whether a provider key is stored without ever
// returning the key itself. A masked suffix helps operators tell keys apart.
func (h *SettingHandler) GetSandboxKeyStatus(c *fiber.Ctx) error {
	key, err := h.service.GetSandboxAPIKey(c.Context())
	if err != nil {
		h.logger.Errorw("setting_get_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to fetch sandbox API key",
		})
	}

	masked := ""
	if key != "" {
		if len(key) > 4 {
			masked = strings.Repeat("*", 8) + key[len(key)-4:]
		} else {
			masked = strings.Repeat("*", 8)
		}
	}

	return c.JSON(fiber.Map{
		"configured": key != "",
		"masked_key": masked,
	})
}
