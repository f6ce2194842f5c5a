package handler

import (
	"errors"
	"net/http"

	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/features/settings/domain"
	"postnet-delivery/internal/features/settings/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SettingsHandler handles HTTP requests for the merchant settings.
type SettingsHandler struct {
	service ports.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(service ports.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		service: service,
	}
}

// GetSettings handles GET /admin/settings.
// @Summary Get delivery settings
// @Description Returns the merchant's PostNet delivery configuration.
// @Tags Settings
// @Produce json
// @Security AdminToken
// @Success 200 {object} domain.Settings
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/settings [get]
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.service.Get(c.UserContext())
	if err != nil {
		logger.Get().Error("Failed to get settings", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.Status(http.StatusOK).JSON(settings)
}

// SaveSettings handles PUT /admin/settings.
// @Summary Save delivery settings
// @Description Sanitises and stores the merchant's PostNet delivery configuration.
// @Tags Settings
// @Accept json
// @Produce json
// @Security AdminToken
// @Param settings body domain.Input true "Settings form"
// @Success 200 {object} domain.Settings
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/settings [put]
func (h *SettingsHandler) SaveSettings(c *fiber.Ctx) error {
	var in domain.Input
	if err := c.BodyParser(&in); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	settings, err := h.service.Save(c.UserContext(), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSettings) {
			return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		logger.Get().Error("Failed to save settings", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.Status(http.StatusOK).JSON(settings)
}
