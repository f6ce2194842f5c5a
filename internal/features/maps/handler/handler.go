package handler

import (
	"net/http"
	"strings"

	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/features/maps/domain"
	"postnet-delivery/internal/features/maps/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MapsHandler serves the maps API key check of the settings page.
type MapsHandler struct {
	validator ports.KeyValidator
}

// NewMapsHandler creates a new MapsHandler.
func NewMapsHandler(v ports.KeyValidator) *MapsHandler {
	return &MapsHandler{validator: v}
}

type validateRequest struct {
	APIKey string `json:"api_key" form:"api_key"`
}

// ValidateKey handles the wc_postnet_delivery_validate_google_api_key action.
// @Summary Validate a Google Maps API key
// @Tags Settings
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Security AdminToken
// @Param security formData string true "validate_google_api_key_nonce nonce"
// @Param api_key formData string true "API key"
// @Success 200 {object} domain.KeyValidation
// @Failure 403 {object} security.AjaxResponse
// @Router /ajax/wc_postnet_delivery_validate_google_api_key [post]
func (h *MapsHandler) ValidateKey(c *fiber.Ctx) error {
	var req validateRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.APIKey) == "" {
		return c.Status(http.StatusOK).JSON(domain.KeyValidation{Valid: false, Message: "API key is required."})
	}

	result, err := h.validator.ValidateKey(c.UserContext(), strings.TrimSpace(req.APIKey))
	if err != nil {
		logger.Get().Error("Failed to validate maps API key", zap.Error(err))
		return c.Status(http.StatusOK).JSON(domain.KeyValidation{Valid: false, Message: "Could not reach the Google Maps API."})
	}

	return c.JSON(result)
}
