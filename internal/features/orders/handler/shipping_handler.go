package handler

import (
	"net/http"

	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/core/security"
	"postnet-delivery/internal/features/orders/ports"
	rates "postnet-delivery/internal/features/rates/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ShippingHandler exposes the shipping zone setup.
type ShippingHandler struct {
	service ports.ShippingService
}

// NewShippingHandler creates a new ShippingHandler.
func NewShippingHandler(s ports.ShippingService) *ShippingHandler {
	return &ShippingHandler{service: s}
}

// ConfigureShipping handles POST /admin/shipping/configure.
// @Summary Configure shipping options
// @Description Creates the South Africa zone and its four PostNet flat rates when missing.
// @Tags Shipping
// @Produce json
// @Security AdminToken
// @Param _wpnonce formData string true "configure_shipping_options_nonce nonce"
// @Success 200 {object} security.AjaxResponse
// @Failure 403 {object} security.AjaxResponse
// @Failure 500 {object} security.AjaxResponse
// @Router /admin/shipping/configure [post]
func (h *ShippingHandler) ConfigureShipping(c *fiber.Ctx) error {
	result, err := h.service.ConfigureShipping(c.UserContext(), rates.Titles())
	if err != nil {
		logger.Get().Error("Failed to configure shipping options", zap.Error(err))
		return security.AjaxError(c, http.StatusInternalServerError, "Failed to configure shipping options.")
	}
	return security.AjaxSuccess(c, result)
}
