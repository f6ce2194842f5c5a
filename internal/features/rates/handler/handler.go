package handler

import (
	"net/http"

	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/features/rates/domain"
	"postnet-delivery/internal/features/rates/ports"
	settings "postnet-delivery/internal/features/settings/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RatesHandler serves the rate rewriting hook.
type RatesHandler struct {
	rewriter ports.RateRewriter
	settings ports.SettingsReader
}

// NewRatesHandler creates a new RatesHandler.
func NewRatesHandler(rewriter ports.RateRewriter, settings ports.SettingsReader) *RatesHandler {
	return &RatesHandler{
		rewriter: rewriter,
		settings: settings,
	}
}

// RewriteRequest is the body of POST /shipping/rates.
type RewriteRequest struct {
	Rates   []domain.ShippingOption `json:"rates"`
	Package domain.Package          `json:"package"`
}

// RewriteResponse lists the rates to offer.
type RewriteResponse struct {
	Rates []domain.ShippingOption `json:"rates"`
}

// RewriteRates handles POST /shipping/rates.
// @Summary Rewrite shipping rates
// @Description Filters the PostNet rates by the enabled services and free shipping threshold and prices them for the package.
// @Tags Rates
// @Accept json
// @Produce json
// @Param request body RewriteRequest true "Rates and package"
// @Success 200 {object} RewriteResponse
// @Failure 400 {object} map[string]string
// @Security HostToken
// @Router /shipping/rates [post]
func (h *RatesHandler) RewriteRates(c *fiber.Ctx) error {
	var req RewriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx := c.UserContext()

	cfg, err := h.settings.Get(ctx)
	if err != nil {
		logger.Get().Error("Failed to load settings, using defaults", zap.Error(err))
		cfg = settings.Default()
	}

	for i := range req.Rates {
		req.Rates[i].Kind = domain.KindFromLabel(req.Rates[i].Label)
	}

	return c.Status(http.StatusOK).JSON(RewriteResponse{
		Rates: h.rewriter.Rewrite(ctx, cfg, req.Rates, req.Package),
	})
}
