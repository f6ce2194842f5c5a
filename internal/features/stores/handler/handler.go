package handler

import (
	"errors"
	"net/http"

	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/core/security"
	"postnet-delivery/internal/features/stores/domain"
	"postnet-delivery/internal/features/stores/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StoreHandler serves the store selection ajax actions.
type StoreHandler struct {
	service ports.StoreService
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(service ports.StoreService) *StoreHandler {
	return &StoreHandler{service: service}
}

type detailsRequest struct {
	StoreCode string `json:"store_code" form:"store_code"`
}

// ListStores handles the wc_postnet_delivery_stores action.
// @Summary List PostNet stores
// @Description Stores near the shipping address, or every store when the address is incomplete or the locator fails.
// @Tags Stores
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param security formData string true "wc_postnet_delivery_nonce nonce"
// @Param shipping_address_1 formData string false "Street"
// @Param shipping_city formData string false "City"
// @Param shipping_postcode formData string false "Postcode"
// @Success 200 {object} security.AjaxResponse
// @Failure 403 {object} security.AjaxResponse
// @Router /ajax/wc_postnet_delivery_stores [post]
func (h *StoreHandler) ListStores(c *fiber.Ctx) error {
	var address domain.Address
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&address); err != nil {
			return security.AjaxError(c, http.StatusBadRequest, "Invalid request.")
		}
	}

	stores, err := h.service.ListStores(c.UserContext(), address)
	if err != nil {
		logger.Get().Error("Failed to fetch stores", zap.Error(err))
		return security.AjaxError(c, http.StatusOK, "Error fetching stores data")
	}
	if stores == nil {
		stores = []domain.Store{}
	}

	return security.AjaxSuccess(c, stores)
}

// StoreDetails handles the wc_postnet_delivery_store_details action.
// @Summary Get PostNet store details
// @Tags Stores
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param security formData string true "wc_postnet_delivery_nonce nonce"
// @Param store_code formData string true "Store code"
// @Success 200 {object} security.AjaxResponse
// @Failure 403 {object} security.AjaxResponse
// @Router /ajax/wc_postnet_delivery_store_details [post]
func (h *StoreHandler) StoreDetails(c *fiber.Ctx) error {
	var req detailsRequest
	if err := c.BodyParser(&req); err != nil || req.StoreCode == "" {
		return security.AjaxError(c, http.StatusOK, "Store code is required.")
	}

	detail, err := h.service.StoreDetails(c.UserContext(), req.StoreCode)
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			return security.AjaxError(c, http.StatusOK, "Store not found.")
		}
		logger.Get().Error("Failed to fetch store details", zap.String("store_code", req.StoreCode), zap.Error(err))
		return security.AjaxError(c, http.StatusOK, "Error fetching store details")
	}

	return security.AjaxSuccess(c, detail)
}
