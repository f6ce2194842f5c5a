package handler

import (
	"errors"
	"net/http"
	"strconv"

	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/features/dispatch/domain"
	"postnet-delivery/internal/features/dispatch/ports"
	orders "postnet-delivery/internal/features/orders/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DispatchHandler serves the order-received hook.
type DispatchHandler struct {
	dispatcher ports.OrderDispatcher
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(d ports.OrderDispatcher) *DispatchHandler {
	return &DispatchHandler{dispatcher: d}
}

// ReceivedRequest identifies the checkout the order came from.
type ReceivedRequest struct {
	SessionID string `json:"session_id" form:"session_id"`
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	Message string `json:"message"`
	RayID   string `json:"ray_id"`
}

// OrderReceived dispatches a store-to-store order to the courier.
// @Summary Order received hook
// @Description Submits store-to-store orders to PostNet and stores the waybill, tracking and label links on the order. Courier failures still answer 200 with dispatched=false.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body ReceivedRequest false "Checkout session"
// @Success 200 {object} domain.Outcome
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security HostToken
// @Router /orders/{id}/received [post]
func (h *DispatchHandler) OrderReceived(c *fiber.Ctx) error {
	rayID := rayID(c)

	orderID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || orderID <= 0 {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Message: "Order ID is required", RayID: rayID})
	}

	var req ReceivedRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Message: "Invalid request body", RayID: rayID})
		}
	}

	outcome, err := h.dispatcher.HandleOrderReceived(c.UserContext(), orderID, req.SessionID)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			return c.Status(http.StatusNotFound).JSON(ErrorResponse{Message: "Order not found", RayID: rayID})
		}
		logger.Get().Error("Order received hook failed",
			zap.Int64("order_id", orderID),
			zap.String("ray_id", rayID),
			zap.Error(err),
		)
		if outcome == nil {
			outcome = &domain.Outcome{OrderID: orderID}
		}
	}

	return c.Status(http.StatusOK).JSON(outcome)
}

func rayID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return "unknown"
}
