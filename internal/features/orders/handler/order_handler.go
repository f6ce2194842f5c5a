package handler

import (
	"errors"
	"net/http"
	"strconv"

	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/features/orders/domain"
	"postnet-delivery/internal/features/orders/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests related to orders.
type OrderHandler struct {
	// service is the OrderService instance.
	service ports.OrderService
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(s ports.OrderService) *OrderHandler {
	return &OrderHandler{
		service: s,
	}
}

// GetPostNetDetails handles the customer view of an order's courier details.
// @Summary Get PostNet details of an order
// @Description Destination store, waybill, tracking and label links for an order. The email must match the order's billing email.
// @Tags Orders
// @Produce json
// @Param id path int true "Order ID"
// @Param email query string true "Customer Email"
// @Success 200 {object} domain.PostNetDetails
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security HostToken
// @Router /orders/{id}/postnet [get]
func (h *OrderHandler) GetPostNetDetails(c *fiber.Ctx) error {
	rayID := rayID(c)

	orderID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || orderID <= 0 {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Order ID is required",
			RayID:   rayID,
		})
	}

	email := c.Query("email")
	if email == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Email is required",
			RayID:   rayID,
		})
	}

	details, err := h.service.PostNetDetails(c.UserContext(), orderID, email)
	if err != nil {
		return h.fail(c, orderID, rayID, err)
	}

	return c.Status(http.StatusOK).JSON(details)
}

// AdminGetPostNetDetails handles the store manager view of an order's courier details.
// @Summary Get PostNet details of an order (admin)
// @Tags Orders
// @Produce json
// @Security AdminToken
// @Param id path int true "Order ID"
// @Success 200 {object} domain.PostNetDetails
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/orders/{id}/postnet [get]
func (h *OrderHandler) AdminGetPostNetDetails(c *fiber.Ctx) error {
	rayID := rayID(c)

	orderID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || orderID <= 0 {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Order ID is required",
			RayID:   rayID,
		})
	}

	details, err := h.service.AdminPostNetDetails(c.UserContext(), orderID)
	if err != nil {
		return h.fail(c, orderID, rayID, err)
	}

	return c.Status(http.StatusOK).JSON(details)
}

func (h *OrderHandler) fail(c *fiber.Ctx, orderID int64, rayID string, err error) error {
	logger.Get().Error("Failed to fetch order",
		zap.Int64("order_id", orderID),
		zap.String("ray_id", rayID),
		zap.Error(err),
	)

	status := http.StatusInternalServerError
	msg := "Internal Server Error"

	if errors.Is(err, domain.ErrOrderNotFound) {
		status = http.StatusNotFound
		msg = "Order not found"
	} else if errors.Is(err, domain.ErrEmailMismatch) {
		status = http.StatusUnauthorized
		msg = "Email mismatch"
	}

	return c.Status(status).JSON(ErrorResponse{
		Message: msg,
		RayID:   rayID,
	})
}

func rayID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return "unknown"
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}
