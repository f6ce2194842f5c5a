package handler

import (
	"errors"
	"net/http"
	"strconv"

	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/features/checkout/domain"
	"postnet-delivery/internal/features/checkout/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CheckoutHandler handles the store selection and checkout hook requests.
type CheckoutHandler struct {
	service ports.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(s ports.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: s}
}

// SessionResponse is a checkout session plus the hidden field value to echo.
type SessionResponse struct {
	Session          *domain.Session `json:"session"`
	DestinationStore string          `json:"destination_store"`
}

// SelectMethodRequest reports the active shipping radio.
type SelectMethodRequest struct {
	ChosenMethod string `json:"chosen_method"`
	Label        string `json:"label"`
}

// ValidationResponse lists the notices blocking the checkout.
type ValidationResponse struct {
	Valid   bool     `json:"valid"`
	Notices []string `json:"notices"`
}

// CaptureResponse reports whether a destination store was written to the order.
type CaptureResponse struct {
	Captured         bool   `json:"captured"`
	DestinationStore string `json:"destination_store,omitempty"`
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	Message string `json:"message"`
	RayID   string `json:"ray_id"`
}

// CreateSession starts a checkout session.
// @Summary Start a checkout session
// @Tags Checkout
// @Produce json
// @Success 201 {object} SessionResponse
// @Router /checkout/sessions [post]
func (h *CheckoutHandler) CreateSession(c *fiber.Ctx) error {
	session, err := h.service.CreateSession(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(respond(session))
}

// GetSession returns a checkout session.
// @Summary Get a checkout session
// @Tags Checkout
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SessionResponse
// @Failure 404 {object} ErrorResponse
// @Router /checkout/sessions/{id} [get]
func (h *CheckoutHandler) GetSession(c *fiber.Ctx) error {
	session, err := h.service.GetSession(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(respond(session))
}

// SelectMethod records the active shipping method.
// @Summary Report the active shipping method
// @Tags Checkout
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body SelectMethodRequest true "Chosen rate id"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /checkout/sessions/{id}/method [put]
func (h *CheckoutHandler) SelectMethod(c *fiber.Ctx) error {
	var req SelectMethodRequest
	if err := c.BodyParser(&req); err != nil || req.ChosenMethod == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Message: "chosen_method is required", RayID: rayID(c)})
	}

	session, err := h.service.SelectMethod(c.UserContext(), c.Params("id"), req.ChosenMethod, req.Label)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(respond(session))
}

// ChooseStore records the destination store and sets the selection cookie.
// @Summary Choose the destination store
// @Tags Checkout
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body domain.DestinationSelection true "Store"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /checkout/sessions/{id}/store [put]
func (h *CheckoutHandler) ChooseStore(c *fiber.Ctx) error {
	var sel domain.DestinationSelection
	if err := c.BodyParser(&sel); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Message: "Invalid request body", RayID: rayID(c)})
	}

	session, err := h.service.ChooseStore(c.UserContext(), c.Params("id"), sel)
	if err != nil {
		return h.fail(c, err)
	}

	if chosen, ok := session.Destination(); ok {
		c.Cookie(&fiber.Cookie{
			Name:   domain.CookieName,
			Value:  chosen.CookieValue(),
			Path:   "/",
			MaxAge: domain.CookieMaxAge,
		})
	}
	return c.JSON(respond(session))
}

// Validate is the checkout-process hook.
// @Summary Validate a checkout
// @Description Rejects a store-to-store checkout without a destination store.
// @Tags Checkout
// @Accept json
// @Produce json
// @Param request body ports.ValidateRequest true "Checkout state"
// @Success 200 {object} ValidationResponse
// @Failure 422 {object} ValidationResponse
// @Security HostToken
// @Router /checkout/validate [post]
func (h *CheckoutHandler) Validate(c *fiber.Ctx) error {
	var req ports.ValidateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Message: "Invalid request body", RayID: rayID(c)})
		}
	}
	req.Cookie = c.Cookies(domain.CookieName)

	if err := h.service.Validate(c.UserContext(), req); err != nil {
		if errors.Is(err, domain.ErrDestinationRequired) {
			return c.Status(http.StatusUnprocessableEntity).JSON(ValidationResponse{
				Valid:   false,
				Notices: []string{domain.RequiredNotice},
			})
		}
		return h.fail(c, err)
	}

	return c.JSON(ValidationResponse{Valid: true, Notices: []string{}})
}

// CaptureDestination is the order-created hook.
// @Summary Store the destination store on a new order
// @Tags Checkout
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body ports.CaptureRequest true "Destination sources"
// @Success 200 {object} CaptureResponse
// @Failure 400 {object} ErrorResponse
// @Security HostToken
// @Router /checkout/orders/{id}/destination [post]
func (h *CheckoutHandler) CaptureDestination(c *fiber.Ctx) error {
	orderID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || orderID <= 0 {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Message: "Order ID is required", RayID: rayID(c)})
	}

	var req ports.CaptureRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Message: "Invalid request body", RayID: rayID(c)})
		}
	}
	req.Cookie = c.Cookies(domain.CookieName)

	sel, ok, err := h.service.CaptureDestination(c.UserContext(), orderID, req)
	if err != nil {
		return h.fail(c, err)
	}

	resp := CaptureResponse{Captured: ok}
	if ok {
		resp.DestinationStore = sel.Encode()
	}
	return c.JSON(resp)
}

func (h *CheckoutHandler) fail(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	msg := "Internal Server Error"

	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status, msg = http.StatusNotFound, "Checkout session not found"
	case errors.Is(err, domain.ErrSelectorHidden):
		status, msg = http.StatusConflict, "Store selection is only available for PostNet to PostNet"
	case errors.Is(err, domain.ErrInvalidSelection):
		status, msg = http.StatusBadRequest, "Store code is required"
	default:
		logger.Get().Error("Checkout request failed", zap.String("ray_id", rayID(c)), zap.Error(err))
	}

	return c.Status(status).JSON(ErrorResponse{Message: msg, RayID: rayID(c)})
}

func respond(s *domain.Session) SessionResponse {
	resp := SessionResponse{Session: s}
	if sel, ok := s.Destination(); ok && s.State.SelectorShown() {
		resp.DestinationStore = sel.Encode()
	}
	return resp
}

func rayID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return "unknown"
}
