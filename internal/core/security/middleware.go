package security

import (
	"crypto/subtle"
	"errors"
	"slices"
	"strings"

	"postnet-delivery/internal/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	// NonceField is the form/JSON field carrying the nonce.
	NonceField = "security"
	// NonceHeader is an alternative carrier for the nonce.
	NonceHeader = "X-WP-Nonce"

	msgSecurityCheckFailed = "Security check failed."
	msgInsufficientPerms   = "You do not have sufficient permissions to access this page."
)

// AjaxResponse is the {success, data} envelope used by the ajax endpoints.
type AjaxResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// AjaxMessage is the data payload of a failed ajax response.
type AjaxMessage struct {
	Message string `json:"message"`
}

// AjaxError writes a failed envelope carrying message.
func AjaxError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(AjaxResponse{Success: false, Data: AjaxMessage{Message: message}})
}

// AjaxSuccess writes a successful envelope.
func AjaxSuccess(c *fiber.Ctx, data interface{}) error {
	return c.JSON(AjaxResponse{Success: true, Data: data})
}

// RequireNonce rejects requests whose nonce was not issued for action.
// The token is read from the X-WP-Nonce header, then the "security" and "_wpnonce"
// fields, then any extra field names given.
func RequireNonce(n *Nonces, action string, fields ...string) fiber.Handler {
	fields = append([]string{NonceField, "_wpnonce"}, fields...)
	return func(c *fiber.Ctx) error {
		token := extractNonce(c, fields)
		if err := n.Verify(c.UserContext(), action, token); err != nil {
			if !errors.Is(err, ErrInvalidNonce) {
				logger.Get().Error("Nonce verification failed", zap.String("action", action), zap.Error(err))
			}
			return AjaxError(c, fiber.StatusForbidden, msgSecurityCheckFailed)
		}
		return c.Next()
	}
}

func extractNonce(c *fiber.Ctx, fields []string) string {
	if v := c.Get(NonceHeader); v != "" {
		return v
	}

	var body map[string]interface{}
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEApplicationJSON) {
		_ = c.BodyParser(&body)
	}

	for _, f := range fields {
		if v := c.FormValue(f); v != "" {
			return v
		}
		if v, ok := body[f].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// RequireAdmin guards store-manager routes with a static bearer token.
func RequireAdmin(token string) fiber.Handler {
	return requireBearer(token, msgInsufficientPerms)
}

// RequireHost guards the hooks the shop host calls server to server
// (checkout validation, destination capture, order received). Browsers
// never hold this token.
func RequireHost(token string) fiber.Handler {
	return requireBearer(token, msgSecurityCheckFailed)
}

func requireBearer(token, message string) fiber.Handler {
	expected := []byte(token)
	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		given, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || len(expected) == 0 || subtle.ConstantTimeCompare([]byte(given), expected) != 1 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": message})
		}
		return c.Next()
	}
}

// NonceResponse is the data payload of an issued nonce.
type NonceResponse struct {
	Action string `json:"action"`
	Nonce  string `json:"nonce"`
}

// IssueNonce returns a handler minting nonces for the given actions, selected
// with the "action" query parameter. The first action is the default.
// @Summary Issue a nonce
// @Tags Security
// @Produce json
// @Param action query string false "Nonce action"
// @Success 200 {object} AjaxResponse
// @Failure 400 {object} AjaxResponse
// @Router /ajax/nonce [get]
func IssueNonce(n *Nonces, actions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		action := c.Query("action")
		if action == "" && len(actions) > 0 {
			action = actions[0]
		}
		if !slices.Contains(actions, action) {
			return AjaxError(c, fiber.StatusBadRequest, "Unknown nonce action.")
		}

		token, err := n.Create(c.UserContext(), action)
		if err != nil {
			logger.Get().Error("Failed to issue nonce", zap.String("action", action), zap.Error(err))
			return AjaxError(c, fiber.StatusInternalServerError, "Internal Server Error")
		}
		return AjaxSuccess(c, NonceResponse{Action: action, Nonce: token})
	}
}
