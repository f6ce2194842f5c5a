package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/features/fees/domain"
	"postnet-delivery/internal/features/fees/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	// UploadField is the multipart field carrying the fee CSV.
	UploadField    = "postnet_delivery_csv"
	exportFilename = "woocommerce-products.csv"
)

// FeeHandler handles the product fee administration endpoints.
type FeeHandler struct {
	service ports.FeeService
}

// NewFeeHandler creates a new FeeHandler.
func NewFeeHandler(service ports.FeeService) *FeeHandler {
	return &FeeHandler{service: service}
}

// UpdateFeesRequest is the body of PUT /admin/products/{id}/fees.
type UpdateFeesRequest struct {
	Fees ports.FeeUpdate `json:"fees"`
}

// GetProductFees handles GET /admin/products/:id/fees.
// @Summary Get product fees
// @Tags Fees
// @Produce json
// @Security AdminToken
// @Param id path int true "Product ID"
// @Success 200 {object} domain.ProductFees
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/products/{id}/fees [get]
func (h *FeeHandler) GetProductFees(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product id"})
	}

	rec, err := h.service.ProductFees(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rec)
}

// UpdateProductFees handles PUT /admin/products/:id/fees.
// @Summary Update product fees
// @Description Sets or clears (null) per-product fees for enabled service types.
// @Tags Fees
// @Accept json
// @Produce json
// @Security AdminToken
// @Param id path int true "Product ID"
// @Param request body UpdateFeesRequest true "Fees by service type"
// @Success 200 {object} domain.ProductFees
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /admin/products/{id}/fees [put]
func (h *FeeHandler) UpdateProductFees(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product id"})
	}

	var req UpdateFeesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	rec, err := h.service.UpdateProductFees(c.UserContext(), id, req.Fees)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rec)
}

// ExportFees handles GET /admin/fees/export.
// @Summary Export product fees
// @Tags Fees
// @Produce text/csv
// @Security AdminToken
// @Success 200 {file} file
// @Failure 500 {object} map[string]string
// @Router /admin/fees/export [get]
func (h *FeeHandler) ExportFees(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.Export(c.UserContext(), &buf); err != nil {
		logger.Get().Error("Failed to export fees", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+exportFilename+`"`)
	return c.Send(buf.Bytes())
}

// ImportFees handles POST /admin/fees/import.
// @Summary Import product fees
// @Description Replaces the fees of every product in the uploaded CSV. A header mismatch or malformed row rejects the whole file.
// @Tags Fees
// @Accept multipart/form-data
// @Produce json
// @Security AdminToken
// @Param postnet_delivery_csv formData file true "Fee CSV"
// @Param postnet_delivery_nonce formData string true "postnet_delivery_action nonce"
// @Success 200 {object} ports.ImportResult
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /admin/fees/import [post]
func (h *FeeHandler) ImportFees(c *fiber.Ctx) error {
	fh, err := c.FormFile(UploadField)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Please upload a CSV file."})
	}

	f, err := fh.Open()
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Could not read the uploaded file."})
	}
	defer f.Close()

	result, err := h.service.Import(c.UserContext(), f)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(result)
}

func (h *FeeHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	case errors.Is(err, domain.ErrHeaderMismatch),
		errors.Is(err, domain.ErrMalformedRow),
		errors.Is(err, domain.ErrNegativeFee),
		errors.Is(err, domain.ErrServiceNotEnabled):
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	logger.Get().Error("Fee request failed", zap.Error(err))
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}
