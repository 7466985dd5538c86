package http

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/correction-backoffice/internal/application/billing"
	"github.com/jhoicas/correction-backoffice/internal/application/dto"
	"github.com/jhoicas/correction-backoffice/internal/domain"
	"github.com/jhoicas/correction-backoffice/internal/domain/entity"
	"github.com/jhoicas/correction-backoffice/pkg/logger"
)

const (
	msgPDFFailed      = "Failed to generate invoice PDF"
	msgDownloadFailed = "Failed to download invoice PDF"

	downloadCacheControl = "private, max-age=3600"
)

// InvoiceHandler maneja las peticiones HTTP de facturas del back-office (solo admin).
type InvoiceHandler struct {
	uc  *billing.InvoicePDFUseCase
	log *logger.Logger
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoicePDFUseCase, log *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, log: log.Component("invoice_http")}
}

// GetByID godoc
// @Summary      Detalle de factura
// @Tags         factures
// @Produce      json
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/factures/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	inv, err := h.uc.GetInvoice(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "Failed to load invoice")
	}
	return c.JSON(toInvoiceResponse(inv))
}

// PDF godoc
// @Summary      PDF de la factura (navegador)
// @Description  302 hacia una URL firmada si el PDF ya está almacenado; si no, lo genera y lo devuelve.
// @Tags         factures
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200
// @Success      302
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/admin/factures/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	res, err := h.uc.DeliverPDF(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return h.fail(c, err, msgPDFFailed)
	}
	if res.IsRedirect() {
		return c.Redirect(res.RedirectURL, fiber.StatusFound)
	}
	return sendPDF(c, res)
}

// Download godoc
// @Summary      Descarga directa del PDF
// @Tags         factures
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/admin/factures/{id}/download [get]
func (h *InvoiceHandler) Download(c *fiber.Ctx) error {
	res, err := h.uc.DownloadPDF(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return h.fail(c, err, msgDownloadFailed)
	}
	c.Set(fiber.HeaderCacheControl, downloadCacheControl)
	return sendPDF(c, res)
}

// Regenerate godoc
// @Summary      Regenerar el PDF aunque exista
// @Tags         factures
// @Produce      json
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {object}  dto.PdfURLResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/admin/factures/{id}/regenerate [post]
func (h *InvoiceHandler) Regenerate(c *fiber.Ctx) error {
	signed, err := h.uc.Regenerate(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return h.fail(c, err, msgPDFFailed)
	}
	return c.JSON(dto.PdfURLResponse{PdfURL: signed})
}

func (h *InvoiceHandler) fail(c *fiber.Ctx, err error, msg string) error {
	if !errors.Is(err, domain.ErrNotFound) {
		h.log.Error().Err(err).Str("invoice_id", c.Params("id")).Str("path", c.Path()).Msg(msg)
	}
	return respondError(c, err, msg)
}

// sendPDF escribe los bytes como adjunto descargable.
func sendPDF(c *fiber.Ctx, res *billing.PDFResult) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+res.FileName+`"`)
	c.Set(fiber.HeaderContentLength, strconv.Itoa(len(res.Content)))
	return c.Status(fiber.StatusOK).Send(res.Content)
}

func toInvoiceResponse(inv *entity.Invoice) dto.InvoiceResponse {
	return dto.InvoiceResponse{
		ID:          inv.ID,
		Number:      inv.Number,
		Amount:      inv.Amount,
		TaxAmount:   inv.TaxAmount,
		NetAmount:   inv.NetAmount(),
		IssuedAt:    inv.IssueDate(),
		DueAt:       inv.DueAt,
		PdfURL:      inv.PdfURL,
		OrderID:     inv.Order.ID,
		OrderTitle:  inv.Order.Title,
		ClientName:  inv.Order.Client.FullName(),
		ClientEmail: inv.Order.Client.Email,
	}
}
