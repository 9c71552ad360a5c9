package handlers

import (
	"fmt"
	"net/http"

	"acta/internal/common"
	"acta/internal/services"

	"github.com/labstack/echo/v4"
)

const mimeApplicationPDF = "application/pdf"

// InvoiceHandlers handles HTTP requests for invoices
type InvoiceHandlers struct {
	invoiceService services.InvoiceService
	pdfService     services.PDFService
}

func NewInvoiceHandlers(invoiceService services.InvoiceService, pdfService services.PDFService) *InvoiceHandlers {
	return &InvoiceHandlers{
		invoiceService: invoiceService,
		pdfService:     pdfService,
	}
}

// CreateInvoice creates an invoice with its items. Totals and the due date
// are always computed server side.
func (h *InvoiceHandlers) CreateInvoice(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}

	var req services.InvoiceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendError(c, err)
	}

	invoice, err := h.invoiceService.Create(c.Request().Context(), p, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, invoice)
}

func (h *InvoiceHandlers) ListInvoices(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	tenantID := scopedTenant(c)
	page, err := common.ParsePageRequest(c)
	if err != nil {
		return common.SendError(c, err)
	}

	invoices, err := h.invoiceService.List(c.Request().Context(), p, tenantID, page)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, invoices)
}

// ListCompanyInvoices lists invoices the company issued or received.
func (h *InvoiceHandlers) ListCompanyInvoices(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	companyID, err := pathID(c, "companyId")
	if err != nil {
		return common.SendError(c, err)
	}
	page, err := common.ParsePageRequest(c)
	if err != nil {
		return common.SendError(c, err)
	}

	invoices, err := h.invoiceService.ListByCompany(c.Request().Context(), p, companyID, page)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandlers) GetInvoice(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	invoice, err := h.invoiceService.Get(c.Request().Context(), p, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// InvoicePDF streams the rendered invoice as an attachment.
func (h *InvoiceHandlers) InvoicePDF(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	doc, err := h.pdfService.InvoicePDF(c.Request().Context(), p, id)
	if err != nil {
		return common.SendError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.Filename))
	return c.Blob(http.StatusOK, mimeApplicationPDF, doc.Content)
}

func (h *InvoiceHandlers) DeleteInvoice(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.invoiceService.Delete(c.Request().Context(), p, id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
