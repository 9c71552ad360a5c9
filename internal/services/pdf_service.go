package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"acta/internal/caching"
	"acta/internal/common"
	"acta/internal/logger"
	"acta/internal/metrics"
	"acta/internal/models"
	"acta/internal/storage"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// PDFService renders invoices. Renders are bounded by a weighted semaphore
// and results are cached by invoice id and party revision.
type PDFService interface {
	InvoicePDF(ctx context.Context, p models.Principal, id uuid.UUID) (*InvoiceDocument, error)
}

type InvoiceDocument struct {
	Filename string
	Content  []byte
}

type pdfService struct {
	invoices InvoiceService
	store    storage.ObjectStore
	cacheSvc caching.CacheService
	sem      *semaphore.Weighted
	cacheTTL time.Duration
}

func NewPDFService(invoices InvoiceService, store storage.ObjectStore, cacheSvc caching.CacheService, maxConcurrent int64, cacheTTL time.Duration) PDFService {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &pdfService{
		invoices: invoices,
		store:    store,
		cacheSvc: cacheSvc,
		sem:      semaphore.NewWeighted(maxConcurrent),
		cacheTTL: cacheTTL,
	}
}

func (s *pdfService) InvoicePDF(ctx context.Context, p models.Principal, id uuid.UUID) (*InvoiceDocument, error) {
	// Authorization happens here, before any cached bytes are returned.
	invoice, err := s.invoices.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	filename := invoice.InvoiceNumber + ".pdf"
	revision := pdfRevision(invoice)
	log := logger.FromContext(ctx)

	if s.cacheSvc != nil {
		cached, err := s.cacheSvc.GetInvoicePDF(ctx, id, revision)
		if err != nil {
			log.Warn("pdf cache lookup failed", zap.Error(err))
		} else if cached != nil {
			metrics.PDFCacheResults.WithLabelValues("hit").Inc()
			return &InvoiceDocument{Filename: filename, Content: cached}, nil
		}
		metrics.PDFCacheResults.WithLabelValues("miss").Inc()
	}

	var logo *LogoImage
	if invoice.Issuer != nil && invoice.Issuer.Logo != nil && s.store != nil {
		data, err := s.store.Get(ctx, *invoice.Issuer.Logo)
		if err != nil {
			log.Warn("issuer logo unavailable, rendering without it", zap.String("object", *invoice.Issuer.Logo), zap.Error(err))
		} else {
			logo = &LogoImage{Name: *invoice.Issuer.Logo, Data: data}
		}
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, common.NewInternalError("wait for pdf renderer", err)
	}
	metrics.PDFRendersInFlight.Inc()
	start := time.Now()
	content, err := RenderInvoicePDF(invoice, logo)
	metrics.PDFRenderDuration.Observe(time.Since(start).Seconds())
	metrics.PDFRendersInFlight.Dec()
	s.sem.Release(1)
	if err != nil {
		return nil, common.NewInternalError("render invoice pdf", err)
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.SetInvoicePDF(ctx, id, revision, content, s.cacheTTL); err != nil {
			log.Warn("pdf cache store failed", zap.Error(err))
		}
	}
	return &InvoiceDocument{Filename: filename, Content: content}, nil
}

// pdfRevision identifies the state of both parties a render was made from.
// Company edits and logo changes bump updated_at and with it the revision.
func pdfRevision(invoice *models.Invoice) string {
	stamp := func(c *models.Company) int64 {
		if c == nil || c.UpdatedAt.IsZero() {
			return 0
		}
		return c.UpdatedAt.UnixMilli()
	}
	return fmt.Sprintf("%d-%d", stamp(invoice.Issuer), stamp(invoice.Recipient))
}

// LogoImage is an issuer logo to embed; Name carries the file extension.
type LogoImage struct {
	Name string
	Data []byte
}

func (l *LogoImage) imageType() string {
	switch strings.ToLower(filepath.Ext(l.Name)) {
	case ".png":
		return "PNG"
	default:
		return "JPG"
	}
}

const (
	pdfMarginX = 15.0
	pdfMarginY = 15.0
)

// RenderInvoicePDF lays out an A4 invoice: parties, line table and totals.
func RenderInvoicePDF(invoice *models.Invoice, logo *LogoImage) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(pdfMarginX, pdfMarginY, pdfMarginX)
	pdf.SetAutoPageBreak(true, pdfMarginY)
	pdf.AddPage()

	if logo != nil {
		opts := gofpdf.ImageOptions{ImageType: logo.imageType(), ReadDpi: true}
		pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(logo.Data))
		if pdf.Ok() {
			pdf.ImageOptions("logo", 160, pdfMarginY, 35, 0, false, opts, 0, "")
		} else {
			// A corrupt logo should not cost the whole document.
			pdf.ClearError()
		}
	}

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(pdfMarginX, pdfMarginY)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Invoice number: %s", invoice.InvoiceNumber)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Issue date: %s", invoice.IssueDate.Format("02.01.2006")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Due date: %s", invoice.DueDate.Format("02.01.2006")))
	pdf.Ln(10)

	writeParties(pdf, tr, invoice.Issuer, invoice.Recipient)

	headers := []string{"Article", "Unit", "Qty", "Unit price", "VAT %", "VAT", "Total"}
	widths := []float64{55, 15, 18, 25, 15, 25, 27}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 9)
	for _, item := range invoice.Items {
		name := "(deleted article)"
		if item.ArticleName != nil {
			name = *item.ArticleName
		}
		unit := ""
		if item.ArticleUnit != nil {
			unit = *item.ArticleUnit
		}
		vatPct := "-"
		if item.VATCode != nil {
			vatPct = fmt.Sprintf("%d", int(*item.VATCode))
		}
		pdf.CellFormat(widths[0], 7, tr(truncate(name, 32)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, tr(unit), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 7, item.Quantity.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, item.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, vatPct, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[5], 7, item.VATAmount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[6], 7, item.TotalPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(7)
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(150, 6, "Total without VAT:", "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, invoice.TotalAmount.StringFixed(2), "", 0, "R", false, 0, "")
	pdf.Ln(6)
	pdf.CellFormat(150, 6, "VAT:", "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, invoice.TotalVAT.StringFixed(2), "", 0, "R", false, 0, "")
	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(150, 8, "Amount due:", "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, invoice.TotalAmount.Add(invoice.TotalVAT).StringFixed(2), "", 0, "R", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.Cell(0, 5, fmt.Sprintf("Payment is due within %d days of the issue date.", models.InvoiceDueDays))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func writeParties(pdf *gofpdf.Fpdf, tr func(string) string, issuer, recipient *models.Company) {
	var left, right []string
	if issuer != nil {
		left = issuer.DisplayLines()
	}
	if recipient != nil {
		right = recipient.DisplayLines()
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 7, "From:", "", 0, "L", false, 0, "")
	pdf.CellFormat(90, 7, "Bill to:", "", 0, "L", false, 0, "")
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 9)
	rows := len(left)
	if len(right) > rows {
		rows = len(right)
	}
	for i := 0; i < rows; i++ {
		var l, r string
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		pdf.CellFormat(90, 5, tr(truncate(l, 55)), "", 0, "L", false, 0, "")
		pdf.CellFormat(90, 5, tr(truncate(r, 55)), "", 0, "L", false, 0, "")
		pdf.Ln(5)
	}
	pdf.Ln(6)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
