package services

import (
	"context"
	"time"

	"acta/internal/caching"
	"acta/internal/common"
	"acta/internal/logger"
	"acta/internal/metrics"
	"acta/internal/models"
	"acta/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type InvoiceService interface {
	Create(ctx context.Context, p models.Principal, req *InvoiceRequest) (*models.Invoice, error)
	Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, p models.Principal, tenantID *uuid.UUID, page models.PageRequest) (*models.Page[*models.Invoice], error)
	ListByCompany(ctx context.Context, p models.Principal, companyID uuid.UUID, page models.PageRequest) (*models.Page[*models.Invoice], error)
	Delete(ctx context.Context, p models.Principal, id uuid.UUID) error
}

// InvoiceRequest has no due date and no totals; both are derived.
type InvoiceRequest struct {
	IssuerID    uuid.UUID            `json:"issuer_id" validate:"required"`
	RecipientID uuid.UUID            `json:"recipient_id" validate:"required"`
	IssueDate   *time.Time           `json:"issue_date"`
	Items       []InvoiceItemRequest `json:"items" validate:"required,min=1,max=500,dive"`
}

type InvoiceItemRequest struct {
	ArticleID uuid.UUID        `json:"article_id" validate:"required"`
	Quantity  decimal.Decimal  `json:"quantity" validate:"gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"omitempty,gte=0"`
}

type invoiceService struct {
	uow         repositories.UnitOfWork
	invoiceRepo repositories.InvoiceRepository
	companyRepo repositories.CompanyRepository
	cacheSvc    caching.CacheService
	now         func() time.Time
}

func NewInvoiceService(uow repositories.UnitOfWork, invoiceRepo repositories.InvoiceRepository, companyRepo repositories.CompanyRepository,
	cacheSvc caching.CacheService) InvoiceService {
	return &invoiceService{
		uow:         uow,
		invoiceRepo: invoiceRepo,
		companyRepo: companyRepo,
		cacheSvc:    cacheSvc,
		now:         time.Now,
	}
}

func validateInvoiceRequest(req *InvoiceRequest) error {
	if req.IssuerID == uuid.Nil {
		return common.NewValidationError("issuer_id", "issuer_id is required")
	}
	if req.RecipientID == uuid.Nil {
		return common.NewValidationError("recipient_id", "recipient_id is required")
	}
	if req.IssuerID == req.RecipientID {
		return common.NewValidationError("recipient_id", "issuer and recipient must be different companies")
	}
	if len(req.Items) == 0 {
		return common.NewValidationError("items", "at least one item is required")
	}
	for _, item := range req.Items {
		if item.ArticleID == uuid.Nil {
			return common.NewValidationError("article_id", "article_id is required")
		}
		if !item.Quantity.IsPositive() {
			return common.NewValidationError("quantity", "quantity must be greater than 0")
		}
		if exceedsColumn(item.Quantity) {
			return common.NewValidationError("quantity", "quantity must not exceed "+maxColumnAmount.StringFixed(moneyPlaces))
		}
		if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
			return common.NewValidationError("unit_price", "unit_price must not be negative")
		}
		if item.UnitPrice != nil && exceedsColumn(*item.UnitPrice) {
			return common.NewValidationError("unit_price", "unit_price must not exceed "+maxColumnAmount.StringFixed(moneyPlaces))
		}
	}
	return nil
}

// Create resolves both parties and every article, derives all amounts and
// persists the invoice with its items in one transaction.
func (s *invoiceService) Create(ctx context.Context, p models.Principal, req *InvoiceRequest) (*models.Invoice, error) {
	if err := validateInvoiceRequest(req); err != nil {
		return nil, err
	}

	issueDate := s.now().UTC()
	if req.IssueDate != nil && !req.IssueDate.IsZero() {
		issueDate = req.IssueDate.UTC()
	}

	var invoice *models.Invoice
	err := s.uow.Do(ctx, func(ctx context.Context, repos repositories.TxRepositories) error {
		issuer, err := loadCompany(ctx, repos.Companies, p, req.IssuerID)
		if err != nil {
			return err
		}
		recipient, err := loadCompany(ctx, repos.Companies, p, req.RecipientID)
		if err != nil {
			return err
		}

		invoiceID := uuid.New()
		items := make([]*models.InvoiceItem, 0, len(req.Items))
		lines := make([]LineAmounts, 0, len(req.Items))
		for _, in := range req.Items {
			article, err := loadArticle(ctx, repos.Articles, p, in.ArticleID)
			if err != nil {
				return err
			}
			quantity := in.Quantity.Round(moneyPlaces)
			if !quantity.IsPositive() {
				return common.NewValidationError("quantity", "quantity must be at least 0.01")
			}
			line := ComputeLine(quantity, in.UnitPrice, article)
			lines = append(lines, line)

			articleID := article.ID
			vat := article.VATCode
			items = append(items, &models.InvoiceItem{
				ID:          uuid.New(),
				InvoiceID:   invoiceID,
				ArticleID:   &articleID,
				Quantity:    quantity,
				UnitPrice:   line.UnitPrice,
				TotalPrice:  line.TotalPrice,
				VATAmount:   line.VATAmount,
				ArticleName: &article.Name,
				ArticleUnit: &article.Unit,
				ArticleCode: &article.Code,
				VATCode:     &vat,
			})
		}

		totalAmount, totalVAT := SumLines(lines)
		if totalAmount.GreaterThan(maxStoredAmount) || totalVAT.GreaterThan(maxStoredAmount) {
			return common.NewValidationError("items", "invoice total is too large")
		}

		number, err := repos.Invoices.GenerateInvoiceNumber(ctx, issuer.TenantID, issueDate)
		if err != nil {
			return err
		}

		invoice = &models.Invoice{
			ID:            invoiceID,
			TenantID:      issuer.TenantID,
			InvoiceNumber: number,
			IssueDate:     issueDate,
			DueDate:       models.DueDateFor(issueDate),
			IssuerID:      issuer.ID,
			RecipientID:   recipient.ID,
			TotalAmount:   totalAmount,
			TotalVAT:      totalVAT,
			Issuer:        issuer,
			Recipient:     recipient,
			Items:         items,
		}
		if err := repos.Invoices.Create(ctx, invoice); err != nil {
			return err
		}
		for _, item := range items {
			if err := repos.Invoices.CreateItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.InvoicesCreated.Inc()
	logger.FromContext(ctx).Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("total_amount", invoice.TotalAmount.StringFixed(moneyPlaces)))
	return invoice, nil
}

// Get returns the invoice with both parties and its items.
func (s *invoiceService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccessTenant(p, invoice.TenantID) {
		return nil, common.NewForbiddenError("access denied: invoice belongs to another tenant")
	}

	if invoice.Issuer, err = s.companyRepo.GetByID(ctx, invoice.IssuerID); err != nil {
		return nil, err
	}
	if invoice.Recipient, err = s.companyRepo.GetByID(ctx, invoice.RecipientID); err != nil {
		return nil, err
	}
	if invoice.Items, err = s.invoiceRepo.GetItems(ctx, invoice.ID); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) List(ctx context.Context, p models.Principal, tenantID *uuid.UUID, page models.PageRequest) (*models.Page[*models.Invoice], error) {
	if d := Authorize(p, Capability{}, tenantID); !d.Allowed {
		return nil, d.Err()
	}
	invoices, total, err := s.invoiceRepo.List(ctx, TenantFilter(p, tenantID), page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(invoices, total, page), nil
}

// ListByCompany lists invoices the company issued or received.
func (s *invoiceService) ListByCompany(ctx context.Context, p models.Principal, companyID uuid.UUID, page models.PageRequest) (*models.Page[*models.Invoice], error) {
	if _, err := loadCompany(ctx, s.companyRepo, p, companyID); err != nil {
		return nil, err
	}
	invoices, total, err := s.invoiceRepo.ListByCompany(ctx, companyID, page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(invoices, total, page), nil
}

func (s *invoiceService) Delete(ctx context.Context, p models.Principal, id uuid.UUID) error {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanAccessTenant(p, invoice.TenantID) {
		return common.NewForbiddenError("access denied: invoice belongs to another tenant")
	}
	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		return err
	}
	if s.cacheSvc != nil {
		if err := s.cacheSvc.DeleteInvoicePDF(ctx, id); err != nil {
			logger.FromContext(ctx).Warn("failed to drop cached invoice pdf", zap.String("invoice_id", id.String()), zap.Error(err))
		}
	}
	return nil
}
