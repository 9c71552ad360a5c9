package services

import (
	"context"
	"strings"

	"acta/internal/common"
	"acta/internal/models"
	"acta/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ArticleService interface {
	Create(ctx context.Context, p models.Principal, req *ArticleRequest) (*models.Article, error)
	Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Article, error)
	List(ctx context.Context, p models.Principal, query ArticleQuery, page models.PageRequest) (*models.Page[*models.Article], error)
	Update(ctx context.Context, p models.Principal, id uuid.UUID, req *UpdateArticleRequest) (*models.Article, error)
	Delete(ctx context.Context, p models.Principal, id uuid.UUID) error
}

type ArticleRequest struct {
	CompanyID uuid.UUID       `json:"company_id" validate:"required"`
	Name      string          `json:"name" validate:"required,max=255"`
	Unit      string          `json:"unit" validate:"required,max=64"`
	Code      string          `json:"code" validate:"required,max=64"`
	VATCode   int             `json:"vat_code" validate:"vatcode"`
	BasePrice decimal.Decimal `json:"base_price" validate:"gte=0"`
}

// UpdateArticleRequest cannot move an article to another company.
type UpdateArticleRequest struct {
	Name      *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Unit      *string          `json:"unit" validate:"omitempty,min=1,max=64"`
	Code      *string          `json:"code" validate:"omitempty,min=1,max=64"`
	VATCode   *int             `json:"vat_code" validate:"omitempty,vatcode"`
	BasePrice *decimal.Decimal `json:"base_price" validate:"omitempty,gte=0"`
}

type ArticleQuery struct {
	TenantID  *uuid.UUID
	CompanyID *uuid.UUID
}

type articleService struct {
	articleRepo repositories.ArticleRepository
	companyRepo repositories.CompanyRepository
}

func NewArticleService(articleRepo repositories.ArticleRepository, companyRepo repositories.CompanyRepository) ArticleService {
	return &articleService{articleRepo: articleRepo, companyRepo: companyRepo}
}

// normalizePrice rejects negative prices and keeps two fractional digits.
func normalizePrice(field string, price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Zero, common.NewValidationError(field, field+" must not be negative")
	}
	if exceedsColumn(price) {
		return decimal.Zero, common.NewValidationError(field, field+" must not exceed "+maxColumnAmount.StringFixed(moneyPlaces))
	}
	return price.Round(2), nil
}

func (s *articleService) Create(ctx context.Context, p models.Principal, req *ArticleRequest) (*models.Article, error) {
	company, err := loadCompany(ctx, s.companyRepo, p, req.CompanyID)
	if err != nil {
		return nil, err
	}

	vat := models.VATCode(req.VATCode)
	if !vat.Valid() {
		return nil, common.NewValidationError("vat_code", "vat_code must be one of 0, 8, 18")
	}
	price, err := normalizePrice("base_price", req.BasePrice)
	if err != nil {
		return nil, err
	}

	article := &models.Article{
		ID:        uuid.New(),
		CompanyID: company.ID,
		TenantID:  company.TenantID,
		Name:      strings.TrimSpace(req.Name),
		Unit:      strings.TrimSpace(req.Unit),
		Code:      strings.TrimSpace(req.Code),
		VATCode:   vat,
		BasePrice: price,
	}
	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

func loadArticle(ctx context.Context, repo repositories.ArticleRepository, p models.Principal, id uuid.UUID) (*models.Article, error) {
	article, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccessTenant(p, article.TenantID) {
		return nil, common.NewForbiddenError("access denied: article belongs to another tenant")
	}
	return article, nil
}

func (s *articleService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Article, error) {
	return loadArticle(ctx, s.articleRepo, p, id)
}

func (s *articleService) List(ctx context.Context, p models.Principal, query ArticleQuery, page models.PageRequest) (*models.Page[*models.Article], error) {
	if d := Authorize(p, Capability{}, query.TenantID); !d.Allowed {
		return nil, d.Err()
	}
	if query.CompanyID != nil {
		if _, err := loadCompany(ctx, s.companyRepo, p, *query.CompanyID); err != nil {
			return nil, err
		}
	}

	filter := repositories.ArticleFilter{
		TenantID:  TenantFilter(p, query.TenantID),
		CompanyID: query.CompanyID,
	}
	articles, total, err := s.articleRepo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(articles, total, page), nil
}

func (s *articleService) Update(ctx context.Context, p models.Principal, id uuid.UUID, req *UpdateArticleRequest) (*models.Article, error) {
	article, err := loadArticle(ctx, s.articleRepo, p, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		article.Name = strings.TrimSpace(*req.Name)
	}
	if req.Unit != nil {
		article.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.Code != nil {
		article.Code = strings.TrimSpace(*req.Code)
	}
	if req.VATCode != nil {
		vat := models.VATCode(*req.VATCode)
		if !vat.Valid() {
			return nil, common.NewValidationError("vat_code", "vat_code must be one of 0, 8, 18")
		}
		article.VATCode = vat
	}
	if req.BasePrice != nil {
		price, err := normalizePrice("base_price", *req.BasePrice)
		if err != nil {
			return nil, err
		}
		article.BasePrice = price
	}

	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// Delete leaves existing invoice items in place; they keep their amounts and
// lose the article reference.
func (s *articleService) Delete(ctx context.Context, p models.Principal, id uuid.UUID) error {
	if _, err := loadArticle(ctx, s.articleRepo, p, id); err != nil {
		return err
	}
	return s.articleRepo.Delete(ctx, id)
}
