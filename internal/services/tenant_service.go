package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"acta/internal/common"
	"acta/internal/logger"
	"acta/internal/models"
	"acta/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultTenantName = "Default Tenant"
	defaultTenantSlug = "default"
)

type TenantService interface {
	Create(ctx context.Context, p models.Principal, req *CreateTenantRequest) (*models.Tenant, error)
	Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Tenant, error)
	Current(ctx context.Context, p models.Principal) (*models.Tenant, error)
	List(ctx context.Context, p models.Principal, page models.PageRequest) (*models.Page[*models.Tenant], error)
	Update(ctx context.Context, p models.Principal, id uuid.UUID, req *UpdateTenantRequest) (*models.Tenant, error)
	Delete(ctx context.Context, p models.Principal, id uuid.UUID) error
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
}

func NewTenantService(tenantRepo repositories.TenantRepository) TenantService {
	return &tenantService{tenantRepo: tenantRepo}
}

type CreateTenantRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Slug        string  `json:"slug" validate:"omitempty,max=100"`
	Description *string `json:"description"`
}

type UpdateTenantRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Slug        *string `json:"slug" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s and collapses everything but letters and digits to
// single dashes.
func Slugify(s string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func (s *tenantService) Create(ctx context.Context, p models.Principal, req *CreateTenantRequest) (*models.Tenant, error) {
	if !p.IsSuperAdmin() {
		return nil, common.NewForbiddenError("only a super admin can create tenants")
	}

	slug := Slugify(req.Slug)
	if slug == "" {
		slug = Slugify(req.Name)
	}
	if slug == "" {
		return nil, common.NewValidationError("slug", "slug must contain letters or digits")
	}

	tenant := &models.Tenant{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
		IsActive:    true,
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("tenant created", zap.String("tenant_id", tenant.ID.String()), zap.String("slug", slug))
	return tenant, nil
}

func (s *tenantService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Tenant, error) {
	if !CanAccessTenant(p, id) {
		return nil, common.NewForbiddenError("access denied: tenant mismatch")
	}
	return s.tenantRepo.GetByID(ctx, id)
}

// Current returns the principal's tenant. A super admin without one gets the
// first tenant by name, and a default tenant is created when none exists.
func (s *tenantService) Current(ctx context.Context, p models.Principal) (*models.Tenant, error) {
	if p.HasTenant() {
		return s.tenantRepo.GetByID(ctx, *p.TenantID)
	}
	if !p.IsSuperAdmin() {
		return nil, common.NewNotFoundError("Tenant")
	}

	tenant, err := s.tenantRepo.GetFirst(ctx)
	if err == nil {
		return tenant, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	tenant = &models.Tenant{
		ID:       uuid.New(),
		Name:     defaultTenantName,
		Slug:     defaultTenantSlug,
		IsActive: true,
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		// Lost a race with a concurrent request creating the same default.
		if errors.Is(err, common.ErrConflict) {
			return s.tenantRepo.GetBySlug(ctx, defaultTenantSlug)
		}
		return nil, err
	}
	logger.FromContext(ctx).Info("default tenant created", zap.String("tenant_id", tenant.ID.String()))
	return tenant, nil
}

func (s *tenantService) List(ctx context.Context, p models.Principal, page models.PageRequest) (*models.Page[*models.Tenant], error) {
	filter := TenantFilter(p, nil)
	if filter == nil && !p.IsSuperAdmin() {
		return nil, common.NewForbiddenError("access denied: principal has no tenant")
	}
	tenants, total, err := s.tenantRepo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(tenants, total, page), nil
}

func (s *tenantService) Update(ctx context.Context, p models.Principal, id uuid.UUID, req *UpdateTenantRequest) (*models.Tenant, error) {
	if !p.IsSuperAdmin() {
		return nil, common.NewForbiddenError("only a super admin can update tenants")
	}
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		tenant.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		slug := Slugify(*req.Slug)
		if slug == "" {
			return nil, common.NewValidationError("slug", "slug must contain letters or digits")
		}
		tenant.Slug = slug
	}
	if req.Description != nil {
		tenant.Description = req.Description
	}
	if req.IsActive != nil {
		tenant.IsActive = *req.IsActive
	}

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// Delete refuses while users still belong to the tenant. The foreign key
// enforces the same rule for concurrent inserts.
func (s *tenantService) Delete(ctx context.Context, p models.Principal, id uuid.UUID) error {
	if !p.IsSuperAdmin() {
		return common.NewForbiddenError("only a super admin can delete tenants")
	}
	count, err := s.tenantRepo.CountUsers(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return common.NewConflictError("Tenant still has users and cannot be deleted")
	}
	if err := s.tenantRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("tenant deleted", zap.String("tenant_id", id.String()))
	return nil
}
