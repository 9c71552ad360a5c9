package handlers

import (
	"context"
	"time"

	"acta/internal/models"
	"acta/internal/services"
	"acta/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Login(ctx context.Context, req *services.LoginRequest) (*models.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *mockAuthService) Register(ctx context.Context, p models.Principal, req *services.CreateUserRequest) (*models.User, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, p models.Principal, claims *services.TokenClaims) error {
	return m.Called(ctx, p, claims).Error(0)
}

func (m *mockAuthService) Me(ctx context.Context, p models.Principal) (*models.User, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthService) GenerateToken(user *models.User) (string, *services.TokenClaims, error) {
	args := m.Called(user)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*services.TokenClaims), args.Error(2)
}

func (m *mockAuthService) ValidateToken(token string) (*services.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenClaims), args.Error(1)
}

func (m *mockAuthService) Principal(ctx context.Context, claims *services.TokenClaims) (models.Principal, error) {
	args := m.Called(ctx, claims)
	return args.Get(0).(models.Principal), args.Error(1)
}

type mockTenantService struct{ mock.Mock }

func (m *mockTenantService) Create(ctx context.Context, p models.Principal, req *services.CreateTenantRequest) (*models.Tenant, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *mockTenantService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *mockTenantService) Current(ctx context.Context, p models.Principal) (*models.Tenant, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *mockTenantService) List(ctx context.Context, p models.Principal, page models.PageRequest) (*models.Page[*models.Tenant], error) {
	args := m.Called(ctx, p, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[*models.Tenant]), args.Error(1)
}

func (m *mockTenantService) Update(ctx context.Context, p models.Principal, id uuid.UUID, req *services.UpdateTenantRequest) (*models.Tenant, error) {
	args := m.Called(ctx, p, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *mockTenantService) Delete(ctx context.Context, p models.Principal, id uuid.UUID) error {
	return m.Called(ctx, p, id).Error(0)
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) Create(ctx context.Context, p models.Principal, req *services.CreateUserRequest) (*models.User, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) List(ctx context.Context, p models.Principal, tenantID *uuid.UUID, page models.PageRequest) (*models.Page[*models.User], error) {
	args := m.Called(ctx, p, tenantID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[*models.User]), args.Error(1)
}

func (m *mockUserService) Update(ctx context.Context, p models.Principal, id uuid.UUID, req *services.UpdateUserRequest) (*models.User, error) {
	args := m.Called(ctx, p, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) Delete(ctx context.Context, p models.Principal, id uuid.UUID) error {
	return m.Called(ctx, p, id).Error(0)
}

type mockCompanyService struct{ mock.Mock }

func (m *mockCompanyService) Create(ctx context.Context, p models.Principal, req *services.CompanyRequest) (*models.Company, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *mockCompanyService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *mockCompanyService) List(ctx context.Context, p models.Principal, tenantID *uuid.UUID, page models.PageRequest) (*models.Page[*models.Company], error) {
	args := m.Called(ctx, p, tenantID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[*models.Company]), args.Error(1)
}

func (m *mockCompanyService) Update(ctx context.Context, p models.Principal, id uuid.UUID, req *services.UpdateCompanyRequest) (*models.Company, error) {
	args := m.Called(ctx, p, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *mockCompanyService) Delete(ctx context.Context, p models.Principal, id uuid.UUID) error {
	return m.Called(ctx, p, id).Error(0)
}

func (m *mockCompanyService) UploadLogo(ctx context.Context, p models.Principal, id uuid.UUID, upload services.LogoUpload) (*models.Company, error) {
	args := m.Called(ctx, p, id, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *mockCompanyService) DeleteLogo(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *mockCompanyService) LogoURL(ctx context.Context, p models.Principal, id uuid.UUID) (string, error) {
	args := m.Called(ctx, p, id)
	return args.String(0), args.Error(1)
}

type mockArticleService struct{ mock.Mock }

func (m *mockArticleService) Create(ctx context.Context, p models.Principal, req *services.ArticleRequest) (*models.Article, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Article), args.Error(1)
}

func (m *mockArticleService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Article, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Article), args.Error(1)
}

func (m *mockArticleService) List(ctx context.Context, p models.Principal, query services.ArticleQuery, page models.PageRequest) (*models.Page[*models.Article], error) {
	args := m.Called(ctx, p, query, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[*models.Article]), args.Error(1)
}

func (m *mockArticleService) Update(ctx context.Context, p models.Principal, id uuid.UUID, req *services.UpdateArticleRequest) (*models.Article, error) {
	args := m.Called(ctx, p, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Article), args.Error(1)
}

func (m *mockArticleService) Delete(ctx context.Context, p models.Principal, id uuid.UUID) error {
	return m.Called(ctx, p, id).Error(0)
}

type mockInvoiceService struct{ mock.Mock }

func (m *mockInvoiceService) Create(ctx context.Context, p models.Principal, req *services.InvoiceRequest) (*models.Invoice, error) {
	args := m.Called(ctx, p, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *mockInvoiceService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *mockInvoiceService) List(ctx context.Context, p models.Principal, tenantID *uuid.UUID, page models.PageRequest) (*models.Page[*models.Invoice], error) {
	args := m.Called(ctx, p, tenantID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[*models.Invoice]), args.Error(1)
}

func (m *mockInvoiceService) ListByCompany(ctx context.Context, p models.Principal, companyID uuid.UUID, page models.PageRequest) (*models.Page[*models.Invoice], error) {
	args := m.Called(ctx, p, companyID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[*models.Invoice]), args.Error(1)
}

func (m *mockInvoiceService) Delete(ctx context.Context, p models.Principal, id uuid.UUID) error {
	return m.Called(ctx, p, id).Error(0)
}

type mockPDFService struct{ mock.Mock }

func (m *mockPDFService) InvoicePDF(ctx context.Context, p models.Principal, id uuid.UUID) (*services.InvoiceDocument, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.InvoiceDocument), args.Error(1)
}

type mockMigrator struct{ mock.Mock }

func (m *mockMigrator) Up() (*database.MigrationStatus, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.MigrationStatus), args.Error(1)
}

func (m *mockMigrator) Down() (*database.MigrationStatus, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.MigrationStatus), args.Error(1)
}

type mockPinger struct{ mock.Mock }

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockAuditLogsService struct{ mock.Mock }

func (m *mockAuditLogsService) Record(ctx context.Context, entry *models.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockAuditLogsService) List(ctx context.Context, p models.Principal, filter models.AuditLogFilter, page models.PageRequest) (*models.Page[*models.AuditLog], error) {
	args := m.Called(ctx, p, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[*models.AuditLog]), args.Error(1)
}

func (m *mockAuditLogsService) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	args := m.Called(ctx, retention)
	return args.Get(0).(int64), args.Error(1)
}

var (
	_ services.AuditLogsService = (*mockAuditLogsService)(nil)
	_ services.AuthService      = (*mockAuthService)(nil)
	_ services.TenantService    = (*mockTenantService)(nil)
	_ services.UserService      = (*mockUserService)(nil)
	_ services.CompanyService   = (*mockCompanyService)(nil)
	_ services.ArticleService   = (*mockArticleService)(nil)
	_ services.InvoiceService   = (*mockInvoiceService)(nil)
	_ services.PDFService       = (*mockPDFService)(nil)
	_ SchemaMigrator            = (*mockMigrator)(nil)
	_ Pinger                    = (*mockPinger)(nil)
)
