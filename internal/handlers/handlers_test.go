package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"acta/internal/common"
	"acta/internal/models"
	"acta/internal/services"
	"acta/internal/validation"
	"acta/pkg/database"
	"acta/testhelpers"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type HandlersTestSuite struct {
	suite.Suite
	e         *echo.Echo
	auth      *mockAuthService
	tenants   *mockTenantService
	users     *mockUserService
	companies *mockCompanyService
	articles  *mockArticleService
	invoices  *mockInvoiceService
	pdfs      *mockPDFService
	audit     *mockAuditLogsService
	migrator  *mockMigrator
	db        *mockPinger
	cache     *testhelpers.MockCacheService
	store     *testhelpers.MockObjectStore

	tenantID  uuid.UUID
	principal *models.Principal
	claims    *services.TokenClaims
}

func (suite *HandlersTestSuite) SetupTest() {
	suite.auth = new(mockAuthService)
	suite.tenants = new(mockTenantService)
	suite.users = new(mockUserService)
	suite.companies = new(mockCompanyService)
	suite.articles = new(mockArticleService)
	suite.invoices = new(mockInvoiceService)
	suite.pdfs = new(mockPDFService)
	suite.audit = new(mockAuditLogsService)
	suite.migrator = new(mockMigrator)
	suite.db = new(mockPinger)
	suite.cache = new(testhelpers.MockCacheService)
	suite.store = new(testhelpers.MockObjectStore)

	suite.tenantID = uuid.New()
	suite.principal = nil
	suite.claims = nil

	suite.e = echo.New()
	suite.e.Validator = validation.New()
	suite.e.HTTPErrorHandler = HTTPErrorHandler

	authenticate := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if suite.principal == nil {
				return common.NewUnauthorizedError("Missing or malformed token")
			}
			c.SetRequest(c.Request().WithContext(common.WithPrincipal(c.Request().Context(), *suite.principal)))
			if suite.claims != nil {
				c.Set("user", suite.claims)
			}
			return next(c)
		}
	}

	RegisterRoutes(suite.e, &Handlers{
		Auth:       NewAuthHandlers(suite.auth),
		Tenants:    NewTenantHandlers(suite.tenants),
		Users:      NewUserHandlers(suite.users),
		Companies:  NewCompanyHandlers(suite.companies),
		Articles:   NewArticleHandlers(suite.articles),
		Invoices:   NewInvoiceHandlers(suite.invoices, suite.pdfs),
		AuditLogs:  NewAuditLogsHandlers(suite.audit),
		Migrations: NewMigrationHandlers(suite.migrator),
		Health:     NewHealthHandlers(suite.db, suite.cache, suite.store, "test"),
	}, authenticate, "v1")
}

func (suite *HandlersTestSuite) TearDownTest() {
	suite.auth.AssertExpectations(suite.T())
	suite.tenants.AssertExpectations(suite.T())
	suite.users.AssertExpectations(suite.T())
	suite.companies.AssertExpectations(suite.T())
	suite.articles.AssertExpectations(suite.T())
	suite.invoices.AssertExpectations(suite.T())
	suite.pdfs.AssertExpectations(suite.T())
	suite.audit.AssertExpectations(suite.T())
	suite.migrator.AssertExpectations(suite.T())
	suite.db.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
	suite.store.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) as(role models.Role) models.Principal {
	p := models.Principal{ID: uuid.New(), Role: role}
	if role != models.RoleSuperAdmin {
		tenantID := suite.tenantID
		p.TenantID = &tenantID
	}
	suite.principal = &p
	return p
}

func (suite *HandlersTestSuite) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	suite.e.ServeHTTP(rec, req)
	return rec
}

func (suite *HandlersTestSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var resp common.ErrorResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Code
}

func (suite *HandlersTestSuite) TestLogin() {
	user := &models.User{ID: uuid.New(), Email: "jane@acme.test", Role: models.RoleUser}
	suite.auth.On("Login", mock.Anything, &services.LoginRequest{Email: "jane@acme.test", Password: "secret-pass"}).
		Return(&models.TokenResponse{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 3600, User: user}, nil)

	rec := suite.do(http.MethodPost, "/api/v1/auth/login", `{"email":"jane@acme.test","password":"secret-pass"}`)

	suite.Equal(http.StatusOK, rec.Code)
	suite.Equal("v1", rec.Header().Get("X-API-Version"))
	var resp models.TokenResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Equal("tok", resp.AccessToken)
	suite.Equal("Bearer", resp.TokenType)
	suite.Equal(3600, resp.ExpiresIn)
	suite.NotContains(rec.Body.String(), "password")
}

func (suite *HandlersTestSuite) TestLogin_InvalidBody() {
	rec := suite.do(http.MethodPost, "/api/v1/auth/login", `{"email":"not-an-email"}`)

	suite.Equal(http.StatusBadRequest, rec.Code)
	var resp common.ErrorResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Equal("VALIDATION_ERROR", resp.Error.Code)
	suite.Contains(resp.Error.Details, "email")
	suite.Contains(resp.Error.Details, "password")
}

func (suite *HandlersTestSuite) TestLogin_BadCredentials() {
	suite.auth.On("Login", mock.Anything, mock.Anything).Return(nil, common.NewUnauthorizedError("Invalid email or password"))

	rec := suite.do(http.MethodPost, "/api/v1/auth/login", `{"email":"jane@acme.test","password":"wrong"}`)

	suite.Equal(http.StatusUnauthorized, rec.Code)
	suite.Equal("UNAUTHORIZED", suite.errorCode(rec))
}

func (suite *HandlersTestSuite) TestProtectedRouteWithoutToken() {
	rec := suite.do(http.MethodGet, "/api/v1/companies", "")

	suite.Equal(http.StatusUnauthorized, rec.Code)
	suite.Equal("UNAUTHORIZED", suite.errorCode(rec))
}

func (suite *HandlersTestSuite) TestUnknownRoute() {
	suite.as(models.RoleUser)

	rec := suite.do(http.MethodGet, "/api/v1/nothing-here", "")

	suite.Equal(http.StatusNotFound, rec.Code)
	suite.Equal("NOT_FOUND", suite.errorCode(rec))
}

func (suite *HandlersTestSuite) TestUnknownRouteRequiresToken() {
	rec := suite.do(http.MethodGet, "/api/v1/nothing-here", "")

	suite.Equal(http.StatusUnauthorized, rec.Code)
}

func (suite *HandlersTestSuite) TestLogout() {
	p := suite.as(models.RoleUser)
	suite.claims = &services.TokenClaims{Role: "user"}
	suite.claims.ID = "token-1"
	suite.auth.On("Logout", mock.Anything, p, suite.claims).Return(nil)

	rec := suite.do(http.MethodPost, "/api/v1/auth/logout", "")

	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), "Logged out successfully")
}

func (suite *HandlersTestSuite) TestMe_WithoutTenantStillAllowed() {
	p := models.Principal{ID: uuid.New(), Role: models.RoleUser}
	suite.principal = &p
	suite.auth.On("Me", mock.Anything, p).Return(&models.User{ID: p.ID, Role: models.RoleUser}, nil)

	rec := suite.do(http.MethodGet, "/api/v1/auth/me", "")

	suite.Equal(http.StatusOK, rec.Code)
}

func (suite *HandlersTestSuite) TestRegister_RequiresAdmin() {
	suite.as(models.RoleUser)

	rec := suite.do(http.MethodPost, "/api/v1/auth/register", `{"email":"new@acme.test","password":"long-enough"}`)

	suite.Equal(http.StatusForbidden, rec.Code)
	suite.Equal("FORBIDDEN", suite.errorCode(rec))
}

func (suite *HandlersTestSuite) TestRegister_AsAdmin() {
	p := suite.as(models.RoleAdmin)
	suite.auth.On("Register", mock.Anything, p, mock.MatchedBy(func(req *services.CreateUserRequest) bool {
		return req.Email == "new@acme.test" && req.Role == "user"
	})).Return(&models.User{ID: uuid.New(), Email: "new@acme.test", Role: models.RoleUser}, nil)

	rec := suite.do(http.MethodPost, "/api/v1/auth/register", `{"email":"new@acme.test","password":"long-enough","role":"user"}`)

	suite.Equal(http.StatusCreated, rec.Code)
}

func (suite *HandlersTestSuite) TestUsers_ForbiddenForUserRole() {
	suite.as(models.RoleUser)

	rec := suite.do(http.MethodGet, "/api/v1/users", "")

	suite.Equal(http.StatusForbidden, rec.Code)
}

func (suite *HandlersTestSuite) TestUsers_DeleteRequiresSuperAdmin() {
	suite.as(models.RoleAdmin)

	rec := suite.do(http.MethodDelete, "/api/v1/users/"+uuid.NewString(), "")

	suite.Equal(http.StatusForbidden, rec.Code)
}

func (suite *HandlersTestSuite) TestUsers_ListWithTenantQuery() {
	p := suite.as(models.RoleAdmin)
	tenantID := suite.tenantID
	page := models.NewPageRequest(2, 10)
	suite.users.On("List", mock.Anything, p, &tenantID, page).
		Return(models.NewPage([]*models.User{}, 11, page), nil)

	rec := suite.do(http.MethodGet, "/api/v1/users?tenant_id="+tenantID.String()+"&page=2&limit=10", "")

	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), `"last_page":2`)
}

func (suite *HandlersTestSuite) TestCompanies_ForeignTenantQueryForbidden() {
	suite.as(models.RoleAdmin)

	rec := suite.do(http.MethodGet, "/api/v1/companies?tenant_id="+uuid.NewString(), "")

	suite.Equal(http.StatusForbidden, rec.Code)
	suite.Equal("FORBIDDEN", suite.errorCode(rec))
}

func (suite *HandlersTestSuite) TestCompanies_InvalidLimit() {
	suite.as(models.RoleUser)

	rec := suite.do(http.MethodGet, "/api/v1/companies?limit=5000", "")

	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *HandlersTestSuite) TestCompanies_InvalidID() {
	suite.as(models.RoleUser)

	rec := suite.do(http.MethodGet, "/api/v1/companies/not-a-uuid", "")

	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Equal("VALIDATION_ERROR", suite.errorCode(rec))
}

func (suite *HandlersTestSuite) TestCompanies_CreateConflict() {
	p := suite.as(models.RoleUser)
	suite.companies.On("Create", mock.Anything, p, mock.Anything).
		Return(nil, common.NewConflictError("A company with this VAT number already exists"))

	rec := suite.do(http.MethodPost, "/api/v1/companies", `{
		"business_name":"Acme","business_type":"Limited Liability Company","unique_identification_number":"UIN-1",
		"registration_date":"2020-01-02T00:00:00Z","municipality":"Springfield","address":"1 Main St",
		"phone_number":"+1 555","email":"office@acme.test"}`)

	suite.Equal(http.StatusConflict, rec.Code)
	suite.Contains(rec.Body.String(), "VAT number")
}

func (suite *HandlersTestSuite) TestCompanies_DeleteRequiresAdmin() {
	suite.as(models.RoleUser)

	rec := suite.do(http.MethodDelete, "/api/v1/companies/"+uuid.NewString(), "")

	suite.Equal(http.StatusForbidden, rec.Code)
}

func (suite *HandlersTestSuite) TestUploadLogo() {
	p := suite.as(models.RoleUser)
	companyID := uuid.New()
	content := []byte("\x89PNG\r\n\x1a\nrest")

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("logo", "logo.png")
	suite.Require().NoError(err)
	_, err = part.Write(content)
	suite.Require().NoError(err)
	suite.Require().NoError(writer.Close())

	suite.companies.On("UploadLogo", mock.Anything, p, companyID, mock.MatchedBy(func(u services.LogoUpload) bool {
		return u.Filename == "logo.png" && u.Size == int64(len(content)) && u.Reader != nil
	})).Return(&models.Company{ID: companyID, TenantID: suite.tenantID}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/companies/"+companyID.String()+"/logo", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	suite.e.ServeHTTP(rec, req)

	suite.Equal(http.StatusOK, rec.Code)
}

func (suite *HandlersTestSuite) TestUploadLogo_MissingFile() {
	suite.as(models.RoleUser)

	rec := suite.do(http.MethodPost, "/api/v1/companies/"+uuid.NewString()+"/logo", `{}`)

	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Contains(rec.Body.String(), "logo file is required")
}

func (suite *HandlersTestSuite) TestGetLogo_Redirects() {
	p := suite.as(models.RoleUser)
	companyID := uuid.New()
	suite.companies.On("LogoURL", mock.Anything, p, companyID).Return("https://minio.local/logos/abc.png?sig=1", nil)

	rec := suite.do(http.MethodGet, "/api/v1/companies/"+companyID.String()+"/logo", "")

	suite.Equal(http.StatusFound, rec.Code)
	suite.Equal("https://minio.local/logos/abc.png?sig=1", rec.Header().Get(echo.HeaderLocation))
}

func (suite *HandlersTestSuite) TestArticles_ListByCompany() {
	p := suite.as(models.RoleUser)
	companyID := uuid.New()
	page := models.NewPageRequest(0, 0)
	suite.articles.On("List", mock.Anything, p, services.ArticleQuery{CompanyID: &companyID}, page).
		Return(models.NewPage([]*models.Article{}, 0, page), nil)

	rec := suite.do(http.MethodGet, "/api/v1/articles?company_id="+companyID.String(), "")

	suite.Equal(http.StatusOK, rec.Code)
}

func (suite *HandlersTestSuite) TestArticles_InvalidVATCode() {
	suite.as(models.RoleUser)

	rec := suite.do(http.MethodPost, "/api/v1/articles",
		`{"company_id":"`+uuid.NewString()+`","name":"Widget","unit":"pcs","code":"W-1","vat_code":5,"base_price":"1.00"}`)

	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Contains(rec.Body.String(), "vat_code")
}

func (suite *HandlersTestSuite) TestInvoices_Create() {
	p := suite.as(models.RoleUser)
	issuer, recipient, article := uuid.New(), uuid.New(), uuid.New()
	suite.invoices.On("Create", mock.Anything, p, mock.MatchedBy(func(req *services.InvoiceRequest) bool {
		return req.IssuerID == issuer && req.RecipientID == recipient && len(req.Items) == 1 &&
			req.Items[0].Quantity.Equal(decimal.NewFromInt(2))
	})).Return(&models.Invoice{ID: uuid.New(), InvoiceNumber: "INV-202603-000001"}, nil)

	rec := suite.do(http.MethodPost, "/api/v1/invoices", `{"issuer_id":"`+issuer.String()+`","recipient_id":"`+
		recipient.String()+`","items":[{"article_id":"`+article.String()+`","quantity":"2"}]}`)

	suite.Equal(http.StatusCreated, rec.Code)
	suite.Contains(rec.Body.String(), "INV-202603-000001")
}

func (suite *HandlersTestSuite) TestInvoices_CreateWithoutItems() {
	suite.as(models.RoleUser)

	rec := suite.do(http.MethodPost, "/api/v1/invoices",
		`{"issuer_id":"`+uuid.NewString()+`","recipient_id":"`+uuid.NewString()+`","items":[]}`)

	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Contains(rec.Body.String(), "items")
}

func (suite *HandlersTestSuite) TestInvoices_ListByCompany() {
	p := suite.as(models.RoleUser)
	companyID := uuid.New()
	page := models.NewPageRequest(0, 0)
	suite.invoices.On("ListByCompany", mock.Anything, p, companyID, page).
		Return(models.NewPage([]*models.Invoice{}, 0, page), nil)

	rec := suite.do(http.MethodGet, "/api/v1/invoices/company/"+companyID.String(), "")

	suite.Equal(http.StatusOK, rec.Code)
}

func (suite *HandlersTestSuite) TestInvoices_PDF() {
	p := suite.as(models.RoleUser)
	invoiceID := uuid.New()
	suite.pdfs.On("InvoicePDF", mock.Anything, p, invoiceID).
		Return(&services.InvoiceDocument{Filename: "INV-202603-000001.pdf", Content: []byte("%PDF-1.3")}, nil)

	rec := suite.do(http.MethodGet, "/api/v1/invoices/"+invoiceID.String()+"/pdf", "")

	suite.Equal(http.StatusOK, rec.Code)
	suite.Equal("application/pdf", rec.Header().Get(echo.HeaderContentType))
	suite.Equal(`attachment; filename="INV-202603-000001.pdf"`, rec.Header().Get(echo.HeaderContentDisposition))
	suite.Equal("%PDF-1.3", rec.Body.String())
}

func (suite *HandlersTestSuite) TestInvoices_GetOtherTenant() {
	p := suite.as(models.RoleUser)
	invoiceID := uuid.New()
	suite.invoices.On("Get", mock.Anything, p, invoiceID).
		Return(nil, common.NewForbiddenError("access denied: invoice belongs to another tenant"))

	rec := suite.do(http.MethodGet, "/api/v1/invoices/"+invoiceID.String(), "")

	suite.Equal(http.StatusForbidden, rec.Code)
}

func (suite *HandlersTestSuite) TestInvoices_InternalErrorHidesCause() {
	p := suite.as(models.RoleUser)
	page := models.NewPageRequest(0, 0)
	suite.invoices.On("List", mock.Anything, p, (*uuid.UUID)(nil), page).
		Return(nil, common.NewInternalError("list invoices", errors.New("pq: connection reset")))

	rec := suite.do(http.MethodGet, "/api/v1/invoices", "")

	suite.Equal(http.StatusInternalServerError, rec.Code)
	suite.NotContains(rec.Body.String(), "connection reset")
}

func (suite *HandlersTestSuite) TestTenants_DeleteWithUsers() {
	p := suite.as(models.RoleSuperAdmin)
	tenantID := uuid.New()
	suite.tenants.On("Delete", mock.Anything, p, tenantID).
		Return(common.NewConflictError("Cannot delete tenant: it still has users"))

	rec := suite.do(http.MethodDelete, "/api/v1/tenants/"+tenantID.String(), "")

	suite.Equal(http.StatusConflict, rec.Code)
}

func (suite *HandlersTestSuite) TestTenants_AdminCannotReadForeignTenant() {
	suite.as(models.RoleAdmin)

	rec := suite.do(http.MethodGet, "/api/v1/tenants/"+uuid.NewString(), "")

	suite.Equal(http.StatusForbidden, rec.Code)
}

func (suite *HandlersTestSuite) TestTenants_Current() {
	p := suite.as(models.RoleUser)
	suite.tenants.On("Current", mock.Anything, p).Return(&models.Tenant{ID: suite.tenantID, Name: "Acme", Slug: "acme"}, nil)

	rec := suite.do(http.MethodGet, "/api/v1/tenants/current", "")

	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), `"slug":"acme"`)
}

func (suite *HandlersTestSuite) TestMigrations() {
	suite.as(models.RoleSuperAdmin)
	suite.migrator.On("Up").Return(&database.MigrationStatus{Version: 4, Changed: true}, nil)

	rec := suite.do(http.MethodPost, "/api/v1/migrations/run", "")

	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), `"version":4`)
}

func (suite *HandlersTestSuite) TestMigrations_RevertFailure() {
	suite.as(models.RoleSuperAdmin)
	suite.migrator.On("Down").Return(nil, errors.New("no migration"))

	rec := suite.do(http.MethodPost, "/api/v1/migrations/revert", "")

	suite.Equal(http.StatusInternalServerError, rec.Code)
}

func (suite *HandlersTestSuite) TestMigrations_AdminForbidden() {
	suite.as(models.RoleAdmin)

	rec := suite.do(http.MethodPost, "/api/v1/migrations/run", "")

	suite.Equal(http.StatusForbidden, rec.Code)
}

func (suite *HandlersTestSuite) TestHealth() {
	suite.db.On("Ping", mock.Anything).Return(nil)
	suite.cache.On("Ping", mock.Anything).Return(nil)
	suite.store.On("BucketExists", mock.Anything).Return(true, nil)

	rec := suite.do(http.MethodGet, "/health", "")

	suite.Equal(http.StatusOK, rec.Code)
	var health HealthStatus
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &health))
	suite.Equal("healthy", health.Status)
	suite.Equal("healthy", health.Services["storage"])
}

func (suite *HandlersTestSuite) TestReady_DatabaseDown() {
	suite.db.On("Ping", mock.Anything).Return(errors.New("connection refused"))
	suite.cache.On("Ping", mock.Anything).Return(nil)
	suite.store.On("BucketExists", mock.Anything).Return(true, nil)

	rec := suite.do(http.MethodGet, "/ready", "")

	suite.Equal(http.StatusServiceUnavailable, rec.Code)
	var health HealthStatus
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &health))
	suite.Equal("not_ready", health.Status)
	suite.Equal("unhealthy", health.Services["database"])
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (suite *HandlersTestSuite) TestListAuditLogs_Filters() {
	p := suite.as(models.RoleAdmin)
	userID := uuid.New()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	page := models.PageRequest{Page: 1, Limit: 20}
	suite.audit.On("List", mock.Anything, p, models.AuditLogFilter{UserID: &userID, From: &from}, page).
		Return(models.NewPage([]*models.AuditLog{{Action: "POST /api/v1/invoices", Status: 201}}, 1, page), nil)

	rec := suite.do(http.MethodGet, "/api/v1/audit-logs?user_id="+userID.String()+"&from=2026-03-01T00:00:00Z&limit=20", "")

	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), `"action":"POST /api/v1/invoices"`)
}

func (suite *HandlersTestSuite) TestListAuditLogs_BadTimestamp() {
	suite.as(models.RoleAdmin)

	rec := suite.do(http.MethodGet, "/api/v1/audit-logs?from=yesterday", "")

	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Equal("VALIDATION_ERROR", suite.errorCode(rec))
}

func (suite *HandlersTestSuite) TestListAuditLogs_UserForbidden() {
	suite.as(models.RoleUser)

	rec := suite.do(http.MethodGet, "/api/v1/audit-logs", "")

	suite.Equal(http.StatusForbidden, rec.Code)
}
