package handlers

import (
	"acta/internal/metrics"
	"acta/internal/middleware"
	"acta/internal/models"
	"acta/internal/services"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth       *AuthHandlers
	Tenants    *TenantHandlers
	Users      *UserHandlers
	Companies  *CompanyHandlers
	Articles   *ArticleHandlers
	Invoices   *InvoiceHandlers
	AuditLogs  *AuditLogsHandlers
	Migrations *MigrationHandlers
	Health     *HealthHandlers
}

var (
	rolesAny        = []models.Role(nil)
	rolesUser       = []models.Role{models.RoleUser}
	rolesAdmin      = []models.Role{models.RoleAdmin}
	rolesSuperAdmin = []models.Role{models.RoleSuperAdmin}
)

func capability(name string, roles []models.Role) echo.MiddlewareFunc {
	return middleware.RequireCapability(services.Require(name, roles...))
}

// RegisterRoutes mounts the public endpoints and the /api/v1 surface.
// authenticate must store the principal on the request context.
func RegisterRoutes(e *echo.Echo, h *Handlers, authenticate echo.MiddlewareFunc, apiVersion string) {
	e.GET("/health", h.Health.HealthCheck)
	e.GET("/ready", h.Health.ReadinessCheck)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/api/" + apiVersion)
	v1.Use(middleware.VersionHeader(apiVersion))

	v1.POST("/auth/login", h.Auth.Login)

	api := v1.Group("", authenticate)

	authRoute := func(name string, roles []models.Role) echo.MiddlewareFunc {
		return middleware.RequireCapability(services.Require(name, roles...).AuthRoute())
	}
	api.POST("/auth/register", h.Auth.Register, authRoute("auth.register", rolesAdmin))
	api.POST("/auth/logout", h.Auth.Logout, authRoute("auth.logout", rolesAny))
	api.GET("/auth/me", h.Auth.Me, authRoute("auth.me", rolesAny))

	tenantByID := func(name string, roles []models.Role) echo.MiddlewareFunc {
		return middleware.RequireCapability(services.Require(name, roles...).WithTenantParam("id"))
	}
	api.GET("/tenants/current", h.Tenants.CurrentTenant, capability("tenants.current", rolesAny))
	api.POST("/tenants", h.Tenants.CreateTenant, capability("tenants.create", rolesSuperAdmin))
	api.GET("/tenants", h.Tenants.ListTenants, capability("tenants.list", rolesAdmin))
	api.GET("/tenants/:id", h.Tenants.GetTenant, tenantByID("tenants.get", rolesAdmin))
	api.PATCH("/tenants/:id", h.Tenants.UpdateTenant, tenantByID("tenants.update", rolesSuperAdmin))
	api.DELETE("/tenants/:id", h.Tenants.DeleteTenant, tenantByID("tenants.delete", rolesSuperAdmin))

	api.POST("/users", h.Users.CreateUser, capability("users.create", rolesAdmin))
	api.GET("/users", h.Users.ListUsers, capability("users.list", rolesAdmin))
	api.GET("/users/:id", h.Users.GetUser, capability("users.get", rolesAdmin))
	api.PATCH("/users/:id", h.Users.UpdateUser, capability("users.update", rolesAdmin))
	api.DELETE("/users/:id", h.Users.DeleteUser, capability("users.delete", rolesSuperAdmin))

	api.POST("/companies", h.Companies.CreateCompany, capability("companies.create", rolesUser))
	api.GET("/companies", h.Companies.ListCompanies, capability("companies.list", rolesUser))
	api.GET("/companies/:id", h.Companies.GetCompany, capability("companies.get", rolesUser))
	api.PATCH("/companies/:id", h.Companies.UpdateCompany, capability("companies.update", rolesUser))
	api.DELETE("/companies/:id", h.Companies.DeleteCompany, capability("companies.delete", rolesAdmin))
	api.POST("/companies/:id/logo", h.Companies.UploadLogo, capability("companies.logo.upload", rolesUser))
	api.DELETE("/companies/:id/logo", h.Companies.DeleteLogo, capability("companies.logo.delete", rolesUser))
	api.GET("/companies/:id/logo", h.Companies.GetLogo, capability("companies.logo.get", rolesUser))

	api.POST("/articles", h.Articles.CreateArticle, capability("articles.create", rolesUser))
	api.GET("/articles", h.Articles.ListArticles, capability("articles.list", rolesUser))
	api.GET("/articles/:id", h.Articles.GetArticle, capability("articles.get", rolesUser))
	api.PATCH("/articles/:id", h.Articles.UpdateArticle, capability("articles.update", rolesUser))
	api.DELETE("/articles/:id", h.Articles.DeleteArticle, capability("articles.delete", rolesAdmin))

	api.POST("/invoices", h.Invoices.CreateInvoice, capability("invoices.create", rolesUser))
	api.GET("/invoices", h.Invoices.ListInvoices, capability("invoices.list", rolesUser))
	api.GET("/invoices/company/:companyId", h.Invoices.ListCompanyInvoices, capability("invoices.list_by_company", rolesUser))
	api.GET("/invoices/:id", h.Invoices.GetInvoice, capability("invoices.get", rolesUser))
	api.GET("/invoices/:id/pdf", h.Invoices.InvoicePDF, capability("invoices.pdf", rolesUser))
	api.DELETE("/invoices/:id", h.Invoices.DeleteInvoice, capability("invoices.delete", rolesAdmin))

	api.GET("/audit-logs", h.AuditLogs.ListAuditLogs, capability("audit.list", rolesAdmin))

	api.POST("/migrations/run", h.Migrations.RunMigrations, capability("migrations.run", rolesSuperAdmin))
	api.POST("/migrations/revert", h.Migrations.RevertMigration, capability("migrations.revert", rolesSuperAdmin))
}
