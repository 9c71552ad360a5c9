package testhelpers

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"acta/internal/models"
	"acta/internal/repositories"
	"acta/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TestDB holds a migrated database for integration tests.
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB connects to TEST_DATABASE_URL and applies the schema. The test
// is skipped when no database is configured or when running with -short.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	if _, err := database.NewMigrator(dsn, zap.NewNop()).Up(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := database.NewPool(ctx, database.PoolConfig{DSN: dsn, MaxConns: 4}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
}

// SetupTestTenant creates a tenant with a unique slug.
func SetupTestTenant(t *testing.T, db *TestDB) *models.Tenant {
	t.Helper()

	id := uuid.New()
	tenant := &models.Tenant{
		ID:       id,
		Name:     "Test Tenant",
		Slug:     "test-" + id.String()[:8],
		IsActive: true,
	}
	if err := repositories.NewTenantRepo(db.Pool).Create(context.Background(), tenant); err != nil {
		t.Fatalf("Failed to create test tenant: %v", err)
	}
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM invoice WHERE tenant_id = $1`, id)
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM company WHERE tenant_id = $1`, id)
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM tenants WHERE id = $1`, id)
	})
	return tenant
}

// SetupTestCompany creates a company owned by tenantID.
func SetupTestCompany(t *testing.T, db *TestDB, tenantID uuid.UUID, name string) *models.Company {
	t.Helper()

	id := uuid.New()
	company := &models.Company{
		ID:                         id,
		TenantID:                   tenantID,
		BusinessName:               name,
		BusinessType:               models.BusinessTypeLLC,
		UniqueIdentificationNumber: fmt.Sprintf("UIN-%s", id.String()[:8]),
		RegistrationDate:           time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Municipality:               "Springfield",
		Address:                    "1 Main St",
		PhoneNumber:                "+10000000",
		Email:                      "office@example.com",
	}
	if err := repositories.NewCompanyRepo(db.Pool).Create(context.Background(), company); err != nil {
		t.Fatalf("Failed to create test company: %v", err)
	}
	return company
}

// SetupTestArticle creates an article in the catalogue of company.
func SetupTestArticle(t *testing.T, db *TestDB, company *models.Company, price string, vat models.VATCode) *models.Article {
	t.Helper()

	id := uuid.New()
	article := &models.Article{
		ID:        id,
		CompanyID: company.ID,
		TenantID:  company.TenantID,
		Name:      "Test Article",
		Unit:      "pcs",
		Code:      "A-" + id.String()[:6],
		VATCode:   vat,
		BasePrice: decimal.RequireFromString(price),
	}
	if err := repositories.NewArticleRepo(db.Pool).Create(context.Background(), article); err != nil {
		t.Fatalf("Failed to create test article: %v", err)
	}
	return article
}
