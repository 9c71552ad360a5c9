package testhelpers

import (
	"context"
	"testing"

	"acta/internal/common"
	"acta/internal/models"
	"acta/internal/repositories"
	"acta/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceLifecycle(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Cleanup()

	ctx := context.Background()
	tenant := SetupTestTenant(t, testDB)
	issuer := SetupTestCompany(t, testDB, tenant.ID, "Acme")
	recipient := SetupTestCompany(t, testDB, tenant.ID, "Globex")
	article := SetupTestArticle(t, testDB, issuer, "100.00", models.VATStandard)

	companies := repositories.NewCompanyRepo(testDB.Pool)
	invoices := services.NewInvoiceService(repositories.NewUnitOfWork(testDB.Pool),
		repositories.NewInvoiceRepo(testDB.Pool), companies, nil)
	p := models.Principal{ID: uuid.New(), Role: models.RoleAdmin, TenantID: &tenant.ID}

	created, err := invoices.Create(ctx, p, &services.InvoiceRequest{
		IssuerID:    issuer.ID,
		RecipientID: recipient.ID,
		Items: []services.InvoiceItemRequest{
			{ArticleID: article.ID, Quantity: decimal.NewFromInt(2)},
		},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^INV-\d{6}-\d{6}$`, created.InvoiceNumber)
	assert.True(t, created.TotalAmount.Equal(decimal.RequireFromString("200.00")))
	assert.True(t, created.TotalVAT.Equal(decimal.RequireFromString("36.00")))

	second, err := invoices.Create(ctx, p, &services.InvoiceRequest{
		IssuerID:    issuer.ID,
		RecipientID: recipient.ID,
		Items: []services.InvoiceItemRequest{
			{ArticleID: article.ID, Quantity: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)
	assert.NotEqual(t, created.InvoiceNumber, second.InvoiceNumber)

	fetched, err := invoices.Get(ctx, p, created.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Items, 1)
	require.NotNil(t, fetched.Items[0].ArticleName)
	assert.Equal(t, article.Name, *fetched.Items[0].ArticleName)
	assert.Equal(t, "Acme", fetched.Issuer.BusinessName)

	page, err := invoices.ListByCompany(ctx, p, recipient.ID, models.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Meta.Total)

	require.NoError(t, invoices.Delete(ctx, p, created.ID))
	_, err = invoices.Get(ctx, p, created.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCompanyDeleteCascadesArticles(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Cleanup()

	ctx := context.Background()
	tenant := SetupTestTenant(t, testDB)
	company := SetupTestCompany(t, testDB, tenant.ID, "Initech")
	article := SetupTestArticle(t, testDB, company, "9.99", models.VATReduced)

	require.NoError(t, repositories.NewCompanyRepo(testDB.Pool).Delete(ctx, company.ID))

	_, err := repositories.NewArticleRepo(testDB.Pool).GetByID(ctx, article.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
