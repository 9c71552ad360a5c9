package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"acta/internal/common"
	"acta/internal/models"
	"acta/internal/repositories"
	"acta/testhelpers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceTestSuite struct {
	suite.Suite
	invoiceRepo *testhelpers.MockInvoiceRepository
	companyRepo *testhelpers.MockCompanyRepository
	articleRepo *testhelpers.MockArticleRepository
	cache       *testhelpers.MockCacheService
	uow         *testhelpers.MockUnitOfWork
	service     *invoiceService
	ctx         context.Context
	tenantID    uuid.UUID
	issuer      *models.Company
	recipient   *models.Company
	article     *models.Article
	clock       time.Time
}

func (suite *InvoiceServiceTestSuite) SetupTest() {
	suite.invoiceRepo = new(testhelpers.MockInvoiceRepository)
	suite.companyRepo = new(testhelpers.MockCompanyRepository)
	suite.articleRepo = new(testhelpers.MockArticleRepository)
	suite.cache = new(testhelpers.MockCacheService)
	suite.uow = &testhelpers.MockUnitOfWork{Repos: repositories.TxRepositories{
		Companies: suite.companyRepo,
		Articles:  suite.articleRepo,
		Invoices:  suite.invoiceRepo,
	}}
	suite.service = NewInvoiceService(suite.uow, suite.invoiceRepo, suite.companyRepo, suite.cache).(*invoiceService)
	suite.clock = time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	suite.service.now = func() time.Time { return suite.clock }
	suite.ctx = context.Background()

	suite.tenantID = uuid.New()
	suite.issuer = &models.Company{ID: uuid.New(), TenantID: suite.tenantID, BusinessName: "Issuer"}
	suite.recipient = &models.Company{ID: uuid.New(), TenantID: suite.tenantID, BusinessName: "Recipient"}
	suite.article = &models.Article{
		ID:        uuid.New(),
		CompanyID: suite.issuer.ID,
		TenantID:  suite.tenantID,
		Name:      "Consulting",
		Unit:      "h",
		Code:      "C-1",
		VATCode:   models.VATStandard,
		BasePrice: dec("100.00"),
	}
}

func (suite *InvoiceServiceTestSuite) TearDownTest() {
	suite.invoiceRepo.AssertExpectations(suite.T())
	suite.companyRepo.AssertExpectations(suite.T())
	suite.articleRepo.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func (suite *InvoiceServiceTestSuite) request() *InvoiceRequest {
	return &InvoiceRequest{
		IssuerID:    suite.issuer.ID,
		RecipientID: suite.recipient.ID,
		Items:       []InvoiceItemRequest{{ArticleID: suite.article.ID, Quantity: dec("2")}},
	}
}

func (suite *InvoiceServiceTestSuite) expectParties() {
	suite.companyRepo.On("GetByID", mock.Anything, suite.issuer.ID).Return(suite.issuer, nil)
	suite.companyRepo.On("GetByID", mock.Anything, suite.recipient.ID).Return(suite.recipient, nil)
}

func (suite *InvoiceServiceTestSuite) TestCreate_ComputesTotals() {
	p := principal(models.RoleUser, &suite.tenantID)
	suite.expectParties()
	suite.articleRepo.On("GetByID", mock.Anything, suite.article.ID).Return(suite.article, nil)
	suite.invoiceRepo.On("GenerateInvoiceNumber", mock.Anything, suite.tenantID, suite.clock).Return("INV-202603-000001", nil)
	suite.invoiceRepo.On("Create", mock.Anything, mock.MatchedBy(func(inv *models.Invoice) bool {
		return inv.TotalAmount.StringFixed(2) == "200.00" && inv.TotalVAT.StringFixed(2) == "36.00"
	})).Return(nil)
	suite.invoiceRepo.On("CreateItem", mock.Anything, mock.MatchedBy(func(item *models.InvoiceItem) bool {
		return item.TotalPrice.StringFixed(2) == "200.00" && item.VATAmount.StringFixed(2) == "36.00" &&
			item.UnitPrice.StringFixed(2) == "100.00"
	})).Return(nil)

	invoice, err := suite.service.Create(suite.ctx, p, suite.request())

	suite.Require().NoError(err)
	suite.Equal("INV-202603-000001", invoice.InvoiceNumber)
	suite.Equal(suite.tenantID, invoice.TenantID)
	suite.Equal(suite.clock, invoice.IssueDate)
	suite.Equal(time.Date(2026, 4, 14, 9, 30, 0, 0, time.UTC), invoice.DueDate)
	suite.Len(invoice.Items, 1)
	suite.Equal(invoice.ID, invoice.Items[0].InvoiceID)
	suite.True(suite.uow.Committed)
}

func (suite *InvoiceServiceTestSuite) TestCreate_UsesGivenIssueDate() {
	p := principal(models.RoleUser, &suite.tenantID)
	loc := time.FixedZone("UTC+2", 2*60*60)
	issued := time.Date(2026, 1, 31, 1, 0, 0, 0, loc)
	req := suite.request()
	req.IssueDate = &issued

	suite.expectParties()
	suite.articleRepo.On("GetByID", mock.Anything, suite.article.ID).Return(suite.article, nil)
	suite.invoiceRepo.On("GenerateInvoiceNumber", mock.Anything, suite.tenantID, issued.UTC()).Return("INV-202601-000004", nil)
	suite.invoiceRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	suite.invoiceRepo.On("CreateItem", mock.Anything, mock.Anything).Return(nil)

	invoice, err := suite.service.Create(suite.ctx, p, req)

	suite.Require().NoError(err)
	suite.Equal(time.UTC, invoice.IssueDate.Location())
	suite.Equal(issued.UTC().AddDate(0, 0, 30), invoice.DueDate)
}

func (suite *InvoiceServiceTestSuite) TestCreate_SameIssuerAndRecipient() {
	p := principal(models.RoleUser, &suite.tenantID)
	req := suite.request()
	req.RecipientID = req.IssuerID

	_, err := suite.service.Create(suite.ctx, p, req)

	suite.ErrorIs(err, common.ErrValidation)
	suite.Equal(0, suite.uow.Calls)
}

func (suite *InvoiceServiceTestSuite) TestCreate_NoItems() {
	p := principal(models.RoleUser, &suite.tenantID)
	req := suite.request()
	req.Items = nil

	_, err := suite.service.Create(suite.ctx, p, req)

	suite.ErrorIs(err, common.ErrValidation)
}

func (suite *InvoiceServiceTestSuite) TestCreate_NonPositiveQuantity() {
	p := principal(models.RoleUser, &suite.tenantID)
	req := suite.request()
	req.Items[0].Quantity = dec("0")

	_, err := suite.service.Create(suite.ctx, p, req)

	suite.ErrorIs(err, common.ErrValidation)
}

func (suite *InvoiceServiceTestSuite) TestCreate_QuantityAboveColumnLimit() {
	p := principal(models.RoleUser, &suite.tenantID)
	req := suite.request()
	req.Items[0].Quantity = dec("100000000")

	_, err := suite.service.Create(suite.ctx, p, req)

	suite.ErrorIs(err, common.ErrValidation)
	suite.Equal(0, suite.uow.Calls)
	suite.invoiceRepo.AssertNotCalled(suite.T(), "CreateItem", mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestCreate_UnitPriceAboveColumnLimit() {
	p := principal(models.RoleUser, &suite.tenantID)
	req := suite.request()
	price := dec("99999999.995")
	req.Items[0].UnitPrice = &price

	_, err := suite.service.Create(suite.ctx, p, req)

	suite.ErrorIs(err, common.ErrValidation)
	suite.Equal(0, suite.uow.Calls)
}

func (suite *InvoiceServiceTestSuite) TestCreate_RecipientInOtherTenantForbidden() {
	p := principal(models.RoleUser, &suite.tenantID)
	suite.recipient.TenantID = uuid.New()
	suite.expectParties()

	_, err := suite.service.Create(suite.ctx, p, suite.request())

	suite.ErrorIs(err, common.ErrForbidden)
	suite.False(suite.uow.Committed)
}

func (suite *InvoiceServiceTestSuite) TestCreate_MissingArticleRollsBack() {
	p := principal(models.RoleUser, &suite.tenantID)
	suite.expectParties()
	suite.articleRepo.On("GetByID", mock.Anything, suite.article.ID).Return(nil, common.NewNotFoundError("Article"))

	_, err := suite.service.Create(suite.ctx, p, suite.request())

	suite.ErrorIs(err, common.ErrNotFound)
	suite.False(suite.uow.Committed)
	suite.invoiceRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestCreate_ItemFailureRollsBack() {
	p := principal(models.RoleUser, &suite.tenantID)
	suite.expectParties()
	suite.articleRepo.On("GetByID", mock.Anything, suite.article.ID).Return(suite.article, nil)
	suite.invoiceRepo.On("GenerateInvoiceNumber", mock.Anything, suite.tenantID, suite.clock).Return("INV-202603-000002", nil)
	suite.invoiceRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	suite.invoiceRepo.On("CreateItem", mock.Anything, mock.Anything).Return(common.NewInternalError("create invoice item", errors.New("boom")))

	_, err := suite.service.Create(suite.ctx, p, suite.request())

	suite.ErrorIs(err, common.ErrInternal)
	suite.False(suite.uow.Committed)
}

func (suite *InvoiceServiceTestSuite) TestCreate_TotalTooLarge() {
	p := principal(models.RoleUser, &suite.tenantID)
	suite.article.BasePrice = dec("9999999999.99")
	suite.expectParties()
	suite.articleRepo.On("GetByID", mock.Anything, suite.article.ID).Return(suite.article, nil)

	_, err := suite.service.Create(suite.ctx, p, suite.request())

	suite.ErrorIs(err, common.ErrValidation)
}

func (suite *InvoiceServiceTestSuite) TestGet_LoadsPartiesAndItems() {
	p := principal(models.RoleUser, &suite.tenantID)
	invoice := &models.Invoice{ID: uuid.New(), TenantID: suite.tenantID, IssuerID: suite.issuer.ID, RecipientID: suite.recipient.ID}
	suite.invoiceRepo.On("GetByID", suite.ctx, invoice.ID).Return(invoice, nil)
	suite.expectParties()
	suite.invoiceRepo.On("GetItems", suite.ctx, invoice.ID).Return([]*models.InvoiceItem{{ID: uuid.New(), InvoiceID: invoice.ID}}, nil)

	got, err := suite.service.Get(suite.ctx, p, invoice.ID)

	suite.Require().NoError(err)
	suite.Equal("Issuer", got.Issuer.BusinessName)
	suite.Equal("Recipient", got.Recipient.BusinessName)
	suite.Len(got.Items, 1)
}

func (suite *InvoiceServiceTestSuite) TestGet_CrossTenantForbidden() {
	other := uuid.New()
	p := principal(models.RoleAdmin, &other)
	invoice := &models.Invoice{ID: uuid.New(), TenantID: suite.tenantID}
	suite.invoiceRepo.On("GetByID", suite.ctx, invoice.ID).Return(invoice, nil)

	_, err := suite.service.Get(suite.ctx, p, invoice.ID)

	suite.ErrorIs(err, common.ErrForbidden)
}

func (suite *InvoiceServiceTestSuite) TestListByCompany_ChecksCompanyTenant() {
	other := uuid.New()
	p := principal(models.RoleUser, &other)
	suite.companyRepo.On("GetByID", suite.ctx, suite.issuer.ID).Return(suite.issuer, nil)

	_, err := suite.service.ListByCompany(suite.ctx, p, suite.issuer.ID, models.NewPageRequest(1, 10))

	suite.ErrorIs(err, common.ErrForbidden)
}

func (suite *InvoiceServiceTestSuite) TestList_SuperAdminUnfiltered() {
	p := principal(models.RoleSuperAdmin, nil)
	page := models.NewPageRequest(1, 10)
	suite.invoiceRepo.On("List", suite.ctx, (*uuid.UUID)(nil), page).Return([]*models.Invoice{}, 0, nil)

	result, err := suite.service.List(suite.ctx, p, nil, page)

	suite.Require().NoError(err)
	suite.Equal(0, result.Meta.Total)
}

func (suite *InvoiceServiceTestSuite) TestDelete_DropsCachedPDF() {
	p := principal(models.RoleUser, &suite.tenantID)
	invoice := &models.Invoice{ID: uuid.New(), TenantID: suite.tenantID}
	suite.invoiceRepo.On("GetByID", suite.ctx, invoice.ID).Return(invoice, nil)
	suite.invoiceRepo.On("Delete", suite.ctx, invoice.ID).Return(nil)
	suite.cache.On("DeleteInvoicePDF", suite.ctx, invoice.ID).Return(nil)

	suite.NoError(suite.service.Delete(suite.ctx, p, invoice.ID))
}

func TestInvoiceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}
