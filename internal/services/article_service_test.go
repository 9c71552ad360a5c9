package services

import (
	"context"
	"testing"

	"acta/internal/common"
	"acta/internal/models"
	"acta/internal/repositories"
	"acta/testhelpers"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ArticleServiceTestSuite struct {
	suite.Suite
	articleRepo *testhelpers.MockArticleRepository
	companyRepo *testhelpers.MockCompanyRepository
	service     ArticleService
	ctx         context.Context
	tenantID    uuid.UUID
	company     *models.Company
}

func (suite *ArticleServiceTestSuite) SetupTest() {
	suite.articleRepo = new(testhelpers.MockArticleRepository)
	suite.companyRepo = new(testhelpers.MockCompanyRepository)
	suite.service = NewArticleService(suite.articleRepo, suite.companyRepo)
	suite.ctx = context.Background()
	suite.tenantID = uuid.New()
	suite.company = &models.Company{ID: uuid.New(), TenantID: suite.tenantID, BusinessName: "Acme"}
}

func (suite *ArticleServiceTestSuite) TearDownTest() {
	suite.articleRepo.AssertExpectations(suite.T())
	suite.companyRepo.AssertExpectations(suite.T())
}

func (suite *ArticleServiceTestSuite) TestCreate_InheritsCompanyTenant() {
	p := principal(models.RoleUser, &suite.tenantID)
	suite.companyRepo.On("GetByID", suite.ctx, suite.company.ID).Return(suite.company, nil)
	suite.articleRepo.On("Create", suite.ctx, mock.MatchedBy(func(a *models.Article) bool {
		return a.TenantID == suite.tenantID && a.CompanyID == suite.company.ID &&
			a.BasePrice.Equal(decimal.RequireFromString("10.13")) && a.VATCode == models.VATStandard
	})).Return(nil)

	article, err := suite.service.Create(suite.ctx, p, &ArticleRequest{
		CompanyID: suite.company.ID,
		Name:      " Widget ",
		Unit:      "pcs",
		Code:      "W-1",
		VATCode:   18,
		BasePrice: decimal.RequireFromString("10.125"),
	})

	suite.Require().NoError(err)
	suite.Equal("Widget", article.Name)
}

func (suite *ArticleServiceTestSuite) TestCreate_InvalidVATCode() {
	p := principal(models.RoleUser, &suite.tenantID)
	suite.companyRepo.On("GetByID", suite.ctx, suite.company.ID).Return(suite.company, nil)

	_, err := suite.service.Create(suite.ctx, p, &ArticleRequest{
		CompanyID: suite.company.ID, Name: "Widget", Unit: "pcs", Code: "W-1", VATCode: 5,
	})

	suite.ErrorIs(err, common.ErrValidation)
}

func (suite *ArticleServiceTestSuite) TestCreate_NegativePrice() {
	p := principal(models.RoleUser, &suite.tenantID)
	suite.companyRepo.On("GetByID", suite.ctx, suite.company.ID).Return(suite.company, nil)

	_, err := suite.service.Create(suite.ctx, p, &ArticleRequest{
		CompanyID: suite.company.ID, Name: "Widget", Unit: "pcs", Code: "W-1", VATCode: 8,
		BasePrice: decimal.NewFromInt(-1),
	})

	suite.ErrorIs(err, common.ErrValidation)
}

func (suite *ArticleServiceTestSuite) TestCreate_PriceAboveColumnLimit() {
	p := principal(models.RoleUser, &suite.tenantID)
	suite.companyRepo.On("GetByID", suite.ctx, suite.company.ID).Return(suite.company, nil).Maybe()

	_, err := suite.service.Create(suite.ctx, p, &ArticleRequest{
		CompanyID: suite.company.ID, Name: "Widget", Unit: "pcs", Code: "W-1", VATCode: 8,
		BasePrice: decimal.RequireFromString("100000000"),
	})

	suite.ErrorIs(err, common.ErrValidation)
	suite.articleRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *ArticleServiceTestSuite) TestUpdate_PriceAboveColumnLimit() {
	p := principal(models.RoleUser, &suite.tenantID)
	existing := &models.Article{ID: uuid.New(), CompanyID: suite.company.ID, TenantID: suite.tenantID, VATCode: models.VATZero, BasePrice: decimal.NewFromInt(5)}
	suite.articleRepo.On("GetByID", suite.ctx, existing.ID).Return(existing, nil).Maybe()

	price := decimal.RequireFromString("99999999.995")
	_, err := suite.service.Update(suite.ctx, p, existing.ID, &UpdateArticleRequest{BasePrice: &price})

	suite.ErrorIs(err, common.ErrValidation)
	suite.articleRepo.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
}

func (suite *ArticleServiceTestSuite) TestCreate_ForeignCompanyForbidden() {
	other := uuid.New()
	p := principal(models.RoleAdmin, &other)
	suite.companyRepo.On("GetByID", suite.ctx, suite.company.ID).Return(suite.company, nil)

	_, err := suite.service.Create(suite.ctx, p, &ArticleRequest{
		CompanyID: suite.company.ID, Name: "Widget", Unit: "pcs", Code: "W-1",
	})

	suite.ErrorIs(err, common.ErrForbidden)
	suite.articleRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *ArticleServiceTestSuite) TestCreate_DuplicateCodeConflict() {
	p := principal(models.RoleUser, &suite.tenantID)
	suite.companyRepo.On("GetByID", suite.ctx, suite.company.ID).Return(suite.company, nil)
	suite.articleRepo.On("Create", suite.ctx, mock.Anything).
		Return(common.NewConflictError("An article with this code already exists for the company"))

	_, err := suite.service.Create(suite.ctx, p, &ArticleRequest{
		CompanyID: suite.company.ID, Name: "Widget", Unit: "pcs", Code: "W-1",
	})

	suite.ErrorIs(err, common.ErrConflict)
}

func (suite *ArticleServiceTestSuite) TestList_ByCompany() {
	p := principal(models.RoleUser, &suite.tenantID)
	page := models.NewPageRequest(1, 20)
	suite.companyRepo.On("GetByID", suite.ctx, suite.company.ID).Return(suite.company, nil)
	filter := repositories.ArticleFilter{TenantID: &suite.tenantID, CompanyID: &suite.company.ID}
	suite.articleRepo.On("List", suite.ctx, filter, page).
		Return([]*models.Article{{ID: uuid.New(), CompanyID: suite.company.ID, TenantID: suite.tenantID}}, 1, nil)

	result, err := suite.service.List(suite.ctx, p, ArticleQuery{CompanyID: &suite.company.ID}, page)

	suite.Require().NoError(err)
	suite.Len(result.Items, 1)
}

func (suite *ArticleServiceTestSuite) TestList_ForeignCompanyForbidden() {
	other := uuid.New()
	p := principal(models.RoleUser, &other)
	suite.companyRepo.On("GetByID", suite.ctx, suite.company.ID).Return(suite.company, nil)

	_, err := suite.service.List(suite.ctx, p, ArticleQuery{CompanyID: &suite.company.ID}, models.NewPageRequest(1, 20))

	suite.ErrorIs(err, common.ErrForbidden)
}

func (suite *ArticleServiceTestSuite) TestUpdate_ChangesPriceAndVAT() {
	p := principal(models.RoleUser, &suite.tenantID)
	existing := &models.Article{ID: uuid.New(), CompanyID: suite.company.ID, TenantID: suite.tenantID, VATCode: models.VATZero, BasePrice: decimal.NewFromInt(5)}
	suite.articleRepo.On("GetByID", suite.ctx, existing.ID).Return(existing, nil)
	suite.articleRepo.On("Update", suite.ctx, mock.Anything).Return(nil)

	vat := 8
	price := decimal.RequireFromString("7.50")
	article, err := suite.service.Update(suite.ctx, p, existing.ID, &UpdateArticleRequest{VATCode: &vat, BasePrice: &price})

	suite.Require().NoError(err)
	suite.Equal(models.VATReduced, article.VATCode)
	suite.True(article.BasePrice.Equal(price))
}

func (suite *ArticleServiceTestSuite) TestDelete_ForeignTenantForbidden() {
	other := uuid.New()
	p := principal(models.RoleUser, &other)
	existing := &models.Article{ID: uuid.New(), TenantID: suite.tenantID}
	suite.articleRepo.On("GetByID", suite.ctx, existing.ID).Return(existing, nil)

	err := suite.service.Delete(suite.ctx, p, existing.ID)

	suite.ErrorIs(err, common.ErrForbidden)
}

func TestArticleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ArticleServiceTestSuite))
}
