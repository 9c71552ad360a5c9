package handlers

import (
	"net/http"

	"acta/internal/common"
	"acta/internal/services"

	"github.com/labstack/echo/v4"
)

// ArticleHandlers handles article catalog HTTP requests
type ArticleHandlers struct {
	articleService services.ArticleService
}

func NewArticleHandlers(articleService services.ArticleService) *ArticleHandlers {
	return &ArticleHandlers{articleService: articleService}
}

func (h *ArticleHandlers) CreateArticle(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}

	var req services.ArticleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendError(c, err)
	}

	article, err := h.articleService.Create(c.Request().Context(), p, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, article)
}

// ListArticles accepts optional tenant_id and company_id filters.
func (h *ArticleHandlers) ListArticles(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	tenantID := scopedTenant(c)
	companyID, err := common.ParseOptionalUUID(c.QueryParam("company_id"), "company_id")
	if err != nil {
		return common.SendError(c, err)
	}
	page, err := common.ParsePageRequest(c)
	if err != nil {
		return common.SendError(c, err)
	}

	articles, err := h.articleService.List(c.Request().Context(), p, services.ArticleQuery{
		TenantID:  tenantID,
		CompanyID: companyID,
	}, page)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, articles)
}

func (h *ArticleHandlers) GetArticle(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	article, err := h.articleService.Get(c.Request().Context(), p, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, article)
}

func (h *ArticleHandlers) UpdateArticle(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req services.UpdateArticleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendError(c, err)
	}

	article, err := h.articleService.Update(c.Request().Context(), p, id, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, article)
}

func (h *ArticleHandlers) DeleteArticle(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.articleService.Delete(c.Request().Context(), p, id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
