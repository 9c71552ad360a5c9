package handlers

import (
	"net/http"

	"acta/internal/common"
	"acta/internal/logger"
	"acta/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const logoFormField = "logo"

// CompanyHandlers handles company and company logo HTTP requests
type CompanyHandlers struct {
	companyService services.CompanyService
}

func NewCompanyHandlers(companyService services.CompanyService) *CompanyHandlers {
	return &CompanyHandlers{companyService: companyService}
}

func (h *CompanyHandlers) CreateCompany(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}

	var req services.CompanyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendError(c, err)
	}

	company, err := h.companyService.Create(c.Request().Context(), p, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, company)
}

func (h *CompanyHandlers) ListCompanies(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	tenantID := scopedTenant(c)
	page, err := common.ParsePageRequest(c)
	if err != nil {
		return common.SendError(c, err)
	}

	companies, err := h.companyService.List(c.Request().Context(), p, tenantID, page)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, companies)
}

func (h *CompanyHandlers) GetCompany(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	company, err := h.companyService.Get(c.Request().Context(), p, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, company)
}

func (h *CompanyHandlers) UpdateCompany(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req services.UpdateCompanyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendError(c, err)
	}

	company, err := h.companyService.Update(c.Request().Context(), p, id, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, company)
}

func (h *CompanyHandlers) DeleteCompany(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.companyService.Delete(c.Request().Context(), p, id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadLogo stores the multipart "logo" file and replaces the previous one.
func (h *CompanyHandlers) UploadLogo(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	file, err := c.FormFile(logoFormField)
	if err != nil {
		return common.SendValidationError(c, logoFormField, "logo file is required")
	}
	src, err := file.Open()
	if err != nil {
		return common.SendError(c, common.NewInternalError("open uploaded logo", err))
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.FromEcho(c).Warn("failed to close uploaded logo", zap.Error(err))
		}
	}()

	company, err := h.companyService.UploadLogo(c.Request().Context(), p, id, services.LogoUpload{
		Filename: file.Filename,
		Size:     file.Size,
		Reader:   src,
	})
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, company)
}

func (h *CompanyHandlers) DeleteLogo(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	company, err := h.companyService.DeleteLogo(c.Request().Context(), p, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, company)
}

// GetLogo redirects to a short-lived presigned URL of the logo object.
func (h *CompanyHandlers) GetLogo(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	url, err := h.companyService.LogoURL(c.Request().Context(), p, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.Redirect(http.StatusFound, url)
}
