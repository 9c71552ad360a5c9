package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"acta/internal/common"
	"acta/internal/logger"
	"acta/internal/models"
	"acta/internal/repositories"
	"acta/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CompanyService interface {
	Create(ctx context.Context, p models.Principal, req *CompanyRequest) (*models.Company, error)
	Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Company, error)
	List(ctx context.Context, p models.Principal, tenantID *uuid.UUID, page models.PageRequest) (*models.Page[*models.Company], error)
	Update(ctx context.Context, p models.Principal, id uuid.UUID, req *UpdateCompanyRequest) (*models.Company, error)
	Delete(ctx context.Context, p models.Principal, id uuid.UUID) error

	UploadLogo(ctx context.Context, p models.Principal, id uuid.UUID, upload LogoUpload) (*models.Company, error)
	DeleteLogo(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Company, error)
	LogoURL(ctx context.Context, p models.Principal, id uuid.UUID) (string, error)
}

type CompanyRequest struct {
	TenantID                   *uuid.UUID `json:"tenant_id"`
	BusinessName               string     `json:"business_name" validate:"required,max=255"`
	TradeName                  *string    `json:"trade_name" validate:"omitempty,max=255"`
	BusinessType               string     `json:"business_type" validate:"required,businesstype"`
	UniqueIdentificationNumber string     `json:"unique_identification_number" validate:"required,max=64"`
	BusinessNumber             *string    `json:"business_number" validate:"omitempty,max=64"`
	FiscalNumber               *string    `json:"fiscal_number" validate:"omitempty,max=64"`
	VATNumber                  *string    `json:"vat_number" validate:"omitempty,max=64"`
	RegistrationDate           time.Time  `json:"registration_date" validate:"required"`
	Municipality               string     `json:"municipality" validate:"required,max=255"`
	Address                    string     `json:"address" validate:"required,max=255"`
	PhoneNumber                string     `json:"phone_number" validate:"required,max=64"`
	Email                      string     `json:"email" validate:"required,email,max=255"`
	BankAccount                *string    `json:"bank_account" validate:"omitempty,max=64"`
}

type UpdateCompanyRequest struct {
	BusinessName               *string    `json:"business_name" validate:"omitempty,min=1,max=255"`
	TradeName                  *string    `json:"trade_name" validate:"omitempty,max=255"`
	BusinessType               *string    `json:"business_type" validate:"omitempty,businesstype"`
	UniqueIdentificationNumber *string    `json:"unique_identification_number" validate:"omitempty,min=1,max=64"`
	BusinessNumber             *string    `json:"business_number" validate:"omitempty,max=64"`
	FiscalNumber               *string    `json:"fiscal_number" validate:"omitempty,max=64"`
	VATNumber                  *string    `json:"vat_number" validate:"omitempty,max=64"`
	RegistrationDate           *time.Time `json:"registration_date"`
	Municipality               *string    `json:"municipality" validate:"omitempty,min=1,max=255"`
	Address                    *string    `json:"address" validate:"omitempty,min=1,max=255"`
	PhoneNumber                *string    `json:"phone_number" validate:"omitempty,min=1,max=64"`
	Email                      *string    `json:"email" validate:"omitempty,email,max=255"`
	BankAccount                *string    `json:"bank_account" validate:"omitempty,max=64"`
}

// LogoUpload is a logo file as received from a multipart form.
type LogoUpload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

type LogoConfig struct {
	MaxBytes      int64
	PresignExpiry time.Duration
}

var logoContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

type companyService struct {
	companyRepo repositories.CompanyRepository
	store       storage.ObjectStore
	logoCfg     LogoConfig
}

func NewCompanyService(companyRepo repositories.CompanyRepository, store storage.ObjectStore, logoCfg LogoConfig) CompanyService {
	if logoCfg.MaxBytes == 0 {
		logoCfg.MaxBytes = 2 << 20
	}
	if logoCfg.PresignExpiry == 0 {
		logoCfg.PresignExpiry = 15 * time.Minute
	}
	return &companyService{companyRepo: companyRepo, store: store, logoCfg: logoCfg}
}

// blankToNil keeps empty optional identifiers out of the unique indexes.
func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *companyService) Create(ctx context.Context, p models.Principal, req *CompanyRequest) (*models.Company, error) {
	tenantID, err := ResolveTenant(p, req.TenantID)
	if err != nil {
		return nil, err
	}

	company := &models.Company{
		ID:                         uuid.New(),
		TenantID:                   tenantID,
		BusinessName:               strings.TrimSpace(req.BusinessName),
		TradeName:                  blankToNil(req.TradeName),
		BusinessType:               models.BusinessType(req.BusinessType),
		UniqueIdentificationNumber: strings.TrimSpace(req.UniqueIdentificationNumber),
		BusinessNumber:             blankToNil(req.BusinessNumber),
		FiscalNumber:               blankToNil(req.FiscalNumber),
		VATNumber:                  blankToNil(req.VATNumber),
		RegistrationDate:           req.RegistrationDate,
		Municipality:               req.Municipality,
		Address:                    req.Address,
		PhoneNumber:                req.PhoneNumber,
		Email:                      strings.ToLower(strings.TrimSpace(req.Email)),
		BankAccount:                blankToNil(req.BankAccount),
	}
	if !company.BusinessType.Valid() {
		return nil, common.NewValidationError("business_type", "business_type must be a known business type")
	}

	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("company created",
		zap.String("company_id", company.ID.String()),
		zap.String("tenant_id", tenantID.String()))
	return company, nil
}

// loadCompany returns the company when the principal may see its tenant.
func loadCompany(ctx context.Context, repo repositories.CompanyRepository, p models.Principal, id uuid.UUID) (*models.Company, error) {
	company, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccessTenant(p, company.TenantID) {
		return nil, common.NewForbiddenError("access denied: company belongs to another tenant")
	}
	return company, nil
}

func (s *companyService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Company, error) {
	return loadCompany(ctx, s.companyRepo, p, id)
}

func (s *companyService) List(ctx context.Context, p models.Principal, tenantID *uuid.UUID, page models.PageRequest) (*models.Page[*models.Company], error) {
	if d := Authorize(p, Capability{}, tenantID); !d.Allowed {
		return nil, d.Err()
	}
	companies, total, err := s.companyRepo.List(ctx, TenantFilter(p, tenantID), page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(companies, total, page), nil
}

func (s *companyService) Update(ctx context.Context, p models.Principal, id uuid.UUID, req *UpdateCompanyRequest) (*models.Company, error) {
	company, err := loadCompany(ctx, s.companyRepo, p, id)
	if err != nil {
		return nil, err
	}

	if req.BusinessName != nil {
		company.BusinessName = strings.TrimSpace(*req.BusinessName)
	}
	if req.TradeName != nil {
		company.TradeName = blankToNil(req.TradeName)
	}
	if req.BusinessType != nil {
		bt := models.BusinessType(*req.BusinessType)
		if !bt.Valid() {
			return nil, common.NewValidationError("business_type", "business_type must be a known business type")
		}
		company.BusinessType = bt
	}
	if req.UniqueIdentificationNumber != nil {
		company.UniqueIdentificationNumber = strings.TrimSpace(*req.UniqueIdentificationNumber)
	}
	if req.BusinessNumber != nil {
		company.BusinessNumber = blankToNil(req.BusinessNumber)
	}
	if req.FiscalNumber != nil {
		company.FiscalNumber = blankToNil(req.FiscalNumber)
	}
	if req.VATNumber != nil {
		company.VATNumber = blankToNil(req.VATNumber)
	}
	if req.RegistrationDate != nil {
		company.RegistrationDate = *req.RegistrationDate
	}
	if req.Municipality != nil {
		company.Municipality = *req.Municipality
	}
	if req.Address != nil {
		company.Address = *req.Address
	}
	if req.PhoneNumber != nil {
		company.PhoneNumber = *req.PhoneNumber
	}
	if req.Email != nil {
		company.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.BankAccount != nil {
		company.BankAccount = blankToNil(req.BankAccount)
	}

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// Delete removes the company, and with it its articles and invoices. The
// stored logo is removed afterwards; a leftover object is picked up by the
// logo collector.
func (s *companyService) Delete(ctx context.Context, p models.Principal, id uuid.UUID) error {
	company, err := loadCompany(ctx, s.companyRepo, p, id)
	if err != nil {
		return err
	}
	if err := s.companyRepo.Delete(ctx, id); err != nil {
		return err
	}
	if company.Logo != nil {
		s.removeObject(ctx, *company.Logo)
	}
	logger.FromContext(ctx).Info("company deleted", zap.String("company_id", id.String()))
	return nil
}

func (s *companyService) UploadLogo(ctx context.Context, p models.Principal, id uuid.UUID, upload LogoUpload) (*models.Company, error) {
	if s.store == nil {
		return nil, common.NewInternalError("store logo", errStorageDisabled)
	}
	company, err := loadCompany(ctx, s.companyRepo, p, id)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	contentType, ok := logoContentTypes[ext]
	if !ok {
		return nil, common.NewValidationError("logo", "logo must be a jpg, jpeg or png file")
	}
	if upload.Size <= 0 {
		return nil, common.NewValidationError("logo", "logo is empty")
	}
	if upload.Size > s.logoCfg.MaxBytes {
		return nil, common.NewValidationError("logo", "logo must not exceed 2MB")
	}

	// Read one byte past the limit so a lying Size header is still caught.
	data, err := io.ReadAll(io.LimitReader(upload.Reader, s.logoCfg.MaxBytes+1))
	if err != nil {
		return nil, common.NewInternalError("read logo", err)
	}
	if int64(len(data)) > s.logoCfg.MaxBytes {
		return nil, common.NewValidationError("logo", "logo must not exceed 2MB")
	}
	if sniffed := http.DetectContentType(data); sniffed != contentType {
		return nil, common.NewValidationError("logo", "logo content does not match its extension")
	}

	objectName := LogoObjectName(ext)
	if err := s.store.Put(ctx, objectName, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, common.NewInternalError("store logo", err)
	}

	previous := company.Logo
	if err := s.companyRepo.UpdateLogo(ctx, id, &objectName); err != nil {
		s.removeObject(ctx, objectName)
		return nil, err
	}
	company.Logo = &objectName
	if previous != nil {
		s.removeObject(ctx, *previous)
	}
	return company, nil
}

func (s *companyService) DeleteLogo(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Company, error) {
	company, err := loadCompany(ctx, s.companyRepo, p, id)
	if err != nil {
		return nil, err
	}
	if company.Logo == nil {
		return nil, common.NewNotFoundError("Logo")
	}
	previous := *company.Logo
	if err := s.companyRepo.UpdateLogo(ctx, id, nil); err != nil {
		return nil, err
	}
	company.Logo = nil
	s.removeObject(ctx, previous)
	return company, nil
}

func (s *companyService) LogoURL(ctx context.Context, p models.Principal, id uuid.UUID) (string, error) {
	company, err := loadCompany(ctx, s.companyRepo, p, id)
	if err != nil {
		return "", err
	}
	if company.Logo == nil {
		return "", common.NewNotFoundError("Logo")
	}
	if s.store == nil {
		return "", common.NewInternalError("presign logo", errStorageDisabled)
	}
	url, err := s.store.PresignedURL(ctx, *company.Logo, s.logoCfg.PresignExpiry)
	if err != nil {
		return "", common.NewInternalError("presign logo", err)
	}
	return url, nil
}

func (s *companyService) removeObject(ctx context.Context, objectName string) {
	if s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, objectName); err != nil {
		logger.FromContext(ctx).Warn("failed to delete logo object", zap.String("object", objectName), zap.Error(err))
	}
}

// LogoObjectName is a random hex name keeping the original extension.
func LogoObjectName(ext string) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + ext
}

var errStorageDisabled = errors.New("object storage is not configured")
