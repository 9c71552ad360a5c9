package services

import (
	"context"
	"strings"
	"time"

	"acta/internal/caching"
	"acta/internal/common"
	"acta/internal/logger"
	"acta/internal/models"
	"acta/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Create(ctx context.Context, p models.Principal, req *CreateUserRequest) (*models.User, error)
	Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, p models.Principal, tenantID *uuid.UUID, page models.PageRequest) (*models.Page[*models.User], error)
	Update(ctx context.Context, p models.Principal, id uuid.UUID, req *UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, p models.Principal, id uuid.UUID) error
}

type CreateUserRequest struct {
	Email     string     `json:"email" validate:"required,email,max=255"`
	Password  string     `json:"password" validate:"required,min=8,max=72"`
	FirstName string     `json:"first_name" validate:"max=100"`
	LastName  string     `json:"last_name" validate:"max=100"`
	Role      string     `json:"role" validate:"omitempty,role"`
	TenantID  *uuid.UUID `json:"tenant_id"`
}

// UpdateUserRequest applies only the fields that are set. tenant_id is not
// part of it: users never move between tenants.
type UpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	Password  *string `json:"password" validate:"omitempty,min=8,max=72"`
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Role      *string `json:"role" validate:"omitempty,role"`
	IsActive  *bool   `json:"is_active"`
}

type userService struct {
	userRepo   repositories.UserRepository
	tenantRepo repositories.TenantRepository
	cacheSvc   caching.CacheService
	bcryptCost int
	// tokenTTL bounds how long a user-wide revocation marker must live.
	tokenTTL time.Duration
}

func NewUserService(userRepo repositories.UserRepository, tenantRepo repositories.TenantRepository, cacheSvc caching.CacheService,
	bcryptCost int, tokenTTL time.Duration) UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		cacheSvc:   cacheSvc,
		bcryptCost: bcryptCost,
		tokenTTL:   tokenTTL,
	}
}

func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", common.NewInternalError("hash password", err)
	}
	return string(hashed), nil
}

// checkGrant enforces that only privileged principals assign roles and that
// nobody grants a role above their own.
func checkGrant(p models.Principal, role models.Role) error {
	if !p.IsPrivileged() {
		return common.NewForbiddenError("access denied: role changes require an admin")
	}
	if !p.Role.Satisfies(role) {
		return common.NewForbiddenError("access denied: cannot grant role " + string(role))
	}
	return nil
}

func (s *userService) Create(ctx context.Context, p models.Principal, req *CreateUserRequest) (*models.User, error) {
	role := models.RoleUser
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			return nil, common.NewValidationError("role", err.Error())
		}
		role = parsed
	}
	if err := checkGrant(p, role); err != nil {
		return nil, err
	}

	var tenantID *uuid.UUID
	if role != models.RoleSuperAdmin || (req.TenantID != nil && *req.TenantID != uuid.Nil) {
		resolved, err := ResolveTenant(p, req.TenantID)
		if err != nil {
			return nil, err
		}
		if _, err := s.tenantRepo.GetByID(ctx, resolved); err != nil {
			return nil, err
		}
		tenantID = &resolved
	}

	hash, err := HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(role)),
		zap.String("created_by", p.ID.String()))
	return user, nil
}

// loadVisible fetches a user and hides users of other tenants behind a
// forbidden error.
func (s *userService) loadVisible(ctx context.Context, p models.Principal, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsSuperAdmin() || user.ID == p.ID {
		return user, nil
	}
	if user.TenantID == nil || !CanAccessTenant(p, *user.TenantID) {
		return nil, common.NewForbiddenError("access denied: tenant mismatch")
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.User, error) {
	return s.loadVisible(ctx, p, id)
}

func (s *userService) List(ctx context.Context, p models.Principal, tenantID *uuid.UUID, page models.PageRequest) (*models.Page[*models.User], error) {
	if d := Authorize(p, Capability{}, tenantID); !d.Allowed {
		return nil, d.Err()
	}
	users, total, err := s.userRepo.List(ctx, TenantFilter(p, tenantID), page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(users, total, page), nil
}

func (s *userService) Update(ctx context.Context, p models.Principal, id uuid.UUID, req *UpdateUserRequest) (*models.User, error) {
	user, err := s.loadVisible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !p.Role.Satisfies(user.Role) {
		return nil, common.NewForbiddenError("access denied: cannot modify a user with a higher role")
	}

	revoke := false
	if req.Role != nil {
		role, err := models.ParseRole(*req.Role)
		if err != nil {
			return nil, common.NewValidationError("role", err.Error())
		}
		if role != user.Role {
			if err := checkGrant(p, role); err != nil {
				return nil, err
			}
			if role != models.RoleSuperAdmin && user.TenantID == nil {
				return nil, common.NewValidationError("role", "a user without a tenant must stay super_admin")
			}
			user.Role = role
			revoke = true
		}
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Password != nil {
		hash, err := HashPassword(*req.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
		revoke = true
	}
	if req.IsActive != nil {
		if !*req.IsActive && user.IsActive {
			revoke = true
		}
		user.IsActive = *req.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if revoke {
		s.revokeTokens(ctx, user.ID)
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, p models.Principal, id uuid.UUID) error {
	if !p.IsSuperAdmin() {
		return common.NewForbiddenError("only a super admin can delete users")
	}
	if id == p.ID {
		return common.NewValidationError("id", "you cannot delete your own account")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.revokeTokens(ctx, id)
	return nil
}

// revokeTokens is best effort; a cache outage must not undo a committed change.
func (s *userService) revokeTokens(ctx context.Context, userID uuid.UUID) {
	if s.cacheSvc == nil {
		return
	}
	if err := s.cacheSvc.RevokeUserTokens(ctx, userID, s.tokenTTL); err != nil {
		logger.FromContext(ctx).Warn("failed to revoke user tokens", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
