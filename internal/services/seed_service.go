package services

import (
	"context"
	"errors"
	"strings"

	"acta/internal/common"
	"acta/internal/logger"
	"acta/internal/models"
	"acta/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SeedService makes sure the platform has a super admin to log in with.
type SeedService struct {
	userRepo   repositories.UserRepository
	bcryptCost int
}

func NewSeedService(userRepo repositories.UserRepository, bcryptCost int) *SeedService {
	return &SeedService{userRepo: userRepo, bcryptCost: bcryptCost}
}

// EnsureSuperAdmin creates the account when no user has the email yet. It
// reports whether a user was created. An existing account is left untouched,
// including its password.
func (s *SeedService) EnsureSuperAdmin(ctx context.Context, email, password string) (bool, error) {
	log := logger.FromContext(ctx)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, nil
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return false, err
	}

	if password == "" {
		log.Warn("super admin missing and SEED_SUPER_ADMIN_PASSWORD not set, skipping seed", zap.String("email", email))
		return false, nil
	}
	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return false, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Admin",
		LastName:     "User",
		Role:         models.RoleSuperAdmin,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Another instance seeded first.
		if errors.Is(err, common.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	log.Info("super admin seeded", zap.String("email", email), zap.String("user_id", user.ID.String()))
	return true, nil
}
