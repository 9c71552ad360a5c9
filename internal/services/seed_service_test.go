package services

import (
	"context"
	"errors"
	"testing"

	"acta/internal/common"
	"acta/internal/models"
	"acta/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestEnsureSuperAdmin_CreatesWhenMissing(t *testing.T) {
	ctx := context.Background()
	repo := new(testhelpers.MockUserRepository)
	repo.On("GetByEmail", ctx, "admin@acta.com").Return(nil, common.NewNotFoundError("User"))
	repo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleSuperAdmin && u.TenantID == nil &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("Acta123!")) == nil
	})).Return(nil)

	created, err := NewSeedService(repo, bcrypt.MinCost).EnsureSuperAdmin(ctx, "Admin@Acta.com", "Acta123!")

	require.NoError(t, err)
	assert.True(t, created)
	repo.AssertExpectations(t)
}

func TestEnsureSuperAdmin_ExistingLeftAlone(t *testing.T) {
	ctx := context.Background()
	repo := new(testhelpers.MockUserRepository)
	repo.On("GetByEmail", ctx, "admin@acta.com").Return(&models.User{Email: "admin@acta.com"}, nil)

	created, err := NewSeedService(repo, bcrypt.MinCost).EnsureSuperAdmin(ctx, "admin@acta.com", "Acta123!")

	require.NoError(t, err)
	assert.False(t, created)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEnsureSuperAdmin_NoPasswordSkips(t *testing.T) {
	ctx := context.Background()
	repo := new(testhelpers.MockUserRepository)
	repo.On("GetByEmail", ctx, "admin@acta.com").Return(nil, common.NewNotFoundError("User"))

	created, err := NewSeedService(repo, bcrypt.MinCost).EnsureSuperAdmin(ctx, "admin@acta.com", "")

	require.NoError(t, err)
	assert.False(t, created)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEnsureSuperAdmin_LookupFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(testhelpers.MockUserRepository)
	repo.On("GetByEmail", ctx, "admin@acta.com").Return(nil, common.NewInternalError("get user", errors.New("db down")))

	_, err := NewSeedService(repo, bcrypt.MinCost).EnsureSuperAdmin(ctx, "admin@acta.com", "Acta123!")

	assert.ErrorIs(t, err, common.ErrInternal)
}
