package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"acta/internal/caching"
	"acta/internal/common"
	"acta/internal/logger"
	"acta/internal/models"
	"acta/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues and resolves access tokens.
type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*models.TokenResponse, error)
	Register(ctx context.Context, p models.Principal, req *CreateUserRequest) (*models.User, error)
	Logout(ctx context.Context, p models.Principal, claims *TokenClaims) error
	Me(ctx context.Context, p models.Principal) (*models.User, error)

	GenerateToken(user *models.User) (string, *TokenClaims, error)
	ValidateToken(token string) (*TokenClaims, error)
	// Principal turns verified claims into the request principal and rejects
	// revoked tokens.
	Principal(ctx context.Context, claims *TokenClaims) (models.Principal, error)
}

// TokenClaims is the access token payload. Subject carries the user id and
// ID the token id used for revocation.
type TokenClaims struct {
	Role     string `json:"role"`
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthConfig struct {
	JWTSecret        string
	Issuer           string
	TokenTTL         time.Duration
	MaxLoginAttempts int64
	LoginWindow      time.Duration
}

type authService struct {
	userRepo repositories.UserRepository
	users    UserService
	cacheSvc caching.CacheService
	cfg      AuthConfig
	now      func() time.Time
}

func NewAuthService(userRepo repositories.UserRepository, users UserService, cacheSvc caching.CacheService, cfg AuthConfig) AuthService {
	return &authService{
		userRepo: userRepo,
		users:    users,
		cacheSvc: cacheSvc,
		cfg:      cfg,
		now:      time.Now,
	}
}

var errInvalidCredentials = common.NewUnauthorizedError("Invalid email or password")

// iat carries milliseconds so it orders against user revocation markers.
func init() {
	jwt.TimePrecision = time.Millisecond
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*models.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	limitKey := "login:" + email

	if s.cfg.MaxLoginAttempts > 0 {
		limited, err := s.cacheSvc.IsRateLimited(ctx, limitKey, s.cfg.MaxLoginAttempts, s.cfg.LoginWindow)
		if err != nil {
			logger.FromContext(ctx).Warn("login rate limit unavailable", zap.Error(err))
		} else if limited {
			return nil, common.NewUnauthorizedError("Too many login attempts, try again later")
		}
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}
	if !user.IsActive {
		return nil, common.NewUnauthorizedError("Account is disabled")
	}

	token, claims, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	if s.cfg.MaxLoginAttempts > 0 {
		_ = s.cacheSvc.ResetRateLimit(ctx, limitKey)
	}

	logger.FromContext(ctx).Info("user logged in", zap.String("user_id", user.ID.String()))
	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.cfg.TokenTTL.Seconds()),
		TokenID:     claims.ID,
		IssuedAt:    claims.IssuedAt.Time,
		User:        user,
	}, nil
}

// Register is user creation reached through the auth routes. Callers must be
// ADMIN or SUPER_ADMIN.
func (s *authService) Register(ctx context.Context, p models.Principal, req *CreateUserRequest) (*models.User, error) {
	if !p.IsPrivileged() {
		return nil, common.NewForbiddenError("access denied: registration requires an admin")
	}
	return s.users.Create(ctx, p, req)
}

func (s *authService) Logout(ctx context.Context, p models.Principal, claims *TokenClaims) error {
	if claims == nil || claims.ID == "" {
		return common.NewUnauthorizedError("token has no id")
	}
	expiresAt := s.now().Add(s.cfg.TokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.cacheSvc.RevokeToken(ctx, claims.ID, expiresAt); err != nil {
		return common.NewInternalError("revoke token", err)
	}
	logger.FromContext(ctx).Info("user logged out", zap.String("user_id", p.ID.String()))
	return nil
}

func (s *authService) Me(ctx context.Context, p models.Principal) (*models.User, error) {
	return s.userRepo.GetByID(ctx, p.ID)
}

func (s *authService) GenerateToken(user *models.User) (string, *TokenClaims, error) {
	now := s.now()
	claims := &TokenClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	if user.TenantID != nil {
		claims.TenantID = user.TenantID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", nil, common.NewInternalError("sign token", err)
	}
	return signed, claims, nil
}

func (s *authService) ValidateToken(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithIssuer(s.cfg.Issuer), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, common.NewUnauthorizedError("Invalid or expired token")
	}
	return claims, nil
}

func (s *authService) Principal(ctx context.Context, claims *TokenClaims) (models.Principal, error) {
	p, err := PrincipalFromClaims(claims)
	if err != nil {
		return models.Principal{}, err
	}

	if p.TokenID != "" {
		revoked, err := s.cacheSvc.IsTokenRevoked(ctx, p.TokenID)
		if err != nil {
			return models.Principal{}, common.NewInternalError("check token revocation", err)
		}
		if revoked {
			return models.Principal{}, common.NewUnauthorizedError("Token has been revoked")
		}
	}

	revokedAt, err := s.cacheSvc.UserTokensRevokedAt(ctx, p.ID)
	if err != nil {
		return models.Principal{}, common.NewInternalError("check token revocation", err)
	}
	if !revokedAt.IsZero() && claims.IssuedAt != nil && !claims.IssuedAt.Time.After(revokedAt) {
		return models.Principal{}, common.NewUnauthorizedError("Token has been revoked")
	}
	return p, nil
}

// PrincipalFromClaims validates the custom claims without touching storage.
func PrincipalFromClaims(claims *TokenClaims) (models.Principal, error) {
	if claims == nil {
		return models.Principal{}, common.NewUnauthorizedError("missing token claims")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.Principal{}, common.NewUnauthorizedError("invalid subject in token")
	}
	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return models.Principal{}, common.NewUnauthorizedError("invalid role in token")
	}

	p := models.Principal{ID: userID, Role: role, TokenID: claims.ID}
	if claims.TenantID != "" {
		tenantID, err := uuid.Parse(claims.TenantID)
		if err != nil {
			return models.Principal{}, common.NewUnauthorizedError("invalid tenant in token")
		}
		p.TenantID = &tenantID
	}
	return p, nil
}
