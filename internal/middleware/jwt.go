package middleware

import (
	"errors"
	"time"

	"acta/internal/common"
	"acta/internal/logger"
	"acta/internal/services"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const claimsContextKey = "user"

// JWTAuth verifies bearer tokens and resolves the request principal. Tokens
// are checked against the local HS256 secret, or against a remote JWKS when a
// URL is configured.
type JWTAuth struct {
	auth services.AuthService
	jwks *keyfunc.JWKS
}

func NewJWTAuth(auth services.AuthService, jwksURL string) (*JWTAuth, error) {
	a := &JWTAuth{auth: auth}
	if jwksURL == "" {
		return a, nil
	}

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.GetLogger().Warn("jwks refresh failed", zap.String("url", jwksURL), zap.Error(err))
		},
	})
	if err != nil {
		return nil, err
	}
	a.jwks = jwks
	return a, nil
}

// Close stops the JWKS refresh goroutine.
func (a *JWTAuth) Close() {
	if a.jwks != nil {
		a.jwks.EndBackground()
	}
}

func (a *JWTAuth) Middleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:     claimsContextKey,
		ParseTokenFunc: a.parseToken,
		ErrorHandler: func(c echo.Context, err error) error {
			var appErr *common.AppError
			if errors.As(err, &appErr) {
				return appErr
			}
			if errors.Is(err, echojwt.ErrJWTMissing) {
				return common.NewUnauthorizedError("Missing or malformed token")
			}
			return common.NewUnauthorizedError("Invalid or expired token")
		},
	})
}

// parseToken verifies the token, rejects revoked ones and stores the
// principal on the request context.
func (a *JWTAuth) parseToken(c echo.Context, raw string) (interface{}, error) {
	claims, err := a.verify(raw)
	if err != nil {
		return nil, err
	}

	ctx := c.Request().Context()
	p, err := a.auth.Principal(ctx, claims)
	if err != nil {
		return nil, err
	}
	c.SetRequest(c.Request().WithContext(common.WithPrincipal(ctx, p)))
	return claims, nil
}

func (a *JWTAuth) verify(raw string) (*services.TokenClaims, error) {
	if a.jwks == nil {
		return a.auth.ValidateToken(raw)
	}
	claims := &services.TokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, a.jwks.Keyfunc)
	if err != nil || !token.Valid {
		return nil, common.NewUnauthorizedError("Invalid or expired token")
	}
	return claims, nil
}

// ClaimsFromContext returns the verified claims of the current request.
func ClaimsFromContext(c echo.Context) (*services.TokenClaims, bool) {
	claims, ok := c.Get(claimsContextKey).(*services.TokenClaims)
	return claims, ok
}
