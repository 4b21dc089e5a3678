package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sihur-medellin/sihur/internal/services"
)

// bearerTokenParts is the expected number of parts when splitting the
// Authorization header.
const bearerTokenParts = 2

// CtxKeyClaims is the echo.Context key holding the *services.Claims of an
// authenticated request.
const CtxKeyClaims = "auth:claims"

// TokenVerifier validates a bearer token.
type TokenVerifier interface {
	VerifyToken(token string) (*services.Claims, error)
}

// Auth returns a middleware that rejects requests without a valid bearer
// token with 401 and stores the token claims in the context otherwise.
func Auth(verifier TokenVerifier, logger *zap.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="api"`)
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"message": "Token no proporcionado",
				})
			}

			parts := strings.SplitN(header, " ", bearerTokenParts)
			if len(parts) != bearerTokenParts || !strings.EqualFold(parts[0], "bearer") {
				logger.Warn("malformed authorization header",
					zap.String("path", c.Request().URL.Path),
					zap.String("ip", c.RealIP()))
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="api"`)
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"message": "Encabezado de autorización inválido",
				})
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(parts[1]))
			if err != nil {
				logger.Debug("token validation failed",
					zap.String("path", c.Request().URL.Path),
					zap.String("ip", c.RealIP()),
					zap.Error(err))
				c.Response().Header().Set(echo.HeaderWWWAuthenticate,
					`Bearer realm="api", error="invalid_token", error_description="Invalid or expired token"`)
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"message": "Token inválido o expirado",
				})
			}

			c.Set(CtxKeyClaims, claims)
			return next(c)
		}
	}
}

// RequireRoles returns a middleware that answers 403 unless the
// authenticated user has one of roles. It must run after Auth.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFrom(c)
			if claims == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"message": "Token no proporcionado",
				})
			}
			if !claims.HasRole(roles...) {
				return c.JSON(http.StatusForbidden, map[string]string{
					"message": "No tiene permisos para realizar esta acción",
				})
			}
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by Auth, or nil.
func ClaimsFrom(c echo.Context) *services.Claims {
	claims, _ := c.Get(CtxKeyClaims).(*services.Claims)
	return claims
}

// UserID returns the authenticated user's id, or 0.
func UserID(c echo.Context) uint {
	if claims := ClaimsFrom(c); claims != nil {
		return claims.UserID
	}
	return 0
}
