package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/receptionist/internal/apperror"
	"github.com/suteetoe/receptionist/internal/model"
	"github.com/suteetoe/receptionist/pkg/jwtutil"
	"github.com/suteetoe/receptionist/pkg/logger"
	"go.uber.org/zap"
)

// Context keys set by the auth middlewares
const (
	ContextSubject  = "subject"
	ContextRole     = "user_role"
	ContextTenantID = "tenant_id"
)

// RoleAdmin may edit global templates
const RoleAdmin = "admin"

// JWTAuthMiddleware validates the bearer token and stores its subject and role
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			// Extract the token from the Authorization header
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				log.Warn("Missing authorization header")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid authorization header format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set(ContextSubject, claims.Subject)
			c.Set(ContextRole, claims.Role)
			log.Debug("JWT token validated successfully",
				zap.String("subject", claims.Subject),
				zap.String("role", claims.Role))

			return next(c)
		}
	}
}

// TenantResolver is the part of tenant.Resolver the middleware needs
type TenantResolver interface {
	Resolve(ctx context.Context, externalID string) (*model.Tenant, error)
}

// TenantMiddleware resolves the authenticated subject to a tenant id.
// It must run after JWTAuthMiddleware.
func TenantMiddleware(resolver TenantResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			subject, _ := c.Get(ContextSubject).(string)
			tenant, err := resolver.Resolve(c.Request().Context(), subject)
			if err != nil {
				log.Warn("Failed to resolve tenant", zap.String("subject", subject), zap.Error(err))
				return c.JSON(apperror.HTTPStatus(err), echo.Map{"error": apperror.PublicMessage(err)})
			}

			c.Set(ContextTenantID, tenant.ID)
			return next(c)
		}
	}
}

// RequireRole rejects callers whose token role is not role
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if got, _ := c.Get(ContextRole).(string); got != role {
				logger.FromEcho(c).Warn("Forbidden", zap.String("required_role", role), zap.String("role", got))
				return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
			}
			return next(c)
		}
	}
}

// GetTenantIDFromContext retrieves the tenant ID from the context
// Returns 0, false if tenant ID is not found
func GetTenantIDFromContext(c echo.Context) (uint, bool) {
	tenantID, ok := c.Get(ContextTenantID).(uint)
	return tenantID, ok
}

// GetSubjectFromContext retrieves the authenticated subject from the context
func GetSubjectFromContext(c echo.Context) (string, bool) {
	subject, ok := c.Get(ContextSubject).(string)
	return subject, ok && subject != ""
}
