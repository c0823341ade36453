// Package handler exposes the configuration core over HTTP.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/receptionist/internal/apperror"
	"github.com/suteetoe/receptionist/internal/service"
	"github.com/suteetoe/receptionist/internal/store"
	"github.com/suteetoe/receptionist/internal/tenant"
	"github.com/suteetoe/receptionist/pkg/logger"
	"go.uber.org/zap"
)

// Handler holds the dependencies of every route
type Handler struct {
	serviceName string
	tenants     *tenant.Resolver
	profiles    *store.CompanyProfileStore
	agents      *store.AgentConfigStore
	knowledge   *store.KnowledgeRepository
	templates   *store.TemplateRegistry
	prompts     *service.PromptService
}

// Deps groups the constructor arguments of Handler
type Deps struct {
	ServiceName string
	Tenants     *tenant.Resolver
	Profiles    *store.CompanyProfileStore
	Agents      *store.AgentConfigStore
	Knowledge   *store.KnowledgeRepository
	Templates   *store.TemplateRegistry
	Prompts     *service.PromptService
}

func New(d Deps) *Handler {
	return &Handler{
		serviceName: d.ServiceName,
		tenants:     d.Tenants,
		profiles:    d.Profiles,
		agents:      d.Agents,
		knowledge:   d.Knowledge,
		templates:   d.Templates,
		prompts:     d.Prompts,
	}
}

// HealthCheck handles the health check endpoint
func (h *Handler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": h.serviceName,
	})
}

// bindAndValidate binds the request body into req and runs the echo
// validator. When ok is false the 400 response has already been written.
func bindAndValidate(c echo.Context, req interface{}) (ok bool, err error) {
	log := logger.FromEcho(c)
	if err := c.Bind(req); err != nil {
		log.Warn("Invalid request data", zap.Error(err))
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(req); err != nil {
		msg := err.Error()
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			if s, ok := httpErr.Message.(string); ok {
				msg = s
			}
		}
		log.Warn("Request validation failed", zap.String("reason", msg))
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	return true, nil
}

// respondError writes err using the apperror status mapping
func respondError(c echo.Context, err error, msg string) error {
	log := logger.FromEcho(c)
	status := apperror.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error(msg, zap.Error(err))
	} else {
		log.Warn(msg, zap.Error(err))
	}
	return c.JSON(status, echo.Map{"error": apperror.PublicMessage(err)})
}

func missingTenant(c echo.Context) error {
	logger.FromEcho(c).Warn("Missing tenant_id in context")
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id is required"})
}
