package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/receptionist/internal/middleware"
	"github.com/suteetoe/receptionist/internal/model"
	"github.com/suteetoe/receptionist/pkg/logger"
	"go.uber.org/zap"
)

// TemplateRequest is the new content of a template module
type TemplateRequest struct {
	Content string `json:"content" validate:"required"`
}

// GetTemplate returns the effective template for the tenant and the tier it
// came from.
func (h *Handler) GetTemplate(c echo.Context) error {
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return missingTenant(c)
	}

	res, err := h.templates.GetEffectiveTemplate(c.Request().Context(), tenantID, c.Param("slug"))
	if err != nil {
		return respondError(c, err, "Failed to resolve template")
	}
	return c.JSON(http.StatusOK, res)
}

// UpdateTenantTemplate stores a tenant override
func (h *Handler) UpdateTenantTemplate(c echo.Context) error {
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return missingTenant(c)
	}
	return h.upsertTemplate(c, model.TenantScope(tenantID))
}

// UpdateGlobalTemplate stores a template shared by all tenants
func (h *Handler) UpdateGlobalTemplate(c echo.Context) error {
	return h.upsertTemplate(c, model.GlobalScope())
}

func (h *Handler) upsertTemplate(c echo.Context, scope model.Scope) error {
	var req TemplateRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	module, err := h.templates.Upsert(c.Request().Context(), scope, c.Param("slug"), req.Content)
	if err != nil {
		return respondError(c, err, "Failed to store template")
	}

	logger.FromEcho(c).Info("Template stored",
		zap.String("scope", module.ScopeKey),
		zap.String("slug", module.Slug))
	return c.JSON(http.StatusOK, module)
}
