package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/receptionist/internal/middleware"
	"github.com/suteetoe/receptionist/internal/model"
	"github.com/suteetoe/receptionist/internal/tenant"
	"github.com/suteetoe/receptionist/pkg/logger"
	"go.uber.org/zap"
)

// OnboardingRequest is submitted once by the onboarding wizard
type OnboardingRequest struct {
	Company model.CompanyProfileVersion `json:"company"`
	Agent   model.AgentConfigVersion    `json:"agent"`
}

// Onboard creates the caller's tenant with its first configuration versions.
// The tenant identifier is the token subject, never a body field.
func (h *Handler) Onboard(c echo.Context) error {
	log := logger.FromEcho(c)

	subject, ok := middleware.GetSubjectFromContext(c)
	if !ok {
		log.Warn("Missing subject in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authenticated subject"})
	}

	var req OnboardingRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	result, err := h.tenants.Onboard(c.Request().Context(), tenant.OnboardRequest{
		ExternalID: subject,
		Company:    req.Company,
		Agent:      req.Agent,
	})
	if err != nil {
		return respondError(c, err, "Failed to onboard tenant")
	}

	log.Info("Tenant onboarded", zap.Uint("tenant_id", result.Tenant.ID))
	return c.JSON(http.StatusCreated, result)
}
