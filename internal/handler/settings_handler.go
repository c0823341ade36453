package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/receptionist/internal/middleware"
	"github.com/suteetoe/receptionist/internal/model"
	"github.com/suteetoe/receptionist/internal/store"
	"github.com/suteetoe/receptionist/pkg/logger"
	"go.uber.org/zap"
)

// CompanyProfileRequest is a settings edit. BaseVersionID, when set, must be
// the version the edit was made against.
type CompanyProfileRequest struct {
	BaseVersionID uint `json:"base_version_id"`
	model.CompanyProfileVersion
}

// AgentConfigRequest is an agent settings edit
type AgentConfigRequest struct {
	BaseVersionID uint `json:"base_version_id"`
	model.AgentConfigVersion
}

func versionOptions(base uint) []store.VersionOption {
	if base == 0 {
		return nil
	}
	return []store.VersionOption{store.Supersedes(base)}
}

// GetCompanyProfile returns the active company profile
func (h *Handler) GetCompanyProfile(c echo.Context) error {
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return missingTenant(c)
	}

	profile, err := h.profiles.GetActive(c.Request().Context(), tenantID)
	if err != nil {
		return respondError(c, err, "Failed to load company profile")
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateCompanyProfile stores the edit as a new active version
func (h *Handler) UpdateCompanyProfile(c echo.Context) error {
	log := logger.FromEcho(c)
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return missingTenant(c)
	}

	var req CompanyProfileRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	profile, err := h.profiles.CreateNewVersion(c.Request().Context(), tenantID, req.CompanyProfileVersion, versionOptions(req.BaseVersionID)...)
	if err != nil {
		return respondError(c, err, "Failed to update company profile")
	}

	log.Info("Company profile updated",
		zap.Uint("tenant_id", tenantID),
		zap.Uint("version_id", profile.ID))
	return c.JSON(http.StatusOK, profile)
}

// CompanyProfileHistory lists every company profile version, newest first
func (h *Handler) CompanyProfileHistory(c echo.Context) error {
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return missingTenant(c)
	}

	versions, err := h.profiles.History(c.Request().Context(), tenantID)
	if err != nil {
		return respondError(c, err, "Failed to load company profile history")
	}
	return c.JSON(http.StatusOK, versions)
}

// GetAgentConfig returns the active agent configuration
func (h *Handler) GetAgentConfig(c echo.Context) error {
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return missingTenant(c)
	}

	agent, err := h.agents.GetActive(c.Request().Context(), tenantID)
	if err != nil {
		return respondError(c, err, "Failed to load agent configuration")
	}
	return c.JSON(http.StatusOK, agent)
}

// UpdateAgentConfig stores the edit as a new active version
func (h *Handler) UpdateAgentConfig(c echo.Context) error {
	log := logger.FromEcho(c)
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return missingTenant(c)
	}

	var req AgentConfigRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	agent, err := h.agents.CreateNewVersion(c.Request().Context(), tenantID, req.AgentConfigVersion, versionOptions(req.BaseVersionID)...)
	if err != nil {
		return respondError(c, err, "Failed to update agent configuration")
	}

	log.Info("Agent configuration updated",
		zap.Uint("tenant_id", tenantID),
		zap.Uint("version_id", agent.ID),
		zap.String("model", agent.Model),
		zap.Float64("temperature", agent.Temperature))
	return c.JSON(http.StatusOK, agent)
}

// AgentConfigHistory lists every agent configuration version, newest first
func (h *Handler) AgentConfigHistory(c echo.Context) error {
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return missingTenant(c)
	}

	versions, err := h.agents.History(c.Request().Context(), tenantID)
	if err != nil {
		return respondError(c, err, "Failed to load agent configuration history")
	}
	return c.JSON(http.StatusOK, versions)
}
