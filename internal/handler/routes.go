package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/receptionist/internal/middleware"
	"github.com/suteetoe/receptionist/pkg/jwtutil"
	"github.com/suteetoe/receptionist/pkg/metrics"
)

// RegisterRoutes mounts every route on e
func (h *Handler) RegisterRoutes(e *echo.Echo, jwtUtil *jwtutil.JWTUtil) {
	// Public routes - no authentication required
	e.GET("/health", h.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler()))

	api := e.Group("/api", middleware.JWTAuthMiddleware(jwtUtil))

	// Onboarding creates the tenant, so it cannot require one
	api.POST("/onboarding", h.Onboard)

	// Tenant-specific operations
	scoped := api.Group("", middleware.TenantMiddleware(h.tenants))

	settings := scoped.Group("/settings")
	settings.GET("/company", h.GetCompanyProfile)
	settings.PUT("/company", h.UpdateCompanyProfile)
	settings.GET("/company/history", h.CompanyProfileHistory)
	settings.GET("/agent", h.GetAgentConfig)
	settings.PUT("/agent", h.UpdateAgentConfig)
	settings.GET("/agent/history", h.AgentConfigHistory)

	knowledge := scoped.Group("/knowledge")
	knowledge.GET("", h.ListKnowledge)
	knowledge.POST("", h.AddKnowledge)
	knowledge.GET("/history", h.KnowledgeHistory)
	knowledge.GET("/trusted-sources", h.GetTrustedSources)
	knowledge.PUT("/trusted-sources", h.UpdateTrustedSources)
	knowledge.DELETE("/:id", h.DeleteKnowledge)

	templates := scoped.Group("/templates")
	templates.GET("/:slug", h.GetTemplate)
	templates.PUT("/:slug", h.UpdateTenantTemplate)

	scoped.POST("/prompt/preview", h.PreviewPrompt)

	// Global templates
	admin := api.Group("/admin", middleware.RequireRole(middleware.RoleAdmin))
	admin.PUT("/templates/:slug", h.UpdateGlobalTemplate)
}
