package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/receptionist/internal/middleware"
)

// PreviewRequest optionally attaches ad hoc document text to the prompt
type PreviewRequest struct {
	Appendix string `json:"appendix"`
}

// PreviewPrompt returns the composed system prompt and model settings
func (h *Handler) PreviewPrompt(c echo.Context) error {
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return missingTenant(c)
	}

	var req PreviewRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	assembled, err := h.prompts.BuildForTenant(c.Request().Context(), tenantID, req.Appendix)
	if err != nil {
		return respondError(c, err, "Failed to compose prompt")
	}
	return c.JSON(http.StatusOK, assembled)
}
