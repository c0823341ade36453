package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/receptionist/internal/middleware"
	"github.com/suteetoe/receptionist/pkg/logger"
	"go.uber.org/zap"
)

// DocumentRequest carries text already extracted by the document pipeline
type DocumentRequest struct {
	FileName string `json:"file_name" validate:"required,max=255"`
	RawText  string `json:"raw_text"`
}

// TrustedSourcesRequest replaces the tenant's trusted sources
type TrustedSourcesRequest struct {
	URLs []string `json:"urls"`
}

// ListKnowledge returns the active documents
func (h *Handler) ListKnowledge(c echo.Context) error {
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return missingTenant(c)
	}

	docs, err := h.knowledge.ListActive(c.Request().Context(), tenantID)
	if err != nil {
		return respondError(c, err, "Failed to list knowledge documents")
	}
	return c.JSON(http.StatusOK, docs)
}

// AddKnowledge stores a new active document
func (h *Handler) AddKnowledge(c echo.Context) error {
	log := logger.FromEcho(c)
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return missingTenant(c)
	}

	var req DocumentRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	doc, err := h.knowledge.AddDocument(c.Request().Context(), tenantID, req.FileName, req.RawText)
	if err != nil {
		return respondError(c, err, "Failed to add knowledge document")
	}

	log.Info("Knowledge document added",
		zap.Uint("tenant_id", tenantID),
		zap.Uint("document_id", doc.ID))
	return c.JSON(http.StatusCreated, doc)
}

// DeleteKnowledge soft-deletes a document
func (h *Handler) DeleteKnowledge(c echo.Context) error {
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return missingTenant(c)
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid document id"})
	}

	if err := h.knowledge.SoftDelete(c.Request().Context(), tenantID, uint(id)); err != nil {
		return respondError(c, err, "Failed to delete knowledge document")
	}
	return c.NoContent(http.StatusNoContent)
}

// KnowledgeHistory returns every document, inactive ones included, with the
// audit log.
func (h *Handler) KnowledgeHistory(c echo.Context) error {
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return missingTenant(c)
	}

	ctx := c.Request().Context()
	docs, err := h.knowledge.History(ctx, tenantID)
	if err != nil {
		return respondError(c, err, "Failed to load knowledge history")
	}
	events, err := h.knowledge.Events(ctx, tenantID)
	if err != nil {
		return respondError(c, err, "Failed to load knowledge events")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"documents": docs,
		"events":    events,
	})
}

// GetTrustedSources returns the tenant's trusted source URLs
func (h *Handler) GetTrustedSources(c echo.Context) error {
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return missingTenant(c)
	}

	urls, err := h.knowledge.GetTrustedSources(c.Request().Context(), tenantID)
	if err != nil {
		return respondError(c, err, "Failed to load trusted sources")
	}
	return c.JSON(http.StatusOK, echo.Map{"urls": urls})
}

// UpdateTrustedSources replaces the trusted sources. Invalid URLs are
// dropped; the response lists what was stored.
func (h *Handler) UpdateTrustedSources(c echo.Context) error {
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		return missingTenant(c)
	}

	var req TrustedSourcesRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	stored, err := h.knowledge.UpsertTrustedSources(c.Request().Context(), tenantID, req.URLs)
	if err != nil {
		return respondError(c, err, "Failed to update trusted sources")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"urls":    stored,
		"dropped": len(req.URLs) - len(stored),
	})
}
