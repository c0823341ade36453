package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/receptionist/internal/middleware"
	"github.com/suteetoe/receptionist/internal/service"
	"github.com/suteetoe/receptionist/internal/store"
	"github.com/suteetoe/receptionist/internal/tenant"
	"github.com/suteetoe/receptionist/pkg/config"
	"github.com/suteetoe/receptionist/pkg/database/databasetest"
	"github.com/suteetoe/receptionist/pkg/jwtutil"
	"github.com/suteetoe/receptionist/pkg/validation"
)

type testAPI struct {
	t     *testing.T
	e     *echo.Echo
	jwt   *jwtutil.JWTUtil
	token string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := databasetest.OpenTestDB(t)

	resolver := tenant.NewResolver(db, config.TenantConfig{CacheSize: 8, CacheTTL: time.Minute})
	profiles := store.NewCompanyProfileStore(db)
	agents := store.NewAgentConfigStore(db)
	knowledge := store.NewKnowledgeRepository(db)
	templates := store.NewTemplateRegistry(db)

	h := New(Deps{
		ServiceName: "receptionist",
		Tenants:     resolver,
		Profiles:    profiles,
		Agents:      agents,
		Knowledge:   knowledge,
		Templates:   templates,
		Prompts:     service.NewPromptService(resolver, profiles, agents, knowledge, templates),
	})

	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-secret", ExpirationHours: 1})
	e := echo.New()
	e.Validator = validation.EchoValidator{}
	e.Use(middleware.RequestIDMiddleware())
	h.RegisterRoutes(e, jwtUtil)

	token, err := jwtUtil.GenerateToken("user_1", "owner@acme.example", "member")
	require.NoError(t, err)

	return &testAPI{t: t, e: e, jwt: jwtUtil, token: token}
}

func (a *testAPI) call(method, path, body, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	return a.call(method, path, body, a.token)
}

func (a *testAPI) onboard() {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/onboarding", `{
		"company": {"name": "Acme Dental", "language": "English", "temperature": 0.5},
		"agent": {"agent_name": "Mia", "model": "gpt-4o-mini", "temperature": 0.3, "voice_settings": {"voice": "alloy"}}
	}`)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	rec := api.call(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"receptionist"}`, rec.Body.String())
}

func TestOnboarding(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/settings/company", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "not onboarded yet")

	rec = api.do(http.MethodPost, "/api/onboarding", `{"company": {}, "agent": {"model": "m"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	api.onboard()

	rec = api.do(http.MethodPost, "/api/onboarding", `{"company": {"name": "Again"}, "agent": {"model": "m"}}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodGet, "/api/settings/agent", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var agent map[string]interface{}
	decode(t, rec, &agent)
	assert.Equal(t, "gpt-4o-mini", agent["model"])
	assert.Equal(t, map[string]interface{}{"voice": "alloy"}, agent["voice_settings"])
}

func TestSettingsVersioning(t *testing.T) {
	api := newTestAPI(t)
	api.onboard()

	rec := api.do(http.MethodGet, "/api/settings/agent", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var base struct {
		ID          uint    `json:"id"`
		Temperature float64 `json:"temperature"`
	}
	decode(t, rec, &base)
	assert.Equal(t, 0.3, base.Temperature)

	rec = api.do(http.MethodPut, "/api/settings/agent", `{"model": "gpt-4o-mini", "temperature": 0.9}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// An edit made against the superseded version is rejected
	rec = api.do(http.MethodPut, "/api/settings/agent",
		`{"base_version_id": `+jsonNumber(base.ID)+`, "model": "gpt-4o", "temperature": 0.1}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodPut, "/api/settings/agent", `{"model": "gpt-4o", "temperature": 5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/settings/agent/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history []struct {
		IsActive    bool    `json:"is_active"`
		Temperature float64 `json:"temperature"`
	}
	decode(t, rec, &history)
	require.Len(t, history, 2)
	assert.True(t, history[0].IsActive)
	assert.Equal(t, 0.9, history[0].Temperature)
	assert.False(t, history[1].IsActive)

	rec = api.do(http.MethodPut, "/api/settings/company", `{"name": "Acme Dental GmbH", "regions": "Berlin"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = api.do(http.MethodGet, "/api/settings/company/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &history)
	assert.Len(t, history, 2)
}

func TestKnowledgeRoutes(t *testing.T) {
	api := newTestAPI(t)
	api.onboard()

	rec := api.do(http.MethodPost, "/api/knowledge", `{"file_name": "hours.txt", "raw_text": "Mon-Fri 8-18"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var doc struct {
		ID uint `json:"id"`
	}
	decode(t, rec, &doc)

	rec = api.do(http.MethodPost, "/api/knowledge", `{"raw_text": "no name"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/knowledge", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var docs []map[string]interface{}
	decode(t, rec, &docs)
	assert.Len(t, docs, 1)

	rec = api.do(http.MethodDelete, "/api/knowledge/"+jsonNumber(doc.ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(http.MethodDelete, "/api/knowledge/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = api.do(http.MethodDelete, "/api/knowledge/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/knowledge", "")
	decode(t, rec, &docs)
	assert.Empty(t, docs)

	rec = api.do(http.MethodGet, "/api/knowledge/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Documents []struct {
			IsActive bool `json:"is_active"`
		} `json:"documents"`
		Events []struct {
			Action string `json:"action"`
		} `json:"events"`
	}
	decode(t, rec, &history)
	require.Len(t, history.Documents, 1)
	assert.False(t, history.Documents[0].IsActive)
	assert.Len(t, history.Events, 2)

	rec = api.do(http.MethodPut, "/api/knowledge/trusted-sources", `{"urls": ["https://example.com", "not a url"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"urls": ["https://example.com"], "dropped": 1}`, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/knowledge/trusted-sources", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"urls": ["https://example.com"]}`, rec.Body.String())
}

func TestTemplateRoutes(t *testing.T) {
	api := newTestAPI(t)
	api.onboard()

	rec := api.do(http.MethodGet, "/api/templates/identity", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res struct {
		Content string `json:"content"`
		Tier    string `json:"tier"`
	}
	decode(t, rec, &res)
	assert.Equal(t, "builtin", res.Tier)

	rec = api.do(http.MethodPut, "/api/admin/templates/identity", `{"content": "Global {{company_name}}"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin, err := api.jwt.GenerateToken("ops", "ops@example.com", middleware.RoleAdmin)
	require.NoError(t, err)
	rec = api.call(http.MethodPut, "/api/admin/templates/identity", `{"content": "Global {{company_name}}"}`, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/templates/identity", "")
	decode(t, rec, &res)
	assert.Equal(t, "global", res.Tier)

	rec = api.do(http.MethodPut, "/api/templates/identity", `{"content": "{{#if a}}unclosed"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPut, "/api/templates/identity", `{"content": "Tenant {{company_name}}"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/api/templates/identity", "")
	decode(t, rec, &res)
	assert.Equal(t, "tenant", res.Tier)
	assert.Equal(t, "Tenant {{company_name}}", res.Content)

	rec = api.do(http.MethodGet, "/api/templates/unknown_slug", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPromptPreview(t *testing.T) {
	api := newTestAPI(t)
	api.onboard()

	rec := api.do(http.MethodPost, "/api/prompt/preview", `{"appendix": "Invoice #7"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out service.AssembledPrompt
	decode(t, rec, &out)
	assert.Equal(t, "gpt-4o-mini", out.Model)
	assert.Contains(t, out.SystemPrompt, "Acme Dental")
	assert.Contains(t, out.SystemPrompt, "--- ATTACHED DOCUMENT ---\nInvoice #7\n--- END ATTACHED DOCUMENT ---")
}

func TestUnauthenticated(t *testing.T) {
	api := newTestAPI(t)
	rec := api.call(http.MethodGet, "/api/settings/company", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
