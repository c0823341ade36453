package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitLogger(t *testing.T) {
	prev := GetLogger()
	t.Cleanup(func() { SetLogger(prev) })

	require.NoError(t, InitLogger(&LogConfig{Level: "debug", Environment: "production", ServiceName: "receptionist"}))
	assert.True(t, GetLogger().Core().Enabled(zap.DebugLevel))

	require.NoError(t, InitLogger(&LogConfig{Level: "bogus", Environment: "development", ServiceName: "receptionist"}))
	assert.False(t, GetLogger().Core().Enabled(zap.DebugLevel))
	assert.True(t, GetLogger().Core().Enabled(zap.InfoLevel))
}

func TestFromContext(t *testing.T) {
	base := zap.NewNop()
	SetLogger(base)

	assert.Same(t, base, FromContext(context.Background()))

	custom := zap.NewExample()
	ctx := WithContext(context.Background(), custom)
	assert.Same(t, custom, FromContext(ctx))
}

func TestMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := GetLogger()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	e := echo.New()
	var fromRequest *zap.Logger
	handler := Middleware()(func(c echo.Context) error {
		fromRequest = FromContext(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-1")
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))

	require.NotNil(t, fromRequest)
	entries := logs.FilterMessage("HTTP request completed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, int64(http.StatusNoContent), entries[0].ContextMap()["status"])
}
