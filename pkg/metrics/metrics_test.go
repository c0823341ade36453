package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStatusCategory(t *testing.T) {
	assert.Equal(t, "2xx", statusCategory(204))
	assert.Equal(t, "4xx", statusCategory(409))
	assert.Equal(t, "5xx", statusCategory(503))
	assert.Equal(t, "", statusCategory(302))
}

func TestMiddleware_RecordsErrorStatus(t *testing.T) {
	e := echo.New()
	m := NewHTTPMetrics("metrics-test")
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("boom")
	}, m.Middleware())

	before := testutil.ToFloat64(RequestCounter.WithLabelValues("metrics-test", http.MethodGet, "/boom", "500"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	after := testutil.ToFloat64(RequestCounter.WithLabelValues("metrics-test", http.MethodGet, "/boom", "500"))
	assert.Equal(t, before+1, after)
}

func TestDomainRecorders(t *testing.T) {
	before := testutil.ToFloat64(VersionConflicts.WithLabelValues("agent_config"))
	RecordVersionConflict("agent_config")
	assert.Equal(t, before+1, testutil.ToFloat64(VersionConflicts.WithLabelValues("agent_config")))

	before = testutil.ToFloat64(TemplateResolutions.WithLabelValues("builtin"))
	RecordTemplateResolution("builtin")
	assert.Equal(t, before+1, testutil.ToFloat64(TemplateResolutions.WithLabelValues("builtin")))

	TrackDBOperation("test_op")(time.Now())
	assert.Equal(t, 1, testutil.CollectAndCount(DBOperationDuration, "db_operation_duration_seconds"))
}
