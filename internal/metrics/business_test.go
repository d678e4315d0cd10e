package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertMetricLine checks the exposition output for a sample with the given name,
// partial label pattern and value. Extra OTel scope labels are tolerated.
func assertMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	businessMetrics, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")

	require.NoError(t, err)
	assert.NotNil(t, businessMetrics)
}

func TestBusinessMetrics_OperationsAndDurations(t *testing.T) {
	provider, err := NewProvider("voces_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "voces_test")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordOperation(ctx, "auth", "login", "success")
	bm.RecordOperation(ctx, "auth", "login", "success")
	bm.RecordOperation(ctx, "auth", "login", "error")
	bm.RecordOperation(ctx, "audit", "audit_record", "success")
	bm.RecordDuration(ctx, "auth", "login", 50*time.Millisecond, "success")
	bm.RecordDuration(ctx, "auth", "login", 70*time.Millisecond, "success")

	output := scrape(t, provider)

	assertMetricLine(t, output, `voces_test_operations_total`,
		`domain="auth".*operation="login".*status="success"`, `2`)
	assertMetricLine(t, output, `voces_test_operations_total`,
		`domain="auth".*operation="login".*status="error"`, `1`)
	assertMetricLine(t, output, `voces_test_operations_total`,
		`domain="audit".*operation="audit_record".*status="success"`, `1`)
	assertMetricLine(t, output, `voces_test_operation_duration_seconds_count`,
		`domain="auth".*operation="login".*status="success"`, `2`)
}

func TestBusinessMetrics_RecordAuditEvent(t *testing.T) {
	provider, err := NewProvider("voces_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "voces_test")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordAuditEvent(ctx, "FailedLoginAttempt", false)
	bm.RecordAuditEvent(ctx, "FailedLoginAttempt", false)
	bm.RecordAuditEvent(ctx, "Login", true)

	output := scrape(t, provider)

	assertMetricLine(t, output, `voces_test_audit_events_total`,
		`kind="FailedLoginAttempt".*success="false"`, `2`)
	assertMetricLine(t, output, `voces_test_audit_events_total`,
		`kind="Login".*success="true"`, `1`)
}

func TestNewNoOpBusinessMetrics(t *testing.T) {
	noOpMetrics := NewNoOpBusinessMetrics()

	assert.IsType(t, &NoOpBusinessMetrics{}, noOpMetrics)
	assert.NotPanics(t, func() {
		noOpMetrics.RecordOperation(context.Background(), "auth", "register", "success")
		noOpMetrics.RecordDuration(context.Background(), "auth", "register", time.Second, "error")
		noOpMetrics.RecordAuditEvent(context.Background(), "SystemError", false)
	})
}
