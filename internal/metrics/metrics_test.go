package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	m := New()

	m.RecordHTTPRequest("GET", "/api/v1/documents/:id", 200, 15*time.Millisecond)
	m.RecordHTTPRequest("GET", "", 404, time.Millisecond)
	m.RecordEngineOp(OpParse)
	m.RecordEngineOp(OpParse)
	m.RecordEngineOp(OpValidate)
	m.RecordFindings(1, 2, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/documents/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EngineOpsTotal.WithLabelValues(OpParse)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReferencesParsed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FindingsTotal.WithLabelValues("reference_without_citation")))
}

func TestIndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.RecordEngineOp(OpCitation)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.EngineOpsTotal.WithLabelValues(OpCitation)))
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordEngineOp(OpReferenceList)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `textlab_engine_operations_total{operation="reference_list"} 1`)
}
