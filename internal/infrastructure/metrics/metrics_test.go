package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveTool(t *testing.T) {
	m := New()

	m.ObserveTool("create_task", false, 10*time.Millisecond)
	m.ObserveTool("create_task", true, 5*time.Millisecond)
	m.ObserveTool("create_task", false, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("create_task", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("create_task", "error")))
}

func TestMetrics_ObserveRequestAndBulk(t *testing.T) {
	m := New()

	m.ObserveRequest("GET", "/task/{id}", 200, time.Millisecond)
	m.ObserveRequest("GET", "/task/{id}", 0, time.Millisecond)
	m.ObserveBulk("create_bulk_tasks", 4, 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiRequests.WithLabelValues("GET", "/task/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiRequests.WithLabelValues("GET", "/task/{id}", "error")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.bulkItems.WithLabelValues("create_bulk_tasks", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bulkItems.WithLabelValues("create_bulk_tasks", "failure")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveTool("x", false, 0)
	m.ObserveRequest("GET", "/", 200, 0)
	m.ObserveBulk("x", 1, 1)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveTool("get_list", false, time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `clickup_mcp_tool_calls_total{outcome="success",tool="get_list"} 1`))
}
