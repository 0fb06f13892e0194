package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/checker"
)

func newTestServer() *Server {
	return NewServer(checker.New(checker.Options{}), zap.NewNop())
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := doJSON(t, newTestServer(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleAnalyze(t *testing.T) {
	s := newTestServer()

	rec := doJSON(t, s, http.MethodPost, "/api/analyze", map[string]interface{}{
		"documents": []map[string]string{
			{"name": "Project Guidelines", "text": "Submit the final report before 10 PM."},
			{"name": "Email Update", "text": "The submission deadline is midnight."},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message        string  `json:"message"`
		TotalDocs      int     `json:"total_docs"`
		TotalConflicts int     `json:"total_conflicts"`
		Balance        float64 `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Analysis complete", resp.Message)
	assert.Equal(t, 2, resp.TotalDocs)
	assert.Equal(t, 1, resp.TotalConflicts)
	assert.Equal(t, 1.00, resp.Balance)
}

func TestHandleAnalyzeTooFewDocuments(t *testing.T) {
	rec := doJSON(t, newTestServer(), http.MethodPost, "/api/analyze", map[string]interface{}{
		"documents": []map[string]string{
			{"name": "Only One", "text": "Deadline is midnight."},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyzeBadBody(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGenerateReportBeforeAnalysis(t *testing.T) {
	rec := doJSON(t, newTestServer(), http.MethodPost, "/api/generate-report", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGenerateReportAfterAnalysis(t *testing.T) {
	s := newTestServer()

	rec := doJSON(t, s, http.MethodPost, "/api/analyze", map[string]interface{}{
		"documents": []map[string]string{
			{"name": "Project Guidelines", "text": "Submit the final report before 10 PM."},
			{"name": "Email Update", "text": "The submission deadline is midnight."},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/generate-report", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		TotalReports int     `json:"total_reports"`
		Balance      float64 `json:"balance"`
		Report       string  `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalReports)
	assert.Equal(t, 2.00, resp.Balance)
	assert.Contains(t, resp.Report, "Conflict Analysis Report")
}

func TestHandleMonitorURL(t *testing.T) {
	s := newTestServer()

	rec := doJSON(t, s, http.MethodPost, "/api/monitor-url", map[string]string{"url": "not-a-url"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/monitor-url", map[string]string{"url": "https://example.com/policy"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		MonitoredURLs []string `json:"monitored_urls"`
		Balance       float64  `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"https://example.com/policy"}, resp.MonitoredURLs)
	assert.Equal(t, 0.10, resp.Balance)
}

func TestHandleStats(t *testing.T) {
	s := newTestServer()

	rec := doJSON(t, s, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Usage struct {
			DocumentsChecked int     `json:"documents_checked"`
			TotalSpent       float64 `json:"total_spent"`
		} `json:"usage_stats"`
		MonitoredURLs []interface{} `json:"monitored_urls"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Usage.DocumentsChecked)
	assert.Equal(t, 0.0, resp.Usage.TotalSpent)
	assert.Empty(t, resp.MonitoredURLs)
}

func TestHandleConflictsBeforeAnalysis(t *testing.T) {
	rec := doJSON(t, newTestServer(), http.MethodGet, "/api/conflicts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"conflicts":[]}`, rec.Body.String())
}

func TestHandlePollUnknownSource(t *testing.T) {
	rec := doJSON(t, newTestServer(), http.MethodPost,
		"/api/monitor-url/4a1f0c1e-8f6e-4ba2-9c41-1d2f3a4b5c6d/poll",
		map[string]string{"text": "Deadline is midnight."})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleClearDocuments(t *testing.T) {
	s := newTestServer()

	rec := doJSON(t, s, http.MethodPost, "/api/analyze", map[string]interface{}{
		"documents": []map[string]string{
			{"name": "A", "text": "Submit before 10 PM."},
			{"name": "B", "text": "The submission deadline is midnight."},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/documents/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/documents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"documents":[]}`, rec.Body.String())
}
