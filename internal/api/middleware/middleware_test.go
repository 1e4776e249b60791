package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newRouter(buf *bytes.Buffer) chi.Router {
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := chi.NewRouter()
	r.Use(RequestLogger(logger), Metrics())
	r.Get("/secret/{password}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hi"))
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	return r
}

func TestRequestLogger_LogsRouteNotPath(t *testing.T) {
	var buf bytes.Buffer
	r := newRouter(&buf)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/secret/hunter2", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	out := buf.String()
	require.Contains(t, out, `"route":"/secret/{password}"`)
	require.Contains(t, out, `"status":418`)
	require.Contains(t, out, `"level":"WARN"`)
	require.Contains(t, out, `"bytes":2`)
	require.NotContains(t, out, "hunter2")
}

func TestRequestLogger_ErrorLevelAndUnmatched(t *testing.T) {
	var buf bytes.Buffer
	r := newRouter(&buf)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Contains(t, buf.String(), `"level":"ERROR"`)

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Contains(t, buf.String(), `"status":404`)
}

func TestMetrics_CountsByRoute(t *testing.T) {
	var buf bytes.Buffer
	r := newRouter(&buf)

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/secret/{password}", "418"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/secret/a", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/secret/b", nil))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/secret/{password}", "418"))
	require.Equal(t, before+2, after)
}
