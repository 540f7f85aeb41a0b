package obs_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-freight/internal/obs"
)

func TestStatusRecorderCapturesStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := obs.NewStatusRecorder(rec)
	sr.WriteHeader(http.StatusCreated)
	n, err := sr.Write([]byte("created"))
	require.NoError(t, err)
	require.Equal(t, 7, n)
	require.Equal(t, http.StatusCreated, sr.Status())
	require.EqualValues(t, 7, sr.BytesWritten())
}

func TestHTTPObsCountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("freight_test", nil, reg)
	handler := obs.HTTPObs{Metrics: metrics}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/quotations", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	count := testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodGet, "unknown", "204"))
	require.Equal(t, 1.0, count)
}
