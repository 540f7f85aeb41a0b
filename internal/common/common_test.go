package common_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-freight/internal/common"
)

func TestParsePaginationDefaultsAndClamp(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/quotations", nil)
	page, perPage := common.ParsePagination(req, 20, 100)
	require.Equal(t, 1, page)
	require.Equal(t, 20, perPage)

	req = httptest.NewRequest(http.MethodGet, "/v1/quotations?page=3&limit=500", nil)
	page, perPage = common.ParsePagination(req, 20, 100)
	require.Equal(t, 3, page)
	require.Equal(t, 100, perPage)

	require.Equal(t, int32(200), common.Offset(3, 100))
}

func TestIdempotencyMiddleware(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var hits int
	handler := common.Idem{R: client, TTL: time.Minute}.Middleware(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits++
			w.WriteHeader(http.StatusCreated)
		}),
	)

	do := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/quotations", nil)
		if key != "" {
			req.Header.Set("Idempotency-Key", key)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusCreated, do("abc").Code)
	require.Equal(t, 1, hits)

	// Same key replays are rejected without reaching the handler.
	rec := do("abc")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "IDEMPOTENT_REPLAY")
	require.Equal(t, 1, hits)

	// A different key and a missing key both go through.
	require.Equal(t, http.StatusCreated, do("def").Code)
	require.Equal(t, http.StatusCreated, do("").Code)
	require.Equal(t, 3, hits)
}

func TestRenderErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	common.RenderError(rec, common.NewNotFound("quotation not found"))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"quotation not found"}}`, rec.Body.String())
}
