package rates_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-freight/internal/common"
	"github.com/noah-isme/backend-freight/internal/lock"
	"github.com/noah-isme/backend-freight/internal/rates"
)

type stubStore struct {
	rates map[string]rates.Rate
	gets  int
}

func (s *stubStore) Get(_ context.Context, currency string) (*rates.Rate, error) {
	s.gets++
	r, ok := s.rates[currency]
	if !ok {
		return nil, rates.ErrNotFound
	}
	return &r, nil
}

func (s *stubStore) Upsert(_ context.Context, in []rates.Rate) error {
	for _, r := range in {
		s.rates[strings.ToUpper(r.Currency)] = r
	}
	return nil
}

func newTestService(t *testing.T) (*rates.Service, *stubStore, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := &stubStore{rates: map[string]rates.Rate{}}
	svc := &rates.Service{
		Store:   store,
		Cache:   &rates.Cache{R: client, TTL: time.Minute},
		Locker:  lock.Locker{R: client},
		LockTTL: time.Minute,
		Log:     zerolog.Nop(),
	}
	return svc, store, client
}

func TestGetReadsThroughCache(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.rates["USD"] = rates.Rate{Currency: "USD", Rate: 83.12, FetchedAt: time.Now().UTC()}

	r1, err := svc.Get(context.Background(), "usd")
	require.NoError(t, err)
	require.Equal(t, 83.12, r1.Rate)
	require.Equal(t, 1, store.gets)

	// Second read is served from the cache.
	r2, err := svc.Get(context.Background(), "USD")
	require.NoError(t, err)
	require.Equal(t, r1.Rate, r2.Rate)
	require.Equal(t, 1, store.gets)
}

func TestGetUnknownCurrency(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Get(context.Background(), "XXX")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestGetRejectsBadCurrencyCode(t *testing.T) {
	svc, _, _ := newTestService(t)
	for _, bad := range []string{"US", "DOLLARS", "12$"} {
		_, err := svc.Get(context.Background(), bad)
		var appErr *common.AppError
		require.ErrorAs(t, err, &appErr, bad)
		require.Equal(t, "VALIDATION_ERROR", appErr.Code, bad)
	}
}

func TestRefreshReplacesRatesAndInvalidatesCache(t *testing.T) {
	svc, store, client := newTestService(t)
	store.rates["USD"] = rates.Rate{Currency: "USD", Rate: 80}

	// Warm the cache with the stale value.
	_, err := svc.Get(context.Background(), "USD")
	require.NoError(t, err)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"base":"INR","rates":{"USD":83.5,"EUR":90.1,"XAG":-1}}`))
	}))
	defer upstream.Close()
	svc.Provider = &rates.HTTPProvider{URL: upstream.URL}

	require.NoError(t, svc.Refresh(context.Background()))
	require.Equal(t, 83.5, store.rates["USD"].Rate)
	require.Equal(t, 90.1, store.rates["EUR"].Rate)
	// Non-positive rates from the provider are dropped.
	_, ok := store.rates["XAG"]
	require.False(t, ok)

	// The stale cached value is gone.
	keys, err := client.Keys(context.Background(), "rates:*").Result()
	require.NoError(t, err)
	require.Empty(t, keys)

	r, err := svc.Get(context.Background(), "USD")
	require.NoError(t, err)
	require.Equal(t, 83.5, r.Rate)
}

func TestRefreshProviderFailure(t *testing.T) {
	svc, _, _ := newTestService(t)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()
	svc.Provider = &rates.HTTPProvider{URL: upstream.URL}

	err := svc.Refresh(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status")
}
